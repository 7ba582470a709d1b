// internal/pipeline/recorder/postgres_test.go
package recorder

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assist/internal/models"
)

func TestPostgresStoreAppend(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db, "interactions")

	rec := &models.InteractionRecord{
		ID:            "rec-1",
		SessionID:     "sess-1",
		SenderKey:     "sender-hash",
		Message:       "when does enrollment open",
		ReplyText:     "Enrollment opens September 1.",
		Language:      "en",
		Intent:        "admissions",
		Sentiment:     "neutral",
		PassagesUsed:  []string{"enrollment", "deadlines"},
		PromptSummary: "2 passages, 1 turn",
		QualityScore:  0.85,
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO interactions").
		WithArgs(
			rec.ID, rec.SessionID, rec.SenderKey, rec.Message, rec.ReplyText,
			rec.Language, rec.Intent, rec.Sentiment, sqlmock.AnyArg(), rec.PromptSummary,
			rec.QualityScore, rec.Degraded, rec.Fallback, rec.CreatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Append(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreAppendError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewPostgresStore(db, "interactions")

	mock.ExpectExec("INSERT INTO interactions").
		WillReturnError(assert.AnError)

	err = store.Append(context.Background(), &models.InteractionRecord{ID: "rec-1"})
	assert.Error(t, err)
}
