// internal/pipeline/recorder/postgres.go
package recorder

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"campus-assist/internal/models"
)

// Store persists interaction records. Append failures are logged and
// dropped by the recorder; implementations never need their own retry.
type Store interface {
	Append(ctx context.Context, rec *models.InteractionRecord) error
}

// PostgresStore appends interaction records to a Postgres table.
type PostgresStore struct {
	db    *sql.DB
	table string
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	return &PostgresStore{db: db, table: table}
}

func (s *PostgresStore) Append(ctx context.Context, rec *models.InteractionRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, session_id, sender_key, message, reply_text,
			language, intent, sentiment, passages_used, prompt_summary,
			quality_score, degraded, fallback, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`, s.table)

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.SessionID, rec.SenderKey, rec.Message, rec.ReplyText,
		rec.Language, rec.Intent, rec.Sentiment, pq.Array(rec.PassagesUsed), rec.PromptSummary,
		rec.QualityScore, rec.Degraded, rec.Fallback, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert interaction record: %w", err)
	}
	return nil
}
