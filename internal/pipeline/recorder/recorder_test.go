// internal/pipeline/recorder/recorder_test.go
package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assist/internal/common/logger"
	"campus-assist/internal/models"
)

type captureStore struct {
	mu      sync.Mutex
	records []*models.InteractionRecord
	err     error
	block   chan struct{}
}

func (s *captureStore) Append(ctx context.Context, rec *models.InteractionRecord) error {
	if s.block != nil {
		<-s.block
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.err
}

func (s *captureStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func TestRecorderPersistsRecords(t *testing.T) {
	store := &captureStore{}
	r := NewRecorder(&Config{QueueSize: 8}, store, logger.Nop())

	r.Record(&models.InteractionRecord{SessionID: "s1", Message: "q", ReplyText: "a"})
	r.Record(&models.InteractionRecord{SessionID: "s2", Message: "q2", ReplyText: "a2"})
	r.Close()

	require.Equal(t, 2, store.count())
	assert.NotEmpty(t, store.records[0].ID)
	assert.False(t, store.records[0].CreatedAt.IsZero())
}

func TestRecorderDropsOnFullQueue(t *testing.T) {
	store := &captureStore{block: make(chan struct{})}
	r := NewRecorder(&Config{QueueSize: 1}, store, logger.Nop())

	// The worker is stuck on the first record; the second fills the
	// queue and the third must be rejected without blocking.
	r.Record(&models.InteractionRecord{SessionID: "s1"})
	r.Record(&models.InteractionRecord{SessionID: "s2"})

	done := make(chan struct{})
	go func() {
		r.Record(&models.InteractionRecord{SessionID: "s3"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full queue")
	}

	close(store.block)
	r.Close()

	assert.LessOrEqual(t, store.count(), 2)
}

func TestRecorderStoreFailureDoesNotStopWorker(t *testing.T) {
	store := &captureStore{err: errors.New("db down")}
	r := NewRecorder(&Config{QueueSize: 8}, store, logger.Nop())

	r.Record(&models.InteractionRecord{SessionID: "s1"})
	r.Record(&models.InteractionRecord{SessionID: "s2"})
	r.Close()

	assert.Equal(t, 2, store.count(), "worker kept draining after a failed write")
}

func TestRecorderRecordAfterClose(t *testing.T) {
	store := &captureStore{}
	r := NewRecorder(&Config{QueueSize: 8}, store, logger.Nop())
	r.Close()

	assert.NotPanics(t, func() {
		r.Record(&models.InteractionRecord{SessionID: "s1"})
	})
	assert.Equal(t, 0, store.count())
}
