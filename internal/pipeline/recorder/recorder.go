// internal/pipeline/recorder/recorder.go

// Package recorder persists interaction records off the reply path.
// Records enter a bounded queue and a background worker drains them;
// overflow rejects the new record rather than blocking the caller.
package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"campus-assist/internal/common/logger"
	"campus-assist/internal/common/metrics"
	"campus-assist/internal/models"
)

type Config struct {
	QueueSize int
}

const appendTimeout = 5 * time.Second

type Recorder struct {
	queue  chan *models.InteractionRecord
	store  Store
	logger logger.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRecorder creates a recorder and starts its drain worker.
func NewRecorder(config *Config, store Store, log logger.Logger) *Recorder {
	r := &Recorder{
		queue:  make(chan *models.InteractionRecord, config.QueueSize),
		store:  store,
		logger: log.WithFields(map[string]interface{}{"stage": "recorder"}),
	}

	r.wg.Add(1)
	go r.drain()

	return r
}

// Record enqueues one interaction record and returns immediately. A full
// queue drops the record; the reply path is never delayed.
func (r *Recorder) Record(rec *models.InteractionRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	select {
	case r.queue <- rec:
		metrics.RecorderQueueDepth.Set(float64(len(r.queue)))
	default:
		metrics.RecorderDropped.Inc()
		r.logger.Warn("recorder queue full, dropping record", map[string]interface{}{
			"recordId":  rec.ID,
			"sessionId": rec.SessionID,
			"queueSize": cap(r.queue),
		})
	}
}

// Close stops accepting records, drains the queue and waits for the
// worker to finish.
func (r *Recorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Recorder) drain() {
	defer r.wg.Done()

	for rec := range r.queue {
		metrics.RecorderQueueDepth.Set(float64(len(r.queue)))

		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		err := r.store.Append(ctx, rec)
		cancel()

		if err != nil {
			r.logger.Error("interaction record write failed", map[string]interface{}{
				"recordId":  rec.ID,
				"sessionId": rec.SessionID,
				"error":     err.Error(),
			})
		}
	}
}
