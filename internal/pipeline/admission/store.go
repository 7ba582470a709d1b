// internal/pipeline/admission/store.go
package admission

import (
	"context"
	"time"
)

// Store counts hits per sender inside a fixed window. Implementations
// must make Incr atomic per key: concurrent calls for the same sender
// observe a single winner/loser ordering, and different senders never
// contend on each other.
type Store interface {
	// Incr registers one hit for the key and returns the count within the
	// current window plus the time remaining until the window resets.
	// A count of 1 means this hit opened a fresh window.
	Incr(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)
}
