// internal/pipeline/admission/models.go
package admission

import "time"

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool          `json:"allowed"`
	Count      int64         `json:"count"`
	RetryAfter time.Duration `json:"retryAfter"`
}
