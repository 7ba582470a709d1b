// internal/pipeline/admission/controller.go
package admission

import (
	"context"
	"time"

	"campus-assist/internal/common/logger"
	"campus-assist/internal/common/metrics"
)

type Config struct {
	Limit  int
	Window time.Duration
}

// Controller is the admission gate in front of the pipeline. It admits at
// most Limit messages per sender inside each fixed Window and reports the
// retry-after on denial.
type Controller struct {
	config *Config
	store  Store
	logger logger.Logger
}

func NewController(config *Config, store Store, log logger.Logger) *Controller {
	return &Controller{
		config: config,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"stage": "admission"}),
	}
}

// Admit performs one counted admission check for the sender. A store
// failure admits the message: losing the throttle beats losing replies
// when the window store is down.
func (c *Controller) Admit(ctx context.Context, senderKey string) Decision {
	count, remaining, err := c.store.Incr(ctx, senderKey, c.config.Window)
	if err != nil {
		c.logger.Warn("rate limit store unavailable, admitting", map[string]interface{}{
			"senderKey": senderKey,
			"error":     err.Error(),
		})
		return Decision{Allowed: true}
	}

	if count > int64(c.config.Limit) {
		metrics.MessagesThrottled.Inc()
		c.logger.Info("sender throttled", map[string]interface{}{
			"senderKey":  senderKey,
			"count":      count,
			"limit":      c.config.Limit,
			"retryAfter": remaining.Seconds(),
		})
		return Decision{Allowed: false, Count: count, RetryAfter: remaining}
	}

	return Decision{Allowed: true, Count: count}
}
