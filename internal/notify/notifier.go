// internal/notify/notifier.go

// Package notify delivers escalation alerts to staff when a message
// needs human follow-up. Delivery is best-effort: failures are logged
// and never reach the student.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"campus-assist/internal/common/errors"
	"campus-assist/internal/common/logger"
)

// EmailSender is the slice of the SES client the notifier uses.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is the slice of the SNS client the notifier uses.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Config struct {
	EmailEnabled bool
	EmailFrom    string
	EmailTo      string
	SMSEnabled   bool
	SMSToPhone   string
}

// Escalation describes one exchange that needs staff attention.
type Escalation struct {
	SessionID string
	SenderKey string
	Intent    string
	Sentiment string
	Urgency   string
	Message   string
}

type Notifier struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewNotifier(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Notifier {
	return &Notifier{
		config: config,
		email:  email,
		sms:    sms,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// NotifyEscalation sends the alert over every enabled channel. Each
// channel fails independently; the last failure is returned for logging.
func (n *Notifier) NotifyEscalation(ctx context.Context, esc Escalation) error {
	var lastErr error

	if n.config.EmailEnabled && n.email != nil {
		if err := n.sendEmail(ctx, esc); err != nil {
			lastErr = err
			n.logger.Error("escalation email failed", map[string]interface{}{
				"sessionId": esc.SessionID,
				"error":     err.Error(),
			})
		}
	}

	if n.config.SMSEnabled && n.sms != nil {
		if err := n.sendSMS(ctx, esc); err != nil {
			lastErr = err
			n.logger.Error("escalation sms failed", map[string]interface{}{
				"sessionId": esc.SessionID,
				"error":     err.Error(),
			})
		}
	}

	return lastErr
}

func (n *Notifier) sendEmail(ctx context.Context, esc Escalation) error {
	subject := fmt.Sprintf("Student message needs follow-up (%s, urgency: %s)", esc.Intent, esc.Urgency)
	body := fmt.Sprintf(
		"Session: %s\nSender: %s\nIntent: %s\nSentiment: %s\nUrgency: %s\n\nMessage:\n%s\n",
		esc.SessionID, esc.SenderKey, esc.Intent, esc.Sentiment, esc.Urgency, excerpt(esc.Message),
	)

	_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.config.EmailFrom),
		Destination: &sestypes.Destination{
			ToAddresses: []string{n.config.EmailTo},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("email", err)
	}
	return nil
}

func (n *Notifier) sendSMS(ctx context.Context, esc Escalation) error {
	text := fmt.Sprintf("Follow-up needed: %s message from session %s (urgency: %s)",
		esc.Intent, esc.SessionID, esc.Urgency)

	_, err := n.sms.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(n.config.SMSToPhone),
		Message:     aws.String(text),
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("sms", err)
	}
	return nil
}

const excerptLimit = 500

func excerpt(text string) string {
	if len(text) <= excerptLimit {
		return text
	}
	return text[:excerptLimit] + "..."
}
