// internal/pipeline/processor.go

// Package pipeline wires the message stages into one linear flow:
// admission, classification, retrieval, prompt assembly, generation,
// enhancement, then asynchronous recording. Throttling is the only
// early exit; every other failure degrades into a fallback reply.
package pipeline

import (
	"context"
	"math"
	"time"

	"campus-assist/internal/common/logger"
	"campus-assist/internal/common/metrics"
	"campus-assist/internal/models"
	"campus-assist/internal/notify"
	"campus-assist/internal/pipeline/admission"
	"campus-assist/internal/pipeline/classify"
	"campus-assist/internal/pipeline/enhance"
	"campus-assist/internal/pipeline/promptbuild"
	"campus-assist/internal/pipeline/retrieval"
	"campus-assist/internal/session"
)

// Stage dependencies, narrowed to what the processor calls.
type admitter interface {
	Admit(ctx context.Context, senderKey string) admission.Decision
}

type contextRetriever interface {
	Retrieve(ctx context.Context, queryText string) retrieval.Result
}

type promptAssembler interface {
	Assemble(turns []session.Turn, passages []models.RetrievedPassage, query, language, intent string) (*promptbuild.Prompt, error)
}

type generator interface {
	Generate(ctx context.Context, prompt *promptbuild.Prompt) models.GenerationResult
}

type replyEnhancer interface {
	Enhance(result models.GenerationResult, query, language string) models.Reply
}

type interactionRecorder interface {
	Record(rec *models.InteractionRecord)
}

// EscalationNotifier alerts staff about exchanges needing follow-up.
// Optional: a nil notifier disables escalation.
type EscalationNotifier interface {
	NotifyEscalation(ctx context.Context, esc notify.Escalation) error
}

type Config struct {
	MessageDeadline time.Duration
}

const notifyTimeout = 10 * time.Second

// Processor handles one inbound message end to end. Safe for concurrent
// use: per-message state stays on the stack and shared stages guard
// their own state.
type Processor struct {
	config     *Config
	admission  admitter
	classifier classify.Classifier
	retriever  contextRetriever
	assembler  promptAssembler
	generator  generator
	enhancer   replyEnhancer
	recorder   interactionRecorder
	history    session.Store
	notifier   EscalationNotifier
	logger     logger.Logger
}

func NewProcessor(
	config *Config,
	adm admitter,
	classifier classify.Classifier,
	retriever contextRetriever,
	assembler promptAssembler,
	gen generator,
	enhancer replyEnhancer,
	rec interactionRecorder,
	history session.Store,
	notifier EscalationNotifier,
	log logger.Logger,
) *Processor {
	return &Processor{
		config:     config,
		admission:  adm,
		classifier: classifier,
		retriever:  retriever,
		assembler:  assembler,
		generator:  gen,
		enhancer:   enhancer,
		recorder:   rec,
		history:    history,
		notifier:   notifier,
		logger:     log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// ProcessMessage turns one inbound message into a Reply. It never
// returns an error: every dependency outage resolves into a throttle
// notice or a fallback reply.
func (p *Processor) ProcessMessage(ctx context.Context, msg models.IncomingMessage) models.Reply {
	ctx, cancel := context.WithTimeout(ctx, p.config.MessageDeadline)
	defer cancel()

	language := classify.DetectLanguage(msg.Text, msg.Language)

	decision := p.timedAdmit(ctx, msg.SenderKey)
	if !decision.Allowed {
		retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
		metrics.MessagesProcessed.WithLabelValues("throttled").Inc()
		return models.Reply{
			Text:       enhance.ThrottleText(language, retryAfter),
			Fallback:   true,
			RetryAfter: retryAfter,
		}
	}

	cls := p.classifier.Classify(msg.Text)

	retrieved := p.timedRetrieve(ctx, msg.Text)

	turns := p.history.Turns(msg.SessionID)

	var gen models.GenerationResult
	prompt, err := p.assembler.Assemble(turns, retrieved.Passages, msg.Text, language, cls.Intent)
	if err != nil {
		// Query over budget is a configuration fault; the student just
		// sees the generic fallback.
		p.logger.Error("prompt assembly failed", map[string]interface{}{
			"sessionId": msg.SessionID,
			"error":     err.Error(),
		})
		gen = models.GenerationResult{Degraded: true}
	} else {
		gen = p.timedGenerate(ctx, prompt)
	}

	reply := p.enhancer.Enhance(gen, msg.Text, language)
	reply.Degraded = reply.Degraded || retrieved.Degraded

	if !reply.Fallback {
		p.history.Append(msg.SessionID, session.Turn{Query: msg.Text, Reply: reply.Text})
	}

	p.record(msg, cls, retrieved, prompt, reply, language)
	p.escalate(msg, cls, reply)

	metrics.MessagesProcessed.WithLabelValues(outcome(reply)).Inc()
	return reply
}

func (p *Processor) timedAdmit(ctx context.Context, senderKey string) admission.Decision {
	defer observeStage("admission", time.Now())
	return p.admission.Admit(ctx, senderKey)
}

func (p *Processor) timedRetrieve(ctx context.Context, query string) retrieval.Result {
	defer observeStage("retrieval", time.Now())
	return p.retriever.Retrieve(ctx, query)
}

func (p *Processor) timedGenerate(ctx context.Context, prompt *promptbuild.Prompt) models.GenerationResult {
	defer observeStage("generation", time.Now())
	return p.generator.Generate(ctx, prompt)
}

func observeStage(stage string, start time.Time) {
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

func (p *Processor) record(
	msg models.IncomingMessage,
	cls classify.Classification,
	retrieved retrieval.Result,
	prompt *promptbuild.Prompt,
	reply models.Reply,
	language string,
) {
	rec := &models.InteractionRecord{
		SessionID:    msg.SessionID,
		SenderKey:    msg.SenderKey,
		Message:      msg.Text,
		ReplyText:    reply.Text,
		Language:     language,
		Intent:       cls.Intent,
		Sentiment:    cls.Sentiment,
		QualityScore: reply.QualityScore,
		Degraded:     reply.Degraded,
		Fallback:     reply.Fallback,
	}
	for _, passage := range retrieved.Passages {
		rec.PassagesUsed = append(rec.PassagesUsed, passage.DocumentID)
	}
	if prompt != nil {
		rec.PromptSummary = prompt.Summary()
	}
	p.recorder.Record(rec)
}

// escalate alerts staff for urgent or upset senders, and whenever the
// quality gate had to hand out the escalation fallback. Runs detached
// from the request so notification latency never delays the reply.
func (p *Processor) escalate(msg models.IncomingMessage, cls classify.Classification, reply models.Reply) {
	if p.notifier == nil {
		return
	}

	urgent := cls.Urgency == classify.UrgencyHigh
	upset := cls.Intent == classify.IntentComplaint && cls.Sentiment == classify.SentimentNegative
	gated := reply.Fallback && !reply.Degraded && reply.RetryAfter == 0

	if !urgent && !upset && !gated {
		return
	}

	esc := notify.Escalation{
		SessionID: msg.SessionID,
		SenderKey: msg.SenderKey,
		Intent:    cls.Intent,
		Sentiment: cls.Sentiment,
		Urgency:   cls.Urgency,
		Message:   msg.Text,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := p.notifier.NotifyEscalation(ctx, esc); err != nil {
			p.logger.Error("escalation notification failed", map[string]interface{}{
				"sessionId": esc.SessionID,
				"error":     err.Error(),
			})
		}
	}()
}

func outcome(reply models.Reply) string {
	switch {
	case reply.Fallback:
		return "fallback"
	case reply.Degraded:
		return "degraded"
	default:
		return "ok"
	}
}
