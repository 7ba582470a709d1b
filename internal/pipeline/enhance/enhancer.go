// internal/pipeline/enhance/enhancer.go
package enhance

import (
	"regexp"
	"strings"

	"campus-assist/internal/common/logger"
	"campus-assist/internal/common/metrics"
	"campus-assist/internal/models"
)

type Config struct {
	Threshold         float64
	MaxReplyChars     int
	EscalationContact string
}

// Enhancer turns raw generated text into the final Reply: it sanitizes,
// length-caps, appends the footer, scores the result and substitutes a
// fallback template when generation failed or quality is too low.
// Enhancement is idempotent: running it on its own output changes nothing.
type Enhancer struct {
	config *Config
	scorer Scorer
	logger logger.Logger
}

func NewEnhancer(config *Config, scorer Scorer, log logger.Logger) *Enhancer {
	return &Enhancer{
		config: config,
		scorer: scorer,
		logger: log.WithFields(map[string]interface{}{"stage": "enhance"}),
	}
}

// Enhance finalizes one generation result. A degraded result gets the
// fixed fallback immediately; otherwise the text is sanitized and must
// clear the quality threshold or the escalation fallback replaces it.
func (e *Enhancer) Enhance(result models.GenerationResult, query, language string) models.Reply {
	if result.Degraded || strings.TrimSpace(result.Text) == "" {
		metrics.FallbackReplies.WithLabelValues("generation_exhausted").Inc()
		return models.Reply{
			Text:     fallbackText(language),
			Degraded: true,
			Fallback: true,
		}
	}

	text := e.sanitize(result.Text, query, language)
	score := e.scorer.Score(text, query)

	if score < e.config.Threshold {
		metrics.FallbackReplies.WithLabelValues("low_quality").Inc()
		e.logger.Info("reply below quality threshold, substituting fallback", map[string]interface{}{
			"score":     score,
			"threshold": e.config.Threshold,
		})
		return models.Reply{
			Text:         escalationText(language, e.config.EscalationContact),
			QualityScore: score,
			Fallback:     true,
		}
	}

	return models.Reply{Text: text, QualityScore: score}
}

// sanitize applies the fixed pipeline: strip any existing footer, strip
// markup, strip a verbatim echo of the query, cap at a sentence
// boundary, re-append the footer. Each step is a no-op on clean input,
// which makes the whole chain idempotent.
func (e *Enhancer) sanitize(text, query, language string) string {
	footer := footerText(language)

	body := strings.TrimSpace(text)
	body = strings.TrimSuffix(body, footer)
	body = stripMarkup(body)
	body = stripEcho(body, query)
	body = capAtSentence(body, e.config.MaxReplyChars)

	return body + "\n\n" + footer
}

var (
	htmlTagPattern  = regexp.MustCompile(`<[^>]+>`)
	boldItalic      = regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`)
	headingPattern  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	multipleNewline = regexp.MustCompile(`\n{3,}`)
)

// stripMarkup removes HTML tags and markdown emphasis the downstream
// messaging channel cannot render.
func stripMarkup(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, "")
	text = boldItalic.ReplaceAllString(text, "$1")
	text = headingPattern.ReplaceAllString(text, "")
	text = multipleNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// stripEcho drops a verbatim repetition of the query when it prefixes
// the reply, along with any punctuation joining it to the real answer.
func stripEcho(text, query string) string {
	q := strings.TrimSpace(query)
	if q == "" || !strings.HasPrefix(strings.ToLower(text), strings.ToLower(q)) {
		return text
	}

	rest := strings.TrimLeft(text[len(q):], " \t\n:?.,!-")
	if rest == "" {
		return text
	}
	return rest
}

// capAtSentence truncates to at most max characters, cutting at the last
// sentence end before the limit when one exists.
func capAtSentence(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}

	cut := text[:max]
	if i := lastSentenceEnd(cut); i > 0 {
		return strings.TrimSpace(cut[:i+1])
	}
	// No sentence boundary inside the cap; fall back to a word boundary.
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		return strings.TrimSpace(cut[:i])
	}
	return cut
}

func lastSentenceEnd(text string) int {
	for i := len(text) - 1; i >= 0; i-- {
		switch text[i] {
		case '.', '!', '?':
			return i
		}
	}
	return -1
}
