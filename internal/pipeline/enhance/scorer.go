// internal/pipeline/enhance/scorer.go
package enhance

import (
	"strings"
	"unicode"
)

// Scorer rates a sanitized reply against the query in [0,1]. Strategies
// must be deterministic so the quality gate is reproducible.
type Scorer interface {
	Score(reply, query string) float64
}

// fillerPhrases mark content-free replies. Matching is case-insensitive.
var fillerPhrases = []string{
	"i'm sorry",
	"i am sorry",
	"i apologize",
	"i cannot help",
	"i can't help",
	"i don't know",
	"as an ai",
	"as a language model",
	"i do not have access",
}

// HeuristicScorer scores on three measurable signals: reply length,
// absence of filler or apology phrases, and presence of concrete content
// such as numbers, dates or named entities.
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

const (
	lengthWeight   = 0.4
	fillerWeight   = 0.3
	concreteWeight = 0.3

	// A reply this long earns the full length component.
	fullLengthChars = 200
)

func (s *HeuristicScorer) Score(reply, query string) float64 {
	score := s.lengthComponent(reply)

	lower := strings.ToLower(reply)
	if !containsAny(lower, fillerPhrases) {
		score += fillerWeight
	}
	if hasConcreteContent(reply) {
		score += concreteWeight
	}

	if score > 1 {
		score = 1
	}
	return score
}

func (s *HeuristicScorer) lengthComponent(reply string) float64 {
	n := len(strings.TrimSpace(reply))
	if n >= fullLengthChars {
		return lengthWeight
	}
	return lengthWeight * float64(n) / float64(fullLengthChars)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// hasConcreteContent checks for digits or a capitalized word past the
// sentence start, both cheap proxies for dates, amounts and names.
func hasConcreteContent(reply string) bool {
	for _, r := range reply {
		if unicode.IsDigit(r) {
			return true
		}
	}

	words := strings.Fields(reply)
	for i, w := range words {
		if i == 0 {
			continue
		}
		prev := words[i-1]
		if strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "!") || strings.HasSuffix(prev, "?") {
			continue
		}
		r := []rune(w)
		if len(r) > 1 && unicode.IsUpper(r[0]) && unicode.IsLower(r[1]) {
			return true
		}
	}
	return false
}
