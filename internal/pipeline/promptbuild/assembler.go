// internal/pipeline/promptbuild/assembler.go
package promptbuild

import (
	"fmt"

	"campus-assist/internal/common/errors"
	"campus-assist/internal/common/logger"
	"campus-assist/internal/models"
	"campus-assist/internal/session"
)

type Config struct {
	Budget      int
	Institution string
}

// Assembler builds the provider prompt from persona, retrieved passages,
// conversation history and the current query, inside a fixed character
// budget. Assembly is deterministic: the same inputs always produce the
// same prompt.
type Assembler struct {
	config *Config
	logger logger.Logger
}

func NewAssembler(config *Config, log logger.Logger) *Assembler {
	return &Assembler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": "prompt"}),
	}
}

// Assemble builds the prompt in fixed order: persona, passages with
// provenance, history turns (most recent last), then the verbatim query.
// When oversized it drops oldest history first, then lowest-scoring
// passages, re-measuring after each drop. The query is never dropped or
// truncated; a query that cannot fit alone fails the assembly.
func (a *Assembler) Assemble(turns []session.Turn, passages []models.RetrievedPassage, query, language, intent string) (*Prompt, error) {
	if len(query) > a.config.Budget {
		err := errors.NewPromptQueryTooLargeError(len(query), a.config.Budget)
		a.logger.Error("query alone exceeds the prompt budget", map[string]interface{}{
			"querySize": len(query),
			"budget":    a.config.Budget,
		})
		return nil, err
	}

	for {
		p := a.build(turns, passages, query, language, intent)
		if p.Size() <= a.config.Budget {
			return p, nil
		}

		switch {
		case len(turns) > 0:
			turns = turns[1:]
		case len(passages) > 0:
			// Passages arrive sorted by descending score, so the
			// lowest-scoring one is last.
			passages = passages[:len(passages)-1]
		default:
			err := errors.NewPromptQueryTooLargeError(len(query), a.config.Budget)
			a.logger.Error("persona and query exceed the prompt budget", map[string]interface{}{
				"promptSize": p.Size(),
				"budget":     a.config.Budget,
			})
			return nil, err
		}
	}
}

func (a *Assembler) build(turns []session.Turn, passages []models.RetrievedPassage, query, language, intent string) *Prompt {
	segments := make([]Segment, 0, 2+len(passages)+len(turns))

	segments = append(segments, Segment{
		Kind: SegmentPersona,
		Text: personaText(a.config.Institution, intent, language),
	})

	for _, p := range passages {
		segments = append(segments, Segment{
			Kind: SegmentPassage,
			Text: fmt.Sprintf("[Source: %s]\n%s", p.Provenance, p.Text),
		})
	}

	for _, t := range turns {
		segments = append(segments, Segment{
			Kind: SegmentHistory,
			Text: fmt.Sprintf("Student: %s\nAssistant: %s", t.Query, t.Reply),
		})
	}

	segments = append(segments, Segment{Kind: SegmentQuery, Text: query})

	return &Prompt{Segments: segments, Budget: a.config.Budget}
}
