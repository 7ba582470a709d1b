// internal/pipeline/promptbuild/assembler_test.go
package promptbuild

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-assist/internal/common/errors"
	"campus-assist/internal/common/logger"
	"campus-assist/internal/models"
	"campus-assist/internal/session"
)

func newTestAssembler(budget int) *Assembler {
	return NewAssembler(&Config{Budget: budget, Institution: "Riverside College"}, logger.Nop())
}

func kinds(p *Prompt) []SegmentKind {
	out := make([]SegmentKind, len(p.Segments))
	for i, s := range p.Segments {
		out[i] = s.Kind
	}
	return out
}

func TestAssembleSegmentOrder(t *testing.T) {
	a := newTestAssembler(4000)

	p, err := a.Assemble(
		[]session.Turn{{Query: "hi", Reply: "hello"}},
		[]models.RetrievedPassage{
			{DocumentID: "a", Text: "Enrollment opens September 1.", Score: 0.9, Provenance: "enrollment.md"},
			{DocumentID: "b", Text: "Fees are due October 15.", Score: 0.8, Provenance: "fees.md"},
		},
		"when do classes start", "en", "academic",
	)
	require.NoError(t, err)

	assert.Equal(t, []SegmentKind{
		SegmentPersona, SegmentPassage, SegmentPassage, SegmentHistory, SegmentQuery,
	}, kinds(p))

	last := p.Segments[len(p.Segments)-1]
	assert.Equal(t, "when do classes start", last.Text)
	assert.Contains(t, p.Segments[1].Text, "[Source: enrollment.md]")
	assert.LessOrEqual(t, p.Size(), 4000)
}

func TestAssemblePersonaByIntentAndLanguage(t *testing.T) {
	a := newTestAssembler(4000)

	tests := []struct {
		name     string
		intent   string
		language string
		want     []string
	}{
		{"fees intent", "fees", "en", []string{"student finance", "Riverside College"}},
		{"unknown intent falls back", "weather", "en", []string{"helpful assistant"}},
		{"non-english adds language instruction", "general", "tr", []string{"Respond in Turkish."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := a.Assemble(nil, nil, "question", tt.language, tt.intent)
			require.NoError(t, err)
			for _, want := range tt.want {
				assert.Contains(t, p.Segments[0].Text, want)
			}
		})
	}
}

func TestAssembleDropsHistoryBeforePassages(t *testing.T) {
	passages := []models.RetrievedPassage{
		{DocumentID: "a", Text: strings.Repeat("p", 120), Score: 0.9, Provenance: "a.md"},
	}
	turns := []session.Turn{
		{Query: strings.Repeat("q", 100), Reply: strings.Repeat("r", 100)},
		{Query: "recent question", Reply: "recent answer"},
	}

	// Budget fits persona, the passage, one history turn and the query,
	// but not both turns.
	a := newTestAssembler(420)

	p, err := a.Assemble(turns, passages, "query", "en", "general")
	require.NoError(t, err)

	var history []string
	passageCount := 0
	for _, s := range p.Segments {
		switch s.Kind {
		case SegmentHistory:
			history = append(history, s.Text)
		case SegmentPassage:
			passageCount++
		}
	}

	assert.Equal(t, 1, passageCount, "passages survive while history remains droppable")
	require.Len(t, history, 1)
	assert.Contains(t, history[0], "recent question", "oldest turn dropped first")
	assert.LessOrEqual(t, p.Size(), 420)
}

func TestAssembleDropsLowestScorePassages(t *testing.T) {
	passages := []models.RetrievedPassage{
		{DocumentID: "best", Text: strings.Repeat("a", 80), Score: 0.95, Provenance: "best.md"},
		{DocumentID: "mid", Text: strings.Repeat("b", 80), Score: 0.80, Provenance: "mid.md"},
		{DocumentID: "worst", Text: strings.Repeat("c", 80), Score: 0.55, Provenance: "worst.md"},
	}

	a := newTestAssembler(330)

	p, err := a.Assemble(nil, passages, "query", "en", "general")
	require.NoError(t, err)

	var provenances []string
	for _, s := range p.Segments {
		if s.Kind == SegmentPassage {
			provenances = append(provenances, s.Text)
		}
	}

	require.Len(t, provenances, 1)
	assert.Contains(t, provenances[0], "best.md")
	assert.LessOrEqual(t, p.Size(), 330)
}

func TestAssembleQueryNeverTruncated(t *testing.T) {
	a := newTestAssembler(4000)

	query := strings.Repeat("x", 3000)
	p, err := a.Assemble(
		[]session.Turn{{Query: strings.Repeat("q", 500), Reply: strings.Repeat("r", 500)}},
		[]models.RetrievedPassage{{DocumentID: "a", Text: strings.Repeat("p", 1000), Score: 0.9, Provenance: "a.md"}},
		query, "en", "general",
	)
	require.NoError(t, err)

	last := p.Segments[len(p.Segments)-1]
	assert.Equal(t, SegmentQuery, last.Kind)
	assert.Equal(t, query, last.Text)
}

func TestAssembleQueryTooLarge(t *testing.T) {
	a := newTestAssembler(100)

	_, err := a.Assemble(nil, nil, strings.Repeat("x", 200), "en", "general")
	require.Error(t, err)

	var stdErr *errors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, errors.ErrCodePromptQueryTooLarge, stdErr.Code)
}

func TestAssembleDeterministic(t *testing.T) {
	a := newTestAssembler(500)

	turns := []session.Turn{{Query: "q1", Reply: "r1"}, {Query: "q2", Reply: "r2"}}
	passages := []models.RetrievedPassage{
		{DocumentID: "a", Text: strings.Repeat("p", 150), Score: 0.9, Provenance: "a.md"},
	}

	p1, err := a.Assemble(turns, passages, "query", "en", "general")
	require.NoError(t, err)
	p2, err := a.Assemble(turns, passages, "query", "en", "general")
	require.NoError(t, err)

	assert.Equal(t, p1.Render(), p2.Render())
}
