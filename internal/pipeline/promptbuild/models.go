// internal/pipeline/promptbuild/models.go
package promptbuild

import (
	"fmt"
	"strings"
)

// SegmentKind tags a prompt segment by its role in the assembly order.
type SegmentKind string

const (
	SegmentPersona SegmentKind = "persona"
	SegmentPassage SegmentKind = "passage"
	SegmentHistory SegmentKind = "history"
	SegmentQuery   SegmentKind = "query"
)

// Segment is one typed block of prompt text.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// Prompt is the assembled, budget-conforming input for the generation
// provider. Segments keep their assembly order: persona, passages,
// history (most recent last), current query.
type Prompt struct {
	Segments []Segment `json:"segments"`
	Budget   int       `json:"budget"`
}

// Size is the character count of the rendered prompt, separators included.
func (p *Prompt) Size() int {
	if len(p.Segments) == 0 {
		return 0
	}
	n := segmentSeparatorLen * (len(p.Segments) - 1)
	for _, s := range p.Segments {
		n += len(s.Text)
	}
	return n
}

// Render joins the segments into the provider-facing prompt text.
func (p *Prompt) Render() string {
	parts := make([]string, len(p.Segments))
	for i, s := range p.Segments {
		parts[i] = s.Text
	}
	return strings.Join(parts, segmentSeparator)
}

// Summary is a compact description of the prompt for interaction records.
func (p *Prompt) Summary() string {
	counts := make(map[SegmentKind]int, 4)
	for _, s := range p.Segments {
		counts[s.Kind]++
	}
	return strings.Join([]string{
		plural(counts[SegmentPassage], "passage"),
		plural(counts[SegmentHistory], "turn"),
	}, ", ")
}

const (
	segmentSeparator    = "\n\n"
	segmentSeparatorLen = len(segmentSeparator)
)

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
