package summarizer

import (
	"context"
	"fmt"
	"strings"
)

// StudyNotes renders a markdown study-notes document for a lecture: summary,
// key topics, key points and compression statistics.
func (s *Summarizer) StudyNotes(ctx context.Context, text, title string) string {
	summary := s.Summarize(ctx, text, StyleConcise)
	bullets := BulletPoints(text)

	topics := summary.Topics
	if len(topics) == 0 {
		topics = KeyTopics(text, 5)
	}

	points := summary.KeyPoints
	if len(points) == 0 {
		points = bullets.KeyPoints
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Study Notes: %s\n\n", title)

	b.WriteString("## Summary\n")
	b.WriteString(summary.Summary)
	b.WriteString("\n\n")

	b.WriteString("## Key Topics\n")
	for _, t := range topics {
		fmt.Fprintf(&b, "- **%s**\n", t)
	}
	b.WriteString("\n")

	b.WriteString("## Key Points\n")
	for _, p := range points {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\n")

	ratio := 0.0
	if summary.OriginalLength > 0 {
		ratio = float64(summary.SummaryLength) / float64(summary.OriginalLength) * 100
	}
	b.WriteString("## Statistics\n")
	fmt.Fprintf(&b, "- Original text length: %d characters\n", summary.OriginalLength)
	fmt.Fprintf(&b, "- Summary length: %d characters\n", summary.SummaryLength)
	fmt.Fprintf(&b, "- Compression ratio: %.1f%%\n", ratio)
	fmt.Fprintf(&b, "- Method: %s\n", summary.Method)

	b.WriteString("\n---\n*Generated automatically from the lecture transcript*\n")
	return b.String()
}
