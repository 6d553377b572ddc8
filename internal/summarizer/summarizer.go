package summarizer

import (
	"context"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"lecturenotes/internal/analyzer"
	"lecturenotes/internal/logger"
)

// Summary styles.
const (
	StyleConcise      = "concise"
	StyleDetailed     = "detailed"
	StyleBulletPoints = "bullet_points"
)

// Summary is the result of summarizing a transcript.
type Summary struct {
	Summary        string   `json:"summary"`
	KeyPoints      []string `json:"key_points,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	Method         string   `json:"method"`
	Model          string   `json:"model,omitempty"`
	OriginalLength int      `json:"original_length"`
	SummaryLength  int      `json:"summary_length"`
	NumPoints      int      `json:"num_points,omitempty"`
}

// Summarizer produces summaries through an LLM when a key is configured,
// falling back to extractive sentence scoring otherwise.
type Summarizer struct {
	client *openai.Client
	model  string
	log    *logger.Logger
}

// New creates a summarizer. With an empty apiKey only the extractive path
// is available.
func New(apiKey, model string, log *logger.Logger) *Summarizer {
	s := &Summarizer{model: model, log: log}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	return s
}

// Summarize generates a summary in the requested style. Abstractive errors
// degrade to the extractive fallback rather than failing the caller.
func (s *Summarizer) Summarize(ctx context.Context, text, style string) *Summary {
	if len(strings.TrimSpace(text)) < 50 {
		return &Summary{
			Summary:        text,
			Method:         "none",
			OriginalLength: len(text),
			SummaryLength:  len(text),
		}
	}

	if s.client != nil {
		summary, err := s.abstractive(ctx, text, style)
		if err == nil {
			return summary
		}
		s.log.Warnw("abstractive summarization failed, using extractive fallback", "error", err)
	}

	if style == StyleBulletPoints {
		return BulletPoints(text)
	}
	return Extractive(text)
}

// Extractive summarizes by frequency-scoring sentences: first and last
// sentences get a position bonus, mid-length sentences a length bonus, and
// the top quarter (min 3) are kept in original order.
func Extractive(text string) *Summary {
	sentences := analyzer.Sentences(text)
	if len(sentences) <= 3 {
		return &Summary{
			Summary:        text,
			Method:         "extractive",
			OriginalLength: len(text),
			SummaryLength:  len(text),
		}
	}

	frequencies := normalizedWordFrequencies(text)

	scores := make([]float64, len(sentences))
	for i, sentence := range sentences {
		words := analyzer.Words(strings.ToLower(sentence))
		var score float64
		for _, w := range words {
			score += frequencies[w]
		}

		if i == 0 {
			score *= 1.5
		} else if i == len(sentences)-1 {
			score *= 1.2
		}

		switch n := len(words); {
		case n >= 10 && n <= 30:
			score *= 1.2
		case n < 5:
			score *= 0.5
		}
		scores[i] = score
	}

	keep := len(sentences) / 4
	if keep < 3 {
		keep = 3
	}

	indices := make([]int, len(sentences))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool { return scores[indices[a]] > scores[indices[b]] })
	indices = indices[:keep]
	sort.Ints(indices)

	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = sentences[idx]
	}
	summary := strings.Join(parts, " ")

	return &Summary{
		Summary:        summary,
		Method:         "extractive",
		OriginalLength: len(text),
		SummaryLength:  len(summary),
	}
}

// BulletPoints renders the extractive key sentences as bullet lines.
func BulletPoints(text string) *Summary {
	extracted := Extractive(text)
	keySentences := analyzer.Sentences(extracted.Summary)

	lines := make([]string, 0, len(keySentences))
	for _, s := range keySentences {
		if s = strings.TrimSpace(s); s != "" {
			lines = append(lines, "- "+s)
		}
	}
	summary := strings.Join(lines, "\n")

	return &Summary{
		Summary:        summary,
		KeyPoints:      keySentences,
		Method:         "bullet_points",
		OriginalLength: len(text),
		SummaryLength:  len(summary),
		NumPoints:      len(lines),
	}
}

// KeyTopics returns the most frequent content words, title-cased.
func KeyTopics(text string, n int) []string {
	keywords := analyzer.Keywords(text, n)
	topics := make([]string, len(keywords))
	for i, k := range keywords {
		topics[i] = titleCase(k)
	}
	return topics
}

func normalizedWordFrequencies(text string) map[string]float64 {
	counts := make(map[string]int)
	for _, wc := range analyzer.WordFrequency(text, 1<<30) {
		counts[wc.Word] = wc.Count
	}

	maxFreq := 0
	for _, c := range counts {
		if c > maxFreq {
			maxFreq = c
		}
	}

	out := make(map[string]float64, len(counts))
	if maxFreq == 0 {
		return out
	}
	for w, c := range counts {
		out[w] = float64(c) / float64(maxFreq)
	}
	return out
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
