package analyzer

import (
	"math"
	"sort"
	"strings"
)

// Analysis is the full set of metrics derived from a transcript. It is
// persisted verbatim inside the lecture record.
type Analysis struct {
	BasicStats    BasicStats  `json:"basic_stats"`
	Readability   Readability `json:"readability"`
	WordFrequency []WordCount `json:"word_frequency"`
	Keywords      []string    `json:"keywords"`
	Sentiment     Sentiment   `json:"sentiment"`
	Topics        []string    `json:"topics"`
	Complexity    Complexity  `json:"complexity"`
}

type BasicStats struct {
	TotalWords        int     `json:"total_words"`
	UniqueWords       int     `json:"unique_words"`
	TotalSentences    int     `json:"total_sentences"`
	TotalParagraphs   int     `json:"total_paragraphs"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
	AvgWordLength     float64 `json:"avg_word_length"`
	LexicalDiversity  float64 `json:"lexical_diversity"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type Sentiment struct {
	Sentiment     string  `json:"sentiment"`
	Score         float64 `json:"score"`
	PositiveWords int     `json:"positive_words"`
	NegativeWords int     `json:"negative_words"`
}

type Complexity struct {
	LongSentencesCount  int     `json:"long_sentences_count"`
	LongSentencesPct    float64 `json:"long_sentences_percent"`
	ComplexWordsCount   int     `json:"complex_words_count"`
	ComplexWordsPct     float64 `json:"complex_words_percent"`
	PassiveVoiceCount   int     `json:"passive_voice_count"`
	PassiveVoicePct     float64 `json:"passive_voice_percent"`
}

// Analyze runs the complete analysis over a transcript.
func Analyze(text string) *Analysis {
	return &Analysis{
		BasicStats:    basicStats(text),
		Readability:   ReadabilityScores(text),
		WordFrequency: WordFrequency(text, 20),
		Keywords:      Keywords(text, 15),
		Sentiment:     analyzeSentiment(text),
		Topics:        Keywords(text, 8),
		Complexity:    analyzeComplexity(text),
	}
}

func basicStats(text string) BasicStats {
	sentences := Sentences(text)
	words := Words(text)

	unique := make(map[string]struct{})
	var wordLengthTotal int
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
		wordLengthTotal += len(w)
	}

	stats := BasicStats{
		TotalWords:      len(words),
		UniqueWords:     len(unique),
		TotalSentences:  len(sentences),
		TotalParagraphs: len(Paragraphs(text)),
	}
	if len(sentences) > 0 {
		stats.AvgSentenceLength = round1(float64(len(words)) / float64(len(sentences)))
	}
	if len(words) > 0 {
		stats.AvgWordLength = round1(float64(wordLengthTotal) / float64(len(words)))
		stats.LexicalDiversity = round1(float64(len(unique)) / float64(len(words)) * 100)
	}
	return stats
}

// WordFrequency returns the topN most frequent content words.
func WordFrequency(text string, topN int) []WordCount {
	counts := make(map[string]int)
	for _, w := range contentWords(text) {
		counts[w]++
	}

	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})

	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// Keywords returns the top content words as keywords.
func Keywords(text string, n int) []string {
	freq := WordFrequency(text, n)
	keywords := make([]string, 0, len(freq))
	for _, wc := range freq {
		keywords = append(keywords, wc.Word)
	}
	return keywords
}

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "wonderful": {},
	"fantastic": {}, "positive": {}, "better": {}, "best": {}, "success": {},
	"successful": {}, "improve": {}, "benefit": {}, "advantage": {},
	"effective": {}, "efficient": {}, "important": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "poor": {}, "terrible": {}, "awful": {}, "negative": {},
	"worse": {}, "worst": {}, "fail": {}, "failure": {}, "problem": {},
	"issue": {}, "difficult": {}, "challenge": {}, "disadvantage": {},
	"ineffective": {}, "wrong": {}, "error": {},
}

func analyzeSentiment(text string) Sentiment {
	var pos, neg int
	for _, w := range Words(strings.ToLower(text)) {
		if _, ok := positiveWords[w]; ok {
			pos++
		}
		if _, ok := negativeWords[w]; ok {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return Sentiment{Sentiment: "Neutral", PositiveWords: pos, NegativeWords: neg}
	}

	score := float64(pos-neg) / float64(total)
	label := "Neutral"
	if score > 0.2 {
		label = "Positive"
	} else if score < -0.2 {
		label = "Negative"
	}

	return Sentiment{
		Sentiment:     label,
		Score:         math.Round(score*100) / 100,
		PositiveWords: pos,
		NegativeWords: neg,
	}
}

func analyzeComplexity(text string) Complexity {
	sentences := Sentences(text)
	words := Words(text)

	var longSentences, passive int
	for _, s := range sentences {
		if len(Words(s)) > 25 {
			longSentences++
		}
		if hasPassiveIndicator(s) {
			passive++
		}
	}

	var complexWords int
	for _, w := range words {
		if SyllableCount(w) >= 3 {
			complexWords++
		}
	}

	c := Complexity{
		LongSentencesCount: longSentences,
		ComplexWordsCount:  complexWords,
		PassiveVoiceCount:  passive,
	}
	if len(sentences) > 0 {
		c.LongSentencesPct = round1(float64(longSentences) / float64(len(sentences)) * 100)
		c.PassiveVoicePct = round1(float64(passive) / float64(len(sentences)) * 100)
	}
	if len(words) > 0 {
		c.ComplexWordsPct = round1(float64(complexWords) / float64(len(words)) * 100)
	}
	return c
}
