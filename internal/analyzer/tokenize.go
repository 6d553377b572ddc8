package analyzer

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"this": {}, "that": {}, "with": {}, "from": {}, "have": {}, "will": {},
	"your": {}, "about": {}, "which": {}, "their": {}, "would": {},
	"there": {}, "could": {}, "other": {}, "than": {}, "then": {},
	"them": {}, "these": {}, "some": {}, "such": {}, "into": {},
	"just": {}, "only": {}, "over": {}, "also": {}, "back": {},
	"after": {}, "more": {}, "very": {}, "when": {}, "been": {},
	"well": {}, "much": {}, "where": {}, "should": {}, "being": {},
	"through": {}, "before": {}, "because": {}, "between": {},
	"during": {}, "each": {}, "here": {}, "does": {}, "those": {},
	"what": {}, "were": {}, "they": {}, "said": {}, "like": {},
}

// Sentences splits text into sentences on terminal punctuation.
func Sentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Skip decimals and abbreviated sequences like "3.14" or "e.g."
			if r == '.' && i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				continue
			}
			s := strings.TrimSpace(current.String())
			if s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Words splits text into word tokens, stripping surrounding punctuation.
func Words(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f != "" {
			words = append(words, f)
		}
	}
	return words
}

// Paragraphs splits text on blank lines.
func Paragraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// contentWords lowercases and filters out stop words and short tokens.
func contentWords(text string) []string {
	var out []string
	for _, w := range Words(strings.ToLower(text)) {
		if len(w) > 3 && !isStopWord(w) && isAlnum(w) {
			out = append(out, w)
		}
	}
	return out
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

func isAlnum(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SyllableCount estimates the number of syllables in an English word by
// counting vowel groups, with a silent-e adjustment.
func SyllableCount(word string) int {
	word = strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r)
	}))
	if word == "" {
		return 0
	}

	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}

	if strings.HasSuffix(word, "e") && !strings.HasSuffix(word, "le") && count > 1 {
		count--
	}
	if count == 0 {
		count = 1
	}
	return count
}
