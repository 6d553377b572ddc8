package analyzer

import (
	"math"
	"strings"
)

// Readability holds standard readability indices for a text.
type Readability struct {
	FleschReadingEase    float64 `json:"flesch_reading_ease"`
	FleschKincaidGrade   float64 `json:"flesch_kincaid_grade"`
	GunningFog           float64 `json:"gunning_fog"`
	AutomatedReadability float64 `json:"automated_readability"`
	ColemanLiau          float64 `json:"coleman_liau"`
	Interpretation       string  `json:"interpretation"`
}

// ReadabilityScores computes the readability indices for a text.
func ReadabilityScores(text string) Readability {
	sentences := Sentences(text)
	words := Words(text)

	numSentences := float64(len(sentences))
	numWords := float64(len(words))
	if numSentences == 0 || numWords == 0 {
		return Readability{Interpretation: "Unknown"}
	}

	var syllables, letters, complexWords float64
	for _, w := range words {
		s := SyllableCount(w)
		syllables += float64(s)
		if s >= 3 {
			complexWords++
		}
		letters += float64(len(w))
	}

	wordsPerSentence := numWords / numSentences
	syllablesPerWord := syllables / numWords

	fre := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord
	fkg := 0.39*wordsPerSentence + 11.8*syllablesPerWord - 15.59
	fog := 0.4 * (wordsPerSentence + 100*complexWords/numWords)
	ari := 4.71*(letters/numWords) + 0.5*wordsPerSentence - 21.43

	// Coleman-Liau uses letters and sentences per 100 words.
	l := letters / numWords * 100
	s := numSentences / numWords * 100
	cli := 0.0588*l - 0.296*s - 15.8

	r := Readability{
		FleschReadingEase:    round1(fre),
		FleschKincaidGrade:   round1(fkg),
		GunningFog:           round1(fog),
		AutomatedReadability: round1(ari),
		ColemanLiau:          round1(cli),
	}
	r.Interpretation = interpretFlesch(r.FleschReadingEase)
	return r
}

func interpretFlesch(score float64) string {
	switch {
	case score >= 90:
		return "Very Easy (5th grade)"
	case score >= 80:
		return "Easy (6th grade)"
	case score >= 70:
		return "Fairly Easy (7th grade)"
	case score >= 60:
		return "Standard (8th-9th grade)"
	case score >= 50:
		return "Fairly Difficult (10th-12th grade)"
	case score >= 30:
		return "Difficult (College)"
	default:
		return "Very Difficult (College Graduate)"
	}
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

var passiveIndicators = []string{"was", "were", "been", "being", "is", "are", "am"}

func hasPassiveIndicator(sentence string) bool {
	lower := " " + strings.ToLower(sentence) + " "
	for _, ind := range passiveIndicators {
		if strings.Contains(lower, " "+ind+" ") {
			return true
		}
	}
	return false
}
