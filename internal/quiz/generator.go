package quiz

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"unicode"

	"lecturenotes/internal/analyzer"
)

// Question types.
const (
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeFillBlank      = "fill_blank"
)

// Question is one generated quiz question. Options is letter-keyed and only
// present for multiple choice.
type Question struct {
	Type          string            `json:"type"`
	Question      string            `json:"question"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// Flashcard is a front/back study card derived from one sentence.
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
	Topic string `json:"topic"`
}

// Generator builds quizzes and flashcards from transcript text with
// heuristic sentence manipulation.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator with a random source.
func NewGenerator() *Generator {
	return &Generator{rng: rand.New(rand.NewSource(rand.Int63()))}
}

// NewSeeded returns a deterministic generator. Intended for tests.
func NewSeeded(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate builds a shuffled quiz: 60% multiple choice, 20% true/false and
// the remainder fill-in-the-blank. Fewer questions come back when the text
// has too few usable sentences.
func (g *Generator) Generate(text string, numQuestions int, difficulty string) []Question {
	sentences := analyzer.Sentences(text)
	if len(sentences) == 0 || numQuestions < 1 {
		return nil
	}
	if len(sentences) < numQuestions {
		numQuestions = len(sentences)
	}

	questions := g.multipleChoice(sentences, numQuestions*6/10, difficulty)
	questions = append(questions, g.trueFalse(sentences, numQuestions*2/10)...)
	questions = append(questions, g.fillBlank(sentences, numQuestions-len(questions))...)

	g.rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	if len(questions) > numQuestions {
		questions = questions[:numQuestions]
	}
	return questions
}

func (g *Generator) multipleChoice(sentences []string, n int, difficulty string) []Question {
	candidates := filterSentences(sentences, 8, 30)
	if len(candidates) == 0 {
		candidates = sentences
	}
	g.shuffleStrings(candidates)

	var questions []Question
	for _, sentence := range candidates {
		if len(questions) >= n {
			break
		}

		terms := keyTerms(sentence)
		if len(terms) == 0 {
			continue
		}
		term := terms[g.rng.Intn(len(terms))]

		blanked := strings.Replace(sentence, term, "______", 1)

		options := append([]string{term}, g.distractors(term, difficulty)...)
		if len(options) > 4 {
			options = options[:4]
		}
		g.shuffleStrings(options)

		letters := make(map[string]string, len(options))
		correct := ""
		for i, opt := range options {
			letter := string(rune('A' + i))
			letters[letter] = opt
			if opt == term {
				correct = letter
			}
		}

		questions = append(questions, Question{
			Type:          TypeMultipleChoice,
			Question:      "What fits best in the blank?\n\n" + blanked,
			Options:       letters,
			CorrectAnswer: correct,
			Explanation:   fmt.Sprintf("The correct answer is from the lecture: %q", sentence),
		})
	}
	return questions
}

func (g *Generator) trueFalse(sentences []string, n int) []Question {
	candidates := filterSentences(sentences, 6, 1<<30)
	if len(candidates) == 0 {
		return nil
	}
	g.shuffleStrings(candidates)

	var questions []Question
	for i, sentence := range candidates {
		if len(questions) >= n {
			break
		}

		if i%2 == 0 {
			questions = append(questions, Question{
				Type:          TypeTrueFalse,
				Question:      sentence,
				CorrectAnswer: "True",
				Explanation:   "This statement is directly from the lecture.",
			})
			continue
		}

		if modified := g.falseStatement(sentence); modified != sentence {
			questions = append(questions, Question{
				Type:          TypeTrueFalse,
				Question:      modified,
				CorrectAnswer: "False",
				Explanation:   fmt.Sprintf("The correct statement is: %q", sentence),
			})
		}
	}
	return questions
}

func (g *Generator) fillBlank(sentences []string, n int) []Question {
	candidates := filterSentences(sentences, 8, 1<<30)
	if len(candidates) == 0 {
		return nil
	}
	g.shuffleStrings(candidates)

	var questions []Question
	for _, sentence := range candidates {
		if len(questions) >= n {
			break
		}

		words := strings.Fields(sentence)
		type indexed struct {
			idx  int
			word string
		}
		var blankable []indexed
		for i, w := range words {
			clean := strings.Trim(w, ".,!?;:")
			lower := strings.ToLower(clean)
			if len(clean) > 4 && lower != "which" && lower != "where" &&
				lower != "there" && lower != "these" && lower != "those" {
				blankable = append(blankable, indexed{i, clean})
			}
		}
		if len(blankable) == 0 {
			continue
		}

		pick := blankable[g.rng.Intn(len(blankable))]
		blanked := make([]string, len(words))
		copy(blanked, words)
		blanked[pick.idx] = "______"

		questions = append(questions, Question{
			Type:          TypeFillBlank,
			Question:      "Fill in the blank:\n\n" + strings.Join(blanked, " "),
			CorrectAnswer: strings.ToLower(pick.word),
			Explanation:   fmt.Sprintf("The complete sentence is: %q", sentence),
		})
	}
	return questions
}

// distractors synthesizes plausible wrong answers from the correct term.
func (g *Generator) distractors(correct, difficulty string) []string {
	var out []string

	if len(correct) > 6 {
		out = append(out,
			correct[:3]+"ology",
			correct[:len(correct)-2]+"tion",
			correct+"al",
		)
	}
	if isTitle(correct) {
		out = append(out, "Alternative", "Different", "Another")
	}
	out = append(out, "None of the above", "All of the above", "Both A and B", "None")

	// Drop anything equal to the answer itself.
	filtered := out[:0]
	for _, d := range out {
		if !strings.EqualFold(d, correct) {
			filtered = append(filtered, d)
		}
	}
	if len(filtered) > 3 {
		filtered = filtered[:3]
	}
	return filtered
}

var falseRewrites = []struct {
	pattern     *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\bnot\b ?`), ""},
	{regexp.MustCompile(`\bis\b`), "is not"},
	{regexp.MustCompile(`\bcan\b`), "cannot"},
	{regexp.MustCompile(`\bwill\b`), "will not"},
	{regexp.MustCompile(`\balways\b`), "never"},
	{regexp.MustCompile(`\bnever\b`), "always"},
}

var numberPattern = regexp.MustCompile(`\b\d+\b`)

// falseStatement negates the sentence with the first applicable rewrite, or
// perturbs a number when none applies. Returns the input unchanged when the
// sentence cannot be falsified.
func (g *Generator) falseStatement(sentence string) string {
	for _, rw := range falseRewrites {
		if loc := rw.pattern.FindStringIndex(sentence); loc != nil {
			return sentence[:loc[0]] + rw.replacement + sentence[loc[1]:]
		}
	}

	if num := numberPattern.FindString(sentence); num != "" {
		perturbed := fmt.Sprintf("%s0", num) // shift magnitude, keeps it clearly wrong
		return strings.Replace(sentence, num, perturbed, 1)
	}
	return sentence
}

// Flashcards derives "What is X?" cards from informative sentences.
func (g *Generator) Flashcards(text string, n int) []Flashcard {
	sentences := analyzer.Sentences(text)
	candidates := filterSentences(sentences, 8, 30)
	if len(candidates) == 0 {
		candidates = sentences
	}
	g.shuffleStrings(candidates)

	var cards []Flashcard
	for _, sentence := range candidates {
		if len(cards) >= n {
			break
		}
		terms := keyTerms(sentence)
		if len(terms) == 0 {
			continue
		}
		term := terms[g.rng.Intn(len(terms))]
		cards = append(cards, Flashcard{
			Front: fmt.Sprintf("What is %s?", term),
			Back:  sentence,
			Topic: term,
		})
	}
	return cards
}

func (g *Generator) shuffleStrings(s []string) {
	g.rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}

func filterSentences(sentences []string, minWords, maxWords int) []string {
	var out []string
	for _, s := range sentences {
		n := len(strings.Fields(s))
		if n >= minWords && n <= maxWords {
			out = append(out, s)
		}
	}
	return out
}

// keyTerms picks candidate answer terms: capitalized or long words.
func keyTerms(sentence string) []string {
	var terms []string
	for _, w := range strings.Fields(sentence) {
		w = strings.Trim(w, ".,!?;:")
		if len(w) > 4 && (isTitle(w) || len(w) > 8) {
			terms = append(terms, w)
		}
	}
	return terms
}

func isTitle(w string) bool {
	if w == "" {
		return false
	}
	r := []rune(w)
	return unicode.IsUpper(r[0])
}
