package quiz

import "strings"

// GradedQuestion is the outcome for one question in a graded attempt.
type GradedQuestion struct {
	QuestionNum   int    `json:"question_num"`
	Correct       bool   `json:"correct"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Result is a graded quiz attempt.
type Result struct {
	Score   float64          `json:"score"`
	Correct int              `json:"correct"`
	Total   int              `json:"total"`
	Results []GradedQuestion `json:"results"`
}

// Grade scores submitted answers against the question set. Fill-blank
// answers match case-insensitively after trimming; the rest match exactly.
func Grade(questions []Question, answers map[int]string) *Result {
	result := &Result{
		Total:   len(questions),
		Results: make([]GradedQuestion, 0, len(questions)),
	}

	for i, q := range questions {
		userAnswer := answers[i]

		var correct bool
		if q.Type == TypeFillBlank {
			correct = strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(q.CorrectAnswer))
		} else {
			correct = userAnswer == q.CorrectAnswer
		}
		if correct {
			result.Correct++
		}

		result.Results = append(result.Results, GradedQuestion{
			QuestionNum:   i + 1,
			Correct:       correct,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}

	if result.Total > 0 {
		result.Score = float64(result.Correct) / float64(result.Total) * 100
	}
	return result
}
