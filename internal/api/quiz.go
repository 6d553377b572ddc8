package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lecturenotes/internal/quiz"
	"lecturenotes/internal/store"
	"lecturenotes/internal/utils"
)

// QuizRequest selects the size and difficulty of a generated quiz
type QuizRequest struct {
	NumQuestions int    `json:"num_questions"`
	Difficulty   string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// generateQuiz builds a quiz from the lecture transcript
func (s *Server) generateQuiz(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}
	if lec.TranscriptText == "" {
		utils.Error(c, http.StatusBadRequest, "lecture has no transcript")
		return
	}

	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.Error(c, http.StatusBadRequest, "difficulty must be one of: easy, medium, hard")
		return
	}
	if req.NumQuestions < 1 {
		req.NumQuestions = 10
	}
	if req.NumQuestions > 50 {
		req.NumQuestions = 50
	}
	if req.Difficulty == "" {
		settings, err := s.store.Settings()
		if err == nil {
			req.Difficulty = settings.QuizDifficulty
		}
	}

	questions := s.quiz.Generate(lec.TranscriptText, req.NumQuestions, req.Difficulty)
	if len(questions) == 0 {
		utils.Error(c, http.StatusBadRequest, "transcript too short to generate a quiz")
		return
	}

	s.log.Infow("quiz generated", "lecture", lec.ID, "questions", len(questions),
		"difficulty", req.Difficulty)
	utils.Success(c, gin.H{
		"lecture_id": lec.ID,
		"difficulty": req.Difficulty,
		"questions":  questions,
	})
}

// GradeRequest carries the question set back with the user's answers,
// keyed by question index.
type GradeRequest struct {
	Questions []quiz.Question   `json:"questions" binding:"required"`
	Answers   map[string]string `json:"answers" binding:"required"`
}

// gradeQuiz scores an attempt and records the result
func (s *Server) gradeQuiz(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}

	var req GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "questions and answers are required")
		return
	}

	answers := make(map[int]string, len(req.Answers))
	for k, v := range req.Answers {
		idx, err := strconv.Atoi(k)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "answer keys must be question indexes")
			return
		}
		answers[idx] = v
	}

	result := quiz.Grade(req.Questions, answers)

	if err := s.store.AddQuizResult(store.QuizResult{
		LectureID: lec.ID,
		Score:     result.Score,
		Correct:   result.Correct,
		Total:     result.Total,
	}); err != nil {
		s.log.Warnw("failed to record quiz result", "lecture", lec.ID, "error", err)
	}

	s.log.Infow("quiz graded", "lecture", lec.ID, "score", result.Score,
		"correct", result.Correct, "total", result.Total)
	utils.Success(c, gin.H{
		"lecture_id": lec.ID,
		"score":      result.Score,
		"correct":    result.Correct,
		"total":      result.Total,
		"results":    result.Results,
	})
}

// FlashcardRequest selects how many cards to derive
type FlashcardRequest struct {
	NumCards int `json:"num_cards"`
}

// generateFlashcards builds study flashcards from the transcript
func (s *Server) generateFlashcards(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}
	if lec.TranscriptText == "" {
		utils.Error(c, http.StatusBadRequest, "lecture has no transcript")
		return
	}

	var req FlashcardRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NumCards < 1 {
		req.NumCards = 15
	}
	if req.NumCards > 50 {
		req.NumCards = 50
	}

	cards := s.quiz.Flashcards(lec.TranscriptText, req.NumCards)
	utils.Success(c, gin.H{
		"lecture_id": lec.ID,
		"flashcards": cards,
	})
}
