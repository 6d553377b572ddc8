package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lecturenotes/internal/store"
	"lecturenotes/internal/utils"
)

// getAnalytics returns the rolling counters plus a per-lecture rollup
func (s *Server) getAnalytics(c *gin.Context) {
	analytics, err := s.store.Analytics()
	if err != nil {
		s.log.Errorw("failed to load analytics", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to load analytics")
		return
	}

	lectures, err := s.store.ListLectures()
	if err != nil {
		s.log.Errorw("failed to list lectures", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to list lectures")
		return
	}

	var totalWords int
	perLecture := make([]gin.H, 0, len(lectures))
	for _, lec := range lectures {
		words := 0
		if lec.Analysis != nil {
			words = lec.Analysis.BasicStats.TotalWords
		}
		totalWords += words
		perLecture = append(perLecture, gin.H{
			"id":       lec.ID,
			"title":    lec.Title,
			"subject":  lec.Subject,
			"duration": lec.Duration,
			"words":    words,
		})
	}

	results, err := s.store.QuizResults(0)
	if err != nil {
		s.log.Warnw("failed to load quiz results", "error", err)
	}
	var avgScore float64
	for _, r := range results {
		avgScore += r.Score
	}
	if len(results) > 0 {
		avgScore /= float64(len(results))
	}

	utils.Success(c, gin.H{
		"total_lectures":     analytics.TotalLectures,
		"total_duration":     analytics.TotalDuration,
		"total_quizzes":      analytics.TotalQuizzes,
		"total_words":        totalWords,
		"average_quiz_score": avgScore,
		"lectures":           perLecture,
	})
}

// getSettings returns the settings object
func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.store.Settings()
	if err != nil {
		s.log.Errorw("failed to load settings", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to load settings")
		return
	}
	utils.Success(c, gin.H{"settings": settings})
}

// SettingsRequest validates a settings update
type SettingsRequest struct {
	SpeechModel    string `json:"speech_model" binding:"required"`
	SummaryStyle   string `json:"summary_style" binding:"required,oneof=concise detailed bullet_points"`
	QuizDifficulty string `json:"quiz_difficulty" binding:"required,oneof=easy medium hard"`
	Language       string `json:"language" binding:"required"`
}

// updateSettings replaces the settings object
func (s *Server) updateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "invalid settings: "+err.Error())
		return
	}

	settings := store.Settings{
		SpeechModel:    req.SpeechModel,
		SummaryStyle:   req.SummaryStyle,
		QuizDifficulty: req.QuizDifficulty,
		Language:       req.Language,
	}
	if err := s.store.UpdateSettings(settings); err != nil {
		s.log.Errorw("failed to update settings", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to update settings")
		return
	}

	s.log.Infow("settings updated", "style", settings.SummaryStyle,
		"difficulty", settings.QuizDifficulty, "language", settings.Language)
	utils.Success(c, gin.H{"settings": settings})
}

// getStorage reports artifact disk usage
func (s *Server) getStorage(c *gin.Context) {
	info, err := s.files.Info()
	if err != nil {
		s.log.Errorw("failed to read storage info", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to read storage info")
		return
	}
	utils.Success(c, gin.H{
		"total_size":       info.TotalSizeHuman,
		"total_size_bytes": info.TotalSize,
		"file_count":       info.FileCount,
	})
}

// CleanupRequest sets the age threshold for artifact cleanup
type CleanupRequest struct {
	Days int `json:"days"`
}

// cleanup deletes artifact files older than the given number of days
func (s *Server) cleanup(c *gin.Context) {
	var req CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	days := req.Days
	if days == 0 {
		days, _ = strconv.Atoi(c.DefaultQuery("days", "30"))
	}
	if days < 1 {
		utils.Error(c, http.StatusBadRequest, "days must be a positive integer")
		return
	}

	deleted, err := s.files.Cleanup(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		s.log.Errorw("cleanup failed", "error", err)
		utils.Error(c, http.StatusInternalServerError, "cleanup failed")
		return
	}

	s.log.Infow("cleanup complete", "days", days, "deleted", deleted)
	utils.Success(c, gin.H{
		"deleted": deleted,
		"days":    days,
	})
}

// clearAll wipes the database and every artifact file. The id counter
// survives so lecture ids stay monotonic.
func (s *Server) clearAll(c *gin.Context) {
	if err := s.store.ClearAll(); err != nil {
		s.log.Errorw("failed to clear database", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to clear data")
		return
	}

	deleted, err := s.files.Wipe()
	if err != nil {
		s.log.Warnw("failed to wipe some artifact files", "deleted", deleted, "error", err)
	}

	s.log.Infow("all data cleared", "files_deleted", deleted)
	utils.Success(c, gin.H{
		"status":        "cleared",
		"files_deleted": deleted,
	})
}
