package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"lecturenotes/internal/store"
	"lecturenotes/internal/stt"
	"lecturenotes/internal/utils"
)

// listLectures handles GET /api/v1/lectures with optional search and
// pagination
func (s *Server) listLectures(c *gin.Context) {
	var (
		lectures []store.Lecture
		err      error
	)
	if q := c.Query("q"); q != "" {
		lectures, err = s.store.SearchLectures(q)
	} else {
		lectures, err = s.store.ListLectures()
	}
	if err != nil {
		s.log.Errorw("failed to list lectures", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to list lectures")
		return
	}

	limit, offset := pagination(c)
	total := len(lectures)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	lectures = lectures[offset:end]

	items := make([]gin.H, 0, len(lectures))
	for _, lec := range lectures {
		items = append(items, gin.H{
			"id":                 lec.ID,
			"title":              lec.Title,
			"subject":            lec.Subject,
			"tags":               lec.Tags,
			"duration":           lec.Duration,
			"language":           lec.Language,
			"created_at":         lec.CreatedAt,
			"transcript_preview": utils.Truncate(lec.TranscriptText, 100),
		})
	}

	utils.Success(c, gin.H{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"count":  len(items),
	})
}

// getLecture returns one full lecture record
func (s *Server) getLecture(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}

	utils.Success(c, gin.H{
		"id":              lec.ID,
		"title":           lec.Title,
		"subject":         lec.Subject,
		"tags":            lec.Tags,
		"audio_path":      lec.AudioPath,
		"transcript_text": lec.TranscriptText,
		"summary_text":    lec.SummaryText,
		"duration":        lec.Duration,
		"language":        lec.Language,
		"speech_model":    lec.SpeechModel,
		"analysis":        lec.Analysis,
		"created_at":      lec.CreatedAt,
	})
}

// deleteLecture removes the record and its artifact files
func (s *Server) deleteLecture(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}

	if err := s.files.DeleteArtifacts(lec.AudioPath, lec.TranscriptPath, lec.SummaryPath); err != nil {
		s.log.Warnw("failed to delete lecture artifacts", "lecture", lec.ID, "error", err)
	}
	if err := s.store.DeleteLecture(lec.ID); err != nil {
		s.log.Errorw("failed to delete lecture", "lecture", lec.ID, "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to delete lecture")
		return
	}

	s.log.Infow("lecture deleted", "lecture", lec.ID)
	utils.Success(c, gin.H{
		"id":     lec.ID,
		"status": "deleted",
	})
}

// getTranscript returns the transcript, optionally with timestamps, a
// substring search (q) or a point-in-time lookup (at, in seconds)
func (s *Server) getTranscript(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}

	result := s.loadTranscript(lec)

	if q := c.Query("q"); q != "" {
		utils.Success(c, gin.H{
			"lecture_id": lec.ID,
			"query":      q,
			"matches":    result.Search(q),
		})
		return
	}

	if at := c.Query("at"); at != "" {
		seconds, err := strconv.ParseFloat(at, 64)
		if err != nil {
			utils.Error(c, http.StatusBadRequest, "invalid 'at' value")
			return
		}
		seg, found := result.SegmentAt(seconds)
		if !found {
			utils.Error(c, http.StatusNotFound, "no segment at that time")
			return
		}
		utils.Success(c, gin.H{"lecture_id": lec.ID, "segment": seg})
		return
	}

	withTimestamps := c.Query("timestamps") == "true"
	utils.Success(c, gin.H{
		"lecture_id": lec.ID,
		"language":   result.Language,
		"duration":   result.Duration,
		"text":       result.Format(withTimestamps),
		"segments":   result.Segments,
	})
}

// getSummary returns the stored summary
func (s *Server) getSummary(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}

	utils.Success(c, gin.H{
		"lecture_id": lec.ID,
		"title":      lec.Title,
		"summary":    lec.SummaryText,
	})
}

// RestyleRequest selects a summary style for regeneration
type RestyleRequest struct {
	Style string `json:"style" binding:"required,oneof=concise detailed bullet_points"`
}

// regenerateSummary rebuilds the summary in a different style, replacing
// the stored one and its study-notes artifact
func (s *Server) regenerateSummary(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}

	var req RestyleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "style must be one of: concise, detailed, bullet_points")
		return
	}
	if lec.TranscriptText == "" {
		utils.Error(c, http.StatusBadRequest, "lecture has no transcript")
		return
	}

	summary := s.sum.Summarize(c.Request.Context(), lec.TranscriptText, req.Style)
	notes := s.sum.StudyNotes(c.Request.Context(), lec.TranscriptText, lec.Title)

	summaryPath, err := s.files.SaveNotes(lec.Title, notes)
	if err != nil {
		s.log.Warnw("failed to save study notes", "lecture", lec.ID, "error", err)
	}

	err = s.store.UpdateLecture(lec.ID, func(l *store.Lecture) {
		l.SummaryText = summary.Summary
		if summaryPath != "" {
			l.SummaryPath = summaryPath
		}
	})
	if err != nil {
		s.log.Errorw("failed to update summary", "lecture", lec.ID, "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to update summary")
		return
	}

	s.log.Infow("summary regenerated", "lecture", lec.ID, "style", req.Style, "method", summary.Method)
	utils.Success(c, gin.H{
		"lecture_id": lec.ID,
		"style":      req.Style,
		"method":     summary.Method,
		"summary":    summary.Summary,
	})
}

// getNotes serves the study-notes markdown artifact
func (s *Server) getNotes(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}

	if lec.SummaryPath == "" {
		utils.Error(c, http.StatusNotFound, "no study notes for this lecture")
		return
	}
	raw, err := os.ReadFile(lec.SummaryPath)
	if err != nil {
		s.log.Errorw("failed to read study notes", "lecture", lec.ID, "error", err)
		utils.Error(c, http.StatusNotFound, "study notes file not found")
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", raw)
}

// getAnalysis returns the stored analysis blob
func (s *Server) getAnalysis(c *gin.Context) {
	lec, ok := s.lectureParam(c)
	if !ok {
		return
	}
	if lec.Analysis == nil {
		utils.Error(c, http.StatusNotFound, "no analysis for this lecture")
		return
	}
	utils.Success(c, gin.H{
		"lecture_id": lec.ID,
		"analysis":   lec.Analysis,
	})
}

// lectureParam resolves the :id path parameter to a lecture, writing the
// error response itself on failure.
func (s *Server) lectureParam(c *gin.Context) (store.Lecture, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		utils.Error(c, http.StatusBadRequest, "invalid lecture id")
		return store.Lecture{}, false
	}

	lec, err := s.store.GetLecture(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.Error(c, http.StatusNotFound, "lecture not found")
		} else {
			s.log.Errorw("failed to load lecture", "lecture", id, "error", err)
			utils.Error(c, http.StatusInternalServerError, "failed to load lecture")
		}
		return store.Lecture{}, false
	}
	return lec, true
}

// loadTranscript prefers the transcript artifact (which carries segments)
// and falls back to the text stored in the record.
func (s *Server) loadTranscript(lec store.Lecture) *stt.Result {
	if lec.TranscriptPath != "" {
		var result stt.Result
		if err := s.files.LoadTranscript(lec.TranscriptPath, &result); err == nil {
			return &result
		}
		s.log.Warnw("transcript artifact unreadable, using stored text", "lecture", lec.ID)
	}
	return &stt.Result{
		Text:     lec.TranscriptText,
		Language: lec.Language,
		Duration: lec.Duration,
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
