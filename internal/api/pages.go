package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lecturenotes/internal/store"
	"lecturenotes/internal/utils"
)

// dashboardPage lists recent lectures with quick stats
func (s *Server) dashboardPage(c *gin.Context) {
	lectures, err := s.store.ListLectures()
	if err != nil {
		s.log.Errorw("failed to list lectures", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "message": "failed to load lectures"})
		return
	}
	analytics, err := s.store.Analytics()
	if err != nil {
		s.log.Errorw("failed to load analytics", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "message": "failed to load analytics"})
		return
	}

	items := make([]gin.H, 0, len(lectures))
	for _, lec := range lectures {
		items = append(items, gin.H{
			"ID":       lec.ID,
			"Title":    lec.Title,
			"Subject":  lec.Subject,
			"Duration": utils.FormatDuration(lec.Duration),
			"Created":  utils.TimeAgo(lec.CreatedAt),
			"Preview":  utils.Truncate(lec.TranscriptText, 150),
		})
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Title":         "Dashboard",
		"Lectures":      items,
		"TotalLectures": analytics.TotalLectures,
		"TotalDuration": utils.FormatDuration(analytics.TotalDuration),
		"TotalQuizzes":  analytics.TotalQuizzes,
	})
}

// uploadPage renders the upload form
func (s *Server) uploadPage(c *gin.Context) {
	settings, err := s.store.Settings()
	if err != nil {
		s.log.Errorw("failed to load settings", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "message": "failed to load settings"})
		return
	}
	c.HTML(http.StatusOK, "upload.html", gin.H{
		"Title":    "Upload Lecture",
		"Settings": settings,
		"MaxMB":    s.cfg.MaxUploadMB,
	})
}

// transcriptPage renders the transcript with timestamped segments
func (s *Server) transcriptPage(c *gin.Context) {
	lec, ok := s.lecturePage(c)
	if !ok {
		return
	}

	result := s.loadTranscript(lec)
	c.HTML(http.StatusOK, "transcript.html", gin.H{
		"Title":      lec.Title,
		"Lecture":    lec,
		"Transcript": result.Format(true),
		"Segments":   result.Segments,
		"Duration":   utils.FormatDuration(result.Duration),
		"Language":   result.Language,
	})
}

// summaryPage renders the summary with analysis highlights
func (s *Server) summaryPage(c *gin.Context) {
	lec, ok := s.lecturePage(c)
	if !ok {
		return
	}

	data := gin.H{
		"Title":   lec.Title,
		"Lecture": lec,
		"Summary": lec.SummaryText,
	}
	if lec.Analysis != nil {
		data["WordCount"] = lec.Analysis.BasicStats.TotalWords
		data["ReadingTime"] = utils.ReadingTime(lec.TranscriptText)
		data["Keywords"] = lec.Analysis.Keywords
		data["Readability"] = lec.Analysis.Readability
	}
	c.HTML(http.StatusOK, "summary.html", data)
}

// quizPage renders the interactive quiz view; questions are fetched by
// the page's script from the API.
func (s *Server) quizPage(c *gin.Context) {
	lec, ok := s.lecturePage(c)
	if !ok {
		return
	}

	settings, _ := s.store.Settings()
	c.HTML(http.StatusOK, "quiz.html", gin.H{
		"Title":      lec.Title,
		"Lecture":    lec,
		"Difficulty": settings.QuizDifficulty,
	})
}

// analyticsPage renders the study analytics overview
func (s *Server) analyticsPage(c *gin.Context) {
	analytics, err := s.store.Analytics()
	if err != nil {
		s.log.Errorw("failed to load analytics", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "message": "failed to load analytics"})
		return
	}
	lectures, err := s.store.ListLectures()
	if err != nil {
		s.log.Errorw("failed to list lectures", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "message": "failed to load lectures"})
		return
	}
	results, err := s.store.QuizResults(0)
	if err != nil {
		s.log.Warnw("failed to load quiz results", "error", err)
	}

	var totalWords int
	rows := make([]gin.H, 0, len(lectures))
	for _, lec := range lectures {
		words := 0
		if lec.Analysis != nil {
			words = lec.Analysis.BasicStats.TotalWords
		}
		totalWords += words
		rows = append(rows, gin.H{
			"ID":       lec.ID,
			"Title":    lec.Title,
			"Subject":  lec.Subject,
			"Duration": utils.FormatDuration(lec.Duration),
			"Words":    words,
		})
	}

	var avgScore float64
	for _, r := range results {
		avgScore += r.Score
	}
	if len(results) > 0 {
		avgScore /= float64(len(results))
	}

	c.HTML(http.StatusOK, "analytics.html", gin.H{
		"Title":         "Analytics",
		"TotalLectures": analytics.TotalLectures,
		"TotalDuration": utils.FormatDuration(analytics.TotalDuration),
		"TotalQuizzes":  analytics.TotalQuizzes,
		"TotalWords":    totalWords,
		"AverageScore":  avgScore,
		"Lectures":      rows,
	})
}

// lecturePage resolves :id for page handlers, rendering the error page
// itself on failure.
func (s *Server) lecturePage(c *gin.Context) (store.Lecture, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.HTML(http.StatusBadRequest, "error.html", gin.H{"Title": "Error", "message": "invalid lecture id"})
		return store.Lecture{}, false
	}

	lec, err := s.store.GetLecture(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.HTML(http.StatusNotFound, "error.html", gin.H{"Title": "Error", "message": "lecture not found"})
		} else {
			s.log.Errorw("failed to load lecture", "lecture", id, "error", err)
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "message": "failed to load lecture"})
		}
		return store.Lecture{}, false
	}
	return lec, true
}

// settingsPage renders the settings form
func (s *Server) settingsPage(c *gin.Context) {
	settings, err := s.store.Settings()
	if err != nil {
		s.log.Errorw("failed to load settings", "error", err)
		c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Title": "Error", "message": "failed to load settings"})
		return
	}
	c.HTML(http.StatusOK, "settings.html", gin.H{
		"Title":    "Settings",
		"Settings": settings,
	})
}
