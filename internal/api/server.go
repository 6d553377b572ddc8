package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lecturenotes/internal/config"
	"lecturenotes/internal/files"
	"lecturenotes/internal/logger"
	"lecturenotes/internal/pipeline"
	"lecturenotes/internal/quiz"
	"lecturenotes/internal/store"
	"lecturenotes/internal/stt"
	"lecturenotes/internal/summarizer"
	"lecturenotes/internal/utils"
)

// Server holds the handler dependencies.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	files    *files.Manager
	pipeline *pipeline.Pipeline
	sum      *summarizer.Summarizer
	quiz     *quiz.Generator
	log      *logger.Logger
}

func NewServer(cfg *config.Config, st *store.Store, fm *files.Manager,
	pl *pipeline.Pipeline, sum *summarizer.Summarizer, log *logger.Logger) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		files:    fm,
		pipeline: pl,
		sum:      sum,
		quiz:     quiz.NewGenerator(),
		log:      log,
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.healthCheck)
	s.registerPages(r)
	s.registerAPI(r)
}

// registerPages mounts the server-rendered pages. The engine must have the
// HTML templates loaded.
func (s *Server) registerPages(r *gin.Engine) {
	r.GET("/", s.dashboardPage)
	r.GET("/upload", s.uploadPage)
	r.GET("/lectures/:id/transcript", s.transcriptPage)
	r.GET("/lectures/:id/summary", s.summaryPage)
	r.GET("/lectures/:id/quiz", s.quizPage)
	r.GET("/analytics", s.analyticsPage)
	r.GET("/settings", s.settingsPage)
}

func (s *Server) registerAPI(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/lectures", s.uploadLecture)
		v1.GET("/lectures", s.listLectures)
		v1.GET("/lectures/:id", s.getLecture)
		v1.DELETE("/lectures/:id", s.deleteLecture)
		v1.GET("/jobs/:job_id", s.getJob)

		v1.GET("/lectures/:id/transcript", s.getTranscript)
		v1.GET("/lectures/:id/summary", s.getSummary)
		v1.POST("/lectures/:id/summary", s.regenerateSummary)
		v1.GET("/lectures/:id/notes", s.getNotes)
		v1.GET("/lectures/:id/analysis", s.getAnalysis)

		v1.POST("/lectures/:id/quiz", s.generateQuiz)
		v1.POST("/lectures/:id/quiz/grade", s.gradeQuiz)
		v1.POST("/lectures/:id/flashcards", s.generateFlashcards)

		v1.GET("/analytics", s.getAnalytics)
		v1.GET("/settings", s.getSettings)
		v1.PUT("/settings", s.updateSettings)
		v1.GET("/storage", s.getStorage)
		v1.POST("/maintenance/cleanup", s.cleanup)
		v1.POST("/maintenance/clear", s.clearAll)
	}
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	utils.Success(c, gin.H{
		"status":  "ok",
		"service": "lecturenotes",
	})
}

// uploadLecture handles audio file upload and starts background processing
func (s *Server) uploadLecture(c *gin.Context) {
	file, err := c.FormFile("audio_file")
	if err != nil {
		// Older clients use different field names
		if file, err = c.FormFile("audio"); err != nil {
			if file, err = c.FormFile("file"); err != nil {
				utils.Error(c, http.StatusBadRequest, "audio_file is required")
				return
			}
		}
	}

	if !stt.SupportedFormat(file.Filename) {
		utils.Error(c, http.StatusBadRequest,
			"unsupported audio format. Supported: "+strings.Join(stt.SupportedFormats, ", "))
		return
	}
	if file.Size > s.cfg.MaxUploadMB*1024*1024 {
		utils.Error(c, http.StatusBadRequest,
			"file size exceeds "+utils.FormatSize(s.cfg.MaxUploadMB*1024*1024)+" limit")
		return
	}

	savedPath, err := s.files.SaveUpload(file)
	if err != nil {
		s.log.Errorw("failed to save upload", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to save audio file")
		return
	}

	settings, err := s.store.Settings()
	if err != nil {
		s.log.Errorw("failed to load settings", "error", err)
		utils.Error(c, http.StatusInternalServerError, "failed to load settings")
		return
	}

	language := c.PostForm("language")
	if language == "" {
		language = settings.Language
	}
	style := c.PostForm("summary_style")
	if style == "" {
		style = settings.SummaryStyle
	}

	job := s.pipeline.Submit(pipeline.Request{
		AudioPath:    savedPath,
		OriginalName: file.Filename,
		Title:        c.PostForm("title"),
		Subject:      c.PostForm("subject"),
		Tags:         splitTags(c.PostForm("tags")),
		Language:     language,
		SummaryStyle: style,
		SpeechModel:  settings.SpeechModel,
	})

	s.log.Infow("lecture upload accepted", "job", job.ID, "file", file.Filename, "size", file.Size)
	utils.Success(c, gin.H{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// getJob returns the progress of a processing job
func (s *Server) getJob(c *gin.Context) {
	job, ok := s.pipeline.Job(c.Param("job_id"))
	if !ok {
		utils.Error(c, http.StatusNotFound, "job not found")
		return
	}

	resp := gin.H{
		"job_id":   job.ID,
		"status":   job.Status,
		"stage":    job.Stage,
		"progress": job.Progress,
	}
	if job.LectureID != 0 {
		resp["lecture_id"] = job.LectureID
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	utils.Success(c, resp)
}

func splitTags(raw string) []string {
	var tags []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
