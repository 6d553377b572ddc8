package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"lecturenotes/internal/files"
	"lecturenotes/internal/logger"
	"lecturenotes/internal/store"
	"lecturenotes/internal/stt"
	"lecturenotes/internal/summarizer"

	"lecturenotes/internal/analyzer"
)

// Job statuses.
const (
	StatusProcessing = "processing"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Terminal jobs linger long enough for pollers to read the outcome, then
// drop out of the table.
const defaultJobTTL = time.Hour

// Request describes one uploaded lecture to process.
type Request struct {
	AudioPath    string
	OriginalName string
	Title        string
	Subject      string
	Tags         []string
	Language     string
	SummaryStyle string
	SpeechModel  string
}

// Job tracks the progress of one processing run. Jobs live in memory only;
// the durable outcome is the lecture record.
type Job struct {
	ID        string    `json:"job_id"`
	Status    string    `json:"status"`
	Stage     string    `json:"stage"`
	Progress  int       `json:"progress"`
	LectureID int       `json:"lecture_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Pipeline turns an uploaded audio file into a lecture record: transcribe,
// summarize, analyze, persist. Each submission runs in its own goroutine
// while the caller polls the job.
type Pipeline struct {
	store    *store.Store
	files    *files.Manager
	provider stt.Provider
	sum      *summarizer.Summarizer
	log      *logger.Logger
	jobTTL   time.Duration

	mu   sync.Mutex
	jobs map[string]*Job
}

// New creates a pipeline. provider may be nil when no STT provider is
// configured; submissions then fail with a clear message.
func New(st *store.Store, fm *files.Manager, provider stt.Provider, sum *summarizer.Summarizer, log *logger.Logger) *Pipeline {
	return &Pipeline{
		store:    st,
		files:    fm,
		provider: provider,
		sum:      sum,
		log:      log,
		jobTTL:   defaultJobTTL,
		jobs:     make(map[string]*Job),
	}
}

// Submit registers a job and starts processing in the background.
func (p *Pipeline) Submit(req Request) Job {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusProcessing,
		Stage:     "queued",
		StartedAt: time.Now(),
	}

	p.mu.Lock()
	p.jobs[job.ID] = job
	p.mu.Unlock()

	go p.process(job.ID, req)
	return *job
}

// Job returns a copy of the job with the given id.
func (p *Pipeline) Job(id string) (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := p.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (p *Pipeline) setProgress(id string, progress int, stage string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := p.jobs[id]; ok {
		job.Progress = progress
		job.Stage = stage
	}
}

func (p *Pipeline) finish(id string, lectureID int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	job, ok := p.jobs[id]
	if !ok {
		return
	}
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
	} else {
		job.Status = StatusDone
		job.Progress = 100
		job.Stage = "complete"
		job.LectureID = lectureID
	}
	time.AfterFunc(p.jobTTL, func() { p.evict(id) })
}

func (p *Pipeline) evict(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.jobs, id)
}

func (p *Pipeline) process(jobID string, req Request) {
	ctx := context.Background()

	title := strings.TrimSpace(req.Title)
	if title == "" {
		base := filepath.Base(req.OriginalName)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	log := p.log.With("job", jobID, "title", title)
	log.Infow("processing lecture", "audio", req.AudioPath)

	if p.provider == nil {
		p.finish(jobID, 0, fmt.Errorf("no speech-to-text provider configured"))
		return
	}

	// Transcription is the long stage; it owns the first half of the bar.
	p.setProgress(jobID, 5, "transcribing audio")
	result, err := p.provider.Transcribe(ctx, req.AudioPath, req.Language)
	if err != nil {
		log.Errorw("transcription failed", "error", err)
		p.finish(jobID, 0, fmt.Errorf("transcription failed: %w", err))
		return
	}

	transcriptPath, err := p.files.SaveTranscript(title, result)
	if err != nil {
		log.Warnw("failed to save transcript artifact", "error", err)
		transcriptPath = ""
	}

	p.setProgress(jobID, 50, "generating summary")
	summary := p.sum.Summarize(ctx, result.Text, req.SummaryStyle)
	notes := p.sum.StudyNotes(ctx, result.Text, title)

	summaryPath, err := p.files.SaveNotes(title, notes)
	if err != nil {
		log.Warnw("failed to save study notes", "error", err)
		summaryPath = ""
	}

	p.setProgress(jobID, 75, "analyzing text")
	analysis := analyzer.Analyze(result.Text)

	p.setProgress(jobID, 90, "saving lecture")
	lectureID, err := p.store.AddLecture(store.Lecture{
		Title:          title,
		Subject:        req.Subject,
		Tags:           req.Tags,
		AudioPath:      req.AudioPath,
		TranscriptPath: transcriptPath,
		SummaryPath:    summaryPath,
		TranscriptText: result.Text,
		SummaryText:    summary.Summary,
		Duration:       result.Duration,
		Language:       result.Language,
		SpeechModel:    req.SpeechModel,
		Analysis:       analysis,
	})
	if err != nil {
		log.Errorw("failed to save lecture", "error", err)
		p.finish(jobID, 0, fmt.Errorf("failed to save lecture: %w", err))
		return
	}

	log.Infow("lecture processed", "lecture_id", lectureID,
		"words", len(strings.Fields(result.Text)), "duration", result.Duration,
		"summary_method", summary.Method)
	p.finish(jobID, lectureID, nil)
}
