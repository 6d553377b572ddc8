package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecturenotes/internal/analyzer"
	"lecturenotes/internal/config"
	"lecturenotes/internal/files"
	"lecturenotes/internal/logger"
	"lecturenotes/internal/pipeline"
	"lecturenotes/internal/store"
	"lecturenotes/internal/summarizer"
)

type testEnv struct {
	router *gin.Engine
	store  *store.Store
	files  *files.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	st, err := store.Open(filepath.Join(dataDir, "database.json"))
	require.NoError(t, err)
	fm, err := files.New(dataDir)
	require.NoError(t, err)

	log := logger.NewNop()
	sum := summarizer.New("", "", log)
	pl := pipeline.New(st, fm, nil, sum, log)

	cfg := &config.Config{MaxUploadMB: 10}
	srv := NewServer(cfg, st, fm, pl, sum, log)

	// Page routes need the HTML templates loaded, so tests mount only the
	// health check and the API.
	r := gin.New()
	r.GET("/health", srv.healthCheck)
	srv.registerAPI(r)

	return &testEnv{router: r, store: st, files: fm}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 && strings.Contains(w.Header().Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func (e *testEnv) addLecture(t *testing.T, lec store.Lecture) int {
	t.Helper()
	id, err := e.store.AddLecture(lec)
	require.NoError(t, err)
	return id
}

const transcriptFixture = `Photosynthesis is the fundamental process that sustains most life on Earth today.
The chloroplast contains specialized membranes called thylakoids where light reactions occur.
Water molecules are split by photosystem two to release oxygen into the atmosphere.
The Calvin cycle always runs in the stroma and fixes carbon dioxide into sugars.
Chlorophyll absorbs red and blue wavelengths while reflecting the green light we see.
Temperature changes can dramatically affect the overall rate of photosynthesis in plants.
Stomata are small openings that regulate gas exchange on the underside of leaves.
Glucose produced during photosynthesis becomes the primary energy source for respiration.`

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
}

func TestListLecturesEmpty(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/api/v1/lectures", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(0), data["total"])
}

func TestListLecturesSearchAndPagination(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Biology 101", Subject: "Biology"})
	env.addLecture(t, store.Lecture{Title: "Chemistry 101", Subject: "Chemistry"})
	env.addLecture(t, store.Lecture{Title: "Biology 102", Subject: "Biology"})

	_, body := env.do(t, http.MethodGet, "/api/v1/lectures?q=biology", nil)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(2), data["total"])

	_, body = env.do(t, http.MethodGet, "/api/v1/lectures?limit=1&offset=1", nil)
	data = body["data"].(map[string]any)
	assert.Equal(t, float64(3), data["total"])
	assert.Equal(t, float64(1), data["count"])
}

func TestGetLecture(t *testing.T) {
	env := newTestEnv(t)
	id := env.addLecture(t, store.Lecture{Title: "Physics", TranscriptText: "waves and particles"})

	w, body := env.do(t, http.MethodGet, "/api/v1/lectures/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(id), data["id"])
	assert.Equal(t, "Physics", data["title"])
}

func TestGetLectureNotFound(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/api/v1/lectures/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])

	w, _ = env.do(t, http.MethodGet, "/api/v1/lectures/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteLecture(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Doomed"})

	w, _ := env.do(t, http.MethodDelete, "/api/v1/lectures/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/lectures/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejectsUnsupportedFormat(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio_file", "slides.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("not audio"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/lectures", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported audio format")
}

func TestUploadRequiresFile(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodPost, "/api/v1/lectures", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
}

func TestGetJobNotFound(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodGet, "/api/v1/jobs/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetTranscript(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{
		Title:          "Bio",
		TranscriptText: transcriptFixture,
		Language:       "en",
		Duration:       60,
	})

	w, body := env.do(t, http.MethodGet, "/api/v1/lectures/1/transcript", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "en", data["language"])
	assert.Contains(t, data["text"], "Photosynthesis")
}

func TestGenerateQuiz(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Bio", TranscriptText: transcriptFixture})

	w, body := env.do(t, http.MethodPost, "/api/v1/lectures/1/quiz",
		map[string]any{"num_questions": 5, "difficulty": "easy"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	questions := data["questions"].([]any)
	assert.NotEmpty(t, questions)
	assert.LessOrEqual(t, len(questions), 5)
}

func TestGenerateQuizDefaultsFromSettings(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Bio", TranscriptText: transcriptFixture})

	w, body := env.do(t, http.MethodPost, "/api/v1/lectures/1/quiz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "medium", data["difficulty"])
}

func TestGenerateQuizNoTranscript(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Empty"})

	w, _ := env.do(t, http.MethodPost, "/api/v1/lectures/1/quiz", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGradeQuiz(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Bio", TranscriptText: transcriptFixture})

	payload := map[string]any{
		"questions": []map[string]any{
			{"type": "true_false", "question": "Q1", "correct_answer": "True"},
			{"type": "fill_blank", "question": "Q2", "correct_answer": "chlorophyll"},
		},
		"answers": map[string]string{"0": "True", "1": "wrong"},
	}

	w, body := env.do(t, http.MethodPost, "/api/v1/lectures/1/quiz/grade", payload)
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(50), data["score"])
	assert.Equal(t, float64(1), data["correct"])

	// Grading records a quiz result.
	_, analytics := env.do(t, http.MethodGet, "/api/v1/analytics", nil)
	assert.Equal(t, float64(1), analytics["data"].(map[string]any)["total_quizzes"])
}

func TestFlashcards(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Bio", TranscriptText: transcriptFixture})

	w, body := env.do(t, http.MethodPost, "/api/v1/lectures/1/flashcards", map[string]any{"num_cards": 3})
	assert.Equal(t, http.StatusOK, w.Code)
	cards := body["data"].(map[string]any)["flashcards"].([]any)
	assert.NotEmpty(t, cards)
	assert.LessOrEqual(t, len(cards), 3)
}

func TestRegenerateSummary(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Bio", TranscriptText: transcriptFixture})

	w, body := env.do(t, http.MethodPost, "/api/v1/lectures/1/summary",
		map[string]string{"style": "bullet_points"})
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "bullet_points", data["method"])
	assert.NotEmpty(t, data["summary"])

	lec, err := env.store.GetLecture(1)
	require.NoError(t, err)
	assert.Equal(t, data["summary"], lec.SummaryText)
}

func TestRegenerateSummaryInvalidStyle(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "Bio", TranscriptText: transcriptFixture})

	w, _ := env.do(t, http.MethodPost, "/api/v1/lectures/1/summary",
		map[string]string{"style": "haiku"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/api/v1/settings", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	settings := body["data"].(map[string]any)["settings"].(map[string]any)
	assert.Equal(t, "concise", settings["summary_style"])

	w, _ = env.do(t, http.MethodPut, "/api/v1/settings", map[string]string{
		"speech_model":    "nano",
		"summary_style":   "detailed",
		"quiz_difficulty": "hard",
		"language":        "en",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	_, body = env.do(t, http.MethodGet, "/api/v1/settings", nil)
	settings = body["data"].(map[string]any)["settings"].(map[string]any)
	assert.Equal(t, "detailed", settings["summary_style"])
	assert.Equal(t, "hard", settings["quiz_difficulty"])
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodPut, "/api/v1/settings", map[string]string{
		"speech_model":    "nano",
		"summary_style":   "interpretive_dance",
		"quiz_difficulty": "hard",
		"language":        "en",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalytics(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{
		Title:    "Bio",
		Duration: 120,
		Analysis: analyzer.Analyze(transcriptFixture),
	})

	w, body := env.do(t, http.MethodGet, "/api/v1/analytics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(1), data["total_lectures"])
	assert.Equal(t, float64(120), data["total_duration"])
	assert.Greater(t, data["total_words"], float64(0))
}

func TestStorage(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodGet, "/api/v1/storage", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Contains(t, data, "file_count")
	assert.Contains(t, data, "total_size")
}

func TestCleanup(t *testing.T) {
	env := newTestEnv(t)

	w, body := env.do(t, http.MethodPost, "/api/v1/maintenance/cleanup", map[string]int{"days": 7})
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(7), data["days"])
	assert.Equal(t, float64(0), data["deleted"])
}

func TestClearAll(t *testing.T) {
	env := newTestEnv(t)
	env.addLecture(t, store.Lecture{Title: "First"})
	env.addLecture(t, store.Lecture{Title: "Second"})
	_, err := env.files.SaveNotes("First", "# notes")
	require.NoError(t, err)

	w, body := env.do(t, http.MethodPost, "/api/v1/maintenance/clear", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "cleared", data["status"])
	assert.Equal(t, float64(1), data["files_deleted"])

	_, listBody := env.do(t, http.MethodGet, "/api/v1/lectures", nil)
	assert.Equal(t, float64(0), listBody["data"].(map[string]any)["total"])

	_, storageBody := env.do(t, http.MethodGet, "/api/v1/storage", nil)
	assert.Equal(t, float64(0), storageBody["data"].(map[string]any)["file_count"])

	// Ids keep climbing after a wipe.
	id := env.addLecture(t, store.Lecture{Title: "Third"})
	assert.Equal(t, 3, id)
}

func TestCleanupRejectsNegativeDays(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodPost, "/api/v1/maintenance/cleanup", map[string]int{"days": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
