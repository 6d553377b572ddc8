package files

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(t.TempDir())
	require.NoError(t, err)
	return m
}

func uploadHeader(t *testing.T, filename, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio_file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["audio_file"][0]
}

func TestNewCreatesDirectories(t *testing.T) {
	base := t.TempDir()
	_, err := New(base)
	require.NoError(t, err)

	for _, dir := range []string{"uploads", "transcripts", "summaries"} {
		fi, err := os.Stat(filepath.Join(base, dir))
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}
}

func TestSaveUpload(t *testing.T) {
	m := newTestManager(t)

	header := uploadHeader(t, "lecture 01.mp3", "fake audio bytes")
	path, err := m.SaveUpload(header)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fake audio bytes", string(raw))
	assert.True(t, strings.HasSuffix(path, "lecture_01.mp3"))
}

func TestSaveUploadSanitizesFilename(t *testing.T) {
	m := newTestManager(t)

	header := uploadHeader(t, `bad<>:"|?*name.mp3`, "x")
	path, err := m.SaveUpload(header)
	require.NoError(t, err)

	base := filepath.Base(path)
	assert.NotContains(t, base, "<")
	assert.NotContains(t, base, "?")
	assert.True(t, strings.HasSuffix(base, ".mp3"))
}

func TestSaveUploadAvoidsCollisions(t *testing.T) {
	m := newTestManager(t)

	first, err := m.SaveUpload(uploadHeader(t, "same.mp3", "one"))
	require.NoError(t, err)
	second, err := m.SaveUpload(uploadHeader(t, "same.mp3", "two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTranscriptRoundTrip(t *testing.T) {
	m := newTestManager(t)

	type payload struct {
		Text     string  `json:"text"`
		Duration float64 `json:"duration"`
	}

	path, err := m.SaveTranscript("Intro to Go", payload{Text: "hello", Duration: 12.5})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_transcript.json"))

	var got payload
	require.NoError(t, m.LoadTranscript(path, &got))
	assert.Equal(t, "hello", got.Text)
	assert.InDelta(t, 12.5, got.Duration, 0.001)
}

func TestLoadTranscriptMissingFile(t *testing.T) {
	m := newTestManager(t)

	var dst map[string]any
	err := m.LoadTranscript(filepath.Join(t.TempDir(), "nope.json"), &dst)
	assert.Error(t, err)
}

func TestSaveNotes(t *testing.T) {
	m := newTestManager(t)

	path, err := m.SaveNotes("My Lecture", "# Notes\n\nBody")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_summary.md"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# Notes")
}

func TestDeleteArtifacts(t *testing.T) {
	m := newTestManager(t)

	path, err := m.SaveNotes("gone", "bye")
	require.NoError(t, err)

	// Missing and empty paths must be tolerated.
	require.NoError(t, m.DeleteArtifacts(path, "", filepath.Join(t.TempDir(), "missing.md")))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestInfo(t *testing.T) {
	m := newTestManager(t)

	_, err := m.SaveNotes("a", "12345")
	require.NoError(t, err)
	_, err = m.SaveTranscript("b", map[string]string{"text": "hi"})
	require.NoError(t, err)

	info, err := m.Info()
	require.NoError(t, err)
	assert.Equal(t, 2, info.FileCount)
	assert.Greater(t, info.TotalSize, int64(0))
	assert.NotEmpty(t, info.TotalSizeHuman)
}

func TestWipe(t *testing.T) {
	m := newTestManager(t)

	_, err := m.SaveNotes("a", "one")
	require.NoError(t, err)
	_, err = m.SaveTranscript("b", map[string]string{"text": "two"})
	require.NoError(t, err)
	_, err = m.SaveUpload(uploadHeader(t, "c.mp3", "three"))
	require.NoError(t, err)

	deleted, err := m.Wipe()
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	info, err := m.Info()
	require.NoError(t, err)
	assert.Zero(t, info.FileCount)

	// Directories survive and stay usable.
	_, err = m.SaveNotes("after", "still works")
	assert.NoError(t, err)
}

func TestCleanup(t *testing.T) {
	m := newTestManager(t)

	oldPath, err := m.SaveNotes("old", "stale")
	require.NoError(t, err)
	_, err = m.SaveNotes("fresh", "recent")
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	deleted, err := m.Cleanup(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	info, err := m.Info()
	require.NoError(t, err)
	assert.Equal(t, 1, info.FileCount)
}
