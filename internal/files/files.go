package files

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"lecturenotes/internal/utils"
)

// Manager lays out the artifact directories and owns every file that a
// lecture produces: the uploaded audio, the transcript JSON and the
// study-notes markdown.
type Manager struct {
	baseDir        string
	uploadsDir     string
	transcriptsDir string
	summariesDir   string
}

// StorageInfo summarizes disk usage across the artifact directories.
type StorageInfo struct {
	TotalSize      int64  `json:"total_size_bytes"`
	TotalSizeHuman string `json:"total_size"`
	FileCount      int    `json:"file_count"`
}

// New creates the artifact directories under baseDir.
func New(baseDir string) (*Manager, error) {
	m := &Manager{
		baseDir:        baseDir,
		uploadsDir:     filepath.Join(baseDir, "uploads"),
		transcriptsDir: filepath.Join(baseDir, "transcripts"),
		summariesDir:   filepath.Join(baseDir, "summaries"),
	}
	for _, dir := range m.dirs() {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return m, nil
}

func (m *Manager) dirs() []string {
	return []string{m.uploadsDir, m.transcriptsDir, m.summariesDir}
}

// SaveUpload stores an uploaded audio file under a collision-free name and
// returns its path.
func (m *Manager) SaveUpload(file *multipart.FileHeader) (string, error) {
	name := fmt.Sprintf("%s_%s", uuid.NewString()[:8], utils.SanitizeFilename(file.Filename))
	dst := filepath.Join(m.uploadsDir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := out.ReadFrom(src); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return dst, nil
}

// SaveTranscript writes the transcript payload as JSON and returns its path.
func (m *Manager) SaveTranscript(title string, payload any) (string, error) {
	path := filepath.Join(m.transcriptsDir, utils.SanitizeFilename(title)+"_transcript.json")
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}

// LoadTranscript reads a transcript JSON artifact into dst.
func (m *Manager) LoadTranscript(path string, dst any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}
	return nil
}

// SaveNotes writes study notes markdown and returns its path.
func (m *Manager) SaveNotes(title, notes string) (string, error) {
	path := filepath.Join(m.summariesDir, utils.SanitizeFilename(title)+"_summary.md")
	if err := os.WriteFile(path, []byte(notes), 0o644); err != nil {
		return "", fmt.Errorf("failed to write study notes: %w", err)
	}
	return path, nil
}

// DeleteArtifacts removes the files belonging to a lecture. Missing files
// are not an error.
func (m *Manager) DeleteArtifacts(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", p, err)
		}
	}
	return nil
}

// Info walks the artifact directories and reports disk usage.
func (m *Manager) Info() (StorageInfo, error) {
	var info StorageInfo
	for _, dir := range m.dirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return info, fmt.Errorf("failed to read %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			fi, err := e.Info()
			if err != nil {
				continue
			}
			info.TotalSize += fi.Size()
			info.FileCount++
		}
	}
	info.TotalSizeHuman = utils.FormatSize(info.TotalSize)
	return info, nil
}

// Wipe removes every file in the artifact directories and returns how many
// were removed. The directories themselves are kept.
func (m *Manager) Wipe() (int, error) {
	deleted := 0
	for _, dir := range m.dirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return deleted, fmt.Errorf("failed to read %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

// Cleanup deletes artifact files older than maxAge and returns how many
// were removed.
func (m *Manager) Cleanup(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	deleted := 0
	for _, dir := range m.dirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return deleted, fmt.Errorf("failed to read %s: %w", dir, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			fi, err := e.Info()
			if err != nil {
				continue
			}
			if fi.ModTime().Before(cutoff) {
				if err := os.Remove(filepath.Join(dir, e.Name())); err == nil {
					deleted++
				}
			}
		}
	}
	return deleted, nil
}
