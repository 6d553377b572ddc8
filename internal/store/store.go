package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"lecturenotes/internal/analyzer"
)

// Lecture describes one processed audio upload and its derived artifacts.
type Lecture struct {
	ID             int                `json:"id"`
	Title          string             `json:"title"`
	Subject        string             `json:"subject,omitempty"`
	Tags           []string           `json:"tags,omitempty"`
	AudioPath      string             `json:"audio_path"`
	TranscriptPath string             `json:"transcript_path,omitempty"`
	SummaryPath    string             `json:"summary_path,omitempty"`
	TranscriptText string             `json:"transcript_text"`
	SummaryText    string             `json:"summary_text"`
	Duration       float64            `json:"duration"`
	Language       string             `json:"language"`
	SpeechModel    string             `json:"speech_model,omitempty"`
	Analysis       *analyzer.Analysis `json:"analysis,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

// Settings holds user-tunable processing defaults.
type Settings struct {
	SpeechModel    string `json:"speech_model"`
	SummaryStyle   string `json:"summary_style"`
	QuizDifficulty string `json:"quiz_difficulty"`
	Language       string `json:"language"`
}

// Analytics holds rolling counters updated on every mutation.
type Analytics struct {
	TotalLectures int     `json:"total_lectures"`
	TotalDuration float64 `json:"total_duration"`
	TotalQuizzes  int     `json:"total_quizzes"`
}

// QuizResult is one graded quiz attempt.
type QuizResult struct {
	LectureID int       `json:"lecture_id"`
	Score     float64   `json:"score"`
	Correct   int       `json:"correct"`
	Total     int       `json:"total"`
	TakenAt   time.Time `json:"taken_at"`
}

// database is the persisted document. The whole document is read, modified
// and rewritten on every mutation.
type database struct {
	NextID      int          `json:"next_id"`
	Lectures    []Lecture    `json:"lectures"`
	Settings    Settings     `json:"settings"`
	Analytics   Analytics    `json:"analytics"`
	QuizResults []QuizResult `json:"quiz_results"`
}

func defaultDatabase() *database {
	return &database{
		NextID: 1,
		Settings: Settings{
			SpeechModel:    "universal-2",
			SummaryStyle:   "concise",
			QuizDifficulty: "medium",
			Language:       "auto",
		},
	}
}

var ErrNotFound = fmt.Errorf("lecture not found")

// Store is a flat JSON-file store for lecture records, settings and
// analytics counters. All mutations are serialized by a single mutex.
type Store struct {
	path string
	mu   sync.Mutex
}

// Open creates a store backed by the JSON file at path, initializing the
// file with defaults when it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.save(defaultDatabase()); err != nil {
			return nil, err
		}
	}

	// Fail early on a corrupt file rather than on first use.
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() (*database, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database: %w", err)
	}
	db := defaultDatabase()
	if err := json.Unmarshal(raw, db); err != nil {
		return nil, fmt.Errorf("failed to parse database: %w", err)
	}
	return db, nil
}

func (s *Store) save(db *database) error {
	raw, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode database: %w", err)
	}

	// Write-then-rename so a crash mid-write never truncates the store.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

// mutate runs fn against the loaded document and persists the result.
func (s *Store) mutate(fn func(db *database) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(db); err != nil {
		return err
	}
	return s.save(db)
}

// AddLecture assigns the next id, stamps the record and appends it.
// Analytics counters are bumped in the same write.
func (s *Store) AddLecture(lec Lecture) (int, error) {
	var id int
	err := s.mutate(func(db *database) error {
		lec.ID = db.NextID
		db.NextID++
		if lec.CreatedAt.IsZero() {
			lec.CreatedAt = time.Now()
		}
		db.Lectures = append(db.Lectures, lec)
		db.Analytics.TotalLectures++
		db.Analytics.TotalDuration += lec.Duration
		id = lec.ID
		return nil
	})
	return id, err
}

// GetLecture returns the lecture with the given id.
func (s *Store) GetLecture(id int) (Lecture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return Lecture{}, err
	}
	for _, lec := range db.Lectures {
		if lec.ID == id {
			return lec, nil
		}
	}
	return Lecture{}, ErrNotFound
}

// ListLectures returns all lectures, newest first.
func (s *Store) ListLectures() ([]Lecture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	lectures := make([]Lecture, len(db.Lectures))
	copy(lectures, db.Lectures)
	sort.Slice(lectures, func(i, j int) bool {
		return lectures[i].ID > lectures[j].ID
	})
	return lectures, nil
}

// SearchLectures returns lectures whose title, subject or tags contain the
// query, case-insensitively, newest first.
func (s *Store) SearchLectures(query string) ([]Lecture, error) {
	all, err := s.ListLectures()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var matches []Lecture
	for _, lec := range all {
		if lectureMatches(lec, query) {
			matches = append(matches, lec)
		}
	}
	return matches, nil
}

func lectureMatches(lec Lecture, query string) bool {
	if strings.Contains(strings.ToLower(lec.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(lec.Subject), query) {
		return true
	}
	for _, tag := range lec.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// UpdateLecture applies fn to the stored lecture and persists it.
func (s *Store) UpdateLecture(id int, fn func(*Lecture)) error {
	return s.mutate(func(db *database) error {
		for i := range db.Lectures {
			if db.Lectures[i].ID == id {
				fn(&db.Lectures[i])
				db.Lectures[i].ID = id // id is immutable
				return nil
			}
		}
		return ErrNotFound
	})
}

// DeleteLecture removes the record. Ids are never reused, and the rolling
// analytics counters are left untouched.
func (s *Store) DeleteLecture(id int) error {
	return s.mutate(func(db *database) error {
		for i := range db.Lectures {
			if db.Lectures[i].ID == id {
				db.Lectures = append(db.Lectures[:i], db.Lectures[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

// Settings returns the settings object.
func (s *Store) Settings() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return Settings{}, err
	}
	return db.Settings, nil
}

// UpdateSettings replaces the settings object.
func (s *Store) UpdateSettings(settings Settings) error {
	return s.mutate(func(db *database) error {
		db.Settings = settings
		return nil
	})
}

// Analytics returns the rolling counters.
func (s *Store) Analytics() (Analytics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return Analytics{}, err
	}
	return db.Analytics, nil
}

// AddQuizResult appends a graded attempt and bumps the quiz counter.
func (s *Store) AddQuizResult(result QuizResult) error {
	return s.mutate(func(db *database) error {
		if result.TakenAt.IsZero() {
			result.TakenAt = time.Now()
		}
		db.QuizResults = append(db.QuizResults, result)
		db.Analytics.TotalQuizzes++
		return nil
	})
}

// QuizResults returns all graded attempts, optionally filtered by lecture.
func (s *Store) QuizResults(lectureID int) ([]QuizResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.load()
	if err != nil {
		return nil, err
	}
	if lectureID == 0 {
		return db.QuizResults, nil
	}
	var out []QuizResult
	for _, r := range db.QuizResults {
		if r.LectureID == lectureID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ClearAll resets the document to its initial state. The id counter is
// preserved so ids stay monotonic across a wipe.
func (s *Store) ClearAll() error {
	return s.mutate(func(db *database) error {
		next := db.NextID
		*db = *defaultDatabase()
		db.NextID = next
		return nil
	})
}
