package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lecturenotes/internal/logger"
)

// SupportedFormats lists the audio extensions accepted for transcription.
var SupportedFormats = []string{".mp3", ".wav", ".m4a", ".ogg", ".flac", ".webm"}

// SupportedFormat reports whether the file extension can be transcribed.
func SupportedFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedFormats {
		if ext == s {
			return true
		}
	}
	return false
}

// AssemblyAIProvider implements STT using the AssemblyAI REST API: the audio
// is uploaded, a transcript job is created, and the job is polled until it
// completes.
type AssemblyAIProvider struct {
	apiKey       string
	baseURL      string
	speechModel  string
	httpClient   *http.Client
	pollInterval time.Duration
	log          *logger.Logger
}

// NewAssemblyAIProvider creates a new AssemblyAI STT provider
func NewAssemblyAIProvider(apiKey, baseURL, speechModel string, log *logger.Logger) *AssemblyAIProvider {
	return &AssemblyAIProvider{
		apiKey:       apiKey,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		speechModel:  speechModel,
		httpClient:   &http.Client{Timeout: 90 * time.Second},
		pollInterval: 2 * time.Second,
		log:          log,
	}
}

// Name returns the provider name
func (p *AssemblyAIProvider) Name() string {
	return "assemblyai"
}

type assemblyUploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type assemblyTranscriptRequest struct {
	AudioURL          string `json:"audio_url"`
	SpeechModel       string `json:"speech_model,omitempty"`
	LanguageCode      string `json:"language_code,omitempty"`
	LanguageDetection bool   `json:"language_detection,omitempty"`
	Punctuate         bool   `json:"punctuate"`
	FormatText        bool   `json:"format_text"`
}

type assemblyWord struct {
	Text  string `json:"text"`
	Start int    `json:"start"` // milliseconds
	End   int    `json:"end"`
}

type assemblyTranscriptResponse struct {
	ID            string         `json:"id"`
	Status        string         `json:"status"`
	Text          string         `json:"text"`
	Words         []assemblyWord `json:"words"`
	LanguageCode  string         `json:"language_code"`
	Confidence    float64        `json:"confidence"`
	AudioDuration float64        `json:"audio_duration"`
	Error         string         `json:"error"`
}

// Transcribe uploads the audio file, starts a transcript job and polls it
// until completion.
func (p *AssemblyAIProvider) Transcribe(ctx context.Context, audioPath, language string) (*Result, error) {
	startTime := time.Now()

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	p.log.Infow("processing audio file", "path", audioPath, "size", len(audioBytes),
		"ext", filepath.Ext(audioPath))

	if len(audioBytes) < 1000 {
		return nil, fmt.Errorf("audio file too small (%d bytes), may be empty or corrupted", len(audioBytes))
	}

	uploadURL, err := p.upload(ctx, audioBytes)
	if err != nil {
		return nil, err
	}

	jobID, err := p.createTranscript(ctx, uploadURL, language)
	if err != nil {
		return nil, err
	}

	tr, raw, err := p.poll(ctx, jobID)
	if err != nil {
		return &Result{Provider: p.Name(), RawResponse: raw}, err
	}

	text := strings.TrimSpace(tr.Text)
	if text == "" {
		return &Result{Provider: p.Name(), RawResponse: raw},
			fmt.Errorf("no speech detected in audio")
	}

	result := &Result{
		Text:           text,
		Segments:       segmentsFromWords(tr.Words),
		Language:       tr.LanguageCode,
		Confidence:     tr.Confidence,
		Duration:       tr.AudioDuration,
		ProcessingTime: time.Since(startTime).Seconds(),
		Provider:       p.Name(),
		RawResponse:    raw,
	}
	if result.Language == "" {
		result.Language = "unknown"
	}
	if result.Duration == 0 && len(result.Segments) > 0 {
		result.Duration = result.Segments[len(result.Segments)-1].End
	}

	p.log.Infow("transcription successful", "confidence", result.Confidence,
		"length", len(text), "duration", result.Duration, "elapsed", time.Since(startTime))
	return result, nil
}

func (p *AssemblyAIProvider) upload(ctx context.Context, audio []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/upload", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("authorization", p.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	body, status, err := p.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to upload audio to AssemblyAI: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("AssemblyAI upload returned status %d: %s", status, preview(body))
	}

	var resp assemblyUploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if resp.UploadURL == "" {
		return "", fmt.Errorf("AssemblyAI upload returned no upload_url")
	}
	return resp.UploadURL, nil
}

func (p *AssemblyAIProvider) createTranscript(ctx context.Context, audioURL, language string) (string, error) {
	payload := assemblyTranscriptRequest{
		AudioURL:    audioURL,
		SpeechModel: p.speechModel,
		Punctuate:   true,
		FormatText:  true,
	}
	if language == "" || language == "auto" {
		payload.LanguageDetection = true
	} else {
		payload.LanguageCode = language
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transcript", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create transcript request: %w", err)
	}
	req.Header.Set("authorization", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, status, err := p.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create AssemblyAI transcript: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("AssemblyAI transcript returned status %d: %s", status, preview(body))
	}

	var resp assemblyTranscriptResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse transcript response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("AssemblyAI returned no transcript id")
	}

	p.log.Infow("transcript job created", "job", resp.ID, "status", resp.Status)
	return resp.ID, nil
}

func (p *AssemblyAIProvider) poll(ctx context.Context, jobID string) (*assemblyTranscriptResponse, string, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/transcript/"+jobID, nil)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create poll request: %w", err)
		}
		req.Header.Set("authorization", p.apiKey)

		body, status, err := p.do(req)
		if err != nil {
			return nil, "", fmt.Errorf("failed to poll AssemblyAI: %w", err)
		}
		if status != http.StatusOK {
			return nil, string(body), fmt.Errorf("AssemblyAI poll returned status %d: %s", status, preview(body))
		}

		var resp assemblyTranscriptResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, string(body), fmt.Errorf("failed to parse poll response: %w", err)
		}

		switch resp.Status {
		case "completed":
			return &resp, string(body), nil
		case "error":
			return nil, string(body), fmt.Errorf("AssemblyAI transcription failed: %s", resp.Error)
		}

		p.log.Debugw("transcript still processing", "job", jobID, "status", resp.Status)

		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *AssemblyAIProvider) do(req *http.Request) ([]byte, int, error) {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// segmentsFromWords groups word timings into ~15-word segments.
func segmentsFromWords(words []assemblyWord) []Segment {
	const chunkSize = 15

	var segments []Segment
	for i := 0; i < len(words); i += chunkSize {
		end := i + chunkSize
		if end > len(words) {
			end = len(words)
		}
		chunk := words[i:end]

		texts := make([]string, len(chunk))
		for j, w := range chunk {
			texts[j] = w.Text
		}

		segments = append(segments, Segment{
			ID:    i / chunkSize,
			Start: round2(float64(chunk[0].Start) / 1000),
			End:   round2(float64(chunk[len(chunk)-1].End) / 1000),
			Text:  strings.TrimSpace(strings.Join(texts, " ")),
		})
	}
	return segments
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func preview(body []byte) string {
	s := string(body)
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
