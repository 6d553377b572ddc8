package stt

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"lecturenotes/internal/logger"
)

// GoogleProvider implements STT using the Google Cloud Speech-to-Text REST
// API. Kept as an alternative for deployments that already hold Google
// credentials; it requires an explicit language.
type GoogleProvider struct {
	projectID  string
	apiKey     string
	httpClient *http.Client
	useAPIKey  bool
	log        *logger.Logger
}

// NewGoogleProvider creates a new Google STT provider. keyData can be an
// API key, a path to a service-account JSON file, or the JSON itself.
func NewGoogleProvider(projectID, keyData string, log *logger.Logger) (*GoogleProvider, error) {
	keyData = strings.TrimSpace(keyData)

	if len(keyData) == 39 && strings.HasPrefix(keyData, "AIzaSy") {
		return &GoogleProvider{
			projectID:  projectID,
			apiKey:     keyData,
			httpClient: &http.Client{Timeout: 90 * time.Second},
			useAPIKey:  true,
			log:        log,
		}, nil
	}

	ctx := context.Background()
	var jsonData []byte
	if strings.HasPrefix(keyData, "{") {
		jsonData = []byte(keyData)
	} else {
		raw, err := os.ReadFile(keyData)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file %q: %w", keyData, err)
		}
		jsonData = raw
	}

	creds, err := google.CredentialsFromJSON(ctx, jsonData, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return nil, fmt.Errorf("failed to create credentials from JSON: %w", err)
	}

	return &GoogleProvider{
		projectID:  projectID,
		httpClient: oauth2.NewClient(ctx, creds.TokenSource),
		log:        log,
	}, nil
}

// Name returns the provider name
func (p *GoogleProvider) Name() string {
	return "google"
}

type googleSTTRequest struct {
	Config googleSTTConfig `json:"config"`
	Audio  googleSTTAudio  `json:"audio"`
}

type googleSTTConfig struct {
	Encoding                   string `json:"encoding,omitempty"`
	SampleRateHertz            int    `json:"sampleRateHertz,omitempty"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
	EnableWordTimeOffsets      bool   `json:"enableWordTimeOffsets"`
	Model                      string `json:"model,omitempty"`
}

type googleSTTAudio struct {
	Content string `json:"content"` // base64 encoded
}

type googleWord struct {
	StartTime string `json:"startTime"` // e.g. "1.200s"
	EndTime   string `json:"endTime"`
	Word      string `json:"word"`
}

type googleSTTResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string       `json:"transcript"`
			Confidence float64      `json:"confidence"`
			Words      []googleWord `json:"words"`
		} `json:"alternatives"`
	} `json:"results"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Transcribe transcribes an audio file using the synchronous recognize
// endpoint. Google rejects auto language, so "auto" is an error here.
func (p *GoogleProvider) Transcribe(ctx context.Context, audioPath, language string) (*Result, error) {
	startTime := time.Now()

	if language == "" || language == "auto" {
		return nil, fmt.Errorf("google provider requires an explicit language (got %q)", language)
	}

	audioBytes, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if len(audioBytes) < 1000 {
		return nil, fmt.Errorf("audio file too small (%d bytes), may be empty or corrupted", len(audioBytes))
	}

	encoding, sampleRate := googleAudioConfig(filepath.Ext(audioPath))

	reqBody := googleSTTRequest{
		Config: googleSTTConfig{
			Encoding:                   encoding,
			SampleRateHertz:            sampleRate,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
			EnableWordTimeOffsets:      true,
			Model:                      "latest_long",
		},
		Audio: googleSTTAudio{Content: base64.StdEncoding.EncodeToString(audioBytes)},
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := "https://speech.googleapis.com/v1/speech:recognize"
	if p.useAPIKey {
		apiURL += "?key=" + p.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	p.log.Infow("calling Google Speech-to-Text", "path", audioPath, "language", language)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to Google Speech-to-Text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var sttResp googleSTTResponse
	if err := json.Unmarshal(body, &sttResp); err != nil {
		return &Result{Provider: p.Name(), RawResponse: string(body)},
			fmt.Errorf("failed to parse Google response: %w", err)
	}
	if sttResp.Error != nil {
		return &Result{Provider: p.Name(), RawResponse: string(body)},
			fmt.Errorf("Google Speech-to-Text API error %d (%s): %s",
				sttResp.Error.Code, sttResp.Error.Status, sttResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return &Result{Provider: p.Name(), RawResponse: string(body)},
			fmt.Errorf("Google Speech-to-Text returned status %d: %s", resp.StatusCode, preview(body))
	}

	var parts []string
	var words []googleWord
	var confidence float64
	for _, res := range sttResp.Results {
		if len(res.Alternatives) == 0 {
			continue
		}
		alt := res.Alternatives[0]
		parts = append(parts, alt.Transcript)
		words = append(words, alt.Words...)
		if alt.Confidence > confidence {
			confidence = alt.Confidence
		}
	}

	text := strings.TrimSpace(strings.Join(parts, " "))
	if text == "" {
		return &Result{Provider: p.Name(), RawResponse: string(body)},
			fmt.Errorf("no speech detected in audio")
	}

	result := &Result{
		Text:           text,
		Segments:       segmentsFromGoogleWords(words),
		Language:       language,
		Confidence:     confidence,
		ProcessingTime: time.Since(startTime).Seconds(),
		Provider:       p.Name(),
		RawResponse:    string(body),
	}
	if len(result.Segments) > 0 {
		result.Duration = result.Segments[len(result.Segments)-1].End
	}
	return result, nil
}

// googleAudioConfig maps a file extension to an encoding hint. Zero values
// let the API detect the parameters from the file header.
func googleAudioConfig(ext string) (string, int) {
	switch strings.ToLower(ext) {
	case ".wav":
		return "LINEAR16", 16000
	case ".flac":
		return "FLAC", 0
	case ".ogg", ".webm":
		return "OGG_OPUS", 48000
	case ".mp3":
		return "MP3", 0
	default:
		return "", 0
	}
}

func segmentsFromGoogleWords(words []googleWord) []Segment {
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
			texts[j] = w.Word
		}

		segments = append(segments, Segment{
			ID:    i / chunkSize,
			Start: round2(parseGoogleTime(chunk[0].StartTime)),
			End:   round2(parseGoogleTime(chunk[len(chunk)-1].EndTime)),
			Text:  strings.TrimSpace(strings.Join(texts, " ")),
		})
	}
	return segments
}

func parseGoogleTime(s string) float64 {
	s = strings.TrimSuffix(s, "s")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
