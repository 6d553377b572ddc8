package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type abstractiveResponse struct {
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
	Topics    []string `json:"topics"`
}

// abstractive calls the chat completion API in JSON mode and normalizes the
// response, synthesizing any fields the model left out.
func (s *Summarizer) abstractive(ctx context.Context, text, style string) (*Summary, error) {
	systemPrompt, userPrompt := BuildPrompt(text, style)

	s.log.Infow("requesting abstractive summary", "model", s.model,
		"style", style, "transcript_length", len(text))

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.3,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI returned no choices")
	}

	content := resp.Choices[0].Message.Content
	s.log.Debugw("summary response received", "length", len(content),
		"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)

	var parsed abstractiveResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		// Some models wrap the JSON in a markdown fence despite JSON mode.
		rescued := extractJSONFromMarkdown(content)
		if err := json.Unmarshal([]byte(rescued), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse OpenAI response as JSON: %w", err)
		}
	}

	if strings.TrimSpace(parsed.Summary) == "" {
		return nil, fmt.Errorf("OpenAI returned an empty summary")
	}
	if len(parsed.Topics) == 0 {
		parsed.Topics = KeyTopics(text, 5)
	}
	if len(parsed.KeyPoints) == 0 {
		parsed.KeyPoints = BulletPoints(text).KeyPoints
	}

	return &Summary{
		Summary:        parsed.Summary,
		KeyPoints:      parsed.KeyPoints,
		Topics:         parsed.Topics,
		Method:         "abstractive",
		Model:          s.model,
		OriginalLength: len(text),
		SummaryLength:  len(parsed.Summary),
		NumPoints:      len(parsed.KeyPoints),
	}, nil
}

// extractJSONFromMarkdown strips a ```json fence around a response body.
func extractJSONFromMarkdown(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
