package summarizer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"briefly/internal/gemini"
)

const (
	DefaultModel = "gemini-1.5-flash"

	// Temperature keeps the output near-deterministic.
	Temperature = 0.2
)

// GeminiSummarizer issues exactly one generateContent call per summary.
type GeminiSummarizer struct {
	client *gemini.Client
	model  string
	log    *slog.Logger
}

func NewGeminiSummarizer(client *gemini.Client, model string, log *slog.Logger) *GeminiSummarizer {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}

	return &GeminiSummarizer{
		client: client,
		model:  model,
		log:    log,
	}
}

// Summarize returns NoSummaryMessage for a valid but empty response,
// a *RemoteError for non-2xx answers and ErrGenerationFailed otherwise.
func (s *GeminiSummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	if strings.TrimSpace(input.APIKey) == "" {
		return "", ErrMissingAPIKey
	}

	request := gemini.TextRequest(BuildPrompt(input.Style, input.Text))
	request.GenerationConfig = &gemini.GenerationConfig{
		Temperature: gemini.Float(Temperature),
	}

	resp, err := s.client.GenerateContent(ctx, s.model, input.APIKey, request)
	if err != nil {
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			s.log.ErrorContext(ctx, "Gemini API rejected request",
				"error", err,
				"statusCode", apiErr.StatusCode,
				"model", s.model,
				"style", input.Style)

			return "", &RemoteError{StatusCode: apiErr.StatusCode, Reason: apiErr.Message}
		}

		s.log.ErrorContext(ctx, "Failed to call Gemini API",
			"error", err,
			"model", s.model,
			"style", input.Style)

		return "", ErrGenerationFailed
	}

	summary := resp.FirstText()
	if summary == "" {
		return NoSummaryMessage, nil
	}

	return summary, nil
}
