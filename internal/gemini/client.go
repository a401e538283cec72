package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// RequestFailedMessage is reported when a rejected request carries no server message.
	RequestFailedMessage = "API request failed"

	maxErrorBodyBytes = 1 << 20
)

// APIError is a non-2xx answer of the generative endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client speaks the generateContent protocol. It never retries and sets no
// timeout of its own.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, log *slog.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		log:        log,
	}
}

func (c *Client) GenerateContent(
	ctx context.Context,
	model string,
	apiKey string,
	request *GenerateContentRequest,
) (*GenerateContentResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint(model, apiKey),
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			c.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"model", model,
				"operation", "GenerateContent")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, readAPIError(resp)
	}

	var out GenerateContentResponse
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &out, nil
}

func (c *Client) endpoint(model string, apiKey string) string {
	query := url.Values{}
	query.Set("key", apiKey)

	return fmt.Sprintf("%s/models/%s:generateContent?%s",
		c.baseURL,
		url.PathEscape(strings.TrimSpace(model)),
		query.Encode())
}

func readAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    RequestFailedMessage,
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return apiErr
	}

	var parsed errorResponse
	if err = json.Unmarshal(data, &parsed); err != nil {
		return apiErr
	}

	if parsed.Error != nil {
		if message := strings.TrimSpace(parsed.Error.Message); message != "" {
			apiErr.Message = message
		}
	}

	return apiErr
}
