package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"briefly/internal/store"

	"golang.org/x/sync/singleflight"
)

// KeyStore is the synchronised configuration area holding the API key.
type KeyStore interface {
	Get(ctx context.Context, userID int64, key string) (string, bool, error)
}

// PageTextProvider returns the visible article text of a page, or "" when
// nothing could be extracted.
type PageTextProvider interface {
	ArticleText(ctx context.Context, pageURL string) (string, error)
}

// Request is constructed fresh for every user-triggered summary.
type Request struct {
	// ResultArea identifies the single place the result is rendered to.
	ResultArea string
	UserID     int64
	PageURL    string
	Style      Style
}

type Pipeline struct {
	keys        KeyStore
	pages       PageTextProvider
	summarizer  Summarizer
	fallbackKey string
	flight      *singleflight.Group
	log         *slog.Logger
}

type PipelineOption func(*Pipeline)

// WithFallbackAPIKey is used when the user has not stored a key.
func WithFallbackAPIKey(key string) PipelineOption {
	return func(p *Pipeline) {
		p.fallbackKey = strings.TrimSpace(key)
	}
}

// WithSingleFlight coalesces overlapping requests for the same result area,
// page and style.
func WithSingleFlight() PipelineOption {
	return func(p *Pipeline) {
		p.flight = &singleflight.Group{}
	}
}

func NewPipeline(
	keys KeyStore,
	pages PageTextProvider,
	s Summarizer,
	log *slog.Logger,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		keys:       keys,
		pages:      pages,
		summarizer: s,
		log:        log,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Summarize runs key lookup, page text retrieval and summarization strictly
// in sequence.
func (p *Pipeline) Summarize(ctx context.Context, req Request) (string, error) {
	if p.flight == nil || req.ResultArea == "" {
		return p.run(ctx, req)
	}

	v, err, shared := p.flight.Do(flightKey(req), func() (any, error) {
		return p.run(ctx, req)
	})
	if shared {
		p.log.InfoContext(ctx, "Summary request is coalesced",
			"resultArea", req.ResultArea,
			"userID", req.UserID)
	}

	summary, _ := v.(string)

	return summary, err
}

func (p *Pipeline) run(ctx context.Context, req Request) (string, error) {
	apiKey, err := p.apiKey(ctx, req.UserID)
	if err != nil {
		return "", err
	}

	text := p.pageText(ctx, req)
	if strings.TrimSpace(text) == "" {
		return "", ErrNoArticleText
	}

	return p.summarizer.Summarize(ctx, Input{
		Text:   text,
		Style:  req.Style,
		APIKey: apiKey,
	})
}

func (p *Pipeline) apiKey(ctx context.Context, userID int64) (string, error) {
	if p.keys != nil {
		key, ok, err := p.keys.Get(ctx, userID, store.KeyGeminiAPIKey)
		if err != nil {
			return "", fmt.Errorf("get api key: %w", err)
		}

		if key = strings.TrimSpace(key); ok && key != "" {
			return key, nil
		}
	}

	if p.fallbackKey != "" {
		return p.fallbackKey, nil
	}

	return "", ErrMissingAPIKey
}

func (p *Pipeline) pageText(ctx context.Context, req Request) string {
	pageURL := strings.TrimSpace(req.PageURL)
	if pageURL == "" || p.pages == nil {
		return ""
	}

	text, err := p.pages.ArticleText(ctx, pageURL)
	if err != nil {
		p.log.WarnContext(ctx, "Failed to get article text",
			"error", err,
			"pageURL", pageURL,
			"userID", req.UserID)

		return ""
	}

	return text
}

func flightKey(req Request) string {
	return req.ResultArea + "\x00" + strings.TrimSpace(req.PageURL) + "\x00" + string(req.Style)
}
