package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	DefaultTimeout  = 20 * time.Second
	maxPageBytes    = 5 << 20
	maxFeedItems    = 20
	paragraphJoiner = "\n\n"
)

var ErrUnsupportedURL = errors.New("unsupported URL")

// Fetcher extracts the visible article text of a page.
type Fetcher struct {
	client     *http.Client
	feedParser *gofeed.Parser
	log        *slog.Logger
}

func NewFetcher(timeout time.Duration, log *slog.Logger) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Fetcher{
		client:     &http.Client{Timeout: timeout},
		feedParser: gofeed.NewParser(),
		log:        log,
	}
}

// ArticleText returns "" without error when the page has no usable text.
func (f *Fetcher) ArticleText(ctx context.Context, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)

	u, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURL, pageURL)
	}

	if previewURL, ok := telegramPreviewURL(u); ok {
		text, telegramErr := f.telegramArticleText(ctx, previewURL)
		if telegramErr == nil && text != "" {
			return text, nil
		}

		f.log.WarnContext(ctx, "Telegram preview has no text so page will be used",
			"error", telegramErr,
			"pageURL", pageURL,
			"previewURL", previewURL)
	}

	data, contentType, err := f.download(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("download page: %w", err)
	}

	if isFeed(contentType, data) {
		text, feedErr := f.feedText(data)
		if feedErr == nil {
			return text, nil
		}

		f.log.WarnContext(ctx, "Failed to parse feed so HTML extraction will be used",
			"error", feedErr,
			"pageURL", pageURL,
			"contentType", contentType)
	}

	if text := readableText(data, u); text != "" {
		return text, nil
	}

	text, err := paragraphText(data)
	if err != nil {
		return "", fmt.Errorf("extract paragraphs: %w", err)
	}

	if text == "" {
		f.log.InfoContext(ctx, "Page has no article text",
			"pageURL", pageURL,
			"contentType", contentType,
			"bytes", len(data))
	}

	return text, nil
}

func (f *Fetcher) telegramArticleText(ctx context.Context, previewURL string) (string, error) {
	data, _, err := f.download(ctx, previewURL)
	if err != nil {
		return "", fmt.Errorf("download telegram preview: %w", err)
	}

	return telegramText(data)
}

func (f *Fetcher) download(ctx context.Context, pageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req) //nolint:gosec // User-supplied page is the point.
	if err != nil {
		return nil, "", fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"pageURL", pageURL,
				"operation", "download")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("do request: unexpected status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

func (f *Fetcher) feedText(data []byte) (string, error) {
	parsed, err := f.feedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("parse feed: %w", err)
	}

	var b strings.Builder

	if title := strings.TrimSpace(parsed.Title); title != "" {
		b.WriteString(title)
		b.WriteString(paragraphJoiner)
	}

	for i, item := range parsed.Items {
		if i == maxFeedItems {
			break
		}

		title := strings.TrimSpace(item.Title)
		body := plainText(item.Description)
		if body == "" {
			body = plainText(item.Content)
		}

		if title == "" && body == "" {
			continue
		}

		b.WriteString("- ")
		b.WriteString(title)
		if body != "" {
			b.WriteString(": ")
			b.WriteString(body)
		}
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String()), nil
}

func isFeed(contentType string, data []byte) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch mediaType {
		case "application/rss+xml", "application/atom+xml", "application/feed+json":
			return true
		case "text/html", "application/xhtml+xml":
			return false
		}
	}

	return gofeed.DetectFeedType(bytes.NewReader(data)) != gofeed.FeedTypeUnknown
}

func readableText(data []byte, pageURL *url.URL) string {
	parsed, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return ""
	}

	return normalizeWhitespace(parsed.TextContent)
}

// paragraphText is used when readability finds no main content.
func paragraphText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, form").Remove()

	var paragraphs []string
	doc.Find("h1, h2, h3, p, li").Each(func(_ int, s *goquery.Selection) {
		if text := normalizeWhitespace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(dedupe(paragraphs), paragraphJoiner), nil
}

func plainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normalizeWhitespace(fragment)
	}

	return normalizeWhitespace(doc.Text())
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]

	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}

	return strings.Join(kept, "\n")
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]

	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}
