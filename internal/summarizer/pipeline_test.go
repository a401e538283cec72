package summarizer_test

import (
	"briefly/internal/summarizer"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type stubKeyStore struct {
	mu    sync.Mutex
	keys  map[int64]string
	calls []string
	log   *[]string
}

func (s *stubKeyStore) Get(_ context.Context, userID int64, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, key)
	if s.log != nil {
		*s.log = append(*s.log, "key")
	}

	value, ok := s.keys[userID]

	return value, ok, nil
}

type stubPages struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
	log   *[]string
}

func (s *stubPages) ArticleText(_ context.Context, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.log != nil {
		*s.log = append(*s.log, "page")
	}

	return s.text, s.err
}

type recordingSummarizer struct {
	mu      sync.Mutex
	inputs  []summarizer.Input
	summary string
	err     error
	started chan struct{}
	release chan struct{}
	log     *[]string
}

func (s *recordingSummarizer) Summarize(_ context.Context, input summarizer.Input) (string, error) {
	s.mu.Lock()
	s.inputs = append(s.inputs, input)
	if s.log != nil {
		*s.log = append(*s.log, "summarize")
	}
	s.mu.Unlock()

	if s.started != nil {
		s.started <- struct{}{}
	}

	if s.release != nil {
		<-s.release
	}

	return s.summary, s.err
}

func (s *recordingSummarizer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.inputs)
}

func TestPipelineSummarizes(t *testing.T) {
	var order []string

	keys := &stubKeyStore{keys: map[int64]string{7: "user-key"}, log: &order}
	pages := &stubPages{text: "  Article text  ", log: &order}
	sum := &recordingSummarizer{summary: "Summary.", log: &order}

	p := summarizer.NewPipeline(keys, pages, sum, slog.Default())

	got, err := p.Summarize(context.Background(), summarizer.Request{
		ResultArea: "chat:1",
		UserID:     7,
		PageURL:    "https://example.com/post",
		Style:      summarizer.StyleBullets,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != "Summary." {
		t.Fatalf("unexpected summary: %q", got)
	}

	want := summarizer.Input{Text: "  Article text  ", Style: summarizer.StyleBullets, APIKey: "user-key"}
	if sum.inputs[0] != want {
		t.Fatalf("unexpected input: %#v", sum.inputs[0])
	}

	if len(order) != 3 || order[0] != "key" || order[1] != "page" || order[2] != "summarize" {
		t.Fatalf("unexpected step order: %v", order)
	}

	if keys.calls[0] != "geminiApiKey" {
		t.Fatalf("unexpected storage key: %q", keys.calls[0])
	}
}

func TestPipelineMissingAPIKey(t *testing.T) {
	pages := &stubPages{text: "Article text"}
	sum := &recordingSummarizer{summary: "Summary."}

	p := summarizer.NewPipeline(&stubKeyStore{}, pages, sum, slog.Default())

	_, err := p.Summarize(context.Background(), summarizer.Request{UserID: 1, PageURL: "https://example.com"})
	if !errors.Is(err, summarizer.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	if sum.callCount() != 0 {
		t.Fatalf("expected no summarizer call")
	}

	if pages.calls != 0 {
		t.Fatalf("expected no page text request")
	}

	if got := summarizer.Render("", err); got != summarizer.MissingAPIKeyMessage {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestPipelineFallbackAPIKey(t *testing.T) {
	sum := &recordingSummarizer{summary: "Summary."}

	p := summarizer.NewPipeline(
		&stubKeyStore{},
		&stubPages{text: "Article text"},
		sum,
		slog.Default(),
		summarizer.WithFallbackAPIKey(" env-key "),
	)

	if _, err := p.Summarize(context.Background(), summarizer.Request{UserID: 1, PageURL: "https://example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.inputs[0].APIKey != "env-key" {
		t.Fatalf("unexpected API key: %q", sum.inputs[0].APIKey)
	}
}

func TestPipelineMissingPageText(t *testing.T) {
	tests := []struct {
		name    string
		pageURL string
		pages   *stubPages
	}{
		{"empty text", "https://example.com", &stubPages{text: "   "}},
		{"provider error", "https://example.com", &stubPages{err: errors.New("boom")}},
		{"no active page", "", &stubPages{text: "Article text"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sum := &recordingSummarizer{summary: "Summary."}
			keys := &stubKeyStore{keys: map[int64]string{1: "key"}}

			p := summarizer.NewPipeline(keys, test.pages, sum, slog.Default())

			_, err := p.Summarize(context.Background(), summarizer.Request{UserID: 1, PageURL: test.pageURL})
			if !errors.Is(err, summarizer.ErrNoArticleText) {
				t.Fatalf("expected ErrNoArticleText, got %v", err)
			}

			if sum.callCount() != 0 {
				t.Fatalf("expected no summarizer call")
			}

			if got := summarizer.Render("", err); got != "Could not extract article text from this page." {
				t.Fatalf("unexpected message: %q", got)
			}
		})
	}
}

func TestPipelineSingleFlightCoalescesResultArea(t *testing.T) {
	sum := &recordingSummarizer{
		summary: "Summary.",
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	keys := &stubKeyStore{keys: map[int64]string{1: "key"}}

	p := summarizer.NewPipeline(keys, &stubPages{text: "Article"}, sum, slog.Default(), summarizer.WithSingleFlight())

	req := summarizer.Request{ResultArea: "chat:1", UserID: 1, PageURL: "https://example.com"}

	var wg sync.WaitGroup
	results := make([]string, 2)

	wg.Go(func() {
		results[0], _ = p.Summarize(context.Background(), req)
	})

	<-sum.started

	wg.Go(func() {
		results[1], _ = p.Summarize(context.Background(), req)
	})

	time.Sleep(100 * time.Millisecond)
	close(sum.release)
	wg.Wait()

	if got := sum.callCount(); got != 1 {
		t.Fatalf("expected one summarizer call, got %d", got)
	}

	if results[0] != "Summary." || results[1] != "Summary." {
		t.Fatalf("expected both callers to receive the summary, got %v", results)
	}
}

func TestPipelineSingleFlightKeepsDistinctRequestsApart(t *testing.T) {
	sum := &recordingSummarizer{
		summary: "Summary.",
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	keys := &stubKeyStore{keys: map[int64]string{1: "key"}}

	p := summarizer.NewPipeline(keys, &stubPages{text: "Article"}, sum, slog.Default(), summarizer.WithSingleFlight())

	requests := []summarizer.Request{
		{ResultArea: "chat:1", UserID: 1, PageURL: "https://example.com/a", Style: summarizer.StyleBrief},
		{ResultArea: "chat:1", UserID: 1, PageURL: "https://example.com/a", Style: summarizer.StyleDetailed},
	}

	var wg sync.WaitGroup
	for _, req := range requests {
		wg.Go(func() {
			_, _ = p.Summarize(context.Background(), req)
		})
	}

	<-sum.started
	<-sum.started
	close(sum.release)
	wg.Wait()

	if got := sum.callCount(); got != 2 {
		t.Fatalf("expected two summarizer calls, got %d", got)
	}

	styles := map[summarizer.Style]bool{}
	for _, input := range sum.inputs {
		styles[input.Style] = true
	}

	if !styles[summarizer.StyleBrief] || !styles[summarizer.StyleDetailed] {
		t.Fatalf("expected both styles to be summarized, got %v", sum.inputs)
	}
}

func TestPipelineWithoutSingleFlightRunsIndependently(t *testing.T) {
	sum := &recordingSummarizer{summary: "Summary."}
	keys := &stubKeyStore{keys: map[int64]string{1: "key"}}

	p := summarizer.NewPipeline(keys, &stubPages{text: "Article"}, sum, slog.Default())

	req := summarizer.Request{ResultArea: "chat:1", UserID: 1, PageURL: "https://example.com"}

	var wg sync.WaitGroup
	for range 2 {
		wg.Go(func() {
			_, _ = p.Summarize(context.Background(), req)
		})
	}
	wg.Wait()

	if got := sum.callCount(); got != 2 {
		t.Fatalf("expected two summarizer calls, got %d", got)
	}
}
