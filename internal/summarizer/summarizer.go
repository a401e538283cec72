package summarizer

import (
	"context"
	"strings"
)

// Style selects the verbosity and format of a summary.
type Style string

const (
	StyleBrief    Style = "brief"
	StyleDetailed Style = "detailed"
	StyleBullets  Style = "bullets"
	StyleDefault  Style = "default"
)

// Styles lists the selectable styles in display order.
var Styles = []Style{StyleBrief, StyleDetailed, StyleBullets} //nolint:gochecknoglobals // Immutable enumeration.

// ParseStyle maps unknown or empty selectors to StyleDefault.
func ParseStyle(raw string) Style {
	switch s := Style(strings.ToLower(strings.TrimSpace(raw))); s {
	case StyleBrief, StyleDetailed, StyleBullets:
		return s
	default:
		return StyleDefault
	}
}

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the raw extracted page text of arbitrary length.
	Text string
	// Style selects the prompt template.
	Style Style
	// APIKey authenticates the request. It is never empty.
	APIKey string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}
