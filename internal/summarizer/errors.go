package summarizer

import (
	"errors"
	"strings"
)

const (
	MissingAPIKeyMessage    = "API key not found. Please set your API key with /apikey."
	NoArticleTextMessage    = "Could not extract article text from this page."
	GenerationFailedMessage = "Failed to generate summary. Please try again later."
	NoSummaryMessage        = "No summary available."
)

var (
	// ErrMissingAPIKey and ErrNoArticleText are precondition failures detected
	// before any network call.
	ErrMissingAPIKey = errors.New("api key is missing")
	ErrNoArticleText = errors.New("article text is missing")

	// ErrGenerationFailed hides transport and parse failures from the caller.
	ErrGenerationFailed = errors.New("generate summary")
)

// RemoteError is a rejection reported by the generative endpoint.
type RemoteError struct {
	StatusCode int
	Reason     string
}

func (e *RemoteError) Error() string {
	return e.Reason
}

// Reason maps a pipeline error to its user-facing phrase.
func Reason(err error) string {
	var remoteErr *RemoteError

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAPIKey):
		return MissingAPIKeyMessage
	case errors.Is(err, ErrNoArticleText):
		return NoArticleTextMessage
	case errors.As(err, &remoteErr):
		return remoteErr.Reason
	default:
		return GenerationFailedMessage
	}
}

// IsPrecondition reports failures detected before the remote call.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) || errors.Is(err, ErrNoArticleText)
}

// Render produces the string shown in the result area.
func Render(summary string, err error) string {
	if err == nil {
		if strings.TrimSpace(summary) == "" {
			return NoSummaryMessage
		}

		return summary
	}

	if IsPrecondition(err) {
		return Reason(err)
	}

	return "Error: " + Reason(err)
}
