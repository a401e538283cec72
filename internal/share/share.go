package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type Platform string

const (
	WhatsApp Platform = "whatsapp"
	Twitter  Platform = "twitter"
	Facebook Platform = "facebook"
	LinkedIn Platform = "linkedin"
)

// Platforms lists link-based targets in display order.
var Platforms = []Platform{WhatsApp, Twitter, Facebook, LinkedIn} //nolint:gochecknoglobals // Immutable enumeration.

var (
	ErrNothingToShare      = errors.New("No result to share!") //nolint:staticcheck // Shown to users verbatim.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

func (p Platform) Title() string {
	switch p {
	case WhatsApp:
		return "WhatsApp"
	case Twitter:
		return "Twitter"
	case Facebook:
		return "Facebook"
	case LinkedIn:
		return "LinkedIn"
	default:
		return string(p)
	}
}

// Link builds the share URL for a result text and the page it came from.
func Link(platform Platform, text string, pageURL string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNothingToShare
	}

	encodedText := EncodeURIComponent(text)
	encodedURL := EncodeURIComponent(strings.TrimSpace(pageURL))

	switch platform {
	case WhatsApp:
		return "https://wa.me/?text=" + encodedText, nil
	case Twitter:
		return "https://twitter.com/intent/tweet?text=" + encodedText, nil
	case Facebook:
		return "https://www.facebook.com/sharer/sharer.php?u=" + encodedURL + "&quote=" + encodedText, nil
	case LinkedIn:
		return "https://www.linkedin.com/sharing/share-offsite/?url=" + encodedURL + "&summary=" + encodedText, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
}

// EncodeURIComponent escapes like the JavaScript function of the same name.
func EncodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")

	for _, keep := range []string{"!", "'", "(", ")", "*"} {
		escaped = strings.ReplaceAll(escaped, url.QueryEscape(keep), keep)
	}

	return escaped
}
