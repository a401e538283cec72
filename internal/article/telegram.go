package article

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	telegramHost    = "t.me"
	telegramAltHost = "telegram.me"

	minPartsForTelegramSlugStartingWithS = 2
)

var (
	telegramSlugRe = regexp.MustCompile(`^\w{5,32}$`)
	telegramPostRe = regexp.MustCompile(`^\d+$`)
)

// telegramPreviewURL maps a public channel or post link to the web preview
// that carries the message text.
func telegramPreviewURL(u *url.URL) (string, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != telegramHost && host != telegramAltHost {
		return "", false
	}

	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "", false
	}

	parts := strings.Split(path, "/")
	if parts[0] == "s" {
		if len(parts) < minPartsForTelegramSlugStartingWithS {
			return "", false
		}
		parts = parts[1:]
	}

	slug := strings.TrimSpace(parts[0])
	if !telegramSlugRe.MatchString(slug) {
		return "", false
	}

	if len(parts) > 1 && telegramPostRe.MatchString(parts[1]) {
		return fmt.Sprintf("https://%s/%s/%s?embed=1&mode=tme", telegramHost, slug, parts[1]), true
	}

	return fmt.Sprintf("https://%s/s/%s", telegramHost, slug), true
}

// telegramText joins the text and captions of the latest messages on a
// Telegram preview page.
func telegramText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create document from reader: %w", err)
	}

	var messages []string

	doc.Find(".tgme_widget_message").Each(func(_ int, message *goquery.Selection) {
		var textBuilder strings.Builder

		message.Find(".tgme_widget_message_text, .tgme_widget_message_caption").Each(
			func(_ int, inner *goquery.Selection) {
				inner.Find("br").Each(func(_ int, br *goquery.Selection) {
					br.ReplaceWithHtml("\n")
				})

				fragment := normalizeWhitespace(inner.Text())
				if fragment == "" {
					return
				}
				if textBuilder.Len() > 0 {
					textBuilder.WriteString("\n")
				}
				textBuilder.WriteString(fragment)
			},
		)

		if text := strings.TrimSpace(textBuilder.String()); text != "" {
			messages = append(messages, text)
		}
	})

	if len(messages) > maxFeedItems {
		messages = messages[len(messages)-maxFeedItems:]
	}

	return strings.Join(messages, paragraphJoiner), nil
}
