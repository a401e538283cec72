package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"briefly/internal/article"
	"briefly/internal/session"
)

const noLinkText = "✖️ Send me a link to an article and I will summarize it\\."

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID
	userID := message.From.ID
	text := strings.TrimSpace(message.Text)

	switch command(text) {
	case "/start":
		return b.handleStartCommand(ctx, chatID, userID)
	case "/menu":
		return b.handleMenuCommand(ctx, chatID, userID)
	case "/apikey":
		return b.handleAPIKeyCommand(ctx, text, chatID, userID, message.ID)
	case "/theme":
		return b.handleThemeCommand(ctx, chatID, userID)
	case "/updates":
		return b.sendUpdates(ctx, chatID)
	default:
		return b.handleRandomText(ctx, text, chatID, userID)
	}
}

// handleRandomText makes the first link of the message the active page.
func (b *Bot) handleRandomText(ctx context.Context, text string, chatID int64, userID int64) error {
	pageURL := article.FindPageURL(text)
	if pageURL == "" {
		if _, err := b.sendMessageWithKeyboard(ctx, chatID, noLinkText, nil); err != nil {
			return fmt.Errorf("send message with keyboard: %w", err)
		}

		return nil
	}

	b.speech.Stop(chatID)
	b.restoreTheme(ctx, chatID, userID)

	b.sessions.Update(chatID, b.now(), func(s *session.Session) {
		s.PageURL = pageURL
		s.Result = ""
		s.ShareOpen = false
		s.ThemeOpen = false
	})

	return b.showPopup(ctx, chatID, true)
}

// command returns the leading bot command without a @botname suffix.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}

	fields := strings.Fields(text)
	name, _, _ := strings.Cut(fields[0], "@")

	return strings.ToLower(name)
}
