package bot

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"briefly/internal/markdown"
	"briefly/internal/session"
	"briefly/internal/store"
	"briefly/internal/theme"
)

const welcomeText = `🧠 *Welcome to Briefly\!*

I summarize articles for you\. Here is how:

– Send me a link and a popup for that page appears
– Pick a style: brief, detailed or bullet points
– Press *Summarize*, then listen, copy, share or save it as PDF
– Set your Gemini API key with /apikey
– Customize the popup background with /theme
– See what's new with /updates`

const optionsText = `*⚙️ Options*

API key: %s

Set it with ` + "`/apikey <key>`" + ` and remove it with ` + "`/apikey clear`" + `\.
Get a key at https://aistudio\.google\.com/apikey\.`

const (
	apiKeyIsSetText     = "✅ API key is saved\\."
	apiKeyIsRemovedText = "✅ API key is removed\\."
	failedText          = "❌ Failed\\."
)

//go:embed texts/updates.md
var updatesText string

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64, userID int64) error {
	b.restoreTheme(ctx, chatID, userID)

	if _, err := b.sendMessageWithKeyboard(ctx, chatID, welcomeText, nil); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}

func (b *Bot) handleMenuCommand(ctx context.Context, chatID int64, userID int64) error {
	b.restoreTheme(ctx, chatID, userID)

	return b.showPopup(ctx, chatID, true)
}

func (b *Bot) handleThemeCommand(ctx context.Context, chatID int64, userID int64) error {
	b.restoreTheme(ctx, chatID, userID)

	b.sessions.Update(chatID, b.now(), func(s *session.Session) {
		s.ThemeOpen = true
	})

	return b.showPopup(ctx, chatID, true)
}

func (b *Bot) handleAPIKeyCommand(
	ctx context.Context,
	text string,
	chatID int64,
	userID int64,
	messageID int,
) error {
	fields := strings.Fields(text)

	switch {
	case len(fields) < 2:
		return b.sendOptions(ctx, chatID, userID)

	case strings.EqualFold(fields[1], "clear"):
		if err := b.keys.Remove(ctx, userID, store.KeyGeminiAPIKey); err != nil {
			return b.sendFailed(ctx, chatID, fmt.Errorf("remove api key: %w", err))
		}

		_, err := b.sendMessageWithKeyboard(ctx, chatID, apiKeyIsRemovedText, nil)

		return err

	default:
		// The key must not stay visible in the chat history.
		if err := b.deleteMessage(ctx, chatID, messageID); err != nil {
			b.log.WarnContext(ctx, "Failed to delete message with API key",
				"error", err,
				"chatID", chatID,
				"messageID", messageID)
		}

		if err := b.keys.Set(ctx, userID, store.KeyGeminiAPIKey, fields[1]); err != nil {
			return b.sendFailed(ctx, chatID, fmt.Errorf("set api key: %w", err))
		}

		_, err := b.sendMessageWithKeyboard(ctx, chatID, apiKeyIsSetText, nil)

		return err
	}
}

func (b *Bot) sendOptions(ctx context.Context, chatID int64, userID int64) error {
	status := "not set"

	key, ok, err := b.keys.Get(ctx, userID, store.KeyGeminiAPIKey)
	switch {
	case err != nil:
		return b.sendFailed(ctx, chatID, fmt.Errorf("get api key: %w", err))
	case ok && strings.TrimSpace(key) != "":
		status = "set"
	case b.fallbackKey != "":
		status = "shared default"
	}

	if _, err = b.sendMessageWithKeyboard(ctx, chatID, fmt.Sprintf(optionsText, "*"+status+"*"), nil); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}

func (b *Bot) sendUpdates(ctx context.Context, chatID int64) error {
	if _, err := b.sendMessageWithKeyboard(ctx, chatID, markdown.EscapeV2(updatesText), nil); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}

func (b *Bot) sendFailed(ctx context.Context, chatID int64, err error) error {
	if _, sendErr := b.sendMessageWithKeyboard(ctx, chatID, failedText, nil); sendErr != nil {
		return errors.Join(err, fmt.Errorf("send message with keyboard: %w", sendErr))
	}

	return err
}

// restoreTheme loads the saved background the first time a chat is seen.
func (b *Bot) restoreTheme(ctx context.Context, chatID int64, userID int64) {
	if _, state := b.themes.Current(chatID); state != theme.StateNone {
		return
	}

	if _, err := b.themes.Restore(ctx, chatID, userID); err != nil {
		b.log.ErrorContext(ctx, "Failed to restore background",
			"error", err,
			"chatID", chatID,
			"userID", userID)
	}
}
