package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	sendSpinnerInterval = 3 * time.Second

	// Leaves room for the popup header within Telegram's 4096 limit.
	maxResultRunes = 3500
)

func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	_, err := b.api.SendChatAction(ctx, &tgbot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil {
		b.log.ErrorContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", chatID)
	}
}

func (b *Bot) withSpinner(ctx context.Context, chatID int64, fn func() error) error {
	spinnerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		b.sendTyping(spinnerCtx, chatID)

		t := time.NewTicker(sendSpinnerInterval)
		defer t.Stop()

		for {
			select {
			case <-spinnerCtx.Done():
				return
			case <-t.C:
				b.sendTyping(spinnerCtx, chatID)
			}
		}
	}()

	return fn()
}

// sendMessageWithKeyboard sends MarkdownV2 text and returns the new message ID.
func (b *Bot) sendMessageWithKeyboard(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard [][]models.InlineKeyboardButton,
) (int, error) {
	params := &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   b.normalizeText(ctx, chatID, text),
		// See https://core.telegram.org/bots/api#markdownv2-style.
		ParseMode:          models.ParseModeMarkdown,
		LinkPreviewOptions: disabledLinkPreview(),
	}
	if len(keyboard) > 0 {
		params.ReplyMarkup = &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
	}

	var messageID int

	err := b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		message, err := b.api.SendMessage(ctx, params)
		if err != nil {
			return fmt.Errorf("send message: %w", err)
		}

		if message != nil {
			messageID = message.ID
		}

		return nil
	})

	return messageID, err
}

func (b *Bot) editMessageWithKeyboard(
	ctx context.Context,
	chatID int64,
	messageID int,
	text string,
	keyboard [][]models.InlineKeyboardButton,
) error {
	params := &tgbot.EditMessageTextParams{
		ChatID:             chatID,
		MessageID:          messageID,
		Text:               b.normalizeText(ctx, chatID, text),
		ParseMode:          models.ParseModeMarkdown,
		LinkPreviewOptions: disabledLinkPreview(),
		ReplyMarkup:        &models.InlineKeyboardMarkup{InlineKeyboard: keyboard},
	}

	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		if _, err := b.api.EditMessageText(ctx, params); err != nil && !isNotModified(err) {
			return fmt.Errorf("edit message text: %w", err)
		}

		return nil
	})
}

func (b *Bot) deleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		if _, err := b.api.DeleteMessage(ctx, &tgbot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: messageID,
		}); err != nil {
			return fmt.Errorf("delete message: %w", err)
		}

		return nil
	})
}

func (b *Bot) sendDocument(ctx context.Context, chatID int64, fileName string, data []byte) error {
	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		if _, err := b.api.SendDocument(ctx, &tgbot.SendDocumentParams{
			ChatID: chatID,
			Document: &models.InputFileUpload{
				Filename: fileName,
				Data:     bytes.NewReader(data),
			},
		}); err != nil {
			return fmt.Errorf("send document: %w", err)
		}

		return nil
	})
}

func (b *Bot) sendAudio(ctx context.Context, chatID int64, audio []byte) error {
	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		if _, err := b.api.SendAudio(ctx, &tgbot.SendAudioParams{
			ChatID: chatID,
			Audio: &models.InputFileUpload{
				Filename: "summary.wav",
				Data:     bytes.NewReader(audio),
			},
			Title: "AI Summary",
		}); err != nil {
			return fmt.Errorf("send audio: %w", err)
		}

		return nil
	})
}

// answerCallback shows text as a toast. It is not rate limited because
// Telegram expects an answer for every query.
func (b *Bot) answerCallback(ctx context.Context, callbackID string, text string) error {
	if _, err := b.api.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return nil
}

func (b *Bot) normalizeText(ctx context.Context, chatID int64, text string) string {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	return normalizedText
}

func disabledLinkPreview() *models.LinkPreviewOptions {
	disabled := true

	return &models.LinkPreviewOptions{IsDisabled: &disabled}
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// clip keeps at most maxResultRunes characters of text.
func clip(text string) string {
	runes := []rune(text)
	if len(runes) <= maxResultRunes {
		return text
	}

	return string(runes[:maxResultRunes]) + "…"
}
