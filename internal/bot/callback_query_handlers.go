package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"briefly/internal/export"
	"briefly/internal/markdown"
	"briefly/internal/session"
	"briefly/internal/share"
	"briefly/internal/speech"
	"briefly/internal/store"
	"briefly/internal/summarizer"
	"briefly/internal/theme"
)

const (
	actionSummarize  = "summarize"
	actionStyle      = "style"
	actionSpeak      = "speak"
	actionCopy       = "copy"
	actionShare      = "share"
	actionPDF        = "pdf"
	actionTheme      = "theme"
	actionThemeApply = "theme_apply"
	actionThemeSave  = "theme_save"
	actionUpdates    = "updates"
	actionOptions    = "options"
	actionCopyLink   = "copy_link"
	actionClose      = "close"
)

const (
	copiedAnswer          = "Copied!"
	nothingToCopyAnswer   = "Nothing to copy!"
	noPageAnswer          = "No page to link!"
	chooseBackgroundFirst = "Choose a background first."
	backgroundSavedAnswer = "✅ Background is saved."
	failedAnswer          = "❌ Failed."
)

// actionRequest is what a popup button press carries.
type actionRequest struct {
	chatID    int64
	userID    int64
	messageID int
	arg       string
}

// actionHandler returns the toast text for the button press.
type actionHandler func(ctx context.Context, req actionRequest) (string, error)

type action struct {
	handle actionHandler
	// stopsSpeech ends an ongoing utterance before the handler runs.
	stopsSpeech bool
}

func (b *Bot) actionTable() map[string]action {
	return map[string]action{
		actionSummarize:  {handle: b.summarize, stopsSpeech: true},
		actionStyle:      {handle: b.selectStyle, stopsSpeech: true},
		actionSpeak:      {handle: b.toggleSpeech},
		actionCopy:       {handle: b.copyResult, stopsSpeech: true},
		actionShare:      {handle: b.toggleShareMenu, stopsSpeech: true},
		actionPDF:        {handle: b.savePDF},
		actionTheme:      {handle: b.toggleThemeMenu},
		actionThemeApply: {handle: b.applyTheme},
		actionThemeSave:  {handle: b.saveTheme},
		actionUpdates:    {handle: b.showUpdates},
		actionOptions:    {handle: b.showOptions, stopsSpeech: true},
		actionCopyLink:   {handle: b.copyLink},
		actionClose:      {handle: b.closePopup, stopsSpeech: true},
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *models.CallbackQuery) error {
	chatID, messageID := callbackMessage(callback)

	name, arg, ok := parseCallbackData(callback.Data)
	act, known := b.actions[name]

	if !ok || !known || chatID == 0 {
		return b.answerCallback(ctx, callback.ID, "")
	}

	if act.stopsSpeech && b.speech.Stop(chatID) {
		b.log.DebugContext(ctx, "Speech is stopped by action",
			"chatID", chatID,
			"action", name)
	}

	b.sessions.Update(chatID, b.now(), func(s *session.Session) {
		s.MessageID = messageID
	})

	answer, err := act.handle(ctx, actionRequest{
		chatID:    chatID,
		userID:    callback.From.ID,
		messageID: messageID,
		arg:       arg,
	})
	if err != nil {
		if answerErr := b.answerCallback(ctx, callback.ID, failedAnswer); answerErr != nil {
			err = errors.Join(err, answerErr)
		}

		return fmt.Errorf("handle %s action: %w", name, err)
	}

	return b.answerCallback(ctx, callback.ID, answer)
}

func (b *Bot) summarize(ctx context.Context, req actionRequest) (string, error) {
	sess := b.sessions.Update(req.chatID, b.now(), func(s *session.Session) {
		s.Result = summarizingResult
		s.ShareOpen = false
		s.ThemeOpen = false
	})

	if err := b.showPopup(ctx, req.chatID, false); err != nil {
		return "", err
	}

	var summary string

	err := b.withSpinner(ctx, req.chatID, func() error {
		var err error

		summary, err = b.pipeline.Summarize(ctx, summarizer.Request{
			ResultArea: resultArea(req.chatID),
			UserID:     req.userID,
			PageURL:    sess.PageURL,
			Style:      sess.Style,
		})

		return err
	})
	if err != nil && !summarizer.IsPrecondition(err) {
		b.log.ErrorContext(ctx, "Failed to summarize page",
			"error", err,
			"chatID", req.chatID,
			"userID", req.userID,
			"pageURL", sess.PageURL,
			"style", sess.Style)
	}

	result := summarizer.Render(summary, err)

	b.sessions.Update(req.chatID, b.now(), func(s *session.Session) {
		// The page or style may have changed while the summary was running.
		if s.PageURL == sess.PageURL && s.Style == sess.Style {
			s.Result = result
			return
		}

		b.log.InfoContext(ctx, "Stale summary is dropped",
			"chatID", req.chatID,
			"pageURL", sess.PageURL,
			"activePageURL", s.PageURL,
			"style", sess.Style,
			"activeStyle", s.Style)

		if s.Result == summarizingResult {
			s.Result = ""
		}
	})

	return "", b.showPopup(ctx, req.chatID, false)
}

func (b *Bot) selectStyle(ctx context.Context, req actionRequest) (string, error) {
	style := summarizer.ParseStyle(req.arg)

	b.sessions.Update(req.chatID, b.now(), func(s *session.Session) {
		s.Style = style
	})

	return styleTitle(style), b.showPopup(ctx, req.chatID, false)
}

func (b *Bot) toggleSpeech(ctx context.Context, req actionRequest) (string, error) {
	sess := b.sessions.Get(req.chatID, b.now())

	apiKey := ""
	if b.speech.State(req.chatID) == speech.StateIdle {
		var err error

		apiKey, err = b.apiKey(ctx, req.userID)
		if err != nil {
			return "", err
		}

		if apiKey == "" && readable(sess.Result) {
			return summarizer.MissingAPIKeyMessage, nil
		}
	}

	state := b.speech.Toggle(ctx, req.chatID, apiKey, speakableText(sess.Result),
		func(ctx context.Context, audio []byte) error {
			return b.sendAudio(ctx, req.chatID, audio)
		})

	if err := b.showPopup(ctx, req.chatID, false); err != nil {
		return "", err
	}

	if state == speech.StateSpeaking {
		return "🔊 Speaking...", nil
	}

	return "", nil
}

func (b *Bot) copyResult(ctx context.Context, req actionRequest) (string, error) {
	sess := b.sessions.Get(req.chatID, b.now())
	if !readable(sess.Result) {
		return nothingToCopyAnswer, nil
	}

	text := "```\n" + markdown.EscapeCode(clip(sess.Result)) + "\n```"
	if _, err := b.sendMessageWithKeyboard(ctx, req.chatID, text, nil); err != nil {
		return "", err
	}

	return copiedAnswer, nil
}

func (b *Bot) toggleShareMenu(ctx context.Context, req actionRequest) (string, error) {
	sess := b.sessions.Get(req.chatID, b.now())
	if !sess.ShareOpen && !readable(sess.Result) {
		return share.ErrNothingToShare.Error(), nil
	}

	b.sessions.Update(req.chatID, b.now(), func(s *session.Session) {
		s.ShareOpen = !s.ShareOpen
		s.ThemeOpen = false
	})

	return "", b.showPopup(ctx, req.chatID, false)
}

func (b *Bot) savePDF(ctx context.Context, req actionRequest) (string, error) {
	sess := b.sessions.Get(req.chatID, b.now())
	if !readable(sess.Result) {
		return export.ErrNothingToSave.Error(), nil
	}

	background, _ := b.themes.Current(req.chatID)

	data, err := export.PDF(sess.Result, background)
	if errors.Is(err, export.ErrNothingToSave) {
		return err.Error(), nil
	}
	if err != nil {
		return "", err
	}

	return "", b.sendDocument(ctx, req.chatID, export.FileName, data)
}

func (b *Bot) toggleThemeMenu(ctx context.Context, req actionRequest) (string, error) {
	b.sessions.Update(req.chatID, b.now(), func(s *session.Session) {
		s.ThemeOpen = !s.ThemeOpen
		s.ShareOpen = false
	})

	return "", b.showPopup(ctx, req.chatID, false)
}

func (b *Bot) applyTheme(ctx context.Context, req actionRequest) (string, error) {
	bg, err := b.themes.Apply(req.chatID, req.arg)
	if errors.Is(err, theme.ErrUnknownBackground) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return bg.Title, b.showPopup(ctx, req.chatID, false)
}

func (b *Bot) saveTheme(ctx context.Context, req actionRequest) (string, error) {
	err := b.themes.Save(ctx, req.chatID, req.userID)
	if errors.Is(err, theme.ErrNothingApplied) {
		return chooseBackgroundFirst, nil
	}
	if err != nil {
		return "", err
	}

	return backgroundSavedAnswer, nil
}

func (b *Bot) showUpdates(ctx context.Context, req actionRequest) (string, error) {
	return "", b.sendUpdates(ctx, req.chatID)
}

func (b *Bot) showOptions(ctx context.Context, req actionRequest) (string, error) {
	return "", b.sendOptions(ctx, req.chatID, req.userID)
}

func (b *Bot) copyLink(ctx context.Context, req actionRequest) (string, error) {
	sess := b.sessions.Get(req.chatID, b.now())
	if sess.PageURL == "" {
		return noPageAnswer, nil
	}

	text := "`" + markdown.EscapeCode(sess.PageURL) + "`"
	if _, err := b.sendMessageWithKeyboard(ctx, req.chatID, text, nil); err != nil {
		return "", err
	}

	return copiedAnswer, nil
}

func (b *Bot) closePopup(ctx context.Context, req actionRequest) (string, error) {
	b.sessions.Update(req.chatID, b.now(), func(s *session.Session) {
		s.MessageID = 0
		s.ShareOpen = false
		s.ThemeOpen = false
	})

	return "", b.deleteMessage(ctx, req.chatID, req.messageID)
}

func (b *Bot) apiKey(ctx context.Context, userID int64) (string, error) {
	key, ok, err := b.keys.Get(ctx, userID, store.KeyGeminiAPIKey)
	if err != nil {
		return "", fmt.Errorf("get api key: %w", err)
	}

	if key = strings.TrimSpace(key); ok && key != "" {
		return key, nil
	}

	return b.fallbackKey, nil
}

func resultArea(chatID int64) string {
	return fmt.Sprintf("chat:%d", chatID)
}

// readable reports whether the result area holds something worth reusing.
func readable(result string) bool {
	return strings.TrimSpace(result) != "" && result != summarizingResult
}

func speakableText(result string) string {
	if !readable(result) {
		return ""
	}

	return result
}
