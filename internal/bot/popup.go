package bot

import (
	"context"
	"fmt"
	"strings"

	"briefly/internal/markdown"
	"briefly/internal/session"
	"briefly/internal/speech"
	"briefly/internal/theme"
)

const (
	popupTitle        = "🧠 *Briefly*"
	noPageText        = "No page yet\\. Send me a link to an article\\."
	emptyResultText   = "_Choose a style and press Summarize\\._"
	summarizingResult = "Summarizing..."
)

func (b *Bot) formatPopup(chatID int64, sess session.Session) string {
	var text strings.Builder

	text.WriteString(popupTitle)
	text.WriteString("\n\n")

	if sess.PageURL == "" {
		text.WriteString(noPageText)
	} else {
		text.WriteString("🔗 ")
		text.WriteString(markdown.EscapeV2(sess.PageURL))
	}

	text.WriteString("\n📝 Style: *")
	text.WriteString(styleTitle(sess.Style))
	text.WriteString("*")

	if css, _ := b.themes.Current(chatID); css != "" {
		text.WriteString("\n🎨 Background: ")
		text.WriteString(markdown.EscapeV2(theme.Describe(css)))
	}

	text.WriteString("\n\n")

	if sess.Result == "" {
		text.WriteString(emptyResultText)
	} else {
		text.WriteString(markdown.EscapeV2(clip(sess.Result)))
	}

	return text.String()
}

// showPopup edits the chat's popup in place, or sends a new one when there is
// none yet or forceNew is set.
func (b *Bot) showPopup(ctx context.Context, chatID int64, forceNew bool) error {
	sess := b.sessions.Get(chatID, b.now())
	text := b.formatPopup(chatID, sess)
	keyboard := getPopupKeyboard(sess, b.speech.State(chatID))

	if sess.MessageID != 0 && !forceNew {
		err := b.editMessageWithKeyboard(ctx, chatID, sess.MessageID, text, keyboard)
		if err == nil {
			return nil
		}

		b.log.WarnContext(ctx, "Failed to edit popup so new one will be sent",
			"error", err,
			"chatID", chatID,
			"messageID", sess.MessageID)
	}

	messageID, err := b.sendMessageWithKeyboard(ctx, chatID, text, keyboard)
	if err != nil {
		return fmt.Errorf("send popup: %w", err)
	}

	b.sessions.Update(chatID, b.now(), func(s *session.Session) {
		s.MessageID = messageID
	})

	return nil
}

// refreshPopup redraws the popup once speech ends on its own.
func (b *Bot) refreshPopup(ctx context.Context, chatID int64) {
	if b.speech.State(chatID) != speech.StateIdle {
		return
	}

	if b.sessions.Get(chatID, b.now()).MessageID == 0 {
		return
	}

	if err := b.showPopup(ctx, chatID, false); err != nil {
		b.log.ErrorContext(ctx, "Failed to refresh popup",
			"error", err,
			"chatID", chatID)
	}
}
