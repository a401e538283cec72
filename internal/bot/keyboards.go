package bot

import (
	"strings"

	"github.com/go-telegram/bot/models"

	"briefly/internal/session"
	"briefly/internal/share"
	"briefly/internal/speech"
	"briefly/internal/summarizer"
	"briefly/internal/theme"
)

const (
	callbackPrefix    = "act"
	callbackSeparator = ":"

	themeKeyboardRowSize = 2
)

// callbackData encodes an action as act:<name>[:<arg>].
func callbackData(name string, arg string) string {
	if arg == "" {
		return callbackPrefix + callbackSeparator + name
	}

	return callbackPrefix + callbackSeparator + name + callbackSeparator + arg
}

func parseCallbackData(data string) (string, string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(data), callbackPrefix+callbackSeparator)
	if !ok || rest == "" {
		return "", "", false
	}

	name, arg, _ := strings.Cut(rest, callbackSeparator)

	return name, arg, name != ""
}

func button(text string, name string, arg string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: callbackData(name, arg)}
}

func getPopupKeyboard(sess session.Session, speaking speech.State) [][]models.InlineKeyboardButton {
	if sess.ThemeOpen {
		return getThemeKeyboard()
	}

	speakButton := button("🔊 Speak", actionSpeak, "")
	if speaking == speech.StateSpeaking {
		speakButton = button("⏹ Stop", actionSpeak, "")
	}

	keyboard := [][]models.InlineKeyboardButton{
		{button("✨ Summarize", actionSummarize, "")},
		getStyleRow(sess.Style),
		{
			speakButton,
			button("📋 Copy", actionCopy, ""),
			button("📤 Share", actionShare, ""),
		},
	}

	if sess.ShareOpen {
		keyboard = append(keyboard, getShareRows(sess)...)
	}

	keyboard = append(keyboard,
		[]models.InlineKeyboardButton{
			button("📄 PDF", actionPDF, ""),
			button("🔗 Copy link", actionCopyLink, ""),
			button("🎨 Theme", actionTheme, ""),
		},
		[]models.InlineKeyboardButton{
			button("⚙️ Options", actionOptions, ""),
			button("🆕 Updates", actionUpdates, ""),
			button("❌ Close", actionClose, ""),
		},
	)

	return keyboard
}

func getStyleRow(selected summarizer.Style) []models.InlineKeyboardButton {
	row := make([]models.InlineKeyboardButton, 0, len(summarizer.Styles))

	for _, style := range summarizer.Styles {
		title := styleTitle(style)
		if style == selected {
			title = "✅ " + title
		}

		row = append(row, button(title, actionStyle, string(style)))
	}

	return row
}

// getShareRows builds URL buttons so the platform opens directly.
func getShareRows(sess session.Session) [][]models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton

	for _, platform := range share.Platforms {
		link, err := share.Link(platform, sess.Result, sess.PageURL)
		if err != nil {
			continue
		}

		row = append(row, models.InlineKeyboardButton{Text: platform.Title(), URL: link})
	}

	if len(row) == 0 {
		return nil
	}

	return [][]models.InlineKeyboardButton{row}
}

func getThemeKeyboard() [][]models.InlineKeyboardButton {
	var keyboard [][]models.InlineKeyboardButton

	for i := 0; i < len(theme.Backgrounds); i += themeKeyboardRowSize {
		var row []models.InlineKeyboardButton

		for j := i; j < i+themeKeyboardRowSize && j < len(theme.Backgrounds); j++ {
			bg := theme.Backgrounds[j]
			row = append(row, button(bg.Title, actionThemeApply, bg.Name))
		}

		keyboard = append(keyboard, row)
	}

	return append(keyboard, []models.InlineKeyboardButton{
		button("💾 Save", actionThemeSave, ""),
		button("⬅️ Back", actionTheme, ""),
	})
}

func styleTitle(style summarizer.Style) string {
	switch style {
	case summarizer.StyleBrief:
		return "Brief"
	case summarizer.StyleDetailed:
		return "Detailed"
	case summarizer.StyleBullets:
		return "Bullets"
	default:
		return "Default"
	}
}
