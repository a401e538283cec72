package summarizer

import "unicode/utf8"

const (
	// MaxTextLength is counted in characters, not tokens.
	MaxTextLength    = 20000
	TruncationMarker = "..."

	briefInstruction    = "Provide a brief summary of the following article in 2-3 sentences:"
	detailedInstruction = "Provide a detailed summary of the following article, " +
		"covering all main points and key details:"
	bulletsInstruction = `Summarize the following article in 5-7 key points. ` +
		`Format each point as a line starting with "- " (dash followed by a space). ` +
		`Do not use asterisks or other bullet symbols, only use the dash. ` +
		`Keep each point concise and focused on a single key insight from the article:`
	defaultInstruction = "Summarize the following article:"
)

// Truncate caps text at MaxTextLength characters and marks the cut.
func Truncate(text string) string {
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return text
	}

	return string([]rune(text)[:MaxTextLength]) + TruncationMarker
}

// Instruction returns the fixed template for a style.
func Instruction(style Style) string {
	switch style {
	case StyleBrief:
		return briefInstruction
	case StyleDetailed:
		return detailedInstruction
	case StyleBullets:
		return bulletsInstruction
	default:
		return defaultInstruction
	}
}

func BuildPrompt(style Style, text string) string {
	return Instruction(style) + "\n\n" + Truncate(text)
}
