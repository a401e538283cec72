package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"briefly/internal/theme"
)

const (
	FileName = "summary.pdf"
	Title    = "AI Summary"

	marginLeft  = 10.0
	titleY      = 15.0
	bodyY       = 30.0
	bodyWidth   = 180.0
	lineHeight  = 6.0
	bandHeight  = 4.0
	pageWidthMM = 210.0
)

var ErrNothingToSave = errors.New("No content to save!") //nolint:staticcheck // Shown to users as is.

// PDF renders the result text as a single document. A parsable background
// colours the header band.
func PDF(text string, background string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNothingToSave
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.AddPage()

	if color, ok := theme.PrimaryColor(background); ok {
		pdf.SetFillColor(int(color.R), int(color.G), int(color.B))
		pdf.Rect(0, 0, pageWidthMM, bandHeight, "F")
	}

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(marginLeft, titleY, Title)

	pdf.SetFont("Helvetica", "", 12)
	pdf.SetXY(marginLeft, bodyY)
	pdf.MultiCell(bodyWidth, lineHeight, tr(text), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return buf.Bytes(), nil
}
