package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"

	"fintrack/internal/core"
)

const (
	pdfTitle      = "Transactions Report"
	pdfMargin     = 40.0
	pdfLineHeight = 12.0
	pdfFontSize   = 10.0

	pdfCellPadding  = 4.0
	pdfHeaderHeight = pdfLineHeight + 12
)

var (
	pdfHeader = []string{"ID", "Price", "Category", "Type", "Date", "Description"}
	pdfWidths = []float64{50, 60, 80, 60, 80, 200}
)

// WritePDF renders a Letter-sized report: a title and a gridded table with a
// bold gray header row that repeats on every page. Long cells wrap.
func WritePDF(w io.Writer, txs []core.Transaction) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle(pdfTitle, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 20, pdfTitle, "", 1, "L", false, 0, "")
	pdf.Ln(10)
	drawPDFHeader(pdf)

	_, pageHeight := pdf.GetPageSize()
	pdf.SetFont("Helvetica", "", pdfFontSize)
	pdf.SetTextColor(0, 0, 0)

	for _, t := range txs {
		cells := []string{
			strconv.FormatInt(t.ID, 10),
			core.FormatDollars(t.Amount),
			tr(t.Category),
			string(t.Type),
			t.Date,
			tr(t.Description),
		}

		lines := make([][]string, len(cells))
		rowLines := 1
		for i, text := range cells {
			lines[i] = pdf.SplitText(text, pdfWidths[i])
			if len(lines[i]) > rowLines {
				rowLines = len(lines[i])
			}
		}
		drawPDFRow(pdf, lines, rowLines, pageHeight-pdfMargin)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// drawPDFRow draws one table row. A row that does not fit below the cursor
// moves to a fresh page; a row taller than a whole page is split, so no
// line is drawn past bottom.
func drawPDFRow(pdf *fpdf.Fpdf, lines [][]string, rowLines int, bottom float64) {
	newPage := func() {
		pdf.AddPage()
		drawPDFHeader(pdf)
		pdf.SetFont("Helvetica", "", pdfFontSize)
		pdf.SetTextColor(0, 0, 0)
	}

	rowHeight := float64(rowLines)*pdfLineHeight + pdfCellPadding
	freshTop := pdfMargin + pdfHeaderHeight
	if pdf.GetY()+rowHeight > bottom && rowHeight <= bottom-freshTop {
		newPage()
	}

	for first := 0; first < rowLines; {
		x, y := pdf.GetXY()
		fit := int((bottom - y - pdfCellPadding) / pdfLineHeight)
		if fit < 1 {
			newPage()
			continue
		}
		n := min(fit, rowLines-first)
		height := float64(n)*pdfLineHeight + pdfCellPadding

		for i, cellLines := range lines {
			pdf.Rect(x, y, pdfWidths[i], height, "D")
			for k := first; k < first+n && k < len(cellLines); k++ {
				pdf.SetXY(x, y+pdfCellPadding/2+float64(k-first)*pdfLineHeight)
				pdf.CellFormat(pdfWidths[i], pdfLineHeight, cellLines[k], "", 0, "LT", false, 0, "")
			}
			x += pdfWidths[i]
		}
		pdf.SetXY(pdfMargin, y+height)

		first += n
		if first < rowLines {
			newPage()
		}
	}
}

func drawPDFHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", pdfFontSize)
	pdf.SetFillColor(128, 128, 128)
	pdf.SetTextColor(245, 245, 245)
	for i, h := range pdfHeader {
		pdf.CellFormat(pdfWidths[i], pdfHeaderHeight, h, "1", 0, "LM", true, 0, "")
	}
	pdf.Ln(-1)
}
