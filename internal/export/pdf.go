package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// Layout constants, A4 portrait in millimetres.
const (
	pdfBodyFont   = "Arial"
	pdfBodySize   = 9.0
	pdfLineHeight = 5.0
	pdfTableSize  = 8.0
	pdfTableLine  = 4.0
	pdfTableWidth = 180.0
	pdfPageBottom = 297.0 - 15.0
)

// markdownToPDF lays the markdown report out on A4 pages. The markdown is
// parsed with goldmark and the AST is walked straight into fpdf draw calls;
// only the node kinds the report emits are handled.
func markdownToPDF(markdown string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()
	pdf.SetFont(pdfBodyFont, "", pdfBodySize)

	md := goldmark.New(
		goldmark.WithExtensions(extension.Table),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	source := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(source))

	w := &docWriter{
		pdf:    pdf,
		source: source,
		// Core fonts are cp1252; report text arrives as UTF-8.
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	if err := ast.Walk(doc, w.walk); err != nil {
		return nil, fmt.Errorf("failed to lay out report: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// docWriter walks the markdown AST and draws each node with fpdf.
type docWriter struct {
	pdf       *fpdf.Fpdf
	source    []byte
	tr        func(string) string
	bold      bool
	italic    bool
	listDepth int
}

func (w *docWriter) walk(n ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n.Kind() {
	case ast.KindHeading:
		w.heading(n.(*ast.Heading), entering)
	case ast.KindParagraph:
		if !entering {
			w.pdf.Ln(7)
		}
	case ast.KindText:
		if entering {
			w.text(n.(*ast.Text))
		}
	case ast.KindEmphasis:
		w.emphasis(n.(*ast.Emphasis), entering)
	case ast.KindCodeSpan:
		return w.codeSpan(n.(*ast.CodeSpan), entering)
	case ast.KindList:
		w.list(entering)
	case ast.KindListItem:
		w.listItem(entering)
	case ast.KindThematicBreak:
		if entering {
			w.rule()
		}
	case extast.KindTable:
		if entering {
			w.table(n.(*extast.Table))
			return ast.WalkSkipChildren, nil
		}
	}
	return ast.WalkContinue, nil
}

// bodyFont restores the paragraph font with the current emphasis state.
func (w *docWriter) bodyFont() {
	style := ""
	if w.bold {
		style += "B"
	}
	if w.italic {
		style += "I"
	}
	w.pdf.SetFont(pdfBodyFont, style, pdfBodySize)
}

func (w *docWriter) heading(n *ast.Heading, entering bool) {
	if entering {
		w.pdf.Ln(6)
		size := 10.0
		switch n.Level {
		case 1:
			size = 14
		case 2:
			size = 12
		case 3:
			size = 11
		}
		w.pdf.SetFont(pdfBodyFont, "B", size)
		return
	}
	w.pdf.Ln(6)
	w.bodyFont()
}

func (w *docWriter) text(n *ast.Text) {
	w.pdf.Write(pdfLineHeight, w.tr(string(n.Text(w.source))))
	if n.SoftLineBreak() || n.HardLineBreak() {
		w.pdf.Ln(pdfLineHeight)
	}
}

func (w *docWriter) emphasis(n *ast.Emphasis, entering bool) {
	if n.Level == 2 {
		w.bold = entering
	} else {
		w.italic = entering
	}
	w.bodyFont()
}

func (w *docWriter) codeSpan(n *ast.CodeSpan, entering bool) (ast.WalkStatus, error) {
	if !entering {
		w.bodyFont()
		return ast.WalkContinue, nil
	}
	w.pdf.SetFont("Courier", "", pdfBodySize)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			w.pdf.Write(pdfLineHeight, w.tr(string(t.Segment.Value(w.source))))
		}
	}
	return ast.WalkSkipChildren, nil
}

func (w *docWriter) list(entering bool) {
	if entering {
		w.listDepth++
		return
	}
	w.listDepth--
	if w.listDepth == 0 {
		w.pdf.Ln(2)
	}
}

func (w *docWriter) listItem(entering bool) {
	if !entering {
		return
	}
	w.pdf.Ln(pdfLineHeight)
	w.pdf.SetX(15 + float64(w.listDepth)*5)
	w.pdf.Write(pdfLineHeight, "- ")
}

func (w *docWriter) rule() {
	w.pdf.Ln(2)
	w.pdf.Line(15, w.pdf.GetY(), 195, w.pdf.GetY())
	w.pdf.Ln(2)
}

func (w *docWriter) table(n *extast.Table) {
	rows := w.tableRows(n)
	if len(rows) == 0 || len(rows[0]) == 0 {
		return
	}
	w.drawTable(rows)
}

// tableRows flattens header and body rows to translated cell text. The
// header node holds its cells directly, the same shape as a body row.
func (w *docWriter) tableRows(n *extast.Table) [][]string {
	var rows [][]string
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *extast.TableHeader, *extast.TableRow:
			rows = append(rows, w.rowCells(child))
		}
	}
	return rows
}

func (w *docWriter) rowCells(row ast.Node) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			cells = append(cells, w.tr(string(cell.Text(w.source))))
		}
	}
	return cells
}

// drawTable renders a bordered grid: first row bold on grey fill, cells
// word-wrapped to their column width, rows capped at eight lines.
func (w *docWriter) drawTable(rows [][]string) {
	w.pdf.Ln(2)

	numCols := len(rows[0])
	widths := w.columnWidths(rows, numCols)

	for i, row := range rows {
		header := i == 0
		if header {
			w.pdf.SetFont(pdfBodyFont, "B", pdfTableSize)
		} else {
			w.pdf.SetFont(pdfBodyFont, "", pdfTableSize)
		}

		if len(row) > numCols {
			row = row[:numCols]
		}
		lines := 1
		wrapped := make([][]string, len(row))
		for j, cell := range row {
			wrapped[j] = w.wrapWords(cell, widths[j]-2)
			if len(wrapped[j]) > lines {
				lines = len(wrapped[j])
			}
		}
		if lines > 8 {
			lines = 8
		}

		rowHeight := float64(lines)*pdfTableLine + 2
		startX := w.pdf.GetX()
		startY := w.pdf.GetY()
		if startY+rowHeight > pdfPageBottom {
			w.pdf.AddPage()
			startY = w.pdf.GetY()
		}

		x := startX
		for j := range wrapped {
			if header {
				w.pdf.SetFillColor(230, 230, 230)
				w.pdf.Rect(x, startY, widths[j], rowHeight, "FD")
			} else {
				w.pdf.Rect(x, startY, widths[j], rowHeight, "D")
			}
			w.pdf.SetXY(x+1, startY+1)
			w.drawCell(wrapped[j], widths[j]-2, lines)
			x += widths[j]
		}

		w.pdf.SetXY(startX, startY+rowHeight)
	}

	w.pdf.Ln(3)
	w.bodyFont()
}

// columnWidths sizes columns from measured content, bounded to a third of
// the table width each, then scales the set down to fit the page or modestly
// up to fill it.
func (w *docWriter) columnWidths(rows [][]string, numCols int) []float64 {
	widths := make([]float64, numCols)

	for i, row := range rows {
		if i == 0 {
			w.pdf.SetFont(pdfBodyFont, "B", pdfTableSize)
		} else if i == 1 {
			w.pdf.SetFont(pdfBodyFont, "", pdfTableSize)
		}
		for j, cell := range row {
			if j >= numCols {
				break
			}
			if cw := w.pdf.GetStringWidth(cell) + 4; cw > widths[j] {
				widths[j] = cw
			}
		}
	}

	const minWidth = 12.0
	maxWidth := pdfTableWidth / 3
	total := 0.0
	for j := range widths {
		if widths[j] < minWidth {
			widths[j] = minWidth
		}
		if widths[j] > maxWidth {
			widths[j] = maxWidth
		}
		total += widths[j]
	}

	if total > pdfTableWidth {
		scale := pdfTableWidth / total
		for j := range widths {
			widths[j] *= scale
			if widths[j] < minWidth*0.8 {
				widths[j] = minWidth * 0.8
			}
		}
	} else if total < pdfTableWidth*0.9 {
		scale := pdfTableWidth * 0.95 / total
		if scale > 1.5 {
			scale = 1.5
		}
		for j := range widths {
			widths[j] *= scale
		}
	}

	return widths
}

// drawCell writes wrapped lines into the current cell, truncating the last
// visible line with an ellipsis when the content overflows.
func (w *docWriter) drawCell(lines []string, width float64, maxLines int) {
	for i := 0; i < len(lines) && i < maxLines; i++ {
		line := lines[i]
		if i == maxLines-1 && len(lines) > maxLines {
			for w.pdf.GetStringWidth(line+"...") > width && len(line) > 3 {
				line = line[:len(line)-1]
			}
			line += "..."
		}
		w.pdf.CellFormat(width, pdfTableLine, line, "", 2, "L", false, 0, "")
	}
}

// wrapWords greedily packs words into lines no wider than width, measured
// with the current font.
func (w *docWriter) wrapWords(cell string, width float64) []string {
	words := strings.Fields(cell)
	if len(words) == 0 {
		return []string{""}
	}

	space := w.pdf.GetStringWidth(" ")
	var lines []string
	line := words[0]
	lineWidth := w.pdf.GetStringWidth(words[0])
	for _, word := range words[1:] {
		wordWidth := w.pdf.GetStringWidth(word)
		if lineWidth+space+wordWidth <= width {
			line += " " + word
			lineWidth += space + wordWidth
			continue
		}
		lines = append(lines, line)
		line = word
		lineWidth = wordWidth
	}
	return append(lines, line)
}
