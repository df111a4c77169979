package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
	"github.com/ledongthuc/pdf"
)

// pdfParser emits one document holding every text row of every page, top to
// bottom, one row per line. Pages are separated by a newline.
type pdfParser struct{}

func (pdfParser) Parse(ctx context.Context, reader io.Reader, _ ...parser.Option) (docs []*schema.Document, err error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	// the reader panics on malformed xref tables and content streams
	defer func() {
		if r := recover(); r != nil {
			docs, err = nil, fmt.Errorf("parse pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, pageText(page.Content()))
	}
	return []*schema.Document{{Content: strings.Join(pages, "\n")}}, nil
}

// rowTolerance is how far apart, in points, two glyph baselines may be and
// still share a line.
const rowTolerance = 2.0

// pageText groups the glyphs of a page into rows by baseline, top to bottom,
// and orders each row left to right. A gap wider than a quarter of the font
// size between two glyphs reads as a space.
func pageText(content pdf.Content) string {
	glyphs := make([]pdf.Text, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "\n" || t.S == "\r" || t.S == "" {
			continue
		}
		glyphs = append(glyphs, t)
	}
	sort.SliceStable(glyphs, func(i, j int) bool { return glyphs[i].Y > glyphs[j].Y })

	var rows [][]pdf.Text
	for _, g := range glyphs {
		if n := len(rows); n > 0 && math.Abs(rows[n-1][0].Y-g.Y) <= rowTolerance {
			rows[n-1] = append(rows[n-1], g)
			continue
		}
		rows = append(rows, []pdf.Text{g})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
		var line strings.Builder
		for i, g := range row {
			if i > 0 {
				prev := row[i-1]
				gap := g.X - (prev.X + prev.W)
				if prev.W > 0 && gap > math.Abs(g.FontSize)/4 && prev.S != " " && g.S != " " {
					line.WriteByte(' ')
				}
			}
			line.WriteString(g.S)
		}
		lines = append(lines, strings.TrimRight(line.String(), " "))
	}
	return strings.Join(lines, "\n")
}
