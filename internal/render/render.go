// Package render lays text out on Letter pages and writes a PDF.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Layout in PDF user space (origin bottom-left), points.
const (
	pageHeight   = 792.0
	marginLeft   = 50.0
	firstLine    = 750.0
	bottomMargin = 50.0
	linePitch    = 20.0
	wrapColumns  = 80
)

const coreFont = "Helvetica"

// Renderer writes paginated PDFs. Fonts maps language tags (en, hi, mr) to
// TTF files.
type Renderer struct {
	fonts    map[string]string
	fontSize float64
}

func New(fonts map[string]string, fontSize float64) *Renderer {
	if fontSize <= 0 {
		fontSize = 12
	}
	return &Renderer{fonts: fonts, fontSize: fontSize}
}

// LanguageTag picks the font tag for text by script: Devanagari is Hindi
// unless it uses the Marathi letter ळ.
func LanguageTag(text string) string {
	if strings.ContainsRune(text, 'ळ') {
		return "mr"
	}
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return "hi"
		}
	}
	return "en"
}

// Wrap splits text into lines of at most width runes, breaking on
// whitespace. Longer words are kept whole on their own line.
func Wrap(text string, width int) []string {
	var (
		lines []string
		line  strings.Builder
		n     int
	)
	for _, word := range strings.Fields(text) {
		wl := len([]rune(word))
		if n > 0 && n+1+wl > width {
			lines = append(lines, line.String())
			line.Reset()
			n = 0
		}
		if n > 0 {
			line.WriteByte(' ')
			n++
		}
		line.WriteString(word)
		n += wl
	}
	if n > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Render writes text to outPath. The file is built beside outPath and
// renamed into place, so readers never see a partial PDF.
func (r *Renderer) Render(ctx context.Context, text, outPath string) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)

	translate := r.setFont(pdf, LanguageTag(text))

	pdf.AddPage()
	y := firstLine
	for _, line := range Wrap(text, wrapColumns) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if y < bottomMargin {
			pdf.AddPage()
			y = firstLine
		}
		pdf.Text(marginLeft, pageHeight-y, translate(line))
		y -= linePitch
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".render-*.pdf")
	if err != nil {
		return fmt.Errorf("create temp pdf: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := pdf.Output(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close pdf: %w", err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		return fmt.Errorf("move pdf into place: %w", err)
	}
	return nil
}

// setFont loads the face for tag, falling back to the en face and then to
// the Helvetica core font. It returns the text transform the face needs.
func (r *Renderer) setFont(pdf *fpdf.Fpdf, tag string) func(string) string {
	for _, candidate := range []string{tag, "en"} {
		path := r.fonts[candidate]
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		family := "docflow-" + candidate
		pdf.AddUTF8FontFromBytes(family, "", data)
		if pdf.Err() {
			pdf.ClearError()
			continue
		}
		pdf.SetFont(family, "", r.fontSize)
		return func(s string) string { return s }
	}
	pdf.SetFont(coreFont, "", r.fontSize)
	return pdf.UnicodeTranslatorFromDescriptor("")
}

// PageCount reports how many pages the PDF at path has.
func PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pdf pages: %w", err)
	}
	return n, nil
}
