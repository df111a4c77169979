package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

// docxParser reads word/document.xml and emits body paragraphs joined by
// newlines. Tables, headers and footnotes are not included.
type docxParser struct{}

func (docxParser) Parse(ctx context.Context, reader io.Reader, _ ...parser.Option) ([]*schema.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open docx: %w", err)
	}
	var body *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			body = f
			break
		}
	}
	if body == nil {
		return nil, errors.New("open docx: word/document.xml missing")
	}
	rc, err := body.Open()
	if err != nil {
		return nil, fmt.Errorf("open docx body: %w", err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return nil, err
	}
	return []*schema.Document{{Content: strings.Join(paragraphs, "\n")}}, nil
}

// docxParagraphs walks the WordprocessingML token stream. Body paragraphs
// are collected; paragraphs inside tables are skipped.
func docxParagraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		paragraphs []string
		current    strings.Builder
		depth      int // w:p nesting; text boxes embed paragraphs in runs
		tables     int
		inBody     bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse docx xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "tbl":
				tables++
			case "p":
				if inBody && tables == 0 {
					depth++
				}
			case "t":
				inText = depth > 0
			case "tab":
				if depth > 0 {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if depth > 0 {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "body":
				inBody = false
			case "tbl":
				tables--
			case "p":
				if depth == 0 {
					continue
				}
				depth--
				if depth == 0 {
					paragraphs = append(paragraphs, current.String())
					current.Reset()
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}
