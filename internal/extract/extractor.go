// Package extract turns uploaded files into plain text. Files are routed by
// extension through an eino ExtParser; unknown formats yield empty text.
package extract

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino-ext/components/document/loader/file"
	"github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/components/document/parser"
	"github.com/cloudwego/eino/schema"
)

// Extractor loads a stored file and returns its text.
type Extractor struct {
	loader *file.FileLoader
}

func New(ctx context.Context) (*Extractor, error) {
	parserExt, err := parser.NewExtParser(ctx, &parser.ExtParserConfig{
		Parsers: map[string]parser.Parser{
			".pdf":  pdfParser{},
			".docx": docxParser{},
		},
		FallbackParser: emptyParser{},
	})
	if err != nil {
		return nil, fmt.Errorf("create ext parser: %w", err)
	}
	loader, err := file.NewFileLoader(ctx, &file.FileLoaderConfig{
		UseNameAsID: true,
		Parser:      parserExt,
	})
	if err != nil {
		return nil, fmt.Errorf("create file loader: %w", err)
	}
	return &Extractor{loader: loader}, nil
}

// Extract returns the text of the file at path. Extensions are matched
// case-sensitively, so callers store uploads with a lower-case extension;
// anything else goes to the fallback parser and yields empty text.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	docs, err := e.loader.Load(ctx, document.Source{URI: path})
	if err != nil {
		return "", fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, doc.Content)
	}
	return strings.Join(parts, "\n"), nil
}

// emptyParser handles formats without a parser.
type emptyParser struct{}

func (emptyParser) Parse(ctx context.Context, _ io.Reader, _ ...parser.Option) ([]*schema.Document, error) {
	return []*schema.Document{{Content: ""}}, nil
}
