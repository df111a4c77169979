// Package pipeline owns the document lifecycle: it stores uploads, runs the
// extraction, classification, summarization, translation and rendering
// adapters, and persists each result as a patch on the document record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"docflow/internal/apperr"
	"docflow/internal/classify"
	"docflow/internal/models"
	"docflow/internal/render"
	"docflow/internal/storage"
	"docflow/internal/summarize"
	"docflow/internal/worker"
)

type Extractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

type Summarizer interface {
	Summarize(text string, count int) (string, error)
}

type Translator interface {
	Translate(ctx context.Context, text, lang string) (string, error)
}

type Renderer interface {
	Render(ctx context.Context, text, outPath string) error
}

// Adapters are the external capabilities the pipeline sequences.
type Adapters struct {
	Extractor  Extractor
	Summarizer Summarizer
	Translator Translator
	Renderer   Renderer
}

type Config struct {
	UploadDir        string
	SummarySentences int
}

// Runner executes adapter calls. *worker.Dispatcher satisfies it.
type Runner interface {
	Submit(ctx context.Context, name string, fn func(context.Context) error) error
}

type Service struct {
	store    storage.Store
	adapters Adapters
	runner   Runner
	files    *fileStore
	locks    *keyedMutex
	cfg      Config
	logger   zerolog.Logger
}

var _ Runner = (*worker.Dispatcher)(nil)

func New(store storage.Store, adapters Adapters, runner Runner, cfg Config, logger zerolog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if adapters.Extractor == nil || adapters.Summarizer == nil || adapters.Translator == nil || adapters.Renderer == nil {
		return nil, errors.New("all adapters are required")
	}
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	if cfg.SummarySentences <= 0 {
		cfg.SummarySentences = 3
	}
	files, err := newFileStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:    store,
		adapters: adapters,
		runner:   runner,
		files:    files,
		locks:    newKeyedMutex(),
		cfg:      cfg,
		logger:   logger.With().Str("component", "pipeline").Logger(),
	}, nil
}

// Create stores the upload, extracts its text and inserts the document.
// Formats without a parser produce empty text. When extraction fails the
// stored file is removed and no record is created.
func (s *Service) Create(ctx context.Context, r io.Reader, filename string) (*models.Document, error) {
	const op = "create document"
	name := cleanName(filename)
	if name == "" {
		return nil, apperr.BadRequest(op, "filename is required")
	}
	path, err := s.files.save(name, r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var text string
	err = s.runner.Submit(ctx, "extract", func(ctx context.Context) error {
		var err error
		text, err = s.adapters.Extractor.Extract(ctx, path)
		return err
	})
	if err != nil {
		os.Remove(path)
		return nil, s.adapterError("extract text", err)
	}

	doc := &models.Document{
		Filename:      filename,
		StoredPath:    path,
		ExtractedText: text,
	}
	if err := s.store.Create(ctx, doc); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info().Str("document_id", doc.ID).Str("file", path).Int("chars", len(text)).Msg("document created")
	return doc, nil
}

// Classify marks the document legal when text carries a legal keyword. Empty
// text is not legal.
func (s *Service) Classify(ctx context.Context, id, text string) (bool, error) {
	var isLegal bool
	err := s.withDocument(ctx, id, func(doc *models.Document) (models.Patch, error) {
		isLegal = classify.IsLegal(text)
		return models.Patch{IsLegal: &isLegal}, nil
	})
	if err != nil {
		return false, err
	}
	return isLegal, nil
}

// Summarize stores an extractive summary of text.
func (s *Service) Summarize(ctx context.Context, id, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.BadRequest("summarize", "empty text received for summarization")
	}
	var summary string
	err := s.withDocument(ctx, id, func(doc *models.Document) (models.Patch, error) {
		err := s.runner.Submit(ctx, "summarize", func(ctx context.Context) error {
			var err error
			summary, err = s.adapters.Summarizer.Summarize(text, s.cfg.SummarySentences)
			return err
		})
		if errors.Is(err, summarize.ErrNoSentences) {
			return models.Patch{}, apperr.BadRequest("summarize", err.Error())
		}
		if err != nil {
			return models.Patch{}, s.adapterError("summarize", err)
		}
		return models.Patch{Summary: &summary}, nil
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}

// Translate stores the translation of text into lang, replacing any
// earlier translation.
func (s *Service) Translate(ctx context.Context, id, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(lang) == "" {
		return "", apperr.BadRequest("translate", "text and lang are required")
	}
	var translated string
	err := s.withDocument(ctx, id, func(doc *models.Document) (models.Patch, error) {
		err := s.runner.Submit(ctx, "translate", func(ctx context.Context) error {
			var err error
			translated, err = s.adapters.Translator.Translate(ctx, text, lang)
			return err
		})
		if err != nil {
			return models.Patch{}, s.adapterError("translate", err)
		}
		return models.Patch{TranslatedText: &translated}, nil
	})
	if err != nil {
		return "", err
	}
	return translated, nil
}

// GenerateDocument renders content to generated_<id>.pdf.
func (s *Service) GenerateDocument(ctx context.Context, id, content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", apperr.BadRequest("generate document", "text is required")
	}
	var path string
	err := s.withDocument(ctx, id, func(doc *models.Document) (models.Patch, error) {
		path = s.files.generatedPath(doc.ID)
		if err := s.render(ctx, doc.ID, content, path); err != nil {
			return models.Patch{}, err
		}
		return models.Patch{GeneratedDocumentPath: &path}, nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// GenerateTranslatedDocument renders the stored translation to
// translated_<id>.pdf.
func (s *Service) GenerateTranslatedDocument(ctx context.Context, id string) (string, error) {
	var path string
	err := s.withDocument(ctx, id, func(doc *models.Document) (models.Patch, error) {
		if doc.TranslatedText == nil || strings.TrimSpace(*doc.TranslatedText) == "" {
			return models.Patch{}, apperr.NotFound("generate translated document", "translated text not found")
		}
		path = s.files.translatedPath(doc.ID)
		if err := s.render(ctx, doc.ID, *doc.TranslatedText, path); err != nil {
			return models.Patch{}, err
		}
		return models.Patch{TranslatedDocumentPath: &path}, nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) Fetch(ctx context.Context, id string) (*models.Document, error) {
	return s.store.Get(ctx, id)
}

// FetchGeneratedFile returns the path of the rendered generated document.
func (s *Service) FetchGeneratedFile(ctx context.Context, id string) (string, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.GeneratedDocumentPath == nil || !exists(*doc.GeneratedDocumentPath) {
		return "", apperr.NotFound("fetch generated file", "file not found")
	}
	return *doc.GeneratedDocumentPath, nil
}

// FetchTranslatedFile returns the path of the rendered translated document.
func (s *Service) FetchTranslatedFile(ctx context.Context, id string) (string, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.TranslatedDocumentPath == nil || !exists(*doc.TranslatedDocumentPath) {
		return "", apperr.NotFound("fetch translated file", "file not found")
	}
	return *doc.TranslatedDocumentPath, nil
}

// withDocument runs fn under the document's lock and persists the patch it
// returns. Nothing is written when fn fails.
func (s *Service) withDocument(ctx context.Context, id string, fn func(doc *models.Document) (models.Patch, error)) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.BadRequest("document", "document_id is required")
	}
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	patch, err := fn(doc)
	if err != nil {
		return err
	}
	if err := s.store.Update(ctx, doc.ID, patch); err != nil {
		return fmt.Errorf("persist document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *Service) render(ctx context.Context, id, text, path string) error {
	err := s.runner.Submit(ctx, "render", func(ctx context.Context) error {
		return s.adapters.Renderer.Render(ctx, text, path)
	})
	if err != nil {
		return s.adapterError("render pdf", err)
	}
	evt := s.logger.Info().Str("document_id", id).Str("file", path)
	if pages, err := render.PageCount(path); err == nil {
		evt = evt.Int("pages", pages)
	}
	evt.Msg("pdf rendered")
	return nil
}

// adapterError classifies a runner or adapter failure. Busy and context
// errors pass through unchanged.
func (s *Service) adapterError(op string, err error) error {
	if errors.Is(err, apperr.ErrBusy) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.logger.Warn().Err(err).Str("op", op).Msg("adapter failed")
	return apperr.Adapter(op, err)
}
