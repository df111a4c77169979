// Package badger stores documents in an embedded badgerhold database.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"docflow/internal/apperr"
	"docflow/internal/models"
)

// Store keeps documents keyed by a random uuid.
type Store struct {
	store *badgerhold.Store
}

// Open opens (or creates) the database under dir.
func Open(dir string) (*Store, error) {
	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Store{store: store}, nil
}

func (s *Store) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	doc.ID = uuid.NewString()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if err := s.store.Insert(doc.ID, doc); err != nil {
		return fmt.Errorf("badger insert document: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.store.Get(id, &doc)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, apperr.NotFound("get document", "document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("badger get document: %w", err)
	}
	doc.ID = id
	return &doc, nil
}

// Update rewrites the whole record. Callers serialize updates per id.
func (s *Store) Update(ctx context.Context, id string, patch models.Patch) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		return nil
	}
	patch.Apply(doc, time.Now().UTC())
	err = s.store.Update(id, doc)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return apperr.NotFound("update document", "document not found")
	}
	if err != nil {
		return fmt.Errorf("badger update document: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.store.Close()
}
