// Package storage persists documents. Every backend satisfies Store so the
// pipeline never knows which engine sits behind it.
package storage

import (
	"context"

	"docflow/internal/models"
)

// Store is the document record store.
//
// Create assigns doc.ID and the timestamps. Get and Update return an error
// matching apperr.ErrNotFound for unknown ids. Update applies only the set
// fields of the patch.
type Store interface {
	Create(ctx context.Context, doc *models.Document) error
	Get(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, id string, patch models.Patch) error
	Close() error
}

var _ Store = (*SQLStore)(nil)
