// Package firestore stores documents in a Cloud Firestore collection.
package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"docflow/internal/apperr"
	"docflow/internal/models"
)

// Store keeps one Firestore document per upload. Ids are Firestore
// auto-generated document ids.
type Store struct {
	client     *firestore.Client
	collection string
}

// Open creates the Firestore client. FIRESTORE_EMULATOR_HOST is honoured by
// the client library.
func Open(ctx context.Context, projectID, collection string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	if collection == "" {
		collection = "documents"
	}
	return &Store{client: client, collection: collection}, nil
}

func (s *Store) doc(id string) *firestore.DocumentRef {
	if id == "" || strings.Contains(id, "/") {
		return nil
	}
	return s.client.Collection(s.collection).Doc(id)
}

func (s *Store) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now
	ref := s.client.Collection(s.collection).NewDoc()
	if _, err := ref.Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore create document: %w", err)
	}
	doc.ID = ref.ID
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Document, error) {
	ref := s.doc(id)
	if ref == nil {
		return nil, apperr.NotFound("get document", "document not found")
	}
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, apperr.NotFound("get document", "document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get document: %w", err)
	}
	var doc models.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.ID = ref.ID
	return &doc, nil
}

// Update issues a field-level update; Firestore rejects it when the
// document does not exist.
func (s *Store) Update(ctx context.Context, id string, patch models.Patch) error {
	ref := s.doc(id)
	if ref == nil {
		return apperr.NotFound("update document", "document not found")
	}
	updates := []firestore.Update{{Path: "updated_at", Value: time.Now().UTC()}}
	for _, col := range patch.Columns() {
		updates = append(updates, firestore.Update{Path: col.Name, Value: col.Value})
	}
	_, err := ref.Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return apperr.NotFound("update document", "document not found")
	}
	if err != nil {
		return fmt.Errorf("firestore update document: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
