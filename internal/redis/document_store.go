package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"docflow/internal/apperr"
	"docflow/internal/models"
)

// DocumentStore keeps each document in a hash at <prefix>:document:<uuid>.
type DocumentStore struct {
	client *Client
	prefix string
}

func NewDocumentStore(client *Client, prefix string) *DocumentStore {
	if prefix == "" {
		prefix = "docflow"
	}
	return &DocumentStore{client: client, prefix: prefix}
}

func (s *DocumentStore) key(id string) string {
	return s.prefix + ":document:" + id
}

func (s *DocumentStore) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	doc.ID = uuid.NewString()
	doc.CreatedAt, doc.UpdatedAt = now, now

	values := map[string]any{
		"filename":       doc.Filename,
		"file_path":      doc.StoredPath,
		"extracted_text": doc.ExtractedText,
		"created_at":     now.Format(time.RFC3339Nano),
		"updated_at":     now.Format(time.RFC3339Nano),
	}
	if err := s.client.Raw().HSet(ctx, s.key(doc.ID), values).Err(); err != nil {
		return fmt.Errorf("redis create document: %w", err)
	}
	return nil
}

func (s *DocumentStore) Get(ctx context.Context, id string) (*models.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperr.NotFound("get document", "document not found")
	}
	fields, err := s.client.Raw().HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis get document: %w", err)
	}
	if len(fields) == 0 {
		return nil, apperr.NotFound("get document", "document not found")
	}
	return decodeDocument(id, fields)
}

// Update writes the patch fields under WATCH so a concurrently missing key
// is reported instead of resurrected.
func (s *DocumentStore) Update(ctx context.Context, id string, patch models.Patch) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.NotFound("update document", "document not found")
	}
	key := s.key(id)
	values := map[string]any{"updated_at": time.Now().UTC().Format(time.RFC3339Nano)}
	for _, col := range patch.Columns() {
		if b, ok := col.Value.(bool); ok {
			values[col.Name] = strconv.FormatBool(b)
			continue
		}
		values[col.Name] = col.Value
	}

	err := s.client.Raw().Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("update document", "document not found")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, values)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("redis update document: %w", err)
	}
	return nil
}

func (s *DocumentStore) Close() error {
	return s.client.Close()
}

func decodeDocument(id string, fields map[string]string) (*models.Document, error) {
	doc := &models.Document{
		ID:            id,
		Filename:      fields["filename"],
		StoredPath:    fields["file_path"],
		ExtractedText: fields["extracted_text"],
	}
	if v, ok := fields["is_legal"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("decode is_legal: %w", err)
		}
		doc.IsLegal = &b
	}
	optional := map[string]**string{
		"summary":             &doc.Summary,
		"translated_text":     &doc.TranslatedText,
		"generated_document":  &doc.GeneratedDocumentPath,
		"translated_document": &doc.TranslatedDocumentPath,
	}
	for name, dst := range optional {
		if v, ok := fields[name]; ok {
			*dst = models.String(v)
		}
	}
	var err error
	if doc.CreatedAt, err = parseTime(fields["created_at"]); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(fields["updated_at"]); err != nil {
		return nil, err
	}
	return doc, nil
}

func parseTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode timestamp: %w", err)
	}
	return t, nil
}
