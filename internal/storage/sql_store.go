package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"docflow/internal/apperr"
	"docflow/internal/config"
	"docflow/internal/models"
)

// SQLStore keeps documents in a relational table. Ids are the decimal form
// of the auto-increment primary key.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// NewSQLStore wraps an open database. driver selects the placeholder style.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: config.StoreKind(driver)}
}

const selectDocument = `SELECT id, filename, file_path, extracted_text, is_legal, summary,
	translated_text, generated_document, translated_document, created_at, updated_at
	FROM documents WHERE id = ?`

func (s *SQLStore) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt, doc.UpdatedAt = now, now

	query := `INSERT INTO documents (filename, file_path, extracted_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	args := []any{doc.Filename, doc.StoredPath, doc.ExtractedText, now, now}

	var id int64
	if s.driver == "postgres" {
		if err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
	} else {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("insert document id: %w", err)
		}
	}
	doc.ID = strconv.FormatInt(id, 10)
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.Document, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var (
		doc                                   models.Document
		rowID                                 int64
		isLegal                               sql.NullBool
		summary, translated, generated, trDoc sql.NullString
	)
	err = s.db.QueryRowContext(ctx, s.rebind(selectDocument), key).Scan(
		&rowID, &doc.Filename, &doc.StoredPath, &doc.ExtractedText, &isLegal, &summary,
		&translated, &generated, &trDoc, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("get document", "document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	doc.ID = strconv.FormatInt(rowID, 10)
	if isLegal.Valid {
		doc.IsLegal = models.Bool(isLegal.Bool)
	}
	doc.Summary = nullString(summary)
	doc.TranslatedText = nullString(translated)
	doc.GeneratedDocumentPath = nullString(generated)
	doc.TranslatedDocumentPath = nullString(trDoc)
	return &doc, nil
}

// Update writes only the columns set in the patch.
func (s *SQLStore) Update(ctx context.Context, id string, patch models.Patch) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}
	if patch.IsEmpty() {
		_, err := s.Get(ctx, id)
		return err
	}
	cols := patch.Columns()

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, col := range cols {
		sets = append(sets, col.Name+" = ?")
		args = append(args, col.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), key)

	query := "UPDATE documents SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if affected == 0 {
		return apperr.NotFound("update document", "document not found")
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind turns ? placeholders into $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseID(id string) (int64, error) {
	key, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || key <= 0 {
		return 0, apperr.NotFound("parse document id", "document not found")
	}
	return key, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return models.String(v.String)
}
