package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/apperr"
	"docflow/internal/config"
	"docflow/internal/models"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	cfg := &config.Config{
		BasicConfig: config.BasicConfig{Store: "sqlite3"},
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: filepath.Join(t.TempDir(), "docflow.db")},
		},
	}
	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func exerciseStore(t *testing.T, store Store) {
	ctx := context.Background()

	doc := &models.Document{Filename: "lease.pdf", StoredPath: "uploads/lease.pdf", ExtractedText: "WHEREAS the parties"}
	require.NoError(t, store.Create(ctx, doc))
	require.NotEmpty(t, doc.ID)

	got, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "lease.pdf", got.Filename)
	assert.Equal(t, "uploads/lease.pdf", got.StoredPath)
	assert.Equal(t, "WHEREAS the parties", got.ExtractedText)
	assert.Nil(t, got.IsLegal)
	assert.Nil(t, got.Summary)

	require.NoError(t, store.Update(ctx, doc.ID, models.Patch{IsLegal: models.Bool(true)}))
	require.NoError(t, store.Update(ctx, doc.ID, models.Patch{Summary: models.String("The parties agree.")}))
	require.NoError(t, store.Update(ctx, doc.ID, models.Patch{}))

	got, err = store.Get(ctx, doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.IsLegal)
	assert.True(t, *got.IsLegal)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "The parties agree.", *got.Summary)
	assert.Nil(t, got.TranslatedText)

	long := &models.Document{Filename: strings.Repeat("n", 300) + ".pdf", StoredPath: "uploads/long.pdf"}
	require.NoError(t, store.Create(ctx, long))
	got, err = store.Get(ctx, long.ID)
	require.NoError(t, err)
	assert.Equal(t, long.Filename, got.Filename)

	_, err = store.Get(ctx, "999999")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	err = store.Update(ctx, "999999", models.Patch{Summary: models.String("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	err = store.Update(ctx, "999999", models.Patch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, newSQLiteStore(t))
}

func TestSQLiteStoreIDsAreNotReused(t *testing.T) {
	store := newSQLiteStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc := &models.Document{Filename: "f.txt", StoredPath: "p", ExtractedText: ""}
			if assert.NoError(t, store.Create(ctx, doc)) {
				mu.Lock()
				seen[doc.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 10)
}

func TestMySQLStore(t *testing.T) {
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	exerciseStore(t, openStore(t, "mysql", dsn))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	exerciseStore(t, openStore(t, "postgres", dsn))
}

func openStore(t *testing.T, kind, dsn string) Store {
	t.Helper()
	cfg := &config.Config{
		BasicConfig: config.BasicConfig{Store: kind},
		Databases:   map[string]config.DatabaseConfig{kind: {DSN: dsn}},
	}
	store, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRebindPostgres(t *testing.T) {
	s := &SQLStore{driver: "postgres"}
	assert.Equal(t, "UPDATE documents SET a = $1, b = $2 WHERE id = $3",
		s.rebind("UPDATE documents SET a = ?, b = ? WHERE id = ?"))

	s = &SQLStore{driver: "sqlite3"}
	assert.Equal(t, "SELECT ?", s.rebind("SELECT ?"))
}

func TestMySQLDSNAddsRequiredParams(t *testing.T) {
	dsn := mysqlDSN(config.DatabaseConfig{Username: "u", Password: "p", Host: "db", Port: 3306, DBName: "docs", Params: "charset=utf8mb4"})
	assert.Equal(t, "u:p@tcp(db:3306)/docs?charset=utf8mb4&parseTime=true&clientFoundRows=true", dsn)

	dsn = mysqlDSN(config.DatabaseConfig{DSN: "u:p@tcp(db)/docs?parseTime=true"})
	assert.Equal(t, "u:p@tcp(db)/docs?parseTime=true&clientFoundRows=true", dsn)
}

func TestNewStoreRejectsUnknownKind(t *testing.T) {
	_, err := NewStore(context.Background(), &config.Config{BasicConfig: config.BasicConfig{Store: "cassandra"}})
	assert.Error(t, err)
}
