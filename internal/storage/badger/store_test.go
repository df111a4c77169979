package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/apperr"
	"docflow/internal/models"
)

func TestStoreLifecycle(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	doc := &models.Document{Filename: "a.docx", StoredPath: "uploads/a.docx", ExtractedText: "hello"}
	require.NoError(t, store.Create(ctx, doc))
	require.NotEmpty(t, doc.ID)

	require.NoError(t, store.Update(ctx, doc.ID, models.Patch{TranslatedText: models.String("hola")}))
	require.NoError(t, store.Update(ctx, doc.ID, models.Patch{IsLegal: models.Bool(false)}))

	got, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "hello", got.ExtractedText)
	require.NotNil(t, got.TranslatedText)
	assert.Equal(t, "hola", *got.TranslatedText)
	require.NotNil(t, got.IsLegal)
	assert.False(t, *got.IsLegal)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestStoreMissingDocument(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = store.Update(context.Background(), "missing", models.Patch{Summary: models.String("s")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStoreEmptyPatchLeavesRecord(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	doc := &models.Document{Filename: "a.pdf", StoredPath: "uploads/a.pdf"}
	require.NoError(t, store.Create(ctx, doc))
	before, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, doc.ID, models.Patch{}))
	after, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.Equal(before.UpdatedAt))

	err = store.Update(ctx, "missing", models.Patch{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
