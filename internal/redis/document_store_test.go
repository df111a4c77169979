package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/apperr"
	"docflow/internal/models"
)

func newTestStore(t *testing.T) *DocumentStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client, err := Wrap(redis.NewClient(&redis.Options{Addr: addr}))
	require.NoError(t, err)
	prefix := "docflow-test-" + uuid.NewString()[:8]
	store := NewDocumentStore(client, prefix)
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Raw().Keys(ctx, prefix+":*").Result()
		_ = client.Del(ctx, keys...)
		_ = client.Close()
	})
	return store
}

func TestDocumentStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc := &models.Document{Filename: "contract.pdf", StoredPath: "uploads/contract.pdf", ExtractedText: "WHEREAS"}
	require.NoError(t, store.Create(ctx, doc))
	require.NotEmpty(t, doc.ID)

	require.NoError(t, store.Update(ctx, doc.ID, models.Patch{IsLegal: models.Bool(true)}))
	require.NoError(t, store.Update(ctx, doc.ID, models.Patch{Summary: models.String("short")}))

	got, err := store.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", got.Filename)
	assert.Equal(t, "WHEREAS", got.ExtractedText)
	require.NotNil(t, got.IsLegal)
	assert.True(t, *got.IsLegal)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "short", *got.Summary)
	assert.Nil(t, got.TranslatedText)
}

func TestDocumentStoreMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = store.Update(ctx, uuid.NewString(), models.Patch{Summary: models.String("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = store.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
