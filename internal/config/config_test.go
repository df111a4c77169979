package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAppliesDefaultsAndResolvesPaths(t *testing.T) {
	path := writeConfig(t, `{
		"databases": {"sqlite": {"dsn": "data/docflow.db"}},
		"render": {"fonts": {"hi": "fonts/Amiko-Regular.ttf"}}
	}`)
	dir := filepath.Dir(path)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultServerAddress, cfg.BasicConfig.ServerAddress)
	assert.Equal(t, "sqlite3", cfg.BasicConfig.Store)
	assert.Equal(t, filepath.Join(dir, DefaultUploadDir), cfg.BasicConfig.UploadDir)
	assert.Equal(t, filepath.Join(dir, "data/docflow.db"), cfg.Databases["sqlite3"].DSN)
	assert.Equal(t, filepath.Join(dir, "fonts/Amiko-Regular.ttf"), cfg.Render.Fonts["hi"])
	assert.Equal(t, DefaultSentences, cfg.Summary.Sentences)
	assert.Equal(t, "google", cfg.Translation.Provider)
	assert.Equal(t, "documents", cfg.Firestore.Collection)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	path := writeConfig(t, `{"basic_config": {"store": "cassandra"}}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store")
}

func TestLoadRequiresBackendSection(t *testing.T) {
	path := writeConfig(t, `{"basic_config": {"store": "mysql"}}`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database config for mysql not found")
}

func TestWithStoreOverride(t *testing.T) {
	path := writeConfig(t, `{
		"databases": {"sqlite3": {"dsn": ":memory:"}},
		"badger": {"path": "data/badger"}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, cfg.WithStore(""))
	assert.Equal(t, "sqlite3", cfg.BasicConfig.Store)

	require.NoError(t, cfg.WithStore("Badger"))
	assert.Equal(t, "badger", cfg.BasicConfig.Store)

	assert.Error(t, cfg.WithStore("firestore"))
}
