package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
	Badger      BadgerConfig              `json:"badger"`
	Firestore   FirestoreConfig           `json:"firestore"`
	Translation TranslationConfig         `json:"translation"`
	Render      RenderConfig              `json:"render"`
	Summary     SummaryConfig             `json:"summary"`
	Log         LogConfig                 `json:"log"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address"`
	UploadDir     string `json:"upload_dir"`
	Store         string `json:"store"`
	MaxUploadMB   int64  `json:"max_upload_mb"`
	APIKey        string `json:"api_key"`
	MaxWorkers    int    `json:"max_workers"`
	QueueSize     int    `json:"queue_size"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

type BadgerConfig struct {
	Path string `json:"path"`
}

type FirestoreConfig struct {
	ProjectID  string `json:"project_id"`
	Collection string `json:"collection"`
}

// TranslationConfig selects the translation backend. Provider is "google" or
// one of the keys in Providers (openai, gemini, claude).
type TranslationConfig struct {
	Provider  string                    `json:"provider"`
	Providers map[string]ProviderConfig `json:"providers"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// RenderConfig maps language tags (en, hi, mr) to TTF font files.
type RenderConfig struct {
	Fonts    map[string]string `json:"fonts"`
	FontSize float64           `json:"font_size"`
}

type SummaryConfig struct {
	Sentences int `json:"sentences"`
}

type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

const (
	DefaultServerAddress = ":8090"
	DefaultUploadDir     = "uploads"
	DefaultStore         = "sqlite3"
	DefaultMaxUploadMB   = 10
	DefaultMaxWorkers    = 4
	DefaultQueueSize     = 64
	DefaultSentences     = 3
	DefaultFontSize      = 12
)

var knownStores = []string{"sqlite3", "mysql", "postgres", "redis", "badger", "firestore"}

// Load reads configuration from the provided path (defaults to config.json).
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(absPath))
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	b := &c.BasicConfig
	if b.ServerAddress == "" {
		b.ServerAddress = DefaultServerAddress
	}
	if b.UploadDir == "" {
		b.UploadDir = DefaultUploadDir
	}
	if b.Store == "" {
		b.Store = DefaultStore
	}
	b.Store = StoreKind(b.Store)
	if len(c.Databases) > 0 {
		dbs := make(map[string]DatabaseConfig, len(c.Databases))
		for name, db := range c.Databases {
			dbs[StoreKind(name)] = db
		}
		c.Databases = dbs
	}
	if b.MaxUploadMB <= 0 {
		b.MaxUploadMB = DefaultMaxUploadMB
	}
	if b.MaxWorkers <= 0 {
		b.MaxWorkers = DefaultMaxWorkers
	}
	if b.QueueSize <= 0 {
		b.QueueSize = DefaultQueueSize
	}
	if c.Summary.Sentences <= 0 {
		c.Summary.Sentences = DefaultSentences
	}
	if c.Render.FontSize <= 0 {
		c.Render.FontSize = DefaultFontSize
	}
	if c.Firestore.Collection == "" {
		c.Firestore.Collection = "documents"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "docflow"
	}
	if c.Translation.Provider == "" {
		c.Translation.Provider = "google"
	}
}

// Validate checks the store selection against the configured backends.
func (c *Config) Validate() error {
	store := StoreKind(c.BasicConfig.Store)
	known := false
	for _, k := range knownStores {
		if store == k {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unsupported store: %s", c.BasicConfig.Store)
	}
	switch store {
	case "sqlite3", "mysql", "postgres":
		if _, ok := c.Databases[store]; !ok {
			return fmt.Errorf("database config for %s not found", store)
		}
	case "badger":
		if c.Badger.Path == "" {
			return fmt.Errorf("badger.path must be configured")
		}
	case "firestore":
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore.project_id must be configured")
		}
	}
	return nil
}

// StoreKind normalizes a store name; "sqlite" is an alias of "sqlite3".
func StoreKind(name string) string {
	kind := strings.ToLower(strings.TrimSpace(name))
	if kind == "sqlite" {
		return "sqlite3"
	}
	return kind
}

// resolvePaths makes file system locations relative to the config file.
func (c *Config) resolvePaths(baseDir string) {
	c.BasicConfig.UploadDir = resolve(baseDir, c.BasicConfig.UploadDir)
	c.Badger.Path = resolve(baseDir, c.Badger.Path)
	for tag, font := range c.Render.Fonts {
		c.Render.Fonts[tag] = resolve(baseDir, font)
	}
	for name, db := range c.Databases {
		if name == "sqlite3" && db.DSN != "" && !strings.HasPrefix(db.DSN, "file:") && db.DSN != ":memory:" {
			db.DSN = resolve(baseDir, db.DSN)
			c.Databases[name] = db
		}
	}
}

func resolve(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// WithStore overrides the store selection. Empty values leave the configured
// store in place.
func (c *Config) WithStore(store string) error {
	if strings.TrimSpace(store) == "" {
		return nil
	}
	c.BasicConfig.Store = StoreKind(store)
	return c.Validate()
}
