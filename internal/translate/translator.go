// Package translate renders text into a target language through either the
// Google Cloud Translation API or a chat model.
package translate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"docflow/internal/config"
)

// Translator translates text into the language named by a BCP 47 code.
// The source language is detected by the backend.
type Translator interface {
	Translate(ctx context.Context, text, lang string) (string, error)
}

// New builds the translator selected by cfg.Provider.
func New(ctx context.Context, cfg config.TranslationConfig) (Translator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	provCfg := cfg.Providers[provider]
	switch provider {
	case "", "google":
		return NewGoogle(ctx, provCfg.APIKey)
	case "openai", "gemini", "claude":
		return NewLLM(ctx, provider, provCfg)
	default:
		return nil, fmt.Errorf("unknown translation provider: %s", cfg.Provider)
	}
}

// parseTag validates a target language code.
func parseTag(lang string) (language.Tag, error) {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return language.Und, fmt.Errorf("invalid target language %q: %w", lang, err)
	}
	return tag, nil
}
