package translate

import (
	"context"
	"errors"
	"fmt"

	gtranslate "cloud.google.com/go/translate"
	"google.golang.org/api/option"
)

// Google calls the Cloud Translation v2 API.
type Google struct {
	client *gtranslate.Client
}

// NewGoogle uses apiKey when set and application default credentials
// otherwise.
func NewGoogle(ctx context.Context, apiKey string) (*Google, error) {
	var opts []option.ClientOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client, err := gtranslate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create translate client: %w", err)
	}
	return &Google{client: client}, nil
}

func (g *Google) Translate(ctx context.Context, text, lang string) (string, error) {
	tag, err := parseTag(lang)
	if err != nil {
		return "", err
	}
	resp, err := g.client.Translate(ctx, []string{text}, tag, &gtranslate.Options{Format: gtranslate.Text})
	if err != nil {
		return "", fmt.Errorf("google translate: %w", err)
	}
	if len(resp) == 0 {
		return "", errors.New("google translate: empty response")
	}
	return resp[0].Text, nil
}

func (g *Google) Close() error {
	return g.client.Close()
}
