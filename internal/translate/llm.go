package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/text/language/display"
	"google.golang.org/genai"

	"docflow/internal/config"
)

type generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// LLM translates with a chat model.
type LLM struct {
	chatModel generator
}

// NewLLM builds a chat model for provider (openai, gemini or claude).
func NewLLM(ctx context.Context, provider string, provCfg config.ProviderConfig) (*LLM, error) {
	if provCfg.Model == "" {
		return nil, fmt.Errorf("model for provider %s must be configured", provider)
	}
	var (
		chatModel model.ToolCallingChatModel
		err       error
	)
	switch provider {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: provCfg.BaseURL,
			Model:   provCfg.Model,
			APIKey:  provCfg.APIKey,
		})
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: provCfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  provCfg.Model,
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    provCfg.APIKey,
			Model:     provCfg.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: 4096,
		})
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provider, err)
	}
	return &LLM{chatModel: chatModel}, nil
}

func (l *LLM) Translate(ctx context.Context, text, lang string) (string, error) {
	tag, err := parseTag(lang)
	if err != nil {
		return "", err
	}
	name := display.English.Tags().Name(tag)
	if name == "" {
		name = tag.String()
	}

	systemPrompt := "You are a professional translator. " +
		"Detect the language of the user's text and translate it into " + name + ". " +
		"Output only the translation; do not add notes, quotes or explanations."
	resp, err := l.chatModel.Generate(ctx, []*schema.Message{
		{
			Role:    schema.System,
			Content: systemPrompt,
		},
		{
			Role:    schema.User,
			Content: text,
		},
	})
	if err != nil {
		return "", fmt.Errorf("translate failed: %w", err)
	}
	out := strings.TrimSpace(resp.Content)
	if out == "" {
		return "", errors.New("translate failed: empty response")
	}
	return out, nil
}
