package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/config"
)

type fakeModel struct {
	got   []*schema.Message
	reply string
	err   error
}

func (f *fakeModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func TestLLMTranslateBuildsPrompt(t *testing.T) {
	fake := &fakeModel{reply: "  नमस्ते  "}
	l := &LLM{chatModel: fake}

	out, err := l.Translate(context.Background(), "Hello", "hi")
	require.NoError(t, err)
	assert.Equal(t, "नमस्ते", out)

	require.Len(t, fake.got, 2)
	assert.Equal(t, schema.System, fake.got[0].Role)
	assert.Contains(t, fake.got[0].Content, "Hindi")
	assert.Equal(t, "Hello", fake.got[1].Content)
}

func TestLLMTranslateErrors(t *testing.T) {
	l := &LLM{chatModel: &fakeModel{err: errors.New("quota exceeded")}}
	_, err := l.Translate(context.Background(), "Hello", "fr")
	assert.ErrorContains(t, err, "quota exceeded")

	l = &LLM{chatModel: &fakeModel{reply: "   "}}
	_, err = l.Translate(context.Background(), "Hello", "fr")
	assert.Error(t, err)

	_, err = l.Translate(context.Background(), "Hello", "not a language!")
	assert.ErrorContains(t, err, "invalid target language")
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.TranslationConfig{Provider: "babelfish"})
	assert.ErrorContains(t, err, "unknown translation provider")

	_, err = New(context.Background(), config.TranslationConfig{Provider: "openai"})
	assert.ErrorContains(t, err, "model for provider openai")
}
