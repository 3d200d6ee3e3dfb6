package limited

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

type countingLLM struct {
	calls  atomic.Int32
	prompt driven.PromptStore
}

func (c *countingLLM) Generate(context.Context, string, driven.GenerateOptions) (string, error) {
	c.calls.Add(1)
	return "gen", nil
}

func (c *countingLLM) Chat(context.Context, []driven.ChatMessage, driven.ChatOptions) (string, error) {
	c.calls.Add(1)
	return "chat", nil
}

func (c *countingLLM) ChatWithTools(context.Context, []driven.ChatMessage, []driven.ToolSpec, driven.ChatOptions) (*driven.ChatResponse, error) {
	c.calls.Add(1)
	return &driven.ChatResponse{Text: "tools"}, nil
}

func (c *countingLLM) Summarise(context.Context, string, int) (string, error) {
	c.calls.Add(1)
	return "sum", nil
}

func (c *countingLLM) ModelName() string                       { return "counting" }
func (c *countingLLM) Ping(context.Context) error              { return nil }
func (c *countingLLM) Close() error                            { return nil }
func (c *countingLLM) SetPromptStore(store driven.PromptStore) { c.prompt = store }

type nopPrompts struct{}

func (nopPrompts) Load(string) (string, error) { return "", nil }
func (nopPrompts) Reload()                     {}

func TestWrap_ZeroRateReturnsInner(t *testing.T) {
	inner := &countingLLM{}
	assert.Same(t, inner, Wrap(inner, 0, 1))
	assert.Nil(t, Wrap(nil, 5, 1))
}

func TestLLMService_Delegates(t *testing.T) {
	inner := &countingLLM{}
	svc := Wrap(inner, 1000, 10)
	ctx := context.Background()

	g, err := svc.Generate(ctx, "p", driven.GenerateOptions{})
	require.NoError(t, err)
	c, err := svc.Chat(ctx, nil, driven.ChatOptions{})
	require.NoError(t, err)
	r, err := svc.ChatWithTools(ctx, nil, nil, driven.ChatOptions{})
	require.NoError(t, err)
	s, err := svc.Summarise(ctx, "x", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"gen", "chat", "tools", "sum"}, []string{g, c, r.Text, s})
	assert.Equal(t, int32(4), inner.calls.Load())
	assert.Equal(t, "counting", svc.ModelName())

	svc.(driven.PromptStoreAware).SetPromptStore(nopPrompts{})
	assert.NotNil(t, inner.prompt)
}

func TestLLMService_WaitHonoursContext(t *testing.T) {
	inner := &countingLLM{}
	svc := Wrap(inner, 0.001, 1)

	_, err := svc.Chat(context.Background(), nil, driven.ChatOptions{})
	require.NoError(t, err, "first call uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Chat(ctx, nil, driven.ChatOptions{})

	assert.Error(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())
}
