package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	result RawResult
	err    error
	calls  int
}

func (e *stubEngine) Recognize(ctx context.Context, imagePath string) (RawResult, error) {
	e.calls++
	return e.result, e.err
}

func TestEngineProvider_InitOnce(t *testing.T) {
	built := 0
	engine := &stubEngine{result: RawResult{Text: "hello", Confidence: 92}}
	provider := NewEngineProvider(func(ctx context.Context) (Engine, error) {
		built++
		return engine, nil
	})

	first := provider.Recognize(context.Background(), "a.png")
	second := provider.Recognize(context.Background(), "b.png")

	assert.Equal(t, 1, built, "factory should run once")
	assert.Equal(t, 2, engine.calls)
	assert.Equal(t, "hello", first.Text)
	assert.Equal(t, "hello", second.Text)
}

func TestEngineProvider_FailedInitRetried(t *testing.T) {
	attempts := 0
	provider := NewEngineProvider(func(ctx context.Context) (Engine, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("model download failed")
		}
		return &stubEngine{result: RawResult{Text: "ok"}}, nil
	})

	degraded := provider.Recognize(context.Background(), "a.png")
	require.NotEmpty(t, degraded.Err)
	assert.Empty(t, degraded.Text)
	assert.Zero(t, degraded.Confidence)

	recovered := provider.Recognize(context.Background(), "a.png")
	assert.Empty(t, recovered.Err)
	assert.Equal(t, "ok", recovered.Text)
	assert.Equal(t, 2, attempts)
}

func TestEngineProvider_EngineErrorDegrades(t *testing.T) {
	provider := NewEngineProvider(func(ctx context.Context) (Engine, error) {
		return &stubEngine{err: errors.New("image unreadable")}, nil
	})

	result := provider.Recognize(context.Background(), "a.png")

	assert.Equal(t, "image unreadable", result.Err)
	assert.Empty(t, result.Text)
}
