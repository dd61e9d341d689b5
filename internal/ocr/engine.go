package ocr

import (
	"context"
	"sync"
)

// Engine recognizes text in an image file. Implementations may be slow on
// first use (model loading); callers bound invocations with ctx.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (RawResult, error)
}

// EngineProvider lazily initializes a process-wide engine instance. A failed
// initialization is retried on the next acquisition instead of poisoning the
// provider for the rest of the process.
type EngineProvider struct {
	factory func(ctx context.Context) (Engine, error)

	mu     sync.Mutex
	engine Engine
}

// NewEngineProvider creates a provider around an engine factory.
func NewEngineProvider(factory func(ctx context.Context) (Engine, error)) *EngineProvider {
	return &EngineProvider{factory: factory}
}

// Acquire returns the ready engine, initializing it on first use. Concurrent
// callers serialize on the init lock; once initialized the engine is treated
// as read-only and shared.
func (p *EngineProvider) Acquire(ctx context.Context) (Engine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine != nil {
		return p.engine, nil
	}

	engine, err := p.factory(ctx)
	if err != nil {
		return nil, err
	}
	p.engine = engine
	return engine, nil
}

// Recognize runs OCR over an image, degrading engine failures into a
// RawResult carrying an error string with empty text and zero confidence.
// The upload workflow proceeds either way; manual entry stays possible.
func (p *EngineProvider) Recognize(ctx context.Context, imagePath string) RawResult {
	engine, err := p.Acquire(ctx)
	if err != nil {
		return RawResult{Err: err.Error()}
	}

	result, err := engine.Recognize(ctx, imagePath)
	if err != nil {
		return RawResult{Err: err.Error()}
	}
	return result
}
