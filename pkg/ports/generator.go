package ports

import (
	"context"

	"github.com/aretw0/textfill/pkg/domain"
)

// Generator produces count text variants for a description.
// Implementations return the typed errors from pkg/domain.
type Generator interface {
	Generate(ctx context.Context, description string, count int) (domain.GenerationResult, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, description string, count int) (domain.GenerationResult, error)

func (f GeneratorFunc) Generate(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
	return f(ctx, description, count)
}

// TextModel is an upstream language model used by the generation service.
type TextModel interface {
	Name() string
	Complete(ctx context.Context, system, prompt string) (string, error)
}
