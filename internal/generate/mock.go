package generate

import (
	"context"

	"github.com/SameerVers3/Scrapply/pkg/models"
)

var _ Generator = (*Mock)(nil)

// Mock is a function-field Generator for tests.
type Mock struct {
	GenerateFn func(ctx context.Context, gc Context) (string, error)
	RefineFn   func(ctx context.Context, gc Context, prevSource string, failure models.SandboxResult) (string, error)
}

func (m *Mock) Generate(ctx context.Context, gc Context) (string, error) {
	return m.GenerateFn(ctx, gc)
}

func (m *Mock) Refine(ctx context.Context, gc Context, prevSource string, failure models.SandboxResult) (string, error) {
	return m.RefineFn(ctx, gc, prevSource, failure)
}
