package forecast

import "context"

// Model is a pre-trained regression over a FeatureVector. Implementations
// are loaded once and must be safe for concurrent use.
type Model interface {
	Infer(ctx context.Context, features FeatureVector) ([]float64, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, features FeatureVector) ([]float64, error)

func (f ModelFunc) Infer(ctx context.Context, features FeatureVector) ([]float64, error) {
	return f(ctx, features)
}
