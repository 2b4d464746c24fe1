package diagnostics

import "context"

// App is a live credential-backed instance.
type App interface {
	Name() string
}

// Initializer returns the existing instance if there is one, otherwise builds it.
type Initializer interface {
	Initialize(ctx context.Context) (App, error)
}

// InitializerFunc adapts a function to Initializer.
type InitializerFunc func(ctx context.Context) (App, error)

func (f InitializerFunc) Initialize(ctx context.Context) (App, error) { return f(ctx) }
