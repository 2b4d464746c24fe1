package ai

import "context"

// Request is the input for one meal analysis.
type Request struct {
	Description string
	ImageURL    string
}

// Result is the raw model output plus the facts the client knows about producing it.
type Result struct {
	Raw          []byte
	Model        string
	UsedFallback bool
	OCRExtracted bool
}

type Client interface {
	AnalyzeMeal(ctx context.Context, req Request) (Result, error)
}
