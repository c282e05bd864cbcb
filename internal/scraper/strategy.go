package scraper

import "context"

// Strategy is one way of finding a T. Try reports ok=false when it found
// nothing; failures inside Try count as "nothing".
type Strategy[T any] struct {
	Name string
	Try  func(ctx context.Context) (T, bool)
}

// FirstMatch runs strategies in order and returns the first hit and its name.
// Exhausting the list is not an error. A cancelled context stops the scan.
func FirstMatch[T any](ctx context.Context, strategies []Strategy[T]) (T, string, bool) {
	var zero T
	for _, s := range strategies {
		if ctx.Err() != nil {
			return zero, "", false
		}
		if v, ok := s.Try(ctx); ok {
			return v, s.Name, true
		}
	}
	return zero, "", false
}
