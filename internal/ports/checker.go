package ports

import "context"

// Checker checks whether an application root answers at all.
type Checker interface {
	Check(ctx context.Context, url string) error
}
