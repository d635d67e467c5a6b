package ports

import (
	"context"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
)

// RouteResponder decides how intercepted browser requests are answered.
// Respond returns false when the request should continue to the network.
type RouteResponder interface {
	Patterns() []string
	Respond(req domain.InterceptedRequest) (domain.MockResponse, bool)
}

// Browser hands out isolated page sessions.
type Browser interface {
	NewSession(ctx context.Context, routes RouteResponder) (PageSession, error)
	Close() error
}

// PageSession is one isolated page (own cookies and storage).
type PageSession interface {
	Navigate(ctx context.Context, url string) error
	URL(ctx context.Context) (string, error)

	// Count returns how many visible elements match right now.
	Count(ctx context.Context, loc domain.Locator) (int, error)
	// WaitFor blocks until at least one element matches and returns the count.
	WaitFor(ctx context.Context, loc domain.Locator, timeout time.Duration) (int, error)
	WaitURL(ctx context.Context, fragment string, timeout time.Duration) (string, error)

	Click(ctx context.Context, loc domain.Locator, timeout time.Duration) error
	Fill(ctx context.Context, loc domain.Locator, value string, timeout time.Duration) error
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)

	Close() error
}
