package rodbrowser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/cdp"
	"github.com/go-rod/rod/lib/proto"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
)

const pollInterval = 100 * time.Millisecond

// Session is one incognito page.
type Session struct {
	root      *rod.Browser
	incognito *rod.Browser
	page      *rod.Page
	router    *rod.HijackRouter
	log       *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

var _ ports.PageSession = (*Session)(nil)

func (s *Session) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return navigationError(ctx, url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return navigationError(ctx, url, err)
	}
	return nil
}

func (s *Session) URL(ctx context.Context) (string, error) {
	res, err := s.page.Context(ctx).Eval(hrefJS)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (s *Session) Count(ctx context.Context, loc domain.Locator) (int, error) {
	res, err := s.page.Context(ctx).Eval(countJS, toArg(loc))
	if err != nil {
		return 0, locatorError(loc, err)
	}
	return res.Value.Int(), nil
}

// WaitFor polls until loc matches at least one visible element.
func (s *Session) WaitFor(ctx context.Context, loc domain.Locator, timeout time.Duration) (int, error) {
	var n int
	err := poll(ctx, timeout, func(pctx context.Context) (bool, error) {
		c, err := s.Count(pctx, loc)
		if err != nil {
			return false, err
		}
		n = c
		return c > 0, nil
	})
	if errors.Is(err, errPollTimeout) {
		return 0, &domain.ElementNotFoundError{Locator: loc, Timeout: timeout}
	}
	return n, err
}

// WaitURL polls until the page URL contains fragment. On timeout it returns
// the last URL seen and no error so callers can report the mismatch.
func (s *Session) WaitURL(ctx context.Context, fragment string, timeout time.Duration) (string, error) {
	var last string
	err := poll(ctx, timeout, func(pctx context.Context) (bool, error) {
		u, err := s.URL(pctx)
		if err != nil {
			return false, err
		}
		last = u
		return strings.Contains(u, fragment), nil
	})
	if errors.Is(err, errPollTimeout) {
		return last, nil
	}
	return last, err
}

func (s *Session) Click(ctx context.Context, loc domain.Locator, timeout time.Duration) error {
	el, cancel, err := s.first(ctx, loc, timeout)
	if err != nil {
		return err
	}
	defer cancel()

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", loc, err)
	}
	return nil
}

func (s *Session) Fill(ctx context.Context, loc domain.Locator, value string, timeout time.Duration) error {
	el, cancel, err := s.first(ctx, loc, timeout)
	if err != nil {
		return err
	}
	defer cancel()

	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %s: %w", loc, err)
	}
	return nil
}

func (s *Session) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	b, err := s.page.Context(ctx).Screenshot(fullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return b, nil
}

// Close stops the hijack router and disposes the incognito context.
func (s *Session) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.router != nil {
			if err := s.router.Stop(); err != nil {
				errs = append(errs, err)
			}
		}
		if err := s.page.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := disposeContext(s.root, s.incognito); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// first waits for loc and returns its first match bound to a timeout
// context; callers must call the returned cancel func.
func (s *Session) first(ctx context.Context, loc domain.Locator, timeout time.Duration) (*rod.Element, context.CancelFunc, error) {
	if _, err := s.WaitFor(ctx, loc, timeout); err != nil {
		return nil, nil, err
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	el, err := s.page.Context(tctx).ElementByJS(rod.Eval(firstJS, toArg(loc)))
	if err != nil {
		cancel()
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, &domain.ElementNotFoundError{Locator: loc, Timeout: timeout}
		}
		return nil, nil, locatorError(loc, err)
	}
	return el, cancel, nil
}

var errPollTimeout = errors.New("poll timeout")

// poll runs check every pollInterval until it reports true, the timeout
// elapses (errPollTimeout) or ctx is done (ctx.Err()). A check that fails
// because the page is mid-navigation counts as not ready yet.
func poll(ctx context.Context, timeout time.Duration, check func(context.Context) (bool, error)) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()

	for {
		ok, err := check(ctx)
		if err != nil && !navigating(err) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return errPollTimeout
		case <-tick.C:
		}
	}
}

// navigating reports whether err comes from evaluating in a frame that a
// navigation has just torn down.
func navigating(err error) bool {
	return errors.Is(err, cdp.ErrCtxDestroyed) || errors.Is(err, cdp.ErrCtxNotFound)
}

func navigationError(ctx context.Context, url string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var nav *rod.NavigationError
	if errors.As(err, &nav) {
		return &domain.NavigationError{URL: url, Reason: nav.Reason}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &domain.NavigationError{URL: url, Reason: err.Error()}
}

func locatorError(loc domain.Locator, err error) error {
	var evalErr *rod.EvalError
	if errors.As(err, &evalErr) {
		return &domain.OpError{
			Op:   "rodbrowser.locate",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("%s: %w", loc, err),
		}
	}
	return err
}
