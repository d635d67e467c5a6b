package httpcheck

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/infra/httpclient"
	"github.com/aalvaropc/glimpse/internal/ports"
)

const defaultTimeout = 3 * time.Second

// Checker checks that a base URL answers HTTP at all. Any status code counts
// as reachable; only transport errors (refused, DNS, timeout) do not.
type Checker struct {
	exec    *httpclient.Executor
	timeout time.Duration
}

type Option func(*Checker)

func WithTimeout(d time.Duration) Option {
	return func(p *Checker) { p.timeout = d }
}

func WithClient(c *http.Client) Option {
	return func(p *Checker) { p.exec = httpclient.NewExecutor(httpclient.WithClient(c)) }
}

func New(opts ...Option) *Checker {
	p := &Checker{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(p)
	}
	if p.exec == nil {
		p.exec = httpclient.NewExecutor(httpclient.WithClient(httpclient.New(httpclient.CheckConfig(p.timeout))))
	}
	p.exec = p.exec.With(httpclient.WithTimeout(p.timeout), httpclient.WithMaxBodyBytes(0))
	return p
}

var _ ports.Checker = (*Checker)(nil)

func (p *Checker) Check(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.OpError{
			Op:   "httpcheck.request",
			Kind: domain.KindInvalidConfig,
			Err:  err,
		}
	}
	req.Header.Set("User-Agent", "glimpse-check")

	if _, err := p.exec.Do(ctx, req); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.NavigationError{URL: url, Reason: fmt.Sprintf("unreachable: %v", err)}
	}
	return nil
}
