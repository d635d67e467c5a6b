// Package rodbrowser drives Chrome over the DevTools protocol with go-rod.
package rodbrowser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/aalvaropc/glimpse/internal/domain"
	"github.com/aalvaropc/glimpse/internal/ports"
)

// Browser owns one Chrome process (or a remote connection) shared by all sessions.
type Browser struct {
	cfg domain.BrowserConfig
	log *slog.Logger

	mu       sync.Mutex
	browser  *rod.Browser
	launched *launcher.Launcher
	closed   bool
}

type Option func(*Browser)

func WithLogger(l *slog.Logger) Option {
	return func(b *Browser) {
		if l != nil {
			b.log = l
		}
	}
}

var _ ports.Browser = (*Browser)(nil)

// New connects to cfg.DebuggerURL or launches a local Chrome.
func New(ctx context.Context, cfg domain.BrowserConfig, opts ...Option) (*Browser, error) {
	b := &Browser{
		cfg: cfg,
		log: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}

	controlURL := strings.TrimSpace(cfg.DebuggerURL)
	if controlURL == "" {
		l := b.launcher()
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, &domain.OpError{
				Op:   "rodbrowser.launch",
				Kind: domain.KindExecution,
				Err:  fmt.Errorf("launch chrome: %w", err),
			}
		}
		b.launched = l
		controlURL = u
	}

	rb := rod.New().ControlURL(controlURL)
	if err := rb.Connect(); err != nil {
		b.killLauncher()
		return nil, &domain.OpError{
			Op:   "rodbrowser.connect",
			Kind: domain.KindExecution,
			Err:  fmt.Errorf("connect to chrome: %w", err),
		}
	}
	b.browser = rb

	b.log.Debug("browser.ready", "control_url", controlURL, "launched", b.launched != nil)
	return b, nil
}

func (b *Browser) launcher() *launcher.Launcher {
	l := launcher.New().Headless(b.cfg.Headless)

	bin := strings.TrimSpace(b.cfg.Bin)
	if bin == "" {
		if p, ok := launcher.LookPath(); ok {
			bin = p
		}
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	if b.cfg.NoSandbox {
		l = l.NoSandbox(true)
	}
	if b.cfg.ViewportWidth > 0 && b.cfg.ViewportHeight > 0 {
		l = l.Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", b.cfg.ViewportWidth, b.cfg.ViewportHeight))
	}
	return l.Set(flags.Flag("disable-dev-shm-usage"))
}

// NewSession opens an incognito context with a single page. Every pattern
// from routes is hijacked; requests routes does not answer go to the network.
func (b *Browser) NewSession(ctx context.Context, routes ports.RouteResponder) (ports.PageSession, error) {
	b.mu.Lock()
	if b.closed || b.browser == nil {
		b.mu.Unlock()
		return nil, &domain.OpError{Op: "rodbrowser.session", Kind: domain.KindExecution, Err: fmt.Errorf("browser is closed")}
	}
	rb := b.browser
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	incognito, err := rb.Incognito()
	if err != nil {
		return nil, &domain.OpError{Op: "rodbrowser.incognito", Kind: domain.KindExecution, Err: err}
	}

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = disposeContext(rb, incognito)
		return nil, &domain.OpError{Op: "rodbrowser.page", Kind: domain.KindExecution, Err: err}
	}

	if b.cfg.ViewportWidth > 0 && b.cfg.ViewportHeight > 0 {
		if err := (proto.EmulationSetDeviceMetricsOverride{
			Width:             b.cfg.ViewportWidth,
			Height:            b.cfg.ViewportHeight,
			DeviceScaleFactor: 1.0,
			Mobile:            false,
		}).Call(page); err != nil {
			b.log.Warn("viewport.failed", "err", err)
		}
	}

	s := &Session{
		root:      rb,
		incognito: incognito,
		page:      page,
		log:       b.log,
		done:      make(chan struct{}),
	}

	if routes != nil && len(routes.Patterns()) > 0 {
		if err := s.hijack(routes); err != nil {
			_ = s.Close()
			return nil, err
		}
	}

	return s, nil
}

// Close shuts down the connection and kills Chrome if it was launched here.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var err error
	if b.browser != nil {
		err = b.browser.Close()
	}
	b.killLauncher()
	return err
}

func (b *Browser) killLauncher() {
	if b.launched != nil {
		b.launched.Kill()
		b.launched.Cleanup()
		b.launched = nil
	}
}

func disposeContext(root, incognito *rod.Browser) error {
	if incognito.BrowserContextID == "" {
		return nil
	}
	return proto.TargetDisposeBrowserContext{BrowserContextID: incognito.BrowserContextID}.Call(root)
}
