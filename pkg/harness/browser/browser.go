// Package browser wraps Rod to provide Chrome sessions for UI testing.
// A Browser owns one Chrome process; each Context is an isolated browser
// context with its own cookies and storage, which is what makes
// multi-context tenant-isolation testing valid.
package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/workflowpro/e2e/pkg/harness/config"
)

// Config holds Chrome launch options.
type Config struct {
	Headless   bool
	Timeout    time.Duration // default operation timeout
	SlowMotion time.Duration // delay between actions, for headed debugging
}

// DefaultConfig returns defaults suitable for CI: headless with a 30s
// operation timeout.
func DefaultConfig() Config {
	return Config{
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

// FromHarnessConfig derives launch options from the run configuration.
// Headed runs get a small slow-motion delay so flows are followable by eye.
func FromHarnessConfig(cfg *config.Config) Config {
	c := DefaultConfig()
	c.Headless = cfg.Headless
	if !cfg.Headless {
		c.SlowMotion = 100 * time.Millisecond
	}
	return c
}

// Browser owns one launched Chrome instance.
type Browser struct {
	browser *rod.Browser
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Browser.
type Option func(*Browser)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Browser) { b.logger = l }
}

// Launch starts Chrome and connects to it.
// Flags: no sandbox (container compatibility) and no GPU.
func Launch(cfg Config, opts ...Option) (*Browser, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	br := rod.New().ControlURL(url)
	if cfg.SlowMotion > 0 {
		br = br.SlowMotion(cfg.SlowMotion)
	}
	if err := br.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	b := &Browser{
		browser: br,
		timeout: cfg.Timeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// NewContext creates an isolated browser context. Two contexts share no
// cookies, local storage, or cache, even for the same origin.
func (b *Browser) NewContext() (*Context, error) {
	incognito, err := b.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	return &Context{browser: incognito, timeout: b.timeout}, nil
}

// Close shuts down Chrome. Always call this (via defer) to prevent orphaned
// Chrome processes.
func (b *Browser) Close() error {
	if b.browser != nil {
		return b.browser.Close()
	}
	return nil
}

// Context is one isolated browser storage scope. It owns the pages opened
// within it.
type Context struct {
	browser *rod.Browser
	timeout time.Duration
	pages   []*rod.Page
}

// NewPage opens a blank page in the context.
func (c *Context) NewPage() (*rod.Page, error) {
	page, err := c.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1280,
		Height:            720,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}
	c.pages = append(c.pages, page)
	return page, nil
}

// Close closes every page opened in the context. The first error wins but
// all pages are attempted.
func (c *Context) Close() error {
	var firstErr error
	for _, p := range c.pages {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.pages = nil
	return firstErr
}
