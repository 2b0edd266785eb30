// Package livedom adapts a live go-rod page into the meta.Node interface.
// One JS evaluation collects the complete subtree snapshot — identity,
// classes, text, bounding boxes, computed style facts, attributes — so
// the scanner never round-trips to the browser per node.
package livedom

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

//go:embed snapshot.js
var snapshotJS string

// ErrNoMatch is returned when the snapshot selector matches nothing.
var ErrNoMatch = errors.New("livedom: selector matched no element")

// Page wraps a rod page for snapshotting.
type Page struct {
	page   *rod.Page
	logger *slog.Logger
}

// OpenOption configures Open.
type OpenOption func(*openConfig)

type openConfig struct {
	stealth    bool
	navTimeout time.Duration
}

// WithStealth creates the tab through the stealth plugin, for pages that
// fence off headless browsers.
func WithStealth() OpenOption {
	return func(c *openConfig) { c.stealth = true }
}

// WithNavTimeout bounds navigation and load waiting. Default: 30s.
func WithNavTimeout(d time.Duration) OpenOption {
	return func(c *openConfig) { c.navTimeout = d }
}

// Attach wraps an existing rod page.
func Attach(page *rod.Page, logger *slog.Logger) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	return &Page{page: page, logger: logger}
}

// Open creates a tab on the given browser, navigates to url and waits
// for the load event. A load-wait timeout is logged, not fatal: a page
// stuck on a trailing resource can still be snapshotted.
func Open(ctx context.Context, browser *rod.Browser, url string, logger *slog.Logger, opts ...OpenOption) (*Page, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := openConfig{navTimeout: 30 * time.Second}
	for _, o := range opts {
		o(&cfg)
	}

	var page *rod.Page
	var err error
	if cfg.stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("livedom: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, cfg.navTimeout)
	defer cancel()

	if err := page.Context(navCtx).Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("livedom: navigate %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		logger.Warn("livedom: wait load timeout", "url", url, "error", err)
	}

	return &Page{page: page, logger: logger}, nil
}

// Close closes the underlying tab.
func (p *Page) Close() error {
	return p.page.Close()
}

// Rod exposes the wrapped page for callers that need direct access.
func (p *Page) Rod() *rod.Page {
	return p.page
}

// Snapshot captures the subtree rooted at selector (document body when
// empty) down to maxDepth levels and returns it as a measurable node
// tree. Geometry and style facts are the browser's own measurements.
func (p *Page) Snapshot(ctx context.Context, selector string, maxDepth int) (*Node, error) {
	if maxDepth <= 0 {
		maxDepth = 12
	}

	res, err := p.page.Context(ctx).Eval(snapshotJS, selector, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("livedom: snapshot eval: %w", err)
	}

	raw, err := json.Marshal(res.Value.Val())
	if err != nil {
		return nil, fmt.Errorf("livedom: encode snapshot: %w", err)
	}
	if string(raw) == "null" {
		return nil, fmt.Errorf("%w: %q", ErrNoMatch, selector)
	}

	var n Node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("livedom: decode snapshot: %w", err)
	}
	return &n, nil
}
