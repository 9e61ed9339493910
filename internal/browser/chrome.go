package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

// ChromeOptions configures the Chromium process.
type ChromeOptions struct {
	Headless bool
	// ExecPath overrides the Chromium binary. Falls back to CHROME_PATH.
	ExecPath  string
	UserAgent string
	// DownloadDir, when set, becomes the browser's download target.
	DownloadDir string
}

// Chrome is a Driver backed by a chromedp browser context.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
}

var _ Driver = (*Chrome)(nil)

// NewChrome starts Chromium and returns a ready Driver. The browser stays
// alive until Close is called or parent is cancelled.
func NewChrome(parent context.Context, opts ChromeOptions) (*Chrome, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "es-CL"),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	execPath := opts.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_PATH")
	}
	if execPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	bctx, bcancel := chromedp.NewContext(allocCtx)

	c := &Chrome{ctx: bctx, cancel: bcancel, allocCancel: allocCancel}

	if err := chromedp.Run(bctx, chromedp.Navigate("about:blank")); err != nil {
		c.Close()
		return nil, fmt.Errorf("inicializando chrome: %w", err)
	}

	if opts.DownloadDir != "" {
		dir, err := filepath.Abs(opts.DownloadDir)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("resolviendo carpeta de descargas: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			c.Close()
			return nil, fmt.Errorf("creando carpeta de descargas: %w", err)
		}
		if err := chromedp.Run(bctx,
			cdpbrowser.SetDownloadBehavior(cdpbrowser.SetDownloadBehaviorBehaviorAllow).
				WithDownloadPath(dir),
		); err != nil {
			c.Close()
			return nil, fmt.Errorf("configurando descargas: %w", err)
		}
	}

	return c, nil
}

// Close terminates the browser.
func (c *Chrome) Close() {
	c.cancel()
	c.allocCancel()
}

// run executes actions against the browser tab. The caller's ctx only
// contributes its deadline and cancellation; the tab lives in c.ctx.
func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(c.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (c *Chrome) Open(ctx context.Context, url string) error {
	return c.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (c *Chrome) Fill(ctx context.Context, selector, value string) error {
	actions := []chromedp.Action{
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Clear(selector, chromedp.ByQuery),
	}
	if value != "" {
		actions = append(actions, chromedp.SendKeys(selector, value, chromedp.ByQuery))
	}
	return c.run(ctx, actions...)
}

func (c *Chrome) Click(ctx context.Context, selector string) error {
	return c.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
}

func (c *Chrome) Dispatch(ctx context.Context, directive string) error {
	return c.run(ctx, chromedp.Evaluate(directive, nil))
}

func (c *Chrome) Snapshot(ctx context.Context) (string, error) {
	var html string
	if err := c.run(ctx, chromedp.EvaluateAsDevTools(`document.documentElement.outerHTML`, &html)); err != nil {
		return "", err
	}
	return html, nil
}
