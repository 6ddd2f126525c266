package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Options configures the Chrome driver.
type Options struct {
	// Headless runs Chrome without a visible window.
	Headless bool
	// UserDataDir persists cookies and sessions between runs. Empty means
	// a throwaway profile.
	UserDataDir string
	// RenderDelay is the settle time after interactions, for forms that
	// reveal fields lazily.
	RenderDelay time.Duration
}

// DefaultOptions returns the options used in production runs.
func DefaultOptions() Options {
	return Options{
		Headless:    true,
		RenderDelay: 2 * time.Second,
	}
}

// ChromeDriver implements Driver on a headless Chrome via chromedp.
// Requires Chrome/Chromium to be installed on the system.
type ChromeDriver struct {
	browserCtx context.Context
	cancels    []context.CancelFunc
	opts       Options
}

// NewChromeDriver starts a Chrome instance. The returned driver must be
// closed to release the browser process.
func NewChromeDriver(ctx context.Context, opts Options) (*ChromeDriver, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so failures surface here, not mid-session.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	if opts.RenderDelay <= 0 {
		opts.RenderDelay = DefaultOptions().RenderDelay
	}
	return &ChromeDriver{
		browserCtx: browserCtx,
		cancels:    []context.CancelFunc{cancelBrowser, cancelAlloc},
		opts:       opts,
	}, nil
}

// Navigate loads a URL and waits for the body to be ready.
func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	err := d.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(d.opts.RenderDelay),
	)
	if err != nil {
		return &NavigationTimeoutError{Target: url, Cause: err}
	}
	return nil
}

// CurrentStep returns the rendered HTML of the page.
func (d *ChromeDriver) CurrentStep(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to snapshot page: %w", err)
	}
	return html, nil
}

// fillScript sets a control's value in-page so frameworks listening for
// input/change events pick it up. Selects match by visible option text
// first, then by value attribute.
const fillScript = `(() => {
	const el = document.querySelector(%q);
	if (!el) return "missing";
	if (el.tagName === "SELECT") {
		let hit = -1;
		for (let i = 0; i < el.options.length; i++) {
			if (el.options[i].text.trim() === %q) { hit = i; break; }
		}
		if (hit < 0) {
			for (let i = 0; i < el.options.length; i++) {
				if (el.options[i].value === %q) { hit = i; break; }
			}
		}
		if (hit < 0) return "no-option";
		el.selectedIndex = hit;
	} else {
		el.focus();
		el.value = %q;
	}
	el.dispatchEvent(new Event("input", {bubbles: true}));
	el.dispatchEvent(new Event("change", {bubbles: true}));
	el.blur && el.blur();
	return "ok";
})()`

// Fill sets a text input's value or selects a dropdown option.
func (d *ChromeDriver) Fill(ctx context.Context, ref, value string) error {
	script := fmt.Sprintf(fillScript, ref, value, value, value)
	var result string
	if err := d.run(ctx, chromedp.Evaluate(script, &result)); err != nil {
		return &InteractionError{Ref: ref, Message: "fill script failed", Cause: err}
	}
	switch result {
	case "ok":
		return nil
	case "missing":
		return &InteractionError{Ref: ref, Message: "element not found"}
	case "no-option":
		return &InteractionError{Ref: ref, Message: fmt.Sprintf("no option matching %q", value)}
	default:
		return &InteractionError{Ref: ref, Message: fmt.Sprintf("unexpected fill result %q", result)}
	}
}

// Click clicks a visible element.
func (d *ChromeDriver) Click(ctx context.Context, ref string) error {
	if err := d.run(ctx, chromedp.Click(ref, chromedp.NodeVisible)); err != nil {
		return &InteractionError{Ref: ref, Message: "click failed", Cause: err}
	}
	return nil
}

// Upload attaches a file to a file input element.
func (d *ChromeDriver) Upload(ctx context.Context, ref, path string) error {
	if err := d.run(ctx, chromedp.SetUploadFiles(ref, []string{path})); err != nil {
		return &InteractionError{Ref: ref, Message: "upload failed", Cause: err}
	}
	return nil
}

// WaitForRender waits for the page to settle after an interaction.
func (d *ChromeDriver) WaitForRender(ctx context.Context, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	err := d.run(waitCtx,
		chromedp.WaitReady("body"),
		chromedp.Sleep(d.opts.RenderDelay),
	)
	if err != nil {
		return &NavigationTimeoutError{Target: "current page", Cause: err}
	}
	return nil
}

// Close shuts down the browser process.
func (d *ChromeDriver) Close() error {
	for _, cancel := range d.cancels {
		cancel()
	}
	return nil
}

func (d *ChromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(d.browserCtx, timeoutFrom(ctx, 60*time.Second))
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// timeoutFrom derives a run timeout from the caller's context deadline.
func timeoutFrom(ctx context.Context, fallback time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			return remaining
		}
	}
	return fallback
}
