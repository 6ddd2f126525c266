package session

import (
	"context"
	"errors"
	"log"

	"github.com/lukalafaye/LinkedinAutoApply/internal/browser"
)

// ErrApplicationLimit signals the run stopped because the configured
// submission limit was reached, not because of a failure.
var ErrApplicationLimit = errors.New("application limit reached")

// Runner applies to a list of postings sequentially, one fresh session per
// posting, until the list or the submission limit is exhausted.
type Runner struct {
	driver  browser.Driver
	limit   int
	verbose bool

	// NewSession builds a fresh session for the next posting.
	newSession func() *ApplicationSession
	// Prepare runs before each posting, after navigation. Used to point
	// the oracle at the posting and reset per-job document caches.
	prepare func(ctx context.Context, url string) error
}

// NewRunner creates a Runner. limit <= 0 means no limit.
func NewRunner(driver browser.Driver, limit int, verbose bool, newSession func() *ApplicationSession, prepare func(ctx context.Context, url string) error) *Runner {
	return &Runner{
		driver:     driver,
		limit:      limit,
		verbose:    verbose,
		newSession: newSession,
		prepare:    prepare,
	}
}

// Run applies to each URL in order. Individual aborted applications are
// logged and skipped; the error is non-nil only when the run as a whole
// stopped early (context cancelled or limit reached).
func (r *Runner) Run(ctx context.Context, urls []string) (submitted int, err error) {
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return submitted, err
		}
		if r.limit > 0 && submitted >= r.limit {
			return submitted, ErrApplicationLimit
		}

		if err := r.driver.Navigate(ctx, url); err != nil {
			log.Printf("[RUNNER] skipping %s: %v", url, err)
			continue
		}
		if r.prepare != nil {
			if err := r.prepare(ctx, url); err != nil {
				log.Printf("[RUNNER] skipping %s: %v", url, err)
				continue
			}
		}

		result, err := r.newSession().Run(ctx)
		if err != nil {
			var aborted *AbortedError
			if errors.As(err, &aborted) {
				log.Printf("[RUNNER] application aborted for %s: %v", url, aborted)
				continue
			}
			return submitted, err
		}
		if result.Status == StatusSubmitted {
			submitted++
			if r.verbose {
				log.Printf("[RUNNER] submitted application %d for %s in %d steps", submitted, url, result.Steps)
			}
		}
	}

	if r.limit > 0 && submitted >= r.limit {
		return submitted, ErrApplicationLimit
	}
	return submitted, nil
}
