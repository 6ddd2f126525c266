// Package browser drives a real web browser through application form steps
// and hands back rendered HTML snapshots for classification.
package browser

import (
	"context"
	"fmt"
	"time"
)

// Driver abstracts the browser so the session state machine can be tested
// against scripted HTML without a running Chrome.
type Driver interface {
	// Navigate loads a URL and waits for the initial render.
	Navigate(ctx context.Context, url string) error
	// CurrentStep returns the rendered HTML of the current page state.
	CurrentStep(ctx context.Context) (string, error)
	// Fill sets the value of a text-like input or selects a dropdown
	// option whose visible text matches value.
	Fill(ctx context.Context, ref, value string) error
	// Click clicks the element addressed by ref.
	Click(ctx context.Context, ref string) error
	// Upload attaches a local file to a file input.
	Upload(ctx context.Context, ref, path string) error
	// WaitForRender blocks until the page has settled after an
	// interaction, up to timeout.
	WaitForRender(ctx context.Context, timeout time.Duration) error
	// Close shuts the browser down.
	Close() error
}

// NavigationTimeoutError indicates the browser did not reach a usable page
// state in time.
type NavigationTimeoutError struct {
	Target string
	Cause  error
}

func (e *NavigationTimeoutError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("navigation timed out for %s: %v", e.Target, e.Cause)
	}
	return fmt.Sprintf("navigation timed out for %s", e.Target)
}

func (e *NavigationTimeoutError) Unwrap() error {
	return e.Cause
}

// InteractionError indicates a fill, click or upload against a specific
// element reference failed.
type InteractionError struct {
	Ref     string
	Message string
	Cause   error
}

func (e *InteractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("interaction failed on %s: %s: %v", e.Ref, e.Message, e.Cause)
	}
	return fmt.Sprintf("interaction failed on %s: %s", e.Ref, e.Message)
}

func (e *InteractionError) Unwrap() error {
	return e.Cause
}
