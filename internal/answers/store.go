// Package answers provides the persistent question→answer memory. Answers
// are keyed by a normalized question signature so a question seen on one
// application is never sent to the oracle again on the next.
package answers

import (
	"context"
	"fmt"
	"time"

	"github.com/lukalafaye/LinkedinAutoApply/internal/forms"
)

// Record is one remembered answer. Written the first time an answer is
// produced for a signature; read on every subsequent encounter.
type Record struct {
	Signature string
	Value     string
	Kind      forms.ElementKind
	CreatedAt time.Time
}

// Store is the answer memory consumed by the step controller. Remember is
// idempotent: the same signature and value twice is a no-op, a different
// value overwrites (last write wins, so corrected answers propagate).
// Implementations must refuse placeholder values so a previously skipped
// question is retried on the next encounter instead of cached wrong.
type Store interface {
	Lookup(ctx context.Context, signature string) (string, bool, error)
	Remember(ctx context.Context, rec Record) error
	Close()
}

// ErrPlaceholderValue is returned by Remember when the value is a sentinel
// like "Select an option" rather than a real answer.
type ErrPlaceholderValue struct {
	Signature string
	Value     string
}

func (e *ErrPlaceholderValue) Error() string {
	return fmt.Sprintf("refusing to store placeholder answer %q for %q", e.Value, e.Signature)
}

// validate applies the shared admission rules for all store implementations.
func validate(rec Record) error {
	if rec.Signature == "" {
		return fmt.Errorf("answer record has empty signature")
	}
	if forms.IsPlaceholder(rec.Value) {
		return &ErrPlaceholderValue{Signature: rec.Signature, Value: rec.Value}
	}
	return nil
}
