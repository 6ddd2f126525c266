package session

import "fmt"

// AbortedError indicates the session stopped before submitting. Aborted
// sessions never click the submit affordance; answers resolved before the
// abort have already been persisted.
type AbortedError struct {
	Step   int
	Reason string
	Cause  error
}

func (e *AbortedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("application aborted at step %d: %s: %v", e.Step, e.Reason, e.Cause)
	}
	return fmt.Sprintf("application aborted at step %d: %s", e.Step, e.Reason)
}

func (e *AbortedError) Unwrap() error {
	return e.Cause
}

// ElementFailedError indicates a required element could not be resolved or
// filled. It escalates to a step-level abort.
type ElementFailedError struct {
	Key     string
	Message string
	Cause   error
}

func (e *ElementFailedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("element %s failed: %s: %v", e.Key, e.Message, e.Cause)
	}
	return fmt.Sprintf("element %s failed: %s", e.Key, e.Message)
}

func (e *ElementFailedError) Unwrap() error {
	return e.Cause
}
