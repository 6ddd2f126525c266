package forms

import "fmt"

// ClassificationAmbiguousError reports an interactive element that could not
// be associated with any label text. Callers skip the element and log; it is
// never fatal for the step.
type ClassificationAmbiguousError struct {
	Ref     string
	Message string
}

func (e *ClassificationAmbiguousError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("classification ambiguous for %s: %s", e.Ref, e.Message)
	}
	return fmt.Sprintf("classification ambiguous: %s", e.Message)
}

// StepParseError reports that a step's HTML snapshot could not be parsed at
// all, which makes the whole scan unusable.
type StepParseError struct {
	Message string
	Cause   error
}

func (e *StepParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("step parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("step parse error: %s", e.Message)
}

func (e *StepParseError) Unwrap() error {
	return e.Cause
}
