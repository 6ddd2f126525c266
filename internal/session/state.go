// Package session runs one job application end to end: scanning form steps,
// resolving answers, filling, validating and advancing until submission.
package session

// State is the phase the session is in for the current step.
type State string

const (
	// StateScanning captures and classifies the rendered step.
	StateScanning State = "scanning"
	// StateResolving produces answers for unanswered elements.
	StateResolving State = "resolving"
	// StateFilling writes resolved answers into the page.
	StateFilling State = "filling"
	// StateValidating re-reads the step for inline errors.
	StateValidating State = "validating"
	// StateRetrying refines answers rejected by validation.
	StateRetrying State = "retrying"
	// StateAdvancing clicks the next-step affordance.
	StateAdvancing State = "advancing"
	// StateSubmitting clicks the final submit affordance.
	StateSubmitting State = "submitting"
)

// Status is the terminal outcome of a session.
type Status string

const (
	// StatusSubmitted means the form was submitted successfully.
	StatusSubmitted Status = "submitted"
	// StatusAborted means the session stopped without submitting.
	StatusAborted Status = "aborted"
)

// Result summarizes a finished session.
type Result struct {
	Status Status
	Steps  int
	Reason string
}
