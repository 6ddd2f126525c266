package session

import (
	"context"
	"log"

	"github.com/lukalafaye/LinkedinAutoApply/internal/answers"
	"github.com/lukalafaye/LinkedinAutoApply/internal/browser"
	"github.com/lukalafaye/LinkedinAutoApply/internal/files"
	"github.com/lukalafaye/LinkedinAutoApply/internal/observability"
)

// ApplicationSession walks one multi-step application form from its first
// step to submission. Sessions are single use.
type ApplicationSession struct {
	driver     browser.Driver
	controller *stepController
	limits     Limits
	verbose    bool

	trace []State
}

// Options wires the collaborators of a session.
type Options struct {
	Driver      browser.Driver
	Store       answers.Store
	Oracle      Oracle
	Provisioner files.Provisioner
	Limits      Limits
	Printer     *observability.Printer
	Verbose     bool
}

// New creates a session. Zero-valued limits fall back to defaults.
func New(opts Options) *ApplicationSession {
	limits := opts.Limits
	defaults := DefaultLimits()
	if limits.RetryCap <= 0 {
		limits.RetryCap = defaults.RetryCap
	}
	if limits.ScanPasses <= 0 {
		limits.ScanPasses = defaults.ScanPasses
	}
	if limits.StepCeiling <= 0 {
		limits.StepCeiling = defaults.StepCeiling
	}
	if limits.RenderTimeout <= 0 {
		limits.RenderTimeout = defaults.RenderTimeout
	}
	if limits.Numeric == (Limits{}).Numeric {
		limits.Numeric = defaults.Numeric
	}

	return &ApplicationSession{
		driver: opts.Driver,
		controller: &stepController{
			driver:      opts.Driver,
			store:       opts.Store,
			oracle:      opts.Oracle,
			provisioner: opts.Provisioner,
			limits:      limits,
			printer:     opts.Printer,
			verbose:     opts.Verbose,
		},
		limits:  limits,
		verbose: opts.Verbose,
	}
}

// Trace returns the sequence of states the session passed through.
func (s *ApplicationSession) Trace() []State {
	return s.trace
}

func (s *ApplicationSession) observe(state State) {
	s.trace = append(s.trace, state)
	if s.verbose {
		log.Printf("[SESSION] state: %s", state)
	}
}

// Run drives the form in front of the driver to submission. The driver is
// expected to already be on the first step. Aborted runs return an
// AbortedError and never click submit; answers resolved before the abort
// are already persisted.
func (s *ApplicationSession) Run(ctx context.Context) (Result, error) {
	for number := 1; number <= s.limits.StepCeiling; number++ {
		step, err := s.controller.runStep(ctx, number, s.observe)
		if err != nil {
			return Result{Status: StatusAborted, Steps: number, Reason: err.Error()},
				&AbortedError{Step: number, Reason: "step failed", Cause: err}
		}
		if step.Action == nil {
			return Result{Status: StatusAborted, Steps: number, Reason: "no primary action on step"},
				&AbortedError{Step: number, Reason: "no primary action on step"}
		}

		if step.Terminal() {
			s.observe(StateSubmitting)
			if err := s.driver.Click(ctx, step.Action.Ref); err != nil {
				return Result{Status: StatusAborted, Steps: number, Reason: "submit click failed"},
					&AbortedError{Step: number, Reason: "submit click failed", Cause: err}
			}
			_ = s.driver.WaitForRender(ctx, s.limits.RenderTimeout)
			return Result{Status: StatusSubmitted, Steps: number}, nil
		}

		s.observe(StateAdvancing)
		if err := s.driver.Click(ctx, step.Action.Ref); err != nil {
			return Result{Status: StatusAborted, Steps: number, Reason: "advance click failed"},
				&AbortedError{Step: number, Reason: "advance click failed", Cause: err}
		}
		if err := s.driver.WaitForRender(ctx, s.limits.RenderTimeout); err != nil {
			return Result{Status: StatusAborted, Steps: number, Reason: "render timeout after advance"},
				&AbortedError{Step: number, Reason: "render timeout after advance", Cause: err}
		}
	}

	return Result{Status: StatusAborted, Steps: s.limits.StepCeiling, Reason: "step ceiling reached"},
		&AbortedError{Step: s.limits.StepCeiling, Reason: "step ceiling reached"}
}
