package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukalafaye/LinkedinAutoApply/internal/answers"
	"github.com/lukalafaye/LinkedinAutoApply/internal/forms"
	"github.com/lukalafaye/LinkedinAutoApply/internal/oracle"
)

const numericStep = `<html><body><form>
	<div>
		<label for="years">How many years of experience do you have with Go?</label>
		<input type="text" id="years" name="years" class="numeric-input" required>
	</div>
	<button id="next-btn" type="button">Next</button>
</form></body></html>`

const choiceStep = `<html><body><form>
	<fieldset>
		<legend>Are you authorized to work in the United States?</legend>
		<label><input type="radio" name="auth" value="yes" required>Yes</label>
		<label><input type="radio" name="auth" value="no">No</label>
	</fieldset>
	<button id="submit-btn" type="submit">Submit application</button>
</form></body></html>`

const numericSubmitStep = `<html><body><form>
	<div>
		<label for="years">How many years of experience do you have with Go?</label>
		<input type="text" id="years" name="years" class="numeric-input" required>
	</div>
	<button id="submit-btn" type="submit">Submit application</button>
</form></body></html>`

const failingNumericStep = `<html><body><form>
	<div>
		<label for="years">How many years of experience do you have with Go?</label>
		<input type="text" id="years" name="years" class="numeric-input" required>
		<span class="error-message">Enter a whole number between 0 and 50</span>
	</div>
	<button id="submit-btn" type="submit">Submit application</button>
</form></body></html>`

type fillCall struct {
	ref   string
	value string
}

// scriptedDriver serves a fixed sequence of HTML pages and records every
// interaction. Clicking advanceRef moves to the next page.
type scriptedDriver struct {
	site       map[string][]string
	pages      []string
	idx        int
	advanceRef string

	clicks  []string
	fills   []fillCall
	uploads []fillCall
}

func (d *scriptedDriver) Navigate(_ context.Context, url string) error {
	if d.site != nil {
		d.pages = d.site[url]
	}
	d.idx = 0
	return nil
}

func (d *scriptedDriver) CurrentStep(context.Context) (string, error) {
	if d.idx >= len(d.pages) {
		return d.pages[len(d.pages)-1], nil
	}
	return d.pages[d.idx], nil
}

func (d *scriptedDriver) Fill(_ context.Context, ref, value string) error {
	d.fills = append(d.fills, fillCall{ref: ref, value: value})
	return nil
}

func (d *scriptedDriver) Click(_ context.Context, ref string) error {
	d.clicks = append(d.clicks, ref)
	if ref == d.advanceRef {
		d.idx++
	}
	return nil
}

func (d *scriptedDriver) Upload(_ context.Context, ref, path string) error {
	d.uploads = append(d.uploads, fillCall{ref: ref, value: path})
	return nil
}

func (d *scriptedDriver) WaitForRender(context.Context, time.Duration) error { return nil }

func (d *scriptedDriver) Close() error { return nil }

// fakeOracle answers by element kind and counts invocations.
type fakeOracle struct {
	numericReply string
	choiceReply  string
	textReply    string
	refineReply  string
	bounds       *oracle.NumericConfig

	answerCalls int
	refineCalls int
}

func (f *fakeOracle) Answer(_ context.Context, el *forms.Element) (string, error) {
	f.answerCalls++
	switch el.Kind {
	case forms.KindNumericText:
		return f.numericReply, nil
	case forms.KindSingleChoice, forms.KindMultiChoiceDropdown:
		return f.choiceReply, nil
	default:
		return f.textReply, nil
	}
}

func (f *fakeOracle) Refine(_ context.Context, _ *forms.Element, _, _ string) (string, error) {
	f.refineCalls++
	return f.refineReply, nil
}

func (f *fakeOracle) NumericBounds(_ context.Context, _ *forms.Element, _ string, base oracle.NumericConfig) oracle.NumericConfig {
	if f.bounds != nil {
		return *f.bounds
	}
	return base
}

func newTestSession(driver *scriptedDriver, store answers.Store, o Oracle) *ApplicationSession {
	return New(Options{
		Driver: driver,
		Store:  store,
		Oracle: o,
		Limits: Limits{
			Numeric:    oracle.NumericConfig{Default: 3, Min: 1, Max: 99},
			RetryCap:   2,
			ScanPasses: 3,
		},
	})
}

func TestSessionSubmitsTwoStepForm(t *testing.T) {
	driver := &scriptedDriver{pages: []string{numericStep, choiceStep}, advanceRef: "#next-btn"}
	store := answers.NewMemoryStore()
	o := &fakeOracle{numericReply: "I have 4 years of Go.", choiceReply: "Yes"}

	result, err := newTestSession(driver, store, o).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	assert.Equal(t, 2, result.Steps)

	assert.Contains(t, driver.fills, fillCall{ref: "#years", value: "4"})
	assert.Contains(t, driver.clicks, `input[name="auth"][value="yes"]`)
	assert.Equal(t, "#submit-btn", driver.clicks[len(driver.clicks)-1], "submit is the final click")

	// Both generated answers were persisted under their signatures.
	got, ok, err := store.Lookup(context.Background(), forms.Signature("How many years of experience do you have with Go?"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "4", got)

	got, ok, err = store.Lookup(context.Background(), forms.Signature("Are you authorized to work in the United States?"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Yes", got)
}

func TestCachedAnswerSkipsOracle(t *testing.T) {
	driver := &scriptedDriver{pages: []string{numericSubmitStep}}
	store := answers.NewMemoryStore()
	store.Seed([]answers.Record{{
		Signature: forms.Signature("How many years of experience do you have with Go?"),
		Value:     "5",
		Kind:      forms.KindNumericText,
	}})
	o := &fakeOracle{numericReply: "should not be asked"}

	result, err := newTestSession(driver, store, o).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSubmitted, result.Status)
	assert.Equal(t, 0, o.answerCalls, "cached signature never re-invokes the oracle")
	assert.Contains(t, driver.fills, fillCall{ref: "#years", value: "5"})
}

func TestCleanPassTrace(t *testing.T) {
	driver := &scriptedDriver{pages: []string{numericSubmitStep}}
	sess := newTestSession(driver, answers.NewMemoryStore(), &fakeOracle{numericReply: "4"})

	_, err := sess.Run(context.Background())
	require.NoError(t, err)

	trace := sess.Trace()
	counts := map[State]int{}
	for _, state := range trace {
		counts[state]++
	}
	assert.Equal(t, 1, counts[StateScanning])
	assert.Equal(t, 1, counts[StateResolving])
	assert.Equal(t, 1, counts[StateFilling])
	assert.Equal(t, 1, counts[StateValidating])
	assert.Equal(t, 1, counts[StateSubmitting])
	assert.Zero(t, counts[StateRetrying], "clean pass never retries")
	assert.Zero(t, counts[StateAdvancing], "single-step form submits directly")
}

func TestValidationExhaustionAbortsWithoutSubmit(t *testing.T) {
	driver := &scriptedDriver{pages: []string{failingNumericStep}}
	o := &fakeOracle{numericReply: "150", bounds: &oracle.NumericConfig{Default: 3, Min: 0, Max: 50}}
	sess := newTestSession(driver, answers.NewMemoryStore(), o)

	result, err := sess.Run(context.Background())
	require.Error(t, err)
	var aborted *AbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, StatusAborted, result.Status)

	assert.NotContains(t, driver.clicks, "#submit-btn", "aborted sessions never click submit")
	assert.Contains(t, sess.Trace(), StateRetrying)

	// The retried value was re-bounded by the error text.
	assert.Contains(t, driver.fills, fillCall{ref: "#years", value: "50"})
}

func TestStepCeilingAborts(t *testing.T) {
	// A form whose next button never leads to a submit step.
	driver := &scriptedDriver{pages: []string{numericStep, numericStep}, advanceRef: "#next-btn"}
	store := answers.NewMemoryStore()
	sess := New(Options{
		Driver: driver,
		Store:  store,
		Oracle: &fakeOracle{numericReply: "4"},
		Limits: Limits{
			Numeric:     oracle.NumericConfig{Default: 3, Min: 1, Max: 99},
			RetryCap:    2,
			ScanPasses:  2,
			StepCeiling: 3,
		},
	})

	result, err := sess.Run(context.Background())
	require.Error(t, err)
	var aborted *AbortedError
	require.ErrorAs(t, err, &aborted)
	assert.Equal(t, "step ceiling reached", aborted.Reason)
	assert.Equal(t, StatusAborted, result.Status)
	assert.NotContains(t, driver.clicks, "#submit-btn")
}

func TestRunnerStopsAtLimit(t *testing.T) {
	site := map[string][]string{
		"https://jobs.example.com/1": {numericSubmitStep},
		"https://jobs.example.com/2": {numericSubmitStep},
		"https://jobs.example.com/3": {numericSubmitStep},
	}
	driver := &scriptedDriver{site: site}
	store := answers.NewMemoryStore()

	runner := NewRunner(driver, 2, false, func() *ApplicationSession {
		return newTestSession(driver, store, &fakeOracle{numericReply: "4"})
	}, nil)

	submitted, err := runner.Run(context.Background(), []string{
		"https://jobs.example.com/1",
		"https://jobs.example.com/2",
		"https://jobs.example.com/3",
	})
	assert.ErrorIs(t, err, ErrApplicationLimit)
	assert.Equal(t, 2, submitted)
}

func TestRunnerSkipsAbortedApplications(t *testing.T) {
	site := map[string][]string{
		"https://jobs.example.com/bad":  {failingNumericStep},
		"https://jobs.example.com/good": {numericSubmitStep},
	}
	driver := &scriptedDriver{site: site}
	store := answers.NewMemoryStore()

	runner := NewRunner(driver, 0, false, func() *ApplicationSession {
		return newTestSession(driver, store, &fakeOracle{numericReply: "4"})
	}, nil)

	submitted, err := runner.Run(context.Background(), []string{
		"https://jobs.example.com/bad",
		"https://jobs.example.com/good",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, submitted, "one aborted, one submitted")
}
