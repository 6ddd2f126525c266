package session

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lukalafaye/LinkedinAutoApply/internal/answers"
	"github.com/lukalafaye/LinkedinAutoApply/internal/browser"
	"github.com/lukalafaye/LinkedinAutoApply/internal/files"
	"github.com/lukalafaye/LinkedinAutoApply/internal/forms"
	"github.com/lukalafaye/LinkedinAutoApply/internal/observability"
	"github.com/lukalafaye/LinkedinAutoApply/internal/oracle"
)

// Oracle is the subset of the answer bridge the controller needs.
// *oracle.Bridge satisfies it.
type Oracle interface {
	Answer(ctx context.Context, el *forms.Element) (string, error)
	Refine(ctx context.Context, el *forms.Element, previous, errorText string) (string, error)
	NumericBounds(ctx context.Context, el *forms.Element, errorText string, base oracle.NumericConfig) oracle.NumericConfig
}

// Limits bounds a session's work per step and overall.
type Limits struct {
	Numeric       oracle.NumericConfig
	RetryCap      int
	ScanPasses    int
	StepCeiling   int
	RenderTimeout time.Duration
}

// DefaultLimits returns the production limits.
func DefaultLimits() Limits {
	return Limits{
		Numeric:       oracle.NumericConfig{Default: 3, Min: 1, Max: 99},
		RetryCap:      3,
		ScanPasses:    5,
		StepCeiling:   24,
		RenderTimeout: 30 * time.Second,
	}
}

// stepController resolves, fills and validates one form step.
type stepController struct {
	driver      browser.Driver
	store       answers.Store
	oracle      Oracle
	provisioner files.Provisioner
	limits      Limits
	printer     *observability.Printer
	verbose     bool
}

// termsMarkers flag checkboxes that must be ticked to proceed.
var termsMarkers = []string{"terms", "conditions", "privacy", "agree", "consent", "acknowledge"}

func isTermsCheckbox(label string) bool {
	lower := strings.ToLower(label)
	for _, marker := range termsMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// cacheable reports whether answers for this kind are worth remembering.
// Dates, uploads and checkboxes are derived, not generated.
func cacheable(kind forms.ElementKind) bool {
	switch kind {
	case forms.KindFreeText, forms.KindNumericText, forms.KindSingleChoice, forms.KindMultiChoiceDropdown:
		return true
	}
	return false
}

// runStep drives one step to a filled, validated state and returns its
// final scan. Unresolvable elements are left unanswered; only validation
// exhaustion fails the step.
func (c *stepController) runStep(ctx context.Context, number int, observe func(State)) (*forms.Step, error) {
	observe(StateScanning)
	step, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	if c.printer != nil {
		c.printer.PrintStep(number, step)
	}
	for _, reason := range step.Skipped {
		if c.verbose {
			log.Printf("[STEP %d] skipped control: %s", number, reason)
		}
	}

	// Filling can reveal new elements; re-scan until the step is stable.
	filled := make(map[string]bool)
	for pass := 0; pass < c.limits.ScanPasses; pass++ {
		progressed := c.fillPass(ctx, step, filled, observe)
		step, err = c.scan(ctx)
		if err != nil {
			return nil, err
		}
		if !progressed && !hasUnanswered(step, filled) {
			break
		}
	}

	observe(StateValidating)
	step, err = c.validate(ctx, step, observe)
	if err != nil {
		return nil, err
	}
	return step, nil
}

func (c *stepController) scan(ctx context.Context) (*forms.Step, error) {
	html, err := c.driver.CurrentStep(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture step: %w", err)
	}
	return forms.ScanStep(html)
}

func hasUnanswered(step *forms.Step, filled map[string]bool) bool {
	for i := range step.Elements {
		el := &step.Elements[i]
		if !el.Answered() && !filled[el.Key()] {
			return true
		}
	}
	return false
}

// fillPass resolves and fills every unanswered element once. Returns true
// when at least one element was filled.
func (c *stepController) fillPass(ctx context.Context, step *forms.Step, filled map[string]bool, observe func(State)) bool {
	progressed := false
	for i := range step.Elements {
		el := &step.Elements[i]
		if el.Answered() || filled[el.Key()] {
			continue
		}

		observe(StateResolving)
		value, fromCache, err := c.resolve(ctx, el)
		if err != nil {
			// Element-level failures are soft: the element stays
			// unanswered and validation decides whether the step
			// can still advance.
			log.Printf("[RESOLVE] element %s left unanswered: %v", el.Key(), err)
			filled[el.Key()] = true
			continue
		}
		if c.printer != nil {
			c.printer.PrintResolution(el, value, fromCache)
		}

		observe(StateFilling)
		if err := c.fill(ctx, el, value); err != nil {
			log.Printf("[FILL] element %s left unanswered: %v", el.Key(), err)
			filled[el.Key()] = true
			continue
		}

		if !fromCache && cacheable(el.Kind) {
			c.remember(ctx, el, value)
		}
		filled[el.Key()] = true
		progressed = true
	}
	return progressed
}

// resolve produces the value for one element. fromCache reports whether the
// memoized store supplied it.
func (c *stepController) resolve(ctx context.Context, el *forms.Element) (value string, fromCache bool, err error) {
	switch el.Kind {
	case forms.KindDate:
		// Forms expect today's date in mm/dd/yy.
		return time.Now().Format("01/02/06"), false, nil
	case forms.KindFileUpload, forms.KindBooleanCheckbox:
		// Derived at fill time, nothing to generate.
		return "", false, nil
	}

	if cached, ok, lookupErr := c.store.Lookup(ctx, el.Signature); lookupErr == nil && ok {
		if usable(el, cached) {
			return cached, true, nil
		}
	} else if lookupErr != nil && c.verbose {
		log.Printf("[CACHE] lookup failed for %s: %v", el.Signature, lookupErr)
	}

	raw, err := c.oracle.Answer(ctx, el)
	if err != nil {
		return "", false, err
	}
	if el.Kind == forms.KindNumericText {
		return strconv.Itoa(oracle.ExtractNumber(raw, c.numericConfig(el))), false, nil
	}
	return raw, false, nil
}

// usable checks a cached value still fits the element: choice answers must
// match a currently offered option.
func usable(el *forms.Element, value string) bool {
	if value == "" {
		return false
	}
	switch el.Kind {
	case forms.KindSingleChoice, forms.KindMultiChoiceDropdown:
		_, ok := matchingOption(el, value)
		return ok
	}
	return true
}

func matchingOption(el *forms.Element, value string) (forms.Option, bool) {
	for _, opt := range el.Options {
		if opt.Placeholder {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(opt.Text), strings.TrimSpace(value)) {
			return opt, true
		}
	}
	return forms.Option{}, false
}

// numericConfig narrows the session bounds with the element's own min/max.
func (c *stepController) numericConfig(el *forms.Element) oracle.NumericConfig {
	cfg := c.limits.Numeric
	if el.Constraints.Min != nil {
		cfg.Min = *el.Constraints.Min
	}
	if el.Constraints.Max != nil {
		cfg.Max = *el.Constraints.Max
	}
	if cfg.Default < cfg.Min {
		cfg.Default = cfg.Min
	}
	if cfg.Default > cfg.Max {
		cfg.Default = cfg.Max
	}
	return cfg
}

// fill writes one resolved value into the page.
func (c *stepController) fill(ctx context.Context, el *forms.Element, value string) error {
	switch el.Kind {
	case forms.KindSingleChoice:
		opt, ok := matchingOption(el, value)
		if !ok {
			return &ElementFailedError{Key: el.Key(), Message: fmt.Sprintf("no option matching %q", value)}
		}
		if el.Widget == "select" {
			return c.driver.Fill(ctx, el.Ref, opt.Text)
		}
		return c.driver.Click(ctx, opt.Ref)
	case forms.KindMultiChoiceDropdown:
		opt, ok := matchingOption(el, value)
		if !ok {
			return &ElementFailedError{Key: el.Key(), Message: fmt.Sprintf("no option matching %q", value)}
		}
		return c.driver.Fill(ctx, el.Ref, opt.Text)
	case forms.KindFileUpload:
		kind := files.KindForLabel(el.Label)
		path, err := c.provisioner.Provide(ctx, kind)
		if err != nil {
			return err
		}
		return c.driver.Upload(ctx, el.Ref, path)
	case forms.KindBooleanCheckbox:
		// Tick terms boxes always, others only when required.
		if el.Constraints.Required || isTermsCheckbox(el.Label) {
			return c.driver.Click(ctx, el.Ref)
		}
		return nil
	default:
		return c.driver.Fill(ctx, el.Ref, value)
	}
}

func (c *stepController) remember(ctx context.Context, el *forms.Element, value string) {
	err := c.store.Remember(ctx, answers.Record{
		Signature: el.Signature,
		Value:     value,
		Kind:      el.Kind,
	})
	if err != nil && c.verbose {
		log.Printf("[CACHE] remember failed for %s: %v", el.Signature, err)
	}
}

// validate re-reads the step and refines rejected answers until clean or
// the retry cap is hit.
func (c *stepController) validate(ctx context.Context, step *forms.Step, observe func(State)) (*forms.Step, error) {
	for attempt := 0; ; attempt++ {
		broken := brokenElements(step)
		if len(broken) == 0 {
			return step, nil
		}
		if attempt >= c.limits.RetryCap {
			first := step.Find(broken[0])
			return nil, &ElementFailedError{
				Key:     broken[0],
				Message: fmt.Sprintf("validation still failing after %d retries: %s", c.limits.RetryCap, first.ValidationError),
			}
		}

		observe(StateRetrying)
		for _, key := range broken {
			el := step.Find(key)
			if el == nil {
				continue
			}
			if err := c.retryElement(ctx, el); err != nil {
				// Soft: the attempt is spent, the cap decides.
				log.Printf("[RETRY] element %s: %v", key, err)
			}
		}

		var err error
		step, err = c.scan(ctx)
		if err != nil {
			return nil, err
		}
	}
}

func brokenElements(step *forms.Step) []string {
	var keys []string
	for i := range step.Elements {
		if step.Elements[i].ValidationError != "" {
			keys = append(keys, step.Elements[i].Key())
		}
	}
	return keys
}

// retryElement produces a corrected answer for one rejected element and
// fills it. Numeric rejections re-derive the accepted range from the error
// text before re-extracting.
func (c *stepController) retryElement(ctx context.Context, el *forms.Element) error {
	previous := el.CurrentValue
	var value string

	if el.Kind == forms.KindNumericText {
		bounds := c.oracle.NumericBounds(ctx, el, el.ValidationError, c.numericConfig(el))
		raw, err := c.oracle.Answer(ctx, el)
		if err != nil {
			return err
		}
		value = strconv.Itoa(oracle.ExtractNumber(raw, bounds))
	} else {
		refined, err := c.oracle.Refine(ctx, el, previous, el.ValidationError)
		if err != nil {
			return err
		}
		value = refined
	}

	if err := c.fill(ctx, el, value); err != nil {
		return err
	}
	if cacheable(el.Kind) {
		c.remember(ctx, el, value)
	}
	return nil
}
