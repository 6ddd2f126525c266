package oracle

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/lukalafaye/LinkedinAutoApply/internal/forms"
	"github.com/lukalafaye/LinkedinAutoApply/internal/observability"
	"github.com/lukalafaye/LinkedinAutoApply/internal/prompts"
	"github.com/lukalafaye/LinkedinAutoApply/internal/resume"
)

// answerPrompts holds every template the bridge renders.
var answerPrompts = prompts.MustSet("answers.json")

// JobContext describes the posting currently being applied to. It grounds
// free-text and cover-letter prompts.
type JobContext struct {
	Title       string
	Company     string
	Description string
}

func (j JobContext) summary() string {
	var b strings.Builder
	if j.Title != "" {
		b.WriteString(j.Title)
	}
	if j.Company != "" {
		if b.Len() > 0 {
			b.WriteString(" at ")
		}
		b.WriteString(j.Company)
	}
	if j.Description != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(j.Description)
	}
	if b.Len() == 0 {
		return "(no job details available)"
	}
	return b.String()
}

// Bridge turns classified form elements into answers by prompting the
// oracle with the relevant slice of the candidate profile.
type Bridge struct {
	client  Client
	profile resume.Provider
	usage   *observability.Accountant
	timeout time.Duration
	job     JobContext
}

// NewBridge creates a Bridge. usage may be nil, in which case calls are not
// accounted.
func NewBridge(client Client, profile resume.Provider, usage *observability.Accountant, timeout time.Duration) *Bridge {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Bridge{
		client:  client,
		profile: profile,
		usage:   usage,
		timeout: timeout,
	}
}

// SetJob records the posting the current session is applying to.
func (b *Bridge) SetJob(job JobContext) {
	b.job = job
}

// Answer produces an answer for an unanswered element. Choice elements are
// resolved to one of their option texts; numeric elements return the raw
// oracle reply, which the caller pipes through ExtractNumber.
func (b *Bridge) Answer(ctx context.Context, el *forms.Element) (string, error) {
	switch el.Kind {
	case forms.KindSingleChoice, forms.KindMultiChoiceDropdown:
		return b.answerFromOptions(ctx, el)
	case forms.KindNumericText:
		return b.answerNumeric(ctx, el)
	default:
		return b.answerFreeText(ctx, el)
	}
}

// Refine asks the oracle to correct a previously rejected answer, given the
// form's inline error message. Choice elements go back through option
// selection so the result stays verbatim.
func (b *Bridge) Refine(ctx context.Context, el *forms.Element, previous, errorText string) (string, error) {
	switch el.Kind {
	case forms.KindSingleChoice, forms.KindMultiChoiceDropdown:
		return b.answerFromOptions(ctx, el)
	}

	contextText, _, err := b.contextFor(ctx, el.Label)
	if err != nil {
		return "", err
	}
	prompt := answerPrompts.MustRender("refine-answer", map[string]string{
		"Question": el.Label,
		"Previous": previous,
		"Error":    errorText,
		"Context":  contextText,
	})
	reply, err := b.complete(ctx, prompt, TierStandard)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply.Text), nil
}

// NumericBounds re-derives the accepted integer range from a validation
// error message. On any failure the base bounds are returned unchanged.
func (b *Bridge) NumericBounds(ctx context.Context, el *forms.Element, errorText string, base NumericConfig) NumericConfig {
	prompt := answerPrompts.MustRender("numeric-range", map[string]string{
		"Question": el.Label,
		"Error":    errorText,
	})
	reply, err := b.complete(ctx, prompt, TierLite)
	if err != nil {
		return base
	}
	parts := strings.SplitN(strings.TrimSpace(reply.Text), ",", 2)
	if len(parts) != 2 {
		return base
	}
	min, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return base
	}
	max, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || max < min {
		return base
	}
	revised := base
	revised.Min = min
	revised.Max = max
	if revised.Default < min {
		revised.Default = min
	}
	if revised.Default > max {
		revised.Default = max
	}
	return revised
}

// CoverLetter generates a short cover letter for the current job from the
// full candidate profile.
func (b *Bridge) CoverLetter(ctx context.Context) (string, error) {
	profileText, err := b.profile.Full()
	if err != nil {
		return "", fmt.Errorf("failed to render profile: %w", err)
	}
	prompt := answerPrompts.MustRender("cover-letter", map[string]string{
		"Profile": profileText,
		"Job":     b.job.summary(),
	})
	reply, err := b.complete(ctx, prompt, TierAdvanced)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply.Text), nil
}

func (b *Bridge) answerFromOptions(ctx context.Context, el *forms.Element) (string, error) {
	candidates := make([]string, 0, len(el.Options))
	for _, opt := range el.Options {
		if !opt.Placeholder {
			candidates = append(candidates, opt.Text)
		}
	}
	if len(candidates) == 0 {
		return "", &OracleUnavailableError{Message: fmt.Sprintf("element %q has no selectable options", el.Label)}
	}
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	contextText, _, err := b.contextFor(ctx, el.Label)
	if err != nil {
		return "", err
	}
	optionList := "- " + strings.Join(candidates, "\n- ")

	prompt := answerPrompts.MustRender("answer-options", map[string]string{
		"Context":  contextText,
		"Question": el.Label,
		"Options":  optionList,
	})
	reply, err := b.complete(ctx, prompt, TierLite)
	if err != nil {
		return "", err
	}
	if match, ok := matchOption(reply.Text, candidates); ok {
		return match, nil
	}

	// One stricter retry before falling back.
	strict := answerPrompts.MustRender("answer-options-strict", map[string]string{
		"Question": el.Label,
		"Options":  optionList,
	})
	reply, err = b.complete(ctx, strict, TierLite)
	if err == nil {
		if match, ok := matchOption(reply.Text, candidates); ok {
			return match, nil
		}
	}
	fallback, _ := el.FirstRealOption()
	return fallback.Text, nil
}

func (b *Bridge) answerFreeText(ctx context.Context, el *forms.Element) (string, error) {
	contextText, topic, err := b.contextFor(ctx, el.Label)
	if err != nil {
		return "", err
	}
	prompt := answerPrompts.MustRender("answer-freetext", map[string]string{
		"Job":      b.job.summary(),
		"Topic":    string(topic),
		"Context":  contextText,
		"Question": el.Label,
	})
	reply, err := b.complete(ctx, prompt, TierStandard)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply.Text), nil
}

func (b *Bridge) answerNumeric(ctx context.Context, el *forms.Element) (string, error) {
	contextText, err := b.profile.Slice(resume.TopicExperienceDetails)
	if err != nil {
		return "", fmt.Errorf("failed to render experience slice: %w", err)
	}
	defaultText := "0"
	if el.Constraints.Min != nil {
		defaultText = strconv.Itoa(*el.Constraints.Min)
	}
	prompt := answerPrompts.MustRender("answer-numeric", map[string]string{
		"Context":  contextText,
		"Question": el.Label,
		"Default":  defaultText,
	})
	reply, err := b.complete(ctx, prompt, TierLite)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply.Text), nil
}

// contextFor classifies the question into a profile topic and renders that
// slice. Classification failures fall back to the experience slice rather
// than aborting the answer.
func (b *Bridge) contextFor(ctx context.Context, question string) (string, resume.Topic, error) {
	topic := b.classifyTopic(ctx, question)
	slice, err := b.profile.Slice(topic)
	if err != nil {
		return "", topic, fmt.Errorf("failed to render profile slice %s: %w", topic, err)
	}
	return slice, topic, nil
}

func (b *Bridge) classifyTopic(ctx context.Context, question string) resume.Topic {
	names := make([]string, 0, len(resume.AllTopics()))
	for _, t := range resume.AllTopics() {
		names = append(names, string(t))
	}
	prompt := answerPrompts.MustRender("topic-classify", map[string]string{
		"Question": question,
		"Topics":   strings.Join(names, "\n"),
	})
	reply, err := b.complete(ctx, prompt, TierLite)
	if err != nil {
		return resume.TopicExperienceDetails
	}
	token := strings.ToLower(strings.TrimSpace(reply.Text))
	if topic, ok := resume.ParseTopic(token); ok {
		return topic
	}
	// Tolerate a chatty reply that still names exactly one topic.
	var found resume.Topic
	matches := 0
	for _, t := range resume.AllTopics() {
		if strings.Contains(token, string(t)) {
			found = t
			matches++
		}
	}
	if matches == 1 {
		return found
	}
	return resume.TopicExperienceDetails
}

// complete runs one oracle call under the bridge timeout and records its
// token usage. Client errors are wrapped as OracleUnavailableError.
func (b *Bridge) complete(ctx context.Context, prompt string, tier ModelTier) (Reply, error) {
	callCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	reply, err := b.client.Complete(callCtx, prompt, tier)
	if err != nil {
		return Reply{}, &OracleUnavailableError{Message: "completion failed", Cause: err}
	}
	if b.usage != nil {
		b.usage.RecordCall(reply.Model, prompt, reply.Text, reply.InputTokens, reply.OutputTokens)
	}
	return reply, nil
}

// matchOption post-validates an oracle reply against the allowed options.
// An exact case-insensitive match wins; otherwise a reply that contains
// exactly one of the options as a whole word is accepted.
func matchOption(reply string, options []string) (string, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(reply), `"'`)))
	for _, opt := range options {
		if cleaned == strings.ToLower(opt) {
			return opt, true
		}
	}
	var found string
	matches := 0
	for _, opt := range options {
		if containsPhrase(cleaned, strings.ToLower(opt)) {
			found = opt
			matches++
		}
	}
	if matches == 1 {
		return found, true
	}
	return "", false
}

// containsPhrase reports whether phrase occurs in text on word boundaries,
// so an option "no" does not hide inside "know" or "nothing".
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	for idx := 0; idx <= len(text)-len(phrase); {
		j := strings.Index(text[idx:], phrase)
		if j < 0 {
			return false
		}
		start := idx + j
		end := start + len(phrase)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		idx = start + 1
	}
	return false
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func boundaryAfter(text string, i int) bool {
	if i == len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
