package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukalafaye/LinkedinAutoApply/internal/forms"
	"github.com/lukalafaye/LinkedinAutoApply/internal/resume"
)

// fakeClient replays a scripted sequence of replies and records the prompts
// it was asked.
type fakeClient struct {
	replies []string
	err     error
	prompts []string
}

func (f *fakeClient) Complete(_ context.Context, prompt string, _ ModelTier) (Reply, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return Reply{}, f.err
	}
	if len(f.replies) == 0 {
		return Reply{Text: "", Model: "fake"}, nil
	}
	text := f.replies[0]
	f.replies = f.replies[1:]
	return Reply{Text: text, Model: "fake", InputTokens: 10, OutputTokens: 5}, nil
}

func (f *fakeClient) Close() error { return nil }

type fakeProvider struct{}

func (fakeProvider) Slice(topic resume.Topic) (string, error) {
	return "slice:" + string(topic), nil
}

func (fakeProvider) Full() (string, error) { return "full profile", nil }

func choiceElement(label string, options ...string) *forms.Element {
	el := &forms.Element{
		Kind:      forms.KindSingleChoice,
		Label:     label,
		Signature: forms.Signature(label),
	}
	el.Options = append(el.Options, forms.Option{Text: "Select an option", Placeholder: true})
	for _, opt := range options {
		el.Options = append(el.Options, forms.Option{Text: opt})
	}
	return el
}

func TestAnswerChoiceChattyReplyStillMatches(t *testing.T) {
	client := &fakeClient{replies: []string{
		"legal_authorization", // topic routing
		"I would say Yes.",    // option pick
	}}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)

	got, err := bridge.Answer(context.Background(), choiceElement("Are you authorized to work in the US?", "Yes", "No"))
	require.NoError(t, err)
	assert.Equal(t, "Yes", got)
	assert.Len(t, client.prompts, 2)
}

func TestMatchOptionWholeWordsOnly(t *testing.T) {
	// "No" must not hide inside "know" or "nothing".
	_, ok := matchOption("I know nothing about that", []string{"Yes", "No"})
	assert.False(t, ok)

	got, ok := matchOption("I know Go well, so yes", []string{"Yes", "No"})
	require.True(t, ok)
	assert.Equal(t, "Yes", got)

	got, ok = matchOption("probably on-site, if I had to pick", []string{"Remote", "On-site"})
	require.True(t, ok)
	assert.Equal(t, "On-site", got)

	_, ok = matchOption("either yes or no depending on the team", []string{"Yes", "No"})
	assert.False(t, ok, "two distinct options in one reply stay ambiguous")
}

func TestAnswerChoiceStrictRetryThenFallback(t *testing.T) {
	client := &fakeClient{replies: []string{
		"work_preferences",
		"both of them apply", // matches neither option uniquely
		"still can't decide", // strict retry also fails
	}}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)

	got, err := bridge.Answer(context.Background(), choiceElement("Preferred location?", "Remote", "On-site"))
	require.NoError(t, err)
	assert.Equal(t, "Remote", got, "falls back to the first real option")
	assert.Len(t, client.prompts, 3)
}

func TestAnswerChoiceSingleRealOptionSkipsOracle(t *testing.T) {
	client := &fakeClient{}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)

	got, err := bridge.Answer(context.Background(), choiceElement("Do you agree?", "I agree"))
	require.NoError(t, err)
	assert.Equal(t, "I agree", got)
	assert.Empty(t, client.prompts)
}

func TestAnswerNumericReturnsRawReply(t *testing.T) {
	client := &fakeClient{replies: []string{"I have about 4 years of that."}}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)

	el := &forms.Element{
		Kind:      forms.KindNumericText,
		Label:     "Years of experience with Go?",
		Signature: forms.Signature("Years of experience with Go?"),
	}
	got, err := bridge.Answer(context.Background(), el)
	require.NoError(t, err)
	assert.Equal(t, "I have about 4 years of that.", got)
	assert.Equal(t, 4, ExtractNumber(got, NumericConfig{Default: 3, Min: 1, Max: 99}))
}

func TestAnswerFreeTextUsesTopicSlice(t *testing.T) {
	client := &fakeClient{replies: []string{
		"salary_expectations",
		"My expected salary is 85000 EUR.",
	}}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)

	el := &forms.Element{
		Kind:      forms.KindFreeText,
		Label:     "What are your salary expectations?",
		Signature: forms.Signature("What are your salary expectations?"),
	}
	got, err := bridge.Answer(context.Background(), el)
	require.NoError(t, err)
	assert.Equal(t, "My expected salary is 85000 EUR.", got)
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "slice:salary_expectations")
}

func TestAnswerWrapsClientFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("quota exceeded")}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)

	el := &forms.Element{Kind: forms.KindFreeText, Label: "Tell us about yourself"}
	_, err := bridge.Answer(context.Background(), el)
	require.Error(t, err)
	var unavailable *OracleUnavailableError
	assert.ErrorAs(t, err, &unavailable)
}

func TestNumericBoundsParsesRange(t *testing.T) {
	client := &fakeClient{replies: []string{"0,50"}}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)

	el := &forms.Element{Kind: forms.KindNumericText, Label: "Years of experience?"}
	base := NumericConfig{Default: 3, Min: 1, Max: 99}
	got := bridge.NumericBounds(context.Background(), el, "Enter a number between 0 and 50", base)
	assert.Equal(t, 0, got.Min)
	assert.Equal(t, 50, got.Max)
	assert.Equal(t, 3, got.Default)
}

func TestNumericBoundsKeepsBaseOnGarbage(t *testing.T) {
	base := NumericConfig{Default: 3, Min: 1, Max: 99}
	el := &forms.Element{Kind: forms.KindNumericText, Label: "Years?"}

	for _, reply := range []string{"between zero and fifty", "10", "50,0"} {
		client := &fakeClient{replies: []string{reply}}
		bridge := NewBridge(client, fakeProvider{}, nil, 0)
		assert.Equal(t, base, bridge.NumericBounds(context.Background(), el, "whatever", base), "reply %q", reply)
	}
}

func TestRefineFreeText(t *testing.T) {
	client := &fakeClient{replies: []string{
		"personal_information",
		"+33612345678",
	}}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)

	el := &forms.Element{Kind: forms.KindFreeText, Label: "Phone number"}
	got, err := bridge.Refine(context.Background(), el, "0612345678", "Enter a valid international phone number")
	require.NoError(t, err)
	assert.Equal(t, "+33612345678", got)
	require.Len(t, client.prompts, 2)
	assert.Contains(t, client.prompts[1], "Enter a valid international phone number")
}

func TestCoverLetterUsesFullProfileAndJob(t *testing.T) {
	client := &fakeClient{replies: []string{"Dear hiring team, ..."}}
	bridge := NewBridge(client, fakeProvider{}, nil, 0)
	bridge.SetJob(JobContext{Title: "Backend Engineer", Company: "Acme"})

	got, err := bridge.CoverLetter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dear hiring team, ...", got)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "full profile")
	assert.Contains(t, client.prompts[0], "Backend Engineer at Acme")
}
