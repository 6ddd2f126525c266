package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSet_KnownPrompts(t *testing.T) {
	set, err := LoadSet("answers.json")
	require.NoError(t, err)

	for _, key := range []string{
		"topic-classify",
		"answer-options",
		"answer-options-strict",
		"answer-freetext",
		"answer-numeric",
		"refine-answer",
		"numeric-range",
		"cover-letter",
	} {
		prompt, err := set.Render(key, nil)
		require.NoError(t, err, "key %s", key)
		assert.NotEmpty(t, prompt)
	}
}

func TestLoadSet_MissingFile(t *testing.T) {
	_, err := LoadSet("does-not-exist.json")
	assert.Error(t, err)
}

func TestRender_UnknownKey(t *testing.T) {
	set := MustSet("answers.json")
	_, err := set.Render("does-not-exist", nil)
	assert.ErrorContains(t, err, "does-not-exist")
}

func TestRender_Substitution(t *testing.T) {
	set := MustSet("answers.json")
	prompt := set.MustRender("answer-numeric", map[string]string{
		"Context":  "ctx",
		"Question": "Years of Go?",
		"Default":  "3",
	})
	assert.Contains(t, prompt, "Years of Go?")
	assert.Contains(t, prompt, "reply 3")
	assert.NotContains(t, prompt, "{{.")
}

func TestNumericPromptEncodesZeroRule(t *testing.T) {
	prompt := MustSet("answers.json").MustRender("answer-numeric", map[string]string{"Default": "3"})
	assert.Contains(t, prompt, "reply 0, not prose")
}
