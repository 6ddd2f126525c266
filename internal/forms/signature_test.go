package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature_NormalizesEquivalentPrompts(t *testing.T) {
	// The same question on different steps or postings must share a cache key.
	variants := []string{
		"How many years of experience do you have with Go?",
		"  How many years of experience do you have with Go?  ",
		"How many years of experience do you have with Go? *",
		"How many years of experience do you have with Go? (Required)",
		"How many years  of experience\ndo you have with Go?",
	}

	want := Signature(variants[0])
	for _, v := range variants {
		assert.Equal(t, want, Signature(v), "variant %q", v)
	}
}

func TestSignature_DistinctPromptsDoNotCollide(t *testing.T) {
	a := Signature("Years of experience with Go")
	b := Signature("Years of experience with Java")
	assert.NotEqual(t, a, b)
}

func TestSignature_StripsPunctuation(t *testing.T) {
	assert.Equal(t, "do you require sponsorship", Signature("Do you require sponsorship?"))
	assert.Equal(t, "salary expectations usd", Signature("Salary expectations (USD):"))
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, IsPlaceholder("Select an option"))
	assert.True(t, IsPlaceholder("Sélectionnez"))
	assert.True(t, IsPlaceholder("Choisissez"))
	assert.True(t, IsPlaceholder(""))
	assert.False(t, IsPlaceholder("Yes"))
	assert.False(t, IsPlaceholder("3"))
}
