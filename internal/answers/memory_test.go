package answers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukalafaye/LinkedinAutoApply/internal/forms"
)

func TestMemoryStore_RememberAndLookup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Remember(ctx, Record{
		Signature: "years of experience with go",
		Value:     "4",
		Kind:      forms.KindNumericText,
	})
	require.NoError(t, err)

	value, ok, err := store.Lookup(ctx, "years of experience with go")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "4", value)
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sig := "do you require sponsorship"

	require.NoError(t, store.Remember(ctx, Record{Signature: sig, Value: "Yes", Kind: forms.KindSingleChoice}))
	require.NoError(t, store.Remember(ctx, Record{Signature: sig, Value: "No", Kind: forms.KindSingleChoice}))

	value, ok, err := store.Lookup(ctx, sig)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "No", value, "a corrected answer overwrites the remembered one")
}

func TestMemoryStore_RefusesPlaceholderValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	sig := "notice period"

	err := store.Remember(ctx, Record{Signature: sig, Value: "Select an option", Kind: forms.KindSingleChoice})
	require.Error(t, err)

	var placeholderErr *ErrPlaceholderValue
	require.ErrorAs(t, err, &placeholderErr)

	_, ok, err := store.Lookup(ctx, sig)
	require.NoError(t, err)
	assert.False(t, ok, "refused placeholder must not be cached")
}

func TestMemoryStore_RememberIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := Record{Signature: "current city", Value: "Paris", Kind: forms.KindFreeText}

	require.NoError(t, store.Remember(ctx, rec))
	require.NoError(t, store.Remember(ctx, rec))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_SeedDropsPlaceholders(t *testing.T) {
	store := NewMemoryStore()
	store.Seed([]Record{
		{Signature: "current city", Value: "Paris", Kind: forms.KindFreeText},
		{Signature: "notice period", Value: "Choisissez", Kind: forms.KindSingleChoice},
		{Signature: "", Value: "orphan", Kind: forms.KindFreeText},
	})
	assert.Equal(t, 1, store.Len())
}
