package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims and drops empties", input: []string{"  vpn_usage ", "", "  "}, expected: []string{"vpn_usage"}},
		{name: "keeps first-seen order", input: []string{"tor_usage", "new_region", "tor_usage"}, expected: []string{"tor_usage", "new_region"}},
		{name: "preserves case", input: []string{"TOTP", "totp"}, expected: []string{"TOTP", "totp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimLower(t *testing.T) {
	assert.Equal(t, []string{"acme ltd", "globex"}, DedupeAndTrimLower([]string{" ACME Ltd", "acme ltd ", "Globex"}))
}

func TestSortedUnion(t *testing.T) {
	rank := map[string]int{"totp": 0, "webauthn": 1, "sms": 2}

	t.Run("orders by rank and removes repeats", func(t *testing.T) {
		got := SortedUnion(rank, []string{"sms", "totp"}, []string{"webauthn", "totp"})
		assert.Equal(t, []string{"totp", "webauthn", "sms"}, got)
	})

	t.Run("unranked values sort last alphabetically", func(t *testing.T) {
		got := SortedUnion(rank, []string{"zeta", "sms", "alpha"})
		assert.Equal(t, []string{"sms", "alpha", "zeta"}, got)
	})

	t.Run("no sets", func(t *testing.T) {
		assert.Empty(t, SortedUnion(rank))
	})
}
