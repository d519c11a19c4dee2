package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"85000", 85000},
		{"85,000", 85000},
		{"85 000 QAR", 85000},
		{"$1,250,000", 1250000},
		{"0", 0},
		{"007", 7},
	}
	for _, tt := range tests {
		got, err := ParsePrice(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParsePriceNoDigits(t *testing.T) {
	for _, in := range []string{"", "abc", "  ", "QAR"} {
		_, err := ParsePrice(in)
		assert.ErrorIs(t, err, ErrNoDigits, "input %q", in)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{85000, "85,000"},
		{1250000, "1,250,000"},
		{-85000, "-85,000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in), "input %d", tt.in)
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	// The form reparses its own formatted output on every keystroke.
	n, err := ParsePrice(FormatPrice(1234567))
	require.NoError(t, err)
	assert.Equal(t, 1234567, n)
}
