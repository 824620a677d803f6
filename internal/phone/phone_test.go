package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already e164", "+923001112233", "+923001112233"},
		{"country code no plus", "923001112233", "+923001112233"},
		{"leading zero", "03001112233", "+923001112233"},
		{"bare ten digits", "3001112233", "+923001112233"},
		{"dashes and spaces", "0300-111 2233", "+923001112233"},
		{"parentheses", "(0300) 1112233", "+923001112233"},
		{"whatsapp prefix", "whatsapp:+92 300 1112233", "+923001112233"},
		{"us number", "+14155552671", "+14155552671"},
		{"eleven digits not zero", "14155552671", "+14155552671"},
		{"short number", "12345", "+12345"},
		{"no digits", "abc", "+"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

// Normalizing an already normalized number must not change it, since
// webhook senders are normalized before the engine normalizes them again.
func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"+923001112233",
		"923001112233",
		"03001112233",
		"3001112233",
		"+14155552671",
		"12345",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestDigits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "923001112233", Digits("+92 (300) 111-2233"))
	assert.Equal(t, "", Digits("no digits here"))
}
