// Package phone normalizes phone numbers to E.164 for use as
// conversation keys and gateway recipients.
package phone

import "strings"

// Normalize converts a raw phone number to E.164 format. The rules are
// heuristic and biased towards Pakistani numbers, which is where the
// bulk of inbound traffic originates:
//
//	+923001112233 -> +923001112233
//	923001112233  -> +923001112233
//	03001112233   -> +923001112233
//	3001112233    -> +923001112233
//
// Anything else is stripped to digits and prefixed with "+". The result
// is not validated; a short or garbage input still yields a key. Stored
// conversations are looked up by this value, so the mapping must stay
// stable.
func Normalize(raw string) string {
	if raw == "" {
		return raw
	}

	digits := Digits(raw)

	switch {
	case strings.HasPrefix(digits, "92") && len(digits) >= 12:
		return "+" + digits
	case strings.HasPrefix(digits, "0") && len(digits) == 11:
		return "+92" + digits[1:]
	case len(digits) == 10:
		return "+92" + digits
	default:
		return "+" + digits
	}
}

// Digits strips every non-digit character from s.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
