package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoDigits is returned when a price input contains no digits at all.
var ErrNoDigits = errors.New("price contains no digits")

// ParsePrice turns user price input into a whole integer. The form
// redisplays prices with thousand separators on every keystroke, so
// the submitted value may look like "85,000" or "85 000 QAR"; every
// non-digit is stripped before parsing.
func ParsePrice(input string) (int, error) {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, ErrNoDigits
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, err
	}
	return n, nil
}

// FormatPrice renders an integer with comma thousand separators, the
// way the listing form and cards display it ("85000" -> "85,000").
func FormatPrice(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
