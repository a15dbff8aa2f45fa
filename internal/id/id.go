// Package id parses and formats the identifiers used on the command line.
package id

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxNationalID is the largest national ID (DNI) accepted.
const MaxNationalID = 99_999_999

// ParseNationalID parses a DNI written plain ("29857643") or with thousands
// dots ("29.857.643").
func ParseNationalID(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ".") {
		groups := strings.Split(s, ".")
		for i, g := range groups {
			if (i > 0 && len(g) != 3) || g == "" {
				return 0, fmt.Errorf("invalid national ID format: %q", s)
			}
		}
		s = strings.Join(groups, "")
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid national ID %q: %w", s, err)
	}
	if n <= 0 || n > MaxNationalID {
		return 0, fmt.Errorf("national ID %d out of range 1..%d", n, MaxNationalID)
	}
	return n, nil
}

// FormatNationalID returns a DNI with thousands dots: 29857643 -> "29.857.643".
func FormatNationalID(n int64) string {
	digits := strconv.FormatInt(n, 10)
	if n < 0 || len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// ParseAccountNumber parses a positive account number.
func ParseAccountNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account number %q: %w", s, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("account number must be positive, got %d", n)
	}
	return n, nil
}
