package auth

import (
	"fmt"
	"strings"
	"unicode"
)

// symbols is the punctuation set that satisfies the special-character
// requirement.
const symbols = `!@#$%^&*(),.?":{}|<>`

// PasswordPolicy is the strength predicate applied to every new
// password, whether set by the user or by an admin. MinLength is
// configurable; the character-class requirements are fixed.
type PasswordPolicy struct {
	MinLength int
}

// DefaultPasswordPolicy requires at least 8 characters.
func DefaultPasswordPolicy() PasswordPolicy { return PasswordPolicy{MinLength: 8} }

// IsStrong reports whether password satisfies the policy.
func (p PasswordPolicy) IsStrong(password string) bool {
	return len(p.Issues(password)) == 0
}

// Issues returns every policy violation in password, phrased for
// user-facing feedback. An empty slice means the password is
// acceptable.
func (p PasswordPolicy) Issues(password string) []string {
	min := p.MinLength
	if min <= 0 {
		min = 8
	}
	var issues []string
	if len(password) < min {
		issues = append(issues, fmt.Sprintf("must be at least %d characters long", min))
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(symbols, r):
			symbol = true
		}
	}
	if !upper {
		issues = append(issues, "must contain an uppercase letter")
	}
	if !lower {
		issues = append(issues, "must contain a lowercase letter")
	}
	if !digit {
		issues = append(issues, "must contain a digit")
	}
	if !symbol {
		issues = append(issues, `must contain a symbol (`+symbols+`)`)
	}
	return issues
}
