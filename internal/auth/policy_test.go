package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyAcceptsStrongPassword(t *testing.T) {
	p := DefaultPasswordPolicy()
	require.True(t, p.IsStrong("Str0ng!pass"))
	require.Empty(t, p.Issues("Str0ng!pass"))
}

func TestPolicyItemizesIssues(t *testing.T) {
	p := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		wantHits []string
	}{
		{"too short", "Ab1!", []string{"at least 8 characters"}},
		{"no uppercase", "weak1pass!", []string{"uppercase"}},
		{"no lowercase", "WEAK1PASS!", []string{"lowercase"}},
		{"no digit", "Weakpass!", []string{"digit"}},
		{"no symbol", "Weak1pass", []string{"symbol"}},
		{"empty", "", []string{"at least 8 characters", "uppercase", "lowercase", "digit", "symbol"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := p.Issues(tc.password)
			require.False(t, p.IsStrong(tc.password))
			for _, want := range tc.wantHits {
				found := false
				for _, issue := range issues {
					if strings.Contains(issue, want) {
						found = true
					}
				}
				assert.True(t, found, "expected an issue mentioning %q, got %v", want, issues)
			}
		})
	}
}

func TestPolicyConfigurableMinLength(t *testing.T) {
	p := PasswordPolicy{MinLength: 12}
	require.False(t, p.IsStrong("Sh0rt!pass")) // 10 chars, strong otherwise
	require.True(t, p.IsStrong("L0ng!password"))
}
