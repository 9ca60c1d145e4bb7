package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-secret-0123456789abcdef-0123456789"
	testRefreshSecret = "refresh-secret-0123456789abcdef-012345678"
)

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec(testAccessSecret, testRefreshSecret, 30*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return c
}

func TestNewCodecRejectsShortSecrets(t *testing.T) {
	_, err := NewCodec("short", testRefreshSecret, time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewCodec(testAccessSecret, "short", time.Minute, time.Hour)
	require.Error(t, err)

	_, err = NewCodec("", "", time.Minute, time.Hour)
	require.Error(t, err)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Issue("alex", TokenAccess, time.Minute)
	require.NoError(t, err)

	subject, err := c.Verify(tok, TokenAccess)
	require.NoError(t, err)
	require.Equal(t, "alex", subject)
}

func TestTokenTypeIsolation(t *testing.T) {
	c := newTestCodec(t)

	access, err := c.Issue("alex", TokenAccess, time.Minute)
	require.NoError(t, err)
	refresh, err := c.Issue("alex", TokenRefresh, time.Minute)
	require.NoError(t, err)

	// An access token must never pass where a refresh token is
	// expected, and vice versa.
	_, err = c.Verify(access, TokenRefresh)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = c.Verify(refresh, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredTokenRejected(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Issue("alex", TokenAccess, 0)
	require.NoError(t, err)
	_, err = c.Verify(tok, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	tok, err = c.Issue("alex", TokenAccess, -time.Hour)
	require.NoError(t, err)
	_, err = c.Verify(tok, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	c := newTestCodec(t)

	tok, err := c.Issue("alex", TokenAccess, time.Minute)
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + ".AAAA" + parts[2][4:]
	_, err = c.Verify(tampered, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestMalformedTokenRejected(t *testing.T) {
	c := newTestCodec(t)

	for _, raw := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := c.Verify(raw, TokenAccess)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", raw)
	}
}

func TestDifferentSecretRejected(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec(
		"another-access-secret-0123456789abcdef-01",
		"another-refresh-secret-0123456789abcdef-0",
		time.Minute, time.Hour)
	require.NoError(t, err)

	tok, err := c.Issue("alex", TokenAccess, time.Minute)
	require.NoError(t, err)
	_, err = other.Verify(tok, TokenAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuePair(t *testing.T) {
	c := newTestCodec(t)

	pair, err := c.IssuePair("alex")
	require.NoError(t, err)
	require.NotEqual(t, pair.Access, pair.Refresh)

	subject, err := c.Verify(pair.Access, TokenAccess)
	require.NoError(t, err)
	require.Equal(t, "alex", subject)

	subject, err = c.Verify(pair.Refresh, TokenRefresh)
	require.NoError(t, err)
	require.Equal(t, "alex", subject)
}
