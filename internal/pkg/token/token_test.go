package token

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOTP_SixDigitsInRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		otp, err := NewOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestNewLinkToken_HexAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := NewLinkToken()
		require.NoError(t, err)
		require.Len(t, tok, 64)
		_, err = strconv.ParseUint(tok[:16], 16, 64)
		require.NoError(t, err, "token must be hex")
		assert.False(t, seen[tok], "tokens must not repeat")
		seen[tok] = true
	}
}

func TestIssue_OTPExpiry(t *testing.T) {
	g := Generator{LinkTTL: 24 * time.Hour, OTPTTL: 10 * time.Minute}
	before := time.Now().UTC()
	tok, exp, err := g.Issue(KindOTP)
	require.NoError(t, err)
	assert.Len(t, tok, 6)
	assert.WithinDuration(t, before.Add(10*time.Minute), exp, 2*time.Second)
}

func TestIssue_LinkExpiry(t *testing.T) {
	g := Generator{LinkTTL: 24 * time.Hour, OTPTTL: 10 * time.Minute}
	before := time.Now().UTC()
	tok, exp, err := g.Issue(KindLink)
	require.NoError(t, err)
	assert.Len(t, tok, 64)
	assert.WithinDuration(t, before.Add(24*time.Hour), exp, 2*time.Second)
}

func TestIssue_UnknownKind(t *testing.T) {
	g := Generator{}
	_, _, err := g.Issue(Kind("sms"))
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("link")
	require.NoError(t, err)
	assert.Equal(t, KindLink, k)

	k, err = ParseKind("otp")
	require.NoError(t, err)
	assert.Equal(t, KindOTP, k)

	_, err = ParseKind("carrier-pigeon")
	assert.Error(t, err)
}
