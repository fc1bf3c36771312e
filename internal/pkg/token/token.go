package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"time"
)

// Kind selects which verification credential Issue produces.
type Kind string

const (
	// KindLink is an unguessable identifier embedded in an emailed URL.
	KindLink Kind = "link"
	// KindOTP is a 6-digit numeric code typed back by the user.
	KindOTP Kind = "otp"
)

// ParseKind validates a configuration value as a token kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLink, KindOTP:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown verification kind %q", s)
	}
}

// Generator issues verification tokens with their expiry. It has no side
// effects; persisting the issued token is the caller's responsibility.
type Generator struct {
	LinkTTL time.Duration
	OTPTTL  time.Duration
}

// Issue returns a fresh token of the given kind and its expiry timestamp.
func (g Generator) Issue(kind Kind) (string, time.Time, error) {
	switch kind {
	case KindLink:
		tok, err := NewLinkToken()
		if err != nil {
			return "", time.Time{}, err
		}
		return tok, time.Now().UTC().Add(g.LinkTTL), nil
	case KindOTP:
		otp, err := NewOTP()
		if err != nil {
			return "", time.Time{}, err
		}
		return otp, time.Now().UTC().Add(g.OTPTTL), nil
	default:
		return "", time.Time{}, fmt.Errorf("unknown verification kind %q", kind)
	}
}

// NewLinkToken generates a cryptographically random 64-character hex token.
func NewLinkToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate link token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewOTP draws a 6-digit code uniformly from [100000, 999999].
func NewOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return strconv.FormatInt(100000+n.Int64(), 10), nil
}
