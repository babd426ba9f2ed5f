package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"corebank/backend/internal/revocation"
)

var (
	// ErrInvalidToken covers tokens that fail decoding, carry the wrong
	// issuer or audience, or are outside their validity window. The caller
	// gets no finer detail; the server log does.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMissingRequiredClaims is returned when a structurally valid token
	// lacks one of the claims every token must carry.
	ErrMissingRequiredClaims = errors.New("missing required claims")
	// ErrInvalidTokenType is returned when a valid token is presented where
	// the other type is expected, e.g. a refresh token on an API call.
	ErrInvalidTokenType = errors.New("invalid token type")
	// ErrTokenRevoked is returned when the token's jti is in the revocation
	// ledger or the token predates the user's revocation epoch.
	ErrTokenRevoked = errors.New("token revoked")
)

// Verifier checks tokens through a fixed sequence: signature, required
// claims, issuer/audience, validity window, token type, revocation. The
// first failing check decides the error; later checks never run, so a
// malformed token never reaches the ledger.
type Verifier struct {
	codec    *Codec
	ledger   revocation.Ledger
	issuer   string
	audience string

	// Now is the clock for the validity-window check; nil means time.Now.
	Now func() time.Time
}

// NewVerifier returns a Verifier accepting tokens minted for the given
// issuer and audience, consulting ledger for revocations.
func NewVerifier(codec *Codec, ledger revocation.Ledger, issuer, audience string) *Verifier {
	return &Verifier{
		codec:    codec,
		ledger:   ledger,
		issuer:   issuer,
		audience: audience,
	}
}

func (v *Verifier) clock() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Verify validates raw as a live token of the wanted type and returns its
// claims. Ledger failures are returned wrapped; they are infrastructure
// errors, never a verdict about the token.
func (v *Verifier) Verify(ctx context.Context, raw string, want Type) (*Claims, error) {
	claims, err := v.codec.Decode(raw)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !hasRequiredClaims(claims) {
		return nil, ErrMissingRequiredClaims
	}

	if claims.Issuer != v.issuer || !hasAudience(claims, v.audience) {
		return nil, ErrInvalidToken
	}

	now := v.clock()
	if now.Before(claims.NotBefore.Time) || !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != want {
		return nil, ErrInvalidTokenType
	}

	revoked, err := v.ledger.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("revocation check for %s: %w", claims.ID, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	epoch, err := v.ledger.EpochFor(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("epoch check for user %s: %w", claims.Subject, err)
	}
	// iat == epoch counts as revoked so the token that authorized a
	// revoke-all dies with the rest, despite second-resolution timestamps.
	if !epoch.IsZero() && !claims.IssuedAt.Time.After(epoch) {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

func hasRequiredClaims(c *Claims) bool {
	return c.Subject != "" &&
		c.ID != "" &&
		c.Issuer != "" &&
		len(c.Audience) > 0 &&
		c.IssuedAt != nil &&
		c.NotBefore != nil &&
		c.ExpiresAt != nil &&
		c.TokenType.Valid()
}

func hasAudience(c *Claims, want string) bool {
	for _, aud := range c.Audience {
		if aud == want {
			return true
		}
	}
	return false
}
