package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer mints access and refresh tokens. Every issued token carries a fresh
// random jti, iat = nbf = now, and exp = now + the TTL for its type. Access
// TTLs are expected to be much shorter than refresh TTLs; the issuer does
// not enforce the ratio, configuration validation does.
type Issuer struct {
	codec      *Codec
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration

	// Now is the clock used for iat/nbf/exp; nil means time.Now.
	Now func() time.Time
}

// NewIssuer returns an Issuer minting tokens with the given identity and
// lifetimes through codec.
func NewIssuer(codec *Codec, issuer, audience string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		codec:      codec,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (i *Issuer) clock() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// IssueAccess mints a short-lived access token for the user, embedding the
// email and role so resource handlers can authorize without a user lookup.
func (i *Issuer) IssueAccess(userID, email, role string) (string, *Claims, error) {
	claims := i.baseClaims(userID, TypeAccess, i.accessTTL)
	claims.Email = email
	claims.Role = role
	return i.encode(claims)
}

// IssueRefresh mints a long-lived refresh token for the user. Refresh tokens
// carry identity only; profile claims are re-read at refresh time.
func (i *Issuer) IssueRefresh(userID string) (string, *Claims, error) {
	return i.encode(i.baseClaims(userID, TypeRefresh, i.refreshTTL))
}

func (i *Issuer) baseClaims(userID string, typ Type, ttl time.Duration) *Claims {
	now := i.clock().UTC().Truncate(time.Second)
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: typ,
	}
}

func (i *Issuer) encode(claims *Claims) (string, *Claims, error) {
	raw, err := i.codec.Encode(claims)
	if err != nil {
		return "", nil, err
	}
	return raw, claims, nil
}
