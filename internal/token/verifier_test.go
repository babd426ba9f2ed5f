package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"corebank/backend/internal/revocation"
)

// failingLedger simulates a ledger backend outage.
type failingLedger struct{}

func (failingLedger) Revoke(context.Context, string, time.Duration) error {
	return revocation.ErrUnavailable
}
func (failingLedger) IsRevoked(context.Context, string) (bool, error) {
	return false, revocation.ErrUnavailable
}
func (failingLedger) BumpEpoch(context.Context, string) error {
	return revocation.ErrUnavailable
}
func (failingLedger) EpochFor(context.Context, string) (time.Time, error) {
	return time.Time{}, revocation.ErrUnavailable
}

type verifierFixture struct {
	now      time.Time
	issuer   *Issuer
	verifier *Verifier
	ledger   *revocation.MemoryLedger
}

func newVerifierFixture(t *testing.T) *verifierFixture {
	t.Helper()
	f := &verifierFixture{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }

	codec := NewTestCodec()
	f.issuer = NewIssuer(codec, testIssuer, testAudience, accessTTL, refreshTTL)
	f.issuer.Now = clock
	f.ledger = revocation.NewMemoryLedger()
	f.ledger.Now = clock
	f.verifier = NewVerifier(codec, f.ledger, testIssuer, testAudience)
	f.verifier.Now = clock
	return f
}

func (f *verifierFixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func TestVerifyValidAccessToken(t *testing.T) {
	f := newVerifierFixture(t)
	raw, minted, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	claims, err := f.verifier.Verify(context.Background(), raw, TypeAccess)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.ID != minted.ID || claims.Subject != testUserID {
		t.Errorf("claims differ: got jti=%q sub=%q", claims.ID, claims.Subject)
	}

	// Verification is read-only; the same token keeps verifying.
	if _, err := f.verifier.Verify(context.Background(), raw, TypeAccess); err != nil {
		t.Fatalf("second Verify: %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	f := newVerifierFixture(t)
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		if _, err := f.verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q): got %v, want ErrInvalidToken", raw, err)
		}
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	f := newVerifierFixture(t)
	raw, _, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := f.verifier.Verify(context.Background(), raw+"x", TypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyMissingRequiredClaims(t *testing.T) {
	f := newVerifierFixture(t)
	codec := NewTestCodec()

	base := func() *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "jti-1",
				Subject:   testUserID,
				Issuer:    testIssuer,
				Audience:  jwt.ClaimStrings{testAudience},
				IssuedAt:  jwt.NewNumericDate(f.now),
				NotBefore: jwt.NewNumericDate(f.now),
				ExpiresAt: jwt.NewNumericDate(f.now.Add(accessTTL)),
			},
			TokenType: TypeAccess,
		}
	}

	cases := []struct {
		name   string
		mutate func(*Claims)
	}{
		{"no subject", func(c *Claims) { c.Subject = "" }},
		{"no jti", func(c *Claims) { c.ID = "" }},
		{"no issuer", func(c *Claims) { c.Issuer = "" }},
		{"no audience", func(c *Claims) { c.Audience = nil }},
		{"no iat", func(c *Claims) { c.IssuedAt = nil }},
		{"no nbf", func(c *Claims) { c.NotBefore = nil }},
		{"no exp", func(c *Claims) { c.ExpiresAt = nil }},
		{"no typ", func(c *Claims) { c.TokenType = "" }},
		{"unknown typ", func(c *Claims) { c.TokenType = "session" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims := base()
			tc.mutate(claims)
			raw, err := codec.Encode(claims)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if _, err := f.verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, ErrMissingRequiredClaims) {
				t.Errorf("got %v, want ErrMissingRequiredClaims", err)
			}
		})
	}
}

func TestVerifyWrongIssuerAudience(t *testing.T) {
	f := newVerifierFixture(t)

	other := NewIssuer(NewTestCodec(), "other-issuer", testAudience, accessTTL, refreshTTL)
	other.Now = func() time.Time { return f.now }
	raw, _, err := other.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := f.verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong issuer: got %v, want ErrInvalidToken", err)
	}

	other = NewIssuer(NewTestCodec(), testIssuer, "other-api", accessTTL, refreshTTL)
	other.Now = func() time.Time { return f.now }
	raw, _, err = other.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := f.verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong audience: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	f := newVerifierFixture(t)
	raw, _, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	// Exactly at exp the token is already dead: the window is [nbf, exp).
	f.advance(accessTTL)
	if _, err := f.verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("at exp: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyNotYetValid(t *testing.T) {
	f := newVerifierFixture(t)
	raw, _, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	f.advance(-time.Minute)
	if _, err := f.verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("before nbf: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyWrongType(t *testing.T) {
	f := newVerifierFixture(t)

	access, _, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, _, err := f.issuer.IssueRefresh(testUserID)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := f.verifier.Verify(context.Background(), refresh, TypeAccess); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("refresh as access: got %v, want ErrInvalidTokenType", err)
	}
	if _, err := f.verifier.Verify(context.Background(), access, TypeRefresh); !errors.Is(err, ErrInvalidTokenType) {
		t.Errorf("access as refresh: got %v, want ErrInvalidTokenType", err)
	}
}

func TestVerifyExpiredBeatsWrongType(t *testing.T) {
	f := newVerifierFixture(t)
	refresh, _, err := f.issuer.IssueRefresh(testUserID)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	// An expired token of the wrong type fails the window check first.
	f.advance(refreshTTL)
	if _, err := f.verifier.Verify(context.Background(), refresh, TypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyRevokedJTI(t *testing.T) {
	f := newVerifierFixture(t)
	raw, minted, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if err := f.ledger.Revoke(context.Background(), minted.ID, accessTTL); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := f.verifier.Verify(context.Background(), raw, TypeAccess); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("got %v, want ErrTokenRevoked", err)
	}

	// Revocation does not bleed across tokens.
	other, _, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := f.verifier.Verify(context.Background(), other, TypeAccess); err != nil {
		t.Errorf("unrevoked sibling token: %v", err)
	}
}

func TestVerifyEpochRevocation(t *testing.T) {
	f := newVerifierFixture(t)
	before, _, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	otherUser, _, err := f.issuer.IssueAccess("user-2", "other@example.com", "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if err := f.ledger.BumpEpoch(context.Background(), testUserID); err != nil {
		t.Fatalf("BumpEpoch: %v", err)
	}

	// Issued at the bump instant: also dead, iat <= epoch.
	if _, err := f.verifier.Verify(context.Background(), before, TypeAccess); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("pre-epoch token: got %v, want ErrTokenRevoked", err)
	}
	if _, err := f.verifier.Verify(context.Background(), otherUser, TypeAccess); err != nil {
		t.Errorf("other user's token: %v", err)
	}

	// Tokens minted after the epoch stay valid.
	f.advance(time.Second)
	after, _, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := f.verifier.Verify(context.Background(), after, TypeAccess); err != nil {
		t.Errorf("post-epoch token: %v", err)
	}
}

func TestVerifyLedgerUnavailable(t *testing.T) {
	f := newVerifierFixture(t)
	raw, _, err := f.issuer.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	broken := NewVerifier(NewTestCodec(), failingLedger{}, testIssuer, testAudience)
	broken.Now = f.verifier.Now

	_, err = broken.Verify(context.Background(), raw, TypeAccess)
	if !errors.Is(err, revocation.ErrUnavailable) {
		t.Fatalf("got %v, want wrapped ErrUnavailable", err)
	}
	// An outage must never masquerade as a token verdict.
	for _, sentinel := range []error{ErrInvalidToken, ErrTokenRevoked, ErrInvalidTokenType, ErrMissingRequiredClaims} {
		if errors.Is(err, sentinel) {
			t.Errorf("ledger outage reported as %v", sentinel)
		}
	}
}

func TestVerifyShortCircuitSkipsLedger(t *testing.T) {
	// Tokens that fail earlier checks must not touch the ledger at all.
	broken := NewVerifier(NewTestCodec(), failingLedger{}, testIssuer, testAudience)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	broken.Now = func() time.Time { return now }

	iss := NewIssuer(NewTestCodec(), testIssuer, testAudience, accessTTL, refreshTTL)
	iss.Now = func() time.Time { return now.Add(-time.Hour) }
	expired, _, err := iss.IssueAccess(testUserID, testUserEmail, "user")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if _, err := broken.Verify(context.Background(), "garbage", TypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: got %v, want ErrInvalidToken", err)
	}
	if _, err := broken.Verify(context.Background(), expired, TypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: got %v, want ErrInvalidToken", err)
	}
}
