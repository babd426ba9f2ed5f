// Package service implements the authentication flows: login, refresh,
// logout, logout-all, and token validation.
package service

import (
	"context"
	"errors"
	"time"

	"corebank/backend/internal/audit"
	auditdomain "corebank/backend/internal/audit/domain"
	"corebank/backend/internal/metrics"
	"corebank/backend/internal/revocation"
	"corebank/backend/internal/security"
	"corebank/backend/internal/token"
	userdomain "corebank/backend/internal/user/domain"
	userrepo "corebank/backend/internal/user/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP codes.
var (
	// ErrMissingFields is returned when email or password is empty.
	ErrMissingFields = errors.New("missing required fields")
	// ErrInvalidCredentials covers unknown email and wrong password alike,
	// so a caller cannot tell which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive is returned after the password verified but the
	// account is deactivated or suspended. Never returned before the
	// password check.
	ErrAccountInactive = errors.New("account inactive")
)

// TokenPair is the outcome of a successful Login or Refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	User             userdomain.Public
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// AuthService implements password login, token refresh, and revocation.
type AuthService struct {
	users    UserRepo
	ledger   revocation.Ledger
	issuer   *token.Issuer
	verifier *token.Verifier
	hasher   *security.Hasher
	auditor  audit.AuditLogger
	recorder metrics.Recorder

	// Now is the clock for remaining-lifetime calculations; nil means time.Now.
	Now func() time.Time
}

// NewAuthService returns an AuthService with the given dependencies.
// auditor and recorder may be nil; they default to no-ops.
func NewAuthService(
	users UserRepo,
	ledger revocation.Ledger,
	issuer *token.Issuer,
	verifier *token.Verifier,
	hasher *security.Hasher,
	auditor audit.AuditLogger,
	recorder metrics.Recorder,
) *AuthService {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &AuthService{
		users:    users,
		ledger:   ledger,
		issuer:   issuer,
		verifier: verifier,
		hasher:   hasher,
		auditor:  auditor,
		recorder: recorder,
	}
}

func (s *AuthService) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Login authenticates with email and password and returns a fresh token
// pair. Email matching is exact-case: the address is compared as sent, with
// no trimming or lowercasing. Unknown email and wrong password produce the
// same error through the same code path.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	if email == "" || password == "" {
		s.recorder.RecordLogin("missing_fields")
		return nil, ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, userrepo.ErrNotFound) {
		s.recorder.RecordLogin("invalid_credentials")
		s.auditor.Record(ctx, "", auditdomain.ActionLogin, false, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		s.recorder.RecordLogin("invalid_credentials")
		s.auditor.Record(ctx, user.ID, auditdomain.ActionLogin, false, "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	// Status is checked only after the password verified, so a deactivated
	// account with a wrong password still reads as invalid credentials.
	if !user.CanAuthenticate() {
		s.recorder.RecordLogin("account_inactive")
		s.auditor.Record(ctx, user.ID, auditdomain.ActionLogin, false, "account_inactive")
		return nil, ErrAccountInactive
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordLogin("success")
	s.auditor.Record(ctx, user.ID, auditdomain.ActionLogin, true, "")
	return pair, nil
}

// Refresh exchanges a live refresh token for a fresh pair. The presented
// token is revoked for its remaining lifetime before the new pair is minted,
// so each refresh token is spendable once. Account status is not re-checked;
// deactivation cuts access within one access-token lifetime via LogoutAll.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		s.recorder.RecordRefresh("missing_fields")
		return nil, ErrMissingFields
	}

	claims, err := s.verifier.Verify(ctx, refreshToken, token.TypeRefresh)
	if err != nil {
		s.recorder.RecordRefresh(outcomeFor(err))
		s.auditor.Record(ctx, "", auditdomain.ActionRefresh, false, outcomeFor(err))
		return nil, err
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, userrepo.ErrNotFound) {
		// Account deleted since issuance; the token is worthless.
		s.recorder.RecordRefresh("invalid_token")
		s.auditor.Record(ctx, claims.Subject, auditdomain.ActionRefresh, false, "unknown_subject")
		return nil, token.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if err := s.revokeClaims(ctx, claims); err != nil {
		return nil, err
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	s.recorder.RecordRefresh("success")
	s.auditor.Record(ctx, user.ID, auditdomain.ActionRefresh, true, "")
	return pair, nil
}

// Logout revokes the presented refresh token. A second logout with the same
// token fails verification with a revoked-token error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrMissingFields
	}

	claims, err := s.verifier.Verify(ctx, refreshToken, token.TypeRefresh)
	if err != nil {
		s.auditor.Record(ctx, "", auditdomain.ActionLogout, false, outcomeFor(err))
		return err
	}
	if err := s.revokeClaims(ctx, claims); err != nil {
		return err
	}
	s.recorder.RecordRevocation("single_token")
	s.auditor.Record(ctx, claims.Subject, auditdomain.ActionLogout, true, "")
	return nil
}

// LogoutAll voids every token the bearer holds by bumping the user's
// revocation epoch. The authorizing access token dies with the rest.
func (s *AuthService) LogoutAll(ctx context.Context, accessToken string) error {
	claims, err := s.verifier.Verify(ctx, accessToken, token.TypeAccess)
	if err != nil {
		s.auditor.Record(ctx, "", auditdomain.ActionLogoutAll, false, outcomeFor(err))
		return err
	}
	if err := s.ledger.BumpEpoch(ctx, claims.Subject); err != nil {
		return err
	}
	s.recorder.RecordRevocation("all_sessions")
	s.auditor.Record(ctx, claims.Subject, auditdomain.ActionLogoutAll, true, "")
	return nil
}

// Validate verifies an access token and returns its claims. Read-only: a
// token can be validated any number of times.
func (s *AuthService) Validate(ctx context.Context, accessToken string) (*token.Claims, error) {
	start := s.clock()
	claims, err := s.verifier.Verify(ctx, accessToken, token.TypeAccess)
	s.recorder.RecordVerifyLatency(time.Since(start))
	if err != nil {
		s.recorder.RecordVerification(outcomeFor(err))
		return nil, err
	}
	s.recorder.RecordVerification("success")
	return claims, nil
}

// WhoAmI verifies an access token and returns the current account profile.
func (s *AuthService) WhoAmI(ctx context.Context, accessToken string) (*userdomain.Public, error) {
	claims, err := s.Validate(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, claims.Subject)
	if errors.Is(err, userrepo.ErrNotFound) {
		return nil, token.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

func (s *AuthService) issuePair(user *userdomain.User) (*TokenPair, error) {
	access, accessClaims, err := s.issuer.IssueAccess(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := s.issuer.IssueRefresh(user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
		User:             user.Public(),
	}, nil
}

// revokeClaims denylists the token's jti for its remaining lifetime. The
// record may lapse once the token would be rejected as expired anyway.
func (s *AuthService) revokeClaims(ctx context.Context, claims *token.Claims) error {
	ttl := claims.ExpiresAt.Time.Sub(s.clock())
	return s.ledger.Revoke(ctx, claims.ID, ttl)
}

// outcomeFor maps verification errors to audit/metric outcome labels.
func outcomeFor(err error) string {
	switch {
	case errors.Is(err, token.ErrMissingRequiredClaims):
		return "missing_required_claims"
	case errors.Is(err, token.ErrInvalidTokenType):
		return "invalid_token_type"
	case errors.Is(err, token.ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, revocation.ErrUnavailable):
		return "ledger_unavailable"
	default:
		return "invalid_token"
	}
}
