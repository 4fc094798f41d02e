package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// DefaultTokenTTL is the access token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// ErrRevocationDisabled is returned by Logout when no revocation store is wired.
var ErrRevocationDisabled = errors.New("auth: token revocation not configured")

// PasswordHasher protects and verifies passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Validate returns (false, nil) for mismatches and malformed credentials.
	Validate(ctx context.Context, plaintext, credential string) (bool, error)
}

// TokenSigner mints access tokens.
type TokenSigner interface {
	Issue(userID string, ttl time.Duration) (string, error)
}

// Revocations records and checks revoked token IDs.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// EventPublisher announces domain events to background workers.
type EventPublisher interface {
	UserRegistered(ctx context.Context, userID, name, email string) error
}

// EventRecorder counts auth outcomes.
type EventRecorder interface {
	AuthEvent(event, outcome string)
}

// ServiceConfig carries optional collaborators and policy values.
type ServiceConfig struct {
	TokenTTL    time.Duration
	Logger      *slog.Logger
	Events      EventPublisher
	Recorder    EventRecorder
	Revocations Revocations
}

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	hasher      PasswordHasher
	tokens      TokenSigner
	tokenTTL    time.Duration
	logger      *slog.Logger
	events      EventPublisher
	recorder    EventRecorder
	revocations Revocations
}

// NewService constructs a new Service.
func NewService(repo Repository, hasher PasswordHasher, tokens TokenSigner, cfg ServiceConfig) *Service {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		tokenTTL:    ttl,
		logger:      logger,
		events:      cfg.Events,
		recorder:    cfg.Recorder,
		revocations: cfg.Revocations,
	}
}

// TokenTTL returns the configured access token lifetime.
func (s *Service) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates a user with a hashed password. A taken email yields
// shared.ErrInvalidCredentials, whether caught by the lookup or by the
// store's unique constraint.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		s.logger.Warn("register rejected: email already registered", slog.String("user_id", existing.ID))
		s.record("register", "rejected")
		return nil, shared.ErrInvalidCredentials
	case !errors.Is(err, shared.ErrNotFound):
		s.record("register", "error")
		return nil, fmt.Errorf("auth: register lookup: %w", err)
	}

	hashed, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		s.record("register", "error")
		return nil, fmt.Errorf("auth: register hash: %w", err)
	}

	user, err := s.repo.Create(ctx, NewUser{Name: in.Name, Email: in.Email, Password: hashed})
	if err != nil {
		if errors.Is(err, shared.ErrConflict) {
			s.logger.Warn("register rejected: concurrent registration for email")
			s.record("register", "rejected")
			return nil, shared.ErrInvalidCredentials
		}
		s.record("register", "error")
		return nil, fmt.Errorf("auth: register create: %w", err)
	}

	if s.events != nil {
		if err := s.events.UserRegistered(ctx, user.ID, user.Name, user.Email); err != nil {
			s.logger.Warn("publish user registered", slog.String("user_id", user.ID), slog.Any("error", err))
		}
	}
	s.record("register", "success")
	return user, nil
}

// Login verifies credentials and returns a signed access token. Unknown
// emails still pay for one key derivation so they cost the same as a
// wrong password.
func (s *Service) Login(ctx context.Context, in LoginInput) (string, error) {
	user, err := s.repo.FindByEmail(ctx, in.Email)
	found := err == nil
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.record("login", "error")
		return "", fmt.Errorf("auth: login lookup: %w", err)
	}

	credential := ""
	if found {
		credential = user.Password
	}
	valid, err := s.hasher.Validate(ctx, in.Password, credential)
	if err != nil {
		s.record("login", "error")
		return "", fmt.Errorf("auth: login validate: %w", err)
	}
	if !found || !valid {
		if found {
			s.logger.Info("login rejected: password mismatch", slog.String("user_id", user.ID))
		} else {
			s.logger.Info("login rejected: unknown email")
		}
		s.record("login", "rejected")
		return "", shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		s.record("login", "error")
		return "", fmt.Errorf("auth: login issue token: %w", err)
	}
	s.record("login", "success")
	return token, nil
}

// CurrentUser loads the account behind an authenticated identity.
func (s *Service) CurrentUser(ctx context.Context, id *shared.Identity) (*User, error) {
	if id == nil {
		return nil, shared.ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		return nil, fmt.Errorf("auth: current user: %w", err)
	}
	return user, nil
}

// Logout revokes the token behind id until it expires.
func (s *Service) Logout(ctx context.Context, id *shared.Identity) error {
	if id == nil {
		return shared.ErrUnauthorized
	}
	if s.revocations == nil {
		return ErrRevocationDisabled
	}
	if err := s.revocations.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		s.record("logout", "error")
		return err
	}
	s.record("logout", "success")
	return nil
}

func (s *Service) record(event, outcome string) {
	if s.recorder != nil {
		s.recorder.AuthEvent(event, outcome)
	}
}
