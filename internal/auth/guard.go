package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// Client-facing guard messages.
const (
	MessageMissingToken   = "Please provide a token!"
	MessageMalformedToken = "Please provide a valid token!"
)

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// RevocationChecker reports revoked token IDs.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Guard authorises requests carrying a bearer token.
type Guard struct {
	verifier    TokenVerifier
	revocations RevocationChecker
	logger      *slog.Logger
}

// NewGuard constructs a Guard. revocations may be nil.
func NewGuard(verifier TokenVerifier, revocations RevocationChecker, logger *slog.Logger) *Guard {
	return &Guard{verifier: verifier, revocations: revocations, logger: logger}
}

// Authenticate resolves the identity carried by an Authorization header value.
func (g *Guard) Authenticate(ctx context.Context, header string) (*shared.Identity, error) {
	if header == "" {
		return nil, shared.NewPublicError(shared.ErrUnauthorized, MessageMissingToken)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" || strings.ContainsAny(token, " \t") {
		return nil, shared.NewPublicError(shared.ErrUnauthorized, MessageMalformedToken)
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		g.debug("bearer token rejected", slog.Any("error", err))
		return nil, shared.ErrUnauthorized
	}

	if g.revocations != nil && claims.ID != "" {
		revoked, err := g.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			g.debug("bearer token revoked", slog.String("token_id", claims.ID))
			return nil, shared.ErrUnauthorized
		}
	}

	identity := &shared.Identity{ID: claims.UserID, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}

// Require rejects requests without a valid bearer token and stores the
// resolved identity in the request context.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			if g.logger != nil && !errors.Is(err, shared.ErrUnauthorized) {
				g.logger.Error("auth guard", slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
	})
}

func (g *Guard) debug(msg string, attrs ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, attrs...)
	}
}
