package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-auth/internal/auth"
	"github.com/odyssey-erp/odyssey-auth/internal/observability"
)

// AuthDeps are the collaborators the auth module needs from the process.
type AuthDeps struct {
	Logger  *slog.Logger
	Repo    auth.Repository
	Redis   *redis.Client
	Metrics *observability.Metrics
	Events  auth.EventPublisher
}

// NewAuthHandler wires the hasher, token issuer, service and guard behind
// an HTTP handler. Revocation is enabled when a Redis client is given.
func NewAuthHandler(cfg *Config, deps AuthDeps) (*auth.Handler, error) {
	hasherOpts := auth.HasherOptions{
		Params:      cfg.HashParams(),
		Concurrency: cfg.HashConcurrency,
		Timeout:     cfg.HashTimeout,
	}
	if deps.Metrics != nil {
		hasherOpts.Observe = deps.Metrics.ObserveKDF
	}
	hasher, err := auth.NewScryptHasher(hasherOpts)
	if err != nil {
		return nil, err
	}
	issuer, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	if err != nil {
		return nil, err
	}

	svcCfg := auth.ServiceConfig{
		TokenTTL: cfg.TokenTTL,
		Logger:   deps.Logger,
		Events:   deps.Events,
	}
	if deps.Metrics != nil {
		svcCfg.Recorder = deps.Metrics
	}
	var checker auth.RevocationChecker
	if deps.Redis != nil {
		store := auth.NewRevocationStore(deps.Redis, "")
		svcCfg.Revocations = store
		checker = store
	}

	service := auth.NewService(deps.Repo, hasher, issuer, svcCfg)
	guard := auth.NewGuard(issuer, checker, deps.Logger)
	return auth.NewHandler(deps.Logger, service, guard, auth.HandlerOptions{
		ExposeCredential: cfg.ExposeCredential,
	}), nil
}
