package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-auth/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// HandlerOptions tunes response shapes.
type HandlerOptions struct {
	// ExposeCredential includes the hashed credential in the register
	// response.
	ExposeCredential bool
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger           *slog.Logger
	service          *Service
	guard            *Guard
	validator        *RequestValidator
	exposeCredential bool
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *Guard, opts HandlerOptions) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:           logger,
		service:          service,
		guard:            guard,
		validator:        NewRequestValidator(),
		exposeCredential: opts.ExposeCredential,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require)
		r.Get("/current-user", h.handleCurrentUser)
		r.Get("/me", h.handleMe)
		r.Post("/logout", h.handleLogout)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Register(r.Context(), req.input())
	if err != nil {
		h.fail(w, "register", err)
		return
	}
	h.logger.Info("user registered", slog.String("user_id", user.ID))

	resp := registerResponse{ID: user.ID, Name: user.Name, Email: user.Email}
	if h.exposeCredential {
		resp.Password = user.Password
	}
	httpx.JSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.bind(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	token, err := h.service.Login(r.Context(), req.input())
	if err != nil {
		h.fail(w, "login", err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity := shared.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.RespondError(w, shared.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, currentUserResponse{ID: identity.ID})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.CurrentUser(r.Context(), shared.IdentityFromContext(r.Context()))
	if err != nil {
		h.fail(w, "me", err)
		return
	}
	httpx.JSON(w, http.StatusOK, profileResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	err := h.service.Logout(r.Context(), shared.IdentityFromContext(r.Context()))
	if errors.Is(err, ErrRevocationDisabled) {
		httpx.Fail(w, http.StatusNotImplemented, "Logout is not available")
		return
	}
	if err != nil {
		h.fail(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) bind(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return err
	}
	return h.validator.Struct(target)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrUnauthorized):
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
