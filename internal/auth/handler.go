package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-auth/internal/auth/duration"
	"github.com/odyssey-erp/odyssey-auth/internal/auth/token"
	"github.com/odyssey-erp/odyssey-auth/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// HeaderExpiration carries the requested token lifetime on login.
const HeaderExpiration = "X-Expiration"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAPIKey)
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})
	r.Get("/validate-email/{token}", h.validateEmail)
	r.Group(func(r chi.Router) {
		r.Use(h.RequireToken)
		r.Get("/me", h.me)
	})
}

// RequireAPIKey rejects requests without the configured X-API-Key.
func (h *Handler) RequireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.service.ValidateAPIKey(r.Header.Get(HeaderAPIKey)); err != nil {
			h.logger.Warn("api key rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			h.respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireToken authenticates a bearer token and stores the principal in the
// request context.
func (h *Handler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", "Bearer")
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "bearer token is required")
			return
		}
		principal, err := h.service.Authenticate(raw)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
			h.respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	reg, err := NewRegistration(req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	result, err := h.service.RegisterUser(r.Context(), reg)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.logger.Info("user registered", slog.String("user_id", result.User.ID))
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	creds, err := NewCredentials(req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	result, err := h.service.LoginUser(r.Context(), creds, r.Header.Get(HeaderExpiration))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) validateEmail(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ValidateEmail(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	result, err := h.service.CurrentUser(r.Context(), principal)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *ValidationError
		derr *duration.Error
	)
	switch {
	case errors.As(err, &verr):
		httpx.ValidationProblem(w, verr.Error(), verr.Fields)
	case errors.As(err, &derr):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Expiration", derr.Error())
	case errors.Is(err, ErrMissingAPIKey):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, ErrInvalidAPIKey):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, token.ErrExpired), errors.Is(err, token.ErrInvalid):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "token is invalid or expired")
	case errors.Is(err, shared.ErrDuplicateEmail):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "user not found")
	case errors.Is(err, httpx.ErrMalformedBody):
		httpx.RespondError(w, err)
	default:
		h.logger.Error("auth request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
