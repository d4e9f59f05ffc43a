package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/staywell/staywell/internal/auth"
	"github.com/staywell/staywell/internal/handler/dto"
	"github.com/staywell/staywell/internal/service"
)

// SessionResolver resolves the session cookie on a request.
type SessionResolver interface {
	Authenticate(r *http.Request) (*auth.Session, error)
	CookieName() string
}

// CookieConfig controls the attributes of session cookies.
type CookieConfig struct {
	Secure bool
}

// SessionHandler handles registration, login and the session lifecycle.
type SessionHandler struct {
	users   *service.UserService
	guard   SessionResolver
	cookies CookieConfig
	logger  *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(users *service.UserService, guard SessionResolver, cookies CookieConfig, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		users:   users,
		guard:   guard,
		cookies: cookies,
		logger:  logger,
	}
}

// Register handles POST /register.
func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	user, err := h.users.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Login handles POST /login.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	session, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(h.guard.CookieName(), session.Token, session.ExpiresAt))

	h.logger.Info("user_logged_in", "user_id", session.User.ID)

	writeJSON(w, http.StatusOK, dto.ToUserResponse(session.User))
}

// Profile handles GET /profile. Without a session it answers null.
func (h *SessionHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	if identity.IsZero() {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	user, err := h.users.Profile(r.Context(), identity)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// Refresh handles GET /refreshtoken. It replaces the session cookie and the
// per-user cookie with a short-lived rotated token.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	current := auth.SessionFromContext(r.Context())
	if current == nil {
		handleServiceError(w, h.logger, service.ErrUnauthenticated)
		return
	}

	session, err := h.users.Refresh(r.Context(), current.Raw)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	userCookie := session.User.ID
	http.SetCookie(w, h.clearedCookie(userCookie))
	http.SetCookie(w, h.sessionCookie(userCookie, session.Token, session.ExpiresAt))
	http.SetCookie(w, h.sessionCookie(h.guard.CookieName(), session.Token, session.ExpiresAt))

	writeJSON(w, http.StatusOK, dto.RefreshResponse{
		Message:  "Token refreshed",
		NewToken: session.Token,
	})
}

// Logout handles POST /logout. Cookies are always cleared; the token is
// revoked server-side when revocation is configured.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, err := h.guard.Authenticate(r)
	if err == nil {
		if err := h.users.Logout(r.Context(), session.TokenID, session.ExpiresAt); err != nil {
			h.logger.Warn("token revocation failed",
				"user_id", session.Identity.ID,
				"error", err,
			)
		}
		http.SetCookie(w, h.clearedCookie(session.Identity.ID))
		h.logger.Info("user_logged_out", "user_id", session.Identity.ID)
	}

	http.SetCookie(w, h.clearedCookie(h.guard.CookieName()))

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}

func (h *SessionHandler) sessionCookie(name, value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl := time.Until(expires); ttl > 0 {
		c.MaxAge = int(ttl.Round(time.Second).Seconds())
	}
	return c
}

func (h *SessionHandler) clearedCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
