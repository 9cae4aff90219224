// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Aikagi Contributors

// Package httpapi exposes the authentication service over HTTP. Responses
// use a JSON envelope with a success flag and a user-facing message; login
// failures deliberately return 200 so the status line leaks nothing about
// which part of the credential pair was wrong.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aikagi/aikagi/internal/auth"
	"github.com/aikagi/aikagi/internal/observability"
	"github.com/aikagi/aikagi/pkg/errutil"
)

// sessionCookieName is the cookie that carries the session token.
const sessionCookieName = "session_id"

// Handler serves the authentication endpoints.
type Handler struct {
	svc           *auth.Service
	metrics       *observability.Metrics
	secureCookies bool
	logger        *slog.Logger
}

// NewHandler creates a Handler. metrics may be nil, in which case request
// and attempt counters are skipped.
func NewHandler(svc *auth.Service, metrics *observability.Metrics, secureCookies bool) *Handler {
	return &Handler{
		svc:           svc,
		metrics:       metrics,
		secureCookies: secureCookies,
		logger:        slog.Default(),
	}
}

// Routes builds the router for the authentication API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(30*time.Second),
	)
	r.Use(h.countRequests)

	r.Post("/signup", h.handleSignup)
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/change_password", h.handleChangePassword)
	r.Post("/api/logout", h.handleLogout)

	return r
}

// countRequests records a per-route counter labelled with the final status.
func (h *Handler) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		h.metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
	})
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recordAttempt("signup", "malformed_body")
		writeJSON(w, http.StatusBadRequest, SignupResponse{Message: msgMalformedBody})
		return
	}

	user, err := h.svc.Signup(r.Context(), req)
	if err != nil {
		switch errutil.ErrorCode(err) {
		case "AUTH_VALIDATION":
			h.recordAttempt("signup", "validation")
			writeJSON(w, http.StatusBadRequest, SignupResponse{Message: userMessage(err)})
		case "AUTH_EMAIL_TAKEN":
			// A business-level failure, not a protocol error: the body
			// carries the outcome.
			h.recordAttempt("signup", "email_taken")
			writeJSON(w, http.StatusOK, SignupResponse{Message: msgEmailTaken})
		default:
			h.recordAttempt("signup", "error")
			errutil.LogError(h.logger, "signup failed", err)
			writeJSON(w, http.StatusInternalServerError, SignupResponse{Message: msgSignupFailed})
		}
		return
	}

	h.recordAttempt("signup", "success")
	writeJSON(w, http.StatusOK, SignupResponse{Success: true, Data: user.Profile()})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	// Login responses must never be cached: they carry account state and
	// set the session cookie.
	w.Header().Set("Cache-Control", "no-store")

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		h.recordAttempt("login", "malformed_body")
		writeJSON(w, http.StatusOK, LoginResponse{Message: msgMalformedBody})
		return
	}

	session, user, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errutil.ErrorCode(err) == "AUTH_INVALID_CREDENTIALS" {
			h.recordAttempt("login", "invalid_credentials")
			writeJSON(w, http.StatusOK, LoginResponse{Message: msgInvalidCredentials})
			return
		}
		h.recordAttempt("login", "error")
		errutil.LogError(h.logger, "login failed", err)
		writeJSON(w, http.StatusOK, LoginResponse{Message: msgLoginFailed})
		return
	}

	h.setSessionCookie(w, session.ID)
	h.recordAttempt("login", "success")
	writeJSON(w, http.StatusOK, LoginResponse{Success: true, Payload: user.Profile()})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.recordAttempt("change_password", "malformed_body")
		writeJSON(w, http.StatusBadRequest, StatusResponse{Message: msgMalformedBody})
		return
	}

	sessionID := sessionIDFromCookie(r)
	err := h.svc.ChangePassword(r.Context(), sessionID, req.CurrentPassword, req.NewPassword, req.NewPasswordConfirm)
	if err != nil {
		switch errutil.ErrorCode(err) {
		case "AUTH_SESSION_REQUIRED", "AUTH_SESSION_INVALID", "AUTH_SESSION_EXPIRED":
			h.recordAttempt("change_password", "unauthenticated")
			writeJSON(w, http.StatusUnauthorized, StatusResponse{Message: msgAuthRequired})
		case "AUTH_USER_NOT_FOUND":
			h.recordAttempt("change_password", "user_not_found")
			writeJSON(w, http.StatusNotFound, StatusResponse{Message: msgUserNotFound})
		case "AUTH_PASSWORD_INCORRECT":
			h.recordAttempt("change_password", "wrong_password")
			writeJSON(w, http.StatusBadRequest, StatusResponse{Message: msgCurrentPasswordWrong})
		case "AUTH_PASSWORD_MISMATCH":
			h.recordAttempt("change_password", "mismatch")
			writeJSON(w, http.StatusBadRequest, StatusResponse{Message: msgNewPasswordMismatch})
		default:
			h.recordAttempt("change_password", "error")
			errutil.LogError(h.logger, "change password failed", err)
			writeJSON(w, http.StatusInternalServerError, StatusResponse{Message: msgChangePasswordFailed})
		}
		return
	}

	h.recordAttempt("change_password", "success")
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Message: msgPasswordChanged})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromCookie(r)
	if err := h.svc.Logout(r.Context(), sessionID); err != nil {
		h.recordAttempt("logout", "error")
		errutil.LogError(h.logger, "logout failed", err)
		writeJSON(w, http.StatusInternalServerError, StatusResponse{})
		return
	}

	// The cookie is cleared even when no session existed; logout is
	// idempotent from the client's point of view.
	h.clearSessionCookie(w)
	h.recordAttempt("logout", "success")
	writeJSON(w, http.StatusOK, StatusResponse{Success: true})
}

// setSessionCookie issues the session cookie with the TTL the service
// stamped on the session.
func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.svc.SessionTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookies,
	})
}

// clearSessionCookie expires the session cookie immediately.
func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookies,
	})
}

// sessionIDFromCookie returns the session token, or "" when the cookie is
// absent.
func sessionIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) recordAttempt(operation, outcome string) {
	if h.metrics == nil {
		return
	}
	h.metrics.AuthAttemptsTotal.WithLabelValues(operation, outcome).Inc()
}

// userMessage extracts the user-facing text of a validation error.
func userMessage(err error) string {
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // response write error means the client went away
	json.NewEncoder(w).Encode(value)
}
