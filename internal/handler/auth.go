package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/videohub/internal/apperror"
	"github.com/sakif/videohub/internal/auth"
	"github.com/sakif/videohub/internal/model"
	"github.com/sakif/videohub/internal/service"
)

const stateCookieName = "oauth_state"

// AuthHandler serves account endpoints and the optional GitHub login flow.
//
// HANDLER RESPONSIBILITIES:
//   - Register / Login   → issue a JWT for an email/password account
//   - Logout             → clear the token cookie
//   - Me / UpdateProfile → read and edit the signed-in user
//   - GitHubLogin        → redirect the browser to GitHub's authorization page
//   - GitHubCallback     → receive the code, sign the user in, set the cookie
//
// github is nil when no GitHub credentials are configured; the server then
// never routes to the GitHub handlers.
type AuthHandler struct {
	auth         *service.AuthService
	github       *auth.GitHubProvider
	tokenTTL     time.Duration
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookie marks the token cookie
// HTTPS-only and should be true outside local development.
func NewAuthHandler(
	authService *service.AuthService,
	github *auth.GitHubProvider,
	tokenTTL time.Duration,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:         authService,
		github:       github,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Login fields are left to the service so a missing value gets the same
// message whichever field is absent.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=30"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Avatar   *string `json:"avatar" validate:"omitempty,max=2048"`
}

// AuthResponse carries the signed-in user and the bearer token for
// non-browser clients.
type AuthResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Token   string      `json:"token"`
	Data    *model.User `json:"data"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// REQUEST BODY: {"username": "alice", "email": "alice@example.com", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "User registered successfully",
		Token:   res.Token,
		Data:    res.User,
	})
}

// HandleLogin signs in with email and password.
//
// HTTP: POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   res.Token,
		Data:    res.User,
	})
}

// HandleLogout clears the token cookie.
//
// HTTP: POST /api/auth/logout
//
// Tokens are stateless, so a bearer token stays valid until it expires.
// Logging out only removes the browser's copy.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1, // tells the browser to delete the cookie immediately
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeData(w, http.StatusOK, "Logged out successfully", nil)
}

// HandleMe returns the signed-in user with their channel, reaction and
// subscription id lists.
//
// HTTP: GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "", user)
}

// HandleUpdateProfile edits username, email or avatar. Omitted fields are
// left alone.
//
// HTTP: PUT /api/auth/profile
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Avatar:   req.Avatar,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeData(w, http.StatusOK, "Profile updated successfully", user)
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state is stored in a short-lived HttpOnly cookie and sent to
// GitHub. The callback only proceeds when GitHub echoes the same value.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub user profile
//  3. Sign in or create the matching account
//  4. Store the JWT in an HttpOnly cookie
//  5. Redirect to the app home page
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	// --- Step 1: Validate CSRF state ---
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		writeError(w, r, h.logger, apperror.ValidationFailed("state", "Invalid OAuth state"))
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		writeError(w, r, h.logger, apperror.ValidationFailed("state", "Invalid OAuth state"))
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   stateCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	// --- Step 2: Exchange code for GitHub user profile ---
	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, r, h.logger, apperror.ValidationFailed("code", "Missing OAuth code"))
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, Response{Success: false, Message: "Authentication failed"})
		return
	}

	// --- Step 3: Sign in or create the account ---
	res, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	// --- Steps 4 and 5 ---
	h.setTokenCookie(w, res.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setTokenCookie stores the JWT for browser clients. HttpOnly keeps it away
// from page scripts; SameSite=Lax keeps it off cross-site POSTs.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// requireUser reads the identity RequireAuth attached. It only fails when a
// route was wired without the middleware.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: "No token, authorization denied"})
		return "", false
	}
	return userID, true
}
