package server

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/orphaned-data/internal/logger"
	"github.com/jonathan/orphaned-data/internal/server/middleware"
	"github.com/jonathan/orphaned-data/internal/types"
)

// AuthHandler serves the sign-in and sign-out endpoints.
type AuthHandler struct {
	operators  *OperatorService
	jwtService *JWTService
	validator  *validator.Validate
	tmpl       *template.Template
	log        logger.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(operators *OperatorService, jwtService *JWTService, tmpl *template.Template, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		operators:  operators,
		jwtService: jwtService,
		validator:  validator.New(),
		tmpl:       tmpl,
		log:        log,
	}
}

type loginView struct {
	Title      string
	Error      string
	Login      string
	RedirectTo string
}

// LoginForm renders the sign-in form, or skips it for a signed-in operator.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	redirectTo := safeRedirect(r.URL.Query().Get("redirect_to"), ToolsPath)
	if token := middleware.TokenFromRequest(r); token != "" {
		if _, err := h.jwtService.ValidateToken(token); err == nil {
			http.Redirect(w, r, redirectTo, http.StatusSeeOther)
			return
		}
	}
	h.render(w, r, http.StatusOK, loginView{Title: "Log In", RedirectTo: redirectTo})
}

// Login verifies the submitted credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, r, http.StatusBadRequest, loginView{Title: "Log In", Error: "Invalid request."})
		return
	}
	req := types.LoginRequest{
		Login:      strings.TrimSpace(r.PostForm.Get("log")),
		Password:   r.PostForm.Get("pwd"),
		RedirectTo: r.PostForm.Get("redirect_to"),
	}
	view := loginView{Title: "Log In", Login: req.Login, RedirectTo: safeRedirect(req.RedirectTo, ToolsPath)}

	if err := h.validator.Struct(req); err != nil {
		view.Error = extractValidationErrors(err)
		h.render(w, r, http.StatusBadRequest, view)
		return
	}

	op, err := h.operators.Authenticate(req.Login, req.Password)
	if err != nil {
		var invalid *ErrInvalidCredentials
		if errors.As(err, &invalid) {
			logger.FromContext(r.Context(), h.log).Info("login failed", logger.String("login", req.Login))
			view.Error = "The username or password you entered is incorrect."
		} else {
			view.Error = "Sign-in is unavailable."
		}
		h.render(w, r, HTTPStatus(err), view)
		return
	}

	token, err := h.jwtService.GenerateToken(op)
	if err != nil {
		logger.FromContext(r.Context(), h.log).Error("failed to issue session token", logger.Err(err))
		view.Error = "Sign-in is unavailable."
		h.render(w, r, http.StatusInternalServerError, view)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.jwtService.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	logger.FromContext(r.Context(), h.log).Info("operator signed in",
		logger.String("login", op.Login),
		logger.Int64("user_id", op.UserID),
	)
	http.Redirect(w, r, view.RedirectTo, http.StatusSeeOther)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *AuthHandler) render(w http.ResponseWriter, r *http.Request, status int, view loginView) {
	renderHTML(w, r, h.tmpl, h.log, status, "login", view)
}

// safeRedirect keeps redirects on this host: target must be a local absolute path.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		switch ve.Field() {
		case "Login":
			return "The username field is empty or too long."
		case "Password":
			return "The password field is empty or too long."
		}
		return "validation error: " + ve.Field() + " - " + ve.Tag()
	}
	return "validation error: invalid request"
}
