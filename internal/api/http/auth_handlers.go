package http

import (
	"net/http"

	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/apperr"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/auth"
	"github.com/Abdullah-Akram04/Aithena-LMS-sub001/internal/user"
)

// CookieConfig controls the token cookies written on login/refresh.
type CookieConfig struct {
	Secure bool
}

func setAuthCookies(w http.ResponseWriter, pair auth.TokenPair, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessCookie,
		Value:    pair.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     auth.RefreshCookie,
		Value:    pair.RefreshToken,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{Name: auth.AccessCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true, Secure: cfg.Secure})
	http.SetCookie(w, &http.Cookie{Name: auth.RefreshCookie, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true, Secure: cfg.Secure})
}

type authResponse struct {
	User   user.User      `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

func RegisterHandler(svc *auth.Service, cfg CookieConfig, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name" validate:"required,min=2,max=100"`
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required,min=8"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		// self-registration is student-only
		u, pair, err := svc.Register(r.Context(), req.Name, req.Email, req.Password, user.RoleStudent)
		if err != nil {
			onErr(w, r, err)
			return
		}
		setAuthCookies(w, pair, cfg)
		writeJSON(w, http.StatusCreated, authResponse{User: u, Tokens: pair})
	}
}

func LoginHandler(svc *auth.Service, cfg CookieConfig, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email" validate:"required,email"`
			Password string `json:"password" validate:"required"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		u, pair, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			onErr(w, r, err)
			return
		}
		setAuthCookies(w, pair, cfg)
		writeJSON(w, http.StatusOK, authResponse{User: u, Tokens: pair})
	}
}

// RefreshHandler rotates the pair. The refresh token comes from the
// httpOnly cookie, with a JSON body fallback for non-browser clients.
func RefreshHandler(svc *auth.Service, cfg CookieConfig, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(auth.RefreshCookie); err == nil {
			token = c.Value
		}
		if token == "" {
			var req struct {
				RefreshToken string `json:"refresh_token"`
			}
			_ = decodeAndValidate(r, &req)
			token = req.RefreshToken
		}
		if token == "" {
			onErr(w, r, apperr.BadToken("missing refresh token"))
			return
		}
		u, pair, err := svc.Refresh(r.Context(), token)
		if err != nil {
			onErr(w, r, err)
			return
		}
		setAuthCookies(w, pair, cfg)
		writeJSON(w, http.StatusOK, authResponse{User: u, Tokens: pair})
	}
}

func LogoutHandler(cfg CookieConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearAuthCookies(w, cfg)
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
	}
}

func MeHandler(users user.Store, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			onErr(w, r, apperr.Unauthenticated("missing credentials"))
			return
		}
		u, err := users.Get(r.Context(), p.ID)
		if err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func ChangePasswordHandler(svc *auth.Service, onErr errFn) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.PrincipalFromContext(r.Context())
		if !ok {
			onErr(w, r, apperr.Unauthenticated("missing credentials"))
			return
		}
		var req struct {
			OldPassword string `json:"old_password" validate:"required"`
			NewPassword string `json:"new_password" validate:"required,min=8"`
		}
		if err := decodeAndValidate(r, &req); err != nil {
			onErr(w, r, err)
			return
		}
		if err := svc.ChangePassword(r.Context(), p.ID, req.OldPassword, req.NewPassword); err != nil {
			onErr(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
	}
}
