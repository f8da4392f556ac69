// Package httpapi exposes the auth core over HTTP. Handlers are thin glue:
// decode the body, call the core, map the outcome's Kind to a status code.
// Nothing here holds state or makes decisions the core does not.
package httpapi

import (
	"encoding/json"
	"net/http"

	authcore "github.com/lancerhq/authcore"
	"github.com/lancerhq/authcore/middleware"
)

// Server mounts the auth routes on an http.ServeMux.
type Server struct {
	core *authcore.Core
}

// NewServer creates the HTTP surface for core.
func NewServer(core *authcore.Core) *Server {
	return &Server{core: core}
}

// Routes returns the mux with all six auth endpoints registered. Protected
// routes are wrapped with the bearer guard.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	guard := middleware.Guard(s.core, writeError)

	mux.HandleFunc("POST /auth/signup", s.handleSignup)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/tokens-refresh", s.handleRefresh)
	mux.Handle("GET /auth/profile", guard(http.HandlerFunc(s.handleProfile)))
	mux.Handle("PATCH /auth/password-reset", guard(http.HandlerFunc(s.handlePasswordReset)))
	mux.Handle("POST /auth/logout", guard(http.HandlerFunc(s.handleLogout)))

	return mux
}

type signupRequest struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	BusinessName string `json:"businessName"`
	CountryCode  string `json:"countryCode"`
	Password     string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" ||
		req.CountryCode == "" || req.Password == "" {
		writeBadRequest(w, "Missing required fields")
		return
	}

	user, err := s.core.Signup(r.Context(), authcore.SignupInput{
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		BusinessName: req.BusinessName,
		CountryCode:  req.CountryCode,
		Password:     req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	result, err := s.core.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type refreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		writeBadRequest(w, "Both accessToken and refreshToken are required")
		return
	}

	pair, err := s.core.RefreshTokens(r.Context(), authcore.TokenPair{
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, authcore.ErrTokenRequired)
		return
	}

	user, err := s.core.Profile(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type passwordResetRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, authcore.ErrTokenRequired)
		return
	}

	var req passwordResetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeBadRequest(w, "Both oldPassword and newPassword are required")
		return
	}

	msg, err := s.core.ResetPassword(r.Context(), claims.Subject, req.OldPassword, req.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, authcore.ErrTokenRequired)
		return
	}

	msg, err := s.core.Logout(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
