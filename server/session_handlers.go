package server

import (
	"net/http"

	"github.com/jrsteele09/eventhub-auth/auth"
	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/users"
)

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinResponse struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	Name         string           `json:"name"`
	Surname      string           `json:"surname"`
	Role         users.RoleType   `json:"role"`
	Roles        []users.RoleType `json:"roles"`
	AccessToken  string           `json:"accessToken"`
	RefreshToken string           `json:"refreshToken"`
}

// rejectedSigninResponse is sent for a wrong password.
type rejectedSigninResponse struct {
	Message     string  `json:"message"`
	AccessToken *string `json:"accessToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// outcome labels a session flow result for metrics.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch apperrors.Kind(err) {
	case apperrors.ErrValidation:
		return "invalid"
	case apperrors.ErrNotFound:
		return "not_found"
	case apperrors.ErrUnauthorized:
		return "unauthorized"
	}
	return "error"
}

func (s *Server) SignupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.SignupRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		err := s.sessions.Signup(r.Context(), req)
		s.metrics.SessionEvent("signup", outcome(err))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "User registered successfully!"})
	}
}

func (s *Server) SigninHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signinRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		res, err := s.sessions.Signin(r.Context(), req.Email, req.Password)
		s.metrics.SessionEvent("signin", outcome(err))
		if err != nil {
			if apperrors.HTTPStatus(err) == http.StatusUnauthorized {
				writeJSON(w, http.StatusUnauthorized, rejectedSigninResponse{Message: apperrors.Message(err)})
				return
			}
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, signinResponse{
			ID:           res.User.ID,
			Email:        res.User.Email,
			Name:         res.User.Name,
			Surname:      res.User.Surname,
			Role:         res.User.Role,
			Roles:        []users.RoleType{res.User.Role},
			AccessToken:  res.AccessToken,
			RefreshToken: res.RefreshToken,
		})
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		access, err := s.sessions.Refresh(r.Context(), req.RefreshToken)
		s.metrics.SessionEvent("refresh", outcome(err))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, refreshResponse{AccessToken: access})
	}
}
