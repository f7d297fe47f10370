package server

import (
	"net/http"

	"github.com/jrsteele09/eventhub-auth/auth"
	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/users"
)

type updateRoleRequest struct {
	Role string `json:"role"`
}

type updateRoleResponse struct {
	Message string      `json:"message"`
	User    *users.User `json:"user"`
}

// subject returns the ID attached by VerifyIdentity.
func subject(r *http.Request) (string, error) {
	id, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		return "", apperrors.Newf(apperrors.ErrUnauthorized, "Unauthorized!")
	}
	return id, nil
}

// CurrentUserHandler returns the identity behind the access token
func (s *Server) CurrentUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := subject(r)
		if err != nil {
			writeError(w, err)
			return
		}
		u, err := s.sessions.CurrentUser(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// ListUsersHandler lists every identity. Password hashes are never encoded.
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.sessions.ListUsers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) UpdateRoleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateRoleRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}

		u, err := s.sessions.UpdateRole(r.Context(), r.PathValue("userId"), req.Role)
		if err != nil {
			writeError(w, err)
			return
		}
		s.logger.Info().Str("user", u.ID).Str("role", string(u.Role)).Msg("role updated")
		writeJSON(w, http.StatusOK, updateRoleResponse{Message: "User role updated successfully", User: u})
	}
}

func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := subject(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var req auth.ChangePasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := s.sessions.ChangePassword(r.Context(), id, req); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
	}
}
