package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/eventhub-auth/auth"
	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/jrsteele09/eventhub-auth/token"
	"github.com/jrsteele09/eventhub-auth/users"
)

// VerifyIdentity checks the x-access-token header. A missing header is 403,
// a token that fails verification is 401. On success the subject ID is
// attached to the request context.
func (s *Server) VerifyIdentity(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(HeaderAccessToken)
		claims, err := s.authorizer.VerifyIdentity(raw)
		if err != nil {
			reason := "missing"
			if raw != "" {
				reason = token.Reason(err)
			}
			s.metrics.TokenRejected(reason)
			s.logger.Info().
				Str("path", r.URL.Path).
				Str("category", apperrors.Message(err)).
				Str("reason", reason).
				Msg("identity rejected")
			writeError(w, err)
			return
		}
		next(w, r.WithContext(auth.ContextWithSubject(r.Context(), claims.Subject)))
	}
}

// RequireRole admits the request only when the subject currently holds role.
func (s *Server) RequireRole(role users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return s.RequireAnyRole(role)
}

// RequireAnyRole admits the request when the subject's current role is one of
// roles. The role is read from the store on every request. If the request
// context ends during the lookup nothing is written.
func (s *Server) RequireAnyRole(roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	gate := gateName(roles)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			subjectID, _ := auth.SubjectFromContext(r.Context())
			_, err := s.authorizer.RequireAnyRole(r.Context(), subjectID, roles...)
			if err != nil {
				if auth.IsCancelled(err) {
					s.logger.Debug().Str("gate", gate).Err(err).Msg("request ended during role lookup")
					return
				}
				s.metrics.GateDecision(gate, decision(err))
				s.logger.Info().
					Str("gate", gate).
					Str("subject", subjectID).
					Str("decision", decision(err)).
					Msg("role gate rejected")
				writeError(w, err)
				return
			}
			s.metrics.GateDecision(gate, "admitted")
			next(w, r)
		}
	}
}

func (s *Server) IsAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return s.RequireRole(users.RoleAdmin)
}

func (s *Server) IsModerator() func(http.HandlerFunc) http.HandlerFunc {
	return s.RequireRole(users.RoleModerator)
}

func (s *Server) IsModeratorOrAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return s.RequireAnyRole(users.RoleModerator, users.RoleAdmin)
}

func gateName(roles []users.RoleType) string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, "|")
}

func decision(err error) string {
	switch apperrors.HTTPStatus(err) {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	}
	return "error"
}
