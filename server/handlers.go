package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jrsteele09/eventhub-auth/auth"
	apperrors "github.com/jrsteele09/eventhub-auth/internal/errors"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json; charset=utf-8"

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

// writeError converts err into a status code and a message body. Causes are
// logged for 5xx and never returned. Nothing is written for a request whose
// context has ended.
func writeError(w http.ResponseWriter, err error) {
	if auth.IsCancelled(err) {
		return
	}
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Err(err).Msg("request failed")
	}
	writeJSON(w, status, messageResponse{Message: apperrors.Message(err)})
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst at its zero
// value so the operation reports the missing fields. Bad JSON is a validation
// error and a body over maxBodyBytes is ErrTooLarge.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || apperrors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if apperrors.As(err, &tooLarge) {
		return apperrors.WithCause(apperrors.ErrTooLarge, err, "request body too large")
	}
	return apperrors.WithCause(apperrors.ErrValidation, err, "invalid JSON body")
}

func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, messageResponse{Message: "Welcome to " + s.appName + "."})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
