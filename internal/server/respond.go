package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tomlord1122/user-todo-api/internal/service"
)

const maxBodyBytes = 1 << 20

// requestError is a malformed request body. It carries the status the client
// should see.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

// bodyDecoder returns a decoder for the JSON request body. The body is only
// read when the service asks for it, after the user and todo are resolved. An
// empty body leaves dst at its zero value, which the service treats as a
// payload with no fields.
func (s *Server) bodyDecoder(w http.ResponseWriter, r *http.Request) service.Decoder {
	return func(dst any) error {
		decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		err := decoder.Decode(dst)
		if err == nil || errors.Is(err, io.EOF) {
			return nil
		}

		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxError):
			msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
			return &requestError{status: http.StatusBadRequest, msg: msg}
		case errors.Is(err, io.ErrUnexpectedEOF):
			return &requestError{status: http.StatusBadRequest, msg: "Request body contains badly-formed JSON"}
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field == "" {
				return &requestError{status: http.StatusBadRequest, msg: "Request body must be a JSON object"}
			}
			msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
			return &requestError{status: http.StatusBadRequest, msg: msg}
		case errors.As(err, &maxBytesError):
			msg := fmt.Sprintf("Request body must not be larger than %d bytes", maxBytesError.Limit)
			return &requestError{status: http.StatusRequestEntityTooLarge, msg: msg}
		default:
			s.logger.Error().
				Err(err).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("failed to decode request body")
			return &requestError{status: http.StatusBadRequest, msg: "Invalid request body"}
		}
	}
}

// respondWithServiceError maps service errors onto HTTP responses. Anything
// unrecognised is logged and reported as a 500 without details.
func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr *service.ParseError
	var validationErr *service.ValidationError
	var reqErr *requestError
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrTodoNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &reqErr):
		respondWithError(w, reqErr.status, reqErr.msg)
	case errors.As(err, &parseErr):
		respondWithError(w, http.StatusBadRequest, parseErr.Error())
	case errors.As(err, &validationErr):
		respondWithJSON(w, http.StatusBadRequest, validationErr.Fields)
	default:
		s.logger.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request failed")
		respondWithError(w, http.StatusInternalServerError, strings.ToLower(http.StatusText(http.StatusInternalServerError)))
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithMessage sends {"message": ...}. With 204 the net/http server
// drops the body and the client only sees the status.
func respondWithMessage(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"message": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
