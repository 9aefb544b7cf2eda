package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ghosthawk/ghosthawk/internal/types"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// healthTimeout bounds the database ping behind /health.
const healthTimeout = 2 * time.Second

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error  string                 `json:"error"`
	Errors []types.FieldViolation `json:"errors,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] Error encoding JSON response: %v", err)
	}
}

// writeError maps err to its status code. Internal errors are logged and
// replaced by a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	switch status {
	case http.StatusBadRequest:
		body := errorBody{Error: "Validation failed"}
		var validation *ErrValidation
		if errors.As(err, &validation) {
			body.Errors = validation.Violations
		}
		writeJSON(w, status, body)
	case http.StatusInternalServerError:
		log.Printf("[server] %s %s failed: %v", r.Method, r.URL.Path, err)
		writeJSON(w, status, errorBody{Error: "Internal server error"})
	default:
		writeJSON(w, status, errorBody{Error: err.Error()})
	}
}

// readBody reads the request body up to maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, invalidField("(root)", "request body is too large")
		}
		return nil, invalidField("(root)", "could not read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, invalidField("(root)", "request body is required")
	}
	return body, nil
}

// decodeJSON reads the request body into dst. Malformed bodies become
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := readBody(w, r)
	if err != nil {
		return err
	}
	return unmarshalBody(body, dst)
}

func unmarshalBody(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return invalidField(typeErr.Field, "has the wrong type")
		}
		return invalidField("(root)", "request body must be valid JSON")
	}
	return nil
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		log.Printf("[server] health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
