package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apischemas "github.com/ghosthawk/ghosthawk/schemas"

	"github.com/ghosthawk/ghosthawk/internal/schemas"
	"github.com/ghosthawk/ghosthawk/internal/server/middleware"
	"github.com/ghosthawk/ghosthawk/internal/types"
)

// handleSubmitExperience records an experience for the authenticated caller,
// creating the named company on its first report.
func (s *Server) handleSubmitExperience(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !json.Valid(body) {
		writeError(w, r, invalidField("(root)", "request body must be valid JSON"))
		return
	}
	if err := s.checkSchema(apischemas.ExperienceSubmission, body); err != nil {
		writeError(w, r, err)
		return
	}

	var submission types.ExperienceSubmission
	if err := unmarshalBody(body, &submission); err != nil {
		writeError(w, r, err)
		return
	}
	if violations := submission.Validate(s.now()); len(violations) > 0 {
		writeError(w, r, &ErrValidation{Violations: violations})
		return
	}

	experience, err := submission.Experience(userID)
	if err != nil {
		writeError(w, r, invalidField("applicationDate", err.Error()))
		return
	}

	saved, company, err := s.store.SubmitExperience(r.Context(), submission.Company(), experience)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.UserExperience{Experience: *saved, Company: *company})
}

// handleUserExperiences lists the caller's own experiences, anonymous ones included.
func (s *Server) handleUserExperiences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
		return
	}

	experiences, err := s.store.ListExperiencesByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if experiences == nil {
		experiences = []types.UserExperience{}
	}
	writeJSON(w, http.StatusOK, experiences)
}

// checkSchema validates a request body against its JSON Schema and converts
// schema failures into field violations. Without a registry it accepts everything.
func (s *Server) checkSchema(name string, body []byte) error {
	if s.schemas == nil {
		return nil
	}
	err := s.schemas.ValidateBytes(name, body)
	if err == nil {
		return nil
	}

	var invalid *schemas.ValidationError
	if !errors.As(err, &invalid) {
		return err
	}
	violations := make([]types.FieldViolation, 0, len(invalid.Errors))
	for _, fe := range invalid.Errors {
		violations = append(violations, types.FieldViolation{Field: fe.Field, Message: fe.Message})
	}
	return &ErrValidation{Violations: violations}
}
