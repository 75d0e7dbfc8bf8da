package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"speakerbooking/internal/delivery/http/helpers"
	"speakerbooking/internal/domain"
)

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateAssignmentRequest is the request body for POST /assignments.
type CreateAssignmentRequest struct {
	SpeakerID string `json:"speaker_id"`
	SessionID string `json:"session_id"`
}

// Validate implements Validator.
func (c CreateAssignmentRequest) Validate() []string {
	var errs []string
	if c.SpeakerID == "" {
		errs = append(errs, "speaker_id is required")
	}
	if c.SessionID == "" {
		errs = append(errs, "session_id is required")
	}
	return errs
}

// CreateAssignment godoc
// @Summary Book a speaker into a session
// @Description Validates the booking against the speaker's committed assignments for the session's date and persists it if no interval overlaps. On conflict, responds 409 with the rejection reason.
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignment body CreateAssignmentRequest true "Speaker and session references"
// @Success 201 {object} helpers.APIResponse "data contains the created assignment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict, message is the scheduling conflict reason"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /assignments [post]
func (c *BookingController) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := c.Service.CommitAssignment(r.Context(), req.SpeakerID, req.SessionID)
	if err != nil {
		c.writeBookingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, assignment)
}

// ValidateAssignmentsRequest is the request body for POST /assignments/validate.
type ValidateAssignmentsRequest struct {
	Assignments []*domain.BookingProposal `json:"assignments"`
}

// Validate implements Validator.
func (v ValidateAssignmentsRequest) Validate() []string {
	if len(v.Assignments) == 0 {
		return []string{"assignments must not be empty"}
	}
	return nil
}

// ValidateAssignmentsResponse is the response body for POST /assignments/validate.
// Decisions are positional: decisions[i] answers assignments[i].
type ValidateAssignmentsResponse struct {
	Decisions []domain.Decision `json:"decisions"`
}

// ValidateAssignments godoc
// @Summary Validate a batch of proposed assignments
// @Description Dry-run conflict check: judges every proposal against committed state and against the other proposals in the batch, without writing anything. Each proposal is judged independently; one rejection never aborts its siblings. Committed state is read once for the whole batch.
// @Tags assignments
// @Accept json
// @Produce json
// @Param batch body ValidateAssignmentsRequest true "Proposals to validate; id is set only when updating an existing assignment"
// @Success 200 {object} helpers.APIResponse "data contains per-proposal decisions"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error; the whole batch fails, no proposal was admitted"
// @Router /assignments/validate [post]
func (c *BookingController) ValidateAssignments(w http.ResponseWriter, r *http.Request) {
	var req ValidateAssignmentsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	decisions, err := c.Service.ValidateProposed(r.Context(), req.Assignments)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ValidateAssignmentsResponse{Decisions: decisions})
}

// ReassignSessionRequest is the request body for PATCH /assignments/{assignmentID}.
type ReassignSessionRequest struct {
	SessionID string `json:"session_id"`
}

// Validate implements Validator.
func (rr ReassignSessionRequest) Validate() []string {
	if rr.SessionID == "" {
		return []string{"session_id is required"}
	}
	return nil
}

// ReassignSession godoc
// @Summary Move an assignment to a different session
// @Description Re-enters the booking validation path comparing against all other committed assignments for the speaker, excluding the assignment's own prior state. A no-op update never conflicts with itself.
// @Tags assignments
// @Accept json
// @Produce json
// @Param assignmentID path string true "Assignment ID (UUID)"
// @Param body body ReassignSessionRequest true "New session reference"
// @Success 200 {object} helpers.APIResponse "data contains the updated assignment"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /assignments/{assignmentID} [patch]
func (c *BookingController) ReassignSession(w http.ResponseWriter, r *http.Request) {
	assignmentID := r.PathValue("assignmentID")
	if assignmentID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing assignmentID")
		return
	}
	var req ReassignSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	assignment, err := c.Service.ReassignSession(r.Context(), assignmentID, req.SessionID)
	if err != nil {
		c.writeBookingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, assignment)
}

// writeBookingError maps booking service errors onto the response envelope.
// The scheduling conflict reason is surfaced verbatim so the caller can pick
// another date instead of seeing a generic failure.
func (c *BookingController) writeBookingError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSchedulingConflict):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, domain.ConflictMessage)
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "speaker, session, or assignment not found")
	case errors.Is(err, domain.ErrInvalidCandidate):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
