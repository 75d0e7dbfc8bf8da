package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"speakerbooking/internal/delivery/http/helpers"
	"speakerbooking/internal/domain"
)

type SpeakerController struct {
	Logger       *slog.Logger
	Speakers     domain.SpeakerService
	Availability domain.AvailabilityService
}

func NewSpeakerController(logger *slog.Logger, speakers domain.SpeakerService, availability domain.AvailabilityService) *SpeakerController {
	return &SpeakerController{
		Logger:       logger,
		Speakers:     speakers,
		Availability: availability,
	}
}

// SpeakerListResponse is the response body for GET /speakers.
type SpeakerListResponse struct {
	Speakers   []*domain.Speaker      `json:"speakers"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// SearchSpeakers godoc
// @Summary Search speakers
// @Description Search speakers by name and/or specialty. Empty filters match all speakers. Results are paginated.
// @Tags speakers
// @Produce json
// @Param q query string false "Name fragment (case-insensitive)"
// @Param specialty query string false "Specialty (case-insensitive)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains speakers and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers [get]
func (c *SpeakerController) SearchSpeakers(w http.ResponseWriter, r *http.Request) {
	p := helpers.ParsePagination(r)
	q := r.URL.Query().Get("q")
	specialty := r.URL.Query().Get("specialty")

	speakers, total, err := c.Speakers.Search(r.Context(), q, specialty, p)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, SpeakerListResponse{
		Speakers:   speakers,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, total),
	})
}

// GetSpeakerByID godoc
// @Summary Get a speaker by ID
// @Description Returns the speaker's identity and specialty metadata.
// @Tags speakers
// @Produce json
// @Param speakerID path string true "Speaker ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the speaker"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID} [get]
func (c *SpeakerController) GetSpeakerByID(w http.ResponseWriter, r *http.Request) {
	speakerID := r.PathValue("speakerID")
	if speakerID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing speakerID")
		return
	}

	speaker, err := c.Speakers.GetByID(r.Context(), speakerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "speaker not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, speaker)
}

// CheckAvailability godoc
// @Summary Check speaker availability
// @Description Reports whether the speaker is free on the given date for the half-open interval [start, end). Intervals that only touch at a boundary do not conflict.
// @Tags speakers
// @Produce json
// @Param speakerID path string true "Speaker ID (UUID)"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param start query string true "Interval start (RFC 3339)"
// @Param end query string true "Interval end (RFC 3339)"
// @Success 200 {object} helpers.APIResponse "data contains the availability result"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID}/availability [get]
func (c *SpeakerController) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	speakerID := r.PathValue("speakerID")
	if speakerID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing speakerID")
		return
	}
	date := r.URL.Query().Get("date")
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date must be YYYY-MM-DD")
		return
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start must be RFC 3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end must be RFC 3339")
		return
	}

	result, err := c.Availability.CheckAvailability(r.Context(), speakerID, date, start, end)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCandidate) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// BookedDatesResponse is the response body for GET /speakers/{speakerID}/booked-dates.
type BookedDatesResponse struct {
	Dates []string `json:"dates"`
}

// ListBookedDates godoc
// @Summary List a speaker's booked dates
// @Description Returns every date in [from, to] (both boundaries inclusive) on which the speaker has at least one committed assignment. Intended for calendar rendering.
// @Tags speakers
// @Produce json
// @Param speakerID path string true "Speaker ID (UUID)"
// @Param from query string true "Range start date (YYYY-MM-DD)"
// @Param to query string true "Range end date (YYYY-MM-DD)"
// @Success 200 {object} helpers.APIResponse "data contains the booked dates"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{speakerID}/booked-dates [get]
func (c *SpeakerController) ListBookedDates(w http.ResponseWriter, r *http.Request) {
	speakerID := r.PathValue("speakerID")
	if speakerID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing speakerID")
		return
	}
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "from and to are required")
		return
	}

	dates, err := c.Availability.ListBookedDates(r.Context(), speakerID, from, to)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCandidate) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, BookedDatesResponse{Dates: dates})
}

// ListSessions godoc
// @Summary List sessions
// @Description Returns all sessions ordered by start time, for the booking UI.
// @Tags sessions
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the sessions"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /sessions [get]
func (c *SpeakerController) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := c.Speakers.ListSessions(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, sessions)
}
