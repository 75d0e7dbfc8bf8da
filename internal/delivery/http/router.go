package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"speakerbooking/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(speakerController *controllers.SpeakerController, bookingController *controllers.BookingController) *http.ServeMux {
	mux := http.NewServeMux()

	// Speakers
	mux.HandleFunc("GET /speakers", speakerController.SearchSpeakers)
	mux.HandleFunc("GET /speakers/{speakerID}", speakerController.GetSpeakerByID)
	mux.HandleFunc("GET /speakers/{speakerID}/availability", speakerController.CheckAvailability)
	mux.HandleFunc("GET /speakers/{speakerID}/booked-dates", speakerController.ListBookedDates)

	// Sessions
	mux.HandleFunc("GET /sessions", speakerController.ListSessions)

	// Assignments
	mux.HandleFunc("POST /assignments", bookingController.CreateAssignment)
	mux.HandleFunc("POST /assignments/validate", bookingController.ValidateAssignments)
	mux.HandleFunc("PATCH /assignments/{assignmentID}", bookingController.ReassignSession)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
