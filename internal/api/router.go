package api

import (
	"net/http"
	"trip-planner-service/internal/api/handlers"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc *services.TripService, repo ports.TripRepository, logger logrus.FieldLogger) http.Handler {
	r := mux.NewRouter()

	tripHandler := &handlers.TripHandler{
		Service: svc,
		Repo:    repo,
		Log:     logger,
	}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/trips", tripHandler.Create).Methods(http.MethodPost)
	r.HandleFunc("/trips", tripHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}", tripHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}", tripHandler.Delete).Methods(http.MethodDelete)

	return loggingMiddleware(logger, r)
}
