package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"trip-planner-service/internal/api/dto"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/logging"
	"trip-planner-service/internal/ports"
	"trip-planner-service/internal/services"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const maxLocationLength = 255

// TripHandler exposes trip planning and retrieval endpoints.
type TripHandler struct {
	Service *services.TripService
	Repo    ports.TripRepository
	Log     logrus.FieldLogger
}

// Create validates the request, plans the trip, and stores it.
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTripRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	svcReq, err := validateCreateTrip(req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.Service.CreateTrip(r.Context(), svcReq)
	switch {
	case errors.Is(err, domain.ErrCycleExhausted):
		writeError(w, r, http.StatusBadRequest, "current_cycle_used leaves no hours in the 70-hour cycle")
		return
	case errors.Is(err, domain.ErrInsufficientWaypoints):
		writeError(w, r, http.StatusBadRequest, "at least two locations are required")
		return
	case err != nil:
		h.log().WithError(err).Error("create trip failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.NewTripResponse(trip))
}

// List returns all stored trips, newest first.
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	trips, err := h.Repo.ListTrips(r.Context())
	if err != nil {
		h.log().WithError(err).Error("list trips failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListTripsResponse{
		Trips: make([]dto.TripResponse, 0, len(trips)),
	}
	for _, t := range trips {
		res.Trips = append(res.Trips, dto.NewTripResponse(t))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	trip, err := h.Repo.GetTrip(r.Context(), id)
	if errors.Is(err, domain.ErrTripNotFound) {
		writeError(w, r, http.StatusNotFound, "trip not found")
		return
	}
	if err != nil {
		h.log().WithError(err).WithField("trip_id", id).Error("get trip failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewTripResponse(trip))
}

func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	err := h.Repo.DeleteTrip(r.Context(), id)
	if errors.Is(err, domain.ErrTripNotFound) {
		writeError(w, r, http.StatusNotFound, "trip not found")
		return
	}
	if err != nil {
		h.log().WithError(err).WithField("trip_id", id).Error("delete trip failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TripHandler) log() logrus.FieldLogger {
	return logging.OrStandard(h.Log)
}

// validateCreateTrip checks what the planner assumes: three named
// locations with pins on the globe, at least two of them different, and cycle
// hours in [0, 70).
func validateCreateTrip(req dto.CreateTripRequest) (services.CreateTripRequest, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"current_location", req.CurrentLocation},
		{"pickup_location", req.PickupLocation},
		{"dropoff_location", req.DropoffLocation},
	}

	distinct := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			return services.CreateTripRequest{}, fmt.Errorf("%s is required", f.name)
		}
		if len(v) > maxLocationLength {
			return services.CreateTripRequest{}, fmt.Errorf("%s must be at most %d characters", f.name, maxLocationLength)
		}
		if err := services.ValidatePinned(v); err != nil {
			return services.CreateTripRequest{}, fmt.Errorf("%s must have latitude in [-90, 90] and longitude in [-180, 180]", f.name)
		}
		distinct[domain.NormalizeQuery(v)] = struct{}{}
	}
	if len(distinct) < 2 {
		return services.CreateTripRequest{}, errors.New("at least two distinct locations are required")
	}

	if req.CurrentCycleUsed == nil {
		return services.CreateTripRequest{}, errors.New("current_cycle_used is required")
	}
	cycle := *req.CurrentCycleUsed
	if cycle < 0 || cycle >= services.CycleLimitHours {
		return services.CreateTripRequest{}, fmt.Errorf("current_cycle_used must be at least 0 and below %.0f", services.CycleLimitHours)
	}

	return services.CreateTripRequest{
		CurrentLocation:  strings.TrimSpace(req.CurrentLocation),
		PickupLocation:   strings.TrimSpace(req.PickupLocation),
		DropoffLocation:  strings.TrimSpace(req.DropoffLocation),
		CurrentCycleUsed: cycle,
	}, nil
}
