package dto

import (
	"time"
	"trip-planner-service/internal/domain"
)

type CreateTripRequest struct {
	CurrentLocation  string   `json:"current_location"`
	PickupLocation   string   `json:"pickup_location"`
	DropoffLocation  string   `json:"dropoff_location"`
	CurrentCycleUsed *float64 `json:"current_cycle_used"`
}

type TripResponse struct {
	ID               string              `json:"id"`
	CurrentLocation  string              `json:"current_location"`
	PickupLocation   string              `json:"pickup_location"`
	DropoffLocation  string              `json:"dropoff_location"`
	CurrentCycleUsed float64             `json:"current_cycle_used"`
	RouteSummary     domain.RouteSummary `json:"route_summary"`
	HosLogs          []domain.DayLog     `json:"hos_logs"`
	MapData          domain.MapData      `json:"map_data"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

type ListTripsResponse struct {
	Trips []TripResponse `json:"trips"`
}

func NewTripResponse(t domain.Trip) TripResponse {
	logs := t.Plan.HosLogs
	if logs == nil {
		logs = []domain.DayLog{}
	}

	return TripResponse{
		ID:               t.ID,
		CurrentLocation:  t.CurrentLocation,
		PickupLocation:   t.PickupLocation,
		DropoffLocation:  t.DropoffLocation,
		CurrentCycleUsed: t.CurrentCycleUsed,
		RouteSummary:     t.Plan.RouteSummary,
		HosLogs:          logs,
		MapData:          t.Plan.MapData,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}
