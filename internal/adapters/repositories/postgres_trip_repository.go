package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"trip-planner-service/internal/domain"
	"trip-planner-service/internal/platform/db"
	"trip-planner-service/internal/platform/obs"

	"github.com/jackc/pgx/v5"
)

// Postgres-backed implementation of the TripRepository port.
// The three plan artifacts are stored verbatim as JSONB columns.
type PostgresTripRepository struct{ DB db.Querier }

func NewPostgresTripRepository(q db.Querier) *PostgresTripRepository {
	return &PostgresTripRepository{DB: q}
}

const selectTripColumns = `
	SELECT
		id,
		current_location,
		pickup_location,
		dropoff_location,
		current_cycle_used,
		route_summary,
		hos_logs,
		map_data,
		created_at,
		updated_at
	FROM trips`

func (p *PostgresTripRepository) CreateTrip(ctx context.Context, trip domain.Trip) (_ domain.Trip, err error) {
	defer obs.Time(ctx, "trips.CreateTrip")(&err)

	if p.DB == nil {
		return domain.Trip{}, errors.New("postgres trip repository: DB is nil")
	}

	routeSummary, err := json.Marshal(trip.Plan.RouteSummary)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("create trip: encode route_summary: %w", err)
	}
	hosLogs, err := json.Marshal(trip.Plan.HosLogs)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("create trip: encode hos_logs: %w", err)
	}
	mapData, err := json.Marshal(trip.Plan.MapData)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("create trip: encode map_data: %w", err)
	}

	_, err = p.DB.Exec(ctx, `
	INSERT INTO trips (
		id,
		current_location,
		pickup_location,
		dropoff_location,
		current_cycle_used,
		route_summary,
		hos_logs,
		map_data,
		created_at,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		trip.ID,
		trip.CurrentLocation,
		trip.PickupLocation,
		trip.DropoffLocation,
		trip.CurrentCycleUsed,
		routeSummary,
		hosLogs,
		mapData,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("create trip id=%s: %w", trip.ID, err)
	}

	return trip, nil
}

func (p *PostgresTripRepository) GetTrip(ctx context.Context, id string) (_ domain.Trip, err error) {
	defer obs.Time(ctx, "trips.GetTrip")(&err)

	if p.DB == nil {
		return domain.Trip{}, errors.New("postgres trip repository: DB is nil")
	}

	row := p.DB.QueryRow(ctx, selectTripColumns+` WHERE id = $1`, id)
	trip, err := scanTrip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Trip{}, fmt.Errorf("get trip id=%s: %w", id, domain.ErrTripNotFound)
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("get trip id=%s: %w", id, err)
	}

	return trip, nil
}

// Return all trips, newest first.
func (p *PostgresTripRepository) ListTrips(ctx context.Context) (_ []domain.Trip, err error) {
	defer obs.Time(ctx, "trips.ListTrips")(&err)

	if p.DB == nil {
		return nil, errors.New("postgres trip repository: DB is nil")
	}

	rows, err := p.DB.Query(ctx, selectTripColumns+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trips table: %w", err)
	}
	defer rows.Close()

	trips := make([]domain.Trip, 0, 16)
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("list trips: %w", err)
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}

	return trips, nil
}

func (p *PostgresTripRepository) DeleteTrip(ctx context.Context, id string) (err error) {
	defer obs.Time(ctx, "trips.DeleteTrip")(&err)

	if p.DB == nil {
		return errors.New("postgres trip repository: DB is nil")
	}

	tag, err := p.DB.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete trip id=%s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete trip id=%s: %w", id, domain.ErrTripNotFound)
	}

	return nil
}

func scanTrip(row pgx.Row) (domain.Trip, error) {
	var t domain.Trip
	var routeSummary, hosLogs, mapData []byte

	err := row.Scan(
		&t.ID,
		&t.CurrentLocation,
		&t.PickupLocation,
		&t.DropoffLocation,
		&t.CurrentCycleUsed,
		&routeSummary,
		&hosLogs,
		&mapData,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.Trip{}, err
	}

	if err := json.Unmarshal(routeSummary, &t.Plan.RouteSummary); err != nil {
		return domain.Trip{}, fmt.Errorf("decode route_summary: %w", err)
	}
	if err := json.Unmarshal(hosLogs, &t.Plan.HosLogs); err != nil {
		return domain.Trip{}, fmt.Errorf("decode hos_logs: %w", err)
	}
	if err := json.Unmarshal(mapData, &t.Plan.MapData); err != nil {
		return domain.Trip{}, fmt.Errorf("decode map_data: %w", err)
	}

	return t, nil
}
