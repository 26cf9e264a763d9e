package services

import (
	"fmt"
	"math"
	"time"
	"trip-planner-service/internal/domain"
)

// Hours-of-Service limits for a property-carrying driver on the 70-hour/8-day cycle.
const (
	AverageSpeedMPH          = 55.0
	MaxDrivingHoursPerDay    = 11.0
	MaxOnDutyHoursPerDay     = 14.0
	BreakTriggerDrivingHours = 8.0
	BreakDurationHours       = 0.5
	SleeperBerthHours        = 10.0
	PreTripDurationHours     = 0.5
	PickupDurationHours      = 1.0
	DropoffDurationHours     = 1.0
	FuelingIntervalMiles     = 1000.0
	FuelingDurationHours     = 1.0
	CycleLimitHours          = 70.0

	dayAnchorHour = 8

	// Absorbs float drift when hour counters are compared against limits.
	hosEpsilon = 1e-9
)

// driveState is the state of the drive/break/fuel loop within one day.
type driveState int

const (
	stateDriving driveState = iota
	stateAwaitingBreak
	stateFueling
	stateDayComplete
	stateCycleExhausted
)

func (s driveState) String() string {
	switch s {
	case stateDriving:
		return "Driving"
	case stateAwaitingBreak:
		return "AwaitingBreak"
	case stateFueling:
		return "Fueling"
	case stateDayComplete:
		return "DayComplete"
	case stateCycleExhausted:
		return "CycleExhausted"
	}
	return fmt.Sprintf("driveState(%d)", int(s))
}

func (s driveState) terminal() bool {
	return s == stateDayComplete || s == stateCycleExhausted
}

type hosSimulator struct {
	cycleStart        float64
	cycleTotal        float64
	distanceRemaining float64
	distanceSinceFuel float64
	fuelIndex         int
	pickupRecorded    bool
	limitReached      bool

	clock      time.Time
	completion time.Time

	// Reset at the start of every day.
	drivingToday float64
	onDutyToday  float64
	sinceBreak   float64
	entries      []domain.DutyEntry

	logs      []domain.DayLog
	stops     []domain.Stop
	pickupAt  *time.Time
	dropoffAt *time.Time
}

// SimulateHOS greedily schedules driving, breaks, fueling, and rest for a trip
// of distanceMiles, starting from a driver who has already used
// cycleHoursUsed of the 70-hour cycle. Day 1 starts at 08:00 on now's date,
// in now's location.
//
// It fails with domain.ErrCycleExhausted, or domain.ErrInvalidDistance when
// distanceMiles is NaN or infinite. When the cycle runs out mid-trip the
// partial plan is returned with Summary.CycleLimitReached set.
func SimulateHOS(distanceMiles, cycleHoursUsed float64, now time.Time) (domain.HosPlan, error) {
	if !(cycleHoursUsed < CycleLimitHours) || math.IsInf(cycleHoursUsed, -1) {
		return domain.HosPlan{}, fmt.Errorf("simulate hos: cycle_hours_used=%.2f: %w", cycleHoursUsed, domain.ErrCycleExhausted)
	}
	// Every loop exit compares against the remaining distance; NaN never compares.
	if math.IsNaN(distanceMiles) || math.IsInf(distanceMiles, 0) {
		return domain.HosPlan{}, fmt.Errorf("simulate hos: distance_miles=%v: %w", distanceMiles, domain.ErrInvalidDistance)
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), dayAnchorHour, 0, 0, 0, now.Location())

	s := &hosSimulator{
		cycleStart:        cycleHoursUsed,
		cycleTotal:        cycleHoursUsed,
		distanceRemaining: math.Max(distanceMiles, 0),
		fuelIndex:         1,
		completion:        startOfDay,
		logs:              []domain.DayLog{},
		stops:             []domain.Stop{},
	}

	for day := 1; ; day++ {
		dayStart := startOfDay.AddDate(0, 0, day-1)
		s.startDay(dayStart)

		done := s.runDay(day)

		if len(s.entries) > 0 {
			s.logs = append(s.logs, domain.DayLog{
				Day:     day,
				Start:   dayStart,
				Entries: s.entries,
			})
		}

		if done {
			break
		}
	}

	return s.plan(distanceMiles), nil
}

func (s *hosSimulator) startDay(dayStart time.Time) {
	s.clock = dayStart
	s.drivingToday = 0
	s.onDutyToday = 0
	s.sinceBreak = 0
	s.entries = []domain.DutyEntry{}
}

// runDay plans one day and reports whether the simulation is over.
func (s *hosSimulator) runDay(day int) bool {
	if _, ok := s.onDutyTruncated(domain.ActivityPreTrip, PreTripDurationHours); !ok {
		s.limitReached = true
		return true
	}

	if !s.pickupRecorded {
		end, ok := s.onDutyTruncated(domain.ActivityPickupService, PickupDurationHours)
		if !ok {
			s.limitReached = true
			return true
		}
		s.pickupRecorded = true
		s.pickupAt = &end
		s.stops = append(s.stops, domain.Stop{
			Type:      domain.StopPickup,
			Details:   "Pickup service completed",
			Timestamp: &end,
		})
	}

	state := stateDriving
	// A fuel stop postponed by yesterday's on-duty window comes first.
	if s.distanceRemaining > 0 && s.distanceSinceFuel >= FuelingIntervalMiles {
		state = stateFueling
	}
	for !state.terminal() {
		state = s.step(state)
	}
	if state == stateCycleExhausted {
		s.limitReached = true
	}

	return s.endDay(day)
}

// step runs the transition for state and returns the next state.
func (s *hosSimulator) step(state driveState) driveState {
	switch state {
	case stateDriving:
		return s.drive()
	case stateAwaitingBreak:
		return s.takeBreak()
	case stateFueling:
		return s.refuel()
	}
	return state
}

// drive logs the largest driving chunk allowed by every daily, break, and
// cycle limit, capped by what is left of the trip.
func (s *hosSimulator) drive() driveState {
	if s.distanceRemaining <= 0 {
		return stateDayComplete
	}
	if s.cycleTotal >= CycleLimitHours-hosEpsilon {
		return stateCycleExhausted
	}
	if s.drivingToday >= MaxDrivingHoursPerDay-hosEpsilon || s.onDutyToday >= MaxOnDutyHoursPerDay-hosEpsilon {
		return stateDayComplete
	}

	capacity := min(
		MaxDrivingHoursPerDay-s.drivingToday,
		MaxOnDutyHoursPerDay-s.onDutyToday,
		CycleLimitHours-s.cycleTotal,
		BreakTriggerDrivingHours-s.sinceBreak,
	)
	needed := s.distanceRemaining / AverageSpeedMPH
	hours := min(capacity, needed)

	if hours <= hosEpsilon {
		if s.sinceBreak >= BreakTriggerDrivingHours-hosEpsilon && s.onDutyToday < MaxOnDutyHoursPerDay-hosEpsilon {
			return stateAwaitingBreak
		}
		return stateDayComplete
	}

	s.record(domain.ActivityDriving, domain.StatusDriving, hours)
	s.drivingToday += hours
	s.sinceBreak += hours

	miles := hours * AverageSpeedMPH
	if hours >= needed {
		miles = s.distanceRemaining
	}
	s.distanceRemaining -= miles
	s.distanceSinceFuel += miles

	if s.distanceRemaining <= 0 {
		return stateDayComplete
	}
	if s.distanceSinceFuel >= FuelingIntervalMiles {
		return stateFueling
	}
	if s.cycleTotal >= CycleLimitHours-hosEpsilon {
		return stateCycleExhausted
	}
	return stateDriving
}

func (s *hosSimulator) takeBreak() driveState {
	s.record(domain.ActivityBreak, domain.StatusOffDuty, BreakDurationHours)
	s.sinceBreak = 0
	return stateDriving
}

// refuel logs a fuel stop. When the stop does not fit today's on-duty window
// it is left pending for the next day.
func (s *hosSimulator) refuel() driveState {
	if !fits(s.cycleTotal, FuelingDurationHours, CycleLimitHours) {
		return stateCycleExhausted
	}
	if !fits(s.onDutyToday, FuelingDurationHours, MaxOnDutyHoursPerDay) {
		return stateDayComplete
	}

	end := s.record(domain.ActivityFueling, domain.StatusOnDuty, FuelingDurationHours)
	s.stops = append(s.stops, domain.Stop{
		Type:      domain.StopFuel,
		Details:   fmt.Sprintf("Fuel stop %d", s.fuelIndex),
		Timestamp: &end,
	})
	s.fuelIndex++
	s.distanceSinceFuel = 0

	if s.cycleTotal >= CycleLimitHours-hosEpsilon {
		return stateCycleExhausted
	}
	return stateDriving
}

// endDay delivers the load when the distance is covered, otherwise takes the
// sleeper-berth rest. It reports whether the simulation is over.
func (s *hosSimulator) endDay(day int) bool {
	if s.distanceRemaining <= 0 {
		if !fits(s.cycleTotal, DropoffDurationHours, CycleLimitHours) {
			s.limitReached = true
			return true
		}
		if fits(s.onDutyToday, DropoffDurationHours, MaxOnDutyHoursPerDay) {
			end := s.record(domain.ActivityDropoffService, domain.StatusOnDuty, DropoffDurationHours)
			s.dropoffAt = &end
			s.stops = append(s.stops, domain.Stop{
				Type:      domain.StopDropoff,
				Details:   "Dropoff service completed",
				Timestamp: &end,
			})
			return true
		}
		// The on-duty window is closed; deliver after the rest.
	}

	if s.limitReached || s.cycleTotal >= CycleLimitHours-hosEpsilon {
		s.limitReached = true
		return true
	}

	restStart := s.clock
	s.record(domain.ActivitySleeperBerth, domain.StatusOffDuty, SleeperBerthHours)
	s.stops = append(s.stops, domain.Stop{
		Type:      domain.StopRest,
		Details:   fmt.Sprintf("Day %d 10-hour rest", day),
		Timestamp: &restStart,
	})
	return false
}

// onDutyTruncated logs up to hours of on-duty work, cut to the remaining
// cycle budget. It returns false, logging nothing, when no budget is left.
func (s *hosSimulator) onDutyTruncated(activity domain.Activity, hours float64) (time.Time, bool) {
	hours = min(hours, CycleLimitHours-s.cycleTotal)
	if hours <= hosEpsilon {
		return time.Time{}, false
	}
	return s.record(activity, domain.StatusOnDuty, hours), true
}

// record appends an entry starting at the current clock and advances it.
// Driving and on-duty time count against the daily window and the cycle.
func (s *hosSimulator) record(activity domain.Activity, status domain.DutyStatus, hours float64) time.Time {
	start := s.clock
	end := start.Add(hoursToDuration(hours))

	s.entries = append(s.entries, domain.DutyEntry{
		Activity:      activity,
		Status:        status,
		Start:         start,
		End:           end,
		DurationHours: round2(hours),
	})

	if status != domain.StatusOffDuty {
		s.onDutyToday += hours
		s.cycleTotal += hours
	}

	s.clock = end
	s.completion = end
	return end
}

func (s *hosSimulator) plan(distanceMiles float64) domain.HosPlan {
	return domain.HosPlan{
		Summary: domain.Summary{
			TotalDistanceMiles:     round2(distanceMiles),
			EstimatedDriveHours:    round2(distanceMiles / AverageSpeedMPH),
			DaysPlanned:            len(s.logs),
			CycleHoursStart:        round2(s.cycleStart),
			CycleHoursConsumed:     round2(math.Max(s.cycleTotal-s.cycleStart, 0)),
			CycleLimitReached:      s.limitReached,
			RemainingDistanceMiles: round2(math.Max(s.distanceRemaining, 0)),
			EstimatedCompletion:    s.completion,
		},
		Logs:             s.logs,
		Stops:            s.stops,
		PickupTimestamp:  s.pickupAt,
		DropoffTimestamp: s.dropoffAt,
	}
}

func fits(total, add, limit float64) bool {
	return total+add <= limit+hosEpsilon
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(math.Round(hours * float64(time.Hour)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
