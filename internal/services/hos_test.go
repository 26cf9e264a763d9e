package services

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"
	"trip-planner-service/internal/domain"
)

var testNow = time.Date(2026, 1, 1, 15, 30, 0, 0, time.UTC)

func countActivity(plan domain.HosPlan, activity domain.Activity) int {
	n := 0
	for _, day := range plan.Logs {
		for _, e := range day.Entries {
			if e.Activity == activity {
				n++
			}
		}
	}
	return n
}

func assertDailyLimits(t *testing.T, plan domain.HosPlan) {
	t.Helper()

	for _, day := range plan.Logs {
		var onDuty, driving float64
		for i, e := range day.Entries {
			if !e.End.After(e.Start) {
				t.Errorf("day %d entry %d: end %v not after start %v", day.Day, i, e.End, e.Start)
			}
			if i > 0 && !e.Start.Equal(day.Entries[i-1].End) {
				t.Errorf("day %d entry %d: starts at %v, previous ended %v", day.Day, i, e.Start, day.Entries[i-1].End)
			}
			switch e.Status {
			case domain.StatusDriving:
				driving += e.End.Sub(e.Start).Hours()
				onDuty += e.End.Sub(e.Start).Hours()
			case domain.StatusOnDuty:
				onDuty += e.End.Sub(e.Start).Hours()
			}
		}
		if onDuty > MaxOnDutyHoursPerDay+1e-6 {
			t.Errorf("day %d: on-duty %.4fh exceeds %.0fh", day.Day, onDuty, MaxOnDutyHoursPerDay)
		}
		if driving > MaxDrivingHoursPerDay+1e-6 {
			t.Errorf("day %d: driving %.4fh exceeds %.0fh", day.Day, driving, MaxDrivingHoursPerDay)
		}
	}
}

func TestSimulateHOSShortTripSingleDay(t *testing.T) {
	plan, err := SimulateHOS(100, 0, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Summary.DaysPlanned != 1 || len(plan.Logs) != 1 {
		t.Fatalf("days planned = %d (logs %d), want 1", plan.Summary.DaysPlanned, len(plan.Logs))
	}
	if plan.Summary.CycleLimitReached {
		t.Fatalf("did not expect cycle limit")
	}

	day := plan.Logs[0]
	wantStart := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	if !day.Start.Equal(wantStart) {
		t.Fatalf("day start = %v, want %v", day.Start, wantStart)
	}

	want := []struct {
		activity domain.Activity
		status   domain.DutyStatus
		hours    float64
	}{
		{domain.ActivityPreTrip, domain.StatusOnDuty, 0.5},
		{domain.ActivityPickupService, domain.StatusOnDuty, 1},
		{domain.ActivityDriving, domain.StatusDriving, 1.82},
		{domain.ActivityDropoffService, domain.StatusOnDuty, 1},
	}
	if len(day.Entries) != len(want) {
		t.Fatalf("entries = %d, want %d: %+v", len(day.Entries), len(want), day.Entries)
	}
	for i, w := range want {
		e := day.Entries[i]
		if e.Activity != w.activity || e.Status != w.status || e.DurationHours != w.hours {
			t.Errorf("entry %d = {%s %s %.2f}, want {%s %s %.2f}", i, e.Activity, e.Status, e.DurationHours, w.activity, w.status, w.hours)
		}
	}

	if plan.PickupTimestamp == nil || !plan.PickupTimestamp.Equal(wantStart.Add(90*time.Minute)) {
		t.Fatalf("pickup timestamp = %v, want 09:30", plan.PickupTimestamp)
	}
	if plan.DropoffTimestamp == nil || !plan.DropoffTimestamp.Equal(day.Entries[3].End) {
		t.Fatalf("dropoff timestamp = %v, want %v", plan.DropoffTimestamp, day.Entries[3].End)
	}
	if !plan.Summary.EstimatedCompletion.Equal(*plan.DropoffTimestamp) {
		t.Fatalf("completion = %v, want dropoff time", plan.Summary.EstimatedCompletion)
	}

	if plan.Summary.CycleHoursConsumed != 4.32 {
		t.Fatalf("cycle consumed = %.2f, want 4.32", plan.Summary.CycleHoursConsumed)
	}
	if plan.Summary.EstimatedDriveHours != 1.82 {
		t.Fatalf("estimated drive hours = %.2f, want 1.82", plan.Summary.EstimatedDriveHours)
	}
	if plan.Summary.RemainingDistanceMiles != 0 {
		t.Fatalf("remaining distance = %.2f, want 0", plan.Summary.RemainingDistanceMiles)
	}

	if len(plan.Stops) != 2 || plan.Stops[0].Type != domain.StopPickup || plan.Stops[1].Type != domain.StopDropoff {
		t.Fatalf("unexpected stops: %+v", plan.Stops)
	}
}

func TestSimulateHOSLongTripSpansDays(t *testing.T) {
	plan, err := SimulateHOS(2000, 0, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Summary.DaysPlanned != 4 {
		t.Fatalf("days planned = %d, want 4", plan.Summary.DaysPlanned)
	}
	if plan.Summary.CycleLimitReached {
		t.Fatalf("did not expect cycle limit")
	}
	if plan.Summary.CycleHoursConsumed != 41.36 {
		t.Fatalf("cycle consumed = %.2f, want 41.36", plan.Summary.CycleHoursConsumed)
	}
	if got := countActivity(plan, domain.ActivityFueling); got != 1 {
		t.Fatalf("fueling entries = %d, want 1", got)
	}
	if got := countActivity(plan, domain.ActivitySleeperBerth); got != 3 {
		t.Fatalf("sleeper berth entries = %d, want 3", got)
	}
	if got := countActivity(plan, domain.ActivityBreak); got != 3 {
		t.Fatalf("break entries = %d, want 3", got)
	}

	wantStops := []struct {
		typ     domain.StopType
		details string
	}{
		{domain.StopPickup, "Pickup service completed"},
		{domain.StopRest, "Day 1 10-hour rest"},
		{domain.StopFuel, "Fuel stop 1"},
		{domain.StopRest, "Day 2 10-hour rest"},
		{domain.StopRest, "Day 3 10-hour rest"},
		{domain.StopDropoff, "Dropoff service completed"},
	}
	if len(plan.Stops) != len(wantStops) {
		t.Fatalf("stops = %d, want %d: %+v", len(plan.Stops), len(wantStops), plan.Stops)
	}
	for i, w := range wantStops {
		if plan.Stops[i].Type != w.typ || plan.Stops[i].Details != w.details {
			t.Errorf("stop %d = {%s %q}, want {%s %q}", i, plan.Stops[i].Type, plan.Stops[i].Details, w.typ, w.details)
		}
		if plan.Stops[i].Timestamp == nil {
			t.Errorf("stop %d has no timestamp", i)
		}
	}

	for i, day := range plan.Logs {
		wantStart := time.Date(2026, 1, 1+i, 8, 0, 0, 0, time.UTC)
		if day.Day != i+1 || !day.Start.Equal(wantStart) {
			t.Errorf("log %d = day %d at %v, want day %d at %v", i, day.Day, day.Start, i+1, wantStart)
		}
	}

	assertDailyLimits(t, plan)
}

func TestSimulateHOSCycleExhaustedUpFront(t *testing.T) {
	for _, used := range []float64{70, 75.5} {
		_, err := SimulateHOS(100, used, testNow)
		if !errors.Is(err, domain.ErrCycleExhausted) {
			t.Fatalf("cycle %.1f: expected ErrCycleExhausted, got %v", used, err)
		}
	}
}

func TestSimulateHOSRejectsNonFiniteInput(t *testing.T) {
	cases := []struct {
		name     string
		distance float64
		cycle    float64
		want     error
	}{
		{"nan distance", math.NaN(), 0, domain.ErrInvalidDistance},
		{"inf distance", math.Inf(1), 0, domain.ErrInvalidDistance},
		{"negative inf distance", math.Inf(-1), 0, domain.ErrInvalidDistance},
		{"nan cycle", 100, math.NaN(), domain.ErrCycleExhausted},
		{"negative inf cycle", 100, math.Inf(-1), domain.ErrCycleExhausted},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := SimulateHOS(tc.distance, tc.cycle, testNow)
				done <- err
			}()

			select {
			case err := <-done:
				if !errors.Is(err, tc.want) {
					t.Fatalf("expected %v, got %v", tc.want, err)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("SimulateHOS(%v, %v) did not return", tc.distance, tc.cycle)
			}
		})
	}
}

func TestSimulateHOSNearlyExhaustedCycle(t *testing.T) {
	plan, err := SimulateHOS(500, 69.9, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !plan.Summary.CycleLimitReached {
		t.Fatalf("expected cycle limit reached")
	}
	if plan.Summary.CycleHoursConsumed > 0.1 {
		t.Fatalf("cycle consumed = %.2f, want <= 0.1", plan.Summary.CycleHoursConsumed)
	}
	if len(plan.Logs) != 1 || len(plan.Logs[0].Entries) != 1 {
		t.Fatalf("expected a single partial day, got %+v", plan.Logs)
	}
	if e := plan.Logs[0].Entries[0]; e.Activity != domain.ActivityPreTrip || e.DurationHours != 0.1 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if plan.PickupTimestamp != nil || plan.DropoffTimestamp != nil {
		t.Fatalf("expected no pickup or dropoff")
	}
	if plan.Summary.RemainingDistanceMiles != 500 {
		t.Fatalf("remaining distance = %.2f, want 500", plan.Summary.RemainingDistanceMiles)
	}
}

func TestSimulateHOSCycleRunsOutMidTrip(t *testing.T) {
	plan, err := SimulateHOS(2000, 60, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !plan.Summary.CycleLimitReached {
		t.Fatalf("expected cycle limit reached")
	}
	if plan.Summary.CycleHoursConsumed != 10 {
		t.Fatalf("cycle consumed = %.2f, want 10", plan.Summary.CycleHoursConsumed)
	}
	if plan.Summary.RemainingDistanceMiles != 1532.5 {
		t.Fatalf("remaining distance = %.2f, want 1532.5", plan.Summary.RemainingDistanceMiles)
	}
	if plan.Summary.DaysPlanned != 1 {
		t.Fatalf("days planned = %d, want 1", plan.Summary.DaysPlanned)
	}
	if got := countActivity(plan, domain.ActivitySleeperBerth); got != 0 {
		t.Fatalf("sleeper berth entries = %d, want 0", got)
	}
	if plan.DropoffTimestamp != nil {
		t.Fatalf("expected no dropoff")
	}
	if last := plan.Stops[len(plan.Stops)-1]; last.Type == domain.StopDropoff {
		t.Fatalf("did not expect a dropoff stop")
	}
}

func TestSimulateHOSDropoffBeyondCycleMarksLimit(t *testing.T) {
	// 66 + 0.5 pre-trip + 1 pickup + 2 driving leaves 0.5h, short of the 1h dropoff.
	plan, err := SimulateHOS(110, 66, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !plan.Summary.CycleLimitReached {
		t.Fatalf("expected cycle limit reached when dropoff does not fit")
	}
	if plan.DropoffTimestamp != nil {
		t.Fatalf("expected no dropoff timestamp, got %v", plan.DropoffTimestamp)
	}
	if plan.Summary.RemainingDistanceMiles != 0 {
		t.Fatalf("remaining distance = %.2f, want 0", plan.Summary.RemainingDistanceMiles)
	}
	if plan.Summary.CycleHoursConsumed != 3.5 {
		t.Fatalf("cycle consumed = %.2f, want 3.5", plan.Summary.CycleHoursConsumed)
	}
}

func TestSimulateHOSZeroDistance(t *testing.T) {
	plan, err := SimulateHOS(0, 10, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.Summary.CycleLimitReached || plan.DropoffTimestamp == nil {
		t.Fatalf("expected a completed plan, got %+v", plan.Summary)
	}
	if got := countActivity(plan, domain.ActivityDriving); got != 0 {
		t.Fatalf("driving entries = %d, want 0", got)
	}
	if plan.Summary.CycleHoursConsumed != 2.5 {
		t.Fatalf("cycle consumed = %.2f, want 2.5", plan.Summary.CycleHoursConsumed)
	}
}

func TestSimulateHOSIsDeterministic(t *testing.T) {
	a, err := SimulateHOS(1234.56, 12.5, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := SimulateHOS(1234.56, 12.5, testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Fatalf("expected identical output for identical input")
	}
}

func TestSimulateHOSProperties(t *testing.T) {
	distances := []float64{0, 1, 54.9, 605, 999, 1000, 1650, 2750.25, 4100}
	cycles := []float64{0, 20, 45.75, 63, 68.8, 69.99}

	for _, d := range distances {
		for _, c := range cycles {
			plan, err := SimulateHOS(d, c, testNow)
			if err != nil {
				t.Fatalf("d=%.2f c=%.2f: unexpected error: %v", d, c, err)
			}

			s := plan.Summary
			if s.CycleHoursConsumed < 0 {
				t.Errorf("d=%.2f c=%.2f: negative cycle consumed %.2f", d, c, s.CycleHoursConsumed)
			}
			if s.CycleHoursStart+s.CycleHoursConsumed > CycleLimitHours+0.01 {
				t.Errorf("d=%.2f c=%.2f: cycle total %.2f exceeds cap", d, c, s.CycleHoursStart+s.CycleHoursConsumed)
			}
			if s.DaysPlanned != len(plan.Logs) {
				t.Errorf("d=%.2f c=%.2f: days planned %d != logs %d", d, c, s.DaysPlanned, len(plan.Logs))
			}
			if !s.CycleLimitReached {
				if len(plan.Stops) == 0 || plan.Stops[len(plan.Stops)-1].Type != domain.StopDropoff {
					t.Errorf("d=%.2f c=%.2f: completed plan must end with a dropoff stop", d, c)
				}
				if plan.DropoffTimestamp == nil {
					t.Errorf("d=%.2f c=%.2f: completed plan has no dropoff timestamp", d, c)
				}
				if s.RemainingDistanceMiles != 0 {
					t.Errorf("d=%.2f c=%.2f: completed plan has %.2f miles left", d, c, s.RemainingDistanceMiles)
				}
			}
			for i, day := range plan.Logs {
				if day.Day != i+1 || len(day.Entries) == 0 {
					t.Errorf("d=%.2f c=%.2f: bad day log %d: %+v", d, c, i, day)
				}
			}

			var driven float64
			for _, day := range plan.Logs {
				for _, e := range day.Entries {
					if e.Activity == domain.ActivityDriving {
						driven += e.End.Sub(e.Start).Hours() * AverageSpeedMPH
					}
				}
			}
			if math.Abs(driven+s.RemainingDistanceMiles-d) > 0.02 {
				t.Errorf("d=%.2f c=%.2f: driven %.2f + remaining %.2f != distance", d, c, driven, s.RemainingDistanceMiles)
			}

			assertDailyLimits(t, plan)
		}
	}
}

func newTestSimulator() *hosSimulator {
	s := &hosSimulator{fuelIndex: 1, stops: []domain.Stop{}}
	s.startDay(time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC))
	return s
}

func TestDriveTransitionAwaitsBreak(t *testing.T) {
	s := newTestSimulator()
	s.distanceRemaining = 500
	s.sinceBreak = BreakTriggerDrivingHours
	s.onDutyToday = 9.5
	s.drivingToday = 8

	if got := s.drive(); got != stateAwaitingBreak {
		t.Fatalf("drive() = %v, want AwaitingBreak", got)
	}
	if len(s.entries) != 0 {
		t.Fatalf("expected no entries, got %+v", s.entries)
	}

	if got := s.takeBreak(); got != stateDriving {
		t.Fatalf("takeBreak() = %v, want Driving", got)
	}
	if s.sinceBreak != 0 || s.onDutyToday != 9.5 || s.cycleTotal != 0 {
		t.Fatalf("break must reset since-break and not count as on-duty: %+v", s)
	}
	if e := s.entries[0]; e.Activity != domain.ActivityBreak || e.Status != domain.StatusOffDuty || e.DurationHours != 0.5 {
		t.Fatalf("unexpected break entry: %+v", e)
	}
}

func TestDriveTransitionTriggersFueling(t *testing.T) {
	s := newTestSimulator()
	s.distanceRemaining = 500
	s.distanceSinceFuel = 900

	if got := s.drive(); got != stateFueling {
		t.Fatalf("drive() = %v, want Fueling", got)
	}
	if s.distanceSinceFuel < FuelingIntervalMiles {
		t.Fatalf("distance since fuel = %.2f, want >= %.0f", s.distanceSinceFuel, FuelingIntervalMiles)
	}

	if got := s.refuel(); got != stateDriving {
		t.Fatalf("refuel() = %v, want Driving", got)
	}
	if s.distanceSinceFuel != 0 || s.fuelIndex != 2 {
		t.Fatalf("refuel must reset distance and advance index: %+v", s)
	}
	if last := s.stops[len(s.stops)-1]; last.Type != domain.StopFuel || last.Details != "Fuel stop 1" {
		t.Fatalf("unexpected fuel stop: %+v", last)
	}
}

func TestRefuelTransitionRespectsLimits(t *testing.T) {
	s := newTestSimulator()
	s.cycleTotal = 69.5
	s.distanceSinceFuel = 1000
	if got := s.refuel(); got != stateCycleExhausted {
		t.Fatalf("refuel() = %v, want CycleExhausted", got)
	}

	s = newTestSimulator()
	s.onDutyToday = 13.5
	s.distanceSinceFuel = 1000
	if got := s.refuel(); got != stateDayComplete {
		t.Fatalf("refuel() = %v, want DayComplete", got)
	}
	if s.distanceSinceFuel != 1000 || len(s.entries) != 0 {
		t.Fatalf("postponed fuel stop must leave state untouched: %+v", s)
	}
}

func TestDriveTransitionStopsAtCaps(t *testing.T) {
	s := newTestSimulator()
	s.distanceRemaining = 500
	s.drivingToday = MaxDrivingHoursPerDay
	if got := s.drive(); got != stateDayComplete {
		t.Fatalf("drive() = %v, want DayComplete at driving cap", got)
	}

	s = newTestSimulator()
	s.distanceRemaining = 500
	s.cycleTotal = CycleLimitHours
	if got := s.drive(); got != stateCycleExhausted {
		t.Fatalf("drive() = %v, want CycleExhausted", got)
	}

	s = newTestSimulator()
	s.distanceRemaining = 500
	s.cycleTotal = 69
	if got := s.drive(); got != stateCycleExhausted {
		t.Fatalf("drive() = %v, want CycleExhausted after last cycle hour", got)
	}
	if s.entries[0].DurationHours != 1 || s.distanceRemaining != 445 {
		t.Fatalf("expected a 1h chunk covering 55 miles, got %+v remaining %.2f", s.entries[0], s.distanceRemaining)
	}
}

func TestEndDayDefersDropoffPastOnDutyWindow(t *testing.T) {
	s := newTestSimulator()
	s.onDutyToday = 13.5
	s.cycleTotal = 40

	if done := s.endDay(2); done {
		t.Fatalf("expected the simulation to continue")
	}
	if s.dropoffAt != nil {
		t.Fatalf("expected dropoff to be deferred")
	}
	if last := s.entries[len(s.entries)-1]; last.Activity != domain.ActivitySleeperBerth {
		t.Fatalf("expected sleeper berth, got %+v", last)
	}
	if last := s.stops[len(s.stops)-1]; last.Type != domain.StopRest || last.Details != "Day 2 10-hour rest" {
		t.Fatalf("unexpected rest stop: %+v", last)
	}
}

func TestDriveStateString(t *testing.T) {
	if stateAwaitingBreak.String() != "AwaitingBreak" || stateCycleExhausted.String() != "CycleExhausted" {
		t.Fatalf("unexpected state names")
	}
}
