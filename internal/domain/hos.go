package domain

import "time"

// Activity recorded on a duty log line.
type Activity string

const (
	ActivityPreTrip        Activity = "Pre-Trip Inspection"
	ActivityPickupService  Activity = "Pickup Service"
	ActivityDriving        Activity = "Driving"
	ActivityBreak          Activity = "30-Minute Break"
	ActivityFueling        Activity = "Fueling"
	ActivityDropoffService Activity = "Dropoff Service"
	ActivitySleeperBerth   Activity = "Sleeper Berth"
)

// Duty status of a log line.
type DutyStatus string

const (
	StatusOnDuty  DutyStatus = "On Duty"
	StatusOffDuty DutyStatus = "Off Duty"
	StatusDriving DutyStatus = "Driving"
)

// StopType labels a notable point in a trip.
type StopType string

const (
	StopStart   StopType = "Start"
	StopPickup  StopType = "Pickup"
	StopDropoff StopType = "Dropoff"
	StopFuel    StopType = "Fuel Stop"
	StopRest    StopType = "Rest"
)

// A single duty log line. End is Start plus the unrounded duration;
// DurationHours is rounded to two decimals for display.
type DutyEntry struct {
	Activity      Activity   `json:"activity"`
	Status        DutyStatus `json:"status"`
	Start         time.Time  `json:"start"`
	End           time.Time  `json:"end"`
	DurationHours float64    `json:"duration_hours"`
}

// The duty log for one simulated calendar day.
type DayLog struct {
	Day     int         `json:"day"`
	Start   time.Time   `json:"start"`
	Entries []DutyEntry `json:"entries"`
}

// Stop is a notable event along the trip. Timestamp is nil when unknown.
type Stop struct {
	Type      StopType   `json:"type"`
	Details   string     `json:"details"`
	Timestamp *time.Time `json:"timestamp"`
}

type Summary struct {
	TotalDistanceMiles     float64   `json:"total_distance_miles"`
	EstimatedDriveHours    float64   `json:"estimated_drive_hours"`
	DaysPlanned            int       `json:"days_planned"`
	CycleHoursStart        float64   `json:"cycle_hours_start"`
	CycleHoursConsumed     float64   `json:"cycle_hours_consumed"`
	CycleLimitReached      bool      `json:"cycle_limit_reached"`
	RemainingDistanceMiles float64   `json:"remaining_distance_miles"`
	EstimatedCompletion    time.Time `json:"estimated_completion"`
}

// Output of the Hours-of-Service simulation.
// A plan with Summary.CycleLimitReached set is partial but still valid.
type HosPlan struct {
	Summary          Summary    `json:"summary"`
	Logs             []DayLog   `json:"logs"`
	Stops            []Stop     `json:"stops"`
	PickupTimestamp  *time.Time `json:"pickup_timestamp"`
	DropoffTimestamp *time.Time `json:"dropoff_timestamp"`
}
