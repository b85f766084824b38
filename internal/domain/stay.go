package domain

import "time"

type StayStatus string

const (
	StayReserved   StayStatus = "reserved"
	StayCheckedIn  StayStatus = "checked-in"
	StayCheckedOut StayStatus = "checked-out"
	StayCancelled  StayStatus = "cancelled"
)

// Active reports whether the stay still occupies its date range for
// conflict purposes.
func (s StayStatus) Active() bool {
	return s == StayReserved || s == StayCheckedIn
}

// Stay is a reservation or check-in record against a room. The room is
// referenced by number, not owned. Nights is snapshotted at creation so a
// later rate or date change never alters an existing guest's obligation.
type Stay struct {
	ID            int64
	RoomNumber    string
	GuestName     string
	Arrival       time.Time
	Departure     time.Time
	Nights        int
	Status        StayStatus
	PaymentStatus PaymentStatus
}

func (s Stay) Range() DateRange {
	return DateRange{Arrival: s.Arrival, Departure: s.Departure}
}

// DateRange is a [Arrival, Departure] interval at day precision.
type DateRange struct {
	Arrival   time.Time
	Departure time.Time
}

func (r DateRange) Valid() bool {
	return !r.Arrival.IsZero() && !r.Departure.IsZero() && !r.Arrival.After(r.Departure)
}

// Overlaps uses inclusive bounds on both ends: a departure on day X and an
// arrival on day X count as a conflict (no same-day turnover).
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Arrival.After(o.Departure) && !o.Arrival.After(r.Departure)
}

// Nights returns the billable night count, never less than one.
func (r DateRange) Nights() int {
	n := int(r.Departure.Sub(r.Arrival).Hours() / 24)
	if n < 1 {
		n = 1
	}
	return n
}

type ConflictKind string

const (
	ConflictCheckIn     ConflictKind = "check-in"
	ConflictReservation ConflictKind = "reservation"
)

// Conflict describes the stay that blocks a requested date range.
type Conflict struct {
	Kind      ConflictKind
	GuestName string
	Arrival   time.Time
	Departure time.Time
}
