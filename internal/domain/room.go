package domain

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomReserved    RoomStatus = "reserved"
	RoomCheckedIn   RoomStatus = "checked-in"
	RoomMaintenance RoomStatus = "maintenance"
)

type Room struct {
	Number string
	Type   string
	Rate   float64 // per night
	Status RoomStatus
}

// DeriveStatus recomputes a room's status from its remaining active stays.
// A checked-in stay wins over any reservation; no active stays means available.
// Maintenance is an administrative state and never derived here; lifecycle
// operations refuse to run against a maintenance room in the first place.
func DeriveStatus(active []Stay) RoomStatus {
	status := RoomAvailable
	for _, s := range active {
		switch s.Status {
		case StayCheckedIn:
			return RoomCheckedIn
		case StayReserved:
			status = RoomReserved
		}
	}
	return status
}

// RoomSummary is the per-status occupancy breakdown of the registry.
type RoomSummary struct {
	Total       int
	Available   int
	Reserved    int
	CheckedIn   int
	Maintenance int
}
