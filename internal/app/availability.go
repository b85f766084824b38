package app

import (
	"context"

	"hotelops/internal/domain"
)

// AvailabilityChecker answers whether a date range on a room collides
// with an existing active stay. Read-only; safe to call repeatedly and
// concurrently.
type AvailabilityChecker struct {
	store domain.StoreReader
}

func NewAvailabilityChecker(s domain.StoreReader) *AvailabilityChecker {
	return &AvailabilityChecker{store: s}
}

func (c *AvailabilityChecker) FindConflict(ctx context.Context, roomNumber string, rng domain.DateRange) (*domain.Conflict, error) {
	return findConflict(ctx, c.store, roomNumber, rng)
}

// findConflict scans active check-ins before active reservations: an
// occupant in the room takes precedence in the message shown to the
// caller when both would collide. Lifecycle operations call this with
// their transaction as the reader so the check shares the write's
// isolation scope.
func findConflict(ctx context.Context, r domain.StoreReader, roomNumber string, rng domain.DateRange) (*domain.Conflict, error) {
	active, err := r.ActiveStays(ctx, roomNumber)
	if err != nil {
		return nil, err
	}
	for _, s := range active {
		if s.Status == domain.StayCheckedIn && rng.Overlaps(s.Range()) {
			return conflictOf(s), nil
		}
	}
	for _, s := range active {
		if s.Status == domain.StayReserved && rng.Overlaps(s.Range()) {
			return conflictOf(s), nil
		}
	}
	return nil, nil
}

func conflictOf(s domain.Stay) *domain.Conflict {
	kind := domain.ConflictReservation
	if s.Status == domain.StayCheckedIn {
		kind = domain.ConflictCheckIn
	}
	return &domain.Conflict{
		Kind:      kind,
		GuestName: s.GuestName,
		Arrival:   s.Arrival,
		Departure: s.Departure,
	}
}
