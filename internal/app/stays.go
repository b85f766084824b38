package app

import (
	"context"
	"time"

	"hotelops/internal/domain"
)

const dateLayout = "2006-01-02"

// StayService orchestrates the reservation/check-in/check-out/cancel
// lifecycle. Every mutation runs the availability read, the stay write and
// the room status write inside one transaction, with the room row locked
// first so concurrent requests against the same room serialize.
type StayService struct {
	store domain.Store
	cache domain.Cache
	clock domain.Clock
}

func NewStayService(store domain.Store, cache domain.Cache, clock domain.Clock) *StayService {
	return &StayService{store: store, cache: cache, clock: clock}
}

type StayInput struct {
	RoomNumber string
	GuestName  string
	Arrival    time.Time
	Departure  time.Time
}

func (s *StayService) CreateReservation(ctx context.Context, in StayInput) (domain.Stay, error) {
	rng := domain.DateRange{Arrival: in.Arrival, Departure: in.Departure}
	if !rng.Valid() {
		return domain.Stay{}, domain.Validationf("arrival date must not be after departure date")
	}
	if !in.Arrival.After(today(s.clock)) {
		return domain.Stay{}, domain.Validationf("reservations require a future arrival date; use check-in for arrivals today")
	}

	var stay domain.Stay
	err := s.store.Txn(ctx, func(tx domain.StoreTx) error {
		room, err := tx.LockRoom(ctx, in.RoomNumber)
		if err != nil {
			return err
		}
		if room.Status == domain.RoomMaintenance {
			return domain.InvalidStatef("room %s is under maintenance", room.Number).With("room_number", room.Number)
		}
		conflict, err := findConflict(ctx, tx, in.RoomNumber, rng)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflictError(room.Number, conflict)
		}
		stay = domain.Stay{
			RoomNumber:    in.RoomNumber,
			GuestName:     in.GuestName,
			Arrival:       in.Arrival,
			Departure:     in.Departure,
			Nights:        rng.Nights(),
			Status:        domain.StayReserved,
			PaymentStatus: domain.PaymentUnpaid,
		}
		if err := tx.CreateStay(ctx, &stay); err != nil {
			return err
		}
		return s.recomputeRoomStatus(ctx, tx, in.RoomNumber)
	})
	if err != nil {
		return domain.Stay{}, err
	}
	s.invalidateRoomViews(ctx)
	return stay, nil
}

func (s *StayService) CheckIn(ctx context.Context, in StayInput) (domain.Stay, error) {
	rng := domain.DateRange{Arrival: in.Arrival, Departure: in.Departure}
	if !rng.Valid() {
		return domain.Stay{}, domain.Validationf("arrival date must not be after departure date")
	}

	var stay domain.Stay
	err := s.store.Txn(ctx, func(tx domain.StoreTx) error {
		room, err := tx.LockRoom(ctx, in.RoomNumber)
		if err != nil {
			return err
		}
		if room.Status != domain.RoomAvailable {
			return domain.InvalidStatef("room %s is not available for check-in (status %s)", room.Number, room.Status).
				With("room_number", room.Number)
		}
		// The room can be available yet hold a future reservation whose
		// range overlaps the requested one; the non-overlap invariant
		// still applies.
		conflict, err := findConflict(ctx, tx, in.RoomNumber, rng)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflictError(room.Number, conflict)
		}
		stay = domain.Stay{
			RoomNumber:    in.RoomNumber,
			GuestName:     in.GuestName,
			Arrival:       in.Arrival,
			Departure:     in.Departure,
			Nights:        rng.Nights(),
			Status:        domain.StayCheckedIn,
			PaymentStatus: domain.PaymentUnpaid,
		}
		if err := tx.CreateStay(ctx, &stay); err != nil {
			return err
		}
		return s.recomputeRoomStatus(ctx, tx, in.RoomNumber)
	})
	if err != nil {
		return domain.Stay{}, err
	}
	s.invalidateRoomViews(ctx)
	return stay, nil
}

func (s *StayService) CheckOut(ctx context.Context, roomNumber string) (domain.Stay, error) {
	var stay domain.Stay
	err := s.store.Txn(ctx, func(tx domain.StoreTx) error {
		if _, err := tx.LockRoom(ctx, roomNumber); err != nil {
			return err
		}
		var err error
		stay, err = tx.CheckedInStay(ctx, roomNumber)
		if err != nil {
			if domain.IsKind(err, domain.KindNotFound) {
				return domain.InvalidStatef("room %s has no checked-in guest", roomNumber).
					With("room_number", roomNumber)
			}
			return err
		}
		if err := tx.UpdateStayStatus(ctx, stay.ID, domain.StayCheckedOut); err != nil {
			return err
		}
		stay.Status = domain.StayCheckedOut
		// The room may still carry future reservations; derive rather than
		// unconditionally flip to available.
		return s.recomputeRoomStatus(ctx, tx, roomNumber)
	})
	if err != nil {
		return domain.Stay{}, err
	}
	s.invalidateRoomViews(ctx)
	return stay, nil
}

func (s *StayService) CancelReservation(ctx context.Context, roomNumber, guestName string, caller domain.Identity) (domain.Stay, error) {
	if !caller.Admin() {
		if guestName != "" && guestName != caller.Username {
			return domain.Stay{}, domain.Permissionf("only admins may cancel another guest's reservation")
		}
		guestName = caller.Username
	}

	var stay domain.Stay
	err := s.store.Txn(ctx, func(tx domain.StoreTx) error {
		if _, err := tx.LockRoom(ctx, roomNumber); err != nil {
			return err
		}
		var err error
		stay, err = tx.ActiveReservation(ctx, roomNumber, guestName)
		if err != nil {
			return err
		}
		if !caller.MayCancel(stay) {
			return domain.Permissionf("caller %s may not cancel this reservation", caller.Username)
		}
		if err := tx.UpdateStayStatus(ctx, stay.ID, domain.StayCancelled); err != nil {
			return err
		}
		stay.Status = domain.StayCancelled
		return s.recomputeRoomStatus(ctx, tx, roomNumber)
	})
	if err != nil {
		return domain.Stay{}, err
	}
	s.invalidateRoomViews(ctx)
	return stay, nil
}

func (s *StayService) recomputeRoomStatus(ctx context.Context, tx domain.StoreTx, roomNumber string) error {
	active, err := tx.ActiveStays(ctx, roomNumber)
	if err != nil {
		return err
	}
	return tx.UpdateRoomStatus(ctx, roomNumber, domain.DeriveStatus(active))
}

func (s *StayService) invalidateRoomViews(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, cacheKeyAvailableRooms)
	_ = s.cache.Del(ctx, cacheKeyRoomSummary)
}

func conflictError(roomNumber string, c *domain.Conflict) *domain.Error {
	return domain.Conflictf("room %s has a conflicting %s from %s to %s",
		roomNumber, c.Kind, c.Arrival.Format(dateLayout), c.Departure.Format(dateLayout)).
		With("room_number", roomNumber).
		With("kind", string(c.Kind)).
		With("arrival_date", c.Arrival.Format(dateLayout)).
		With("departure_date", c.Departure.Format(dateLayout))
}

// today truncates the clock to day precision in UTC, matching the day
// precision of stay ranges.
func today(c domain.Clock) time.Time {
	now := c.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
