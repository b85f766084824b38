package app

import (
	"context"

	"hotelops/internal/domain"
)

// RoomService maintains the room registry. All operations are admin-only;
// lifecycle state stays under the StayService's control, so the only
// statuses an admin may set directly are available and maintenance.
type RoomService struct {
	store domain.Store
	cache domain.Cache
}

func NewRoomService(store domain.Store, cache domain.Cache) *RoomService {
	return &RoomService{store: store, cache: cache}
}

func (s *RoomService) CreateRoom(ctx context.Context, room domain.Room, caller domain.Identity) (domain.Room, error) {
	if !caller.Admin() {
		return domain.Room{}, domain.Permissionf("creating rooms requires the admin role")
	}
	if room.Number == "" {
		return domain.Room{}, domain.Validationf("room number is required")
	}
	if room.Rate < 0 {
		return domain.Room{}, domain.Validationf("nightly rate must not be negative")
	}
	if room.Status == "" {
		room.Status = domain.RoomAvailable
	}
	if room.Status != domain.RoomAvailable && room.Status != domain.RoomMaintenance {
		return domain.Room{}, domain.Validationf("new rooms may only be available or maintenance, not %q", room.Status)
	}

	err := s.store.Txn(ctx, func(tx domain.StoreTx) error {
		_, err := tx.GetRoom(ctx, room.Number)
		if err == nil {
			return domain.Conflictf("room %s already exists", room.Number).With("room_number", room.Number)
		}
		if !domain.IsKind(err, domain.KindNotFound) {
			return err
		}
		return tx.CreateRoom(ctx, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	s.invalidateRoomViews(ctx)
	return room, nil
}

type RoomUpdate struct {
	Type   *string
	Rate   *float64
	Status *domain.RoomStatus
}

func (s *RoomService) UpdateRoom(ctx context.Context, number string, upd RoomUpdate, caller domain.Identity) (domain.Room, error) {
	if !caller.Admin() {
		return domain.Room{}, domain.Permissionf("updating rooms requires the admin role")
	}
	if upd.Rate != nil && *upd.Rate < 0 {
		return domain.Room{}, domain.Validationf("nightly rate must not be negative")
	}
	if upd.Status != nil && *upd.Status != domain.RoomAvailable && *upd.Status != domain.RoomMaintenance {
		return domain.Room{}, domain.Validationf("rooms may only be set to available or maintenance directly; %q is derived from stay state", *upd.Status)
	}

	var room domain.Room
	err := s.store.Txn(ctx, func(tx domain.StoreTx) error {
		var err error
		room, err = tx.LockRoom(ctx, number)
		if err != nil {
			return err
		}
		if upd.Type != nil {
			room.Type = *upd.Type
		}
		if upd.Rate != nil {
			room.Rate = *upd.Rate
		}
		if upd.Status != nil && *upd.Status != room.Status {
			active, err := tx.ActiveStays(ctx, number)
			if err != nil {
				return err
			}
			if len(active) > 0 {
				return domain.InvalidStatef("room %s still has active stays", number).With("room_number", number)
			}
			room.Status = *upd.Status
		}
		return tx.UpdateRoom(ctx, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	s.invalidateRoomViews(ctx)
	return room, nil
}

// DeleteRoom removes a room that is available and has never been stayed
// in; historical stays keep their room referenced for the audit trail.
func (s *RoomService) DeleteRoom(ctx context.Context, number string, caller domain.Identity) error {
	if !caller.Admin() {
		return domain.Permissionf("deleting rooms requires the admin role")
	}
	err := s.store.Txn(ctx, func(tx domain.StoreTx) error {
		room, err := tx.LockRoom(ctx, number)
		if err != nil {
			return err
		}
		if room.Status != domain.RoomAvailable {
			return domain.InvalidStatef("room %s cannot be deleted while %s", number, room.Status).With("room_number", number)
		}
		n, err := tx.StayCountForRoom(ctx, number)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.InvalidStatef("room %s is referenced by %d stays", number, n).With("room_number", number)
		}
		return tx.DeleteRoom(ctx, number)
	})
	if err != nil {
		return err
	}
	s.invalidateRoomViews(ctx)
	return nil
}

func (s *RoomService) invalidateRoomViews(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, cacheKeyAvailableRooms)
	_ = s.cache.Del(ctx, cacheKeyRoomSummary)
}
