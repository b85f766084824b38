package domain

import (
	"context"
	"time"
)

// StoreReader is the read side of the persistent store. Safe for
// concurrent use; also implemented by in-flight transactions so
// check-then-act sequences can read through their own isolation scope.
type StoreReader interface {
	GetRoom(ctx context.Context, number string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	ListRoomsByStatus(ctx context.Context, st RoomStatus) ([]Room, error)
	SummarizeRooms(ctx context.Context) (RoomSummary, error)

	GetStay(ctx context.Context, id int64) (Stay, error)
	// ActiveStays returns the reserved and checked-in stays for a room.
	ActiveStays(ctx context.Context, roomNumber string) ([]Stay, error)
	ListStaysByStatus(ctx context.Context, st StayStatus) ([]Stay, error)
	// CheckedInStay returns the single checked-in stay for a room, or a
	// not-found error.
	CheckedInStay(ctx context.Context, roomNumber string) (Stay, error)
	// ActiveReservation returns the reserved stay for a room and guest.
	ActiveReservation(ctx context.Context, roomNumber, guestName string) (Stay, error)

	GetPayment(ctx context.Context, id int64) (Payment, error)
	PaymentsForStay(ctx context.Context, stayID int64) ([]Payment, error)
	ListPayments(ctx context.Context, q PaymentsQuery) ([]Payment, error)
	Debtors(ctx context.Context) ([]Debtor, error)
}

// StoreTx adds the write paths, only reachable inside Store.Txn so every
// mutation is part of one atomic unit.
type StoreTx interface {
	StoreReader

	// LockRoom reads the room row under an exclusive row lock, serializing
	// concurrent lifecycle operations on the same room.
	LockRoom(ctx context.Context, number string) (Room, error)
	// LockStay does the same for payment aggregation on a booking.
	LockStay(ctx context.Context, id int64) (Stay, error)

	CreateRoom(ctx context.Context, r Room) error
	UpdateRoom(ctx context.Context, r Room) error
	UpdateRoomStatus(ctx context.Context, number string, st RoomStatus) error
	DeleteRoom(ctx context.Context, number string) error
	StayCountForRoom(ctx context.Context, number string) (int, error)

	CreateStay(ctx context.Context, s *Stay) error
	UpdateStayStatus(ctx context.Context, id int64, st StayStatus) error
	UpdateStayPaymentStatus(ctx context.Context, id int64, st PaymentStatus) error

	CreatePayment(ctx context.Context, p *Payment) error
	UpdatePaymentStatus(ctx context.Context, id int64, st PaymentStatus) error
}

// Store is the transactional persistence port. Txn commits when fn
// returns nil and rolls back otherwise; a partial write is never visible.
type Store interface {
	StoreReader
	Txn(ctx context.Context, fn func(tx StoreTx) error) error
}

// PaymentsQuery filters the payment listing. Nil bounds are open ended;
// Voided selects between the voided and the non-voided population.
type PaymentsQuery struct {
	From   *time.Time
	To     *time.Time
	Voided bool
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock port.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// TokenVerifier resolves a bearer credential to a caller identity.
type TokenVerifier interface {
	Verify(token string) (Identity, error)
}
