package app_test

import (
	"context"
	"sort"
	"time"

	"hotelops/internal/app"
	"hotelops/internal/domain"
)

// ---- fakes ----

// fakeStore keeps everything in maps and runs Txn callbacks against
// itself, so the services' transactional flow is exercised without a
// database. Not concurrency safe; tests are sequential.
type fakeStore struct {
	rooms    map[string]domain.Room
	stays    map[int64]domain.Stay
	payments map[int64]domain.Payment
	nextID   int64
}

func newFakeStore(rooms ...domain.Room) *fakeStore {
	f := &fakeStore{
		rooms:    map[string]domain.Room{},
		stays:    map[int64]domain.Stay{},
		payments: map[int64]domain.Payment{},
	}
	for _, r := range rooms {
		f.rooms[r.Number] = r
	}
	return f
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Txn(ctx context.Context, fn func(tx domain.StoreTx) error) error {
	return fn(f)
}

// reads

func (f *fakeStore) GetRoom(ctx context.Context, number string) (domain.Room, error) {
	r, ok := f.rooms[number]
	if !ok {
		return domain.Room{}, domain.NotFoundf("room %s not found", number)
	}
	return r, nil
}

func (f *fakeStore) ListRooms(ctx context.Context) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(f.rooms))
	for _, r := range f.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeStore) ListRoomsByStatus(ctx context.Context, st domain.RoomStatus) ([]domain.Room, error) {
	all, _ := f.ListRooms(ctx)
	out := all[:0:0]
	for _, r := range all {
		if r.Status == st {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) SummarizeRooms(ctx context.Context) (domain.RoomSummary, error) {
	var s domain.RoomSummary
	for _, r := range f.rooms {
		s.Total++
		switch r.Status {
		case domain.RoomAvailable:
			s.Available++
		case domain.RoomReserved:
			s.Reserved++
		case domain.RoomCheckedIn:
			s.CheckedIn++
		case domain.RoomMaintenance:
			s.Maintenance++
		}
	}
	return s, nil
}

func (f *fakeStore) GetStay(ctx context.Context, id int64) (domain.Stay, error) {
	s, ok := f.stays[id]
	if !ok {
		return domain.Stay{}, domain.NotFoundf("booking %d not found", id)
	}
	return s, nil
}

func (f *fakeStore) staysSorted() []domain.Stay {
	out := make([]domain.Stay, 0, len(f.stays))
	for _, s := range f.stays {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) ActiveStays(ctx context.Context, roomNumber string) ([]domain.Stay, error) {
	var out []domain.Stay
	for _, s := range f.staysSorted() {
		if s.RoomNumber == roomNumber && s.Status.Active() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListStaysByStatus(ctx context.Context, st domain.StayStatus) ([]domain.Stay, error) {
	var out []domain.Stay
	for _, s := range f.staysSorted() {
		if s.Status == st {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) CheckedInStay(ctx context.Context, roomNumber string) (domain.Stay, error) {
	for _, s := range f.staysSorted() {
		if s.RoomNumber == roomNumber && s.Status == domain.StayCheckedIn {
			return s, nil
		}
	}
	return domain.Stay{}, domain.NotFoundf("no checked-in stay for room %s", roomNumber)
}

func (f *fakeStore) ActiveReservation(ctx context.Context, roomNumber, guestName string) (domain.Stay, error) {
	for _, s := range f.staysSorted() {
		if s.RoomNumber == roomNumber && s.GuestName == guestName && s.Status == domain.StayReserved {
			return s, nil
		}
	}
	return domain.Stay{}, domain.NotFoundf("no reservation for %s in room %s", guestName, roomNumber)
}

func (f *fakeStore) GetPayment(ctx context.Context, id int64) (domain.Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return domain.Payment{}, domain.NotFoundf("payment %d not found", id)
	}
	return p, nil
}

func (f *fakeStore) paymentsSorted() []domain.Payment {
	out := make([]domain.Payment, 0, len(f.payments))
	for _, p := range f.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeStore) PaymentsForStay(ctx context.Context, stayID int64) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range f.paymentsSorted() {
		if p.StayID == stayID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPayments(ctx context.Context, q domain.PaymentsQuery) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range f.paymentsSorted() {
		voided := p.Status == domain.PaymentVoided
		if voided != q.Voided {
			continue
		}
		if q.From != nil && p.PaidAt.Before(*q.From) {
			continue
		}
		if q.To != nil && p.PaidAt.After(*q.To) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) Debtors(ctx context.Context) ([]domain.Debtor, error) {
	var out []domain.Debtor
	for _, s := range f.staysSorted() {
		if s.Status == domain.StayCancelled {
			continue
		}
		room := f.rooms[s.RoomNumber]
		due := float64(s.Nights) * room.Rate
		var paid float64
		for _, p := range f.paymentsSorted() {
			if p.StayID == s.ID && p.Status != domain.PaymentVoided {
				paid += p.Credit()
			}
		}
		if due-paid > 0 {
			out = append(out, domain.Debtor{
				StayID:     s.ID,
				GuestName:  s.GuestName,
				RoomNumber: s.RoomNumber,
				Rate:       room.Rate,
				Nights:     s.Nights,
				TotalDue:   due,
				TotalPaid:  paid,
				BalanceDue: due - paid,
			})
		}
	}
	return out, nil
}

// writes (StoreTx)

func (f *fakeStore) LockRoom(ctx context.Context, number string) (domain.Room, error) {
	return f.GetRoom(ctx, number)
}

func (f *fakeStore) LockStay(ctx context.Context, id int64) (domain.Stay, error) {
	return f.GetStay(ctx, id)
}

func (f *fakeStore) CreateRoom(ctx context.Context, r domain.Room) error {
	f.rooms[r.Number] = r
	return nil
}

func (f *fakeStore) UpdateRoom(ctx context.Context, r domain.Room) error {
	f.rooms[r.Number] = r
	return nil
}

func (f *fakeStore) UpdateRoomStatus(ctx context.Context, number string, st domain.RoomStatus) error {
	r := f.rooms[number]
	r.Status = st
	f.rooms[number] = r
	return nil
}

func (f *fakeStore) DeleteRoom(ctx context.Context, number string) error {
	delete(f.rooms, number)
	return nil
}

func (f *fakeStore) StayCountForRoom(ctx context.Context, number string) (int, error) {
	n := 0
	for _, s := range f.stays {
		if s.RoomNumber == number {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateStay(ctx context.Context, s *domain.Stay) error {
	s.ID = f.id()
	f.stays[s.ID] = *s
	return nil
}

func (f *fakeStore) UpdateStayStatus(ctx context.Context, id int64, st domain.StayStatus) error {
	s := f.stays[id]
	s.Status = st
	f.stays[id] = s
	return nil
}

func (f *fakeStore) UpdateStayPaymentStatus(ctx context.Context, id int64, st domain.PaymentStatus) error {
	s := f.stays[id]
	s.PaymentStatus = st
	f.stays[id] = s
	return nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, p *domain.Payment) error {
	p.ID = f.id()
	f.payments[p.ID] = *p
	return nil
}

func (f *fakeStore) UpdatePaymentStatus(ctx context.Context, id int64, st domain.PaymentStatus) error {
	p := f.payments[id]
	p.Status = st
	f.payments[id] = p
	return nil
}

type fakeCache struct {
	store map[string]any
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *app.RoomsView:
		*d = v.(app.RoomsView)
	case *domain.RoomSummary:
		*d = v.(domain.RoomSummary)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

// ---- helpers ----

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func clockAt(s string) domain.ClockFunc {
	now, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return now }
}

var (
	admin = domain.Identity{Username: "boss", Role: domain.RoleAdmin}
	guest = domain.Identity{Username: "ada", Role: domain.RoleGuest}
)
