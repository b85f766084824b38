package app_test

import (
	"context"
	"testing"
	"time"

	"hotelops/internal/app"
	"hotelops/internal/domain"
)

func TestAvailableRooms_CacheMissThenHit(t *testing.T) {
	store := newFakeStore(
		domain.Room{Number: "101", Type: "double", Rate: 100, Status: domain.RoomAvailable},
		domain.Room{Number: "102", Type: "single", Rate: 60, Status: domain.RoomCheckedIn},
	)
	cache := &fakeCache{}
	q := app.NewQueryService(store, cache, clockAt("2026-03-01T09:00:00Z"), 10*time.Minute)
	ctx := context.Background()

	// Miss (first time, populates cache)
	view, err := q.AvailableRooms(ctx)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if view.Total != 1 || view.Rooms[0].Number != "101" {
		t.Fatalf("unexpected view: %+v", view)
	}

	// Mutate store to ensure second read indeed comes from cache
	if err := store.UpdateRoomStatus(ctx, "102", domain.RoomAvailable); err != nil {
		t.Fatalf("seed: %v", err)
	}
	view2, err := q.AvailableRooms(ctx)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if view2.Total != 1 {
		t.Fatalf("expected cached view, got %+v", view2)
	}
}

func TestRoomSummary_Cached(t *testing.T) {
	store := newFakeStore(
		domain.Room{Number: "101", Status: domain.RoomAvailable},
		domain.Room{Number: "102", Status: domain.RoomReserved},
		domain.Room{Number: "103", Status: domain.RoomCheckedIn},
		domain.Room{Number: "104", Status: domain.RoomMaintenance},
	)
	cache := &fakeCache{}
	q := app.NewQueryService(store, cache, clockAt("2026-03-01T09:00:00Z"), 10*time.Minute)

	sum, err := q.RoomSummary(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	want := domain.RoomSummary{Total: 4, Available: 1, Reserved: 1, CheckedIn: 1, Maintenance: 1}
	if sum != want {
		t.Fatalf("summary %+v, want %+v", sum, want)
	}
	if _, ok := cache.store["rooms:summary"]; !ok {
		t.Fatal("summary not cached")
	}
}

func TestListPayments_RangeValidation(t *testing.T) {
	q := app.NewQueryService(newFakeStore(), &fakeCache{}, clockAt("2026-03-01T09:00:00Z"), time.Minute)

	from, to := day("2026-03-10"), day("2026-03-01")
	_, err := q.ListPayments(context.Background(), &from, &to, false)
	if !domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}

func TestListPayments_SplitsVoidedPopulation(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	seed := []domain.Payment{
		{StayID: 1, AmountPaid: 100, PaidAt: day("2026-03-01"), Status: domain.PaymentIncomplete},
		{StayID: 1, AmountPaid: 40, PaidAt: day("2026-03-02"), Status: domain.PaymentVoided},
		{StayID: 2, AmountPaid: 60, PaidAt: day("2026-03-03"), Status: domain.PaymentCompleted},
	}
	for i := range seed {
		if err := store.CreatePayment(ctx, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	q := app.NewQueryService(store, &fakeCache{}, clockAt("2026-03-05T09:00:00Z"), time.Minute)

	rep, err := q.ListPayments(ctx, nil, nil, false)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rep.Count != 2 || rep.Total != 160 {
		t.Fatalf("non-voided report wrong: %+v", rep)
	}

	voided, err := q.ListPayments(ctx, nil, nil, true)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if voided.Count != 1 || voided.Total != 40 {
		t.Fatalf("voided report wrong: %+v", voided)
	}
}

func TestDailyTotal_OnlyToday(t *testing.T) {
	store := newFakeStore()
	ctx := context.Background()
	seed := []domain.Payment{
		{StayID: 1, AmountPaid: 100, PaidAt: day("2026-03-04"), Status: domain.PaymentIncomplete},
		{StayID: 1, AmountPaid: 50, PaidAt: time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC), Status: domain.PaymentIncomplete},
		{StayID: 2, AmountPaid: 25, PaidAt: time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC), Status: domain.PaymentCompleted},
	}
	for i := range seed {
		if err := store.CreatePayment(ctx, &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	q := app.NewQueryService(store, &fakeCache{}, clockAt("2026-03-05T09:00:00Z"), time.Minute)

	rep, err := q.DailyTotal(ctx)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rep.Count != 2 || rep.Total != 75 {
		t.Fatalf("daily total wrong: %+v", rep)
	}
}

func TestDebtors_SumsOutstanding(t *testing.T) {
	store := newFakeStore(room101())
	ctx := context.Background()
	stay := seedCheckedInStay(t, store) // total due 200
	p := domain.Payment{StayID: stay.ID, AmountPaid: 50, PaidAt: day("2026-03-01"), Status: domain.PaymentIncomplete}
	if err := store.CreatePayment(ctx, &p); err != nil {
		t.Fatalf("seed: %v", err)
	}
	q := app.NewQueryService(store, &fakeCache{}, clockAt("2026-03-05T09:00:00Z"), time.Minute)

	rep, err := q.Debtors(ctx)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if rep.Count != 1 || rep.TotalDebt != 150 {
		t.Fatalf("debtors report wrong: %+v", rep)
	}
	d := rep.Debtors[0]
	if d.TotalDue != 200 || d.TotalPaid != 50 || d.BalanceDue != 150 {
		t.Fatalf("debtor row wrong: %+v", d)
	}
}
