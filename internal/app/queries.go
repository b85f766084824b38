package app

import (
	"context"
	"time"

	"hotelops/internal/domain"
)

const (
	cacheKeyAvailableRooms = "rooms:available"
	cacheKeyRoomSummary    = "rooms:summary"
)

// QueryService serves the read models. The room views are cache-aside:
// lifecycle mutations invalidate, reads repopulate.
type QueryService struct {
	store    domain.StoreReader
	cache    domain.Cache
	clock    domain.Clock
	cacheTTL time.Duration
}

func NewQueryService(store domain.StoreReader, cache domain.Cache, clock domain.Clock, ttl time.Duration) *QueryService {
	return &QueryService{store: store, cache: cache, clock: clock, cacheTTL: ttl}
}

type RoomsView struct {
	Total int           `json:"total"`
	Rooms []domain.Room `json:"rooms"`
}

func (s *QueryService) AvailableRooms(ctx context.Context) (RoomsView, error) {
	var out RoomsView
	if ok, _ := s.cache.Get(ctx, cacheKeyAvailableRooms, &out); ok {
		return out, nil
	}
	rooms, err := s.store.ListRoomsByStatus(ctx, domain.RoomAvailable)
	if err != nil {
		return RoomsView{}, err
	}
	out = RoomsView{Total: len(rooms), Rooms: rooms}
	_ = s.cache.Set(ctx, cacheKeyAvailableRooms, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *QueryService) RoomSummary(ctx context.Context) (domain.RoomSummary, error) {
	var out domain.RoomSummary
	if ok, _ := s.cache.Get(ctx, cacheKeyRoomSummary, &out); ok {
		return out, nil
	}
	sum, err := s.store.SummarizeRooms(ctx)
	if err != nil {
		return domain.RoomSummary{}, err
	}
	_ = s.cache.Set(ctx, cacheKeyRoomSummary, sum, int(s.cacheTTL.Seconds()))
	return sum, nil
}

func (s *QueryService) ListRooms(ctx context.Context) (RoomsView, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return RoomsView{}, err
	}
	return RoomsView{Total: len(rooms), Rooms: rooms}, nil
}

func (s *QueryService) ActiveReservations(ctx context.Context) ([]domain.Stay, error) {
	return s.store.ListStaysByStatus(ctx, domain.StayReserved)
}

func (s *QueryService) CheckedInGuests(ctx context.Context) ([]domain.Stay, error) {
	return s.store.ListStaysByStatus(ctx, domain.StayCheckedIn)
}

func (s *QueryService) GetPayment(ctx context.Context, id int64) (domain.Payment, error) {
	return s.store.GetPayment(ctx, id)
}

// PaymentsReport is a payment listing plus the aggregate over its rows.
// For the non-voided population the total counts amounts actually paid;
// discounts are a concession, not cash.
type PaymentsReport struct {
	Count    int              `json:"count"`
	Total    float64          `json:"total"`
	Payments []domain.Payment `json:"payments"`
}

func (s *QueryService) ListPayments(ctx context.Context, from, to *time.Time, voided bool) (PaymentsReport, error) {
	if from != nil && to != nil && from.After(*to) {
		return PaymentsReport{}, domain.Validationf("start date cannot be after end date")
	}
	payments, err := s.store.ListPayments(ctx, domain.PaymentsQuery{From: from, To: to, Voided: voided})
	if err != nil {
		return PaymentsReport{}, err
	}
	return report(payments), nil
}

// DailyTotal reports today's non-voided payments and their sum.
func (s *QueryService) DailyTotal(ctx context.Context) (PaymentsReport, error) {
	start := today(s.clock)
	end := start.Add(24*time.Hour - time.Nanosecond)
	payments, err := s.store.ListPayments(ctx, domain.PaymentsQuery{From: &start, To: &end})
	if err != nil {
		return PaymentsReport{}, err
	}
	return report(payments), nil
}

type DebtorsReport struct {
	Count     int             `json:"count"`
	TotalDebt float64         `json:"total_debt"`
	Debtors   []domain.Debtor `json:"debtors"`
}

func (s *QueryService) Debtors(ctx context.Context) (DebtorsReport, error) {
	debtors, err := s.store.Debtors(ctx)
	if err != nil {
		return DebtorsReport{}, err
	}
	out := DebtorsReport{Count: len(debtors), Debtors: debtors}
	for _, d := range debtors {
		out.TotalDebt += d.BalanceDue
	}
	return out, nil
}

func report(payments []domain.Payment) PaymentsReport {
	out := PaymentsReport{Count: len(payments), Payments: payments}
	for _, p := range payments {
		out.Total += p.AmountPaid
	}
	return out
}
