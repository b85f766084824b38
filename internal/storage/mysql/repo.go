package mysql

import (
	"context"
	"database/sql"
	"strings"

	"hotelops/internal/domain"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements domain.Store over MySQL. Reads run against the pool;
// Txn hands callers a storeTx whose reads and writes share one
// transaction.
type Store struct {
	queries
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{queries: queries{q: db}, db: db}
}

func (s *Store) Txn(ctx context.Context, fn func(tx domain.StoreTx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Persistence(err)
	}
	if err := fn(&storeTx{queries: queries{q: tx}, tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return domain.Persistence(err)
	}
	return nil
}

// queries holds the read paths, shared by the pool and by transactions.
type queries struct{ q querier }

func (r queries) GetRoom(ctx context.Context, number string) (domain.Room, error) {
	return scanRoom(r.q.QueryRowContext(ctx, selectRoomSQL, number), number)
}

func (r queries) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return r.roomList(ctx, listRoomsSQL)
}

func (r queries) ListRoomsByStatus(ctx context.Context, st domain.RoomStatus) ([]domain.Room, error) {
	return r.roomList(ctx, listRoomsByStatusSQL, string(st))
}

func (r queries) roomList(ctx context.Context, query string, args ...any) ([]domain.Room, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Persistence(err)
	}
	defer rows.Close()

	var out []domain.Room
	for rows.Next() {
		var rm domain.Room
		if err := rows.Scan(&rm.Number, &rm.Type, &rm.Rate, &rm.Status); err != nil {
			return nil, domain.Persistence(err)
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence(err)
	}
	return out, nil
}

func (r queries) SummarizeRooms(ctx context.Context) (domain.RoomSummary, error) {
	rows, err := r.q.QueryContext(ctx, summarizeRoomsSQL)
	if err != nil {
		return domain.RoomSummary{}, domain.Persistence(err)
	}
	defer rows.Close()

	var sum domain.RoomSummary
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return domain.RoomSummary{}, domain.Persistence(err)
		}
		sum.Total += n
		switch domain.RoomStatus(st) {
		case domain.RoomAvailable:
			sum.Available = n
		case domain.RoomReserved:
			sum.Reserved = n
		case domain.RoomCheckedIn:
			sum.CheckedIn = n
		case domain.RoomMaintenance:
			sum.Maintenance = n
		}
	}
	if err := rows.Err(); err != nil {
		return domain.RoomSummary{}, domain.Persistence(err)
	}
	return sum, nil
}

func (r queries) GetStay(ctx context.Context, id int64) (domain.Stay, error) {
	return scanStay(r.q.QueryRowContext(ctx, selectStaySQL, id), id)
}

func (r queries) ActiveStays(ctx context.Context, roomNumber string) ([]domain.Stay, error) {
	return r.stayList(ctx, activeStaysSQL, roomNumber)
}

func (r queries) ListStaysByStatus(ctx context.Context, st domain.StayStatus) ([]domain.Stay, error) {
	return r.stayList(ctx, listStaysByStatusSQL, string(st))
}

func (r queries) stayList(ctx context.Context, query string, args ...any) ([]domain.Stay, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Persistence(err)
	}
	defer rows.Close()

	var out []domain.Stay
	for rows.Next() {
		var s domain.Stay
		if err := rows.Scan(&s.ID, &s.RoomNumber, &s.GuestName, &s.Arrival, &s.Departure,
			&s.Nights, &s.Status, &s.PaymentStatus); err != nil {
			return nil, domain.Persistence(err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence(err)
	}
	return out, nil
}

func (r queries) CheckedInStay(ctx context.Context, roomNumber string) (domain.Stay, error) {
	var s domain.Stay
	err := r.q.QueryRowContext(ctx, checkedInStaySQL, roomNumber).Scan(
		&s.ID, &s.RoomNumber, &s.GuestName, &s.Arrival, &s.Departure,
		&s.Nights, &s.Status, &s.PaymentStatus)
	if err == sql.ErrNoRows {
		return domain.Stay{}, domain.NotFoundf("no checked-in stay for room %s", roomNumber)
	}
	if err != nil {
		return domain.Stay{}, domain.Persistence(err)
	}
	return s, nil
}

func (r queries) ActiveReservation(ctx context.Context, roomNumber, guestName string) (domain.Stay, error) {
	var s domain.Stay
	err := r.q.QueryRowContext(ctx, activeReservationSQL, roomNumber, guestName).Scan(
		&s.ID, &s.RoomNumber, &s.GuestName, &s.Arrival, &s.Departure,
		&s.Nights, &s.Status, &s.PaymentStatus)
	if err == sql.ErrNoRows {
		return domain.Stay{}, domain.NotFoundf("no active reservation for room %s and guest %s", roomNumber, guestName)
	}
	if err != nil {
		return domain.Stay{}, domain.Persistence(err)
	}
	return s, nil
}

func (r queries) GetPayment(ctx context.Context, id int64) (domain.Payment, error) {
	return scanPayment(r.q.QueryRowContext(ctx, selectPaymentSQL, id), id)
}

func (r queries) PaymentsForStay(ctx context.Context, stayID int64) ([]domain.Payment, error) {
	return r.paymentList(ctx, paymentsForStaySQL, stayID)
}

func (r queries) ListPayments(ctx context.Context, q domain.PaymentsQuery) ([]domain.Payment, error) {
	var b strings.Builder
	b.WriteString("SELECT " + paymentColumns + " FROM payments WHERE ")
	args := make([]any, 0, 3)
	if q.Voided {
		b.WriteString("status = 'voided'")
	} else {
		b.WriteString("status <> 'voided'")
	}
	if q.From != nil {
		b.WriteString(" AND paid_at >= ?")
		args = append(args, *q.From)
	}
	if q.To != nil {
		b.WriteString(" AND paid_at <= ?")
		args = append(args, *q.To)
	}
	b.WriteString(" ORDER BY paid_at DESC, id DESC")
	return r.paymentList(ctx, b.String(), args...)
}

func (r queries) paymentList(ctx context.Context, query string, args ...any) ([]domain.Payment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Persistence(err)
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.Reference, &p.StayID, &p.GuestName, &p.RoomNumber,
			&p.AmountPaid, &p.DiscountAllowed, &p.Method, &p.PaidAt,
			&p.BookingCost, &p.BalanceDue, &p.Status); err != nil {
			return nil, domain.Persistence(err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence(err)
	}
	return out, nil
}

func (r queries) Debtors(ctx context.Context) ([]domain.Debtor, error) {
	rows, err := r.q.QueryContext(ctx, debtorsSQL)
	if err != nil {
		return nil, domain.Persistence(err)
	}
	defer rows.Close()

	var out []domain.Debtor
	for rows.Next() {
		var d domain.Debtor
		if err := rows.Scan(&d.StayID, &d.GuestName, &d.RoomNumber, &d.Rate,
			&d.Nights, &d.TotalDue, &d.TotalPaid); err != nil {
			return nil, domain.Persistence(err)
		}
		d.BalanceDue = d.TotalDue - d.TotalPaid
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Persistence(err)
	}
	return out, nil
}

// storeTx adds the write paths on top of the shared reads.
type storeTx struct {
	queries
	tx *sql.Tx
}

func (t *storeTx) LockRoom(ctx context.Context, number string) (domain.Room, error) {
	return scanRoom(t.tx.QueryRowContext(ctx, selectRoomForUpdateSQL, number), number)
}

func (t *storeTx) LockStay(ctx context.Context, id int64) (domain.Stay, error) {
	return scanStay(t.tx.QueryRowContext(ctx, selectStayForUpdateSQL, id), id)
}

func (t *storeTx) CreateRoom(ctx context.Context, r domain.Room) error {
	_, err := t.tx.ExecContext(ctx, insertRoomSQL, r.Number, r.Type, r.Rate, string(r.Status))
	if err != nil {
		return domain.Persistence(err)
	}
	return nil
}

func (t *storeTx) UpdateRoom(ctx context.Context, r domain.Room) error {
	return t.exec(ctx, updateRoomSQL, r.Type, r.Rate, string(r.Status), r.Number)
}

func (t *storeTx) UpdateRoomStatus(ctx context.Context, number string, st domain.RoomStatus) error {
	return t.exec(ctx, updateRoomStatusSQL, string(st), number)
}

func (t *storeTx) DeleteRoom(ctx context.Context, number string) error {
	return t.exec(ctx, deleteRoomSQL, number)
}

func (t *storeTx) StayCountForRoom(ctx context.Context, number string) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, countStaysForRoomSQL, number).Scan(&n); err != nil {
		return 0, domain.Persistence(err)
	}
	return n, nil
}

func (t *storeTx) CreateStay(ctx context.Context, s *domain.Stay) error {
	res, err := t.tx.ExecContext(ctx, insertStaySQL,
		s.RoomNumber, s.GuestName, s.Arrival, s.Departure, s.Nights,
		string(s.Status), string(s.PaymentStatus))
	if err != nil {
		return domain.Persistence(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Persistence(err)
	}
	s.ID = id
	return nil
}

func (t *storeTx) UpdateStayStatus(ctx context.Context, id int64, st domain.StayStatus) error {
	return t.exec(ctx, updateStayStatusSQL, string(st), id)
}

func (t *storeTx) UpdateStayPaymentStatus(ctx context.Context, id int64, st domain.PaymentStatus) error {
	return t.exec(ctx, updateStayPaymentStatusSQL, string(st), id)
}

func (t *storeTx) CreatePayment(ctx context.Context, p *domain.Payment) error {
	res, err := t.tx.ExecContext(ctx, insertPaymentSQL,
		p.Reference, p.StayID, p.GuestName, p.RoomNumber,
		p.AmountPaid, p.DiscountAllowed, string(p.Method), p.PaidAt,
		p.BookingCost, p.BalanceDue, string(p.Status))
	if err != nil {
		return domain.Persistence(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Persistence(err)
	}
	p.ID = id
	return nil
}

func (t *storeTx) UpdatePaymentStatus(ctx context.Context, id int64, st domain.PaymentStatus) error {
	return t.exec(ctx, updatePaymentStatusSQL, string(st), id)
}

func (t *storeTx) exec(ctx context.Context, query string, args ...any) error {
	if _, err := t.tx.ExecContext(ctx, query, args...); err != nil {
		return domain.Persistence(err)
	}
	return nil
}

func scanRoom(row *sql.Row, number string) (domain.Room, error) {
	var r domain.Room
	err := row.Scan(&r.Number, &r.Type, &r.Rate, &r.Status)
	if err == sql.ErrNoRows {
		return domain.Room{}, domain.NotFoundf("room %s not found", number).With("room_number", number)
	}
	if err != nil {
		return domain.Room{}, domain.Persistence(err)
	}
	return r, nil
}

func scanStay(row *sql.Row, id int64) (domain.Stay, error) {
	var s domain.Stay
	err := row.Scan(&s.ID, &s.RoomNumber, &s.GuestName, &s.Arrival, &s.Departure,
		&s.Nights, &s.Status, &s.PaymentStatus)
	if err == sql.ErrNoRows {
		return domain.Stay{}, domain.NotFoundf("booking %d not found", id).With("stay_id", id)
	}
	if err != nil {
		return domain.Stay{}, domain.Persistence(err)
	}
	return s, nil
}

func scanPayment(row *sql.Row, id int64) (domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(&p.ID, &p.Reference, &p.StayID, &p.GuestName, &p.RoomNumber,
		&p.AmountPaid, &p.DiscountAllowed, &p.Method, &p.PaidAt,
		&p.BookingCost, &p.BalanceDue, &p.Status)
	if err == sql.ErrNoRows {
		return domain.Payment{}, domain.NotFoundf("payment %d not found", id).With("payment_id", id)
	}
	if err != nil {
		return domain.Payment{}, domain.Persistence(err)
	}
	return p, nil
}
