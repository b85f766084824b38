package mysql

// -----------------------------------------------------------------------------
// ROOMS
// -----------------------------------------------------------------------------

const roomColumns = `room_number, room_type, rate, status`

const selectRoomSQL = `
SELECT ` + roomColumns + `
FROM rooms
WHERE room_number = ?
`

// FOR UPDATE serializes concurrent lifecycle operations on one room: the
// availability read and both writes of an operation run behind this lock.
const selectRoomForUpdateSQL = selectRoomSQL + `FOR UPDATE`

const listRoomsSQL = `
SELECT ` + roomColumns + `
FROM rooms
ORDER BY room_number
`

const listRoomsByStatusSQL = `
SELECT ` + roomColumns + `
FROM rooms
WHERE status = ?
ORDER BY room_number
`

const summarizeRoomsSQL = `
SELECT status, COUNT(*)
FROM rooms
GROUP BY status
`

const insertRoomSQL = `
INSERT INTO rooms (room_number, room_type, rate, status)
VALUES (?, ?, ?, ?)
`

const updateRoomSQL = `
UPDATE rooms
SET room_type = ?, rate = ?, status = ?
WHERE room_number = ?
`

const updateRoomStatusSQL = `
UPDATE rooms
SET status = ?
WHERE room_number = ?
`

const deleteRoomSQL = `
DELETE FROM rooms
WHERE room_number = ?
`

// -----------------------------------------------------------------------------
// STAYS
// -----------------------------------------------------------------------------

const stayColumns = `id, room_number, guest_name, arrival_date, departure_date, nights, status, payment_status`

const selectStaySQL = `
SELECT ` + stayColumns + `
FROM stays
WHERE id = ?
`

const selectStayForUpdateSQL = selectStaySQL + `FOR UPDATE`

const activeStaysSQL = `
SELECT ` + stayColumns + `
FROM stays
WHERE room_number = ? AND status IN ('reserved', 'checked-in')
ORDER BY arrival_date, id
`

const listStaysByStatusSQL = `
SELECT ` + stayColumns + `
FROM stays
WHERE status = ?
ORDER BY arrival_date, id
`

const checkedInStaySQL = `
SELECT ` + stayColumns + `
FROM stays
WHERE room_number = ? AND status = 'checked-in'
ORDER BY id
LIMIT 1
`

const activeReservationSQL = `
SELECT ` + stayColumns + `
FROM stays
WHERE room_number = ? AND guest_name = ? AND status = 'reserved'
ORDER BY arrival_date, id
LIMIT 1
`

const countStaysForRoomSQL = `
SELECT COUNT(*)
FROM stays
WHERE room_number = ?
`

const insertStaySQL = `
INSERT INTO stays
  (room_number, guest_name, arrival_date, departure_date, nights, status, payment_status)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

const updateStayStatusSQL = `
UPDATE stays
SET status = ?
WHERE id = ?
`

const updateStayPaymentStatusSQL = `
UPDATE stays
SET payment_status = ?
WHERE id = ?
`

// -----------------------------------------------------------------------------
// PAYMENTS
// -----------------------------------------------------------------------------

const paymentColumns = `id, reference, stay_id, guest_name, room_number, amount_paid,
  discount_allowed, method, paid_at, booking_cost, balance_due, status`

const selectPaymentSQL = `
SELECT ` + paymentColumns + `
FROM payments
WHERE id = ?
`

const paymentsForStaySQL = `
SELECT ` + paymentColumns + `
FROM payments
WHERE stay_id = ?
ORDER BY paid_at, id
`

const insertPaymentSQL = `
INSERT INTO payments
  (reference, stay_id, guest_name, room_number, amount_paid, discount_allowed,
   method, paid_at, booking_cost, balance_due, status)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updatePaymentStatusSQL = `
UPDATE payments
SET status = ?
WHERE id = ?
`

// Outstanding balances in one pass: total due from the nights snapshot and
// the room rate, total paid from non-voided entries only. Cancelled stays
// owe nothing.
const debtorsSQL = `
SELECT
  s.id,
  s.guest_name,
  s.room_number,
  r.rate,
  s.nights,
  s.nights * r.rate AS total_due,
  COALESCE(SUM(CASE WHEN p.status <> 'voided' THEN p.amount_paid + p.discount_allowed END), 0) AS total_paid
FROM stays s
JOIN rooms r ON r.room_number = s.room_number
LEFT JOIN payments p ON p.stay_id = s.id
WHERE s.status <> 'cancelled'
GROUP BY s.id, s.guest_name, s.room_number, r.rate, s.nights
HAVING total_due - total_paid > 0
ORDER BY s.id
`
