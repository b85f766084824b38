package domain

import "time"

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodCard, MethodTransfer:
		return true
	}
	return false
}

// PaymentStatus covers both ledger entries and the denormalized payment
// state on a stay. Voided applies only to entries; Unpaid only to stays
// with no ledger history yet.
type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentIncomplete PaymentStatus = "payment incomplete"
	PaymentCompleted  PaymentStatus = "payment completed"
	PaymentVoided     PaymentStatus = "voided"
)

// Payment is immutable after creation except for the admin void
// transition. BookingCost and BalanceDue are snapshots taken when the
// entry was written. GuestName and RoomNumber are denormalized from the
// owning stay for report rendering.
type Payment struct {
	ID              int64
	Reference       string
	StayID          int64
	GuestName       string
	RoomNumber      string
	AmountPaid      float64
	DiscountAllowed float64
	Method          PaymentMethod
	PaidAt          time.Time
	BookingCost     float64
	BalanceDue      float64
	Status          PaymentStatus
}

// Credit is the amount a non-voided entry contributes toward the total due.
func (p Payment) Credit() float64 {
	if p.Status == PaymentVoided {
		return 0
	}
	return p.AmountPaid + p.DiscountAllowed
}

// Debtor is one row of the outstanding-balance report.
type Debtor struct {
	StayID     int64
	GuestName  string
	RoomNumber string
	Rate       float64
	Nights     int
	TotalDue   float64
	TotalPaid  float64
	BalanceDue float64
}
