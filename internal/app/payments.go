package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hotelops/internal/domain"
)

// PaymentLedger records payments against bookings and derives payment
// status. The read-aggregate-then-write sequence for a booking runs under
// a row lock on the stay so concurrent payments cannot jointly overpay.
type PaymentLedger struct {
	store domain.Store
	clock domain.Clock
}

func NewPaymentLedger(store domain.Store, clock domain.Clock) *PaymentLedger {
	return &PaymentLedger{store: store, clock: clock}
}

type PaymentInput struct {
	AmountPaid      float64
	DiscountAllowed float64
	Method          domain.PaymentMethod
	PaidAt          time.Time
}

func (l *PaymentLedger) RecordPayment(ctx context.Context, stayID int64, in PaymentInput) (domain.Payment, error) {
	if in.PaidAt.IsZero() {
		return domain.Payment{}, domain.Validationf("payment date is required and must carry a timezone")
	}
	if in.PaidAt.After(l.clock.Now()) {
		return domain.Payment{}, domain.Validationf("payment date %s cannot be in the future", in.PaidAt.Format(time.RFC3339))
	}
	if in.AmountPaid < 0 {
		return domain.Payment{}, domain.Validationf("amount paid must not be negative")
	}
	if in.DiscountAllowed < 0 {
		return domain.Payment{}, domain.Validationf("discount allowed must not be negative")
	}
	if !in.Method.Valid() {
		return domain.Payment{}, domain.Validationf("unknown payment method %q", in.Method)
	}

	var payment domain.Payment
	err := l.store.Txn(ctx, func(tx domain.StoreTx) error {
		stay, err := tx.LockStay(ctx, stayID)
		if err != nil {
			return err
		}
		if !stay.Status.Active() {
			return domain.InvalidStatef("booking %d must be reserved or checked-in to accept payments (status %s)", stayID, stay.Status).
				With("stay_id", stayID)
		}
		room, err := tx.GetRoom(ctx, stay.RoomNumber)
		if err != nil {
			return err
		}

		// Total due is based on the night count snapshotted at booking
		// time, not on current dates or rates.
		totalDue := float64(stay.Nights) * room.Rate

		existing, err := tx.PaymentsForStay(ctx, stayID)
		if err != nil {
			return err
		}
		var paidSoFar float64
		for _, p := range existing {
			paidSoFar += p.Credit()
		}
		newTotal := paidSoFar + in.AmountPaid + in.DiscountAllowed
		if newTotal > totalDue {
			return domain.Overpayment(totalDue, newTotal-totalDue).With("stay_id", stayID)
		}

		balance := totalDue - newTotal
		if balance < 0 {
			balance = 0
		}
		status := domain.PaymentIncomplete
		if balance == 0 {
			status = domain.PaymentCompleted
		}

		payment = domain.Payment{
			Reference:       uuid.NewString(),
			StayID:          stayID,
			GuestName:       stay.GuestName,
			RoomNumber:      stay.RoomNumber,
			AmountPaid:      in.AmountPaid,
			DiscountAllowed: in.DiscountAllowed,
			Method:          in.Method,
			PaidAt:          in.PaidAt,
			BookingCost:     totalDue,
			BalanceDue:      balance,
			Status:          status,
		}
		if err := tx.CreatePayment(ctx, &payment); err != nil {
			return err
		}
		// Write the derived status back onto the booking so downstream
		// queries need not re-aggregate.
		return tx.UpdateStayPaymentStatus(ctx, stayID, status)
	})
	if err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}

// VoidPayment marks a payment voided, excluding it from all future
// aggregations while keeping the amounts for audit. The owning booking's
// payment status is recomputed in the same transaction.
func (l *PaymentLedger) VoidPayment(ctx context.Context, paymentID int64, caller domain.Identity) (domain.Payment, error) {
	if !caller.Admin() {
		return domain.Payment{}, domain.Permissionf("voiding payments requires the admin role")
	}

	var payment domain.Payment
	err := l.store.Txn(ctx, func(tx domain.StoreTx) error {
		var err error
		payment, err = tx.GetPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status == domain.PaymentVoided {
			return domain.InvalidStatef("payment %d is already voided", paymentID).With("payment_id", paymentID)
		}
		stay, err := tx.LockStay(ctx, payment.StayID)
		if err != nil {
			return err
		}
		if err := tx.UpdatePaymentStatus(ctx, paymentID, domain.PaymentVoided); err != nil {
			return err
		}
		payment.Status = domain.PaymentVoided

		room, err := tx.GetRoom(ctx, stay.RoomNumber)
		if err != nil {
			return err
		}
		remaining, err := tx.PaymentsForStay(ctx, payment.StayID)
		if err != nil {
			return err
		}
		var paid float64
		var entries int
		for _, p := range remaining {
			if p.ID == paymentID || p.Status == domain.PaymentVoided {
				continue
			}
			paid += p.Credit()
			entries++
		}
		status := domain.PaymentUnpaid
		if entries > 0 {
			status = domain.PaymentIncomplete
			if paid >= float64(stay.Nights)*room.Rate {
				status = domain.PaymentCompleted
			}
		}
		return tx.UpdateStayPaymentStatus(ctx, payment.StayID, status)
	})
	if err != nil {
		return domain.Payment{}, err
	}
	return payment, nil
}
