package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"hotelops/internal/adapters/observability"
	"hotelops/internal/app"
	"hotelops/internal/domain"
)

const dateLayout = "2006-01-02"

type Handlers struct {
	Stays    *app.StayService
	Ledger   *app.PaymentLedger
	Rooms    *app.RoomService
	Q        *app.QueryService
	validate *validator.Validate
}

func NewHandlers(stays *app.StayService, ledger *app.PaymentLedger, rooms *app.RoomService, q *app.QueryService) *Handlers {
	return &Handlers{
		Stays:    stays,
		Ledger:   ledger,
		Rooms:    rooms,
		Q:        q,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *Server) MountHandlers(h *Handlers, verifier domain.TokenVerifier) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/rooms", h.listRooms)
		r.Get("/rooms/available", h.availableRooms)

		r.Group(func(r chi.Router) {
			r.Use(Auth(verifier))

			r.Get("/rooms/summary", h.roomSummary)

			r.Post("/reservations", h.createReservation)
			r.Get("/reservations", h.listReservations)
			r.Delete("/reservations/{roomNumber}", h.cancelReservation)

			r.Post("/checkins", h.checkIn)
			r.Get("/checkins", h.listCheckedIn)
			r.Put("/checkouts/{roomNumber}", h.checkOut)

			r.Post("/stays/{id}/payments", h.recordPayment)
			r.Get("/payments", h.listPayments)
			r.Get("/payments/voided", h.listVoidedPayments)
			r.Get("/payments/{id}", h.getPayment)

			r.Get("/reports/daily-total", h.dailyTotal)
			r.Get("/reports/debtors", h.debtors)

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(domain.RoleAdmin))
				r.Post("/rooms", h.createRoom)
				r.Put("/rooms/{roomNumber}", h.updateRoom)
				r.Delete("/rooms/{roomNumber}", h.deleteRoom)
				r.Put("/payments/{id}/void", h.voidPayment)
			})
		})
	})
}

// ---- problem responses ----

type problem struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Status  int            `json:"status"`
	Detail  string         `json:"detail,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind == domain.KindPersistence {
		log.Error().Err(err).Msg("operation failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "an unexpected error occurred")
		return
	}
	var status int
	var title string
	switch de.Kind {
	case domain.KindValidation, domain.KindOverpayment:
		status, title = http.StatusBadRequest, "Bad Request"
	case domain.KindNotFound:
		status, title = http.StatusNotFound, "Not Found"
	case domain.KindConflict, domain.KindInvalidState:
		status, title = http.StatusConflict, "Conflict"
	case domain.KindPermission:
		status, title = http.StatusForbidden, "Forbidden"
	default:
		status, title = http.StatusInternalServerError, "Internal Server Error"
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	p := problem{Type: "about:blank", Title: title, Status: status, Detail: de.Message, Details: de.Details}
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func observe(op string, err error) {
	if err == nil {
		observability.ObserveBooking(op, "ok")
		return
	}
	observability.ObserveBooking(op, string(domain.KindOf(err)))
}

// ---- request/response shapes ----

type stayRequest struct {
	RoomNumber    string `json:"room_number" validate:"required"`
	GuestName     string `json:"guest_name" validate:"required"`
	ArrivalDate   string `json:"arrival_date" validate:"required,datetime=2006-01-02"`
	DepartureDate string `json:"departure_date" validate:"required,datetime=2006-01-02"`
}

type paymentRequest struct {
	AmountPaid      float64 `json:"amount_paid" validate:"gte=0"`
	DiscountAllowed float64 `json:"discount_allowed" validate:"gte=0"`
	PaymentMethod   string  `json:"payment_method" validate:"required,oneof=cash card transfer"`
	PaymentDate     string  `json:"payment_date" validate:"required"`
}

type roomRequest struct {
	RoomNumber string  `json:"room_number" validate:"required"`
	RoomType   string  `json:"room_type" validate:"required"`
	Rate       float64 `json:"rate" validate:"gte=0"`
	Status     string  `json:"status" validate:"omitempty,oneof=available maintenance"`
}

type roomUpdateRequest struct {
	RoomType *string  `json:"room_type"`
	Rate     *float64 `json:"rate" validate:"omitempty,gte=0"`
	Status   *string  `json:"status" validate:"omitempty,oneof=available maintenance"`
}

type stayResponse struct {
	ID            int64  `json:"id"`
	RoomNumber    string `json:"room_number"`
	GuestName     string `json:"guest_name"`
	ArrivalDate   string `json:"arrival_date"`
	DepartureDate string `json:"departure_date"`
	Nights        int    `json:"nights"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func stayView(s domain.Stay) stayResponse {
	return stayResponse{
		ID:            s.ID,
		RoomNumber:    s.RoomNumber,
		GuestName:     s.GuestName,
		ArrivalDate:   s.Arrival.Format(dateLayout),
		DepartureDate: s.Departure.Format(dateLayout),
		Nights:        s.Nights,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
	}
}

type paymentResponse struct {
	ID              int64   `json:"id"`
	Reference       string  `json:"reference"`
	StayID          int64   `json:"stay_id"`
	GuestName       string  `json:"guest_name"`
	RoomNumber      string  `json:"room_number"`
	AmountPaid      float64 `json:"amount_paid"`
	DiscountAllowed float64 `json:"discount_allowed"`
	PaymentMethod   string  `json:"payment_method"`
	PaymentDate     string  `json:"payment_date"`
	BookingCost     float64 `json:"booking_cost"`
	BalanceDue      float64 `json:"balance_due"`
	Status          string  `json:"status"`
}

func paymentView(p domain.Payment) paymentResponse {
	return paymentResponse{
		ID:              p.ID,
		Reference:       p.Reference,
		StayID:          p.StayID,
		GuestName:       p.GuestName,
		RoomNumber:      p.RoomNumber,
		AmountPaid:      p.AmountPaid,
		DiscountAllowed: p.DiscountAllowed,
		PaymentMethod:   string(p.Method),
		PaymentDate:     p.PaidAt.Format(time.RFC3339),
		BookingCost:     p.BookingCost,
		BalanceDue:      p.BalanceDue,
		Status:          string(p.Status),
	}
}

type roomResponse struct {
	RoomNumber string  `json:"room_number"`
	RoomType   string  `json:"room_type"`
	Rate       float64 `json:"rate"`
	Status     string  `json:"status"`
}

func roomView(r domain.Room) roomResponse {
	return roomResponse{RoomNumber: r.Number, RoomType: r.Type, Rate: r.Rate, Status: string(r.Status)}
}

func roomViews(rooms []domain.Room) []roomResponse {
	out := make([]roomResponse, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomView(r))
	}
	return out
}

type paymentsReportResponse struct {
	Count    int               `json:"count"`
	Total    float64           `json:"total"`
	Payments []paymentResponse `json:"payments"`
}

func reportView(rep app.PaymentsReport) paymentsReportResponse {
	out := paymentsReportResponse{Count: rep.Count, Total: rep.Total, Payments: make([]paymentResponse, 0, len(rep.Payments))}
	for _, p := range rep.Payments {
		out.Payments = append(out.Payments, paymentView(p))
	}
	return out
}

// decodeValid decodes the body into dst and runs the struct validation
// tags; all boundary constraints are declared once, on the request type.
func (h *Handlers) decodeValid(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validationf("invalid JSON body")
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return domain.Validationf("field %s failed %s validation", f.Field(), f.Tag())
		}
		return domain.Validationf("invalid request body")
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, domain.Validationf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// parsePaymentDate requires an RFC 3339 timestamp. A bare local datetime
// is called out specifically so callers learn the timezone is mandatory.
func parsePaymentDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	if _, bare := time.Parse("2006-01-02T15:04:05", s); bare == nil {
		return time.Time{}, domain.Validationf("payment_date must include timezone information")
	}
	return time.Time{}, domain.Validationf("invalid payment_date %q, want RFC 3339", s)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Validationf("id must be a positive number")
	}
	return id, nil
}

// ---- lifecycle ----

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req stayRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	arrival, err := parseDate(req.ArrivalDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	departure, err := parseDate(req.DepartureDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stay, err := h.Stays.CreateReservation(r.Context(), app.StayInput{
		RoomNumber: req.RoomNumber,
		GuestName:  req.GuestName,
		Arrival:    arrival,
		Departure:  departure,
	})
	observe("reserve", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stayView(stay))
}

func (h *Handlers) checkIn(w http.ResponseWriter, r *http.Request) {
	var req stayRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	arrival, err := parseDate(req.ArrivalDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	departure, err := parseDate(req.DepartureDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	stay, err := h.Stays.CheckIn(r.Context(), app.StayInput{
		RoomNumber: req.RoomNumber,
		GuestName:  req.GuestName,
		Arrival:    arrival,
		Departure:  departure,
	})
	observe("check_in", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stayView(stay))
}

func (h *Handlers) checkOut(w http.ResponseWriter, r *http.Request) {
	stay, err := h.Stays.CheckOut(r.Context(), chi.URLParam(r, "roomNumber"))
	observe("check_out", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stayView(stay))
}

func (h *Handlers) cancelReservation(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	stay, err := h.Stays.CancelReservation(r.Context(), chi.URLParam(r, "roomNumber"), r.URL.Query().Get("guest"), caller)
	observe("cancel", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stayView(stay))
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	stays, err := h.Q.ActiveReservations(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]stayResponse, 0, len(stays))
	for _, s := range stays {
		out = append(out, stayView(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(out), "reservations": out})
}

func (h *Handlers) listCheckedIn(w http.ResponseWriter, r *http.Request) {
	stays, err := h.Q.CheckedInGuests(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]stayResponse, 0, len(stays))
	for _, s := range stays {
		out = append(out, stayView(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(out), "checked_in": out})
}

// ---- payments ----

func (h *Handlers) recordPayment(w http.ResponseWriter, r *http.Request) {
	stayID, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	var req paymentRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	paidAt, err := parsePaymentDate(req.PaymentDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payment, err := h.Ledger.RecordPayment(r.Context(), stayID, app.PaymentInput{
		AmountPaid:      req.AmountPaid,
		DiscountAllowed: req.DiscountAllowed,
		Method:          domain.PaymentMethod(req.PaymentMethod),
		PaidAt:          paidAt,
	})
	observe("record_payment", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, paymentView(payment))
}

func (h *Handlers) voidPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing identity")
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payment, err := h.Ledger.VoidPayment(r.Context(), id, caller)
	observe("void_payment", err)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentView(payment))
}

func (h *Handlers) getPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	payment, err := h.Q.GetPayment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paymentView(payment))
}

func (h *Handlers) listPayments(w http.ResponseWriter, r *http.Request) {
	h.paymentListing(w, r, false)
}

func (h *Handlers) listVoidedPayments(w http.ResponseWriter, r *http.Request) {
	h.paymentListing(w, r, true)
}

func (h *Handlers) paymentListing(w http.ResponseWriter, r *http.Request, voided bool) {
	var from, to *time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		from = &t
	}
	if s := r.URL.Query().Get("end"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		// Date-only bound means through the end of that day.
		eod := t.Add(24*time.Hour - time.Nanosecond)
		to = &eod
	}
	rep, err := h.Q.ListPayments(r.Context(), from, to, voided)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportView(rep))
}

func (h *Handlers) dailyTotal(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Q.DailyTotal(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reportView(rep))
}

func (h *Handlers) debtors(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Q.Debtors(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	type debtorResponse struct {
		StayID     int64   `json:"stay_id"`
		GuestName  string  `json:"guest_name"`
		RoomNumber string  `json:"room_number"`
		Rate       float64 `json:"rate"`
		Nights     int     `json:"nights"`
		TotalDue   float64 `json:"total_due"`
		TotalPaid  float64 `json:"total_paid"`
		BalanceDue float64 `json:"balance_due"`
	}
	out := make([]debtorResponse, 0, rep.Count)
	for _, d := range rep.Debtors {
		out = append(out, debtorResponse{
			StayID:     d.StayID,
			GuestName:  d.GuestName,
			RoomNumber: d.RoomNumber,
			Rate:       d.Rate,
			Nights:     d.Nights,
			TotalDue:   d.TotalDue,
			TotalPaid:  d.TotalPaid,
			BalanceDue: d.BalanceDue,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_debtors":     rep.Count,
		"total_debt_amount": rep.TotalDebt,
		"debtors":           out,
	})
}

// ---- rooms ----

func (h *Handlers) createRoom(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	var req roomRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	room, err := h.Rooms.CreateRoom(r.Context(), domain.Room{
		Number: req.RoomNumber,
		Type:   req.RoomType,
		Rate:   req.Rate,
		Status: domain.RoomStatus(req.Status),
	}, caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, roomView(room))
}

func (h *Handlers) updateRoom(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	var req roomUpdateRequest
	if err := h.decodeValid(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	upd := app.RoomUpdate{Type: req.RoomType, Rate: req.Rate}
	if req.Status != nil {
		st := domain.RoomStatus(*req.Status)
		upd.Status = &st
	}
	room, err := h.Rooms.UpdateRoom(r.Context(), chi.URLParam(r, "roomNumber"), upd, caller)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roomView(room))
}

func (h *Handlers) deleteRoom(w http.ResponseWriter, r *http.Request) {
	caller, _ := callerFrom(r.Context())
	number := chi.URLParam(r, "roomNumber")
	if err := h.Rooms.DeleteRoom(r.Context(), number, caller); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "room " + number + " deleted"})
}

func (h *Handlers) listRooms(w http.ResponseWriter, r *http.Request) {
	view, err := h.Q.ListRooms(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_rooms": view.Total, "rooms": roomViews(view.Rooms)})
}

func (h *Handlers) availableRooms(w http.ResponseWriter, r *http.Request) {
	view, err := h.Q.AvailableRooms(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_available_rooms": view.Total, "available_rooms": roomViews(view.Rooms)})
}

func (h *Handlers) roomSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.Q.RoomSummary(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_rooms": sum.Total,
		"available":   sum.Available,
		"reserved":    sum.Reserved,
		"checked_in":  sum.CheckedIn,
		"maintenance": sum.Maintenance,
	})
}
