package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/queue"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/reservations"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type reservationView struct {
	ID                int64     `json:"id"`
	CustomerName      string    `json:"customerName"`
	CustomerMobile    string    `json:"customerMobile"`
	CustomerEmail     string    `json:"customerEmail"`
	PartySize         int       `json:"partySize"`
	ReservationDate   string    `json:"reservationDate"`
	ReservationTime   string    `json:"reservationTime"`
	SpecialRequests   string    `json:"specialRequests"`
	ReservationStatus string    `json:"reservationStatus"`
	AssignedTable     *string   `json:"assignedTable"`
	TimeSubmitted     time.Time `json:"timeSubmitted"`
}

const reservationSelect = `
	select id, customer_name, customer_mobile, customer_email, party_size,
	       to_char(reservation_date, 'YYYY-MM-DD'), to_char(reservation_time, 'HH24:MI:SS'),
	       special_requests, reservation_status, assigned_table, time_submitted
	from reservations`

func scanReservation(row pgx.Row) (reservationView, error) {
	var v reservationView
	err := row.Scan(&v.ID, &v.CustomerName, &v.CustomerMobile, &v.CustomerEmail, &v.PartySize,
		&v.ReservationDate, &v.ReservationTime, &v.SpecialRequests, &v.ReservationStatus,
		&v.AssignedTable, &v.TimeSubmitted)
	return v, err
}

// ReservationSlots lists the bookable half-hour slots for a date, grouped by
// meal category. Same-day slots inside the grace window are excluded.
func (h *Handler) ReservationSlots(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "date query parameter must be YYYY-MM-DD")
		return
	}
	now := time.Now()
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())
	if !withinBookingWindow(date, now, h.Config.ReservationMaxAdvanceDays) {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "date is outside the booking window")
		return
	}
	grace := time.Duration(h.Config.ReservationGraceMinutes) * time.Minute
	response.Success(w, reservations.SlotsByCategory(date, now, grace))
}

// withinBookingWindow reports whether date falls between today and today plus
// maxAdvanceDays, with today taken from now's zone so the window and the
// same-day grace check agree near midnight.
func withinBookingWindow(date, now time.Time, maxAdvanceDays int) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !date.Before(today) && !date.After(today.AddDate(0, 0, maxAdvanceDays))
}

func (h *Handler) ReservationCreate(w http.ResponseWriter, r *http.Request) {
	var details reservations.Details
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	grace := time.Duration(h.Config.ReservationGraceMinutes) * time.Minute
	if err := reservations.ValidateDetails(details, time.Now(), h.Config.ReservationMaxAdvanceDays, grace); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}

	var id int64
	err := h.DB.QueryRow(r.Context(), `
		insert into reservations (customer_name, customer_mobile, customer_email, party_size,
		                          reservation_date, reservation_time, special_requests, reservation_status)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id`,
		strings.TrimSpace(details.CustomerName), details.CustomerMobile, details.CustomerEmail,
		details.PartySize, details.ReservationDate, details.ReservationTime,
		strings.TrimSpace(details.SpecialRequests), reservations.StatusPending).Scan(&id)
	if err != nil {
		h.internalError(w, "insert reservation", err)
		return
	}

	v, err := scanReservation(h.DB.QueryRow(r.Context(), reservationSelect+` where id = $1`, id))
	if err != nil {
		h.internalError(w, "reload reservation", err, zap.Int64("reservationId", id))
		return
	}
	h.Logger.Info("reservation submitted",
		zap.Int64("reservationId", id),
		zap.String("date", v.ReservationDate),
		zap.String("time", v.ReservationTime))
	h.publishEvent(r.Context(), queue.EventReservationSubmitted, id)
	response.Created(w, v)
}

// ReservationsByCustomer lets a customer check their own reservations by the
// email they booked with, optionally narrowed to one date.
func (h *Handler) ReservationsByCustomer(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "email query parameter is required")
		return
	}

	query := reservationSelect + ` where lower(customer_email) = lower($1)`
	args := []any{email}
	if date := r.URL.Query().Get("date"); date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			response.Error(w, http.StatusBadRequest, response.CodeValidation, "date query parameter must be YYYY-MM-DD")
			return
		}
		query += ` and reservation_date = $2`
		args = append(args, date)
	}
	query += ` order by reservation_date desc, reservation_time desc`

	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.internalError(w, "list customer reservations", err)
		return
	}
	defer rows.Close()

	out := []reservationView{}
	for rows.Next() {
		v, err := scanReservation(rows)
		if err != nil {
			h.internalError(w, "scan reservation", err)
			return
		}
		out = append(out, v)
	}
	response.Success(w, out)
}

// ReservationCancel is the customer-facing cancel. Cancelling a reservation
// that was already rejected or cancelled is reported as terminal, not
// silently accepted.
func (h *Handler) ReservationCancel(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "reservationId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	// The public route only cancels; any other requested status is refused.
	var req reservationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil &&
		req.ReservationStatus != "" && req.ReservationStatus != reservations.StatusCancelled {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "only cancellation is allowed here")
		return
	}
	h.updateReservationStatus(w, r, id, reservations.StatusCancelled, nil)
}

func (h *Handler) ReservationsList(w http.ResponseWriter, r *http.Request) {
	query := reservationSelect
	args := []any{}
	if status := r.URL.Query().Get("status"); status != "" {
		query += ` where reservation_status = $1`
		args = append(args, status)
	}
	query += ` order by reservation_date desc, reservation_time desc`

	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.internalError(w, "list reservations", err)
		return
	}
	defer rows.Close()

	out := []reservationView{}
	for rows.Next() {
		v, err := scanReservation(rows)
		if err != nil {
			h.internalError(w, "scan reservation", err)
			return
		}
		out = append(out, v)
	}
	response.Success(w, out)
}

type reservationStatusRequest struct {
	ReservationStatus string  `json:"reservationStatus"`
	AssignedTable     *string `json:"assignedTable"`
}

// ReservationStatusUpdate is the staff decision on a pending reservation.
func (h *Handler) ReservationStatusUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "reservationId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var req reservationStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if req.ReservationStatus != reservations.StatusConfirmed && req.ReservationStatus != reservations.StatusRejected {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "reservationStatus must be CONFIRMED or REJECTED")
		return
	}
	if req.ReservationStatus == reservations.StatusConfirmed &&
		(req.AssignedTable == nil || strings.TrimSpace(*req.AssignedTable) == "") {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "assignedTable is required when confirming")
		return
	}
	h.updateReservationStatus(w, r, id, req.ReservationStatus, req.AssignedTable)
}

func (h *Handler) updateReservationStatus(w http.ResponseWriter, r *http.Request, id int64, next string, assignedTable *string) {
	ctx := r.Context()
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.internalError(w, "begin reservation status update", err)
		return
	}
	defer tx.Rollback(ctx)

	var current string
	err = tx.QueryRow(ctx, `select reservation_status from reservations where id = $1 for update`, id).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "reservation not found")
		return
	}
	if err != nil {
		h.internalError(w, "lock reservation", err, zap.Int64("reservationId", id))
		return
	}
	if err := reservations.Transition(current, next); err != nil {
		if errors.Is(err, reservations.ErrAlreadyTerminal) {
			response.Error(w, http.StatusConflict, response.CodeAlreadyTerminal, err.Error())
			return
		}
		response.Error(w, http.StatusConflict, response.CodeValidation, err.Error())
		return
	}

	if assignedTable == nil {
		_, err = tx.Exec(ctx, `update reservations set reservation_status = $1 where id = $2`, next, id)
	} else {
		_, err = tx.Exec(ctx, `update reservations set reservation_status = $1, assigned_table = $2 where id = $3`,
			next, strings.TrimSpace(*assignedTable), id)
	}
	if err != nil {
		h.internalError(w, "update reservation status", err, zap.Int64("reservationId", id))
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.internalError(w, "commit reservation status update", err)
		return
	}

	v, err := scanReservation(h.DB.QueryRow(ctx, reservationSelect+` where id = $1`, id))
	if err != nil {
		h.internalError(w, "reload reservation", err, zap.Int64("reservationId", id))
		return
	}
	h.Logger.Info("reservation status updated",
		zap.Int64("reservationId", id),
		zap.String("from", current),
		zap.String("to", next))
	h.publishReservationEvent(ctx, queue.EventReservationStatusUpdated, id, next)
	response.Success(w, v)
}
