package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/billing"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/orders"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/queue"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/tables"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var (
	customerNamePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	mobilePattern       = regexp.MustCompile(`^\d{10}$`)
)

type paymentRequest struct {
	CustomerName   string `json:"customerName"`
	MobileNumber   string `json:"mobileNumber"`
	PaymentType    string `json:"paymentType"`
	AmountReceived any    `json:"amountReceived"`
}

func (req *paymentRequest) validate() string {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" {
		return "customer name is required"
	}
	if len(req.CustomerName) > 20 {
		return "customer name must be at most 20 characters"
	}
	if !customerNamePattern.MatchString(req.CustomerName) {
		return "customer name may contain only letters and spaces"
	}
	if !mobilePattern.MatchString(req.MobileNumber) {
		return "mobile number must be exactly 10 digits"
	}
	if !billing.ValidPaymentType(req.PaymentType) {
		return "paymentType must be CASH or UPI"
	}
	return ""
}

// OrderPayment settles an open order: marks it PAID, stamps the customer and
// payment details, and frees the table, all in one transaction. Nothing is
// written when any rule fails.
func (h *Handler) OrderPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, msg)
		return
	}
	amountReceived, ok := parseNumber(req.AmountReceived)
	if req.PaymentType == billing.PaymentTypeCash && (!ok || amountReceived < 0) {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "amountReceived must be a non-negative number")
		return
	}

	ctx := r.Context()
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.internalError(w, "begin payment", err)
		return
	}
	defer tx.Rollback(ctx)

	var status string
	var tableID *int64
	var grandTotal float64
	err = tx.QueryRow(ctx, `
		select status, table_id, total_price_with_taxes
		from orders where id = $1 for update`, orderID).Scan(&status, &tableID, &grandTotal)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "order not found")
		return
	}
	if err != nil {
		h.internalError(w, "lock order for payment", err, zap.Int64("orderId", orderID))
		return
	}
	if status == orders.StatusPaid {
		response.Error(w, http.StatusConflict, response.CodeOrderAlreadyPaid, "order is already paid")
		return
	}

	var total, undelivered int
	err = tx.QueryRow(ctx, `
		select count(*), count(*) filter (where delivery_status <> 'DELIVERED')
		from order_items where order_id = $1`, orderID).Scan(&total, &undelivered)
	if err != nil {
		h.internalError(w, "count order items", err, zap.Int64("orderId", orderID))
		return
	}
	if total == 0 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "order has no items to bill")
		return
	}
	if undelivered > 0 {
		response.Error(w, http.StatusConflict, response.CodeItemsNotDelivered, "all items must be delivered before payment")
		return
	}
	if req.PaymentType == billing.PaymentTypeCash && amountReceived < grandTotal {
		response.Error(w, http.StatusConflict, response.CodeInsufficientPayment, "amount received is less than the total due")
		return
	}

	paidAt := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		update orders
		set status = $1, customer_name = $2, mobile_number = $3, payment_type = $4, paid_at = $5
		where id = $6`,
		orders.StatusPaid, req.CustomerName, req.MobileNumber, req.PaymentType, paidAt, orderID)
	if err != nil {
		h.internalError(w, "mark order paid", err, zap.Int64("orderId", orderID))
		return
	}
	if tableID != nil {
		_, err = tx.Exec(ctx, `update dining_tables set current_status = $1 where id = $2`,
			tables.Release(), *tableID)
		if err != nil {
			h.internalError(w, "release table", err, zap.Int64("tableId", *tableID))
			return
		}
	}
	if err := tx.Commit(ctx); err != nil {
		h.internalError(w, "commit payment", err, zap.Int64("orderId", orderID))
		return
	}

	h.Logger.Info("order paid",
		zap.Int64("orderId", orderID),
		zap.String("paymentType", req.PaymentType),
		zap.Float64("grandTotal", grandTotal))
	h.publishEvent(ctx, queue.EventOrderPaid, orderID)

	response.Success(w, map[string]any{
		"orderId":   orderID,
		"paidAt":    paidAt,
		"changeDue": round2(billing.ChangeDue(req.PaymentType, amountReceived, grandTotal)),
	})
}
