package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/billing"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/orders"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/tables"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type orderView struct {
	OrderID             int64      `json:"orderId"`
	OrderType           string     `json:"orderType"`
	TableID             *int64     `json:"tableId"`
	TableName           *string    `json:"tableName"`
	Status              string     `json:"status"`
	CGSTPercent         float64    `json:"cgstPercent"`
	SGSTPercent         float64    `json:"sgstPercent"`
	TotalPrice          float64    `json:"totalPrice"`
	TotalPriceWithTaxes float64    `json:"totalPriceWithTaxes"`
	CustomerName        *string    `json:"customerName"`
	MobileNumber        *string    `json:"mobileNumber"`
	PaymentType         *string    `json:"paymentType"`
	PaidAt              *time.Time `json:"paidAt"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type orderItemRequest struct {
	FoodItemID *int64  `json:"foodItemId"`
	Name       string  `json:"name"`
	Price      any     `json:"price"`
	Quantity   int     `json:"quantity"`
}

type orderCreateRequest struct {
	OrderType   string             `json:"orderType"`
	TableID     *int64             `json:"tableId"`
	CGSTPercent any                `json:"cgstPercent"`
	SGSTPercent any                `json:"sgstPercent"`
	OrderItems  []orderItemRequest `json:"orderItems"`
}

// itemSnapshot is a line resolved against the menu: name and unit price
// are frozen here, before the insert.
type itemSnapshot struct {
	foodItemID *int64
	name       string
	price      float64
	quantity   int
}

const orderSelect = `
	select o.id, o.order_type, o.table_id, t.name, o.status,
	       o.cgst_percent, o.sgst_percent, o.total_price, o.total_price_with_taxes,
	       o.customer_name, o.mobile_number, o.payment_type, o.paid_at, o.created_at
	from orders o
	left join dining_tables t on t.id = o.table_id`

func scanOrder(row pgx.Row) (orderView, error) {
	var o orderView
	err := row.Scan(&o.OrderID, &o.OrderType, &o.TableID, &o.TableName, &o.Status,
		&o.CGSTPercent, &o.SGSTPercent, &o.TotalPrice, &o.TotalPriceWithTaxes,
		&o.CustomerName, &o.MobileNumber, &o.PaymentType, &o.PaidAt, &o.CreatedAt)
	return o, err
}

func (h *Handler) OrdersList(w http.ResponseWriter, r *http.Request) {
	query := orderSelect
	args := []any{}
	if status := r.URL.Query().Get("status"); status != "" {
		if status != orders.StatusPending && status != orders.StatusPaid {
			response.Error(w, http.StatusBadRequest, response.CodeValidation, "status must be PENDING or PAID")
			return
		}
		query += ` where o.status = $1`
		args = append(args, status)
	}
	query += ` order by o.created_at desc`

	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.internalError(w, "list orders", err)
		return
	}
	defer rows.Close()

	out := []orderView{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			h.internalError(w, "scan order", err)
			return
		}
		out = append(out, o)
	}
	response.Success(w, out)
}

func (h *Handler) OrderDetail(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "orderId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	o, err := scanOrder(h.DB.QueryRow(r.Context(), orderSelect+` where o.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "order not found")
		return
	}
	if err != nil {
		h.internalError(w, "get order", err, zap.Int64("orderId", id))
		return
	}
	response.Success(w, o)
}

// FindOpenOrder resolves the single PENDING order for a table, or null when
// the table has none. More than one open order for a table means the
// uniqueness guarantee was violated; that is reported loudly, never papered
// over by picking one.
func (h *Handler) FindOpenOrder(w http.ResponseWriter, r *http.Request) {
	tableID, err := strconv.ParseInt(r.URL.Query().Get("tableId"), 10, 64)
	if err != nil || tableID <= 0 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "tableId query parameter is required")
		return
	}
	if s := r.URL.Query().Get("paymentStatus"); s != "" && s != orders.StatusPending {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "paymentStatus must be PENDING")
		return
	}

	rows, err := h.DB.Query(r.Context(),
		`select id from orders where table_id = $1 and status = 'PENDING' order by id`, tableID)
	if err != nil {
		h.internalError(w, "find open order", err, zap.Int64("tableId", tableID))
		return
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			h.internalError(w, "scan open order id", err)
			return
		}
		ids = append(ids, id)
	}
	switch len(ids) {
	case 0:
		response.Success(w, nil)
	case 1:
		response.Success(w, ids[0])
	default:
		h.Logger.Error("multiple open orders for table",
			zap.Int64("tableId", tableID),
			zap.Int64s("orderIds", ids),
			zap.Bool("alert", true))
		response.Error(w, http.StatusInternalServerError, response.CodeMultipleOpenOrders,
			"table has multiple open orders")
	}
}

func (h *Handler) OrderCreate(w http.ResponseWriter, r *http.Request) {
	var req orderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if !orders.ValidType(req.OrderType) {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "orderType must be DINE_IN or TAKEAWAY")
		return
	}
	cgst, ok := parseNumber(req.CGSTPercent)
	if !ok || cgst < 0 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "cgstPercent must be a non-negative number")
		return
	}
	sgst, ok := parseNumber(req.SGSTPercent)
	if !ok || sgst < 0 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "sgstPercent must be a non-negative number")
		return
	}
	if len(req.OrderItems) == 0 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "order must contain at least one item")
		return
	}
	if req.OrderType == orders.TypeDineIn && (req.TableID == nil || *req.TableID <= 0) {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "tableId is required for DINE_IN orders")
		return
	}

	ctx := r.Context()
	snapshots, errMsg, err := h.resolveSnapshots(ctx, req.OrderItems)
	if err != nil {
		h.internalError(w, "resolve order item snapshots", err)
		return
	}
	if errMsg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, errMsg)
		return
	}

	if req.OrderType == orders.TypeTakeaway {
		h.createTakeawayOrder(w, r, cgst, sgst, snapshots)
		return
	}

	orderID, appended, err := h.createDineInOrder(ctx, *req.TableID, cgst, sgst, snapshots)
	if errors.Is(err, errTableNotFound) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "dining table not found")
		return
	}
	if errors.Is(err, tables.ErrTableUnavailable) {
		response.Error(w, http.StatusConflict, response.CodeTableUnavailable, "table is out of service")
		return
	}
	if err != nil {
		h.internalError(w, "create dine-in order", err, zap.Int64("tableId", *req.TableID))
		return
	}

	o, err := scanOrder(h.DB.QueryRow(ctx, orderSelect+` where o.id = $1`, orderID))
	if err != nil {
		h.internalError(w, "reload order after create", err, zap.Int64("orderId", orderID))
		return
	}
	if appended {
		h.Logger.Info("items appended to open order",
			zap.Int64("orderId", orderID), zap.Int64("tableId", *req.TableID), zap.Int("items", len(snapshots)))
		response.Success(w, o)
		return
	}
	h.Logger.Info("order created",
		zap.Int64("orderId", orderID), zap.String("orderType", o.OrderType), zap.Int64("tableId", *req.TableID))
	response.Created(w, o)
}

var errTableNotFound = errors.New("dining table not found")

// createDineInOrder serializes on the table row. Concurrent creates for an
// AVAILABLE table queue up on the lock; the loser of an insert race against
// the one-open-order-per-table index falls back to appending.
func (h *Handler) createDineInOrder(ctx context.Context, tableID int64, cgst, sgst float64, snapshots []itemSnapshot) (int64, bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		tx, err := h.DB.Begin(ctx)
		if err != nil {
			return 0, false, err
		}

		orderID, appended, err := createDineInOrderTx(ctx, tx, tableID, cgst, sgst, snapshots)
		if err != nil {
			tx.Rollback(ctx)
			if attempt == 0 && isUniqueViolation(err, "orders_one_open_per_table") {
				continue
			}
			return 0, false, err
		}
		if err := tx.Commit(ctx); err != nil {
			return 0, false, err
		}
		return orderID, appended, nil
	}
	return 0, false, errors.New("order create retry exhausted")
}

func createDineInOrderTx(ctx context.Context, tx pgx.Tx, tableID int64, cgst, sgst float64, snapshots []itemSnapshot) (int64, bool, error) {
	var status string
	err := tx.QueryRow(ctx, `select current_status from dining_tables where id = $1 for update`, tableID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, errTableNotFound
	}
	if err != nil {
		return 0, false, err
	}

	var openID *int64
	err = tx.QueryRow(ctx, `select id from orders where table_id = $1 and status = 'PENDING' limit 1`, tableID).Scan(&openID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, false, err
	}

	if openID != nil {
		if err := insertItems(ctx, tx, *openID, snapshots, orders.DeliveryPending); err != nil {
			return 0, false, err
		}
		if err := recomputeOrderTotals(ctx, tx, *openID); err != nil {
			return 0, false, err
		}
		return *openID, true, nil
	}

	next, err := tables.MarkOccupied(status)
	if err != nil {
		return 0, false, err
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		insert into orders (order_type, table_id, status, cgst_percent, sgst_percent)
		values ($1, $2, $3, $4, $5)
		returning id`,
		orders.TypeDineIn, tableID, orders.StatusPending, cgst, sgst).Scan(&orderID)
	if err != nil {
		return 0, false, err
	}
	if err := insertItems(ctx, tx, orderID, snapshots, orders.DeliveryPending); err != nil {
		return 0, false, err
	}
	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		return 0, false, err
	}
	if _, err := tx.Exec(ctx, `update dining_tables set current_status = $1 where id = $2`, next, tableID); err != nil {
		return 0, false, err
	}
	return orderID, false, nil
}

// Takeaway items skip the kitchen delivery queue: the customer walks away
// with them, so they are born DELIVERED.
func (h *Handler) createTakeawayOrder(w http.ResponseWriter, r *http.Request, cgst, sgst float64, snapshots []itemSnapshot) {
	ctx := r.Context()
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.internalError(w, "begin takeaway order", err)
		return
	}
	defer tx.Rollback(ctx)

	var orderID int64
	err = tx.QueryRow(ctx, `
		insert into orders (order_type, status, cgst_percent, sgst_percent)
		values ($1, $2, $3, $4)
		returning id`,
		orders.TypeTakeaway, orders.StatusPending, cgst, sgst).Scan(&orderID)
	if err != nil {
		h.internalError(w, "insert takeaway order", err)
		return
	}
	if err := insertItems(ctx, tx, orderID, snapshots, orders.DeliveryDelivered); err != nil {
		h.internalError(w, "insert takeaway items", err, zap.Int64("orderId", orderID))
		return
	}
	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		h.internalError(w, "recompute takeaway totals", err, zap.Int64("orderId", orderID))
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.internalError(w, "commit takeaway order", err)
		return
	}

	o, err := scanOrder(h.DB.QueryRow(ctx, orderSelect+` where o.id = $1`, orderID))
	if err != nil {
		h.internalError(w, "reload order after create", err, zap.Int64("orderId", orderID))
		return
	}
	h.Logger.Info("order created", zap.Int64("orderId", orderID), zap.String("orderType", orders.TypeTakeaway))
	response.Created(w, o)
}

// resolveSnapshots freezes name and unit price per line. Lines referencing a
// menu item take the menu's current values; ad-hoc lines must carry their own.
func (h *Handler) resolveSnapshots(ctx context.Context, reqs []orderItemRequest) ([]itemSnapshot, string, error) {
	snapshots := make([]itemSnapshot, 0, len(reqs))
	for _, req := range reqs {
		if req.Quantity < 1 {
			return nil, "quantity must be at least 1", nil
		}
		snap := itemSnapshot{quantity: req.Quantity}
		if req.FoodItemID != nil && *req.FoodItemID > 0 {
			var available bool
			err := h.DB.QueryRow(ctx, `select name, price, available from food_items where id = $1`, *req.FoodItemID).
				Scan(&snap.name, &snap.price, &available)
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "food item not found", nil
			}
			if err != nil {
				return nil, "", err
			}
			if !available {
				return nil, "food item " + snap.name + " is not available", nil
			}
			snap.foodItemID = req.FoodItemID
		} else {
			price, ok := parseNumber(req.Price)
			if !ok || price < 0 {
				return nil, "price must be a non-negative number", nil
			}
			if req.Name == "" {
				return nil, "item name is required", nil
			}
			snap.name = req.Name
			snap.price = price
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, "", nil
}

func insertItems(ctx context.Context, q dbtx, orderID int64, snapshots []itemSnapshot, deliveryStatus string) error {
	for _, s := range snapshots {
		_, err := q.Exec(ctx, `
			insert into order_items (order_id, food_item_id, name, price, quantity, total_price, delivery_status)
			values ($1, $2, $3, $4, $5, $6, $7)`,
			orderID, s.foodItemID, s.name, s.price, s.quantity, round2(s.price*float64(s.quantity)), deliveryStatus)
		if err != nil {
			return err
		}
	}
	return nil
}

// recomputeOrderTotals re-derives the order's subtotal and taxed total from
// its lines. Runs after every line mutation, inside the same transaction.
func recomputeOrderTotals(ctx context.Context, q dbtx, orderID int64) error {
	var cgst, sgst, subtotal float64
	err := q.QueryRow(ctx, `
		select o.cgst_percent, o.sgst_percent, coalesce(sum(i.total_price), 0)
		from orders o
		left join order_items i on i.order_id = o.id
		where o.id = $1
		group by o.cgst_percent, o.sgst_percent`, orderID).Scan(&cgst, &sgst, &subtotal)
	if err != nil {
		return err
	}
	tax := billing.ComputeTax(subtotal, cgst, sgst)
	_, err = q.Exec(ctx, `update orders set total_price = $1, total_price_with_taxes = $2 where id = $3`,
		round2(subtotal), round2(tax.GrandTotal), orderID)
	return err
}
