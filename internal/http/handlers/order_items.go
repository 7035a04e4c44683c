package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/orders"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// KitchenItem is an order line as the kitchen display sees it, with the
// table it belongs to resolved for routing the plate.
type KitchenItem struct {
	orders.Item
	TableName string `json:"tableName"`
	OrderType string `json:"orderType"`
}

const itemSelect = `
	select id, order_id, food_item_id, name, price, quantity, total_price, delivery_status, created_at
	from order_items`

func scanItem(row pgx.Row) (orders.Item, error) {
	var it orders.Item
	err := row.Scan(&it.OrderItemID, &it.OrderID, &it.FoodItemID, &it.Name, &it.Price,
		&it.Quantity, &it.TotalPrice, &it.DeliveryStatus, &it.CreatedAt)
	return it, err
}

func (h *Handler) OrderItemsList(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(r.URL.Query().Get("orderId"), 10, 64)
	if err != nil || orderID <= 0 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "orderId query parameter is required")
		return
	}

	rows, err := h.DB.Query(r.Context(), itemSelect+` where order_id = $1 order by created_at, id`, orderID)
	if err != nil {
		h.internalError(w, "list order items", err, zap.Int64("orderId", orderID))
		return
	}
	defer rows.Close()

	items := []orders.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			h.internalError(w, "scan order item", err)
			return
		}
		items = append(items, it)
	}

	if r.URL.Query().Get("merged") == "true" {
		response.Success(w, orders.MergeDuplicatesForDisplay(items))
		return
	}
	response.Success(w, items)
}

// OrderItemsPending feeds the kitchen display: every undelivered line of
// every open order, oldest first.
func (h *Handler) OrderItemsPending(w http.ResponseWriter, r *http.Request) {
	items, err := PendingKitchenItems(r.Context(), h.DB)
	if err != nil {
		h.internalError(w, "list pending order items", err)
		return
	}
	response.Success(w, items)
}

// PendingKitchenItems is shared with the websocket kitchen feed.
func PendingKitchenItems(ctx context.Context, q dbtx) ([]KitchenItem, error) {
	rows, err := q.Query(ctx, `
		select i.id, i.order_id, i.food_item_id, i.name, i.price, i.quantity, i.total_price,
		       i.delivery_status, i.created_at, coalesce(t.name, 'Takeaway'), o.order_type
		from order_items i
		join orders o on o.id = i.order_id
		left join dining_tables t on t.id = o.table_id
		where o.status = 'PENDING' and i.delivery_status = 'PENDING'
		order by i.created_at, i.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []KitchenItem{}
	for rows.Next() {
		var it KitchenItem
		err := rows.Scan(&it.OrderItemID, &it.OrderID, &it.FoodItemID, &it.Name, &it.Price,
			&it.Quantity, &it.TotalPrice, &it.DeliveryStatus, &it.CreatedAt, &it.TableName, &it.OrderType)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (h *Handler) OrderItemDetail(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "orderItemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	it, err := scanItem(h.DB.QueryRow(r.Context(), itemSelect+` where id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "order item not found")
		return
	}
	if err != nil {
		h.internalError(w, "get order item", err, zap.Int64("orderItemId", id))
		return
	}
	response.Success(w, it)
}

type orderItemCreateRequest struct {
	OrderID    int64  `json:"orderId"`
	FoodItemID *int64 `json:"foodItemId"`
	Name       string `json:"name"`
	Price      any    `json:"price"`
	Quantity   int    `json:"quantity"`
}

func (h *Handler) OrderItemCreate(w http.ResponseWriter, r *http.Request) {
	var req orderItemCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if req.OrderID <= 0 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "orderId is required")
		return
	}

	ctx := r.Context()
	snapshots, errMsg, err := h.resolveSnapshots(ctx, []orderItemRequest{{
		FoodItemID: req.FoodItemID, Name: req.Name, Price: req.Price, Quantity: req.Quantity,
	}})
	if err != nil {
		h.internalError(w, "resolve order item snapshot", err)
		return
	}
	if errMsg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, errMsg)
		return
	}

	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.internalError(w, "begin order item create", err)
		return
	}
	defer tx.Rollback(ctx)

	var status, orderType string
	err = tx.QueryRow(ctx, `select status, order_type from orders where id = $1 for update`, req.OrderID).
		Scan(&status, &orderType)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "order not found")
		return
	}
	if err != nil {
		h.internalError(w, "lock order", err, zap.Int64("orderId", req.OrderID))
		return
	}
	if status == orders.StatusPaid {
		response.Error(w, http.StatusConflict, response.CodeOrderAlreadyPaid, "order is already paid")
		return
	}

	delivery := orders.DeliveryPending
	if orderType == orders.TypeTakeaway {
		delivery = orders.DeliveryDelivered
	}
	s := snapshots[0]
	var it orders.Item
	err = tx.QueryRow(ctx, `
		insert into order_items (order_id, food_item_id, name, price, quantity, total_price, delivery_status)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id, order_id, food_item_id, name, price, quantity, total_price, delivery_status, created_at`,
		req.OrderID, s.foodItemID, s.name, s.price, s.quantity, round2(s.price*float64(s.quantity)), delivery).
		Scan(&it.OrderItemID, &it.OrderID, &it.FoodItemID, &it.Name, &it.Price,
			&it.Quantity, &it.TotalPrice, &it.DeliveryStatus, &it.CreatedAt)
	if err != nil {
		h.internalError(w, "insert order item", err, zap.Int64("orderId", req.OrderID))
		return
	}
	if err := recomputeOrderTotals(ctx, tx, req.OrderID); err != nil {
		h.internalError(w, "recompute order totals", err, zap.Int64("orderId", req.OrderID))
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.internalError(w, "commit order item create", err)
		return
	}
	response.Created(w, it)
}

type orderItemUpdateRequest struct {
	Quantity       *int    `json:"quantity"`
	DeliveryStatus *string `json:"deliveryStatus"`
}

func (h *Handler) OrderItemUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "orderItemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var req orderItemUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if req.Quantity == nil && req.DeliveryStatus == nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "nothing to update")
		return
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "quantity must be at least 1")
		return
	}
	if req.DeliveryStatus != nil && !orders.ValidDeliveryStatus(*req.DeliveryStatus) {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "deliveryStatus must be PENDING or DELIVERED")
		return
	}

	ctx := r.Context()
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.internalError(w, "begin order item update", err)
		return
	}
	defer tx.Rollback(ctx)

	var orderID int64
	var orderStatus string
	var quantity int
	var price float64
	var delivery string
	err = tx.QueryRow(ctx, `
		select i.order_id, o.status, i.quantity, i.price, i.delivery_status
		from order_items i
		join orders o on o.id = i.order_id
		where i.id = $1
		for update of i, o`, id).Scan(&orderID, &orderStatus, &quantity, &price, &delivery)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "order item not found")
		return
	}
	if err != nil {
		h.internalError(w, "lock order item", err, zap.Int64("orderItemId", id))
		return
	}
	if orderStatus == orders.StatusPaid {
		response.Error(w, http.StatusConflict, response.CodeOrderAlreadyPaid, "order is already paid")
		return
	}

	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if req.DeliveryStatus != nil {
		delivery = *req.DeliveryStatus
	}

	var it orders.Item
	err = tx.QueryRow(ctx, `
		update order_items
		set quantity = $1, total_price = $2, delivery_status = $3
		where id = $4
		returning id, order_id, food_item_id, name, price, quantity, total_price, delivery_status, created_at`,
		quantity, round2(price*float64(quantity)), delivery, id).
		Scan(&it.OrderItemID, &it.OrderID, &it.FoodItemID, &it.Name, &it.Price,
			&it.Quantity, &it.TotalPrice, &it.DeliveryStatus, &it.CreatedAt)
	if err != nil {
		h.internalError(w, "update order item", err, zap.Int64("orderItemId", id))
		return
	}
	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		h.internalError(w, "recompute order totals", err, zap.Int64("orderId", orderID))
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.internalError(w, "commit order item update", err)
		return
	}
	response.Success(w, it)
}

// OrderItemDelete removes a line from an open order. Delivered lines stay:
// the food already left the kitchen and belongs on the bill.
func (h *Handler) OrderItemDelete(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "orderItemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}

	ctx := r.Context()
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.internalError(w, "begin order item delete", err)
		return
	}
	defer tx.Rollback(ctx)

	var orderID int64
	var orderStatus, delivery string
	err = tx.QueryRow(ctx, `
		select i.order_id, o.status, i.delivery_status
		from order_items i
		join orders o on o.id = i.order_id
		where i.id = $1
		for update of i, o`, id).Scan(&orderID, &orderStatus, &delivery)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "order item not found")
		return
	}
	if err != nil {
		h.internalError(w, "lock order item", err, zap.Int64("orderItemId", id))
		return
	}
	if orderStatus == orders.StatusPaid {
		response.Error(w, http.StatusConflict, response.CodeOrderAlreadyPaid, "order is already paid")
		return
	}
	if delivery == orders.DeliveryDelivered {
		response.Error(w, http.StatusConflict, response.CodeItemAlreadyDelivered, "delivered items cannot be removed")
		return
	}

	if _, err := tx.Exec(ctx, `delete from order_items where id = $1`, id); err != nil {
		h.internalError(w, "delete order item", err, zap.Int64("orderItemId", id))
		return
	}
	if err := recomputeOrderTotals(ctx, tx, orderID); err != nil {
		h.internalError(w, "recompute order totals", err, zap.Int64("orderId", orderID))
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.internalError(w, "commit order item delete", err)
		return
	}
	h.Logger.Info("order item removed", zap.Int64("orderItemId", id), zap.Int64("orderId", orderID))
	response.Success(w, map[string]any{"deleted": true})
}
