package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/tables"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type diningTable struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Capacity      int       `json:"capacity"`
	FloorNumber   string    `json:"floorNumber"`
	Active        bool      `json:"active"`
	CurrentStatus string    `json:"currentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}

type diningTableRequest struct {
	Name          string `json:"name"`
	Capacity      int    `json:"capacity"`
	FloorNumber   string `json:"floorNumber"`
	Active        *bool  `json:"active"`
	CurrentStatus string `json:"currentStatus"`
}

func (req *diningTableRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "table name is required"
	}
	if len(req.Name) > 50 {
		return "table name must be at most 50 characters"
	}
	if req.Capacity < 1 {
		return "capacity must be at least 1"
	}
	req.FloorNumber = strings.TrimSpace(req.FloorNumber)
	if req.FloorNumber == "" {
		return "floor number is required"
	}
	if len(req.FloorNumber) > 3 {
		return "floor number must be at most 3 characters"
	}
	return ""
}

func (h *Handler) TablesList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), `
		select id, name, capacity, floor_number, active, current_status, created_at
		from dining_tables
		order by floor_number, name`)
	if err != nil {
		h.internalError(w, "list dining tables", err)
		return
	}
	defer rows.Close()

	out := []diningTable{}
	for rows.Next() {
		var t diningTable
		if err := rows.Scan(&t.ID, &t.Name, &t.Capacity, &t.FloorNumber, &t.Active, &t.CurrentStatus, &t.CreatedAt); err != nil {
			h.internalError(w, "scan dining table", err)
			return
		}
		out = append(out, t)
	}
	response.Success(w, out)
}

func (h *Handler) TableDetail(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "tableId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var t diningTable
	err = h.DB.QueryRow(r.Context(), `
		select id, name, capacity, floor_number, active, current_status, created_at
		from dining_tables where id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Capacity, &t.FloorNumber, &t.Active, &t.CurrentStatus, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "dining table not found")
		return
	}
	if err != nil {
		h.internalError(w, "get dining table", err, zap.Int64("tableId", id))
		return
	}
	response.Success(w, t)
}

func (h *Handler) TableCreate(w http.ResponseWriter, r *http.Request) {
	var req diningTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, msg)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var t diningTable
	err := h.DB.QueryRow(r.Context(), `
		insert into dining_tables (name, capacity, floor_number, active, current_status)
		values ($1, $2, $3, $4, $5)
		returning id, name, capacity, floor_number, active, current_status, created_at`,
		req.Name, req.Capacity, req.FloorNumber, active, tables.StatusAvailable).
		Scan(&t.ID, &t.Name, &t.Capacity, &t.FloorNumber, &t.Active, &t.CurrentStatus, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			response.Error(w, http.StatusConflict, response.CodeValidation, "a table with this name already exists")
			return
		}
		h.internalError(w, "create dining table", err)
		return
	}
	h.Logger.Info("dining table created", zap.Int64("tableId", t.ID), zap.String("name", t.Name))
	response.Created(w, t)
}

// TableUpdate changes table attributes and, for admins, its status.
// OCCUPIED is never settable directly: occupancy is owned by the order
// lifecycle. A table with an open order cannot be forced back to AVAILABLE.
func (h *Handler) TableUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "tableId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var req diningTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, msg)
		return
	}

	ctx := r.Context()
	tx, err := h.DB.Begin(ctx)
	if err != nil {
		h.internalError(w, "begin table update", err)
		return
	}
	defer tx.Rollback(ctx)

	var current string
	var active bool
	err = tx.QueryRow(ctx, `select current_status, active from dining_tables where id = $1 for update`, id).
		Scan(&current, &active)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "dining table not found")
		return
	}
	if err != nil {
		h.internalError(w, "lock dining table", err, zap.Int64("tableId", id))
		return
	}

	next := current
	if req.CurrentStatus != "" && req.CurrentStatus != current {
		if !tables.AdminSettable(req.CurrentStatus) {
			response.Error(w, http.StatusBadRequest, response.CodeValidation, "status must be AVAILABLE or OUT_OF_SERVICE")
			return
		}
		if req.CurrentStatus == tables.StatusAvailable {
			var open int
			if err := tx.QueryRow(ctx, `select count(*) from orders where table_id = $1 and status = 'PENDING'`, id).Scan(&open); err != nil {
				h.internalError(w, "check open orders for table", err, zap.Int64("tableId", id))
				return
			}
			if open > 0 {
				response.Error(w, http.StatusConflict, response.CodeTableUnavailable, "table has an open order and cannot be set AVAILABLE")
				return
			}
		}
		next = req.CurrentStatus
	}
	if req.Active != nil {
		active = *req.Active
	}

	var t diningTable
	err = tx.QueryRow(ctx, `
		update dining_tables
		set name = $1, capacity = $2, floor_number = $3, active = $4, current_status = $5
		where id = $6
		returning id, name, capacity, floor_number, active, current_status, created_at`,
		req.Name, req.Capacity, req.FloorNumber, active, next, id).
		Scan(&t.ID, &t.Name, &t.Capacity, &t.FloorNumber, &t.Active, &t.CurrentStatus, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			response.Error(w, http.StatusConflict, response.CodeValidation, "a table with this name already exists")
			return
		}
		h.internalError(w, "update dining table", err, zap.Int64("tableId", id))
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.internalError(w, "commit table update", err, zap.Int64("tableId", id))
		return
	}
	response.Success(w, t)
}

func (h *Handler) TableDelete(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "tableId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	ctx := r.Context()
	var open int
	if err := h.DB.QueryRow(ctx, `select count(*) from orders where table_id = $1 and status = 'PENDING'`, id).Scan(&open); err != nil {
		h.internalError(w, "check open orders for table", err, zap.Int64("tableId", id))
		return
	}
	if open > 0 {
		response.Error(w, http.StatusConflict, response.CodeTableUnavailable, "table has an open order and cannot be deleted")
		return
	}
	tag, err := h.DB.Exec(ctx, `delete from dining_tables where id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			response.Error(w, http.StatusConflict, response.CodeValidation, "table is referenced by past orders")
			return
		}
		h.internalError(w, "delete dining table", err, zap.Int64("tableId", id))
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "dining table not found")
		return
	}
	h.Logger.Info("dining table deleted", zap.Int64("tableId", id))
	response.Success(w, map[string]any{"deleted": true})
}
