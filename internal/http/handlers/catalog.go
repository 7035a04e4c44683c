package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type foodItem struct {
	ID           int64     `json:"id"`
	CategoryID   int64     `json:"categoryId"`
	CategoryName string    `json:"categoryName"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	ImageURL     *string   `json:"imageUrl"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *Handler) CategoriesList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), `select id, name, active, created_at from categories order by name`)
	if err != nil {
		h.internalError(w, "list categories", err)
		return
	}
	defer rows.Close()

	out := []category{}
	for rows.Next() {
		var c category
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			h.internalError(w, "scan category", err)
			return
		}
		out = append(out, c)
	}
	response.Success(w, out)
}

type categoryRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

func (h *Handler) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "category name is required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var c category
	err := h.DB.QueryRow(r.Context(), `
		insert into categories (name, active) values ($1, $2)
		returning id, name, active, created_at`, req.Name, active).
		Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			response.Error(w, http.StatusConflict, response.CodeValidation, "a category with this name already exists")
			return
		}
		h.internalError(w, "create category", err)
		return
	}
	response.Created(w, c)
}

func (h *Handler) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "categoryId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "category name is required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var c category
	err = h.DB.QueryRow(r.Context(), `
		update categories set name = $1, active = $2 where id = $3
		returning id, name, active, created_at`, req.Name, active, id).
		Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "category not found")
		return
	}
	if err != nil {
		if isUniqueViolation(err, "") {
			response.Error(w, http.StatusConflict, response.CodeValidation, "a category with this name already exists")
			return
		}
		h.internalError(w, "update category", err, zap.Int64("categoryId", id))
		return
	}
	response.Success(w, c)
}

func (h *Handler) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "categoryId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var count int
	if err := h.DB.QueryRow(r.Context(), `select count(*) from food_items where category_id = $1`, id).Scan(&count); err != nil {
		h.internalError(w, "check category usage", err, zap.Int64("categoryId", id))
		return
	}
	if count > 0 {
		response.Error(w, http.StatusConflict, response.CodeValidation, "category still has food items")
		return
	}
	tag, err := h.DB.Exec(r.Context(), `delete from categories where id = $1`, id)
	if err != nil {
		h.internalError(w, "delete category", err, zap.Int64("categoryId", id))
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "category not found")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}

const foodItemSelect = `
	select f.id, f.category_id, c.name, f.name, f.price, f.image_url, f.available, f.created_at
	from food_items f
	join categories c on c.id = f.category_id`

func scanFoodItem(row pgx.Row) (foodItem, error) {
	var f foodItem
	err := row.Scan(&f.ID, &f.CategoryID, &f.CategoryName, &f.Name, &f.Price, &f.ImageURL, &f.Available, &f.CreatedAt)
	return f, err
}

func (h *Handler) FoodItemsList(w http.ResponseWriter, r *http.Request) {
	query := foodItemSelect
	args := []any{}
	if r.URL.Query().Get("available") == "true" {
		query += ` where f.available and c.active`
	}
	query += ` order by c.name, f.name`

	rows, err := h.DB.Query(r.Context(), query, args...)
	if err != nil {
		h.internalError(w, "list food items", err)
		return
	}
	defer rows.Close()

	out := []foodItem{}
	for rows.Next() {
		f, err := scanFoodItem(rows)
		if err != nil {
			h.internalError(w, "scan food item", err)
			return
		}
		out = append(out, f)
	}
	response.Success(w, out)
}

type foodItemRequest struct {
	CategoryID any    `json:"categoryId"`
	Name       string `json:"name"`
	Price      any    `json:"price"`
	ImageURL   *string `json:"imageUrl"`
	Available  *bool  `json:"available"`
}

// normalizedImageURL maps a missing or blank URL to SQL null.
func (req *foodItemRequest) normalizedImageURL() *string {
	if req.ImageURL == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*req.ImageURL)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (req *foodItemRequest) validate() (categoryID int64, price float64, msg string) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return 0, 0, "food item name is required"
	}
	categoryID, ok := parseID(req.CategoryID)
	if !ok {
		return 0, 0, "categoryId is required"
	}
	price, ok = parseNumber(req.Price)
	if !ok || price < 0 {
		return 0, 0, "price must be a non-negative number"
	}
	return categoryID, price, ""
}

func (h *Handler) FoodItemCreate(w http.ResponseWriter, r *http.Request) {
	var req foodItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	categoryID, price, msg := req.validate()
	if msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, msg)
		return
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	var id int64
	err := h.DB.QueryRow(r.Context(), `
		insert into food_items (category_id, name, price, image_url, available)
		values ($1, $2, $3, $4, $5)
		returning id`, categoryID, req.Name, price, req.normalizedImageURL(), available).Scan(&id)
	if err != nil {
		h.internalError(w, "create food item", err)
		return
	}
	f, err := scanFoodItem(h.DB.QueryRow(r.Context(), foodItemSelect+` where f.id = $1`, id))
	if err != nil {
		h.internalError(w, "reload food item", err, zap.Int64("foodItemId", id))
		return
	}
	response.Created(w, f)
}

func (h *Handler) FoodItemUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "foodItemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var req foodItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	categoryID, price, msg := req.validate()
	if msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, msg)
		return
	}
	available := true
	if req.Available != nil {
		available = *req.Available
	}

	tag, err := h.DB.Exec(r.Context(), `
		update food_items
		set category_id = $1, name = $2, price = $3, image_url = $4, available = $5
		where id = $6`, categoryID, req.Name, price, req.normalizedImageURL(), available, id)
	if err != nil {
		h.internalError(w, "update food item", err, zap.Int64("foodItemId", id))
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "food item not found")
		return
	}
	f, err := scanFoodItem(h.DB.QueryRow(r.Context(), foodItemSelect+` where f.id = $1`, id))
	if err != nil {
		h.internalError(w, "reload food item", err, zap.Int64("foodItemId", id))
		return
	}
	response.Success(w, f)
}

// FoodItemDelete keeps menu history intact for past orders: lines snapshot
// the name and price, so deleting the menu row never rewrites old bills.
func (h *Handler) FoodItemDelete(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "foodItemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	tag, err := h.DB.Exec(r.Context(), `delete from food_items where id = $1`, id)
	if err != nil {
		h.internalError(w, "delete food item", err, zap.Int64("foodItemId", id))
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "food item not found")
		return
	}
	response.Success(w, map[string]any{"deleted": true})
}
