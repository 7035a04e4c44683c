package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/auth"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/internal/middleware"
	"github.com/dk-test-code/ServeSync-Restaurant-Management-System/pkg/response"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type employee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type employeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (req *employeeRequest) validate(requirePassword bool) string {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" {
		return "employee name is required"
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return "a valid email is required"
	}
	if requirePassword && len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if req.Password != "" && len(req.Password) < 8 {
		return "password must be at least 8 characters"
	}
	if req.Role != string(auth.RoleAdmin) && req.Role != string(auth.RoleEmployee) {
		return "role must be admin or employee"
	}
	return ""
}

func (h *Handler) EmployeesList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(r.Context(), `select id, name, email, role, created_at from employees order by name`)
	if err != nil {
		h.internalError(w, "list employees", err)
		return
	}
	defer rows.Close()

	out := []employee{}
	for rows.Next() {
		var e employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.CreatedAt); err != nil {
			h.internalError(w, "scan employee", err)
			return
		}
		out = append(out, e)
	}
	response.Success(w, out)
}

func (h *Handler) EmployeeCreate(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if msg := req.validate(true); msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, msg)
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalError(w, "hash password", err)
		return
	}

	var e employee
	err = h.DB.QueryRow(r.Context(), `
		insert into employees (name, email, password_hash, role)
		values ($1, $2, $3, $4)
		returning id, name, email, role, created_at`,
		req.Name, req.Email, string(hash), req.Role).
		Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			response.Error(w, http.StatusConflict, response.CodeValidation, "an employee with this email already exists")
			return
		}
		h.internalError(w, "create employee", err)
		return
	}
	h.Logger.Info("employee created", zap.Int64("employeeId", e.ID), zap.String("role", e.Role))
	response.Created(w, e)
}

func (h *Handler) EmployeeUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "employeeId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, "invalid request body")
		return
	}
	if msg := req.validate(false); msg != "" {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, msg)
		return
	}

	var e employee
	if req.Password != "" {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if hashErr != nil {
			h.internalError(w, "hash password", hashErr)
			return
		}
		err = h.DB.QueryRow(r.Context(), `
			update employees set name = $1, email = $2, role = $3, password_hash = $4 where id = $5
			returning id, name, email, role, created_at`,
			req.Name, req.Email, req.Role, string(hash), id).
			Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.CreatedAt)
	} else {
		err = h.DB.QueryRow(r.Context(), `
			update employees set name = $1, email = $2, role = $3 where id = $4
			returning id, name, email, role, created_at`,
			req.Name, req.Email, req.Role, id).
			Scan(&e.ID, &e.Name, &e.Email, &e.Role, &e.CreatedAt)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "employee not found")
		return
	}
	if err != nil {
		if isUniqueViolation(err, "") {
			response.Error(w, http.StatusConflict, response.CodeValidation, "an employee with this email already exists")
			return
		}
		h.internalError(w, "update employee", err, zap.Int64("employeeId", id))
		return
	}
	response.Success(w, e)
}

// EmployeeDelete refuses to let an admin remove their own account so the
// system always retains at least the caller.
func (h *Handler) EmployeeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := readPathInt64(r, "employeeId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, response.CodeValidation, err.Error())
		return
	}
	if ac, ok := middleware.GetAuthContext(r.Context()); ok && ac.UserID == strconv.FormatInt(id, 10) {
		response.Error(w, http.StatusConflict, response.CodeValidation, "you cannot delete your own account")
		return
	}
	tag, err := h.DB.Exec(r.Context(), `delete from employees where id = $1`, id)
	if err != nil {
		h.internalError(w, "delete employee", err, zap.Int64("employeeId", id))
		return
	}
	if tag.RowsAffected() == 0 {
		response.Error(w, http.StatusNotFound, response.CodeNotFound, "employee not found")
		return
	}
	h.Logger.Info("employee deleted", zap.Int64("employeeId", id))
	response.Success(w, map[string]any{"deleted": true})
}
