package response

import (
	"encoding/json"
	"net/http"
)

// Error codes shared by every handler. State conflicts carry the specific
// reason so clients can decide whether a retry makes sense.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
	CodeIntegrityViolation = "INTEGRITY_VIOLATION"

	CodeMultipleOpenOrders   = "MULTIPLE_OPEN_ORDERS"
	CodeTableUnavailable     = "TABLE_UNAVAILABLE"
	CodeItemAlreadyDelivered = "ITEM_ALREADY_DELIVERED"
	CodeItemsNotDelivered    = "ITEMS_NOT_DELIVERED"
	CodeInsufficientPayment  = "INSUFFICIENT_PAYMENT"
	CodeOrderAlreadyPaid     = "ORDER_ALREADY_PAID"
	CodeAlreadyTerminal      = "ALREADY_TERMINAL"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    data,
	})
}

func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, map[string]any{
		"success": false,
		"error":   code,
		"message": message,
	})
}
