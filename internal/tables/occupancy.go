package tables

import "errors"

const (
	StatusAvailable    = "AVAILABLE"
	StatusOccupied     = "OCCUPIED"
	StatusOutOfService = "OUT_OF_SERVICE"
)

// ErrTableUnavailable rejects order placement on a table pulled from service.
var ErrTableUnavailable = errors.New("table is out of service")

func ValidStatus(status string) bool {
	switch status {
	case StatusAvailable, StatusOccupied, StatusOutOfService:
		return true
	}
	return false
}

// MarkOccupied returns the table's status once an order lands on it.
// OUT_OF_SERVICE blocks new seating; a table already OCCUPIED stays OCCUPIED
// because re-ordering appends to its open order.
func MarkOccupied(current string) (string, error) {
	if current == StatusOutOfService {
		return "", ErrTableUnavailable
	}
	return StatusOccupied, nil
}

// Release frees the table after a successful payment, unconditionally.
func Release() string {
	return StatusAvailable
}

// AdminSettable reports whether staff may write the status directly.
// OCCUPIED only ever comes from order creation, never from a table edit.
func AdminSettable(next string) bool {
	return next == StatusAvailable || next == StatusOutOfService
}
