package reservations

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusRejected  = "REJECTED"
)

const (
	MaxNameLength           = 20
	MaxSpecialRequestLength = 100
	MaxPartySize            = 20
)

var (
	// ErrAlreadyTerminal rejects any transition out of CANCELLED or REJECTED.
	ErrAlreadyTerminal   = errors.New("reservation already cancelled or rejected")
	ErrInvalidTransition = errors.New("invalid reservation status transition")
)

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

func IsTerminal(status string) bool {
	return status == StatusCancelled || status == StatusRejected
}

// Transition validates a status change. Staff move PENDING to CONFIRMED or
// REJECTED; the customer may cancel from PENDING or CONFIRMED.
func Transition(current, next string) error {
	if IsTerminal(current) {
		return ErrAlreadyTerminal
	}

	allowed := map[string][]string{
		StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
		StatusConfirmed: {StatusCancelled},
	}
	for _, candidate := range allowed[current] {
		if candidate == next {
			return nil
		}
	}
	return ErrInvalidTransition
}

// Details is a customer-submitted reservation request.
type Details struct {
	CustomerName    string `json:"customerName"`
	CustomerMobile  string `json:"customerMobile"`
	CustomerEmail   string `json:"customerEmail"`
	PartySize       int    `json:"partySize"`
	ReservationDate string `json:"reservationDate"`
	ReservationTime string `json:"reservationTime"`
	SpecialRequests string `json:"specialRequests"`
}

// ValidateDetails checks every field and the requested slot. The date must
// fall within [today, today+maxAdvanceDays]; a same-day slot must clear the
// grace window so the kitchen has time to prepare.
func ValidateDetails(d Details, now time.Time, maxAdvanceDays int, grace time.Duration) error {
	name := strings.TrimSpace(d.CustomerName)
	if name == "" || len(name) > MaxNameLength {
		return fmt.Errorf("customer name must be 1-%d characters", MaxNameLength)
	}
	if !mobilePattern.MatchString(d.CustomerMobile) {
		return errors.New("mobile number must be exactly 10 digits")
	}
	if !emailPattern.MatchString(d.CustomerEmail) {
		return errors.New("invalid email address")
	}
	if d.PartySize < 1 || d.PartySize > MaxPartySize {
		return fmt.Errorf("party size must be between 1 and %d", MaxPartySize)
	}
	if len(d.SpecialRequests) > MaxSpecialRequestLength {
		return fmt.Errorf("special requests must be at most %d characters", MaxSpecialRequestLength)
	}

	date, err := time.ParseInLocation("2006-01-02", d.ReservationDate, now.Location())
	if err != nil {
		return errors.New("reservation date must be YYYY-MM-DD")
	}
	today := truncateToDay(now)
	if date.Before(today) {
		return errors.New("reservation date is in the past")
	}
	if maxAdvanceDays > 0 && date.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return fmt.Errorf("reservations open at most %d days ahead", maxAdvanceDays)
	}

	slot, err := parseSlotTime(d.ReservationTime)
	if err != nil {
		return err
	}
	if _, ok := CategoryForSlot(slot); !ok {
		return errors.New("reservation time is outside service hours")
	}
	if date.Equal(today) {
		slotAt := date.Add(slot)
		if !slotAt.After(now.Add(grace)) {
			return errors.New("reservation time is too close to the current time")
		}
	}

	return nil
}

func parseSlotTime(value string) (time.Duration, error) {
	parsed, err := time.Parse("15:04:05", value)
	if err != nil {
		parsed, err = time.Parse("15:04", value)
	}
	if err != nil {
		return 0, errors.New("reservation time must be HH:MM:SS")
	}
	if parsed.Minute()%SlotMinutes != 0 || parsed.Second() != 0 {
		return 0, fmt.Errorf("reservation time must align to %d-minute slots", SlotMinutes)
	}
	return time.Duration(parsed.Hour())*time.Hour + time.Duration(parsed.Minute())*time.Minute, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
