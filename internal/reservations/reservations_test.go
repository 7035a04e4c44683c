package reservations

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTransition(t *testing.T) {
	cases := []struct {
		name    string
		current string
		next    string
		wantErr error
	}{
		{name: "staff confirm", current: StatusPending, next: StatusConfirmed},
		{name: "staff reject", current: StatusPending, next: StatusRejected},
		{name: "customer cancel pending", current: StatusPending, next: StatusCancelled},
		{name: "customer cancel confirmed", current: StatusConfirmed, next: StatusCancelled},
		{name: "cancelled is terminal", current: StatusCancelled, next: StatusPending, wantErr: ErrAlreadyTerminal},
		{name: "rejected is terminal", current: StatusRejected, next: StatusConfirmed, wantErr: ErrAlreadyTerminal},
		{name: "no re-confirm", current: StatusConfirmed, next: StatusConfirmed, wantErr: ErrInvalidTransition},
		{name: "no reject after confirm", current: StatusConfirmed, next: StatusRejected, wantErr: ErrInvalidTransition},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Transition(tc.current, tc.next)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Transition(%s, %s) = %v, want %v", tc.current, tc.next, err, tc.wantErr)
			}
		})
	}
}

func TestValidateDetails(t *testing.T) {
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	valid := Details{
		CustomerName:    "Asha Rao",
		CustomerMobile:  "9876543210",
		CustomerEmail:   "asha@example.com",
		PartySize:       4,
		ReservationDate: "2024-03-12",
		ReservationTime: "19:30:00",
		SpecialRequests: "window seat",
	}

	if err := ValidateDetails(valid, now, 7, 30*time.Minute); err != nil {
		t.Fatalf("valid details rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Details)
		want   string
	}{
		{name: "empty name", mutate: func(d *Details) { d.CustomerName = "  " }, want: "name"},
		{name: "name too long", mutate: func(d *Details) { d.CustomerName = strings.Repeat("a", 21) }, want: "name"},
		{name: "short mobile", mutate: func(d *Details) { d.CustomerMobile = "12345" }, want: "mobile"},
		{name: "mobile with letters", mutate: func(d *Details) { d.CustomerMobile = "98765x3210" }, want: "mobile"},
		{name: "bad email", mutate: func(d *Details) { d.CustomerEmail = "not-an-email" }, want: "email"},
		{name: "zero party", mutate: func(d *Details) { d.PartySize = 0 }, want: "party size"},
		{name: "party too big", mutate: func(d *Details) { d.PartySize = 21 }, want: "party size"},
		{name: "requests too long", mutate: func(d *Details) { d.SpecialRequests = strings.Repeat("x", 101) }, want: "special requests"},
		{name: "bad date format", mutate: func(d *Details) { d.ReservationDate = "12/03/2024" }, want: "date"},
		{name: "past date", mutate: func(d *Details) { d.ReservationDate = "2024-03-09" }, want: "past"},
		{name: "too far ahead", mutate: func(d *Details) { d.ReservationDate = "2024-03-20" }, want: "days ahead"},
		{name: "unaligned time", mutate: func(d *Details) { d.ReservationTime = "19:45:00" }, want: "slots"},
		{name: "before opening", mutate: func(d *Details) { d.ReservationTime = "07:00:00" }, want: "service hours"},
		{name: "after closing", mutate: func(d *Details) { d.ReservationTime = "22:00:00" }, want: "service hours"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details := valid
			tc.mutate(&details)
			err := ValidateDetails(details, now, 7, 30*time.Minute)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q should mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestValidateDetailsSameDayGrace(t *testing.T) {
	// 21:30 today: the 21:30 and 21:45-adjacent dinner slots are inside the
	// grace window, so today's dinner is fully closed.
	now := time.Date(2024, time.March, 10, 21, 30, 0, 0, time.UTC)
	details := Details{
		CustomerName:    "Ravi",
		CustomerMobile:  "9876543210",
		CustomerEmail:   "ravi@example.com",
		PartySize:       2,
		ReservationDate: "2024-03-10",
		ReservationTime: "21:30:00",
	}

	if err := ValidateDetails(details, now, 7, 30*time.Minute); err == nil {
		t.Fatal("slot inside grace window must be rejected")
	}

	// The same slot tomorrow is fine.
	details.ReservationDate = "2024-03-11"
	if err := ValidateDetails(details, now, 7, 30*time.Minute); err != nil {
		t.Fatalf("tomorrow's slot rejected: %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(StatusCancelled) || !IsTerminal(StatusRejected) {
		t.Fatal("cancelled and rejected are terminal")
	}
	if IsTerminal(StatusPending) || IsTerminal(StatusConfirmed) {
		t.Fatal("pending and confirmed are not terminal")
	}
}
