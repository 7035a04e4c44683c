package queue

import "testing"

func TestEmailKindForReservationEvent(t *testing.T) {
	cases := []struct {
		name      string
		eventType string
		status    string
		expected  string
	}{
		{
			name:      "submission acknowledged",
			eventType: EventReservationSubmitted,
			status:    "PENDING",
			expected:  "email.reservation_received",
		},
		{
			name:      "confirmation email",
			eventType: EventReservationStatusUpdated,
			status:    "CONFIRMED",
			expected:  "email.reservation_confirmed",
		},
		{
			name:      "rejection email",
			eventType: EventReservationStatusUpdated,
			status:    "rejected",
			expected:  "email.reservation_rejected",
		},
		{
			name:      "cancellation email",
			eventType: EventReservationStatusUpdated,
			status:    "CANCELLED",
			expected:  "email.reservation_cancelled",
		},
		{
			name:      "pending update sends nothing",
			eventType: EventReservationStatusUpdated,
			status:    "PENDING",
			expected:  "",
		},
		{
			name:      "unknown event sends nothing",
			eventType: "order.paid",
			status:    "CONFIRMED",
			expected:  "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EmailKindForReservationEvent(tc.eventType, tc.status); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
