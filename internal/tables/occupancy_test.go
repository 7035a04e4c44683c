package tables

import (
	"errors"
	"testing"
)

func TestMarkOccupied(t *testing.T) {
	cases := []struct {
		name    string
		current string
		want    string
		wantErr bool
	}{
		{name: "available table gets seated", current: StatusAvailable, want: StatusOccupied},
		{name: "occupied table keeps serving", current: StatusOccupied, want: StatusOccupied},
		{name: "out of service blocks new orders", current: StatusOutOfService, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MarkOccupied(tc.current)
			if tc.wantErr {
				if !errors.Is(err, ErrTableUnavailable) {
					t.Fatalf("expected ErrTableUnavailable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("MarkOccupied(%s) = %s, want %s", tc.current, got, tc.want)
			}
		})
	}
}

func TestRelease(t *testing.T) {
	if got := Release(); got != StatusAvailable {
		t.Fatalf("release must always free the table, got %s", got)
	}
}

func TestAdminSettable(t *testing.T) {
	if !AdminSettable(StatusAvailable) || !AdminSettable(StatusOutOfService) {
		t.Fatal("staff must be able to toggle AVAILABLE and OUT_OF_SERVICE")
	}
	if AdminSettable(StatusOccupied) {
		t.Fatal("OCCUPIED must only come from order creation")
	}
	if AdminSettable("RESERVED") {
		t.Fatal("unknown statuses must be rejected")
	}
}
