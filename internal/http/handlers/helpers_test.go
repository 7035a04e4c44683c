package handlers

import (
	"encoding/json"
	"testing"
)

func TestParseNumber(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  float64
		ok    bool
	}{
		{"float", 2.5, 2.5, true},
		{"numeric string", "2.5", 2.5, true},
		{"integer string", "250", 250, true},
		{"json number", json.Number("18.75"), 18.75, true},
		{"garbage string", "two", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseNumber(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("parseNumber(%v) = %v, %v; want %v, %v", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  int64
		ok    bool
	}{
		{"whole float", float64(7), 7, true},
		{"string id", "42", 42, true},
		{"fractional", 7.5, 0, false},
		{"zero", float64(0), 0, false},
		{"negative", float64(-3), 0, false},
		{"garbage", "abc", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseID(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("parseID(%v) = %v, %v; want %v, %v", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{262.499999999, 262.5},
		{6.256, 6.26},
		{0, 0},
		{99.994, 99.99},
	}
	for _, tc := range cases {
		if got := round2(tc.in); got != tc.want {
			t.Fatalf("round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPaymentRequestValidate(t *testing.T) {
	valid := paymentRequest{
		CustomerName: "Asha Rao",
		MobileNumber: "9876543210",
		PaymentType:  "CASH",
	}
	if msg := valid.validate(); msg != "" {
		t.Fatalf("valid request rejected: %s", msg)
	}

	cases := []struct {
		name   string
		mutate func(*paymentRequest)
	}{
		{"empty name", func(r *paymentRequest) { r.CustomerName = "  " }},
		{"name too long", func(r *paymentRequest) { r.CustomerName = "Abcdefghijklmnopqrstu" }},
		{"name with digits", func(r *paymentRequest) { r.CustomerName = "Asha 2" }},
		{"short mobile", func(r *paymentRequest) { r.MobileNumber = "12345" }},
		{"mobile with letters", func(r *paymentRequest) { r.MobileNumber = "98765abc10" }},
		{"bad payment type", func(r *paymentRequest) { r.PaymentType = "CARD" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			if msg := req.validate(); msg == "" {
				t.Fatal("expected validation error, got none")
			}
		})
	}
}

func TestDiningTableRequestValidate(t *testing.T) {
	valid := diningTableRequest{Name: "T1", Capacity: 4, FloorNumber: "G"}
	if msg := valid.validate(); msg != "" {
		t.Fatalf("valid request rejected: %s", msg)
	}

	cases := []struct {
		name string
		req  diningTableRequest
	}{
		{"empty name", diningTableRequest{Name: " ", Capacity: 4, FloorNumber: "1"}},
		{"zero capacity", diningTableRequest{Name: "T1", Capacity: 0, FloorNumber: "1"}},
		{"blank floor", diningTableRequest{Name: "T1", Capacity: 4, FloorNumber: "  "}},
		{"floor too long", diningTableRequest{Name: "T1", Capacity: 4, FloorNumber: "1234"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if msg := tc.req.validate(); msg == "" {
				t.Fatal("expected validation error, got none")
			}
		})
	}
}

func TestEmployeeRequestValidate(t *testing.T) {
	valid := employeeRequest{Name: "Ravi", Email: "ravi@example.com", Password: "longenough", Role: "employee"}
	if msg := valid.validate(true); msg != "" {
		t.Fatalf("valid request rejected: %s", msg)
	}

	t.Run("password optional on update", func(t *testing.T) {
		req := valid
		req.Password = ""
		if msg := req.validate(false); msg != "" {
			t.Fatalf("update without password rejected: %s", msg)
		}
	})
	t.Run("short password still rejected on update", func(t *testing.T) {
		req := valid
		req.Password = "short"
		if msg := req.validate(false); msg == "" {
			t.Fatal("expected validation error, got none")
		}
	})
	t.Run("bad role", func(t *testing.T) {
		req := valid
		req.Role = "manager"
		if msg := req.validate(true); msg == "" {
			t.Fatal("expected validation error, got none")
		}
	})
	t.Run("email lowercased", func(t *testing.T) {
		req := valid
		req.Email = " Ravi@Example.COM "
		if msg := req.validate(true); msg != "" {
			t.Fatalf("unexpected error: %s", msg)
		}
		if req.Email != "ravi@example.com" {
			t.Fatalf("email not normalized: %q", req.Email)
		}
	})
}
