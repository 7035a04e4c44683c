package billing

import (
	"math"
	"testing"
)

func TestComputeTax(t *testing.T) {
	cases := []struct {
		name     string
		subtotal float64
		cgst     float64
		sgst     float64
		wantCGST float64
		wantSGST float64
		wantAll  float64
	}{
		{
			name:     "two items at standard gst",
			subtotal: 250,
			cgst:     2.5,
			sgst:     2.5,
			wantCGST: 6.25,
			wantSGST: 6.25,
			wantAll:  262.50,
		},
		{
			name:     "zero percents",
			subtotal: 100,
			cgst:     0,
			sgst:     0,
			wantCGST: 0,
			wantSGST: 0,
			wantAll:  100,
		},
		{
			name:     "asymmetric percents",
			subtotal: 80,
			cgst:     9,
			sgst:     2.5,
			wantCGST: 7.2,
			wantSGST: 2,
			wantAll:  89.2,
		},
		{
			name:     "empty order",
			subtotal: 0,
			cgst:     2.5,
			sgst:     2.5,
			wantCGST: 0,
			wantSGST: 0,
			wantAll:  0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTax(tc.subtotal, tc.cgst, tc.sgst)
			if !close(got.CGSTAmount, tc.wantCGST) || !close(got.SGSTAmount, tc.wantSGST) || !close(got.GrandTotal, tc.wantAll) {
				t.Fatalf("ComputeTax(%v,%v,%v) = %+v", tc.subtotal, tc.cgst, tc.sgst, got)
			}
		})
	}
}

func TestComputeTaxGrandTotalIdentity(t *testing.T) {
	subtotals := []float64{0, 1, 99.99, 250, 1234.56}
	percents := []float64{0, 2.5, 5, 9, 18}

	for _, s := range subtotals {
		for _, c := range percents {
			for _, g := range percents {
				got := ComputeTax(s, c, g)
				want := s + s*c/100 + s*g/100
				if !close(got.GrandTotal, want) {
					t.Fatalf("grand total for (%v,%v,%v) = %v, want %v", s, c, g, got.GrandTotal, want)
				}
			}
		}
	}
}

func TestComputeTaxIdempotent(t *testing.T) {
	first := ComputeTax(250, 2.5, 2.5)
	second := ComputeTax(250, 2.5, 2.5)
	if first != second {
		t.Fatalf("recomputation changed totals: %+v vs %+v", first, second)
	}
}

func TestChangeDue(t *testing.T) {
	cases := []struct {
		name        string
		paymentType string
		received    float64
		total       float64
		want        float64
	}{
		{name: "cash with change", paymentType: PaymentTypeCash, received: 300, total: 262.50, want: 37.50},
		{name: "cash exact", paymentType: PaymentTypeCash, received: 262.50, total: 262.50, want: 0},
		{name: "cash short never negative", paymentType: PaymentTypeCash, received: 200, total: 262.50, want: 0},
		{name: "upi ignores amount", paymentType: PaymentTypeUPI, received: 500, total: 262.50, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ChangeDue(tc.paymentType, tc.received, tc.total); !close(got, tc.want) {
				t.Fatalf("ChangeDue = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidPaymentType(t *testing.T) {
	if !ValidPaymentType("CASH") || !ValidPaymentType("UPI") {
		t.Fatal("CASH and UPI must be accepted")
	}
	if ValidPaymentType("CARD") || ValidPaymentType("") {
		t.Fatal("unknown payment types must be rejected")
	}
}

func close(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
