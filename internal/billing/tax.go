package billing

const (
	PaymentTypeCash = "CASH"
	PaymentTypeUPI  = "UPI"
)

func ValidPaymentType(paymentType string) bool {
	return paymentType == PaymentTypeCash || paymentType == PaymentTypeUPI
}

type TaxBreakdown struct {
	CGSTAmount float64
	SGSTAmount float64
	GrandTotal float64
}

// ComputeTax applies an order's immutable CGST/SGST percentages to a
// subtotal. Amounts stay unrounded; two-decimal rounding happens only at
// presentation boundaries so repeated recomputation cannot drift.
func ComputeTax(subtotal, cgstPercent, sgstPercent float64) TaxBreakdown {
	cgst := subtotal * cgstPercent / 100
	sgst := subtotal * sgstPercent / 100
	return TaxBreakdown{
		CGSTAmount: cgst,
		SGSTAmount: sgst,
		GrandTotal: subtotal + cgst + sgst,
	}
}

// ChangeDue is what the counter hands back. Only cash produces change; UPI is
// settled externally for the exact amount.
func ChangeDue(paymentType string, amountReceived, grandTotal float64) float64 {
	if paymentType != PaymentTypeCash {
		return 0
	}
	if amountReceived <= grandTotal {
		return 0
	}
	return amountReceived - grandTotal
}
