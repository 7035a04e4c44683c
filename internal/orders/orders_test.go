package orders

import (
	"math"
	"testing"
)

func TestToggleDelivery(t *testing.T) {
	if got := ToggleDelivery(DeliveryPending); got != DeliveryDelivered {
		t.Fatalf("pending should toggle to delivered, got %s", got)
	}
	if got := ToggleDelivery(DeliveryDelivered); got != DeliveryPending {
		t.Fatalf("delivered should toggle back to pending, got %s", got)
	}
}

func TestSubtotal(t *testing.T) {
	items := []Item{
		{Name: "Paneer Tikka", Price: 100, Quantity: 2, TotalPrice: 200},
		{Name: "Lassi", Price: 50, Quantity: 1, TotalPrice: 50},
	}
	if got := Subtotal(items); math.Abs(got-250) > 1e-9 {
		t.Fatalf("subtotal = %v, want 250", got)
	}
	if got := Subtotal(nil); got != 0 {
		t.Fatalf("empty subtotal = %v, want 0", got)
	}
}

func TestSubtotalIdempotent(t *testing.T) {
	items := []Item{
		{Name: "Masala Dosa", Price: 80, Quantity: 3, TotalPrice: 240},
	}
	if Subtotal(items) != Subtotal(items) {
		t.Fatal("subtotal must not change between calls with no item change")
	}
}

func TestAllDelivered(t *testing.T) {
	pendingSet := []Item{
		{Name: "Dal", DeliveryStatus: DeliveryDelivered},
		{Name: "Rice", DeliveryStatus: DeliveryPending},
	}
	if AllDelivered(pendingSet) {
		t.Fatal("one pending item must block delivery completion")
	}

	deliveredSet := []Item{
		{Name: "Dal", DeliveryStatus: DeliveryDelivered},
		{Name: "Rice", DeliveryStatus: DeliveryDelivered},
	}
	if !AllDelivered(deliveredSet) {
		t.Fatal("all delivered items must report complete")
	}

	if !AllDelivered(nil) {
		t.Fatal("an empty item set has nothing left to deliver")
	}
}

func TestMergeDuplicatesForDisplay(t *testing.T) {
	items := []Item{
		{Name: "Paneer Tikka", Price: 100, Quantity: 2, TotalPrice: 200},
		{Name: "Lassi", Price: 50, Quantity: 1, TotalPrice: 50},
		{Name: "Paneer Tikka", Price: 100, Quantity: 1, TotalPrice: 100},
	}

	rows := MergeDuplicatesForDisplay(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 display rows, got %d", len(rows))
	}
	if rows[0].Name != "Paneer Tikka" || rows[0].Quantity != 3 || math.Abs(rows[0].TotalPrice-300) > 1e-9 {
		t.Fatalf("merged row wrong: %+v", rows[0])
	}
	if rows[1].Name != "Lassi" || rows[1].Quantity != 1 {
		t.Fatalf("unmerged row wrong: %+v", rows[1])
	}
}

func TestValidType(t *testing.T) {
	if !ValidType(TypeDineIn) || !ValidType(TypeTakeaway) {
		t.Fatal("known order types rejected")
	}
	if ValidType("DELIVERY") || ValidType("") {
		t.Fatal("unknown order types accepted")
	}
}
