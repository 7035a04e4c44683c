package reservations

import (
	"testing"
	"time"
)

var dinner = Categories[2]

func day(year int, month time.Month, d, hour, min int) time.Time {
	return time.Date(year, month, d, hour, min, 0, 0, time.UTC)
}

func TestSlotsFutureDateListsFullWindow(t *testing.T) {
	now := day(2024, time.March, 10, 21, 30)
	tomorrow := day(2024, time.March, 11, 0, 0)

	slots := Slots(dinner, tomorrow, now, 30*time.Minute)
	if len(slots) != 10 {
		t.Fatalf("dinner 17-22 has 10 half-hour slots, got %d", len(slots))
	}
	if slots[0].Hour() != 17 || slots[0].Minute() != 0 {
		t.Fatalf("first slot should be 17:00, got %v", slots[0])
	}
	if last := slots[len(slots)-1]; last.Hour() != 21 || last.Minute() != 30 {
		t.Fatalf("last slot should be 21:30, got %v", last)
	}
}

func TestSlotsSameDayGraceWindow(t *testing.T) {
	// At 21:30 the 30-minute grace window reaches 22:00, past the end of the
	// dinner window: nothing within it remains bookable today.
	now := day(2024, time.March, 10, 21, 30)
	today := day(2024, time.March, 10, 0, 0)

	if slots := Slots(dinner, today, now, 30*time.Minute); len(slots) != 0 {
		t.Fatalf("expected no dinner slots left, got %v", slots)
	}
}

func TestSlotsSameDayPartialWindow(t *testing.T) {
	now := day(2024, time.March, 10, 20, 0)
	today := day(2024, time.March, 10, 0, 0)

	slots := Slots(dinner, today, now, 30*time.Minute)
	// Cutoff is 20:30 exclusive: 21:00 and 21:30 remain.
	if len(slots) != 2 {
		t.Fatalf("expected 2 remaining slots, got %v", slots)
	}
	if slots[0].Hour() != 21 || slots[0].Minute() != 0 {
		t.Fatalf("first remaining slot should be 21:00, got %v", slots[0])
	}
}

func TestSlotsPassedCategoryEmptyToday(t *testing.T) {
	now := day(2024, time.March, 10, 14, 0)
	today := day(2024, time.March, 10, 0, 0)

	breakfast := Categories[0]
	if slots := Slots(breakfast, today, now, 30*time.Minute); len(slots) != 0 {
		t.Fatalf("breakfast is over at 14:00, got %v", slots)
	}

	lunch := Categories[1]
	slots := Slots(lunch, today, now, 30*time.Minute)
	if len(slots) == 0 || slots[0].Hour() != 15 || slots[0].Minute() != 0 {
		t.Fatalf("lunch should resume at 15:00, got %v", slots)
	}
}

func TestSlotsByCategory(t *testing.T) {
	now := day(2024, time.March, 10, 6, 0)
	today := day(2024, time.March, 10, 0, 0)

	byCategory := SlotsByCategory(today, now, 30*time.Minute)
	if len(byCategory["Breakfast"]) != 8 {
		t.Fatalf("breakfast 8-12 has 8 slots, got %d", len(byCategory["Breakfast"]))
	}
	if byCategory["Breakfast"][0] != "08:00:00" {
		t.Fatalf("slots are formatted HH:MM:SS, got %s", byCategory["Breakfast"][0])
	}
	if len(byCategory["Lunch"]) != 10 || len(byCategory["Dinner"]) != 10 {
		t.Fatalf("unexpected slot counts: %v", byCategory)
	}
}

func TestCategoryForSlot(t *testing.T) {
	if c, ok := CategoryForSlot(8 * time.Hour); !ok || c.Label != "Breakfast" {
		t.Fatalf("08:00 should be Breakfast, got %v %v", c, ok)
	}
	if c, ok := CategoryForSlot(21*time.Hour + 30*time.Minute); !ok || c.Label != "Dinner" {
		t.Fatalf("21:30 should be Dinner, got %v %v", c, ok)
	}
	if _, ok := CategoryForSlot(22 * time.Hour); ok {
		t.Fatal("22:00 is past closing")
	}
	if _, ok := CategoryForSlot(7 * time.Hour); ok {
		t.Fatal("07:00 is before opening")
	}
}
