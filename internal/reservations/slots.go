package reservations

import "time"

const SlotMinutes = 30

// MealCategory is a service window; slots run [StartHour, EndHour) on
// half-hour boundaries.
type MealCategory struct {
	Label     string
	StartHour int
	EndHour   int
}

var Categories = []MealCategory{
	{Label: "Breakfast", StartHour: 8, EndHour: 12},
	{Label: "Lunch", StartHour: 12, EndHour: 17},
	{Label: "Dinner", StartHour: 17, EndHour: 22},
}

// CategoryForSlot resolves the category containing the time-of-day offset.
func CategoryForSlot(slot time.Duration) (MealCategory, bool) {
	hour := int(slot / time.Hour)
	for _, category := range Categories {
		if hour >= category.StartHour && hour < category.EndHour {
			return category, true
		}
	}
	return MealCategory{}, false
}

// Slots generates the bookable times of one category on the given date. On
// the booking day itself, slots that start within the grace window of now are
// dropped so the kitchen is never booked at near-instant notice.
func Slots(category MealCategory, date time.Time, now time.Time, grace time.Duration) []time.Time {
	cutoff := now.Add(grace)
	sameDay := date.Year() == now.Year() && date.YearDay() == now.YearDay()

	slots := make([]time.Time, 0, (category.EndHour-category.StartHour)*60/SlotMinutes)
	at := time.Date(date.Year(), date.Month(), date.Day(), category.StartHour, 0, 0, 0, date.Location())
	end := time.Date(date.Year(), date.Month(), date.Day(), category.EndHour, 0, 0, 0, date.Location())
	for at.Before(end) {
		if !sameDay || at.After(cutoff) {
			slots = append(slots, at)
		}
		at = at.Add(SlotMinutes * time.Minute)
	}
	return slots
}

// SlotsByCategory returns every category's open slots for a date, formatted
// as HH:MM:SS the way reservation times are stored.
func SlotsByCategory(date time.Time, now time.Time, grace time.Duration) map[string][]string {
	out := make(map[string][]string, len(Categories))
	for _, category := range Categories {
		formatted := make([]string, 0)
		for _, slot := range Slots(category, date, now, grace) {
			formatted = append(formatted, slot.Format("15:04:05"))
		}
		out[category.Label] = formatted
	}
	return out
}
