package orders

import "time"

const (
	TypeDineIn   = "DINE_IN"
	TypeTakeaway = "TAKEAWAY"

	StatusPending = "PENDING"
	StatusPaid    = "PAID"

	DeliveryPending   = "PENDING"
	DeliveryDelivered = "DELIVERED"
)

func ValidType(orderType string) bool {
	return orderType == TypeDineIn || orderType == TypeTakeaway
}

func ValidDeliveryStatus(status string) bool {
	return status == DeliveryPending || status == DeliveryDelivered
}

// ToggleDelivery flips a line between the kitchen queue and the table.
func ToggleDelivery(status string) string {
	if status == DeliveryPending {
		return DeliveryDelivered
	}
	return DeliveryPending
}

// Item is one line of an order with the food item's name and unit price
// snapshotted at order time, so later menu edits never rewrite old bills.
type Item struct {
	OrderItemID    int64     `json:"orderItemId"`
	OrderID        int64     `json:"orderId"`
	FoodItemID     *int64    `json:"foodItemId"`
	Name           string    `json:"name"`
	Price          float64   `json:"price"`
	Quantity       int       `json:"quantity"`
	TotalPrice     float64   `json:"totalPrice"`
	DeliveryStatus string    `json:"deliveryStatus"`
	CreatedAt      time.Time `json:"createdAt"`
}

func Subtotal(items []Item) float64 {
	var sum float64
	for _, item := range items {
		sum += item.TotalPrice
	}
	return sum
}

func AllDelivered(items []Item) bool {
	for _, item := range items {
		if item.DeliveryStatus != DeliveryDelivered {
			return false
		}
	}
	return true
}

// DisplayRow is a read-time aggregation row; nothing here is persisted.
type DisplayRow struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"totalPrice"`
}

// MergeDuplicatesForDisplay combines items sharing a food-item name into one
// row, summing quantity and total price. Rows keep first-appearance order.
func MergeDuplicatesForDisplay(items []Item) []DisplayRow {
	index := make(map[string]int, len(items))
	rows := make([]DisplayRow, 0, len(items))
	for _, item := range items {
		if at, ok := index[item.Name]; ok {
			rows[at].Quantity += item.Quantity
			rows[at].TotalPrice += item.TotalPrice
			continue
		}
		index[item.Name] = len(rows)
		rows = append(rows, DisplayRow{
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
			TotalPrice: item.TotalPrice,
		})
	}
	return rows
}
