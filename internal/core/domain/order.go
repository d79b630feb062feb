package domain

import "time"

type OrderStatus string

const (
	OrderStatusReceived   OrderStatus = "received"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidStatus reports whether s is one of the four known order statuses.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusReceived, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// transitions is the forward-only state machine: an order never regresses and
// never leaves completed or cancelled.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusReceived:   {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether an order in status from may move to status to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is a single request to prepare a recipe. Everything but Status is
// immutable after creation.
type Order struct {
	ID          string         `json:"id"`
	RecipeName  string         `json:"mocktailName"`
	Ingredients map[string]int `json:"ingredients"`
	TotalVolume int            `json:"totalVolume"`
	Status      OrderStatus    `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
