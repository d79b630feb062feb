package port

import (
	"context"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
)

type OrderRepository interface {
	// InsertOrder persists a new order.
	InsertOrder(ctx context.Context, order domain.Order) error

	// GetOrder retrieves an order by id, nil if absent.
	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// ListOrders returns all orders, most recent first.
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// UpdateOrderStatus sets the status of an existing order.
	UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) error
}
