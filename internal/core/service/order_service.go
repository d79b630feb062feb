package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lberthe/mocktail-machine/internal/core/domain"
	"github.com/lberthe/mocktail-machine/internal/port"
)

// OrderService drives the order lifecycle. CreateOrder persists the order and
// enqueues it; fulfillment workers drain the queue, deduct ingredients and
// advance the status to processing.
type OrderService struct {
	repo       port.OrderRepository
	inventory  *InventoryService
	logger     *zap.Logger
	orderQueue chan domain.Order
}

func NewOrderService(repo port.OrderRepository, inventory *InventoryService, logger *zap.Logger, queueSize int) *OrderService {
	return &OrderService{
		repo:       repo,
		inventory:  inventory,
		logger:     logger,
		orderQueue: make(chan domain.Order, queueSize),
	}
}

// CreateOrder validates the request, persists the order in status received
// and hands it to the fulfillment queue. The returned id is retrievable
// immediately via GetOrder.
func (s *OrderService) CreateOrder(ctx context.Context, recipeName string, ingredients map[string]int, totalVolume int) (string, error) {
	if recipeName == "" {
		return "", missingField("mocktailName")
	}
	if len(ingredients) == 0 {
		return "", missingField("ingredients")
	}
	if totalVolume <= 0 {
		return "", missingField("totalVolume")
	}

	now := time.Now()
	order := domain.Order{
		ID:          uuid.New().String(),
		RecipeName:  recipeName,
		Ingredients: ingredients,
		TotalVolume: totalVolume,
		Status:      domain.OrderStatusReceived,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.InsertOrder(ctx, order); err != nil {
		return "", fmt.Errorf("%w: insert order: %v", ErrStorageUnavailable, err)
	}
	s.logger.Info("order received",
		zap.String("order_id", order.ID),
		zap.String("recipe", order.RecipeName),
		zap.Int("total_volume", order.TotalVolume))

	s.orderQueue <- order
	return order.ID, nil
}

// Fulfill deducts the order's ingredients and advances it to processing.
// Deduction is best effort: levels clamp at zero and unknown names are
// skipped, but a storage failure leaves the order in received.
func (s *OrderService) Fulfill(ctx context.Context, order domain.Order) error {
	result, err := s.inventory.Deduct(ctx, order.Ingredients)
	if err != nil {
		return fmt.Errorf("deduct for order %s: %w", order.ID, err)
	}
	if len(result.Skipped) > 0 {
		s.logger.Warn("order applied partially",
			zap.String("order_id", order.ID),
			zap.Strings("skipped", result.Skipped))
	}

	if err := s.UpdateStatus(ctx, order.ID, domain.OrderStatusProcessing); err != nil {
		return fmt.Errorf("advance order %s: %w", order.ID, err)
	}
	s.logger.Info("order processing", zap.String("order_id", order.ID))
	return nil
}

// GetOrder retrieves an order by id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%w: get order: %v", ErrStorageUnavailable, err)
	}
	if order == nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return *order, nil
}

// ListOrders returns all orders, most recent first.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list orders: %v", ErrStorageUnavailable, err)
	}
	return orders, nil
}

// UpdateStatus moves an order along the lifecycle. Transitions that would
// regress progress or leave a terminal state are rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if !domain.ValidStatus(status) {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: get order: %v", ErrStorageUnavailable, err)
	}
	if order == nil {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if !domain.CanTransition(order.Status, status) {
		return &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("cannot move from %s to %s", order.Status, status),
		}
	}

	if err := s.repo.UpdateOrderStatus(ctx, id, status); err != nil {
		return fmt.Errorf("%w: update order status: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// GetOrderQueue exposes the fulfillment queue to the worker pool.
func (s *OrderService) GetOrderQueue() <-chan domain.Order {
	return s.orderQueue
}

func (s *OrderService) Close() {
	close(s.orderQueue)
}
