package repository

import (
	"context"
	"errors"

	"manifest-service/internal/domain/entity"
)

// ErrOrderNotFound is returned when no order exists for a booking
// reference.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the interface for order storage operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByServiceID(ctx context.Context, serviceID string) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	Cancel(ctx context.Context, serviceID string) error
	ListByStatus(ctx context.Context, status string, limit int) ([]*entity.Order, error)
}
