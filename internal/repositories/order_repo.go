package repositories

import (
	"pasar/internal/models"
)

// OrderRepository defines the interface for order data access. It owns
// the two atomic units of work of the engine: order creation with stock
// decrement, and cancellation with stock restoration. Orders are never
// physically deleted.
type OrderRepository interface {
	// CreateWithItems persists the order, its items, and the stock
	// decrement for every line item as one all-or-nothing unit. A
	// decrement that would drive stock negative aborts the whole
	// operation with an insufficient-stock error.
	CreateWithItems(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetStatusView(id string) (*models.OrderStatusView, error)
	// List returns orders newest-first with an optional status filter.
	// An empty userID lists across all users (administrative use).
	List(userID string, status *models.OrderStatus, page, pageSize int) ([]models.Order, int64, error)
	// UpdateStatus sets the status and applies the status-triggered
	// timestamps: entering SHIPPED or DELIVERED for the first time sets
	// the matching timestamp, exactly once. Non-empty trackingNumber
	// and notes overwrite the stored values.
	UpdateStatus(id string, status models.OrderStatus, trackingNumber, notes string) (*models.Order, error)
	// Cancel marks the order CANCELLED and restores stock for every
	// item, atomically. Orders outside PENDING/CONFIRMED fail with a
	// conflict error and restore nothing.
	Cancel(id string) (*models.Order, error)
}
