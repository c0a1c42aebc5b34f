package repositories

import (
	"sort"
	"sync"
	"time"

	"pasar/internal/apperrors"
	"pasar/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// It shares a MockProductRepository so the creation and cancellation
// units of work can mutate stock with the same all-or-nothing semantics
// as the GORM implementation.
type MockOrderRepository struct {
	orders   map[string]models.Order
	products *MockProductRepository
	mu       sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository
// backed by the given product store.
func NewMockOrderRepository(products *MockProductRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders:   make(map[string]models.Order),
		products: products,
	}
}

// CreateWithItems stores the order and decrements stock for every line
// item. The product lock is held across all decrements; on any failure
// the already-applied deltas are undone, leaving no partial state.
func (r *MockOrderRepository) CreateWithItems(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}

	r.products.mu.Lock()
	applied := 0
	var stockErr error
	for _, item := range order.Items {
		if err := r.products.adjustStockLocked(item.ProductID, item.VariantID, -item.Quantity); err != nil {
			stockErr = err
			break
		}
		applied++
	}
	if stockErr != nil {
		for i := 0; i < applied; i++ {
			item := order.Items[i]
			_ = r.products.adjustStockLocked(item.ProductID, item.VariantID, item.Quantity)
		}
		r.products.mu.Unlock()
		return stockErr
	}
	r.products.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.OrderNumber == order.OrderNumber {
			// Undo the decrements; the order was never visible.
			r.products.mu.Lock()
			for _, item := range order.Items {
				_ = r.products.adjustStockLocked(item.ProductID, item.VariantID, item.Quantity)
			}
			r.products.mu.Unlock()
			return apperrors.New(apperrors.KindConflict, "order number %s already exists", order.OrderNumber)
		}
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
	}
	return &order, nil
}

// GetStatusView returns the status projection of an order.
func (r *MockOrderRepository) GetStatusView(id string) (*models.OrderStatusView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
	}
	return &models.OrderStatusView{
		ID:             order.ID,
		OrderNumber:    order.OrderNumber,
		UserID:         order.UserID,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		TrackingNumber: order.TrackingNumber,
		UpdatedAt:      order.UpdatedAt,
	}, nil
}

// List returns a page of orders newest-first.
func (r *MockOrderRepository) List(userID string, status *models.OrderStatus, page, pageSize int) ([]models.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if userID != "" && order.UserID != userID {
			continue
		}
		if status != nil && order.Status != *status {
			continue
		}
		matched = append(matched, order)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []models.Order{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// UpdateStatus sets the order status with the once-only timestamp rules.
func (r *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus, trackingNumber, notes string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
	}

	now := time.Now()
	if status == models.StatusShipped && order.Status != models.StatusShipped && order.ShippedAt == nil {
		order.ShippedAt = &now
	}
	if status == models.StatusDelivered && order.Status != models.StatusDelivered && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}
	order.Status = status
	if trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}
	if notes != "" {
		order.Notes = notes
	}
	order.UpdatedAt = now
	r.orders[id] = order
	return &order, nil
}

// Cancel marks the order CANCELLED and restores its stock.
func (r *MockOrderRepository) Cancel(id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
	}
	if !order.Status.Cancellable() {
		return nil, apperrors.New(apperrors.KindConflict, "order %s cannot be cancelled at this stage", order.OrderNumber)
	}

	r.products.mu.Lock()
	for _, item := range order.Items {
		_ = r.products.adjustStockLocked(item.ProductID, item.VariantID, item.Quantity)
	}
	r.products.mu.Unlock()

	order.Status = models.StatusCancelled
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return &order, nil
}
