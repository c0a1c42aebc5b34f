package repositories

import (
	"errors"
	"time"

	"pasar/internal/apperrors"
	"pasar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// CreateWithItems persists the order, its items, and the per-line stock
// decrements inside a single transaction. Any failed decrement rolls the
// whole unit back: no order row, no item rows, no stock change.
func (r *GORMOrderRepository) CreateWithItems(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		for _, item := range order.Items {
			if err := applyStockDelta(tx, item.ProductID, item.VariantID, -item.Quantity, item.ProductName); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		return nil
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Wrap(apperrors.KindConflict, err, "order number %s already exists", order.OrderNumber)
	}
	return apperrors.Wrap(apperrors.KindInternal, err, "failed to create order")
}

// GetByID retrieves an order with its items and payment attempts.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payments.created_at DESC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get order %s", id)
	}
	return &order, nil
}

// GetStatusView retrieves the lightweight status projection, selecting
// only the columns polling clients need.
func (r *GORMOrderRepository) GetStatusView(id string) (*models.OrderStatusView, error) {
	var view models.OrderStatusView
	err := r.db.Model(&models.Order{}).
		Select("id", "order_number", "user_id", "status", "payment_status", "tracking_number", "updated_at").
		Where("id = ?", id).
		Take(&view).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get order status %s", id)
	}
	return &view, nil
}

// List returns a page of orders newest-first. The secondary sort on id
// keeps the ordering stable for orders created in the same instant.
func (r *GORMOrderRepository) List(userID string, status *models.OrderStatus, page, pageSize int) ([]models.Order, int64, error) {
	q := r.db.Model(&models.Order{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, err, "failed to count orders")
	}

	var orders []models.Order
	err := q.Preload("Items").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindInternal, err, "failed to list orders")
	}
	return orders, total, nil
}

// UpdateStatus sets the order status and applies the status-triggered
// timestamps. ShippedAt and DeliveredAt are set only when the order
// enters SHIPPED/DELIVERED for the first time; re-entering never resets
// them. Non-empty trackingNumber and notes overwrite the stored values.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus, trackingNumber, notes string) (*models.Order, error) {
	var updated models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.New(apperrors.KindNotFound, "order %s not found", id)
			}
			return err
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

		if err := tx.Omit(clause.Associations).Save(&order).Error; err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to update status of order %s", id)
	}
	return &updated, nil
}

// Cancel marks the order CANCELLED and restores every line item's stock
// in one transaction. The status change is conditional on the order
// still being PENDING or CONFIRMED, so a concurrent cancel or status
// update cannot double-restore stock.
func (r *GORMOrderRepository) Cancel(id string) (*models.Order, error) {
	var cancelled models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.New(apperrors.KindNotFound, "order %s not found", id)
			}
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", id, []models.OrderStatus{models.StatusPending, models.StatusConfirmed}).
			Update("status", models.StatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.New(apperrors.KindConflict, "order %s cannot be cancelled at this stage", order.OrderNumber)
		}

		for _, item := range order.Items {
			if err := applyStockDelta(tx, item.ProductID, item.VariantID, item.Quantity, item.ProductName); err != nil {
				return err
			}
		}

		order.Status = models.StatusCancelled
		cancelled = order
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to cancel order %s", id)
	}
	return &cancelled, nil
}
