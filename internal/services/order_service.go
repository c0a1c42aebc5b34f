package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"pasar/internal/apperrors"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/pkg/cache"
)

const defaultCurrency = "USD"

// orderNumberAttempts bounds the retry loop when a generated order
// number collides with an existing one.
const orderNumberAttempts = 3

const statusCacheTTL = 5 * time.Second

// Notifier dispatches order notifications. Implementations are
// best-effort and asynchronous; the order service logs failures and
// never lets them surface to the caller.
type Notifier interface {
	PublishOrderCreated(orderID, orderNumber, userID string, totalAmount int64) error
	PublishStatusChanged(orderID, orderNumber string, status string) error
}

// CreateOrderItemInput is one requested line of a new order.
type CreateOrderItemInput struct {
	ProductID string
	VariantID *string
	Quantity  int
}

// CreateOrderInput is everything needed to create an order. UserID is
// the authenticated acting user, supplied by the transport layer.
type CreateOrderInput struct {
	UserID            string
	Items             []CreateOrderItemInput
	ShippingAddressID string
	BillingAddressID  string
	PaymentMethod     string
	Notes             string
}

// pricedEntity is the uniform price/stock/active view over a product or
// one of its variants; a variant inherits its parent's active flag.
type pricedEntity struct {
	price  int64
	stock  int
	active bool
}

// OrderService handles business logic related to orders: creation,
// the status state machine, cancellation and user-scoped queries.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	addressRepo repositories.AddressRepository
	pricing     *PricingEngine
	notifier    Notifier
	statusCache cache.Cache
}

// NewOrderService creates a new OrderService. notifier and statusCache
// may be nil; notifications and caching are then skipped.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	addressRepo repositories.AddressRepository,
	pricing *PricingEngine,
	notifier Notifier,
	statusCache cache.Cache,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		pricing:     pricing,
		notifier:    notifier,
		statusCache: statusCache,
	}
}

// CreateOrder validates the request, snapshots addresses and prices,
// computes totals and persists the order together with the stock
// decrement for every line as one atomic unit. The confirmation
// notification goes out only after the transaction committed.
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if len(input.Items) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, "order must contain at least one item").
			WithFields(map[string]string{"items": "at least one item is required"})
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.New(apperrors.KindValidation, "item quantity must be positive").
				WithFields(map[string]string{fmt.Sprintf("items[%d].quantity", i): "must be greater than 0"})
		}
	}

	shippingAddr, err := s.addressRepo.GetByIDForUser(input.ShippingAddressID, input.UserID)
	if err != nil {
		return nil, err
	}
	billingAddr, err := s.addressRepo.GetByIDForUser(input.BillingAddressID, input.UserID)
	if err != nil {
		return nil, err
	}

	var subtotal int64
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, item := range input.Items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, err
		}

		entity, err := s.resolvePricedEntity(product, item.VariantID)
		if err != nil {
			return nil, err
		}
		if !entity.active {
			return nil, apperrors.New(apperrors.KindInactive, "product %s is not available", product.Name)
		}
		if entity.stock < item.Quantity {
			return nil, apperrors.New(apperrors.KindInsufficientStock,
				"insufficient stock for product %s (requested: %d, available: %d)",
				product.Name, item.Quantity, entity.stock)
		}

		lineTotal := entity.price * int64(item.Quantity)
		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   entity.price,
			LineTotal:   lineTotal,
		})
		subtotal += lineTotal
	}

	totals := s.pricing.Quote(subtotal)

	order := &models.Order{
		OrderNumber:     generateOrderNumber(),
		UserID:          input.UserID,
		Status:          models.StatusPending,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   models.PaymentUnpaid,
		Subtotal:        totals.Subtotal,
		TaxAmount:       totals.Tax,
		ShippingAmount:  totals.Shipping,
		DiscountAmount:  totals.Discount,
		TotalAmount:     totals.Total,
		Currency:        defaultCurrency,
		ShippingAddress: shippingAddr.Snapshot(),
		BillingAddress:  billingAddr.Snapshot(),
		Notes:           input.Notes,
		Items:           items,
	}

	// The order number is timestamp-derived plus a random suffix; a
	// collision surfaces as a conflict and we retry with a fresh number
	// rather than ever overwriting an existing order.
	for attempt := 1; ; attempt++ {
		err = s.orderRepo.CreateWithItems(order)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrConflict) && attempt < orderNumberAttempts {
			order.OrderNumber = generateOrderNumber()
			continue
		}
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.PublishOrderCreated(order.ID, order.OrderNumber, order.UserID, order.TotalAmount); err != nil {
			log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
		}
	} else {
		log.Println("Notifier is not initialized. Skipping order created event.")
	}

	return order, nil
}

// resolvePricedEntity picks price, stock and active flag from the
// variant when one is referenced, otherwise from the product itself.
func (s *OrderService) resolvePricedEntity(product *models.Product, variantID *string) (pricedEntity, error) {
	if variantID == nil || *variantID == "" {
		return pricedEntity{price: product.Price, stock: product.Stock, active: product.Active}, nil
	}

	variant, err := s.productRepo.GetVariantByID(*variantID)
	if err != nil {
		return pricedEntity{}, err
	}
	if variant.ProductID != product.ID {
		return pricedEntity{}, apperrors.New(apperrors.KindNotFound,
			"variant %s does not belong to product %s", variant.ID, product.ID)
	}
	return pricedEntity{price: variant.Price, stock: variant.Stock, active: product.Active}, nil
}

// GetOrder retrieves an order with its items and payment attempts,
// scoped to the requesting user. An empty userID skips the ownership
// check (administrative use).
func (s *OrderService) GetOrder(id, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if userID != "" && order.UserID != userID {
		// Not owned reads the same as absent; we never leak existence.
		return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
	}
	return order, nil
}

// ListOrders returns a page of the user's orders, newest first, with an
// optional status filter.
func (s *OrderService) ListOrders(userID, status string, page, pageSize int) ([]models.Order, int64, error) {
	var statusFilter *models.OrderStatus
	if status != "" {
		st := models.OrderStatus(status)
		if !st.Valid() {
			return nil, 0, apperrors.New(apperrors.KindValidation, "invalid order status: %s", status)
		}
		statusFilter = &st
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	return s.orderRepo.List(userID, statusFilter, page, pageSize)
}

// GetOrderStatus returns the lightweight status projection for polling
// clients, cached briefly per owner when a cache is configured.
func (s *OrderService) GetOrderStatus(id, userID string) (*models.OrderStatusView, error) {
	ctx := context.Background()

	if s.statusCache != nil {
		key := s.statusCache.GenerateKey("order_status", id+":"+userID)
		if raw, err := s.statusCache.Get(ctx, key); err != nil {
			log.Printf("Warning: status cache read failed for order %s: %v", id, err)
		} else if raw != "" {
			var view models.OrderStatusView
			if err := json.Unmarshal([]byte(raw), &view); err == nil {
				return &view, nil
			}
		}
	}

	view, err := s.orderRepo.GetStatusView(id)
	if err != nil {
		return nil, err
	}
	if userID != "" && view.UserID != userID {
		return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
	}

	if s.statusCache != nil {
		key := s.statusCache.GenerateKey("order_status", id+":"+userID)
		if raw, err := json.Marshal(view); err == nil {
			if err := s.statusCache.Set(ctx, key, string(raw), statusCacheTTL); err != nil {
				log.Printf("Warning: status cache write failed for order %s: %v", id, err)
			}
		}
	}
	return view, nil
}

// UpdateOrderStatus sets a new status on an order. Transitions are
// deliberately permissive: this is an administrator-only operation and
// no forward-only transition table is enforced. What the ledger does
// guarantee is the once-only shipped/delivered timestamps and the
// cancellation gate in CancelOrder.
func (s *OrderService) UpdateOrderStatus(id, status, trackingNumber, notes string) (*models.Order, error) {
	st := models.OrderStatus(status)
	if !st.Valid() {
		return nil, apperrors.New(apperrors.KindValidation, "invalid order status: %s", status)
	}

	order, err := s.orderRepo.UpdateStatus(id, st, trackingNumber, notes)
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(order)
	return order, nil
}

// CancelOrder cancels an order on behalf of its owner. Only PENDING and
// CONFIRMED orders can be cancelled; the status change and the per-item
// stock restoration commit as one unit.
func (s *OrderService) CancelOrder(id, userID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperrors.New(apperrors.KindNotFound, "order %s not found", id)
	}

	cancelled, err := s.orderRepo.Cancel(id)
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(cancelled)
	return cancelled, nil
}

// afterStatusChange fires the best-effort side effects of a committed
// status change: the status notification and cache invalidation.
func (s *OrderService) afterStatusChange(order *models.Order) {
	if s.notifier != nil {
		if err := s.notifier.PublishStatusChanged(order.ID, order.OrderNumber, string(order.Status)); err != nil {
			log.Printf("Warning: Failed to publish status change event for order %s: %v", order.ID, err)
		}
	}
	if s.statusCache != nil {
		key := s.statusCache.GenerateKey("order_status", order.ID+":"+order.UserID)
		if err := s.statusCache.Del(context.Background(), key); err != nil {
			log.Printf("Warning: status cache invalidation failed for order %s: %v", order.ID, err)
		}
	}
}

// generateOrderNumber builds a human-facing order number: a UTC
// timestamp prefix for operational sorting plus a random suffix.
// Uniqueness is enforced by the database, not here.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%06X", time.Now().UTC().Format("20060102150405"), rand.Intn(1<<24))
}
