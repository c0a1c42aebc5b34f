package models

import "time"

// OrderStatus is the lifecycle state of an order.
// PENDING is the only initial status; DELIVERED, CANCELLED and REFUNDED
// are terminal.
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusConfirmed  OrderStatus = "CONFIRMED"
	StatusProcessing OrderStatus = "PROCESSING"
	StatusShipped    OrderStatus = "SHIPPED"
	StatusDelivered  OrderStatus = "DELIVERED"
	StatusCancelled  OrderStatus = "CANCELLED"
	StatusRefunded   OrderStatus = "REFUNDED"
)

// Valid reports whether s is a defined order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Cancellable reports whether an order in this status may still be
// cancelled by its owner.
func (s OrderStatus) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

// PaymentStatus is recorded on the order but never computed here;
// payment capture lives outside this service.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Order represents a customer order. All amounts are in minor currency
// units (cents) and TotalAmount is always recomputed as
// Subtotal + TaxAmount + ShippingAmount - DiscountAmount.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;type:varchar(40)"`
	UserID          string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);index"`
	PaymentMethod   string          `json:"payment_method" gorm:"type:varchar(40)"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(20)"`
	Subtotal        int64           `json:"subtotal"`
	TaxAmount       int64           `json:"tax_amount"`
	ShippingAmount  int64           `json:"shipping_amount"`
	DiscountAmount  int64           `json:"discount_amount"`
	TotalAmount     int64           `json:"total_amount"`
	Currency        string          `json:"currency" gorm:"type:varchar(3);default:USD"`
	ShippingAddress AddressSnapshot `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  AddressSnapshot `json:"billing_address" gorm:"embedded;embeddedPrefix:billing_"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	ShippedAt       *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Payments        []Payment       `json:"payments,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem is a single line within an order. UnitPrice is the price at
// the time of order; LineTotal == UnitPrice * Quantity.
type OrderItem struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string    `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID   string    `json:"product_id" gorm:"type:varchar(36)"`
	VariantID   *string   `json:"variant_id,omitempty" gorm:"type:varchar(36)"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
	LineTotal   int64     `json:"line_total"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Payment records a payment attempt against an order. Amounts and
// statuses are recorded verbatim from the payment collaborator.
type Payment struct {
	ID        string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string        `json:"order_id" gorm:"index;type:varchar(36)"`
	Amount    int64         `json:"amount"`
	Method    string        `json:"method" gorm:"type:varchar(40)"`
	Status    PaymentStatus `json:"status" gorm:"type:varchar(20)"`
	Reference string        `json:"reference,omitempty" gorm:"type:varchar(100)"`
	CreatedAt time.Time     `json:"created_at"`
}

// OrderStatusView is the lightweight projection served to polling
// clients; it avoids shipping items and address snapshots on every poll.
type OrderStatusView struct {
	ID             string        `json:"id"`
	OrderNumber    string        `json:"order_number"`
	UserID         string        `json:"-"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	TrackingNumber string        `json:"tracking_number,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
