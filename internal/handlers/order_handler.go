package handlers

import (
	"pasar/internal/middleware"
	"pasar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the order routes with the Fiber app. The
// status update route is gated behind the supplied adminOnly handler;
// everything else is scoped to the authenticated user.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrder)
	orderRoutes.Get("/:id/status", h.HandleGetOrderStatus)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Patch("/:id/status", adminOnly, h.HandleUpdateOrderStatus)
}

type createOrderItemRequest struct {
	ProductID string  `json:"product_id" validate:"required"`
	VariantID *string `json:"variant_id" validate:"omitempty"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
}

type createOrderRequest struct {
	Items             []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	ShippingAddressID string                   `json:"shipping_address_id" validate:"required"`
	BillingAddressID  string                   `json:"billing_address_id" validate:"required"`
	PaymentMethod     string                   `json:"payment_method" validate:"required,max=40"`
	Notes             string                   `json:"notes" validate:"omitempty,max=500"`
}

type updateOrderStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	TrackingNumber string `json:"tracking_number" validate:"omitempty,max=100"`
	Notes          string `json:"notes" validate:"omitempty,max=500"`
}

// HandleCreateOrder creates a new order for the authenticated user.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	input := services.CreateOrderInput{
		UserID:            middleware.UserID(c),
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		PaymentMethod:     req.PaymentMethod,
		Notes:             req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.CreateOrderItemInput{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.service.CreateOrder(input)
	if err != nil {
		return respondError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleListOrders lists the authenticated user's orders, newest first,
// with an optional status filter and pager.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	orders, total, err := h.service.ListOrders(middleware.UserID(c), c.Query("status"), page, pageSize)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(fiber.Map{
		"orders":    orders,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// HandleGetOrder retrieves one of the authenticated user's orders with
// its items and payment attempts.
func (h *OrderHandler) HandleGetOrder(c *fiber.Ctx) error {
	order, err := h.service.GetOrder(c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleGetOrderStatus serves the lightweight status projection for
// polling clients.
func (h *OrderHandler) HandleGetOrderStatus(c *fiber.Ctx) error {
	view, err := h.service.GetOrderStatus(c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve order status")
	}
	return c.JSON(view)
}

// HandleCancelOrder cancels one of the authenticated user's orders.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	order, err := h.service.CancelOrder(c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not cancel order")
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus sets the status of any order. Administrators
// only; no ownership scoping.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req updateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.Params("id"), req.Status, req.TrackingNumber, req.Notes)
	if err != nil {
		return respondError(c, err, "Could not update order status")
	}
	return c.JSON(order)
}
