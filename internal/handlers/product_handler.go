package handlers

import (
	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.CatalogService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app.
// Reads are open to any authenticated user; writes are admin only.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", adminOnly, h.HandleCreateProduct)
	productRoutes.Put("/:id", adminOnly, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", adminOnly, h.HandleDeleteProduct)
	productRoutes.Post("/:id/variants", adminOnly, h.HandleCreateVariant)
	productRoutes.Patch("/:id/active", adminOnly, h.HandleSetProductActive)
}

// HandleGetProducts retrieves all products with their variants.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(product); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.CreateProduct(&product); err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = c.Params("id")
	if err := h.validate.Struct(product); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.UpdateProduct(&product); err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

type setProductActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// HandleSetProductActive activates or deactivates a product. Inactive
// products stay browsable but cannot be ordered.
func (h *ProductHandler) HandleSetProductActive(c *fiber.Ctx) error {
	var req setProductActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.SetProductActive(c.Params("id"), *req.Active); err != nil {
		return respondError(c, err, "Could not update product availability")
	}
	return c.JSON(fiber.Map{
		"message": "Product availability updated",
	})
}

// HandleCreateVariant adds a variant to an existing product.
func (h *ProductHandler) HandleCreateVariant(c *fiber.Ctx) error {
	var variant models.ProductVariant
	if err := c.BodyParser(&variant); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	variant.ProductID = c.Params("id")
	if err := h.validate.Struct(variant); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.CreateVariant(&variant); err != nil {
		return respondError(c, err, "Could not create product variant")
	}
	return c.Status(fiber.StatusCreated).JSON(variant)
}
