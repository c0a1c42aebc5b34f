package handlers

import (
	"pasar/internal/middleware"
	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AddressHandler handles HTTP requests for the address book.
type AddressHandler struct {
	service  *services.AddressService
	validate *validator.Validate
}

// NewAddressHandler creates a new AddressHandler.
func NewAddressHandler(service *services.AddressService) *AddressHandler {
	return &AddressHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the address book routes with the Fiber app.
func (h *AddressHandler) RegisterRoutes(router fiber.Router) {
	addressRoutes := router.Group("/addresses")
	addressRoutes.Post("/", h.HandleCreateAddress)
	addressRoutes.Get("/", h.HandleListAddresses)
	addressRoutes.Get("/:id", h.HandleGetAddress)
	addressRoutes.Delete("/:id", h.HandleDeleteAddress)
}

// HandleCreateAddress stores a new address for the authenticated user.
func (h *AddressHandler) HandleCreateAddress(c *fiber.Ctx) error {
	var address models.Address
	if err := c.BodyParser(&address); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	address.UserID = middleware.UserID(c)
	if err := h.validate.Struct(address); err != nil {
		return respondValidationErrors(c, err)
	}

	if err := h.service.CreateAddress(&address); err != nil {
		return respondError(c, err, "Could not create address")
	}
	return c.Status(fiber.StatusCreated).JSON(address)
}

// HandleListAddresses lists the authenticated user's addresses.
func (h *AddressHandler) HandleListAddresses(c *fiber.Ctx) error {
	addresses, err := h.service.ListAddresses(middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve addresses")
	}
	return c.JSON(addresses)
}

// HandleGetAddress retrieves one of the authenticated user's addresses.
func (h *AddressHandler) HandleGetAddress(c *fiber.Ctx) error {
	address, err := h.service.GetAddress(c.Params("id"), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve address")
	}
	return c.JSON(address)
}

// HandleDeleteAddress removes one of the authenticated user's addresses.
func (h *AddressHandler) HandleDeleteAddress(c *fiber.Ctx) error {
	if err := h.service.DeleteAddress(c.Params("id"), middleware.UserID(c)); err != nil {
		return respondError(c, err, "Could not delete address")
	}
	return c.JSON(fiber.Map{
		"message": "Address deleted successfully",
	})
}
