package repositories

import (
	"pasar/internal/models"
)

// ProductRepository defines the interface for catalog data access. It is
// the order engine's gateway to products, variants and stock levels.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetVariantByID(id string) (*models.ProductVariant, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	CreateVariant(variant *models.ProductVariant) error
	// AdjustStock applies a stock delta to the variant if variantID is
	// set, otherwise to the product. A negative delta is conditional on
	// the resulting stock staying >= 0 and fails with an
	// insufficient-stock error otherwise.
	AdjustStock(productID string, variantID *string, delta int) error
}
