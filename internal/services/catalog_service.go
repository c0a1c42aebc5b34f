package services

import (
	"pasar/internal/models"
	"pasar/internal/repositories"
)

// CatalogService handles business logic related to products and their
// variants. It is a thin layer; the order engine talks to the catalog
// through the repository directly.
type CatalogService struct {
	repo repositories.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// GetAllProducts retrieves all products with their variants.
func (s *CatalogService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *CatalogService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product.
func (s *CatalogService) CreateProduct(product *models.Product) error {
	return s.repo.Create(product)
}

// UpdateProduct updates an existing product.
func (s *CatalogService) UpdateProduct(product *models.Product) error {
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *CatalogService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// CreateVariant adds a variant to an existing product.
func (s *CatalogService) CreateVariant(variant *models.ProductVariant) error {
	return s.repo.CreateVariant(variant)
}

// SetProductActive flips a product's active flag.
func (s *CatalogService) SetProductActive(id string, active bool) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	product.Active = active
	return s.repo.Update(product)
}

// AdjustStock applies a manual stock correction.
func (s *CatalogService) AdjustStock(productID string, variantID *string, delta int) error {
	return s.repo.AdjustStock(productID, variantID, delta)
}
