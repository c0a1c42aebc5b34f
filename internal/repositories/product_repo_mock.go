package repositories

import (
	"sync"

	"pasar/internal/apperrors"
	"pasar/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of
// ProductRepository. Stock adjustments take the same conditional form as
// the GORM implementation: a decrement only lands when the resulting
// stock stays >= 0, checked and applied under one lock.
type MockProductRepository struct {
	products map[string]models.Product
	variants map[string]models.ProductVariant
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		variants: make(map[string]models.ProductVariant),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "product %s not found", id)
	}
	return &product, nil
}

// GetVariantByID returns a product variant by its ID.
func (r *MockProductRepository) GetVariantByID(id string) (*models.ProductVariant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	variant, ok := r.variants[id]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, "product variant %s not found", id)
	}
	return &variant, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return apperrors.New(apperrors.KindNotFound, "product %s not found for update", product.ID)
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperrors.New(apperrors.KindNotFound, "product %s not found for deletion", id)
	}
	delete(r.products, id)
	return nil
}

// CreateVariant adds a new variant to an existing product.
func (r *MockProductRepository) CreateVariant(variant *models.ProductVariant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[variant.ProductID]; !ok {
		return apperrors.New(apperrors.KindNotFound, "product %s not found", variant.ProductID)
	}
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	r.variants[variant.ID] = *variant
	return nil
}

// AdjustStock applies a conditional stock delta.
func (r *MockProductRepository) AdjustStock(productID string, variantID *string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.adjustStockLocked(productID, variantID, delta)
}

// adjustStockLocked applies a stock delta; callers must hold mu.
func (r *MockProductRepository) adjustStockLocked(productID string, variantID *string, delta int) error {
	if variantID != nil && *variantID != "" {
		variant, ok := r.variants[*variantID]
		if !ok {
			return apperrors.New(apperrors.KindNotFound, "product variant %s not found", *variantID)
		}
		if variant.Stock+delta < 0 {
			return apperrors.New(apperrors.KindInsufficientStock, "insufficient stock for product %s", variant.Name)
		}
		variant.Stock += delta
		r.variants[*variantID] = variant
		return nil
	}

	product, ok := r.products[productID]
	if !ok {
		return apperrors.New(apperrors.KindNotFound, "product %s not found", productID)
	}
	if product.Stock+delta < 0 {
		return apperrors.New(apperrors.KindInsufficientStock, "insufficient stock for product %s", product.Name)
	}
	product.Stock += delta
	r.products[productID] = product
	return nil
}
