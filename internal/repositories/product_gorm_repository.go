package repositories

import (
	"pasar/internal/apperrors"
	"pasar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products with their variants from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Preload("Variants").Find(&products).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get all products")
	}
	return products, nil
}

// GetByID retrieves a single product with its variants by its ID.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindNotFound, "product %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get product %s", id)
	}
	return &product, nil
}

// GetVariantByID retrieves a single product variant by its ID.
func (r *GORMProductRepository) GetVariantByID(id string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.First(&variant, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindNotFound, "product variant %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get product variant %s", id)
	}
	return &variant, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to create product")
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Omit("Variants").Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, res.Error, "failed to update product")
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound if no rows were
		// affected by an update, so we check RowsAffected.
		return apperrors.New(apperrors.KindNotFound, "product %s not found for update", product.ID)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, res.Error, "failed to delete product")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "product %s not found for deletion", id)
	}
	return nil
}

// CreateVariant creates a new variant for an existing product.
func (r *GORMProductRepository) CreateVariant(variant *models.ProductVariant) error {
	if variant.ID == "" {
		variant.ID = uuid.New().String()
	}
	var count int64
	if err := r.db.Model(&models.Product{}).Where("id = ?", variant.ProductID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to check product %s", variant.ProductID)
	}
	if count == 0 {
		return apperrors.New(apperrors.KindNotFound, "product %s not found", variant.ProductID)
	}
	if err := r.db.Create(variant).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to create product variant")
	}
	return nil
}

// AdjustStock applies a stock delta outside any larger unit of work.
func (r *GORMProductRepository) AdjustStock(productID string, variantID *string, delta int) error {
	label := productID
	if variantID != nil && *variantID != "" {
		label = *variantID
	}
	return applyStockDelta(r.db, productID, variantID, delta, label)
}

// applyStockDelta performs the conditional stock update shared by the
// product repository and the order ledger's transactional units of work.
// The WHERE clause guards the non-negative invariant: a decrement only
// lands when the resulting stock stays >= 0, so concurrent decrements
// serialize at the database and can never oversell. label names the
// product in the insufficient-stock error.
func applyStockDelta(db *gorm.DB, productID string, variantID *string, delta int, label string) error {
	if delta == 0 {
		return nil
	}

	var res *gorm.DB
	if variantID != nil && *variantID != "" {
		res = db.Model(&models.ProductVariant{}).
			Where("id = ? AND stock + ? >= 0", *variantID, delta).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	} else {
		res = db.Model(&models.Product{}).
			Where("id = ? AND stock + ? >= 0", productID, delta).
			UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	}
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, res.Error, "failed to adjust stock for %s", label)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// No row updated: either the record is gone or the decrement would
	// have driven stock negative. Tell them apart.
	q := db.Model(&models.Product{}).Where("id = ?", productID)
	if variantID != nil && *variantID != "" {
		q = db.Model(&models.ProductVariant{}).Where("id = ?", *variantID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to check stock for %s", label)
	}
	if count == 0 {
		return apperrors.New(apperrors.KindNotFound, "product %s not found", label)
	}
	return apperrors.New(apperrors.KindInsufficientStock, "insufficient stock for product %s", label)
}
