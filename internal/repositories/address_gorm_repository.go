package repositories

import (
	"pasar/internal/apperrors"
	"pasar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAddressRepository is a GORM implementation of AddressRepository.
type GORMAddressRepository struct {
	db *gorm.DB
}

// NewGORMAddressRepository creates a new instance of GORMAddressRepository.
func NewGORMAddressRepository(db *gorm.DB) *GORMAddressRepository {
	return &GORMAddressRepository{
		db: db,
	}
}

// GetByIDForUser retrieves an address by ID, scoped to its owner. An
// address owned by another user is reported as not found.
func (r *GORMAddressRepository) GetByIDForUser(id, userID string) (*models.Address, error) {
	var address models.Address
	if err := r.db.First(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.KindNotFound, "address %s not found", id)
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to get address %s", id)
	}
	return &address, nil
}

// ListByUser retrieves all addresses belonging to a user.
func (r *GORMAddressRepository) ListByUser(userID string) ([]models.Address, error) {
	var addresses []models.Address
	if err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&addresses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, err, "failed to list addresses")
	}
	return addresses, nil
}

// Create creates a new address in the database.
func (r *GORMAddressRepository) Create(address *models.Address) error {
	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	if err := r.db.Create(address).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, err, "failed to create address")
	}
	return nil
}

// Delete deletes an address by its ID, scoped to its owner.
func (r *GORMAddressRepository) Delete(id, userID string) error {
	res := r.db.Delete(&models.Address{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.KindInternal, res.Error, "failed to delete address")
	}
	if res.RowsAffected == 0 {
		return apperrors.New(apperrors.KindNotFound, "address %s not found for deletion", id)
	}
	return nil
}
