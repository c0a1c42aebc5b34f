package repositories

import (
	"pasar/internal/models"
)

// AddressRepository defines the interface for address book access. All
// lookups are scoped to the owning user; an address that exists but
// belongs to someone else behaves as not found.
type AddressRepository interface {
	GetByIDForUser(id, userID string) (*models.Address, error)
	ListByUser(userID string) ([]models.Address, error)
	Create(address *models.Address) error
	Delete(id, userID string) error
}
