package services

import (
	"pasar/internal/models"
	"pasar/internal/repositories"
)

// AddressService handles the address book. Every operation is scoped to
// the owning user; orders embed snapshots of these addresses, so edits
// here never touch historical orders.
type AddressService struct {
	repo repositories.AddressRepository
}

// NewAddressService creates a new AddressService.
func NewAddressService(repo repositories.AddressRepository) *AddressService {
	return &AddressService{
		repo: repo,
	}
}

// CreateAddress stores a new address for the user.
func (s *AddressService) CreateAddress(address *models.Address) error {
	return s.repo.Create(address)
}

// ListAddresses returns the user's addresses.
func (s *AddressService) ListAddresses(userID string) ([]models.Address, error) {
	return s.repo.ListByUser(userID)
}

// GetAddress resolves one of the user's addresses.
func (s *AddressService) GetAddress(id, userID string) (*models.Address, error) {
	return s.repo.GetByIDForUser(id, userID)
}

// DeleteAddress removes one of the user's addresses.
func (s *AddressService) DeleteAddress(id, userID string) error {
	return s.repo.Delete(id, userID)
}
