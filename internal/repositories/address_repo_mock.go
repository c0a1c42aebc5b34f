package repositories

import (
	"sync"

	"pasar/internal/apperrors"
	"pasar/internal/models"

	"github.com/google/uuid"
)

// MockAddressRepository is an in-memory implementation of AddressRepository.
type MockAddressRepository struct {
	addresses map[string]models.Address
	mu        sync.RWMutex
}

// NewMockAddressRepository creates a new instance of MockAddressRepository.
func NewMockAddressRepository() *MockAddressRepository {
	return &MockAddressRepository{
		addresses: make(map[string]models.Address),
	}
}

// GetByIDForUser returns an address by ID, scoped to its owner.
func (r *MockAddressRepository) GetByIDForUser(id, userID string) (*models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	address, ok := r.addresses[id]
	if !ok || address.UserID != userID {
		return nil, apperrors.New(apperrors.KindNotFound, "address %s not found", id)
	}
	return &address, nil
}

// ListByUser returns all addresses belonging to a user.
func (r *MockAddressRepository) ListByUser(userID string) ([]models.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	addressList := make([]models.Address, 0)
	for _, address := range r.addresses {
		if address.UserID == userID {
			addressList = append(addressList, address)
		}
	}
	return addressList, nil
}

// Create adds a new address.
func (r *MockAddressRepository) Create(address *models.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if address.ID == "" {
		address.ID = uuid.New().String()
	}
	r.addresses[address.ID] = *address
	return nil
}

// Delete removes an address by its ID, scoped to its owner.
func (r *MockAddressRepository) Delete(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	address, ok := r.addresses[id]
	if !ok || address.UserID != userID {
		return apperrors.New(apperrors.KindNotFound, "address %s not found for deletion", id)
	}
	delete(r.addresses, id)
	return nil
}
