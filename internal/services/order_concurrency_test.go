package services_test

import (
	"errors"
	"sync"
	"testing"

	"pasar/internal/apperrors"
	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run the full service against the in-memory repositories
// to exercise interleavings the database-backed tests cannot.

func newInMemoryOrderService(t *testing.T) (*services.OrderService, *repositories.MockProductRepository, *repositories.MockAddressRepository) {
	t.Helper()

	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository(products)
	addresses := repositories.NewMockAddressRepository()

	service := services.NewOrderService(
		orders, products, addresses,
		services.NewPricingEngine(services.DefaultPricingConfig()),
		nil, nil,
	)
	return service, products, addresses
}

func seedAddressPair(t *testing.T, addresses *repositories.MockAddressRepository, userID string) (string, string) {
	t.Helper()

	shipping := &models.Address{UserID: userID, Recipient: "Budi", Line1: "Jl. Merdeka 12", City: "Jakarta", PostalCode: "10110", Country: "ID"}
	billing := &models.Address{UserID: userID, Recipient: "Budi", Line1: "Jl. Sudirman 8", City: "Jakarta", PostalCode: "10220", Country: "ID"}
	require.NoError(t, addresses.Create(shipping))
	require.NoError(t, addresses.Create(billing))
	return shipping.ID, billing.ID
}

func TestConcurrentCreationNeverOversells(t *testing.T) {
	service, products, addresses := newInMemoryOrderService(t)

	const stock = 5
	const attempts = 12

	product := &models.Product{ID: "p1", SKU: "SKU-p1", Name: "Limited", Price: 2500, Stock: stock, Active: true}
	require.NoError(t, products.Create(product))
	shipID, billID := seedAddressPair(t, addresses, "u1")

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.CreateOrder(services.CreateOrderInput{
				UserID:            "u1",
				Items:             []services.CreateOrderItemInput{{ProductID: "p1", Quantity: 1}},
				ShippingAddressID: shipID,
				BillingAddressID:  billID,
				PaymentMethod:     "credit_card",
			})
		}(i)
	}
	wg.Wait()

	succeeded, rejected := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrInsufficientStock):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Exactly the available units are sold, no matter the interleaving.
	assert.Equal(t, stock, succeeded)
	assert.Equal(t, attempts-stock, rejected)

	remaining, err := products.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 0, remaining.Stock)
}

func TestCreateThenCancelRestoresStock(t *testing.T) {
	service, products, addresses := newInMemoryOrderService(t)

	product := &models.Product{ID: "p1", SKU: "SKU-p1", Name: "Widget", Price: 2500, Stock: 7, Active: true}
	require.NoError(t, products.Create(product))
	shipID, billID := seedAddressPair(t, addresses, "u1")

	order, err := service.CreateOrder(services.CreateOrderInput{
		UserID:            "u1",
		Items:             []services.CreateOrderItemInput{{ProductID: "p1", Quantity: 3}},
		ShippingAddressID: shipID,
		BillingAddressID:  billID,
		PaymentMethod:     "bank_transfer",
	})
	require.NoError(t, err)

	mid, err := products.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 4, mid.Stock)

	_, err = service.CancelOrder(order.ID, "u1")
	require.NoError(t, err)

	after, err := products.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 7, after.Stock, "cancellation must restore stock to the pre-order level")

	// A second cancellation is rejected and must not double-restore.
	_, err = service.CancelOrder(order.ID, "u1")
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	again, err := products.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 7, again.Stock)
}

func TestMultiItemCreationIsAllOrNothing(t *testing.T) {
	products := repositories.NewMockProductRepository()
	orders := repositories.NewMockOrderRepository(products)

	require.NoError(t, products.Create(&models.Product{ID: "p1", SKU: "SKU-p1", Name: "Plenty", Price: 1000, Stock: 50, Active: true}))
	require.NoError(t, products.Create(&models.Product{ID: "p2", SKU: "SKU-p2", Name: "Scarce", Price: 1000, Stock: 1, Active: true}))

	// Drive the unit of work directly with quantities the validation
	// stage would have rejected, simulating a race that consumed the
	// last units between validation and commit.
	err := orders.CreateWithItems(&models.Order{
		OrderNumber: "ORD-TEST-1",
		UserID:      "u1",
		Status:      models.StatusPending,
		Items: []models.OrderItem{
			{ProductID: "p1", ProductName: "Plenty", Quantity: 5, UnitPrice: 1000, LineTotal: 5000},
			{ProductID: "p2", ProductName: "Scarce", Quantity: 2, UnitPrice: 1000, LineTotal: 2000},
		},
	})
	assert.True(t, errors.Is(err, apperrors.ErrInsufficientStock))

	// Nothing was sold: the p1 decrement was undone with the unit and
	// no order became visible.
	p1, err := products.GetByID("p1")
	require.NoError(t, err)
	assert.Equal(t, 50, p1.Stock)
	p2, err := products.GetByID("p2")
	require.NoError(t, err)
	assert.Equal(t, 1, p2.Stock)

	_, total, err := orders.List("u1", nil, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
