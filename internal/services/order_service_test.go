package services_test

import (
	"errors"
	"strings"
	"testing"

	"pasar/internal/apperrors"
	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a testify mock of repositories.OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateWithItems(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetStatusView(id string) (*models.OrderStatusView, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OrderStatusView), args.Error(1)
}

func (m *MockOrderRepository) List(userID string, status *models.OrderStatus, page, pageSize int) ([]models.Order, int64, error) {
	args := m.Called(userID, status, page, pageSize)
	return args.Get(0).([]models.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus, trackingNumber, notes string) (*models.Order, error) {
	args := m.Called(id, status, trackingNumber, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Cancel(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// MockCatalog is a testify mock of repositories.ProductRepository.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalog) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalog) GetVariantByID(id string) (*models.ProductVariant, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductVariant), args.Error(1)
}

func (m *MockCatalog) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockCatalog) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockCatalog) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockCatalog) CreateVariant(variant *models.ProductVariant) error {
	args := m.Called(variant)
	return args.Error(0)
}

func (m *MockCatalog) AdjustStock(productID string, variantID *string, delta int) error {
	args := m.Called(productID, variantID, delta)
	return args.Error(0)
}

// MockAddressBook is a testify mock of repositories.AddressRepository.
type MockAddressBook struct {
	mock.Mock
}

func (m *MockAddressBook) GetByIDForUser(id, userID string) (*models.Address, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressBook) ListByUser(userID string) ([]models.Address, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockAddressBook) Create(address *models.Address) error {
	args := m.Called(address)
	return args.Error(0)
}

func (m *MockAddressBook) Delete(id, userID string) error {
	args := m.Called(id, userID)
	return args.Error(0)
}

// MockNotifier is a testify mock of services.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) PublishOrderCreated(orderID, orderNumber, userID string, totalAmount int64) error {
	args := m.Called(orderID, orderNumber, userID, totalAmount)
	return args.Error(0)
}

func (m *MockNotifier) PublishStatusChanged(orderID, orderNumber string, status string) error {
	args := m.Called(orderID, orderNumber, status)
	return args.Error(0)
}

type orderServiceFixture struct {
	orders    *MockOrderRepository
	catalog   *MockCatalog
	addresses *MockAddressBook
	notifier  *MockNotifier
	service   *services.OrderService
}

func newOrderServiceFixture() *orderServiceFixture {
	f := &orderServiceFixture{
		orders:    new(MockOrderRepository),
		catalog:   new(MockCatalog),
		addresses: new(MockAddressBook),
		notifier:  new(MockNotifier),
	}
	f.service = services.NewOrderService(
		f.orders, f.catalog, f.addresses,
		services.NewPricingEngine(services.DefaultPricingConfig()),
		f.notifier, nil,
	)
	return f
}

func testAddress(id, userID string) *models.Address {
	return &models.Address{
		ID:         id,
		UserID:     userID,
		Recipient:  "Budi Santoso",
		Line1:      "Jl. Merdeka 12",
		City:       "Jakarta",
		PostalCode: "10110",
		Country:    "ID",
	}
}

func testProduct(id string, price int64, stock int) *models.Product {
	return &models.Product{
		ID:     id,
		SKU:    "SKU-" + id,
		Name:   "Product " + id,
		Price:  price,
		Stock:  stock,
		Active: true,
	}
}

func validInput(userID string) services.CreateOrderInput {
	return services.CreateOrderInput{
		UserID:            userID,
		Items:             []services.CreateOrderItemInput{{ProductID: "p1", Quantity: 2}},
		ShippingAddressID: "ship-1",
		BillingAddressID:  "bill-1",
		PaymentMethod:     "credit_card",
	}
}

func TestCreateOrder_Success(t *testing.T) {
	f := newOrderServiceFixture()

	f.addresses.On("GetByIDForUser", "ship-1", "u1").Return(testAddress("ship-1", "u1"), nil).Once()
	f.addresses.On("GetByIDForUser", "bill-1", "u1").Return(testAddress("bill-1", "u1"), nil).Once()
	f.catalog.On("GetByID", "p1").Return(testProduct("p1", 5000, 5), nil).Once()
	f.orders.On("CreateWithItems", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	f.notifier.On("PublishOrderCreated", mock.Anything, mock.Anything, "u1", int64(12000)).Return(nil).Once()

	order, err := f.service.CreateOrder(validInput("u1"))

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, models.PaymentUnpaid, order.PaymentStatus)
	// 2 x 50.00 = 100.00 subtotal; 10% tax; subtotal is not strictly
	// over the threshold so the flat shipping fee applies.
	assert.Equal(t, int64(10000), order.Subtotal)
	assert.Equal(t, int64(1000), order.TaxAmount)
	assert.Equal(t, int64(1000), order.ShippingAmount)
	assert.Equal(t, int64(0), order.DiscountAmount)
	assert.Equal(t, int64(12000), order.TotalAmount)
	assert.Equal(t, order.Subtotal+order.TaxAmount+order.ShippingAmount-order.DiscountAmount, order.TotalAmount)

	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(5000), order.Items[0].UnitPrice)
	assert.Equal(t, int64(10000), order.Items[0].LineTotal)
	assert.Equal(t, "Product p1", order.Items[0].ProductName)

	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Equal(t, "Budi Santoso", order.ShippingAddress.Recipient)
	assert.Equal(t, "Jakarta", order.ShippingAddress.City)

	f.orders.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	f := newOrderServiceFixture()

	input := validInput("u1")
	input.Items = nil

	_, err := f.service.CreateOrder(input)

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	f.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything)
}

func TestCreateOrder_NonPositiveQuantity(t *testing.T) {
	f := newOrderServiceFixture()

	input := validInput("u1")
	input.Items[0].Quantity = 0

	_, err := f.service.CreateOrder(input)

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestCreateOrder_ShippingAddressNotFound(t *testing.T) {
	f := newOrderServiceFixture()

	f.addresses.On("GetByIDForUser", "ship-1", "u1").
		Return(nil, apperrors.New(apperrors.KindNotFound, "address ship-1 not found")).Once()

	_, err := f.service.CreateOrder(validInput("u1"))

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	f.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything)
}

func TestCreateOrder_ProductInactive(t *testing.T) {
	f := newOrderServiceFixture()

	product := testProduct("p1", 5000, 5)
	product.Active = false

	f.addresses.On("GetByIDForUser", "ship-1", "u1").Return(testAddress("ship-1", "u1"), nil).Once()
	f.addresses.On("GetByIDForUser", "bill-1", "u1").Return(testAddress("bill-1", "u1"), nil).Once()
	f.catalog.On("GetByID", "p1").Return(product, nil).Once()

	_, err := f.service.CreateOrder(validInput("u1"))

	assert.True(t, errors.Is(err, apperrors.ErrInactive))
	f.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything)
}

func TestCreateOrder_InsufficientStockNamesProduct(t *testing.T) {
	f := newOrderServiceFixture()

	f.addresses.On("GetByIDForUser", "ship-1", "u1").Return(testAddress("ship-1", "u1"), nil).Once()
	f.addresses.On("GetByIDForUser", "bill-1", "u1").Return(testAddress("bill-1", "u1"), nil).Once()
	f.catalog.On("GetByID", "p1").Return(testProduct("p1", 5000, 1), nil).Once()

	_, err := f.service.CreateOrder(validInput("u1"))

	assert.True(t, errors.Is(err, apperrors.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "Product p1")
	f.orders.AssertNotCalled(t, "CreateWithItems", mock.Anything)
}

func TestCreateOrder_VariantPricing(t *testing.T) {
	f := newOrderServiceFixture()

	variantID := "v1"
	input := validInput("u1")
	input.Items = []services.CreateOrderItemInput{{ProductID: "p1", VariantID: &variantID, Quantity: 3}}

	f.addresses.On("GetByIDForUser", "ship-1", "u1").Return(testAddress("ship-1", "u1"), nil).Once()
	f.addresses.On("GetByIDForUser", "bill-1", "u1").Return(testAddress("bill-1", "u1"), nil).Once()
	f.catalog.On("GetByID", "p1").Return(testProduct("p1", 5000, 0), nil).Once()
	f.catalog.On("GetVariantByID", "v1").Return(&models.ProductVariant{
		ID: "v1", ProductID: "p1", SKU: "SKU-v1", Name: "Large", Price: 7000, Stock: 10,
	}, nil).Once()
	f.orders.On("CreateWithItems", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	f.notifier.On("PublishOrderCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	order, err := f.service.CreateOrder(input)

	// The variant's price and stock are used; the parent product's own
	// zero stock is irrelevant.
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, int64(7000), order.Items[0].UnitPrice)
	assert.Equal(t, int64(21000), order.Items[0].LineTotal)
	assert.Equal(t, int64(21000), order.Subtotal)
	assert.Equal(t, int64(0), order.ShippingAmount) // over the threshold
}

func TestCreateOrder_VariantOfAnotherProduct(t *testing.T) {
	f := newOrderServiceFixture()

	variantID := "v9"
	input := validInput("u1")
	input.Items = []services.CreateOrderItemInput{{ProductID: "p1", VariantID: &variantID, Quantity: 1}}

	f.addresses.On("GetByIDForUser", "ship-1", "u1").Return(testAddress("ship-1", "u1"), nil).Once()
	f.addresses.On("GetByIDForUser", "bill-1", "u1").Return(testAddress("bill-1", "u1"), nil).Once()
	f.catalog.On("GetByID", "p1").Return(testProduct("p1", 5000, 5), nil).Once()
	f.catalog.On("GetVariantByID", "v9").Return(&models.ProductVariant{
		ID: "v9", ProductID: "other", Price: 100, Stock: 10,
	}, nil).Once()

	_, err := f.service.CreateOrder(input)

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestCreateOrder_RetriesOrderNumberConflict(t *testing.T) {
	f := newOrderServiceFixture()

	var numbers []string
	f.addresses.On("GetByIDForUser", "ship-1", "u1").Return(testAddress("ship-1", "u1"), nil).Once()
	f.addresses.On("GetByIDForUser", "bill-1", "u1").Return(testAddress("bill-1", "u1"), nil).Once()
	f.catalog.On("GetByID", "p1").Return(testProduct("p1", 5000, 5), nil).Once()
	f.orders.On("CreateWithItems", mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) {
			numbers = append(numbers, args.Get(0).(*models.Order).OrderNumber)
		}).
		Return(apperrors.New(apperrors.KindConflict, "order number already exists")).Once()
	f.orders.On("CreateWithItems", mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) {
			numbers = append(numbers, args.Get(0).(*models.Order).OrderNumber)
		}).
		Return(nil).Once()
	f.notifier.On("PublishOrderCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	_, err := f.service.CreateOrder(validInput("u1"))

	require.NoError(t, err)
	require.Len(t, numbers, 2)
	assert.NotEqual(t, numbers[0], numbers[1], "a colliding order number must be regenerated, never reused")
	f.orders.AssertExpectations(t)
}

func TestCreateOrder_GivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newOrderServiceFixture()

	f.addresses.On("GetByIDForUser", "ship-1", "u1").Return(testAddress("ship-1", "u1"), nil).Once()
	f.addresses.On("GetByIDForUser", "bill-1", "u1").Return(testAddress("bill-1", "u1"), nil).Once()
	f.catalog.On("GetByID", "p1").Return(testProduct("p1", 5000, 5), nil).Once()
	f.orders.On("CreateWithItems", mock.AnythingOfType("*models.Order")).
		Return(apperrors.New(apperrors.KindConflict, "order number already exists")).Times(3)

	_, err := f.service.CreateOrder(validInput("u1"))

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	f.orders.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "PublishOrderCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrder_NotifierFailureDoesNotFailOrder(t *testing.T) {
	f := newOrderServiceFixture()

	f.addresses.On("GetByIDForUser", "ship-1", "u1").Return(testAddress("ship-1", "u1"), nil).Once()
	f.addresses.On("GetByIDForUser", "bill-1", "u1").Return(testAddress("bill-1", "u1"), nil).Once()
	f.catalog.On("GetByID", "p1").Return(testProduct("p1", 5000, 5), nil).Once()
	f.orders.On("CreateWithItems", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	f.notifier.On("PublishOrderCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker down")).Once()

	order, err := f.service.CreateOrder(validInput("u1"))

	// The order is already durably committed; a notification failure is
	// logged and swallowed.
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
}

func TestCancelOrder_Success(t *testing.T) {
	f := newOrderServiceFixture()

	pending := &models.Order{ID: "o1", OrderNumber: "ORD-X", UserID: "u1", Status: models.StatusPending}
	cancelled := &models.Order{ID: "o1", OrderNumber: "ORD-X", UserID: "u1", Status: models.StatusCancelled}

	f.orders.On("GetByID", "o1").Return(pending, nil).Once()
	f.orders.On("Cancel", "o1").Return(cancelled, nil).Once()
	f.notifier.On("PublishStatusChanged", "o1", "ORD-X", string(models.StatusCancelled)).Return(nil).Once()

	order, err := f.service.CancelOrder("o1", "u1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)
	f.notifier.AssertExpectations(t)
}

func TestCancelOrder_NotOwnerReadsAsNotFound(t *testing.T) {
	f := newOrderServiceFixture()

	f.orders.On("GetByID", "o1").
		Return(&models.Order{ID: "o1", UserID: "someone-else", Status: models.StatusPending}, nil).Once()

	_, err := f.service.CancelOrder("o1", "u1")

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	f.orders.AssertNotCalled(t, "Cancel", mock.Anything)
}

func TestCancelOrder_ConflictAtStage(t *testing.T) {
	f := newOrderServiceFixture()

	f.orders.On("GetByID", "o1").
		Return(&models.Order{ID: "o1", OrderNumber: "ORD-X", UserID: "u1", Status: models.StatusShipped}, nil).Once()
	f.orders.On("Cancel", "o1").
		Return(nil, apperrors.New(apperrors.KindConflict, "order ORD-X cannot be cancelled at this stage")).Once()

	_, err := f.service.CancelOrder("o1", "u1")

	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "cannot be cancelled at this stage")
	f.notifier.AssertNotCalled(t, "PublishStatusChanged", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	f := newOrderServiceFixture()

	_, err := f.service.UpdateOrderStatus("o1", "TELEPORTED", "", "")

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	f.orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	f := newOrderServiceFixture()

	updated := &models.Order{ID: "o1", OrderNumber: "ORD-X", UserID: "u1", Status: models.StatusShipped}
	f.orders.On("UpdateStatus", "o1", models.StatusShipped, "TRACK-9", "left warehouse").Return(updated, nil).Once()
	f.notifier.On("PublishStatusChanged", "o1", "ORD-X", string(models.StatusShipped)).Return(nil).Once()

	order, err := f.service.UpdateOrderStatus("o1", "SHIPPED", "TRACK-9", "left warehouse")

	require.NoError(t, err)
	assert.Equal(t, models.StatusShipped, order.Status)
	f.orders.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestGetOrder_ScopedToUser(t *testing.T) {
	f := newOrderServiceFixture()

	f.orders.On("GetByID", "o1").
		Return(&models.Order{ID: "o1", UserID: "owner"}, nil).Twice()

	_, err := f.service.GetOrder("o1", "intruder")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	order, err := f.service.GetOrder("o1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
}

func TestListOrders_InvalidStatusFilter(t *testing.T) {
	f := newOrderServiceFixture()

	_, _, err := f.service.ListOrders("u1", "NOT_A_STATUS", 1, 20)

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestListOrders_PagerDefaultsAndCaps(t *testing.T) {
	f := newOrderServiceFixture()

	f.orders.On("List", "u1", (*models.OrderStatus)(nil), 1, 20).Return([]models.Order{}, int64(0), nil).Once()
	_, _, err := f.service.ListOrders("u1", "", 0, 0)
	require.NoError(t, err)

	f.orders.On("List", "u1", (*models.OrderStatus)(nil), 3, 100).Return([]models.Order{}, int64(0), nil).Once()
	_, _, err = f.service.ListOrders("u1", "", 3, 5000)
	require.NoError(t, err)

	f.orders.AssertExpectations(t)
}

func TestGetOrderStatus_ScopedToUser(t *testing.T) {
	f := newOrderServiceFixture()

	view := &models.OrderStatusView{ID: "o1", OrderNumber: "ORD-X", UserID: "owner", Status: models.StatusConfirmed}
	f.orders.On("GetStatusView", "o1").Return(view, nil).Twice()

	_, err := f.service.GetOrderStatus("o1", "intruder")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	got, err := f.service.GetOrderStatus("o1", "owner")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
}
