package delivery

import (
	"context"
	"testing"
	"time"

	"farmdirect-be/internal/order"
	"farmdirect-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Delivery), args.Error(1)
}

func (m *MockRepository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID int64) ([]*Delivery, error) {
	args := m.Called(ctx, deliveryPersonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Delivery), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) PlaceOrder(ctx context.Context, params order.PlaceOrderParams) (*order.Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetItems(ctx context.Context, orderID int64) ([]*order.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*order.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID int64) ([]*order.Order, error) {
	args := m.Called(ctx, deliveryPersonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByFarmer(ctx context.Context, farmerID int64) ([]*order.Order, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status order.Status, now time.Time) (*order.Order, error) {
	args := m.Called(ctx, orderID, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64, scheduledTime time.Time) (*order.Order, error) {
	args := m.Called(ctx, orderID, deliveryPersonID, scheduledTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, params order.PlaceOrderParams) (*order.Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) ListFor(ctx context.Context, caller user.Principal) ([]*order.Order, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderService) GetDetail(ctx context.Context, caller user.Principal, orderID int64) (*order.Detail, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Detail), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, caller user.Principal, orderID int64, status order.Status) (*order.Order, error) {
	args := m.Called(ctx, caller, orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) AssignDelivery(ctx context.Context, caller user.Principal, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, caller, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) Confirm(ctx context.Context, orderID int64) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

var courier = user.Principal{ID: 3, Role: user.RoleDelivery}

func newTestService() (*MockRepository, *MockOrderRepository, *MockOrderService, Service) {
	repo := new(MockRepository)
	orderRepo := new(MockOrderRepository)
	orderSvc := new(MockOrderService)
	return repo, orderRepo, orderSvc, NewService(repo, orderRepo, orderSvc)
}

func TestListForEnrichesOrders(t *testing.T) {
	repo, orderRepo, _, svc := newTestService()

	repo.On("ListByDeliveryPerson", mock.Anything, courier.ID).Return([]*Delivery{
		{ID: 1, DeliveryPersonID: courier.ID, OrderID: 10, Status: order.StatusConfirmed},
		{ID: 2, DeliveryPersonID: courier.ID, OrderID: 11, Status: order.StatusDelivered},
	}, nil)
	orderRepo.On("GetByID", mock.Anything, int64(10)).
		Return(&order.Order{ID: 10, Status: order.StatusConfirmed}, nil)
	orderRepo.On("GetByID", mock.Anything, int64(11)).
		Return(&order.Order{ID: 11, Status: order.StatusDelivered}, nil)

	got, err := svc.ListFor(context.Background(), courier)
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(10), got[0].Order.ID)
}

func TestListForWrongRole(t *testing.T) {
	repo, _, _, svc := newTestService()

	_, err := svc.ListFor(context.Background(), user.Principal{ID: 1, Role: user.RoleCustomer})
	assert.ErrorIs(t, err, order.ErrForbidden)
	repo.AssertNotCalled(t, "ListByDeliveryPerson")
}

func TestGetOwnership(t *testing.T) {
	repo, _, orderSvc, svc := newTestService()

	repo.On("GetByID", mock.Anything, int64(1)).
		Return(&Delivery{ID: 1, DeliveryPersonID: 99, OrderID: 10}, nil)

	_, err := svc.Get(context.Background(), courier, 1)
	assert.ErrorIs(t, err, ErrNotAssignee)
	orderSvc.AssertNotCalled(t, "GetDetail")
}

func TestGetReturnsOrderDetail(t *testing.T) {
	repo, _, orderSvc, svc := newTestService()

	repo.On("GetByID", mock.Anything, int64(1)).
		Return(&Delivery{ID: 1, DeliveryPersonID: courier.ID, OrderID: 10, Status: order.StatusProcessing}, nil)
	orderSvc.On("GetDetail", mock.Anything, courier, int64(10)).
		Return(&order.Detail{
			Order: order.Order{ID: 10, Status: order.StatusProcessing},
			Items: []*order.DetailedItem{{OrderItem: order.OrderItem{ID: 5, Quantity: 2}}},
		}, nil)

	d, err := svc.Get(context.Background(), courier, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), d.Order.ID)
	assert.Len(t, d.Order.Items, 1)
}

func TestUpdateStatusDelegatesToOrder(t *testing.T) {
	repo, _, orderSvc, svc := newTestService()

	started := time.Now()
	repo.On("GetByID", mock.Anything, int64(1)).
		Return(&Delivery{ID: 1, DeliveryPersonID: courier.ID, OrderID: 10, Status: order.StatusProcessing}, nil).Once()
	orderSvc.On("UpdateStatus", mock.Anything, courier, int64(10), order.StatusOutForDelivery).
		Return(&order.Order{ID: 10, Status: order.StatusOutForDelivery}, nil)
	repo.On("GetByID", mock.Anything, int64(1)).
		Return(&Delivery{ID: 1, DeliveryPersonID: courier.ID, OrderID: 10,
			Status: order.StatusOutForDelivery, StartTime: &started}, nil).Once()

	d, err := svc.UpdateStatus(context.Background(), courier, 1, order.StatusOutForDelivery)
	assert.NoError(t, err)
	assert.Equal(t, order.StatusOutForDelivery, d.Status)
	assert.NotNil(t, d.StartTime)
	orderSvc.AssertExpectations(t)
}

func TestUpdateStatusSurfacesTransitionError(t *testing.T) {
	repo, _, orderSvc, svc := newTestService()

	repo.On("GetByID", mock.Anything, int64(1)).
		Return(&Delivery{ID: 1, DeliveryPersonID: courier.ID, OrderID: 10, Status: order.StatusConfirmed}, nil)
	orderSvc.On("UpdateStatus", mock.Anything, courier, int64(10), order.StatusDelivered).
		Return(nil, order.ErrInvalidTransition)

	_, err := svc.UpdateStatus(context.Background(), courier, 1, order.StatusDelivered)
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestUpdateStatusNotFound(t *testing.T) {
	repo, _, _, svc := newTestService()

	repo.On("GetByID", mock.Anything, int64(404)).Return(nil, ErrDeliveryNotFound)

	_, err := svc.UpdateStatus(context.Background(), courier, 404, order.StatusProcessing)
	assert.ErrorIs(t, err, ErrDeliveryNotFound)
}
