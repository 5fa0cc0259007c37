package order

import (
	"context"
	"testing"
	"time"

	"farmdirect-be/internal/product"
	"farmdirect-be/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*Order, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) GetItems(ctx context.Context, orderID int64) ([]*OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*OrderItem), args.Error(1)
}

func (m *MockRepository) ListByCustomer(ctx context.Context, customerID int64) ([]*Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) ListByDeliveryPerson(ctx context.Context, deliveryPersonID int64) ([]*Order, error) {
	args := m.Called(ctx, deliveryPersonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) ListByFarmer(ctx context.Context, farmerID int64) ([]*Order, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Order), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, orderID int64, status Status, now time.Time) (*Order, error) {
	args := m.Called(ctx, orderID, status, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

func (m *MockRepository) AssignDeliveryPerson(ctx context.Context, orderID, deliveryPersonID int64, scheduledTime time.Time) (*Order, error) {
	args := m.Called(ctx, orderID, deliveryPersonID, scheduledTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Order), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, farmerID int64, input product.NewProductInput) (*product.Product, error) {
	args := m.Called(ctx, farmerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, opts product.ListOptions) ([]*product.Product, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepository) GetByFarmer(ctx context.Context, farmerID int64) ([]*product.Product, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*product.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, input product.UpdateProductInput) (*product.Product, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func ptr(v int64) *int64 { return &v }

var (
	customer = user.Principal{ID: 1, Role: user.RoleCustomer}
	farmer   = user.Principal{ID: 2, Role: user.RoleFarmer}
	courier  = user.Principal{ID: 3, Role: user.RoleDelivery}
)

func TestPlaceOrderMissingAddress(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockProductRepository), nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderParams{CustomerID: 1})
	assert.ErrorIs(t, err, ErrMissingAddress)
	repo.AssertNotCalled(t, "PlaceOrder")
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockProductRepository), nil)

	repo.On("PlaceOrder", mock.Anything, mock.Anything).Return(nil, ErrEmptyCart)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderParams{
		CustomerID:      1,
		DeliveryAddress: "12 Orchard Rd",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

// TestUpdateStatusAuthorityMatrix exercises every (role, from, to)
// combination against the transition authority table.
func TestUpdateStatusAuthorityMatrix(t *testing.T) {
	all := []Status{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusOutForDelivery, StatusDelivered, StatusCancelled,
	}

	forward := map[Status]Status{
		StatusConfirmed:      StatusProcessing,
		StatusProcessing:     StatusOutForDelivery,
		StatusOutForDelivery: StatusDelivered,
	}

	for _, caller := range []user.Principal{customer, farmer, courier} {
		for _, from := range all {
			for _, to := range all {
				repo := new(MockRepository)
				svc := NewService(repo, new(MockProductRepository), nil)

				o := &Order{ID: 10, CustomerID: customer.ID, Status: from, DeliveryPersonID: ptr(courier.ID)}
				repo.On("GetByID", mock.Anything, int64(10)).Return(o, nil)
				repo.On("UpdateStatus", mock.Anything, int64(10), to, mock.Anything).
					Return(&Order{ID: 10, CustomerID: customer.ID, Status: to, DeliveryPersonID: ptr(courier.ID)}, nil)

				_, err := svc.UpdateStatus(context.Background(), caller, 10, to)

				var wantErr error
				switch caller.Role {
				case user.RoleCustomer:
					if to != StatusCancelled {
						wantErr = ErrForbidden
					} else if Terminal(from) {
						wantErr = ErrInvalidTransition
					}
				case user.RoleDelivery:
					if to == StatusCancelled || to == StatusConfirmed {
						wantErr = ErrForbidden
					} else if !CanTransition(from, to) {
						wantErr = ErrInvalidTransition
					} else if forward[from] != to {
						wantErr = ErrInvalidTransition
					}
				default:
					wantErr = ErrForbidden
				}

				if wantErr != nil {
					assert.ErrorIs(t, err, wantErr, "%s: %s -> %s", caller.Role, from, to)
					repo.AssertNotCalled(t, "UpdateStatus")
				} else {
					assert.NoError(t, err, "%s: %s -> %s", caller.Role, from, to)
				}
			}
		}
	}
}

func TestUpdateStatusOwnershipChecks(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockProductRepository), nil)

	o := &Order{ID: 10, CustomerID: 1, Status: StatusProcessing, DeliveryPersonID: ptr(3)}
	repo.On("GetByID", mock.Anything, int64(10)).Return(o, nil)

	t.Run("OtherCustomerCannotCancel", func(t *testing.T) {
		other := user.Principal{ID: 99, Role: user.RoleCustomer}
		_, err := svc.UpdateStatus(context.Background(), other, 10, StatusCancelled)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("UnassignedCourierForbidden", func(t *testing.T) {
		other := user.Principal{ID: 98, Role: user.RoleDelivery}
		_, err := svc.UpdateStatus(context.Background(), other, 10, StatusOutForDelivery)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	repo.AssertNotCalled(t, "UpdateStatus")
}

func TestUpdateStatusInvalidString(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockProductRepository), nil)

	_, err := svc.UpdateStatus(context.Background(), customer, 10, Status("shipped"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
	repo.AssertNotCalled(t, "GetByID")
}

func TestConfirmIdempotent(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockProductRepository), nil)

	repo.On("GetByID", mock.Anything, int64(10)).
		Return(&Order{ID: 10, Status: StatusConfirmed}, nil)

	o, err := svc.Confirm(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	repo.AssertNotCalled(t, "UpdateStatus")
}

func TestConfirmAdvancesPending(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockProductRepository), nil)

	repo.On("GetByID", mock.Anything, int64(10)).
		Return(&Order{ID: 10, Status: StatusPending}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(10), StatusConfirmed, mock.Anything).
		Return(&Order{ID: 10, Status: StatusConfirmed}, nil)

	o, err := svc.Confirm(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	repo.AssertExpectations(t)
}

func TestConfirmRejectsLaterStatuses(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, new(MockProductRepository), nil)

	repo.On("GetByID", mock.Anything, int64(10)).
		Return(&Order{ID: 10, Status: StatusCancelled}, nil)

	_, err := svc.Confirm(context.Background(), 10)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestAssignDelivery(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository), nil)

		repo.On("GetByID", mock.Anything, int64(10)).
			Return(&Order{ID: 10, Status: StatusConfirmed}, nil)
		repo.On("AssignDeliveryPerson", mock.Anything, int64(10), courier.ID,
			mock.MatchedBy(func(ts time.Time) bool {
				// Scheduled roughly 24h out.
				d := time.Until(ts)
				return d > 23*time.Hour && d < 25*time.Hour
			})).
			Return(&Order{ID: 10, Status: StatusConfirmed, DeliveryPersonID: ptr(courier.ID)}, nil)

		o, err := svc.AssignDelivery(context.Background(), courier, 10)
		assert.NoError(t, err)
		assert.Equal(t, courier.ID, *o.DeliveryPersonID)
		repo.AssertExpectations(t)
	})

	t.Run("AlreadyAssigned", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository), nil)

		repo.On("GetByID", mock.Anything, int64(10)).
			Return(&Order{ID: 10, Status: StatusConfirmed, DeliveryPersonID: ptr(7)}, nil)

		_, err := svc.AssignDelivery(context.Background(), courier, 10)
		assert.ErrorIs(t, err, ErrAlreadyAssigned)
		repo.AssertNotCalled(t, "AssignDeliveryPerson")
	})

	t.Run("NotConfirmed", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository), nil)

		repo.On("GetByID", mock.Anything, int64(10)).
			Return(&Order{ID: 10, Status: StatusPending}, nil)

		_, err := svc.AssignDelivery(context.Background(), courier, 10)
		assert.ErrorIs(t, err, ErrOrderNotConfirmed)
	})

	t.Run("WrongRole", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, new(MockProductRepository), nil)

		_, err := svc.AssignDelivery(context.Background(), customer, 10)
		assert.ErrorIs(t, err, ErrForbidden)
		repo.AssertNotCalled(t, "GetByID")
	})
}

func TestGetDetailAccess(t *testing.T) {
	repo := new(MockRepository)
	productRepo := new(MockProductRepository)
	svc := NewService(repo, productRepo, nil)

	o := &Order{ID: 10, CustomerID: 1, Status: StatusConfirmed, DeliveryPersonID: ptr(3)}
	repo.On("GetByID", mock.Anything, int64(10)).Return(o, nil)
	repo.On("GetItems", mock.Anything, int64(10)).Return([]*OrderItem{
		{ID: 1, OrderID: 10, ProductID: 5, Quantity: 2, Price: 3.25},
	}, nil)
	productRepo.On("GetByID", mock.Anything, int64(5)).
		Return(nil, product.ErrProductNotFound)

	t.Run("OwnerSeesDetailWithDeletedProduct", func(t *testing.T) {
		d, err := svc.GetDetail(context.Background(), customer, 10)
		assert.NoError(t, err)
		assert.Len(t, d.Items, 1)
		assert.Nil(t, d.Items[0].Product)
		assert.Equal(t, 3.25, d.Items[0].Price)
	})

	t.Run("StrangerForbidden", func(t *testing.T) {
		stranger := user.Principal{ID: 50, Role: user.RoleCustomer}
		_, err := svc.GetDetail(context.Background(), stranger, 10)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

type capturedEvent struct {
	key   string
	event interface{}
}

type fakePublisher struct {
	events []capturedEvent
}

func (p *fakePublisher) Publish(_ context.Context, key string, event interface{}) error {
	p.events = append(p.events, capturedEvent{key, event})
	return nil
}

func TestEventsPublished(t *testing.T) {
	repo := new(MockRepository)
	pub := &fakePublisher{}
	svc := NewService(repo, new(MockProductRepository), pub)

	repo.On("PlaceOrder", mock.Anything, mock.Anything).
		Return(&Order{ID: 10, CustomerID: 1, TotalAmount: 9.99, Status: StatusPending}, nil)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderParams{
		CustomerID:      1,
		DeliveryAddress: "12 Orchard Rd",
	})
	assert.NoError(t, err)
	assert.Len(t, pub.events, 1)
	assert.Equal(t, "order-10", pub.events[0].key)

	placed, ok := pub.events[0].event.(PlacedEvent)
	assert.True(t, ok)
	assert.Equal(t, EventPlaced, placed.Type)
	assert.Equal(t, int64(10), placed.OrderID)
}
