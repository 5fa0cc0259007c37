package payment

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

func (m *MockRepository) CreatePayment(ctx context.Context, p *Payment) (*Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]*Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Payment), args.Error(1)
}

func (m *MockRepository) SetPaymentStatus(ctx context.Context, id int64, status Status, transactionID *string) (*Payment, error) {
	args := m.Called(ctx, id, status, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Payment), args.Error(1)
}

func (m *MockRepository) CreateSubscription(ctx context.Context, s *Subscription) (*Subscription, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) GetSubscription(ctx context.Context, id int64) (*Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) GetSubscriptionByFarmer(ctx context.Context, farmerID int64) (*Subscription, error) {
	args := m.Called(ctx, farmerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) UpdateSubscription(ctx context.Context, id int64, input UpdateSubscriptionInput) (*Subscription, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Subscription), args.Error(1)
}

func (m *MockRepository) CreateSubscriptionPayment(ctx context.Context, sp *SubscriptionPayment) (*SubscriptionPayment, error) {
	args := m.Called(ctx, sp)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionPayment), args.Error(1)
}

func (m *MockRepository) ListSubscriptionPayments(ctx context.Context, subscriptionID int64) ([]*SubscriptionPayment, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*SubscriptionPayment), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockGateway) CreateSubscriptionSession(ctx context.Context, req SubscriptionSessionRequest) (*Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockGateway) VerifySignature(payload []byte, sigHeader string) error {
	return m.Called(payload, sigHeader).Error(0)
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

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (user.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(user.User), args.Error(1)
}

type deps struct {
	repo      *MockRepository
	orderRepo *MockOrderRepository
	orderSvc  *MockOrderService
	userRepo  *MockUserRepository
	gateway   *MockGateway
}

func newTestService() (deps, Service) {
	d := deps{
		repo:      new(MockRepository),
		orderRepo: new(MockOrderRepository),
		orderSvc:  new(MockOrderService),
		userRepo:  new(MockUserRepository),
		gateway:   new(MockGateway),
	}
	return d, NewService(d.repo, d.orderRepo, d.orderSvc, d.userRepo, d.gateway)
}

var customer = user.Principal{ID: 1, Role: user.RoleCustomer}

func TestInitiateCheckout(t *testing.T) {
	d, svc := newTestService()

	d.orderRepo.On("GetByID", mock.Anything, int64(10)).
		Return(&order.Order{ID: 10, CustomerID: 1, Status: order.StatusPending}, nil)
	d.repo.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p *Payment) bool {
		return p.OrderID == 10 && p.Status == StatusPending && p.Method == MethodCreditCard
	})).Return(&Payment{ID: 5, OrderID: 10, Amount: 24.50, Status: StatusPending}, nil)
	d.gateway.On("CreateCheckoutSession", mock.Anything, mock.MatchedBy(func(req CheckoutSessionRequest) bool {
		return req.PaymentID == 5 && req.Amount == 24.50 && req.TipAmount == 3.00
	})).Return(&Session{ID: "cs_123", URL: "https://checkout.test/cs_123"}, nil)

	res, err := svc.InitiateCheckout(context.Background(), customer, CheckoutParams{
		OrderID:   10,
		Amount:    24.50,
		TipAmount: 3.00,
		Email:     "jo@example.com",
		Name:      "Jo",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(5), res.PaymentID)
	assert.Equal(t, "https://checkout.test/cs_123", res.CheckoutURL)
}

func TestInitiateCheckoutWrongCustomer(t *testing.T) {
	d, svc := newTestService()

	d.orderRepo.On("GetByID", mock.Anything, int64(10)).
		Return(&order.Order{ID: 10, CustomerID: 99}, nil)

	_, err := svc.InitiateCheckout(context.Background(), customer, CheckoutParams{
		OrderID: 10, Amount: 24.50, Email: "jo@example.com",
	})
	assert.ErrorIs(t, err, ErrNotOrderOwner)
	d.repo.AssertNotCalled(t, "CreatePayment")
}

func TestInitiateCheckoutGatewayFailureKeepsPendingPayment(t *testing.T) {
	d, svc := newTestService()

	d.orderRepo.On("GetByID", mock.Anything, int64(10)).
		Return(&order.Order{ID: 10, CustomerID: 1}, nil)
	d.repo.On("CreatePayment", mock.Anything, mock.Anything).
		Return(&Payment{ID: 5, OrderID: 10, Status: StatusPending}, nil)
	d.gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return(nil, ErrGateway)

	_, err := svc.InitiateCheckout(context.Background(), customer, CheckoutParams{
		OrderID: 10, Amount: 24.50, Email: "jo@example.com",
	})
	assert.ErrorIs(t, err, ErrGateway)
	// Payment row was created and left pending; no rollback.
	d.repo.AssertNotCalled(t, "SetPaymentStatus")
}

func TestConfirmPayment(t *testing.T) {
	d, svc := newTestService()

	d.repo.On("GetPayment", mock.Anything, int64(5)).
		Return(&Payment{ID: 5, OrderID: 10, Status: StatusPending}, nil)
	d.repo.On("SetPaymentStatus", mock.Anything, int64(5), StatusCompleted, mock.Anything).
		Return(&Payment{ID: 5, OrderID: 10, Status: StatusCompleted}, nil)
	d.orderSvc.On("Confirm", mock.Anything, int64(10)).
		Return(&order.Order{ID: 10, Status: order.StatusConfirmed}, nil)

	err := svc.ConfirmPayment(context.Background(), 5, 10, "cs_123")
	assert.NoError(t, err)
	d.orderSvc.AssertExpectations(t)
}

func TestConfirmPaymentReplay(t *testing.T) {
	d, svc := newTestService()

	d.repo.On("GetPayment", mock.Anything, int64(5)).
		Return(&Payment{ID: 5, OrderID: 10, Status: StatusCompleted}, nil)

	err := svc.ConfirmPayment(context.Background(), 5, 10, "cs_123")
	assert.NoError(t, err)
	d.repo.AssertNotCalled(t, "SetPaymentStatus")
	d.orderSvc.AssertNotCalled(t, "Confirm")
}

func TestFailPaymentLeavesOrderAlone(t *testing.T) {
	d, svc := newTestService()

	d.repo.On("GetPayment", mock.Anything, int64(5)).
		Return(&Payment{ID: 5, OrderID: 10, Status: StatusPending}, nil)
	d.repo.On("SetPaymentStatus", mock.Anything, int64(5), StatusFailed, (*string)(nil)).
		Return(&Payment{ID: 5, OrderID: 10, Status: StatusFailed}, nil)

	err := svc.FailPayment(context.Background(), 5)
	assert.NoError(t, err)
	d.orderSvc.AssertNotCalled(t, "Confirm")
	d.orderSvc.AssertNotCalled(t, "UpdateStatus")
}

func TestInitiateSubscription(t *testing.T) {
	d, svc := newTestService()

	d.userRepo.On("GetByID", mock.Anything, int64(7)).
		Return(user.User{ID: 7, Role: user.RoleFarmer}, nil)
	d.repo.On("GetSubscriptionByFarmer", mock.Anything, int64(7)).Return(nil, nil)
	d.repo.On("CreateSubscription", mock.Anything, mock.MatchedBy(func(s *Subscription) bool {
		return s.FarmerID == 7 && !s.IsActive && s.AutoRenew &&
			s.EndDate.Sub(s.StartDate) == subscriptionPeriod
	})).Return(&Subscription{ID: 3, FarmerID: 7, Tier: TierPremium}, nil)
	d.gateway.On("CreateSubscriptionSession", mock.Anything, mock.Anything).
		Return(&Session{ID: "cs_sub", URL: "https://checkout.test/cs_sub"}, nil)

	res, err := svc.InitiateSubscription(context.Background(), SubscriptionParams{
		FarmerID: 7, Email: "farm@example.com", Tier: TierPremium, Price: 49.99,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), res.SubscriptionID)
}

func TestInitiateSubscriptionConflict(t *testing.T) {
	d, svc := newTestService()

	d.userRepo.On("GetByID", mock.Anything, int64(7)).
		Return(user.User{ID: 7, Role: user.RoleFarmer}, nil)
	d.repo.On("GetSubscriptionByFarmer", mock.Anything, int64(7)).
		Return(&Subscription{ID: 3, FarmerID: 7, IsActive: true}, nil)

	_, err := svc.InitiateSubscription(context.Background(), SubscriptionParams{
		FarmerID: 7, Email: "farm@example.com", Tier: TierBasic, Price: 19.99,
	})
	assert.ErrorIs(t, err, ErrSubscriptionExists)
	d.repo.AssertNotCalled(t, "CreateSubscription")
}

func TestInitiateSubscriptionInactiveExistingAllowed(t *testing.T) {
	d, svc := newTestService()

	d.userRepo.On("GetByID", mock.Anything, int64(7)).
		Return(user.User{ID: 7, Role: user.RoleFarmer}, nil)
	d.repo.On("GetSubscriptionByFarmer", mock.Anything, int64(7)).
		Return(&Subscription{ID: 3, FarmerID: 7, IsActive: false}, nil)
	d.repo.On("CreateSubscription", mock.Anything, mock.Anything).
		Return(&Subscription{ID: 4, FarmerID: 7}, nil)
	d.gateway.On("CreateSubscriptionSession", mock.Anything, mock.Anything).
		Return(&Session{ID: "cs_sub", URL: "u"}, nil)

	res, err := svc.InitiateSubscription(context.Background(), SubscriptionParams{
		FarmerID: 7, Email: "farm@example.com", Tier: TierBasic, Price: 19.99,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), res.SubscriptionID)
}

func TestInitiateSubscriptionNotAFarmer(t *testing.T) {
	d, svc := newTestService()

	d.userRepo.On("GetByID", mock.Anything, int64(1)).
		Return(user.User{ID: 1, Role: user.RoleCustomer}, nil)

	_, err := svc.InitiateSubscription(context.Background(), SubscriptionParams{
		FarmerID: 1, Email: "jo@example.com", Tier: TierBasic, Price: 19.99,
	})
	assert.ErrorIs(t, err, ErrNotFarmer)
}

func TestRecordSubscriptionInvoicePaid(t *testing.T) {
	d, svc := newTestService()

	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	billed := time.Now()

	d.repo.On("CreateSubscriptionPayment", mock.Anything, mock.MatchedBy(func(sp *SubscriptionPayment) bool {
		return sp.SubscriptionID == 3 && sp.Status == StatusCompleted && sp.Amount == 49.99
	})).Return(&SubscriptionPayment{ID: 1, SubscriptionID: 3}, nil)
	d.repo.On("GetSubscription", mock.Anything, int64(3)).
		Return(&Subscription{ID: 3, FarmerID: 7, EndDate: end}, nil)
	d.repo.On("UpdateSubscription", mock.Anything, int64(3), mock.MatchedBy(func(in UpdateSubscriptionInput) bool {
		return in.IsActive != nil && *in.IsActive &&
			in.EndDate != nil && in.EndDate.Equal(end.Add(subscriptionPeriod))
	})).Return(&Subscription{ID: 3, IsActive: true}, nil)

	err := svc.RecordSubscriptionInvoice(context.Background(), 3, 49.99, "in_1", billed, true)
	assert.NoError(t, err)
	d.repo.AssertExpectations(t)
}

func TestRecordSubscriptionInvoiceFailedIsGracePeriod(t *testing.T) {
	d, svc := newTestService()

	d.repo.On("CreateSubscriptionPayment", mock.Anything, mock.MatchedBy(func(sp *SubscriptionPayment) bool {
		return sp.Status == StatusFailed
	})).Return(&SubscriptionPayment{ID: 2, SubscriptionID: 3}, nil)

	err := svc.RecordSubscriptionInvoice(context.Background(), 3, 49.99, "in_2", time.Now(), false)
	assert.NoError(t, err)
	d.repo.AssertNotCalled(t, "UpdateSubscription")
}

func TestListSubscriptionInvoices(t *testing.T) {
	t.Run("ReturnsHistory", func(t *testing.T) {
		d, svc := newTestService()

		d.repo.On("GetSubscription", mock.Anything, int64(3)).
			Return(&Subscription{ID: 3, FarmerID: 2}, nil)
		d.repo.On("ListSubscriptionPayments", mock.Anything, int64(3)).
			Return([]*SubscriptionPayment{
				{ID: 1, SubscriptionID: 3, Status: StatusCompleted},
				{ID: 2, SubscriptionID: 3, Status: StatusFailed},
			}, nil)

		invoices, err := svc.ListSubscriptionInvoices(context.Background(), 3)
		assert.NoError(t, err)
		assert.Len(t, invoices, 2)
	})

	t.Run("UnknownSubscription", func(t *testing.T) {
		d, svc := newTestService()

		d.repo.On("GetSubscription", mock.Anything, int64(99)).
			Return(nil, ErrSubscriptionNotFound)

		_, err := svc.ListSubscriptionInvoices(context.Background(), 99)
		assert.ErrorIs(t, err, ErrSubscriptionNotFound)
		d.repo.AssertNotCalled(t, "ListSubscriptionPayments")
	})
}

func TestCancelSubscription(t *testing.T) {
	d, svc := newTestService()

	d.repo.On("UpdateSubscription", mock.Anything, int64(3), mock.MatchedBy(func(in UpdateSubscriptionInput) bool {
		return in.IsActive != nil && !*in.IsActive && in.AutoRenew != nil && !*in.AutoRenew
	})).Return(&Subscription{ID: 3, IsActive: false, AutoRenew: false}, nil)

	sub, err := svc.CancelSubscription(context.Background(), 3)
	assert.NoError(t, err)
	assert.False(t, sub.IsActive)
	assert.False(t, sub.AutoRenew)
}
