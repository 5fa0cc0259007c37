package payment

import "time"

type Method string

const (
	MethodCreditCard   Method = "credit_card"
	MethodPaypal       Method = "paypal"
	MethodMobileWallet Method = "mobile_wallet"
	MethodBankTransfer Method = "bank_transfer"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
	TierPro     Tier = "pro"
)

func ValidTier(t Tier) bool {
	switch t {
	case TierBasic, TierPremium, TierPro:
		return true
	}
	return false
}

// subscriptionPeriod is the billing window granted per successful invoice.
const subscriptionPeriod = 30 * 24 * time.Hour

// Payment is created pending when a checkout session is opened and is
// transitioned only by webhook events afterwards.
type Payment struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"order_id"`
	Amount        float64   `json:"amount"`
	TipAmount     float64   `json:"tip_amount"`
	Method        Method    `json:"method"`
	Status        Status    `json:"status"`
	TransactionID *string   `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Subscription is a farmer's recurring marketplace plan. At most one
// active subscription exists per farmer.
type Subscription struct {
	ID        int64     `json:"id"`
	FarmerID  int64     `json:"farmer_id"`
	Tier      Tier      `json:"tier"`
	Price     float64   `json:"price"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	IsActive  bool      `json:"is_active"`
	AutoRenew bool      `json:"auto_renew"`
}

// SubscriptionPayment is one row of the append-only billing history.
type SubscriptionPayment struct {
	ID             int64     `json:"id"`
	SubscriptionID int64     `json:"subscription_id"`
	Amount         float64   `json:"amount"`
	Method         Method    `json:"method"`
	Status         Status    `json:"status"`
	TransactionID  string    `json:"transaction_id"`
	BillingDate    time.Time `json:"billing_date"`
}

type CheckoutParams struct {
	OrderID     int64
	Amount      float64
	TipAmount   float64
	Email       string
	Name        string
	Description string
}

type CheckoutResult struct {
	PaymentID   int64  `json:"payment_id"`
	CheckoutURL string `json:"checkout_url"`
}

type SubscriptionParams struct {
	FarmerID int64
	Email    string
	Tier     Tier
	Price    float64
}

type SubscriptionResult struct {
	SubscriptionID int64  `json:"subscription_id"`
	CheckoutURL    string `json:"checkout_url"`
}
