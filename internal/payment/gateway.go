package payment

import "context"

// Session is a hosted checkout page created at the payment provider.
type Session struct {
	ID  string
	URL string
}

type CheckoutSessionRequest struct {
	PaymentID   int64
	OrderID     int64
	CustomerID  int64
	Amount      float64
	TipAmount   float64
	Email       string
	Description string
}

type SubscriptionSessionRequest struct {
	SubscriptionID int64
	FarmerID       int64
	Tier           Tier
	Price          float64
	Email          string
}

// Gateway talks to the payment provider. Amounts cross this boundary in
// major units; conversion to minor units happens inside the gateway.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*Session, error)
	CreateSubscriptionSession(ctx context.Context, req SubscriptionSessionRequest) (*Session, error)

	// VerifySignature checks a webhook payload against its signature
	// header, returning ErrInvalidSignature on mismatch or stale
	// timestamp.
	VerifySignature(payload []byte, sigHeader string) error
}
