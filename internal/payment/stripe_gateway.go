package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"farmdirect-be/internal/logger"

	"go.uber.org/zap"
)

const (
	stripeBaseURL = "https://api.stripe.com"

	// settlementCurrency is fixed for the whole marketplace; call sites
	// never choose a currency.
	settlementCurrency = "cad"

	// signatureTolerance bounds how old a webhook timestamp may be.
	signatureTolerance = 5 * time.Minute
)

// cents converts a major-unit amount to the minor units Stripe expects.
// Every amount sent to Stripe goes through here.
func cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

type stripeGateway struct {
	secretKey     string
	webhookSecret string
	appURL        string
	httpClient    *http.Client
	now           func() time.Time
}

func NewStripeGateway(secretKey, webhookSecret, appURL string) Gateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty")
	}

	return &stripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		appURL:        appURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		now: time.Now,
	}
}

func (g *stripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("customer_email", req.Email)
	form.Set("success_url", g.appURL+"/order/success?session_id={CHECKOUT_SESSION_ID}")
	form.Set("cancel_url", g.appURL+"/order/cancel?session_id={CHECKOUT_SESSION_ID}")

	form.Set("line_items[0][price_data][currency]", settlementCurrency)
	form.Set("line_items[0][price_data][product_data][name]", req.Description)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(cents(req.Amount), 10))
	form.Set("line_items[0][quantity]", "1")

	if req.TipAmount > 0 {
		form.Set("line_items[1][price_data][currency]", settlementCurrency)
		form.Set("line_items[1][price_data][product_data][name]", "Tip")
		form.Set("line_items[1][price_data][unit_amount]", strconv.FormatInt(cents(req.TipAmount), 10))
		form.Set("line_items[1][quantity]", "1")
	}

	form.Set("metadata[payment_id]", strconv.FormatInt(req.PaymentID, 10))
	form.Set("metadata[order_id]", strconv.FormatInt(req.OrderID, 10))
	form.Set("metadata[customer_id]", strconv.FormatInt(req.CustomerID, 10))

	return g.createSession(ctx, form)
}

func (g *stripeGateway) CreateSubscriptionSession(ctx context.Context, req SubscriptionSessionRequest) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("customer_email", req.Email)
	form.Set("success_url", g.appURL+"/dashboard?subscription=success")
	form.Set("cancel_url", g.appURL+"/dashboard?subscription=cancel")

	form.Set("line_items[0][price_data][currency]", settlementCurrency)
	form.Set("line_items[0][price_data][product_data][name]",
		fmt.Sprintf("Farmer Subscription - %s Tier", req.Tier))
	form.Set("line_items[0][price_data][product_data][description]",
		"Monthly subscription for farmers marketplace")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(cents(req.Price), 10))
	form.Set("line_items[0][price_data][recurring][interval]", "month")
	form.Set("line_items[0][quantity]", "1")

	form.Set("metadata[subscription_id]", strconv.FormatInt(req.SubscriptionID, 10))
	form.Set("metadata[farmer_id]", strconv.FormatInt(req.FarmerID, 10))
	form.Set("metadata[tier]", string(req.Tier))

	// Propagate our metadata to the provider-side subscription so that
	// invoice webhooks can be traced back without an extra lookup.
	form.Set("subscription_data[metadata][subscription_id]", strconv.FormatInt(req.SubscriptionID, 10))
	form.Set("subscription_data[metadata][farmer_id]", strconv.FormatInt(req.FarmerID, 10))

	return g.createSession(ctx, form)
}

func (g *stripeGateway) createSession(ctx context.Context, form url.Values) (*Session, error) {
	log := logger.FromCtx(ctx)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		stripeBaseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.secretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		log.Error("stripe request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("stripe returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", body),
		)
		return nil, fmt.Errorf("%w: status %d", ErrGateway, resp.StatusCode)
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("decode stripe response: %w", err)
	}

	log.Info("stripe checkout session created", zap.String("session_id", session.ID))

	return &Session{ID: session.ID, URL: session.URL}, nil
}

// VerifySignature implements Stripe's signed-webhook scheme: the header
// carries a timestamp and one or more v1 HMAC-SHA256 signatures computed
// over "<timestamp>.<payload>".
func (g *stripeGateway) VerifySignature(payload []byte, sigHeader string) error {
	var timestamp string
	var signatures []string

	for _, part := range strings.Split(sigHeader, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signatures = append(signatures, v)
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	age := g.now().Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(g.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}

	return ErrInvalidSignature
}
