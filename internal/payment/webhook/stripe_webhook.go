package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"farmdirect-be/internal/logger"
	"farmdirect-be/internal/metrics"
	"farmdirect-be/internal/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// event is the envelope Stripe posts to the webhook endpoint. Data.Object
// is decoded per event type.
type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Status   string            `json:"status"`
			Metadata map[string]string `json:"metadata"`

			// Invoice fields.
			AmountPaid int64 `json:"amount_paid"`
			AmountDue  int64 `json:"amount_due"`
			Created    int64 `json:"created"`

			SubscriptionDetails struct {
				Metadata map[string]string `json:"metadata"`
			} `json:"subscription_details"`
		} `json:"object"`
	} `json:"data"`
}

type Handler struct {
	payments payment.Service
	gateway  payment.Gateway
}

func NewHandler(payments payment.Service, gateway payment.Gateway) *Handler {
	return &Handler{payments: payments, gateway: gateway}
}

// HandleStripe verifies and dispatches a Stripe webhook event. Unknown
// event types are acknowledged with 200 so Stripe stops retrying them.
func (h *Handler) HandleStripe(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if err := h.gateway.VerifySignature(body, c.GetHeader("Stripe-Signature")); err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	var ev event
	if err := json.Unmarshal(body, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ctx := c.Request.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("event_id", ev.ID),
		zap.String("event_type", ev.Type),
	)
	log.Info("webhook event received")

	var handleErr error
	handled := true

	switch ev.Type {
	case "checkout.session.completed":
		paymentID, okP := metaID(ev.Data.Object.Metadata, "payment_id")
		orderID, okO := metaID(ev.Data.Object.Metadata, "order_id")
		if !okP || !okO {
			log.Warn("checkout event without payment/order metadata")
			handled = false
			break
		}
		handleErr = h.payments.ConfirmPayment(ctx, paymentID, orderID, ev.Data.Object.ID)

	case "checkout.session.expired", "checkout.session.async_payment_failed":
		paymentID, ok := metaID(ev.Data.Object.Metadata, "payment_id")
		if !ok {
			log.Warn("checkout event without payment metadata")
			handled = false
			break
		}
		handleErr = h.payments.FailPayment(ctx, paymentID)

	case "customer.subscription.created":
		subID, ok := metaID(ev.Data.Object.Metadata, "subscription_id")
		if !ok {
			handled = false
			break
		}
		handleErr = h.payments.ActivateSubscription(ctx, subID)

	case "customer.subscription.updated":
		subID, ok := metaID(ev.Data.Object.Metadata, "subscription_id")
		if !ok {
			handled = false
			break
		}
		switch ev.Data.Object.Status {
		case "active":
			handleErr = h.payments.ActivateSubscription(ctx, subID)
		case "canceled", "unpaid":
			handleErr = h.payments.DeactivateSubscription(ctx, subID)
		}

	case "customer.subscription.deleted":
		subID, ok := metaID(ev.Data.Object.Metadata, "subscription_id")
		if !ok {
			handled = false
			break
		}
		handleErr = h.payments.DeactivateSubscription(ctx, subID)

	case "invoice.paid", "invoice.payment_failed":
		subID, ok := metaID(ev.Data.Object.SubscriptionDetails.Metadata, "subscription_id")
		if !ok {
			log.Warn("invoice event without subscription metadata")
			handled = false
			break
		}
		paid := ev.Type == "invoice.paid"
		amountCents := ev.Data.Object.AmountPaid
		if !paid {
			amountCents = ev.Data.Object.AmountDue
		}
		handleErr = h.payments.RecordSubscriptionInvoice(ctx, subID,
			float64(amountCents)/100, ev.Data.Object.ID,
			time.Unix(ev.Data.Object.Created, 0), paid)

	default:
		log.Info("ignoring unhandled event type")
		handled = false
	}

	if handleErr != nil {
		metrics.WebhookEventsTotal.WithLabelValues(ev.Type, "error").Inc()
		log.Error("webhook handling failed", zap.Error(handleErr))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
		return
	}

	outcome := "handled"
	if !handled {
		outcome = "ignored"
	}
	metrics.WebhookEventsTotal.WithLabelValues(ev.Type, outcome).Inc()
	c.JSON(http.StatusOK, gin.H{"received": true, "handled": handled})
}

func metaID(metadata map[string]string, key string) (int64, bool) {
	raw, ok := metadata[key]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
