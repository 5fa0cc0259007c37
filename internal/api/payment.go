package api

import (
	"net/http"

	"farmdirect-be/internal/middleware"
	"farmdirect-be/internal/payment"

	"github.com/gin-gonic/gin"
)

type checkoutRequest struct {
	OrderID     int64   `json:"orderId" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	TipAmount   float64 `json:"tipAmount"`
	Email       string  `json:"email" binding:"required,email"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

type subscribeRequest struct {
	Email string  `json:"email" binding:"required,email"`
	Tier  string  `json:"tier" binding:"required"`
	Price float64 `json:"price" binding:"required"`
}

func (h *Handler) checkout(c *gin.Context) {
	p, _ := middleware.Principal(c)

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.payments.InitiateCheckout(c.Request.Context(), p, payment.CheckoutParams{
		OrderID:     req.OrderID,
		Amount:      req.Amount,
		TipAmount:   req.TipAmount,
		Email:       req.Email,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	pay, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pay)
}

func (h *Handler) listPaymentsByOrder(c *gin.Context) {
	orderID, ok := pathID(c, "orderId")
	if !ok {
		return
	}

	payments, err := h.payments.ListPaymentsByOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *Handler) subscribe(c *gin.Context) {
	p, _ := middleware.Principal(c)

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.payments.InitiateSubscription(c.Request.Context(), payment.SubscriptionParams{
		FarmerID: p.ID,
		Email:    req.Email,
		Tier:     payment.Tier(req.Tier),
		Price:    req.Price,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getFarmerSubscription(c *gin.Context) {
	p, _ := middleware.Principal(c)

	farmerID, ok := pathID(c, "farmerId")
	if !ok {
		return
	}
	if farmerID != p.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "subscriptions are private to their farmer"})
		return
	}

	sub, err := h.payments.GetSubscriptionByFarmer(c.Request.Context(), farmerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) listSubscriptionInvoices(c *gin.Context) {
	p, _ := middleware.Principal(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Billing history is private to the subscription's farmer.
	own, err := h.payments.GetSubscriptionByFarmer(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if own.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "subscriptions are private to their farmer"})
		return
	}

	invoices, err := h.payments.ListSubscriptionInvoices(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *Handler) cancelSubscription(c *gin.Context) {
	p, _ := middleware.Principal(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Callers may only cancel their own subscription.
	own, err := h.payments.GetSubscriptionByFarmer(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if own.ID != id {
		c.JSON(http.StatusForbidden, gin.H{"error": "subscriptions are private to their farmer"})
		return
	}

	sub, err := h.payments.CancelSubscription(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
