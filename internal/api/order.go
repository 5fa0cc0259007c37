package api

import (
	"net/http"

	"farmdirect-be/internal/middleware"
	"farmdirect-be/internal/order"

	"github.com/gin-gonic/gin"
)

type placeOrderRequest struct {
	DeliveryAddress string `json:"deliveryAddress" binding:"required"`
	DeliveryNotes   string `json:"deliveryNotes"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) placeOrder(c *gin.Context) {
	p, _ := middleware.Principal(c)

	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orders.PlaceOrder(c.Request.Context(), order.PlaceOrderParams{
		CustomerID:      p.ID,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryNotes:   req.DeliveryNotes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) listOrders(c *gin.Context) {
	p, _ := middleware.Principal(c)

	orders, err := h.orders.ListFor(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *Handler) getOrder(c *gin.Context) {
	p, _ := middleware.Principal(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.orders.GetDetail(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	p, _ := middleware.Principal(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := h.orders.UpdateStatus(c.Request.Context(), p, id, order.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// assignDelivery lets a delivery person claim an unassigned confirmed
// order. First claim wins; later claims get a conflict.
func (h *Handler) assignDelivery(c *gin.Context) {
	p, _ := middleware.Principal(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.AssignDelivery(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
