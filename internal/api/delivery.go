package api

import (
	"net/http"

	"farmdirect-be/internal/middleware"
	"farmdirect-be/internal/order"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listDeliveries(c *gin.Context) {
	p, _ := middleware.Principal(c)

	deliveries, err := h.deliveries.ListFor(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, deliveries)
}

func (h *Handler) getDelivery(c *gin.Context) {
	p, _ := middleware.Principal(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.deliveries.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handler) updateDeliveryStatus(c *gin.Context) {
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

	d, err := h.deliveries.UpdateStatus(c.Request.Context(), p, id, order.Status(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
