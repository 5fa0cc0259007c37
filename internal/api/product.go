package api

import (
	"net/http"
	"strconv"

	"farmdirect-be/internal/middleware"
	"farmdirect-be/internal/product"

	"github.com/gin-gonic/gin"
)

type createProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required"`
	Unit        string   `json:"unit" binding:"required"`
	ImageURLs   []string `json:"imageUrls"`
	Stock       int      `json:"stock"`
	CategoryID  int64    `json:"categoryId" binding:"required"`
	Organic     bool     `json:"organic"`
	Featured    bool     `json:"featured"`
}

type updateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Unit        *string  `json:"unit"`
	ImageURLs   []string `json:"imageUrls"`
	Stock       *int     `json:"stock"`
	CategoryID  *int64   `json:"categoryId"`
	Organic     *bool    `json:"organic"`
	Featured    *bool    `json:"featured"`
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (h *Handler) listProducts(c *gin.Context) {
	var opts product.ListOptions

	if v := c.Query("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category filter"})
			return
		}
		opts.CategoryID = &id
	}
	if v := c.Query("featured"); v != "" {
		featured := v == "true"
		opts.Featured = &featured
	}
	opts.Limit, _ = strconv.Atoi(c.Query("limit"))
	opts.Offset, _ = strconv.Atoi(c.Query("offset"))

	products, err := h.products.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) listFeaturedProducts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	products, err := h.products.ListFeatured(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) listFarmerProducts(c *gin.Context) {
	p, _ := middleware.Principal(c)

	products, err := h.products.ListByFarmer(c.Request.Context(), p.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) createProduct(c *gin.Context) {
	p, _ := middleware.Principal(c)

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.products.Create(c.Request.Context(), p.ID, product.NewProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Unit:        req.Unit,
		ImageURLs:   req.ImageURLs,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Organic:     req.Organic,
		Featured:    req.Featured,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) updateProduct(c *gin.Context) {
	p, _ := middleware.Principal(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.products.Update(c.Request.Context(), p.ID, id, product.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Unit:        req.Unit,
		ImageURLs:   req.ImageURLs,
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		Organic:     req.Organic,
		Featured:    req.Featured,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	p, _ := middleware.Principal(c)

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), p.ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
