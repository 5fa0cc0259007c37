// Package api wires the domain services onto HTTP routes.
package api

import (
	"net/http"
	"time"

	"farmdirect-be/internal/cart"
	"farmdirect-be/internal/category"
	"farmdirect-be/internal/delivery"
	"farmdirect-be/internal/middleware"
	"farmdirect-be/internal/order"
	"farmdirect-be/internal/payment"
	"farmdirect-be/internal/payment/webhook"
	"farmdirect-be/internal/product"
	"farmdirect-be/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	jwtSecret string

	users      user.Service
	categories category.Service
	products   product.Service
	carts      cart.Service
	orders     order.Service
	deliveries delivery.Service
	payments   payment.Service
	webhook    *webhook.Handler
}

type Services struct {
	JWTSecret string

	Users      user.Service
	Categories category.Service
	Products   product.Service
	Carts      cart.Service
	Orders     order.Service
	Deliveries delivery.Service
	Payments   payment.Service
	Webhook    *webhook.Handler
}

func NewHandler(s Services) *Handler {
	return &Handler{
		jwtSecret:  s.JWTSecret,
		users:      s.Users,
		categories: s.Categories,
		products:   s.Products,
		carts:      s.Carts,
		orders:     s.Orders,
		deliveries: s.Deliveries,
		payments:   s.Payments,
		webhook:    s.Webhook,
	}
}

// SetupRoutes mounts every route on the given engine.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging())
	router.Use(middleware.Metrics())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.OptionalAuth(h.jwtSecret))
	api.Use(middleware.RateLimit())

	api.POST("/register", h.register)
	api.POST("/login", h.login)
	api.GET("/me", middleware.RequireAuth(h.jwtSecret), h.me)

	api.GET("/categories", h.listCategories)
	api.POST("/categories", middleware.RequireAuth(h.jwtSecret), h.addCategory)

	api.GET("/products", h.listProducts)
	api.GET("/products/featured", h.listFeaturedProducts)
	api.GET("/products/:id", h.getProduct)

	farmer := api.Group("", middleware.RequireAuth(h.jwtSecret), middleware.RequireRole(user.RoleFarmer))
	farmer.GET("/farmer/products", h.listFarmerProducts)
	farmer.POST("/products", h.createProduct)
	farmer.PUT("/products/:id", h.updateProduct)
	farmer.DELETE("/products/:id", h.deleteProduct)

	authed := api.Group("", middleware.RequireAuth(h.jwtSecret))

	customer := authed.Group("", middleware.RequireRole(user.RoleCustomer))
	customer.GET("/cart", h.listCart)
	customer.POST("/cart", h.addCartItem)
	customer.PUT("/cart/:id", h.updateCartItem)
	customer.DELETE("/cart/:id", h.removeCartItem)
	customer.DELETE("/cart", h.clearCart)
	customer.POST("/orders", h.placeOrder)
	customer.POST("/payments/checkout", h.checkout)

	authed.GET("/orders", h.listOrders)
	authed.GET("/orders/:id", h.getOrder)
	authed.PATCH("/orders/:id/status", h.updateOrderStatus)
	authed.PATCH("/orders/:id/delivery", middleware.RequireRole(user.RoleDelivery), h.assignDelivery)

	courier := authed.Group("", middleware.RequireRole(user.RoleDelivery))
	courier.GET("/deliveries", h.listDeliveries)
	courier.GET("/deliveries/:id", h.getDelivery)
	courier.PATCH("/deliveries/:id/status", h.updateDeliveryStatus)

	authed.GET("/payments/:id", h.getPayment)
	authed.GET("/payments/order/:orderId", h.listPaymentsByOrder)
	authed.POST("/payments/subscription", middleware.RequireRole(user.RoleFarmer), h.subscribe)
	authed.GET("/payments/subscription/farmer/:farmerId", h.getFarmerSubscription)
	authed.POST("/payments/subscription/:id/cancel", middleware.RequireRole(user.RoleFarmer), h.cancelSubscription)
	authed.GET("/payments/subscription/:id/invoices", middleware.RequireRole(user.RoleFarmer), h.listSubscriptionInvoices)

	api.POST("/payments/webhook", h.webhook.HandleStripe)
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().Unix()})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready", "time": time.Now().Unix()})
}
