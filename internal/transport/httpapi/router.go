// Package httpapi exposes the store over JSON/HTTP with gin.
package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	analyticsports "github.com/Apurer/storekeeper/internal/domains/analytics/ports"
	catalogports "github.com/Apurer/storekeeper/internal/domains/catalog/ports"
	ordersports "github.com/Apurer/storekeeper/internal/domains/orders/ports"
	ownersports "github.com/Apurer/storekeeper/internal/domains/owners/ports"
	apierrors "github.com/Apurer/storekeeper/internal/shared/errors"
)

// Services are the use cases served by the router.
type Services struct {
	Owners    ownersports.Service
	Catalog   catalogports.Service
	Orders    ordersports.Service
	Analytics analyticsports.Service
}

// Option customises the router.
type Option func(*settings)

type settings struct {
	logger      *slog.Logger
	serviceName string
}

// WithLogger logs one line per request.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracing wraps every request in an otelgin span named after serviceName.
func WithTracing(serviceName string) Option {
	return func(s *settings) {
		s.serviceName = serviceName
	}
}

// Handler holds the services behind each route.
type Handler struct {
	services  Services
	responder *apierrors.ChainedResponder
}

// NewRouter registers every route under /v1 plus /healthz.
func NewRouter(services Services, opts ...Option) *gin.Engine {
	cfg := settings{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if cfg.serviceName != "" {
		engine.Use(otelgin.Middleware(cfg.serviceName))
	}
	engine.Use(loggingMiddleware(cfg.logger))

	h := &Handler{
		services:  services,
		responder: apierrors.NewChainedResponder(cfg.logger, apierrors.FromAppError),
	}
	engine.GET("/healthz", h.Health)
	engine.NoRoute(func(c *gin.Context) {
		apierrors.Respond(c, apierrors.ErrNotFound.WithDetail("no route for "+c.Request.Method+" "+c.Request.URL.Path))
	})

	v1 := engine.Group("/v1")
	v1.POST("/owners", h.RegisterOwner)

	owner := v1.Group("/owners/:ownerId", h.loadOwner)
	owner.GET("", h.GetOwner)
	owner.DELETE("", h.DeleteOwner)

	active := owner.Group("", h.requireActive)
	active.PATCH("", h.UpdateOwner)
	active.GET("/store", h.GetStore)

	active.GET("/categories", h.ListCategories)
	active.POST("/categories", h.CreateCategory)
	active.GET("/categories/:categoryId", h.GetCategory)
	active.PATCH("/categories/:categoryId", h.UpdateCategory)
	active.DELETE("/categories/:categoryId", h.DeleteCategory)

	active.GET("/products", h.ListProducts)
	active.POST("/products", h.CreateProduct)
	active.GET("/products/:productId", h.GetProduct)
	active.PATCH("/products/:productId", h.UpdateProduct)
	active.DELETE("/products/:productId", h.DeleteProduct)
	active.POST("/products/:productId/adjustments", h.AdjustProduct)

	active.GET("/orders", h.ListOrders)
	active.POST("/orders", h.PlaceOrder)
	active.GET("/orders/:orderNumber", h.GetOrder)

	active.POST("/baskets", h.BeginBasket)
	active.GET("/baskets/:conversationId", h.GetBasket)
	active.DELETE("/baskets/:conversationId", h.CancelBasket)
	active.PUT("/baskets/:conversationId/selection", h.SelectProducts)
	active.PUT("/baskets/:conversationId/quantities", h.EnterQuantities)
	active.POST("/baskets/:conversationId/confirm", h.ConfirmBasket)

	active.GET("/reports", h.GetReport)

	return engine
}

// Get /healthz
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func loggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("route", c.FullPath()),
			slog.Int("status", status),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
