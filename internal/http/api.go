package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"query-desk/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth            service.AuthService
	queries         service.QueryService
	dashboard       service.DashboardService
	logger          logrus.FieldLogger
	dashboardSecret string
	metrics         *metrics
}

// NewHandler builds the HTTP boundary. When dashboardSecret is non-empty the users overview
// requires a matching "auth" header.
func NewHandler(auth service.AuthService, queries service.QueryService, dashboard service.DashboardService, logger logrus.FieldLogger, dashboardSecret string) *Handler {
	return &Handler{
		auth:            auth,
		queries:         queries,
		dashboard:       dashboard,
		logger:          logger,
		dashboardSecret: dashboardSecret,
		metrics:         newMetrics(),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))
	router.Use(h.metrics.middleware())

	router.GET("/metrics", gin.WrapH(h.metrics.handler()))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)

		api.GET("/users", sharedSecret(h.dashboardSecret), h.overview)

		query := api.Group("/query")
		query.POST("", h.submitQuery)
		query.GET("", h.listQueries)
		query.PATCH("/:id", h.updateQuery)
		query.DELETE("/:id", h.deleteQuery)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Auth, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
