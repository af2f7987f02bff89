package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/payamancoders/trustcheck/internal/config"
	"github.com/payamancoders/trustcheck/internal/domain"
	"github.com/payamancoders/trustcheck/internal/http/handler"
	httpmiddleware "github.com/payamancoders/trustcheck/internal/http/middleware"
	"github.com/payamancoders/trustcheck/internal/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, logger *zap.Logger, verificationHandler *handler.VerificationHandler, auth *httpmiddleware.Auth, rateLimiter *middleware.RateLimiter, reportLimiter *middleware.ReportRateLimiter) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/healthz", verificationHandler.Health)

	api := r.Group("/api", auth.Authenticate)
	{
		employer := api.Group("/employer", httpmiddleware.RequireRole(domain.RoleEmployer))
		{
			employer.POST("/verification", verificationHandler.SubmitVerification)
			employer.GET("/verification", verificationHandler.GetVerification)
		}

		admin := api.Group("/admin", httpmiddleware.RequireRole(domain.RoleAdmin))
		{
			admin.GET("/employers", verificationHandler.ListEmployers)
			admin.POST("/employers/review", verificationHandler.ReviewEmployer)
			admin.POST("/employers/:id/flags/:flagId/resolve", verificationHandler.ResolveFlag)
		}

		reports := []gin.HandlerFunc{}
		if reportLimiter != nil {
			reports = append(reports, reportLimiter.Handler())
		}
		reports = append(reports, verificationHandler.ReportEmployer)
		api.POST("/employers/report", reports...)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "error_description": "Route not found."})
	})

	return r
}
