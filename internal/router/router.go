package router

import (
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"

	"pharmapos/internal/handler"
	"pharmapos/internal/metrics"
	"pharmapos/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
// rateLimiter may be nil to disable request limiting.
func Setup(
	log *zap.Logger,
	corsOrigins []string,
	rateLimiter *limiter.Limiter,
	m *metrics.Metrics,
	invoiceH *handler.InvoiceHandler,
	creditNoteH *handler.CreditNoteHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks and scraping sit outside the limiter
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/api/v1")
	if rateLimiter != nil {
		v1.Use(middleware.RateLimit(rateLimiter))
	}

	v1.POST("/tax/quote", invoiceH.Quote)

	invoices := v1.Group("/invoices")
	invoices.POST("", invoiceH.Create)
	invoices.GET("", invoiceH.List)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.PUT("/:id/lines", invoiceH.ReplaceLines)
	invoices.POST("/:id/issue", invoiceH.Issue)
	invoices.POST("/:id/cancel", invoiceH.Cancel)
	invoices.GET("/:id/export", invoiceH.Export)
	invoices.POST("/:id/credit-notes", creditNoteH.Create)
	invoices.GET("/:id/credit-notes", creditNoteH.ListByInvoice)

	creditNotes := v1.Group("/credit-notes")
	creditNotes.GET("/:id", creditNoteH.GetByID)

	return r
}
