package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/vendor-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/vendor-booking-backend/internal/dashboard"
	dashboardHttp "github.com/nekogravitycat/vendor-booking-backend/internal/dashboard/http"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	dirHttp "github.com/nekogravitycat/vendor-booking-backend/internal/directory/http"
	"github.com/nekogravitycat/vendor-booking-backend/internal/logging"
	"github.com/nekogravitycat/vendor-booking-backend/internal/media"
	mediaHttp "github.com/nekogravitycat/vendor-booking-backend/internal/media/http"
	"github.com/nekogravitycat/vendor-booking-backend/internal/metrics"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
	slotHttp "github.com/nekogravitycat/vendor-booking-backend/internal/slot/http"
)

// Config holds the dependencies needed to build the router.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	Logger  *zap.Logger
	Metrics *metrics.Collector
	// Now is the clock for dashboard views; nil means time.Now.
	Now func() time.Time

	DirectoryService directory.Service
	SlotService      slot.Service
	BookingService   booking.Service
	DashboardService dashboard.Service
	MediaService     media.Service
	JWTManager       *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs one structured line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logging.GinLogger(logger), logging.GinRecovery(logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		config.AllowOrigins = []string{
			"http://localhost:5173", // Vite dev server
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// selfMiddleware: Restricts per-account routes to the account owner.
	selfMiddleware := RequireSelf("id")
	vendorMiddleware := auth.RequireRole(string(directory.RoleVendor))
	customerMiddleware := auth.RequireRole(string(directory.RoleCustomer))

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	dirHandler := dirHttp.NewHandler(cfg.DirectoryService, cfg.JWTManager)
	slotHandler := slotHttp.NewHandler(cfg.SlotService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	dashboardHandler := dashboardHttp.NewHandler(cfg.DashboardService, cfg.Now)
	mediaHandler := mediaHttp.NewHandler(cfg.MediaService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		dirHttp.RegisterRoutes(v1, dirHandler, authMiddleware, selfMiddleware)
		slotHttp.RegisterRoutes(v1, slotHandler, authMiddleware, vendorMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, customerMiddleware, selfMiddleware)
		dashboardHttp.RegisterRoutes(v1, dashboardHandler, authMiddleware, selfMiddleware)
		mediaHttp.RegisterRoutes(v1, mediaHandler, authMiddleware, selfMiddleware)
	}

	return r
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
