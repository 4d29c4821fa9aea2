package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/vendor-booking-backend/internal/api"
	"github.com/nekogravitycat/vendor-booking-backend/internal/auth"
	"github.com/nekogravitycat/vendor-booking-backend/internal/booking"
	"github.com/nekogravitycat/vendor-booking-backend/internal/dashboard"
	"github.com/nekogravitycat/vendor-booking-backend/internal/directory"
	"github.com/nekogravitycat/vendor-booking-backend/internal/media"
	"github.com/nekogravitycat/vendor-booking-backend/internal/metrics"
	"github.com/nekogravitycat/vendor-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/vendor-booking-backend/internal/seed"
	"github.com/nekogravitycat/vendor-booking-backend/internal/slot"
)

// locationIndexKey is the Redis GEO set holding vendor live locations.
const locationIndexKey = "vendor_booking:vendor_locations"

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	Logger       *zap.Logger

	// DBPool selects the Postgres backend; nil keeps everything in memory.
	DBPool *pgxpool.Pool
	// Redis backs the vendor location index when set.
	Redis *redis.Client
	// MediaDir roots vendor photo storage; empty keeps photos in memory.
	MediaDir string

	JWTSecret     string
	JWTTTL        time.Duration
	BcryptCost    int
	SeedFixtures  bool
	SweepSchedule string

	// Now is the clock for dashboards and sweeps; nil means time.Now.
	Now func() time.Time
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Metrics    *metrics.Collector
	Sweeper    *booking.Sweeper

	Directory directory.Service
	Slots     slot.Service
	Bookings  booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	collector := metrics.NewCollector()

	// Storage backend
	var (
		dirRepo     directory.Repository
		slotRepo    slot.Repository
		bookingRepo booking.Repository
		locker      slot.Locker
	)
	if cfg.DBPool != nil {
		dirRepo = directory.NewPgxRepository(cfg.DBPool)
		slotRepo = slot.NewPgxRepository(cfg.DBPool)
		bookingRepo = booking.NewPgxRepository(cfg.DBPool)
		locker = slot.NewPgxLocker(cfg.DBPool)
	} else {
		dirRepo = directory.NewMemoryRepository()
		slotRepo = slot.NewMemoryRepository()
		bookingRepo = booking.NewMemoryRepository()
		locker = slot.NewMemoryLocker()
	}

	var photoStore storage.Storage
	if cfg.MediaDir != "" {
		local, err := storage.NewLocalStorage(cfg.MediaDir)
		if err != nil {
			return nil, fmt.Errorf("failed to init media storage: %w", err)
		}
		photoStore = local
	} else {
		photoStore = storage.NewMemoryStorage()
	}

	var index directory.LocationIndex
	if cfg.Redis != nil {
		index = directory.NewRedisLocationIndex(cfg.Redis, locationIndexKey)
	} else {
		index = directory.NewMemoryLocationIndex()
	}

	// Directory Module
	dirService := directory.NewService(dirRepo, index, passwordHasher, logger.Named("directory"), directory.WithClock(now))

	// Slot Module
	slotService := slot.NewService(slotRepo, dirService, logger.Named("slot"))

	// Booking Module
	bookingService := booking.NewService(bookingRepo, slotService, locker, dirService, logger.Named("booking"),
		booking.WithRecorder(collector))

	// Dashboard Module
	dashboardService := dashboard.NewService(slotService, bookingService, dirService, logger.Named("dashboard"))

	// Media Module
	mediaService := media.NewService(photoStore, dirService, logger.Named("media"))

	if cfg.SeedFixtures {
		repos := seed.Repositories{Directory: dirRepo, Slots: slotRepo, Bookings: bookingRepo}
		if _, err := seed.Load(ctx, repos, passwordHasher, logger.Named("seed"), now()); err != nil {
			return nil, fmt.Errorf("failed to seed fixtures: %w", err)
		}
	}
	if err := dirService.SyncLocationIndex(ctx); err != nil {
		logger.Warn("failed to sync vendor location index", zap.Error(err))
	}

	var sweeper *booking.Sweeper
	if cfg.SweepSchedule != "" {
		s, err := booking.NewSweeper(bookingService, cfg.SweepSchedule, logger.Named("sweeper"), booking.WithSweepClock(now))
		if err != nil {
			return nil, err
		}
		sweeper = s
	}

	// API Router Config
	routerParams := api.Config{
		IsProduction:     cfg.IsProduction,
		ProdOrigins:      cfg.ProdOrigins,
		Logger:           logger.Named("http"),
		Metrics:          collector,
		Now:              now,
		DirectoryService: dirService,
		SlotService:      slotService,
		BookingService:   bookingService,
		DashboardService: dashboardService,
		MediaService:     mediaService,
		JWTManager:       jwtManager,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Metrics:    collector,
		Sweeper:    sweeper,
		Directory:  dirService,
		Slots:      slotService,
		Bookings:   bookingService,
	}, nil
}
