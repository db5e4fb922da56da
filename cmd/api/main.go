package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"finboard/internal/cache"
	"finboard/internal/config"
	"finboard/internal/database"
	"finboard/internal/events"
	"finboard/internal/handlers"
	"finboard/internal/jobs"
	"finboard/internal/logger"
	"finboard/internal/middleware"
	"finboard/internal/models"
	"finboard/internal/services"
	"finboard/internal/validator"

	_ "finboard/internal/docs" // Import swagger docs
)

const shutdownTimeout = 10 * time.Second

// @title           Finboard API
// @version         1.0
// @description     Finboard is a personal finance dashboard: record income and expenses, then read totals, monthly savings, comparisons, category breakdowns and projections.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

// feed is the change notification wiring chosen by CHANGE_FEED.
type feed struct {
	// publisher receives events raised by this instance.
	publisher events.Publisher
	// storePublisher is what the transaction service publishes to. With the
	// postgres feed the database trigger does the publishing instead.
	storePublisher events.Publisher
	// consumers run for the lifetime of the server.
	consumers []func(ctx context.Context) error
	closers   []func() error
}

func newFeed(cfg *config.Config, dbConfig *database.Config, hub *events.Hub) (*feed, error) {
	log := logger.Named("feed")

	switch cfg.ChangeFeed {
	case config.FeedAMQP:
		broker, err := events.NewAMQPBroker(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to connect change feed broker: %w", err)
		}
		relay := events.NewRelay(hub, broker)
		log.Infow("Using AMQP change feed", "exchange", cfg.AMQPExchange)
		return &feed{
			publisher:      relay,
			storePublisher: relay,
			consumers:      []func(context.Context) error{relay.Run},
			closers:        []func() error{broker.Close},
		}, nil

	case config.FeedPostgres:
		if dbConfig.Driver != database.DriverPostgres {
			return nil, fmt.Errorf("CHANGE_FEED=postgres requires DB_DRIVER=postgres")
		}
		listener := events.NewPGListener(dbConfig.URL(), cfg.PGNotifyChannel, hub)
		log.Infow("Using postgres change feed", "channel", cfg.PGNotifyChannel)
		return &feed{
			publisher:      hub,
			storePublisher: events.Discard,
			consumers:      []func(context.Context) error{listener.Run},
		}, nil

	default:
		log.Info("Using in-process change feed")
		return &feed{publisher: hub, storePublisher: hub}, nil
	}
}

func run(ctx context.Context) error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig(appConfig)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	hub := events.NewHub()
	defer hub.Close()

	changeFeed, err := newFeed(appConfig, dbConfig, hub)
	if err != nil {
		return err
	}
	defer func() {
		for _, closeFn := range changeFeed.closers {
			if err := closeFn(); err != nil {
				log.Warnf("change feed close error: %v", err)
			}
		}
	}()

	app := newApplication(dbManager.DB(), hub, changeFeed, appConfig)

	scheduler := jobs.NewScheduler(time.UTC)
	if err := scheduler.AddCacheSweep(appConfig.CacheSweepSchedule, app.cacheRegistry); err != nil {
		return err
	}

	server := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Starting finboard server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		// Open event streams only end when their subscriptions close.
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error { return app.snapshots.Run(gctx, hub) })
	g.Go(func() error { return scheduler.Run(gctx) })

	for _, consume := range changeFeed.consumers {
		consume := consume
		g.Go(func() error { return consume(gctx) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// application is the wired service graph behind the HTTP router.
type application struct {
	router        *gin.Engine
	snapshots     services.SnapshotServicer
	cacheRegistry *cache.Registry
}

func newApplication(db *gorm.DB, hub *events.Hub, changeFeed *feed, cfg *config.Config) *application {
	// Initialize services
	snapshotStore := cache.NewLRUCache[[]models.Transaction](cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL)

	// Writers drop their own cached snapshot before the event goes out, so
	// a dashboard read right after a create never sees the old list.
	var snapshotService services.SnapshotServicer
	storePublisher := events.PublisherFunc(func(ctx context.Context, ev events.ChangeEvent) error {
		snapshotService.Invalidate(ev.UserID)
		return changeFeed.storePublisher.Publish(ctx, ev)
	})

	userService := services.NewUserService(db)
	auditService := services.NewAuditService(db)
	transactionService := services.NewTransactionService(db, storePublisher)
	snapshotService = services.NewSnapshotService(transactionService, snapshotStore)
	dashboardService := services.NewDashboardService(snapshotService)
	exportService := services.NewExportService(snapshotService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, exportService, hub, auditService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	webhookHandler := handlers.NewWebhookHandler(changeFeed.publisher)

	return &application{
		router:        newRouter(authHandler, transactionHandler, dashboardHandler, webhookHandler, cfg.WebhookAPIKey),
		snapshots:     snapshotService,
		cacheRegistry: cache.NewRegistry(snapshotStore),
	}
}

func newRouter(
	authHandler *handlers.AuthHandler,
	transactionHandler *handlers.TransactionHandler,
	dashboardHandler *handlers.DashboardHandler,
	webhookHandler *handlers.WebhookHandler,
	webhookAPIKey string,
) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogging())
	// Also recovers panics, inside logging so the 500 is recorded.
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Machine-to-machine routes
	hooks := v1.Group("/hooks")
	hooks.Use(middleware.WebhookAuthMiddleware(webhookAPIKey))
	hooks.POST("/transactions-changed", webhookHandler.TransactionsChanged)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/categories", transactionHandler.ListCategories)
	transactions.GET("/export", transactionHandler.ExportTransactions)
	transactions.GET("/changes", transactionHandler.StreamChanges)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)

	// Dashboard routes
	dashboard := protected.Group("/dashboard")
	dashboard.GET("", dashboardHandler.GetSummary)
	dashboard.GET("/totals", dashboardHandler.GetTotals)
	dashboard.GET("/running-balance", dashboardHandler.GetRunningBalance)
	dashboard.GET("/monthly", dashboardHandler.GetMonthly)
	dashboard.GET("/comparison", dashboardHandler.GetComparison)
	dashboard.GET("/categories", dashboardHandler.GetCategories)
	dashboard.GET("/projection", dashboardHandler.GetProjection)
	dashboard.POST("/savings-goal", dashboardHandler.PlanSavingsGoal)

	return router
}
