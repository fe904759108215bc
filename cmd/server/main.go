package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/multicommerce/backend/internal/application/catalog"
	orderapp "github.com/multicommerce/backend/internal/application/order"
	shippingapp "github.com/multicommerce/backend/internal/application/shipping"
	"github.com/multicommerce/backend/internal/infrastructure/cache"
	"github.com/multicommerce/backend/internal/infrastructure/config"
	"github.com/multicommerce/backend/internal/infrastructure/logger"
	"github.com/multicommerce/backend/internal/infrastructure/persistence"
	"github.com/multicommerce/backend/internal/infrastructure/scheduler"
	"github.com/multicommerce/backend/internal/infrastructure/telemetry"
	"github.com/multicommerce/backend/internal/interfaces/http/handler"
	"github.com/multicommerce/backend/internal/interfaces/http/middleware"
	"github.com/multicommerce/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Commerce Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	areaRepo := persistence.NewGormShippingAreaRepository(db.DB)
	courierRepo := persistence.NewGormCourierRepository(db.DB)
	reserveOrderRepo := persistence.NewGormReserveOrderRepository(db.DB)

	// Reservation sweep locking: Redis when reachable, in-process otherwise.
	// The in-process fallback still protects against overlapping sweeps
	// within a single instance.
	var locker orderapp.ReservationLocker
	redisLocker, err := cache.NewRedisReservationLocker(&cfg.Redis, cfg.Reservation.LockTTL)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory reservation locks",
			zap.String("addr", cfg.Redis.Addr()),
			zap.Error(err),
		)
		locker = cache.NewInMemoryReservationLocker(cfg.Reservation.LockTTL)
	} else {
		defer func() {
			if err := redisLocker.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		locker = redisLocker
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize application services
	reconciler := orderapp.NewStockReconciler(productRepo, orderapp.ReconcilerConfig{
		StrictSKU:   cfg.Reservation.StrictSKU,
		StrictStock: cfg.Reservation.StrictStock,
	}, log)

	productService := catalogapp.NewProductService(productRepo)
	areaService := shippingapp.NewAreaService(areaRepo, log)
	courierService := shippingapp.NewCourierService(courierRepo)
	costService := shippingapp.NewCostService(courierRepo, areaRepo, log)
	reserveOrderService := orderapp.NewReserveOrderService(reserveOrderRepo, reconciler, log)
	expirationService := orderapp.NewExpirationService(
		reserveOrderRepo, reconciler, locker, cfg.Reservation.RetentionPeriod(), log)

	// Initialize the expiry sweep scheduler
	var sweeper *scheduler.SweepScheduler
	if cfg.Scheduler.Enabled {
		cronHour, cronMinute, err := scheduler.ParseCronSchedule(cfg.Scheduler.SweepCronSchedule)
		if err != nil {
			log.Fatal("Invalid sweep cron schedule",
				zap.String("schedule", cfg.Scheduler.SweepCronSchedule),
				zap.Error(err),
			)
		}
		sweeper = scheduler.NewSweepScheduler(scheduler.SweepSchedulerConfig{
			Enabled:    true,
			CronHour:   cronHour,
			CronMinute: cronMinute,
			JobTimeout: cfg.Scheduler.JobTimeout,
		}, expirationService, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep scheduler", zap.Error(err))
		}
	} else {
		log.Info("Expiry sweep scheduler disabled")
	}

	// Initialize handlers
	productHandler := handler.NewProductHandler(productService)
	areaHandler := handler.NewShippingAreaHandler(areaService)
	courierHandler := handler.NewCourierHandler(courierService)
	costHandler := handler.NewShippingCostHandler(costService)
	reserveOrderHandler := handler.NewReserveOrderHandler(reserveOrderService)
	systemHandler := handler.NewSystemHandler(sweeper)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, tracing, panic recovery, request
	// logging, security headers, CORS, body limit.
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TraceAttributes())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/sku/:sku", productHandler.GetBySKU)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)
	catalogRoutes.POST("/products/:id/variants", productHandler.AddVariant)

	shippingRoutes := router.NewDomainGroup("shipping", "/shipping")
	shippingRoutes.POST("/areas", areaHandler.Create)
	shippingRoutes.GET("/areas", areaHandler.List)
	shippingRoutes.POST("/areas/resolve", areaHandler.Resolve)
	shippingRoutes.GET("/areas/:id", areaHandler.GetByID)
	shippingRoutes.PUT("/areas/:id", areaHandler.Update)
	shippingRoutes.DELETE("/areas/:id", areaHandler.Delete)
	shippingRoutes.POST("/areas/:id/set-default", areaHandler.SetDefault)
	shippingRoutes.POST("/couriers", courierHandler.Create)
	shippingRoutes.GET("/couriers", courierHandler.List)
	shippingRoutes.GET("/couriers/:id", courierHandler.GetByID)
	shippingRoutes.DELETE("/couriers/:id", courierHandler.Delete)
	shippingRoutes.POST("/couriers/:id/slots", courierHandler.AddSlot)
	shippingRoutes.PUT("/couriers/:id/slots/:slot_id/status", courierHandler.SetSlotStatus)
	shippingRoutes.POST("/costs/calculate", costHandler.Calculate)

	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("/reservations", reserveOrderHandler.Create)
	orderRoutes.GET("/reservations", reserveOrderHandler.List)
	orderRoutes.GET("/reservations/:id", reserveOrderHandler.GetByID)
	orderRoutes.DELETE("/reservations/:id", reserveOrderHandler.Delete)
	orderRoutes.PUT("/reservations/:id/lines", reserveOrderHandler.UpdateLineQuantity)
	orderRoutes.POST("/reservations/:id/lines/remove", reserveOrderHandler.RemoveLines)
	orderRoutes.POST("/reservations/:id/convert", reserveOrderHandler.Convert)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/sweep/status", systemHandler.GetSweepStatus)
	systemRoutes.POST("/sweep/run", systemHandler.TriggerSweep)

	r.Register(catalogRoutes).
		Register(shippingRoutes).
		Register(orderRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sweeper != nil {
		if err := sweeper.Stop(ctx); err != nil {
			log.Error("Error stopping sweep scheduler", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if err := tracerProvider.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
