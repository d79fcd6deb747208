package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"bouw-backoffice/internal/cache"
	"bouw-backoffice/internal/handler"
	"bouw-backoffice/internal/metrics"
	"bouw-backoffice/internal/middleware"
	"bouw-backoffice/internal/model"
	"bouw-backoffice/internal/notify"
	"bouw-backoffice/internal/repository"
	"bouw-backoffice/internal/service"
	"bouw-backoffice/internal/ws"
	"bouw-backoffice/pkg/config"
	"bouw-backoffice/pkg/database"
	"bouw-backoffice/pkg/jwt"
	"bouw-backoffice/pkg/logger"
	"bouw-backoffice/pkg/objectstore"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// 1. Load config and logger
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New(cfg.Env)
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DSN(), log, !cfg.IsProduction())
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	if cfg.RunMigrations {
		if err := database.Migrate(db); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
	}

	// 3. Repositories
	txManager := repository.NewTxManager(db)
	productRepo := repository.NewProductRepo(db)
	locationRepo := repository.NewLocationRepo(db)
	stockRepo := repository.NewStockRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	projectRepo := repository.NewProjectRepo(db)
	projectCodeRepo := repository.NewProjectWorkCodeRepo(db)
	workCodeRepo := repository.NewWorkCodeRepo(db)
	timeRepo := repository.NewTimeRegistrationRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	if err := seedPrivilegesRolesAndAdmin(ctx, cfg, privilegeRepo, roleRepo, userRepo, log); err != nil {
		log.Fatal("seeding failed", zap.Error(err))
	}

	// 4. Work-code catalog cache: Redis when configured, in-process otherwise
	codeCache := cache.NewMemoryWorkCodeCache(cfg.WorkCodeCacheTTL)
	if cfg.RedisAddr != "" {
		rdb, err := database.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Warn("redis unavailable, using in-memory work code cache", zap.Error(err))
		} else {
			defer rdb.Close()
			codeCache = cache.NewRedisWorkCodeCache(rdb, cfg.WorkCodeCacheTTL)
		}
	}

	var presigner objectstore.Presigner
	if cfg.S3Bucket != "" {
		presigner, err = objectstore.NewS3Presigner(ctx, cfg.S3Bucket, cfg.S3PresignExpiry)
		if err != nil {
			log.Warn("object storage disabled", zap.Error(err))
			presigner = nil
		}
	}

	// 5. WebSocket hub and notification dispatcher
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	dispatcher := notify.NewDispatcher(userRepo, notificationRepo, wsHub, log, cfg.NotificationBuffer)
	dispatcher.Start(ctx)

	// 6. Services
	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTExpiry)

	bookingService := service.NewBookingService(txManager, productRepo, locationRepo, stockRepo, txRepo, dispatcher, wsHub, log)
	materialService := service.NewMaterialService(productRepo, locationRepo, stockRepo)
	workCodeService := service.NewWorkCodeService(txManager, workCodeRepo, projectRepo, projectCodeRepo, codeCache, log)
	timeService := service.NewTimeRegistrationService(txManager, timeRepo, projectRepo, workCodeService, bookingService, log)
	invService := service.NewInventoryService(productRepo, locationRepo, presigner, wsHub)
	exportService := service.NewExportService(stockRepo)
	dashService := service.NewDashboardService(txRepo)
	notificationService := service.NewNotificationService(notificationRepo)
	authService := service.NewAuthService(userRepo, tokens, wsHub)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	// 7. Handlers
	materialHandler := handler.NewMaterialHandler(materialService)
	stockHandler := handler.NewStockHandler(bookingService, exportService)
	txHandler := handler.NewTransactionHandler(bookingService)
	workCodeHandler := handler.NewWorkCodeHandler(workCodeService)
	projectHandler := handler.NewProjectHandler(projectRepo)
	timeHandler := handler.NewTimeRegistrationHandler(timeService)
	invHandler := handler.NewInventoryHandler(invService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)

	// 8. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "Bouw Backoffice v1.0",
	})

	app.Use(recover.New())
	app.Use(logger.RequestLogger(log))
	app.Use(cors.New())
	if cfg.MetricsEnabled {
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy"})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_users": wsHub.ConnectedUsers()})
	})

	requireAuth := middleware.RequireAuth(userRepo, tokens)
	loginLimiter := middleware.NewIPRateLimiter(cfg.LoginRatePerMin)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", loginLimiter.Handler(), authHandler.Login)
	auth.Post("/reset-password", loginLimiter.Handler(), authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Material selection
	protected.Get("/materials/search", materialHandler.Search)
	protected.Get("/materials/scan", materialHandler.Scan)
	protected.Get("/materials/browse", materialHandler.Browse)
	protected.Post("/materials/confirm", materialHandler.Confirm)

	// Stock booking
	protected.Get("/stock/bookable", middleware.RequirePrivilege(model.PrivStockBook), materialHandler.Bookable)
	protected.Post("/stock/book-out", middleware.RequirePrivilege(model.PrivStockBook), stockHandler.BookOut)
	protected.Post("/stock/book-in", middleware.RequirePrivilege(model.PrivStockMove), stockHandler.BookIn)
	protected.Post("/stock/move", middleware.RequirePrivilege(model.PrivStockMove), stockHandler.Move)
	protected.Get("/stock/export", middleware.RequireAnyPrivilege(model.PrivDashboardView, model.PrivTransactionView), stockHandler.Export)

	// Ledger
	protected.Get("/transactions", middleware.RequirePrivilege(model.PrivTransactionView), txHandler.GetTransactions)
	protected.Get("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionView), txHandler.GetTransaction)
	protected.Put("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionUpdate), txHandler.UpdateTransaction)
	protected.Delete("/transactions/:id", middleware.RequirePrivilege(model.PrivTransactionDelete), txHandler.DeleteTransaction)

	// Projects and work codes
	protected.Get("/projects", projectHandler.GetProjects)
	protected.Post("/projects", middleware.RequirePrivilege(model.PrivProjectManage), projectHandler.CreateProject)
	protected.Get("/projects/:id/work-codes/available", workCodeHandler.Available)
	protected.Put("/projects/:id/work-codes", middleware.RequirePrivilege(model.PrivWorkCodeManage), workCodeHandler.SetProjectCodes)
	protected.Get("/work-codes", workCodeHandler.GetWorkCodes)
	protected.Post("/work-codes", middleware.RequirePrivilege(model.PrivWorkCodeManage), workCodeHandler.CreateWorkCode)
	protected.Put("/work-codes/:id", middleware.RequirePrivilege(model.PrivWorkCodeManage), workCodeHandler.UpdateWorkCode)

	// Time registration
	protected.Post("/time-registrations", middleware.RequirePrivilege(model.PrivTimeRegister), timeHandler.Submit)
	protected.Get("/time-registrations", timeHandler.List)

	// Master data
	protected.Get("/products", invHandler.GetProducts)
	protected.Get("/products/:id", invHandler.GetProduct)
	protected.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), invHandler.CreateProduct)
	protected.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), invHandler.UpdateProduct)
	protected.Post("/products/:id/photo-upload-url", middleware.RequirePrivilege(model.PrivProductUpdate), invHandler.PhotoUploadURL)
	protected.Get("/locations", invHandler.GetLocations)
	protected.Post("/locations", middleware.RequirePrivilege(model.PrivLocationManage), invHandler.CreateLocation)

	// Notifications and dashboard
	protected.Get("/notifications", notificationHandler.GetNotifications)
	protected.Put("/notifications/:id/read", notificationHandler.MarkRead)
	protected.Get("/dashboard/stats", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetStockMovement)

	// User management
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserUpdate), userHandler.UpdateUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege(model.PrivUserPrivileges), userHandler.UpdateUserPrivileges)
	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, requireAuth)
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(string)
		client := &ws.Client{Conn: c, UserID: userID}

		select {
		case wsHub.Register <- client:
		case <-ctx.Done():
			return
		}
		defer func() {
			select {
			case wsHub.Unregister <- client:
			case <-ctx.Done():
			}
		}()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 9. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	cancel()
	dispatcher.Wait()

	log.Info("server exited")
}
