package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"hotel-portfolio-api/internal/config"
	"hotel-portfolio-api/internal/handler"
	"hotel-portfolio-api/internal/middleware"
	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/internal/service"
	"hotel-portfolio-api/internal/ws"
	"hotel-portfolio-api/pkg/database"
	"hotel-portfolio-api/pkg/jwt"
	"hotel-portfolio-api/pkg/logger"
	"hotel-portfolio-api/pkg/password"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Config and logging
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)
	if !cfg.EnvFileLoaded {
		log.Warn(".env file not found, using process environment")
	}

	// 2. Database
	db, err := database.ConnectDB(cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.UserAccess{},
		&model.Portfolio{},
		&model.Property{},
		&model.Audit{},
		&model.PendingAction{},
	); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Repositories
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)
	accessRepo := repository.NewUserAccessRepo(db)
	portfolioRepo := repository.NewPortfolioRepo(db)
	propertyRepo := repository.NewPropertyRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	actionRepo := repository.NewPendingActionRepo(db)

	seedRolesAndAdmin(ctx, cfg, roleRepo, userRepo, log)

	// 4. WebSocket hub
	hub := ws.NewHub(log)
	go hub.Run(ctx)

	// 5. Services
	tx := database.NewTransactor(db)
	passwords := password.NewBcryptVerifier()
	tokens, err := jwt.NewManager(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("JWT_SECRET must be set")
	}

	permissions := service.NewPermissionService(accessRepo, userRepo, tx, passwords, log)
	authService := service.NewAuthService(userRepo, tokens, passwords, log)
	userService := service.NewUserService(userRepo, roleRepo, permissions, log)
	propertyService := service.NewPropertyService(propertyRepo, portfolioRepo, permissions, tx, log)
	portfolioService := service.NewPortfolioService(portfolioRepo, permissions, tx, log)
	auditService := service.NewAuditService(auditRepo, permissions, log)
	actionService := service.NewPendingActionService(
		actionRepo,
		permissions,
		service.NewActionExecutor(propertyService, auditService),
		propertyRepo,
		portfolioRepo,
		auditRepo,
		userRepo,
		service.NewHubNotifier(hub),
		log,
	)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, permissions)
	roleHandler := handler.NewRoleHandler(roleRepo, permissions)
	propertyHandler := handler.NewPropertyHandler(propertyService, portfolioService, auditService)
	actionHandler := handler.NewPendingActionHandler(actionService)
	wsHandler := handler.NewWSHandler(hub)

	// 6. Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Hotel Portfolio API v1.0",
		ErrorHandler: handler.ErrorHandler(log),
	})
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	requireAuth := middleware.RequireAuth(authService)
	protected := api.Group("", requireAuth)

	protected.Get("/auth/me", authHandler.Me)
	protected.Post("/auth/change-password", authHandler.ChangePassword)

	protected.Get("/portfolios", propertyHandler.GetAllPortfolios)
	protected.Post("/portfolios", propertyHandler.CreatePortfolio)

	protected.Get("/properties", propertyHandler.GetAllProperties)
	protected.Post("/properties", propertyHandler.CreateProperty)
	protected.Get("/properties/:id", middleware.RequirePermission(permissions, model.ModuleProperty, model.ActionRead, "id"), propertyHandler.GetPropertyByID)

	protected.Get("/audits/:id", propertyHandler.GetAuditByID)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/roles/:id/warnings", middleware.RequireSuperAdmin(), roleHandler.GetRoleWarnings)

	protected.Get("/users", userHandler.GetAllUsers)
	protected.Post("/users", userHandler.CreateUser)
	protected.Get("/users/:id", userHandler.GetUserByID)
	protected.Get("/users/:id/access", userHandler.GetAccess)
	protected.Post("/users/:id/access", userHandler.AddAccess)
	protected.Delete("/users/:id/access", userHandler.RevokeAccess)
	protected.Put("/users/:id/access", userHandler.ReplaceAccess)

	actions := protected.Group("/pending-actions")
	actions.Get("/", actionHandler.FindAll)
	actions.Post("/", middleware.RequireInternal(), actionHandler.Create)
	actions.Get("/:id", actionHandler.FindOne)
	actions.Post("/:id/approve", middleware.RequireSuperAdmin(), actionHandler.Approve)
	actions.Post("/:id/reject", middleware.RequireSuperAdmin(), actionHandler.Reject)

	app.Use("/ws", requireAuth, wsHandler.Upgrade)
	app.Get("/ws", wsHandler.Serve())

	// 8. Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.WithError(err).Panic("Server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}
	log.Info("Server exited")
}

// seedRolesAndAdmin creates the default roles and a super admin if missing.
func seedRolesAndAdmin(ctx context.Context, cfg *config.Config, roleRepo repository.RoleRepository, userRepo repository.UserRepository, log *logrus.Logger) {
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		log.WithError(err).Warn("Failed to seed roles")
	}

	if _, err := userRepo.FindByEmail(ctx, cfg.SeedAdminEmail); err == nil {
		return
	}
	if cfg.SeedAdminPassword == "" {
		log.Warn("SEED_ADMIN_PASSWORD not set; skipping super admin seed")
		return
	}

	role, err := roleRepo.FindByCode(ctx, model.RoleSuperAdmin)
	if err != nil {
		log.WithError(err).Warn("Super admin role missing; skipping admin seed")
		return
	}
	hashed, err := password.Hash(cfg.SeedAdminPassword)
	if err != nil {
		log.WithError(err).Warn("Failed to hash admin password")
		return
	}

	admin := &model.User{
		Email:    cfg.SeedAdminEmail,
		Password: hashed,
		FullName: "Super Administrator",
		RoleID:   &role.ID,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := userRepo.Create(ctx, admin); err != nil {
		log.WithError(err).Warn("Failed to create admin user")
		return
	}
	log.WithField("email", admin.Email).Info("Super admin user created")
}
