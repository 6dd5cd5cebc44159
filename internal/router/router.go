package router

import (
	"time"

	"machtrade/internal/config"
	"machtrade/internal/handler"
	"machtrade/internal/middleware"
	"machtrade/internal/repository"
	"machtrade/internal/scope"
	"machtrade/internal/service"
	"machtrade/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis, with the
// scope enforcer injected into every branch-scoped repository.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, enf *scope.Enforcer) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	branchRepo := repository.NewBranchRepository(db, enf)
	customerRepo := repository.NewCustomerRepository(db, enf)
	machineRepo := repository.NewMachineRepository(db, enf)
	saleRepo := repository.NewSaleRepository(db, enf)
	installmentRepo := repository.NewInstallmentRepository(db, enf)
	paymentRepo := repository.NewPaymentRepository(db, enf)
	ownershipRepo := repository.NewOwnershipRepository(db, enf)
	auditRepo := repository.NewAuditRepository(db, enf)
	maintenanceRepo := repository.NewMaintenanceRepository(db, enf)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, branchRepo, cfg)
	branchSvc := service.NewBranchService(branchRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	machineSvc := service.NewMachineService(machineRepo)
	maintenanceSvc := service.NewMaintenanceService(maintenanceRepo, customerRepo, machineRepo)
	auditSvc := service.NewAuditService(auditRepo)
	saleSvc := service.NewSaleService(saleRepo, installmentRepo, paymentRepo, machineRepo, customerRepo, ownershipRepo, auditRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	branchesH := handler.NewBranchesHandler(branchSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	machinesH := handler.NewMachinesHandler(machineSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	maintenanceH := handler.NewMaintenanceHandler(maintenanceSvc)
	auditH := handler.NewAuditHandler(auditSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes — every request gets its effective scope resolved once
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.ResolveScope())
	{
		sales := v1.Group("/sales")
		{
			sales.POST("", salesH.CreateSale)
			sales.GET("", salesH.ListSales)
			sales.GET("/:id", salesH.GetSale)
			sales.POST("/:id/recalculate", salesH.RecalculateInstallments)
			sales.DELETE("/:id", middleware.RequireRole("global"), salesH.VoidSale)
		}

		v1.POST("/installments/:id/pay", salesH.PayInstallment)

		machines := v1.Group("/machines")
		{
			machines.POST("", machinesH.Create)
			machines.GET("", machinesH.List)
			machines.GET("/:id", machinesH.Get)
			machines.GET("/serial/:serial", machinesH.GetBySerial)
			machines.PUT("/:id", machinesH.Update)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", customersH.Create)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
		}

		maintenance := v1.Group("/maintenance")
		{
			maintenance.POST("", maintenanceH.Create)
			maintenance.GET("", maintenanceH.List)
			maintenance.GET("/:id", maintenanceH.Get)
			maintenance.PUT("/:id/status", maintenanceH.UpdateStatus)
		}

		v1.GET("/branches", branchesH.List)
		branches := v1.Group("/branches", middleware.RequireRole("global"))
		{
			branches.POST("", branchesH.Create)
			branches.PUT("/:id", branchesH.Update)
		}

		users := v1.Group("/users", middleware.RequireRole("global"))
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
		}

		v1.GET("/audit", auditH.List)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
