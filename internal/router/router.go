package router

import (
	"time"

	"github.com/Joaovenera/wms-sub005/internal/config"
	"github.com/Joaovenera/wms-sub005/internal/handler"
	"github.com/Joaovenera/wms-sub005/internal/middleware"
	"github.com/Joaovenera/wms-sub005/internal/repository"
	"github.com/Joaovenera/wms-sub005/internal/service"
	"github.com/Joaovenera/wms-sub005/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// composition service, which the caller also hands to the report worker.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, service.CompositionService) {
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
	productRepo := repository.NewProductRepository(db)
	packagingRepo := repository.NewPackagingRepository(db)
	stockRepo := repository.NewStockRepository(db)
	palletRepo := repository.NewPalletRepository(db)
	compositionRepo := repository.NewCompositionRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	hierarchyValidator := service.NewHierarchyValidator()
	cacheTTL := time.Duration(cfg.BarcodeCacheTTLMinutes) * time.Minute
	packagingSvc := service.NewPackagingService(packagingRepo, productRepo, stockRepo, hierarchyValidator, rdb, cacheTTL)
	conversionSvc := service.NewConversionService(packagingRepo)
	stockSvc := service.NewStockService(stockRepo, packagingRepo)
	pickingSvc := service.NewPickingService(packagingRepo, stockSvc)
	calculator := service.NewCompositionCalculator(productRepo, packagingRepo, palletRepo, cfg.MaxStackHeightCm)
	compositionSvc := service.NewCompositionService(compositionRepo, stockRepo, calculator, dispatcher, cfg.PDFStoragePath)

	// ── Handlers ─────────────────────────────────────────────────────────────
	packagingH := handler.NewPackagingHandler(packagingSvc)
	conversionH := handler.NewConversionHandler(conversionSvc)
	stockH := handler.NewStockHandler(stockSvc)
	pickingH := handler.NewPickingHandler(pickingSvc)
	compositionsH := handler.NewCompositionsHandler(compositionSvc, calculator)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	v1 := r.Group("/v1")
	{
		packaging := v1.Group("/packaging-types")
		{
			packaging.POST("", packagingH.Create)
			packaging.GET("/:id", packagingH.Get)
			packaging.PUT("/:id", packagingH.Update)
			packaging.DELETE("/:id", packagingH.Delete)
			packaging.GET("/barcode/:barcode", packagingH.FindByBarcode)
		}

		products := v1.Group("/products")
		{
			products.GET("/:id/packaging-types", packagingH.ListByProduct)
			products.GET("/:id/stock/consolidated", stockH.GetConsolidated)
			products.GET("/:id/stock/breakdown", stockH.GetBreakdown)
		}

		v1.POST("/conversions", conversionH.Convert)
		v1.POST("/picking/optimize", pickingH.Optimize)

		compositions := v1.Group("/compositions")
		{
			compositions.POST("/calculate", compositionsH.Calculate)
			compositions.POST("", compositionsH.Save)
			compositions.GET("", compositionsH.List)
			compositions.GET("/:id", compositionsH.Get)
			compositions.PATCH("/:id/status", compositionsH.UpdateStatus)
			compositions.POST("/:id/assemble", compositionsH.Assemble)
			compositions.POST("/:id/disassemble", compositionsH.Disassemble)
			compositions.DELETE("/:id", compositionsH.Delete)
			compositions.POST("/:id/report", compositionsH.GenerateReport)
			compositions.GET("/:id/report", compositionsH.DownloadReport)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, compositionSvc
}
