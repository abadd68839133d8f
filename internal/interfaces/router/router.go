package router

import (
	invsvc "jdmport-backend/internal/application/inventory"
	"jdmport-backend/internal/config"
	"jdmport-backend/internal/infrastructure/cache"
	"jdmport-backend/internal/infrastructure/database"
	healthhandler "jdmport-backend/internal/interfaces/handlers/health"
	invhandler "jdmport-backend/internal/interfaces/handlers/inventory"
	"jdmport-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with all global middleware and route
// registration, plus the DB and Redis handles for startup checks.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Redis is optional: without it the catalog cache and health stats are
	// simply disabled, the browse path still works.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
	}

	healthHandlers := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		healthHandlers.DB = &gormDBPinger{db: db}
	}
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/reset", healthHandlers.Reset)

	// db may be nil if DATABASE_URL not set (e.g. tests); browse routes are
	// only mounted when the catalog store is available.
	if db != nil {
		inventoryService := &invsvc.Service{
			DB:           db,
			Cache:        cache.New(rdb, cfg.CatalogCacheTTL),
			QueryTimeout: cfg.QueryTimeout,
		}
		inventoryHandlers := &invhandler.Handlers{Service: inventoryService}

		carsGroup := app.Group("/api/v1/cars")
		carsGroup.Get("/", inventoryHandlers.GetCars)
		carsGroup.Get("/facets/:detail", inventoryHandlers.GetFacetCounts)
		carsGroup.Get("/features", inventoryHandlers.GetFeatureCounts)

		// Region-specific section: scope forced by the route.
		japanGroup := app.Group("/api/v1/japan/cars")
		japanGroup.Get("/", inventoryHandlers.GetJapanCars)
		japanGroup.Get("/facets/:detail", inventoryHandlers.GetJapanFacetCounts)
		japanGroup.Get("/features", inventoryHandlers.GetJapanFeatureCounts)
	}

	return app, db, rdb, nil
}
