package app

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sahilchouksey/dpms-api/api"
	"github.com/sahilchouksey/dpms-api/config"
	"github.com/sahilchouksey/dpms-api/database"
	"github.com/sahilchouksey/dpms-api/router"
	"github.com/sahilchouksey/dpms-api/services/cron"
	"github.com/sahilchouksey/dpms-api/utils/cache"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		print("If not running, run the following command:\n")
		print("  make docker-up   (for Docker setup)\n")
		print("  make db-up       (for local PostgreSQL)\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		print("Error running migrations:\n")
		return err
	}

	// Optional database-level guard for the derived marks columns. The
	// trigger is verified against the application formula before the
	// server accepts traffic so the two can never silently diverge.
	if getEnv.DB_TRIGGER_GUARD {
		if err := store.InstallMarksTrigger(); err != nil {
			return fmt.Errorf("failed to install marks trigger: %w", err)
		}
		if err := store.VerifyMarksTrigger(); err != nil {
			return fmt.Errorf("marks trigger verification failed: %w", err)
		}
		log.Println("Marks trigger guard installed and verified")
	}

	// Redis is optional: without it band counts are computed per request
	// and nothing is cached.
	var redisCache *cache.RedisCache
	if getEnv.REDIS_URL != "" {
		redisCache, err = cache.NewRedisCache(getEnv.REDIS_URL)
		if err != nil {
			log.Printf("Warning: Failed to connect to Redis: %v. Caching disabled.", err)
			redisCache = nil
		}
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			cronManager = cron.NewCronManager(db, redisCache)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB, Redis and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		if redisCache != nil {
			redisCache.Close()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, store, redisCache)

	// Get the PORT & Start the Server
	return server.Run()
}
