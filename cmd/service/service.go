// @title        Second Chance API
// @version      1.0
// @description  Accounts and second-hand item listings for the secondChance marketplace.
// @host         localhost:3060
// @BasePath     /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"fmt"
	"os"

	"second-chance/internal/cache"
	"second-chance/internal/config"
	"second-chance/internal/database"
	"second-chance/internal/handler/items"
	"second-chance/internal/logging"
	"second-chance/internal/router"
	"second-chance/internal/service"
	"second-chance/internal/upload"
	"second-chance/internal/worker"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "second-chance/docs" // swag generated docs

	echoSwagger "github.com/swaggo/echo-swagger"
)

// CustomValidator wraps go-playground/validator for Echo
// swagger:ignore
type CustomValidator struct {
	validator *validator.Validate
}

// Validate calls the underlying validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

var (
	loadConfig      = config.Load
	newPgxPool      = database.NewPgxPool
	newRedisClient  = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	newS3Store      = func(ctx context.Context, cfg upload.S3Config) (upload.Store, error) { return upload.NewS3Store(ctx, cfg) }
	startServer     = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool   = worker.NewPool
	exitFunc        = os.Exit
	logger          logging.Logger = logging.NewJSON(os.Stdout)
)

func newUploadStore(ctx context.Context, cfg *config.Config) (upload.Store, error) {
	if cfg.S3Bucket == "" {
		return upload.NewDiskStore(cfg.UploadDir, "/images"), nil
	}
	return newS3Store(ctx, upload.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
}

func run() error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := newPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	var itemCache cache.Cache
	if cfg.RedisAddr != "" {
		rdb, err := newRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
		itemCache = rdb
	} else {
		logger.Info(ctx, "REDIS_ADDR not set, item cache disabled")
	}

	if err := runMigrationsFn(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	uploads, err := newUploadStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("upload store: %w", err)
	}

	wp := newWorkerPool(cfg.WorkerCount)
	defer wp.Stop()

	tokens, err := service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	accounts := service.NewAccountService(db, service.NewHasher(wp), tokens, logger)
	repo := service.NewItemRepository(db, itemCache, cfg.ItemCacheTTL, logger)

	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Static("/", cfg.PublicDir)
	router.Setup(e, router.Deps{
		DB:       db,
		Cache:    itemCache,
		Accounts: accounts,
		Tokens:   tokens,
		Items:    items.New(repo, uploads, logger),
		Log:      logger,
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	logger.Info(ctx, "listening", "port", cfg.Port)
	return startServer(e, ":"+cfg.Port)
}

func main() {
	if err := run(); err != nil {
		logger.Error(context.Background(), "service stopped", "error", err)
		exitFunc(1)
	}
}
