package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"second-chance/internal/cache"
	"second-chance/internal/config"
	"second-chance/internal/database"
	"second-chance/internal/logging"
	"second-chance/internal/upload"
	"second-chance/internal/worker"
)

func restoreGlobals() {
	loadConfig = config.Load
	newPgxPool = database.NewPgxPool
	newRedisClient = cache.NewRedisClient
	runMigrationsFn = database.RunMigrations
	newS3Store = func(ctx context.Context, cfg upload.S3Config) (upload.Store, error) { return upload.NewS3Store(ctx, cfg) }
	startServer = func(e *echo.Echo, addr string) error { return e.Start(addr) }
	newWorkerPool = worker.NewPool
	exitFunc = func(code int) {}
	logger = logging.NewJSON(os.Stdout)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:          "3060",
		DatabaseURL:   "db",
		JWTSecret:     "secret",
		RedisAddr:     "127",
		RedisPassword: "pw",
		RedisDB:       1,
		WorkerCount:   1,
		PublicDir:     "public",
		UploadDir:     "public/images",
	}
}

func stubDeps(t *testing.T, cfg *config.Config) {
	t.Helper()
	t.Cleanup(restoreGlobals)
	logger = logging.Discard()
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	newPgxPool = func(context.Context, string) (database.DB, error) { return &database.FakeDB{}, nil }
	newRedisClient = func(string, string, int) (cache.Cache, error) { return &cache.FakeCache{}, nil }
	runMigrationsFn = func(string) error { return nil }
	startServer = func(*echo.Echo, string) error { return nil }
}

func TestCustomValidator(t *testing.T) {
	cv := &CustomValidator{validator: validator.New()}
	type s struct {
		Name string `validate:"required"`
	}
	require.NoError(t, cv.Validate(&s{Name: "ok"}))
	require.Error(t, cv.Validate(&s{}))
}

func TestRunSuccess(t *testing.T) {
	stubDeps(t, testConfig())
	called := make(map[string]bool)
	newPgxPool = func(ctx context.Context, url string) (database.DB, error) {
		called["pgx"] = true
		require.Equal(t, "db", url)
		return &database.FakeDB{CloseFn: func() { called["dbClose"] = true }}, nil
	}
	newRedisClient = func(addr, pwd string, db int) (cache.Cache, error) {
		called["redis"] = true
		require.Equal(t, "127", addr)
		require.Equal(t, "pw", pwd)
		require.Equal(t, 1, db)
		return &cache.FakeCache{CloseFn: func() error { called["redisClose"] = true; return nil }}, nil
	}
	runMigrationsFn = func(url string) error { called["migrate"] = true; return nil }
	startServer = func(e *echo.Echo, addr string) error {
		called["start"] = true
		require.Equal(t, ":3060", addr)

		req := httptest.NewRequest(http.MethodPut, "/api/auth/update", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		return nil
	}

	require.NoError(t, run())
	require.True(t, called["pgx"])
	require.True(t, called["redis"])
	require.True(t, called["migrate"])
	require.True(t, called["start"])
	require.True(t, called["dbClose"])
	require.True(t, called["redisClose"])
}

func TestRunWithoutRedis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisAddr = ""
	stubDeps(t, cfg)
	newRedisClient = func(string, string, int) (cache.Cache, error) {
		t.Fatal("redis must not be dialed")
		return nil, nil
	}
	require.NoError(t, run())
}

func TestRunErrors(t *testing.T) {
	stubDeps(t, testConfig())

	loadConfig = func() (*config.Config, error) { return nil, errors.New("config") }
	require.Error(t, run())
	loadConfig = func() (*config.Config, error) { return testConfig(), nil }

	newPgxPool = func(context.Context, string) (database.DB, error) { return nil, errors.New("db") }
	require.ErrorContains(t, run(), "connect database")

	newPgxPool = func(context.Context, string) (database.DB, error) { return &database.FakeDB{}, nil }
	newRedisClient = func(string, string, int) (cache.Cache, error) { return nil, errors.New("redis") }
	require.ErrorContains(t, run(), "connect redis")

	newRedisClient = func(string, string, int) (cache.Cache, error) { return &cache.FakeCache{}, nil }
	runMigrationsFn = func(string) error { return errors.New("migrate") }
	require.ErrorContains(t, run(), "run migrations")

	runMigrationsFn = func(string) error { return nil }
	startServer = func(*echo.Echo, string) error { return errors.New("start") }
	require.EqualError(t, run(), "start")
}

func TestRunRealConfigRejectsMissingDatabaseURL(t *testing.T) {
	t.Cleanup(restoreGlobals)
	logger = logging.Discard()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	require.Error(t, run())
}

func TestNewUploadStore(t *testing.T) {
	t.Cleanup(restoreGlobals)
	cfg := testConfig()

	s, err := newUploadStore(context.Background(), cfg)
	require.NoError(t, err)
	require.IsType(t, &upload.DiskStore{}, s)

	cfg.S3Bucket = "items"
	cfg.S3Endpoint = "http://minio:9000"
	var got upload.S3Config
	newS3Store = func(_ context.Context, c upload.S3Config) (upload.Store, error) {
		got = c
		return upload.NewDiskStore(t.TempDir(), "/x"), nil
	}
	_, err = newUploadStore(context.Background(), cfg)
	require.NoError(t, err)
	require.Equal(t, "items", got.Bucket)
	require.Equal(t, "http://minio:9000", got.Endpoint)

	newS3Store = func(context.Context, upload.S3Config) (upload.Store, error) { return nil, errors.New("aws") }
	stubDeps(t, cfg)
	require.ErrorContains(t, run(), "upload store")
}

func TestMainFunction(t *testing.T) {
	stubDeps(t, testConfig())
	exitCode := -1
	exitFunc = func(code int) { exitCode = code }
	main()
	require.Equal(t, -1, exitCode)
}

func TestMainExit(t *testing.T) {
	stubDeps(t, testConfig())
	exitCode := 0
	exitFunc = func(code int) { exitCode = code }
	newPgxPool = func(context.Context, string) (database.DB, error) { return nil, errors.New("fail") }
	main()
	require.Equal(t, 1, exitCode)
}
