package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"second-chance/internal/model"

	"github.com/joho/godotenv"
)

// Config holds everything run() needs, read once at startup.
type Config struct {
	Port        string
	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration // 0 means tokens never expire

	RedisAddr     string // empty disables the item cache
	RedisPassword string
	RedisDB       int
	ItemCacheTTL  time.Duration

	WorkerCount int // bcrypt workers, one per CPU by default

	PublicDir string
	UploadDir string

	S3Bucket    string // non-empty switches uploads to S3
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

var loadDotenv = godotenv.Load

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = loadDotenv()

	cfg := &Config{
		Port:          getEnv("PORT", "3060"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		PublicDir:     getEnv("PUBLIC_DIR", "public"),
		UploadDir:     getEnv("UPLOAD_DIR", "public/images"),
		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%w: DATABASE_URL is not set", model.ErrConfiguration)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is not set", model.ErrConfiguration)
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 0); err != nil {
		return nil, err
	}
	if cfg.ItemCacheTTL, err = getDuration("ITEM_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = getInt("WORKER_COUNT", runtime.NumCPU()); err != nil {
		return nil, err
	}
	if cfg.WorkerCount <= 0 {
		return nil, fmt.Errorf("%w: invalid WORKER_COUNT %d", model.ErrConfiguration, cfg.WorkerCount)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s: %v", model.ErrConfiguration, key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", model.ErrConfiguration, key, v)
	}
	return d, nil
}
