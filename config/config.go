package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yulvianiputeri/sociolla-skincare-recommender/models"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreNone     = "none"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataDir        string        `validate:"required"`
	CSVSeparator   string        `validate:"len=1"`
	CacheTTL       time.Duration `validate:"gt=0"`
	PriceUnit      float64       `validate:"gt=0"`
	DefaultResults int           `validate:"min=1,max=100"`
	RulesFile      string

	SimilarityRatingWeight float64 `validate:"min=0,max=1"`
	SimilarityReviewWeight float64 `validate:"min=0,max=1"`

	StoreDriver string `validate:"oneof=none postgres sqlite"`
	SQLitePath  string `validate:"required_if=StoreDriver sqlite"`

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=console json"`

	ScrapeEnabled  bool
	ScrapeBaseURL  string `validate:"omitempty,url"`
	MaxConcurrency int    `validate:"min=1"`
	RateLimitMs    int    `validate:"min=0"`
	MaxRetries     int    `validate:"min=1"`
	PagesToScrape  int    `validate:"min=1"`
	RawOutputDir   string
	ChromeBin      string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataDir:        getEnv("DATA_DIR", "./data"),
		CSVSeparator:   getEnv("CSV_SEPARATOR", ";"),
		CacheTTL:       getEnvDuration("CACHE_TTL", time.Hour),
		PriceUnit:      getEnvFloat("PRICE_UNIT", 1000),
		DefaultResults: getEnvInt("DEFAULT_RECOMMENDATIONS", 5),
		RulesFile:      getEnv("RULES_FILE", ""),

		SimilarityRatingWeight: getEnvFloat("SIMILARITY_RATING_WEIGHT", 0.5),
		SimilarityReviewWeight: getEnvFloat("SIMILARITY_REVIEW_WEIGHT", 0.5),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreNone)),
		SQLitePath:  getEnv("SQLITE_PATH", "./output/catalog.db"),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "skincare"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "skincare123"),
		PostgresDB:       getEnv("POSTGRES_DB", "skincare_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "console")),

		ScrapeEnabled:  getEnvBool("SCRAPE_ENABLED", false),
		ScrapeBaseURL:  getEnv("SCRAPE_BASE_URL", "https://www.sociolla.com"),
		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		PagesToScrape:  getEnvInt("PAGES_TO_SCRAPE", 2),
		RawOutputDir:   getEnv("RAW_OUTPUT_DIR", "./output/raw"),
		ChromeBin:      getEnv("CHROME_BIN", ""),
	}
}

// Validate checks field ranges and that the similarity weights sum to 1.
func (c *Config) Validate() error {
	if err := models.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if sum := c.SimilarityRatingWeight + c.SimilarityReviewWeight; math.Abs(sum-1) > 1e-9 {
		return errors.New("config: similarity weights must sum to 1, got " + strconv.FormatFloat(sum, 'f', -1, 64))
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90m") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
