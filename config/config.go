package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CatalogStoreFile = "file"
	CatalogStoreR2   = "r2"
)

// PostgresConfig используется, если DATABASE_URL не задан явно.
// Значения по умолчанию соответствуют dev-базе, а не продакшену.
type PostgresConfig struct {
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"password"`
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"55432"`
	DB       string `env:"DB" envDefault:"ormos"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// URL собирает DSN для lib/pq.
func (p PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + strconv.Itoa(p.Port),
		Path:     "/" + p.DB,
		RawQuery: "sslmode=" + url.QueryEscape(p.SSLMode),
	}
	return u.String()
}

type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	BucketName      string `env:"BUCKET_NAME"`
	ObjectKey       string `env:"OBJECT_KEY" envDefault:"catalog/commanders.json"`
}

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseDriver string         `env:"DATABASE_DRIVER" envDefault:"postgres"`
	DatabaseURL    string         `env:"DATABASE_URL"`
	Postgres       PostgresConfig `envPrefix:"POSTGRES_"`

	ServerAddr string `env:"SERVER_ADDR" envDefault:"127.0.0.1"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8081"`
	StaticDir  string `env:"STATIC_DIR" envDefault:"./dist"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	// Общий секрет для POST-запросов. POST_TOKEN_HASH (bcrypt) имеет приоритет.
	PostToken     string `env:"POST_TOKEN"`
	PostTokenHash string `env:"POST_TOKEN_HASH"`

	ScryfallBulkDataURL    string        `env:"SCRYFALL_BULK_DATA_URL" envDefault:"https://api.scryfall.com/bulk-data/default-cards"`
	CatalogFetchTimeout    time.Duration `env:"CATALOG_FETCH_TIMEOUT" envDefault:"20m"`
	CatalogRefreshInterval time.Duration `env:"CATALOG_REFRESH_INTERVAL" envDefault:"24h"`
	CatalogFetchAttempts   uint          `env:"CATALOG_FETCH_ATTEMPTS" envDefault:"3"`
	CatalogMaxBytes        int64         `env:"CATALOG_MAX_BYTES" envDefault:"2147483648"`
	CatalogStore           string        `env:"CATALOG_STORE" envDefault:"file"`
	CatalogFile            string        `env:"CATALOG_FILE" envDefault:"commanders.json"`
	R2                     R2Config      `envPrefix:"R2_"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.DatabaseURL == "" {
		if cfg.DatabaseDriver != DriverPostgres {
			return nil, errors.New("DATABASE_URL environment variable is not set")
		}
		cfg.DatabaseURL = cfg.Postgres.URL()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DATABASE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DatabaseDriver)
	}

	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort)
	}

	if c.PostToken == "" && c.PostTokenHash == "" {
		return errors.New("POST_TOKEN or POST_TOKEN_HASH environment variable must be set")
	}

	if c.CatalogRefreshInterval <= 0 {
		return fmt.Errorf("CATALOG_REFRESH_INTERVAL must be positive, got %s", c.CatalogRefreshInterval)
	}
	if c.CatalogFetchTimeout <= 0 {
		return fmt.Errorf("CATALOG_FETCH_TIMEOUT must be positive, got %s", c.CatalogFetchTimeout)
	}
	if c.CatalogFetchAttempts == 0 {
		return errors.New("CATALOG_FETCH_ATTEMPTS must be at least 1")
	}

	switch c.CatalogStore {
	case CatalogStoreFile:
		if c.CatalogFile == "" {
			return errors.New("CATALOG_FILE must be set when CATALOG_STORE=file")
		}
	case CatalogStoreR2:
		if c.R2.AccountID == "" || c.R2.AccessKeyID == "" || c.R2.SecretAccessKey == "" || c.R2.BucketName == "" {
			return errors.New("R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY and R2_BUCKET_NAME are required when CATALOG_STORE=r2")
		}
	default:
		return fmt.Errorf("CATALOG_STORE must be %q or %q, got %q", CatalogStoreFile, CatalogStoreR2, c.CatalogStore)
	}

	return nil
}
