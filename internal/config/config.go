package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

type Config struct {
	Host            string        `env:"HOST,default=0.0.0.0"`
	Port            int           `env:"PORT,default=8080"`
	Storage         string        `env:"STORAGE,default=in-memory"`
	DatabaseURL     string        `env:"DATABASE_URL"`
	MongoURI        string        `env:"MONGO_URI"`
	JWTSecret       string        `env:"JWT_SECRET,required=true"`
	AssetBaseURL    string        `env:"ASSET_BASE_URL"`
	DisplayTimezone string        `env:"DISPLAY_TIMEZONE,default=Asia/Shanghai"`
	LogLevel        string        `env:"LOG_LEVEL,default=INFO"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT,default=15s"`
	Seed            bool          `env:"SEED,default=false"`
}

// Load читает .env (если файл есть) и переменные окружения.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

// Validate проверяет, что у выбранного хранилища есть строка подключения,
// часовой пояс загружается, а ASSET_BASE_URL (если задан) абсолютный.
func (c Config) Validate() error {
	switch c.Storage {
	case StorageInMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set for postgres storage")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI must be set for mongo storage")
		}
	default:
		return fmt.Errorf("unknown storage %q: must be one of %s, %s, %s", c.Storage, StorageInMemory, StoragePostgres, StorageMongo)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.AssetBaseURL != "" {
		// относительный префикс сделал бы переписывание аватаров неидемпотентным
		if u, err := url.Parse(c.AssetBaseURL); err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("invalid ASSET_BASE_URL %q: must be an absolute URL", c.AssetBaseURL)
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
