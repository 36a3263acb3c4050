package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/openmkt/marketplace/internal/core/domain"
)

type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	// mysql or memory; memory keeps everything in-process and needs no
	// backing services.
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"mysql"`

	DatabaseURI             string `envconfig:"DATABASE_URI" default:"root:root@tcp(localhost:3306)/marketplace?parseTime=true"`
	DatabaseMaxConns        int    `envconfig:"DATABASE_MAX_CONNS" default:"50"`
	DatabaseMaxIdleConns    int    `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"25"`
	DatabaseConnMaxLifetime int    `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"300"` // seconds

	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"100"`

	// AdminAccount collects the marketplace fee on every settlement.
	AdminAccount string `envconfig:"ADMIN_ACCOUNT" default:"marketplace-admin"`

	AssetIDMode       string `envconfig:"ASSET_ID_MODE" default:"string"` // string | numeric
	AssetIDMaxLength  int    `envconfig:"ASSET_ID_MAX_LENGTH" default:"100"`
	AssetIDMaxNumeric int64  `envconfig:"ASSET_ID_MAX_NUMERIC" default:"1000000"`

	WorkerCount int `envconfig:"WORKER_COUNT" default:"10"`
	QueueSize   int `envconfig:"QUEUE_SIZE" default:"10000"`

	RateLimit int `envconfig:"RATE_LIMIT" default:"50"` // requests/second per client
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	godotenv.Load(".env")

	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) IDRules() domain.IDRules {
	rules := domain.IDRules{
		Mode:       domain.IDMode(c.AssetIDMode),
		MaxLength:  c.AssetIDMaxLength,
		MaxNumeric: c.AssetIDMaxNumeric,
	}
	if rules.Mode != domain.IDModeNumeric {
		rules.Mode = domain.IDModeString
	}
	return rules
}
