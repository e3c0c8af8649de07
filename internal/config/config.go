package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App         AppConfig
	DB          DBConfig
	Redis       RedisConfig
	Minio       MinioConfig
	JWT         JWTConfig
	Procurement ProcurementConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("PROVENDER", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Port     int    `envconfig:"PROVENDER_APP_PORT" default:"8080"`
	LogLevel string `envconfig:"PROVENDER_LOG_LEVEL" default:"info"`
	Env      string `envconfig:"PROVENDER_APP_ENV" default:"dev"`
}

type DBConfig struct {
	URL string `envconfig:"PROVENDER_DATABASE_URL" required:"true"`
}

type RedisConfig struct {
	Addr     string `envconfig:"PROVENDER_REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"PROVENDER_REDIS_PASSWORD"`
	DB       int    `envconfig:"PROVENDER_REDIS_DB" default:"0"`
}

type MinioConfig struct {
	Endpoint  string `envconfig:"PROVENDER_MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"PROVENDER_MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"PROVENDER_MINIO_SECRET_KEY" default:"minioadmin"`
	UseSSL    bool   `envconfig:"PROVENDER_MINIO_USE_SSL" default:"false"`
	Bucket    string `envconfig:"PROVENDER_MINIO_BUCKET" default:"order-proofs"`
}

type JWTConfig struct {
	Secret string `envconfig:"PROVENDER_JWT_SECRET"`
}

// ProcurementConfig carries the tunable business defaults. OrderThresholdFactor
// is the multiplier applied to min stock when a material has no explicit order
// threshold.
type ProcurementConfig struct {
	OrderThresholdFactor float64       `envconfig:"PROVENDER_ORDER_THRESHOLD_FACTOR" default:"1.5"`
	PostponeWeeklyCap    int           `envconfig:"PROVENDER_POSTPONE_WEEKLY_CAP" default:"2"`
	ScanInterval         time.Duration `envconfig:"PROVENDER_SCAN_INTERVAL" default:"30m"`
	RecomputeInterval    time.Duration `envconfig:"PROVENDER_RECOMPUTE_INTERVAL" default:"15m"`
	AdvisoryLockTTL      time.Duration `envconfig:"PROVENDER_ADVISORY_LOCK_TTL" default:"5m"`
	RiskCacheTTL         time.Duration `envconfig:"PROVENDER_RISK_CACHE_TTL" default:"60s"`
	NotifierFromAddress  string        `envconfig:"PROVENDER_NOTIFIER_FROM" default:"procurement@plant.local"`
}
