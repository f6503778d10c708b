package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort string `mapstructure:"HTTP_PORT"`
	GRPCPort string `mapstructure:"GRPC_PORT"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBDSN      string `mapstructure:"DB_DSN"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`

	CatalogSource   string        `mapstructure:"CATALOG_SOURCE"`
	CatalogFile     string        `mapstructure:"CATALOG_FILE"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	AccessSecret   string `mapstructure:"ACCESS_SECRET"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`

	LogMode        string `mapstructure:"LOG_MODE"`
	TracingEnabled bool   `mapstructure:"TRACING_ENABLED"`

	CertFallbackName string `mapstructure:"CERT_FALLBACK_NAME"`
	VerifyRateLimit  int    `mapstructure:"VERIFY_RATE_LIMIT"`
}

var keys = []string{
	"HTTP_PORT", "GRPC_PORT",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_DSN",
	"REDIS_ADDR",
	"CATALOG_SOURCE", "CATALOG_FILE", "CATALOG_CACHE_TTL",
	"ACCESS_SECRET", "ALLOWED_ORIGINS",
	"KAFKA_BROKERS", "KAFKA_TOPIC",
	"LOG_MODE", "TRACING_ENABLED",
	"CERT_FALLBACK_NAME", "VERIFY_RATE_LIMIT",
}

// LoadConfig reads app.env from path when present; environment variables
// always win.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", ":8080")
	v.SetDefault("GRPC_PORT", ":9090")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("CATALOG_SOURCE", "file")
	v.SetDefault("CATALOG_FILE", "data/courses.json")
	v.SetDefault("CATALOG_CACHE_TTL", 10*time.Minute)
	v.SetDefault("KAFKA_TOPIC", "certificates.issued")
	v.SetDefault("LOG_MODE", "dev")
	v.SetDefault("CERT_FALLBACK_NAME", "Pengguna")
	v.SetDefault("VERIFY_RATE_LIMIT", 30)

	// Bind explicitly so Unmarshal sees env vars without a file.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	err = v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = v.Unmarshal(&config)
	return
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Brokers splits KAFKA_BROKERS on commas. Empty means events are disabled.
func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
