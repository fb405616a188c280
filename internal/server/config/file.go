package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/walletlink/internal/flagx"
	"github.com/dmitrijs2005/walletlink/internal/gate"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. WALLETLINK_DATABASE_DSN.
const EnvPrefix = "WALLETLINK"

// fileConfig mirrors Config with the key names used in config files and
// environment variables.
type fileConfig struct {
	EndpointAddrHTTP  string                      `mapstructure:"endpoint_addr_http"`
	HealthAddrGRPC    string                      `mapstructure:"health_addr_grpc"`
	DatabaseDSN       string                      `mapstructure:"database_dsn"`
	SecretKey         string                      `mapstructure:"secret_key"`
	SessionTTL        time.Duration               `mapstructure:"session_ttl"`
	LinkOrigin        string                      `mapstructure:"link_origin"`
	IdempotencyWindow time.Duration               `mapstructure:"idempotency_window"`
	RedisAddr         string                      `mapstructure:"redis_addr"`
	RedisPassword     string                      `mapstructure:"redis_password"`
	RedisDB           int                         `mapstructure:"redis_db"`
	S3AccessKey       string                      `mapstructure:"s3_access_key"`
	S3SecretKey       string                      `mapstructure:"s3_secret_key"`
	S3Bucket          string                      `mapstructure:"s3_bucket"`
	S3Region          string                      `mapstructure:"s3_region"`
	S3BaseEndpoint    string                      `mapstructure:"s3_base_endpoint"`
	LogLevel          string                      `mapstructure:"log_level"`
	Gates             map[string]gate.Requirement `mapstructure:"gates"`
}

// parseFile overlays values from the file named by -c/-config (JSON or YAML,
// chosen by extension) and from the environment onto config. Keys missing
// from both keep their current values.
func parseFile(config *Config, args []string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Seeding defaults makes every key known to viper, which is what lets
	// AutomaticEnv pick them up.
	v.SetDefault("endpoint_addr_http", config.EndpointAddrHTTP)
	v.SetDefault("health_addr_grpc", config.HealthAddrGRPC)
	v.SetDefault("database_dsn", config.DatabaseDSN)
	v.SetDefault("secret_key", config.SecretKey)
	v.SetDefault("session_ttl", config.SessionTTL)
	v.SetDefault("link_origin", config.LinkOrigin)
	v.SetDefault("idempotency_window", config.IdempotencyWindow)
	v.SetDefault("redis_addr", config.RedisAddr)
	v.SetDefault("redis_password", config.RedisPassword)
	v.SetDefault("redis_db", config.RedisDB)
	v.SetDefault("s3_access_key", config.S3AccessKey)
	v.SetDefault("s3_secret_key", config.S3SecretKey)
	v.SetDefault("s3_bucket", config.S3Bucket)
	v.SetDefault("s3_region", config.S3Region)
	v.SetDefault("s3_base_endpoint", config.S3BaseEndpoint)
	v.SetDefault("log_level", config.LogLevel)

	if path := flagx.ConfigFileFlag(args); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	fc := &fileConfig{}
	if err := v.Unmarshal(fc); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.EndpointAddrHTTP = fc.EndpointAddrHTTP
	config.HealthAddrGRPC = fc.HealthAddrGRPC
	config.DatabaseDSN = fc.DatabaseDSN
	config.SecretKey = fc.SecretKey
	config.SessionTTL = fc.SessionTTL
	config.LinkOrigin = fc.LinkOrigin
	config.IdempotencyWindow = fc.IdempotencyWindow
	config.RedisAddr = fc.RedisAddr
	config.RedisPassword = fc.RedisPassword
	config.RedisDB = fc.RedisDB
	config.S3AccessKey = fc.S3AccessKey
	config.S3SecretKey = fc.S3SecretKey
	config.S3Bucket = fc.S3Bucket
	config.S3Region = fc.S3Region
	config.S3BaseEndpoint = fc.S3BaseEndpoint
	config.LogLevel = fc.LogLevel
	if len(fc.Gates) > 0 {
		config.Gates = gate.Rules(fc.Gates)
	}
	return nil
}
