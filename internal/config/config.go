package config

import (
	"encoding/json"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	S3       *s3Config
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"review"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string   `envconfig:"REVIEW_ADDRESS" default:":3443"`
	MetricsAddress  string   `envconfig:"REVIEW_METRICS_ADDRESS" default:":8080"`
	LogLevel        string   `envconfig:"REVIEW_LOG_LEVEL" default:"info"`
	CorsOrigins     []string `envconfig:"REVIEW_CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	SceneCacheSize  int      `envconfig:"REVIEW_SCENE_CACHE_SIZE" default:"32"`
	MigrationFolder string   `envconfig:"REVIEW_MIGRATION_FOLDER" default:""`
}

type s3Config struct {
	Endpoint  string `envconfig:"REVIEW_S3_ENDPOINT" default:"s3.us-west-2.amazonaws.com"`
	Bucket    string `envconfig:"REVIEW_S3_BUCKET" default:"openreal2sim"`
	AccessKey string `envconfig:"REVIEW_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"REVIEW_S3_SECRET_KEY" default:""`
	Region    string `envconfig:"REVIEW_S3_REGION" default:"us-west-2"`
	UseSSL    bool   `envconfig:"REVIEW_S3_USE_SSL" default:"true"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a fresh configuration, bypassing the process-wide instance returned by New.
func NewDefault() *Config {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		cfg = &Config{
			Database: &dbConfig{Type: "sqlite", Name: "review.db"},
			Service:  &svcConfig{Address: ":3443", MetricsAddress: ":8080", LogLevel: "info", SceneCacheSize: 32, CorsOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"}},
			S3:       &s3Config{},
		}
	}
	return cfg
}

// NewSqlite returns a default configuration backed by the sqlite file at path.
func NewSqlite(path string) *Config {
	cfg := NewDefault()
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = path
	return cfg
}

// String renders the configuration with credentials redacted.
func (c *Config) String() string {
	redacted := *c
	if c.Database != nil {
		db := *c.Database
		if db.Password != "" {
			db.Password = "*****"
		}
		redacted.Database = &db
	}
	if c.S3 != nil {
		s3 := *c.S3
		if s3.SecretKey != "" {
			s3.SecretKey = "*****"
		}
		redacted.S3 = &s3
	}
	val, _ := json.Marshal(redacted)
	return string(val)
}
