package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"pharmapos/internal/tax"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Log        LogConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Tax        TaxConfig
	Sequence   SequenceConfig
	Redis      RedisConfig
	Archive    ArchiveConfig
	Compliance ComplianceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`

	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds the per-client request limit, in ulule/limiter
// formatted notation such as "100-M".
type RateLimitConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Rate    string `mapstructure:"rate"`
}

// TaxConfig holds the tax engine's fallbacks and numbering templates.
type TaxConfig struct {
	DefaultRatePercent       decimal.Decimal
	DefaultConvention        string `mapstructure:"default_convention"`
	CreditNoteRoundOff       bool   `mapstructure:"credit_note_round_off"`
	InvoiceNumberTemplate    string `mapstructure:"invoice_number_template"`
	CreditNoteNumberTemplate string `mapstructure:"credit_note_number_template"`
	NumberRetries            int    `mapstructure:"number_retries"`
	// HSNRefresh is how long the loaded HSN master is trusted; zero loads it once.
	HSNRefresh time.Duration `mapstructure:"hsn_refresh"`
}

// SequenceConfig selects the document number allocator.
type SequenceConfig struct {
	Backend string `mapstructure:"backend"` // "postgres" or "redis"
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ArchiveConfig holds the S3 audit archive settings.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// ComplianceConfig holds the rate-review notifier settings.
type ComplianceConfig struct {
	Provider    string   `mapstructure:"provider"` // "ses" or "noop"
	Region      string   `mapstructure:"region"`
	FromAddress string   `mapstructure:"from_address"`
	Recipients  []string `mapstructure:"recipients"`
}

// Load reads configuration from environment variables with the PHARMAPOS_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PHARMAPOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "pharmapos")
	v.SetDefault("db.password", "pharmapos_secret")
	v.SetDefault("db.name", "pharmapos_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.connect_timeout", "5s")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rate", "300-M")

	// Tax defaults
	v.SetDefault("tax.default_rate_percent", "12")
	v.SetDefault("tax.default_convention", "EXCLUSIVE")
	v.SetDefault("tax.credit_note_round_off", true)
	v.SetDefault("tax.invoice_number_template", "INV/{YYYY}-{MM}/{SEQ4}")
	v.SetDefault("tax.credit_note_number_template", "CN/{YYYY}-{MM}/{SEQ4}")
	v.SetDefault("tax.number_retries", 3)
	v.SetDefault("tax.hsn_refresh", "10m")

	v.SetDefault("sequence.backend", "postgres")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "ap-south-1")
	v.SetDefault("archive.bucket", "pharmapos-tax-archive")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.prefix", "tax")

	// Compliance defaults
	v.SetDefault("compliance.provider", "noop")
	v.SetDefault("compliance.region", "ap-south-1")
	v.SetDefault("compliance.from_address", "noreply@pharmapos.in")
	v.SetDefault("compliance.recipients", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "PHARMAPOS_SERVER_PORT",
		"server.read_timeout":             "PHARMAPOS_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "PHARMAPOS_SERVER_WRITE_TIMEOUT",
		"server.environment":              "PHARMAPOS_SERVER_ENVIRONMENT",
		"db.host":                         "PHARMAPOS_DB_HOST",
		"db.port":                         "PHARMAPOS_DB_PORT",
		"db.user":                         "PHARMAPOS_DB_USER",
		"db.password":                     "PHARMAPOS_DB_PASSWORD",
		"db.name":                         "PHARMAPOS_DB_NAME",
		"db.sslmode":                      "PHARMAPOS_DB_SSLMODE",
		"db.max_open":                     "PHARMAPOS_DB_MAX_OPEN",
		"db.max_idle":                     "PHARMAPOS_DB_MAX_IDLE",
		"db.conn_max_lifetime":            "PHARMAPOS_DB_CONN_MAX_LIFETIME",
		"db.connect_timeout":              "PHARMAPOS_DB_CONNECT_TIMEOUT",
		"log.level":                       "PHARMAPOS_LOG_LEVEL",
		"log.format":                      "PHARMAPOS_LOG_FORMAT",
		"cors.allowed_origins":            "PHARMAPOS_CORS_ALLOWED_ORIGINS",
		"rate_limit.enabled":              "PHARMAPOS_RATE_LIMIT_ENABLED",
		"rate_limit.rate":                 "PHARMAPOS_RATE_LIMIT_RATE",
		"tax.default_rate_percent":        "PHARMAPOS_TAX_DEFAULT_RATE_PERCENT",
		"tax.default_convention":          "PHARMAPOS_TAX_DEFAULT_CONVENTION",
		"tax.credit_note_round_off":       "PHARMAPOS_TAX_CREDIT_NOTE_ROUND_OFF",
		"tax.invoice_number_template":     "PHARMAPOS_TAX_INVOICE_NUMBER_TEMPLATE",
		"tax.credit_note_number_template": "PHARMAPOS_TAX_CREDIT_NOTE_NUMBER_TEMPLATE",
		"tax.number_retries":              "PHARMAPOS_TAX_NUMBER_RETRIES",
		"tax.hsn_refresh":                 "PHARMAPOS_TAX_HSN_REFRESH",
		"sequence.backend":                "PHARMAPOS_SEQUENCE_BACKEND",
		"redis.addr":                      "PHARMAPOS_REDIS_ADDR",
		"redis.password":                  "PHARMAPOS_REDIS_PASSWORD",
		"redis.db":                        "PHARMAPOS_REDIS_DB",
		"archive.enabled":                 "PHARMAPOS_ARCHIVE_ENABLED",
		"archive.region":                  "PHARMAPOS_ARCHIVE_REGION",
		"archive.bucket":                  "PHARMAPOS_ARCHIVE_BUCKET",
		"archive.endpoint":                "PHARMAPOS_ARCHIVE_ENDPOINT",
		"archive.access_key":              "PHARMAPOS_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":              "PHARMAPOS_ARCHIVE_SECRET_KEY",
		"archive.prefix":                  "PHARMAPOS_ARCHIVE_PREFIX",
		"compliance.provider":             "PHARMAPOS_COMPLIANCE_PROVIDER",
		"compliance.region":               "PHARMAPOS_COMPLIANCE_REGION",
		"compliance.from_address":         "PHARMAPOS_COMPLIANCE_FROM_ADDRESS",
		"compliance.recipients":           "PHARMAPOS_COMPLIANCE_RECIPIENTS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PHARMAPOS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PHARMAPOS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),

		ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
		ConnectTimeout:  v.GetDuration("db.connect_timeout"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.RateLimit = RateLimitConfig{
		Enabled: v.GetBool("rate_limit.enabled"),
		Rate:    v.GetString("rate_limit.rate"),
	}

	defaultRate, err := decimal.NewFromString(v.GetString("tax.default_rate_percent"))
	if err != nil {
		return nil, fmt.Errorf("parsing tax.default_rate_percent: %w", err)
	}
	cfg.Tax = TaxConfig{
		DefaultRatePercent:       defaultRate,
		DefaultConvention:        strings.ToUpper(v.GetString("tax.default_convention")),
		CreditNoteRoundOff:       v.GetBool("tax.credit_note_round_off"),
		InvoiceNumberTemplate:    v.GetString("tax.invoice_number_template"),
		CreditNoteNumberTemplate: v.GetString("tax.credit_note_number_template"),
		NumberRetries:            v.GetInt("tax.number_retries"),
		HSNRefresh:               v.GetDuration("tax.hsn_refresh"),
	}
	cfg.Sequence = SequenceConfig{
		Backend: strings.ToLower(v.GetString("sequence.backend")),
	}
	cfg.Redis = RedisConfig{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled:   v.GetBool("archive.enabled"),
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
		Prefix:    v.GetString("archive.prefix"),
	}
	cfg.Compliance = ComplianceConfig{
		Provider:    v.GetString("compliance.provider"),
		Region:      v.GetString("compliance.region"),
		FromAddress: v.GetString("compliance.from_address"),
		Recipients:  splitList(v.GetString("compliance.recipients")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the tax engine cannot run with.
func (c *Config) Validate() error {
	if c.DB.ConnectTimeout <= 0 {
		return fmt.Errorf("db.connect_timeout must be positive")
	}
	if c.Tax.DefaultRatePercent.IsNegative() {
		return fmt.Errorf("tax.default_rate_percent must not be negative")
	}
	switch c.Tax.DefaultConvention {
	case "INCLUSIVE", "EXCLUSIVE":
	default:
		return fmt.Errorf("tax.default_convention must be INCLUSIVE or EXCLUSIVE, got %q", c.Tax.DefaultConvention)
	}
	if err := tax.ValidateNumberTemplate(c.Tax.InvoiceNumberTemplate); err != nil {
		return fmt.Errorf("tax.invoice_number_template: %w", err)
	}
	if err := tax.ValidateNumberTemplate(c.Tax.CreditNoteNumberTemplate); err != nil {
		return fmt.Errorf("tax.credit_note_number_template: %w", err)
	}
	if c.Tax.NumberRetries < 1 {
		return fmt.Errorf("tax.number_retries must be at least 1")
	}
	switch c.Sequence.Backend {
	case "postgres", "redis":
	default:
		return fmt.Errorf("sequence.backend must be postgres or redis, got %q", c.Sequence.Backend)
	}
	return nil
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
