package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultJWTSecret   = "change-me-jwt-secret"
	defaultMaxFileSize = 5 << 20
)

type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	CORSOrigins []string

	JWTSecret string
	JWTTTL    time.Duration

	Storage StorageConfig
	Mail    MailConfig
	Log     LogConfig

	RateLimitRPS   float64
	RateLimitBurst int
}

type StorageConfig struct {
	Driver      string // disk or s3
	UploadDir   string
	PublicURL   string
	MaxFileSize int64

	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string
}

type MailConfig struct {
	Transport string // log, smtp or kafka
	From      string
	ClientURL string
	Timeout   time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	KafkaBrokers []string
	KafkaTopic   string
}

type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Load reads .env (if present), an optional CONFIG_FILE and the process
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := strings.TrimSpace(v.GetString("CONFIG_FILE")); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PORT", "5000")
	v.SetDefault("DATABASE_URL", "evisa.db")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "168h")

	v.SetDefault("STORAGE_DRIVER", "disk")
	v.SetDefault("UPLOAD_PATH", "./uploads")
	v.SetDefault("UPLOAD_PUBLIC_URL", "/uploads")
	v.SetDefault("MAX_FILE_SIZE", defaultMaxFileSize)
	v.SetDefault("S3_REGION", "us-east-1")

	v.SetDefault("MAIL_TRANSPORT", "log")
	v.SetDefault("EMAIL_FROM", "noreply@thaievisa.local")
	v.SetDefault("CLIENT_URL", "http://localhost:3000")
	v.SetDefault("MAIL_TIMEOUT", "15s")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("KAFKA_MAIL_TOPIC", "evisa.mail")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 10)
	v.SetDefault("LOG_MAX_AGE_DAYS", 30)

	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:      strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		Port:        strings.TrimSpace(v.GetString("PORT")),
		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),
		CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		JWTSecret:   strings.TrimSpace(v.GetString("JWT_SECRET")),

		Storage: StorageConfig{
			Driver:      strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
			UploadDir:   v.GetString("UPLOAD_PATH"),
			PublicURL:   strings.TrimRight(v.GetString("UPLOAD_PUBLIC_URL"), "/"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
			S3Bucket:    v.GetString("S3_BUCKET"),
			S3Region:    v.GetString("S3_REGION"),
			S3Endpoint:  v.GetString("S3_ENDPOINT"),
			S3Prefix:    v.GetString("S3_PREFIX"),
		},

		Mail: MailConfig{
			Transport:    strings.ToLower(strings.TrimSpace(v.GetString("MAIL_TRANSPORT"))),
			From:         v.GetString("EMAIL_FROM"),
			ClientURL:    strings.TrimRight(v.GetString("CLIENT_URL"), "/"),
			SMTPHost:     v.GetString("EMAIL_HOST"),
			SMTPPort:     v.GetInt("EMAIL_PORT"),
			SMTPUser:     v.GetString("EMAIL_USER"),
			SMTPPassword: v.GetString("EMAIL_PASSWORD"),
			KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
			KafkaTopic:   v.GetString("KAFKA_MAIL_TOPIC"),
		},

		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			File:       v.GetString("LOG_FILE"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
	}

	var err error
	if cfg.JWTTTL, err = parseDuration(v, "JWT_TTL"); err != nil {
		return nil, err
	}
	if cfg.Mail.Timeout, err = parseDuration(v, "MAIL_TIMEOUT"); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Storage.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be > 0")
	}

	switch cfg.Storage.Driver {
	case "disk":
		if strings.TrimSpace(cfg.Storage.UploadDir) == "" {
			return fmt.Errorf("UPLOAD_PATH must not be empty")
		}
	case "s3":
		if strings.TrimSpace(cfg.Storage.S3Bucket) == "" {
			return fmt.Errorf("S3_BUCKET must be set when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: disk, s3")
	}

	switch cfg.Mail.Transport {
	case "log":
	case "smtp":
		if cfg.Mail.SMTPHost == "" {
			return fmt.Errorf("EMAIL_HOST must be set when MAIL_TRANSPORT=smtp")
		}
	case "kafka":
		if len(cfg.Mail.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS must be set when MAIL_TRANSPORT=kafka")
		}
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be one of: log, smtp, kafka")
	}
	if cfg.Mail.Timeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be > 0")
	}

	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be > 0")
	}

	if cfg.IsProdLike() && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

func (c *Config) IsProdLike() bool {
	env := strings.ToLower(strings.TrimSpace(c.AppEnv))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDuration(v *viper.Viper, name string) (time.Duration, error) {
	value := strings.TrimSpace(v.GetString(name))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
