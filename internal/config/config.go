package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "UPLOADS"

	StorageBackendS3    = "s3"
	StorageBackendMinio = "minio"
)

type Config struct {
	App     AppConfig
	AWS     AWSConfig
	Storage StorageConfig
	Table   TableConfig
	Thumb   ThumbnailConfig
	Report  ReportConfig
	Metrics MetricsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Report.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints declared in the validate tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

type AppConfig struct {
	Env       string `envconfig:"UPLOADS_APP_ENV" default:"prod"`
	LogLevel  string `envconfig:"UPLOADS_LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"UPLOADS_LOG_FORMAT" default:"json" validate:"oneof=json console"`
}

type AWSConfig struct {
	Region string `envconfig:"AWS_REGION"`
}

// StorageConfig selects the object store. The minio backend talks to any
// S3-compatible endpoint and is used for local runs.
type StorageConfig struct {
	Backend        string `envconfig:"UPLOADS_STORAGE_BACKEND" default:"s3" validate:"oneof=s3 minio"`
	MinioEndpoint  string `envconfig:"UPLOADS_MINIO_ENDPOINT" validate:"required_if=Backend minio"`
	MinioAccessKey string `envconfig:"UPLOADS_MINIO_ACCESS_KEY" validate:"required_if=Backend minio"`
	MinioSecretKey string `envconfig:"UPLOADS_MINIO_SECRET_KEY" validate:"required_if=Backend minio"`
	MinioSSL       bool   `envconfig:"UPLOADS_MINIO_SSL" default:"false"`
}

type TableConfig struct {
	Name string `envconfig:"UPLOADS_TABLE_NAME" default:"bitscloud-db" validate:"required"`
}

type ThumbnailConfig struct {
	Dir    string `envconfig:"UPLOADS_THUMBNAIL_DIR" default:"thumbnail_dir" validate:"required,excludes=.."`
	MaxDim int    `envconfig:"UPLOADS_THUMBNAIL_MAX_DIM" default:"100" validate:"gt=0"`
}

type ReportConfig struct {
	Sender      string   `envconfig:"UPLOADS_REPORT_SENDER" validate:"omitempty,email"`
	Recipients  []string `envconfig:"UPLOADS_REPORT_RECIPIENTS" validate:"dive,email"`
	WindowHours int      `envconfig:"UPLOADS_DIGEST_WINDOW_HOURS" default:"24" validate:"gt=0"`
}

// MetricsConfig points the outcome metrics at an optional Pushgateway.
type MetricsConfig struct {
	PushURL string `envconfig:"UPLOADS_METRICS_PUSH_URL" validate:"omitempty,url"`
}

// Window returns the digest look-back period.
func (r ReportConfig) Window() time.Duration {
	return time.Duration(r.WindowHours) * time.Hour
}

// RequireMailer reports an error when the digest cannot be addressed.
// Only the digest mailer calls it; the upload processor never sends mail.
func (r ReportConfig) RequireMailer() error {
	if r.Sender == "" {
		return fmt.Errorf("%s is required", EnvReportSender)
	}
	if len(r.Recipients) == 0 {
		return fmt.Errorf("%s is required", EnvReportRecipients)
	}
	return nil
}

func (r *ReportConfig) normalize() {
	r.Sender = strings.TrimSpace(r.Sender)
	recipients := r.Recipients[:0]
	for _, addr := range r.Recipients {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}
	r.Recipients = recipients
}
