// Package bootstrap builds the process-wide dependencies shared by the Lambda
// binaries. Clients are constructed once per cold start and reused by every
// invocation.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"

	"github.com/sh3r4rd/upload_reports/internal/config"
	"github.com/sh3r4rd/upload_reports/internal/logger"
	"github.com/sh3r4rd/upload_reports/internal/storage"
)

// Load reads an optional .env file and the environment, and returns the
// config with a logger at the configured level.
func Load(service string) (*config.Config, *logger.Logger, error) {
	logg := logger.New(logger.Options{ServiceName: service})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, logg, err
	}

	logg = logger.New(logger.Options{
		ServiceName: service,
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
	})
	return cfg, logg, nil
}

// AWS loads the shared SDK configuration (credentials from the Lambda role).
func AWS(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWS.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWS.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading aws config: %w", err)
	}
	return awsCfg, nil
}

// ObjectStore returns the configured storage backend.
func ObjectStore(cfg *config.Config, awsCfg aws.Config) (storage.ObjectStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendMinio:
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("creating minio client: %w", err)
		}
		return storage.NewMinioStore(client), nil
	case config.StorageBackendS3, "":
		return storage.NewS3Store(s3.NewFromConfig(awsCfg)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
