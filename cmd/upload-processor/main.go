package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sh3r4rd/upload_reports/internal/bootstrap"
	"github.com/sh3r4rd/upload_reports/internal/metadata"
	"github.com/sh3r4rd/upload_reports/internal/metrics"
	"github.com/sh3r4rd/upload_reports/internal/processor"
	"github.com/sh3r4rd/upload_reports/internal/thumbnail"
)

func main() {
	ctx := context.Background()

	cfg, logg, err := bootstrap.Load(processor.Name)
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	awsCfg, err := bootstrap.AWS(ctx, cfg)
	if err != nil {
		logg.Error(ctx, "failed to load aws config", err)
		os.Exit(1)
	}

	objects, err := bootstrap.ObjectStore(cfg, awsCfg)
	if err != nil {
		logg.Error(ctx, "failed to create object store", err)
		os.Exit(1)
	}

	generator, err := thumbnail.NewGenerator(thumbnail.GeneratorParams{
		Store:  objects,
		Logger: logg,
		Dir:    cfg.Thumb.Dir,
		MaxDim: cfg.Thumb.MaxDim,
	})
	if err != nil {
		logg.Error(ctx, "failed to create thumbnail generator", err)
		os.Exit(1)
	}

	records, err := metadata.NewStore(metadata.StoreParams{
		Client: dynamodb.NewFromConfig(awsCfg),
		Table:  cfg.Table.Name,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create metadata store", err)
		os.Exit(1)
	}

	handler, err := processor.NewHandler(processor.HandlerParams{
		Logger:     logg,
		Thumbnails: generator,
		Records:    records,
		Metrics:    metrics.NewOutcomes(prometheus.NewRegistry(), metrics.WithPushgateway(cfg.Metrics.PushURL)),
	})
	if err != nil {
		logg.Error(ctx, "failed to create upload handler", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"table":         cfg.Table.Name,
		"thumbnail_dir": cfg.Thumb.Dir,
		"storage":       cfg.Storage.Backend,
	}), "starting upload processor")
	lambda.Start(handler.Handle)
}
