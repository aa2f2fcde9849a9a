package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sh3r4rd/upload_reports/internal/bootstrap"
	"github.com/sh3r4rd/upload_reports/internal/mailer"
	"github.com/sh3r4rd/upload_reports/internal/metadata"
	"github.com/sh3r4rd/upload_reports/internal/metrics"
	"github.com/sh3r4rd/upload_reports/internal/report"
)

func main() {
	ctx := context.Background()

	cfg, logg, err := bootstrap.Load(report.Name)
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if err := cfg.Report.RequireMailer(); err != nil {
		logg.Error(ctx, "digest mailer is not configured", err)
		os.Exit(1)
	}

	awsCfg, err := bootstrap.AWS(ctx, cfg)
	if err != nil {
		logg.Error(ctx, "failed to load aws config", err)
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

	sender, err := mailer.NewSES(ses.NewFromConfig(awsCfg), logg)
	if err != nil {
		logg.Error(ctx, "failed to create mailer", err)
		os.Exit(1)
	}

	handler, err := report.NewHandler(report.HandlerParams{
		Logger:     logg,
		Records:    records,
		Mailer:     sender,
		Metrics:    metrics.NewOutcomes(prometheus.NewRegistry(), metrics.WithPushgateway(cfg.Metrics.PushURL)),
		From:       cfg.Report.Sender,
		Recipients: cfg.Report.Recipients,
		Window:     cfg.Report.Window(),
	})
	if err != nil {
		logg.Error(ctx, "failed to create digest handler", err)
		os.Exit(1)
	}

	logg.Info(logg.WithFields(ctx, map[string]any{
		"table":      cfg.Table.Name,
		"recipients": len(cfg.Report.Recipients),
		"window":     cfg.Report.Window().String(),
	}), "starting digest mailer")
	lambda.Start(handler.Handle)
}
