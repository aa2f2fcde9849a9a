// Package metadata persists UploadRecords in DynamoDB and reads back the
// records uploaded within a trailing window.
package metadata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	apperrors "github.com/sh3r4rd/upload_reports/internal/errors"
	"github.com/sh3r4rd/upload_reports/internal/logger"
	"github.com/sh3r4rd/upload_reports/internal/model"
	"github.com/sh3r4rd/upload_reports/internal/outcome"
)

const attrUploadDate = "upload_date"

// DynamoAPI is the part of *dynamodb.Client used by Store.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store reads and writes the upload metadata table.
type Store struct {
	client DynamoAPI
	table  string
	logg   *logger.Logger
	now    func() time.Time
}

// StoreParams configure a Store.
type StoreParams struct {
	Client DynamoAPI
	Table  string
	Logger *logger.Logger
}

// NewStore validates params and builds a table-backed Store.
func NewStore(params StoreParams) (*Store, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("dynamodb client required")
	}
	if params.Table == "" {
		return nil, fmt.Errorf("table name required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{
		client: params.Client,
		table:  params.Table,
		logg:   params.Logger,
		now:    time.Now,
	}, nil
}

// SaveReport lists which records were written and which failed.
type SaveReport struct {
	Saved  []string
	Failed map[string]error
}

// OK reports whether every record was written.
func (r SaveReport) OK() bool { return len(r.Failed) == 0 }

// Save writes each record independently, stamping UploadDate with the current
// time. A failed write is recorded in the report and the remaining records
// are still attempted.
func (s *Store) Save(ctx context.Context, records []model.UploadRecord) SaveReport {
	ctx = s.logg.WithField(ctx, "table", s.table)
	report := SaveReport{Failed: map[string]error{}}

	for _, rec := range records {
		rec.Stamp(s.now())
		if err := s.put(ctx, rec); err != nil {
			s.logg.Error(s.logg.WithField(ctx, "key", rec.Key), "error saving data to DynamoDB", err)
			report.Failed[rec.Key] = err
			continue
		}
		report.Saved = append(report.Saved, rec.Key)
	}

	if report.OK() {
		s.logg.Info(ctx, "data saved to DynamoDB successfully")
	} else {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"saved":  len(report.Saved),
			"failed": len(report.Failed),
		}), "some records were not saved to DynamoDB")
	}
	return report
}

func (s *Store) put(ctx context.Context, rec model.UploadRecord) error {
	if rec.ThumbnailURL == "" {
		rec.ThumbnailURL = model.NotAvailable
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTableWrite, err, "marshal record")
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeTableWrite, err, "put item")
	}
	return nil
}

// Recent returns every record whose upload_date is at or after now-window,
// ordered by upload_date then key.
func (s *Store) Recent(ctx context.Context, window time.Duration) outcome.Result[[]model.UploadRecord] {
	ctx = s.logg.WithField(ctx, "table", s.table)

	records, err := s.scanSince(ctx, model.FormatTimestamp(s.now().Add(-window)))
	if err != nil {
		s.logg.Error(ctx, "error loading data from DynamoDB", err)
		return outcome.Failed[[]model.UploadRecord](err)
	}
	return outcome.Ok(records)
}

func (s *Store) scanSince(ctx context.Context, threshold string) ([]model.UploadRecord, error) {
	filter := expression.Name(attrUploadDate).GreaterThanEqual(expression.Value(threshold))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeTableRead, err, "build scan filter")
	}

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	records := []model.UploadRecord{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeTableRead, err, "scan table")
		}
		var batch []model.UploadRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeTableRead, err, "unmarshal items")
		}
		records = append(records, batch...)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UploadDate != records[j].UploadDate {
			return records[i].UploadDate < records[j].UploadDate
		}
		return records[i].Key < records[j].Key
	})
	return records, nil
}
