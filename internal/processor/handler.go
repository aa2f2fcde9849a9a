// Package processor handles S3 ObjectCreated notifications: it thumbnails
// image uploads and records one metadata row per object key.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/sh3r4rd/upload_reports/internal/logger"
	"github.com/sh3r4rd/upload_reports/internal/metadata"
	"github.com/sh3r4rd/upload_reports/internal/metrics"
	"github.com/sh3r4rd/upload_reports/internal/model"
	"github.com/sh3r4rd/upload_reports/internal/outcome"
	"github.com/sh3r4rd/upload_reports/internal/thumbnail"
)

// Name identifies the upload handler in logs and metrics.
const Name = "upload-processor"

// Thumbnailer writes a thumbnail for bucket/key and returns its key.
type Thumbnailer interface {
	Generate(ctx context.Context, bucket, key string) outcome.Result[string]
	Dir() string
}

// RecordWriter persists upload records.
type RecordWriter interface {
	Save(ctx context.Context, records []model.UploadRecord) metadata.SaveReport
}

// HandlerParams configure the upload handler.
type HandlerParams struct {
	Logger     *logger.Logger
	Thumbnails Thumbnailer
	Records    RecordWriter
	Metrics    *metrics.Outcomes
}

// Handler processes S3 upload notification batches.
type Handler struct {
	logg       *logger.Logger
	thumbnails Thumbnailer
	records    RecordWriter
	metrics    *metrics.Outcomes
}

// NewHandler validates params and builds the upload handler.
func NewHandler(params HandlerParams) (*Handler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Thumbnails == nil {
		return nil, fmt.Errorf("thumbnail generator required")
	}
	if params.Records == nil {
		return nil, fmt.Errorf("record writer required")
	}
	return &Handler{
		logg:       params.Logger,
		thumbnails: params.Thumbnails,
		records:    params.Records,
		metrics:    params.Metrics,
	}, nil
}

// Handle processes one batch of notifications. It always acknowledges the
// batch; per-item failures are logged and counted instead of returned so the
// trigger does not redeliver the event.
func (h *Handler) Handle(ctx context.Context, event model.UploadEvent) (model.Response, error) {
	started := time.Now()
	ctx = h.logg.WithInvocation(ctx)
	ctx = h.logg.WithField(ctx, "records", len(event.Records))

	batch := newBatch()
	thumbnailsFailed := 0
	for _, n := range event.Records {
		rec, attempted := h.process(ctx, n)
		if attempted && !rec.HasThumbnail() {
			thumbnailsFailed++
		}
		batch.put(rec)
	}

	report := h.records.Save(ctx, batch.records())
	for range report.Saved {
		h.metrics.Record(Name, metrics.StageWrite, outcome.Label(nil))
	}
	for _, err := range report.Failed {
		h.metrics.Record(Name, metrics.StageWrite, outcome.Label(err))
	}

	h.logg.InfoFields(ctx, "upload batch processed", map[string]any{
		"objects":           batch.len(),
		"saved":             len(report.Saved),
		"save_failed":       len(report.Failed),
		"thumbnails_failed": thumbnailsFailed,
	})
	h.metrics.ObserveDuration(Name, time.Since(started))
	h.exportMetrics(ctx)
	return model.OK(model.MessageProcessed), nil
}

func (h *Handler) exportMetrics(ctx context.Context) {
	counts, err := h.metrics.Export(ctx, Name)
	if err != nil {
		h.logg.Error(ctx, "failed to export metrics", err)
	}
	if len(counts) > 0 {
		h.logg.InfoFields(ctx, "invocation metrics", map[string]any{"outcomes": counts})
	}
}

// process builds the record for one notification, generating a thumbnail
// when the object is an image. It reports whether a thumbnail was attempted.
func (h *Handler) process(ctx context.Context, n model.UploadNotification) (model.UploadRecord, bool) {
	bucket, key := n.Bucket(), n.ObjectKey()
	rec := model.UploadRecord{
		Key:          key,
		URI:          model.ObjectURI(bucket, key),
		ObjectSize:   n.SizeString(),
		ObjectType:   model.ObjectType(key),
		ThumbnailURL: model.NotAvailable,
	}

	if !model.IsImageType(rec.ObjectType) {
		return rec, false
	}
	if thumbnail.InDir(h.thumbnails.Dir(), key) {
		h.logg.Debug(h.logg.WithObject(ctx, bucket, key), "skipping thumbnail of a thumbnail")
		return rec, false
	}

	res := h.thumbnails.Generate(ctx, bucket, key)
	h.metrics.Record(Name, metrics.StageThumbnail, res.Label())
	if thumbKey, ok := res.Value(); ok {
		rec.ThumbnailURL = model.ObjectURI(bucket, thumbKey)
	}
	return rec, true
}

// batch keeps the latest record per key in first-seen order.
type batch struct {
	order []string
	byKey map[string]model.UploadRecord
}

func newBatch() *batch {
	return &batch{byKey: map[string]model.UploadRecord{}}
}

func (b *batch) put(rec model.UploadRecord) {
	if _, ok := b.byKey[rec.Key]; !ok {
		b.order = append(b.order, rec.Key)
	}
	b.byKey[rec.Key] = rec
}

func (b *batch) len() int { return len(b.order) }

func (b *batch) records() []model.UploadRecord {
	out := make([]model.UploadRecord, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, b.byKey[key])
	}
	return out
}
