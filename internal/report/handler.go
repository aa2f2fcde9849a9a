// Package report handles the scheduled digest: it reads the uploads of the
// trailing window and mails them as an HTML table.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/sh3r4rd/upload_reports/internal/digest"
	"github.com/sh3r4rd/upload_reports/internal/logger"
	"github.com/sh3r4rd/upload_reports/internal/mailer"
	"github.com/sh3r4rd/upload_reports/internal/metrics"
	"github.com/sh3r4rd/upload_reports/internal/model"
	"github.com/sh3r4rd/upload_reports/internal/outcome"
)

const (
	// Name identifies the digest handler in logs and metrics.
	Name          = "digest-mailer"
	defaultWindow = 24 * time.Hour
)

// RecordReader returns the records uploaded within window of now.
type RecordReader interface {
	Recent(ctx context.Context, window time.Duration) outcome.Result[[]model.UploadRecord]
}

// Sender dispatches one email.
type Sender interface {
	Send(ctx context.Context, msg mailer.Message) outcome.Result[string]
}

// HandlerParams configure the digest handler.
type HandlerParams struct {
	Logger     *logger.Logger
	Records    RecordReader
	Mailer     Sender
	Metrics    *metrics.Outcomes
	From       string
	Recipients []string
	Window     time.Duration
}

// Handler sends the scheduled upload digest.
type Handler struct {
	logg       *logger.Logger
	records    RecordReader
	mailer     Sender
	metrics    *metrics.Outcomes
	from       string
	recipients []string
	window     time.Duration
	now        func() time.Time
}

// NewHandler validates params and builds the digest handler. A non-positive
// window defaults to 24 hours.
func NewHandler(params HandlerParams) (*Handler, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Records == nil {
		return nil, fmt.Errorf("record reader required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if params.From == "" || len(params.Recipients) == 0 {
		return nil, fmt.Errorf("sender and recipients required")
	}
	window := params.Window
	if window <= 0 {
		window = defaultWindow
	}
	return &Handler{
		logg:       params.Logger,
		records:    params.Records,
		mailer:     params.Mailer,
		metrics:    params.Metrics,
		from:       params.From,
		recipients: params.Recipients,
		window:     window,
		now:        time.Now,
	}, nil
}

// Handle builds and sends one digest. It always reports success to the
// scheduler; read, render and send failures are logged and counted.
func (h *Handler) Handle(ctx context.Context, event events.CloudWatchEvent) (model.Response, error) {
	started := time.Now()
	ctx = h.logg.WithInvocation(ctx)
	if event.ID != "" {
		ctx = h.logg.WithField(ctx, "schedule_event_id", event.ID)
	}

	read := h.records.Recent(ctx, h.window)
	h.metrics.Record(Name, metrics.StageRead, read.Label())
	// A failed read is reported as an empty digest.
	records := read.ValueOr([]model.UploadRecord{})

	msg, err := h.compose(records)
	h.metrics.Record(Name, metrics.StageRender, outcome.Label(err))
	if err != nil {
		h.logg.Error(ctx, "failed to render digest", err)
	} else {
		sent := h.mailer.Send(ctx, msg)
		h.metrics.Record(Name, metrics.StageSend, sent.Label())
		h.logg.InfoFields(ctx, "digest processed", map[string]any{
			"records": len(records),
			"read":    read.Label(),
			"send":    sent.Label(),
		})
	}

	h.metrics.ObserveDuration(Name, time.Since(started))
	h.exportMetrics(ctx)
	return model.OK(model.MessageEmailSent), nil
}

// exportMetrics logs the process outcome counts and pushes them when a
// Pushgateway is configured.
func (h *Handler) exportMetrics(ctx context.Context) {
	counts, err := h.metrics.Export(ctx, Name)
	if err != nil {
		h.logg.Error(ctx, "failed to export metrics", err)
	}
	if len(counts) > 0 {
		h.logg.InfoFields(ctx, "invocation metrics", map[string]any{"outcomes": counts})
	}
}

func (h *Handler) compose(records []model.UploadRecord) (mailer.Message, error) {
	rep := digest.NewReport(records, h.window)
	html, err := digest.RenderHTML(rep)
	if err != nil {
		return mailer.Message{}, err
	}
	text, err := digest.RenderText(rep)
	if err != nil {
		return mailer.Message{}, err
	}
	return mailer.Message{
		From:    h.from,
		To:      h.recipients,
		Subject: digest.Subject(h.now()),
		HTML:    html,
		Text:    text,
	}, nil
}
