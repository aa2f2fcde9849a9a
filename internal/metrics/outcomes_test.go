package metrics

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestOutcomesRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutcomes(reg)

	m.Record("upload-processor", StageThumbnail, "ok")
	m.Record("upload-processor", StageThumbnail, "ok")
	m.Record("upload-processor", StageThumbnail, "STORAGE_ACCESS")
	m.Record("", StageWrite, "")

	if got := testutil.ToFloat64(m.items.WithLabelValues("upload-processor", StageThumbnail, "ok")); got != 2 {
		t.Fatalf("expected 2 ok thumbnails, got %v", got)
	}
	if got := testutil.ToFloat64(m.items.WithLabelValues("upload-processor", StageThumbnail, "STORAGE_ACCESS")); got != 1 {
		t.Fatalf("expected 1 failed thumbnail, got %v", got)
	}
	if got := testutil.ToFloat64(m.items.WithLabelValues("unknown", StageWrite, "unknown")); got != 1 {
		t.Fatalf("expected empty labels normalized, got %v", got)
	}
}

func TestOutcomesObserveDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutcomes(reg)

	m.ObserveDuration("digest-mailer", 150*time.Millisecond)

	if got := testutil.CollectAndCount(m.duration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestNilOutcomesAreNoops(t *testing.T) {
	var m *Outcomes
	m.Record("h", "s", "ok")
	m.ObserveDuration("h", time.Second)

	unregistered := NewOutcomes(nil)
	unregistered.Record("h", "s", "ok")
	unregistered.ObserveDuration("h", time.Second)

	counts, err := m.Export(context.Background(), "h")
	if err != nil || counts != nil {
		t.Fatalf("expected nil export from nil outcomes, got %v, %v", counts, err)
	}
}

func TestExportReturnsHandlerCounts(t *testing.T) {
	m := NewOutcomes(prometheus.NewRegistry())
	m.Record("upload-processor", StageThumbnail, "ok")
	m.Record("upload-processor", StageThumbnail, "DECODE")
	m.Record("upload-processor", StageWrite, "ok")
	m.Record("upload-processor", StageWrite, "ok")
	m.Record("digest-mailer", StageSend, "ok")

	counts, err := m.Export(context.Background(), "upload-processor")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	want := map[string]float64{
		"thumbnail.ok":     1,
		"thumbnail.DECODE": 1,
		"table_write.ok":   2,
	}
	if len(counts) != len(want) {
		t.Fatalf("expected %v, got %v", want, counts)
	}
	for key, v := range want {
		if counts[key] != v {
			t.Fatalf("expected %s=%v, got %v", key, v, counts[key])
		}
	}
}

func TestExportPushesToGateway(t *testing.T) {
	var (
		method string
		path   string
		body   []byte
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m := NewOutcomes(prometheus.NewRegistry(), WithPushgateway(gateway.URL))
	m.Record("digest-mailer", StageSend, "ok")

	counts, err := m.Export(context.Background(), "digest-mailer")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if counts["email_send.ok"] != 1 {
		t.Fatalf("expected email_send.ok=1, got %v", counts)
	}
	if method != http.MethodPut || path != "/metrics/job/digest-mailer" {
		t.Fatalf("unexpected push %s %s", method, path)
	}
	if !bytes.Contains(body, []byte("upload_pipeline_items_total")) {
		t.Fatal("pushed body does not carry the outcome counter")
	}
}

func TestExportPushFailureKeepsCounts(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()

	m := NewOutcomes(prometheus.NewRegistry(), WithPushgateway(gateway.URL))
	m.Record("upload-processor", StageWrite, "ok")

	counts, err := m.Export(context.Background(), "upload-processor")
	if err == nil {
		t.Fatal("expected push error")
	}
	if counts["table_write.ok"] != 1 {
		t.Fatalf("expected counts despite push failure, got %v", counts)
	}
}
