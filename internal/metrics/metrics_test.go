package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder(t *testing.T) {
	r := New()

	r.ObserveTranslation("page", nil)
	r.ObserveTranslation("page", errors.New("bad"))
	r.ObserveTranslation("fresh", nil)
	r.ObserveDiagnostic("warn", "malformed_position")
	r.ObserveEngine(250*time.Millisecond, nil)
	r.ObserveSegmentation("stored")
	r.ObserveSegmentation("engine")

	if got := testutil.ToFloat64(r.translations.WithLabelValues("page", "error")); got != 1 {
		t.Errorf("expected 1 failed page translation, got %v", got)
	}
	if got := testutil.ToFloat64(r.translations.WithLabelValues("page", "success")); got != 1 {
		t.Errorf("expected 1 page translation, got %v", got)
	}
	if got := testutil.ToFloat64(r.diagnostics.WithLabelValues("warn", "malformed_position")); got != 1 {
		t.Errorf("expected 1 diagnostic, got %v", got)
	}
	if got := testutil.ToFloat64(r.storeHits); got != 1 {
		t.Errorf("expected 1 store hit, got %v", got)
	}
	if got := testutil.ToFloat64(r.segmentations.WithLabelValues("engine")); got != 1 {
		t.Errorf("expected 1 engine segmentation, got %v", got)
	}
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.ObserveEngine(time.Second, errors.New("down"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `folio_engine_requests_total{result="error"} 1`) {
		t.Errorf("metrics output missing engine counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("metrics output missing runtime collectors")
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	r.ObserveTranslation("fresh", nil)
	r.ObserveDiagnostic("info", "x")
	r.ObserveEngine(time.Second, nil)
	r.ObserveSegmentation("empty")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("expected 404 from nil recorder, got %d", rec.Code)
	}
}
