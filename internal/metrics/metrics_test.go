package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBookletRendered(150 * time.Millisecond)
	c.RecordArchiveImported(4)
	c.RecordDanglingChoice()
	c.RecordDanglingChoice()
	c.RecordAssetSkipped("cover")

	if got := testutil.ToFloat64(c.bookletsRendered); got != 1 {
		t.Fatalf("expected 1 booklet, got %v", got)
	}
	if got := testutil.ToFloat64(c.pagesImported); got != 4 {
		t.Fatalf("expected 4 imported pages, got %v", got)
	}
	if got := testutil.ToFloat64(c.danglingChoices); got != 2 {
		t.Fatalf("expected 2 dangling choices, got %v", got)
	}
	if got := testutil.ToFloat64(c.assetsSkipped.WithLabelValues("cover")); got != 1 {
		t.Fatalf("expected 1 skipped cover, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordArchiveExported()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "ariane_archives_exported_total 1") {
		t.Fatalf("expected exported counter in output, got %s", w.Body.String())
	}
}
