package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// gatherCounterValue は指定メトリクスのカウンタ値を取得するヘルパー。
// メトリクスが存在しない場合は-1を返す。
func gatherCounterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			var total float64
			for _, m := range mf.GetMetric() {
				total += m.GetCounter().GetValue()
			}
			return total
		}
	}
	return -1
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestRecordListCreated_IncrementsCounter はリスト作成カウンタが増加することを検証する。
func TestRecordListCreated_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordListCreated()
	c.RecordListCreated()

	if val := gatherCounterValue(t, reg, "listman_lists_created_total"); val != 2 {
		t.Errorf("lists_created_total = %v, want 2", val)
	}
}

// TestRecordListDeleted_IncrementsCounter はリスト削除カウンタが増加することを検証する。
func TestRecordListDeleted_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordListDeleted()

	if val := gatherCounterValue(t, reg, "listman_lists_deleted_total"); val != 1 {
		t.Errorf("lists_deleted_total = %v, want 1", val)
	}
}

// TestRecordItemMutation_LabelsByOp は項目変更カウンタが操作種別ごとに記録されることを検証する。
func TestRecordItemMutation_LabelsByOp(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordItemMutation("add")
	c.RecordItemMutation("add")
	c.RecordItemMutation("toggle")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() != "listman_item_mutations_total" {
			continue
		}
		found = true
		if len(mf.GetMetric()) != 2 {
			t.Fatalf("expected 2 labeled series, got %d", len(mf.GetMetric()))
		}
	}
	if !found {
		t.Error("listman_item_mutations_total metric not found")
	}
}

// TestRecordHTTPStatus_IncrementsCounter はHTTPステータスカウンタが増加することを検証する。
func TestRecordHTTPStatus_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)

	if val := gatherCounterValue(t, reg, "listman_http_status_total"); val != 2 {
		t.Errorf("http_status_total = %v, want 2", val)
	}
}

// TestRecordStoreLatency_ObservesHistogram はストアレイテンシが記録されることを検証する。
func TestRecordStoreLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStoreLatency("find_by_id", 30*time.Millisecond)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	found := false
	for _, mf := range metrics {
		if mf.GetName() == "listman_store_latency_seconds" {
			found = true
			if count := mf.GetMetric()[0].GetHistogram().GetSampleCount(); count != 1 {
				t.Errorf("sample count = %d, want 1", count)
			}
		}
	}
	if !found {
		t.Error("listman_store_latency_seconds metric not found")
	}
}

// TestHandler_ServesMetrics は/metricsハンドラーが登録済みメトリクスを出力することを検証する。
func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordListCreated()

	handler := Handler(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), "listman_lists_created_total") {
		t.Error("expected listman_lists_created_total in metrics output")
	}
}
