// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// HTTPレイヤー、サービス層、ストアアダプタから利用する。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	listsCreated    prometheus.Counter
	listsDeleted    prometheus.Counter
	itemMutations   *prometheus.CounterVec
	memberMutations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		listsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listman_lists_created_total",
			Help: "作成されたリストの合計数",
		}),
		listsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "listman_lists_deleted_total",
			Help: "削除されたリストの合計数",
		}),
		itemMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listman_item_mutations_total",
			Help: "項目の変更操作数（操作種別ごと）",
		}, []string{"op"}),
		memberMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listman_member_mutations_total",
			Help: "メンバーの変更操作数（操作種別ごと）",
		}, []string{"op"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listman_store_latency_seconds",
			Help:    "ストア操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.listsCreated,
		c.listsDeleted,
		c.itemMutations,
		c.memberMutations,
		c.storeLatency,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordListCreated はリスト作成を記録する。
func (c *Collector) RecordListCreated() {
	c.listsCreated.Inc()
}

// RecordListDeleted はリスト削除を記録する。
func (c *Collector) RecordListDeleted() {
	c.listsDeleted.Inc()
}

// RecordItemMutation は項目の変更操作を記録する。
func (c *Collector) RecordItemMutation(op string) {
	c.itemMutations.WithLabelValues(op).Inc()
}

// RecordMemberMutation はメンバーの変更操作を記録する。
func (c *Collector) RecordMemberMutation(op string) {
	c.memberMutations.WithLabelValues(op).Inc()
}

// RecordStoreLatency はストア操作のレイテンシを記録する。
func (c *Collector) RecordStoreLatency(op string, duration time.Duration) {
	c.storeLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
