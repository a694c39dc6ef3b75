// Package metrics 收集并暴露 Prometheus 指标。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder 是服务层依赖的指标接口。
type Recorder interface {
	RecordBookletRendered(duration time.Duration)
	RecordArchiveExported()
	RecordArchiveImported(pages int)
	RecordDanglingChoice()
	RecordAssetSkipped(kind string)
	RecordHTTPStatus(statusCode int)
}

// Collector 是 Recorder 的 Prometheus 实现。
type Collector struct {
	bookletsRendered prometheus.Counter
	renderLatency    prometheus.Histogram
	archivesExported prometheus.Counter
	archivesImported prometheus.Counter
	pagesImported    prometheus.Counter
	danglingChoices  prometheus.Counter
	assetsSkipped    *prometheus.CounterVec
	httpStatus       *prometheus.CounterVec
}

// NewCollector 创建 Collector 并注册到 reg。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		bookletsRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ariane_booklets_rendered_total",
			Help: "生成的 PDF 小册子数量",
		}),
		renderLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ariane_booklet_render_seconds",
			Help:    "PDF 生成耗时（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		archivesExported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ariane_archives_exported_total",
			Help: "导出的故事归档数量",
		}),
		archivesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ariane_archives_imported_total",
			Help: "导入的故事归档数量",
		}),
		pagesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ariane_pages_imported_total",
			Help: "通过归档导入的页面数量",
		}),
		danglingChoices: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ariane_dangling_choices_total",
			Help: "目标页面不存在而被跳过的选项数量",
		}),
		assetsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ariane_assets_skipped_total",
			Help: "缺失或无法读取而被跳过的资源数量",
		}, []string{"kind"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ariane_http_status_total",
			Help: "按状态码统计的 HTTP 响应数量",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.bookletsRendered,
		c.renderLatency,
		c.archivesExported,
		c.archivesImported,
		c.pagesImported,
		c.danglingChoices,
		c.assetsSkipped,
		c.httpStatus,
	)
	return c
}

// RecordBookletRendered 记录一次成功的 PDF 生成。
func (c *Collector) RecordBookletRendered(duration time.Duration) {
	c.bookletsRendered.Inc()
	c.renderLatency.Observe(duration.Seconds())
}

func (c *Collector) RecordArchiveExported() {
	c.archivesExported.Inc()
}

func (c *Collector) RecordArchiveImported(pages int) {
	c.archivesImported.Inc()
	c.pagesImported.Add(float64(pages))
}

func (c *Collector) RecordDanglingChoice() {
	c.danglingChoices.Inc()
}

// RecordAssetSkipped kind 取值 cover 或 image。
func (c *Collector) RecordAssetSkipped(kind string) {
	c.assetsSkipped.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler 返回 Prometheus 抓取端点。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// GinMiddleware 统计每个响应的状态码。
func GinMiddleware(rec Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		rec.RecordHTTPStatus(c.Writer.Status())
	}
}

// Nop 丢弃全部指标，供测试和脚本使用。
type Nop struct{}

func (Nop) RecordBookletRendered(time.Duration) {}
func (Nop) RecordArchiveExported()              {}
func (Nop) RecordArchiveImported(int)           {}
func (Nop) RecordDanglingChoice()               {}
func (Nop) RecordAssetSkipped(string)           {}
func (Nop) RecordHTTPStatus(int)                {}
