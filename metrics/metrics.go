// Package metrics holds the Prometheus collectors shared by the
// Chapter Storage and Source Runtime packages. No HTTP facade lives
// here; an embedder (the "serve-metrics" CLI command, or a larger
// service wrapping this module) is expected to hand prometheus.
// DefaultGatherer to promhttp.Handler itself.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// ChapterStorageBytes tracks the current total size of the
	// on-disk chapter cache.
	ChapterStorageBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rakuyomi_chapter_storage_bytes",
		Help: "Total size in bytes of the on-disk chapter cache",
	})

	// ChaptersDownloadedTotal counts chapters successfully assembled
	// and persisted by the Chapter Downloader.
	ChaptersDownloadedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rakuyomi_chapters_downloaded_total",
		Help: "Total number of chapters downloaded and persisted",
	})

	// SourceCallsTotal counts guest function invocations, labeled by
	// source id and export name.
	SourceCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rakuyomi_source_calls_total",
		Help: "Total number of calls made into a source's guest module",
	}, []string{"source_id", "export"})
)

func init() {
	prometheus.MustRegister(ChapterStorageBytes, ChaptersDownloadedTotal, SourceCallsTotal)
}
