package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestChapterStorageBytes_ReportsLastSetValue(t *testing.T) {
	ChapterStorageBytes.Set(1234)
	assert.Equal(t, float64(1234), testutil.ToFloat64(ChapterStorageBytes))
}

func TestChaptersDownloadedTotal_Increments(t *testing.T) {
	before := testutil.ToFloat64(ChaptersDownloadedTotal)
	ChaptersDownloadedTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ChaptersDownloadedTotal))
}

func TestSourceCallsTotal_IsLabeledBySourceAndExport(t *testing.T) {
	before := testutil.ToFloat64(SourceCallsTotal.WithLabelValues("test-source", "get_manga_list"))
	SourceCallsTotal.WithLabelValues("test-source", "get_manga_list").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SourceCallsTotal.WithLabelValues("test-source", "get_manga_list")))
}
