package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "retailmatch"

var (
	once sync.Once

	CatalogsLoadedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalogs_loaded_total",
		Help:      "Total number of catalog load attempts by origin and result.",
	}, []string{"origin", "result"})

	PageFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_fetches_total",
		Help:      "Total number of retailer page fetches by result.",
	}, []string{"result"})

	PageFetchDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "page_fetch_duration_seconds",
		Help:      "Time spent fetching and extracting a retailer page.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15, 30},
	})

	PageTextElements = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "page_text_elements",
		Help:      "Number of visible text elements extracted per page, before normalization.",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 10),
	})

	BrandMatchesFound = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "brand_matches_found",
		Help:      "Number of brands matched per request.",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	})
)

// Register registers matcher metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			CatalogsLoadedTotal,
			PageFetchesTotal,
			PageFetchDurationSeconds,
			PageTextElements,
			BrandMatchesFound,
		)
	})
}

// Result maps an error to the label used on result counters
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
