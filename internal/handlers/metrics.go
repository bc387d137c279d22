package handlers

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"video-renditions/internal/logging"
)

// MetricsHandler serves the default registry. A collector that fails during
// a scrape is logged and skipped; the rest of the families are still served.
func (h *Handlers) MetricsHandler() http.Handler {
	return gathererHandler(prometheus.DefaultGatherer)
}

func gathererHandler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:      scrapeLog{},
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// scrapeLog routes promhttp errors to the application log.
type scrapeLog struct{}

func (scrapeLog) Println(v ...interface{}) {
	logging.Error("metrics scrape: %s", fmt.Sprint(v...))
}
