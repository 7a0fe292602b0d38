// Package metrics exposes redirect outcomes as Prometheus collectors.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "url_redirector"

// Recorder counts resolutions by status code and swallowed analytics failures.
type Recorder struct {
	redirectRequests  *prometheus.CounterVec
	analyticsFailures *prometheus.CounterVec
}

func New(reg prometheus.Registerer) (*Recorder, error) {
	const op = "metrics.New"

	r := &Recorder{
		redirectRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirect_requests_total",
			Help:      "Total number of resolved redirect requests by response status.",
		}, []string{"status"}),
		analyticsFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_update_failures_total",
			Help:      "Total number of visit counter updates that failed and were ignored.",
		}, []string{"counter"}),
	}

	if reg != nil {
		for _, c := range []prometheus.Collector{r.redirectRequests, r.analyticsFailures} {
			if err := reg.Register(c); err != nil {
				return nil, fmt.Errorf("%s: failed to register collector: %w", op, err)
			}
		}
	}

	return r, nil
}

func (r *Recorder) ObserveResolution(statusCode int) {
	r.redirectRequests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func (r *Recorder) IncAnalyticsFailure(counter string) {
	r.analyticsFailures.WithLabelValues(counter).Inc()
}

// Handler serves the metrics gathered by g in the text exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
