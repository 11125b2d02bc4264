package main

import (
	"net/http"
	"time"

	gometrics "github.com/hashicorp/go-metrics"
	metricsprom "github.com/hashicorp/go-metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// goMetricsRecorder implements replay.MetricsRecorder on top of
// hashicorp/go-metrics, exported to Prometheus via its prometheus sink.
type goMetricsRecorder struct {
	m *gometrics.Metrics
}

// newMetrics wires a global hashicorp/go-metrics instance backed by a
// Prometheus sink and returns both the replay.MetricsRecorder adapter and
// an http.Handler serving /metrics for scraping.
func newMetrics(serviceName string) (*goMetricsRecorder, http.Handler, error) {
	sink, err := metricsprom.NewPrometheusSink()
	if err != nil {
		return nil, nil, err
	}

	conf := gometrics.DefaultConfig(serviceName)
	conf.EnableHostname = false
	conf.TimerGranularity = time.Millisecond

	m, err := gometrics.NewGlobal(conf, sink)
	if err != nil {
		return nil, nil, err
	}

	return &goMetricsRecorder{m: m}, promhttp.Handler(), nil
}

func (r *goMetricsRecorder) ValueBuffered(size int64) {
	r.m.IncrCounter([]string{"replay", "value_buffered"}, float32(size))
}

func (r *goMetricsRecorder) ValueDelivered(subscriberID uint64) {
	r.m.IncrCounter([]string{"replay", "value_delivered"}, 1)
}

func (r *goMetricsRecorder) SubscriptionOpened(subscriberID uint64) {
	r.m.IncrCounter([]string{"replay", "subscription_opened"}, 1)
}

func (r *goMetricsRecorder) SubscriptionCancelled(subscriberID uint64) {
	r.m.IncrCounter([]string{"replay", "subscription_cancelled"}, 1)
}

func (r *goMetricsRecorder) Terminated(err error) {
	if err != nil {
		r.m.IncrCounter([]string{"replay", "terminated_error"}, 1)
		return
	}
	r.m.IncrCounter([]string{"replay", "terminated_complete"}, 1)
}
