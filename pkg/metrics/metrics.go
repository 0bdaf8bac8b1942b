package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "platform"
	subsystem = "client"

	LabelOperation  = "operation"
	LabelStatusCode = "status_code"

	// Status code label used when no response was received.
	StatusNoResponse = "none"
)

// BackendRequest records the duration of a single request to a platform backend.
// A status code of zero means that the transport failed before a response arrived.
func BackendRequest(operation string, statusCode int, t time.Time) {
	code := StatusNoResponse
	if statusCode != 0 {
		code = strconv.Itoa(statusCode)
	}
	requestDuration.With(prometheus.Labels{
		LabelOperation:  operation,
		LabelStatusCode: code,
	}).Observe(time.Since(t).Seconds())
}

// Collectors returns every collector owned by this package.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		requestDuration,
	}
}

// Push sends every collector of this package to a Prometheus Pushgateway under the given job.
// Command line tools exit before they can be scraped.
func Push(ctx context.Context, url, job string) error {
	pusher := push.New(url, job)
	for _, c := range Collectors() {
		pusher = pusher.Collector(c)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

var requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name:      "request_duration_seconds",
	Help:      "time to complete requests against platform backends",
	Namespace: namespace,
	Subsystem: subsystem,
	Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
},
	[]string{
		LabelOperation,
		LabelStatusCode,
	},
)

func init() {
	prometheus.MustRegister(requestDuration)
}
