package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	safestreamClient = "safestream_client"

	// Request metrics
	requestsTotal   = "requests_total"
	requestDuration = "request_duration_milliseconds"

	// Auth metrics
	tokenFetchesTotal = "token_fetches_total"

	// Polling metrics
	pollsTotal = "polls_total"

	// Labels
	methodLabel   = "method"
	codeLabel     = "code"
	resultLabel   = "result"
	resourceLabel = "resource"
	outcomeLabel  = "outcome"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"

	OutcomeTerminal    = "terminal"
	OutcomePending     = "pending"
	OutcomeTimeout     = "timeout"
	OutcomeInterrupted = "interrupted"
	OutcomeError       = "error"
)

// transport failures have no status code
const noStatusCode = "none"

var (
	bucketsConfig = []float64{300, 500, 1000, 5000}
)

/**
* Metrics definition
**/
var requestsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: safestreamClient,
		Name:      requestsTotal,
		Help:      "number of requests sent to the SafeStream API partitioned by method and status code",
	},
	[]string{methodLabel, codeLabel},
)

var requestDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: safestreamClient,
		Name:      requestDuration,
		Help:      "latency of requests sent to the SafeStream API",
		Buckets:   bucketsConfig,
	},
	[]string{methodLabel},
)

var tokenFetchesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: safestreamClient,
		Name:      tokenFetchesTotal,
		Help:      "number of auth token acquisitions partitioned by result",
	},
	[]string{resultLabel},
)

var pollsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: safestreamClient,
		Name:      pollsTotal,
		Help:      "number of status polls partitioned by resource and outcome",
	},
	[]string{resourceLabel, outcomeLabel},
)

// ObserveRequest records a finished request. A statusCode of 0 means no response was received.
func ObserveRequest(method string, statusCode int, elapsed time.Duration) {
	code := noStatusCode
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	requestsTotalMetric.With(prometheus.Labels{
		methodLabel: method,
		codeLabel:   code,
	}).Inc()
	requestDurationMetric.With(prometheus.Labels{
		methodLabel: method,
	}).Observe(float64(elapsed.Milliseconds()))
}

func IncreaseTokenFetchesMetric(result string) {
	tokenFetchesTotalMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func IncreasePollsMetric(resource string, outcome string) {
	pollsTotalMetric.With(prometheus.Labels{
		resourceLabel: resource,
		outcomeLabel:  outcome,
	}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(requestsTotalMetric)
	prometheus.MustRegister(requestDurationMetric)
	prometheus.MustRegister(tokenFetchesTotalMetric)
	prometheus.MustRegister(pollsTotalMetric)
}
