package castgrab2

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors exported for scan observability. Wired into discovery,
// session, and the demultiplexer rather than left idle.
var (
	DiscoveryResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "castgrab2_discovery_responses_total",
		Help: "mDNS discovery responses received, by address family.",
	}, []string{"family"})

	ConnectAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "castgrab2_connect_attempts_total",
		Help: "Cast session connect attempts, by outcome status.",
	}, []string{"status"})

	FrameErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "castgrab2_frame_errors_total",
		Help: "Malformed Cast message frames discarded by the demultiplexer.",
	})

	PingLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "castgrab2_ping_latency_seconds",
		Help:    "Round-trip latency of PING/PONG heartbeat exchanges.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(DiscoveryResponses, ConnectAttempts, FrameErrors, PingLatency)
}

// ServeMetrics blocks serving the registered collectors on /metrics; run it
// in its own goroutine.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
