package appstats

import (
	"net/http"
	"time"

	"github.com/mediasfu/recordctl/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const subsystem = "recordctl"

var (
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "out_requests",
		Help:      "Number of recording requests sent to the server",
	},
		[]string{
			"action",
		})

	Acks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "acks_total",
		Help:      "Number of recording request outcomes",
	},
		[]string{
			"action",
			"outcome", // committed/rejected/unknown
		})

	AckLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: subsystem,
		Name:      "ack_latency_seconds",
		Help:      "Time between sending a recording request and its outcome",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
		[]string{
			"action",
		})

	Rejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "local_rejections_total",
		Help:      "Number of recording actions refused before reaching the server",
	},
		[]string{
			"reason",
		})

	ActiveTimers = prometheus.NewGauge(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "active_timers",
		Help:      "Current number of running recording timers",
	})

	Ticks = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "timer_ticks_total",
		Help:      "Number of recording timer ticks",
	})

	Notices = prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "in_notices",
		Help:      "Number of notices received from the server",
	},
		[]string{
			"id",
		})

	InvalidMessages = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "invalid_messages",
		Help:      "Number of undecodable messages received",
	})

	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "rate_limited_connections_total",
		Help:      "Number of connection attempts refused by the rate limiter",
	})

	ComponentHealth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: subsystem,
		Name:      "component_health",
		Help:      "Health of external components (1 healthy, 0 unhealthy)",
	},
		[]string{
			"component",
		})
)

func Init() {
	prometheus.MustRegister(Requests)
	prometheus.MustRegister(Acks)
	prometheus.MustRegister(AckLatency)
	prometheus.MustRegister(Rejections)
	prometheus.MustRegister(ActiveTimers)
	prometheus.MustRegister(Ticks)
	prometheus.MustRegister(Notices)
	prometheus.MustRegister(InvalidMessages)
	prometheus.MustRegister(RateLimited)
	prometheus.MustRegister(ComponentHealth)
}

func ServePromMetrics(cfg config.Prometheus) {
	if !cfg.Enable {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(cfg.ListenAddress, mux); err != nil {
			log.Errorf("failed to start metrics server: %s", err)
		}
	}()

	log.Infof("Prometheus metrics exported on %s", cfg.ListenAddress)
}

func OnRequest(action string) {
	Requests.WithLabelValues(action).Inc()
}

func OnAck(action, outcome string, latency time.Duration) {
	Acks.WithLabelValues(action, outcome).Inc()
	AckLatency.WithLabelValues(action).Observe(latency.Seconds())
}

func OnRejected(reason string) {
	Rejections.WithLabelValues(reason).Inc()
}

func TimerStarted() {
	ActiveTimers.Inc()
}

func TimerStopped() {
	ActiveTimers.Dec()
}

func OnTick() {
	Ticks.Inc()
}

func OnNotice(id string) {
	if id == "" {
		InvalidMessages.Inc()
		return
	}
	Notices.WithLabelValues(id).Inc()
}

func OnRateLimited() {
	RateLimited.Inc()
}

func SetComponentHealth(component string, healthy bool) {
	v := 0.0
	if healthy {
		v = 1
	}
	ComponentHealth.WithLabelValues(component).Set(v)
}
