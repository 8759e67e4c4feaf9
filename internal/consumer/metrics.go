package consumer

import "github.com/prometheus/client_golang/prometheus"

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights_service",
		Subsystem: "consumer",
		Name:      "messages_processed_total",
		Help:      "Platform events projected and committed, by topic and event type.",
	}, []string{"topic", "event_type"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights_service",
		Subsystem: "consumer",
		Name:      "handler_errors_total",
		Help:      "Projection failures that left the offset uncommitted.",
	}, []string{"topic", "event_type"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights_service",
		Subsystem: "consumer",
		Name:      "decode_errors_total",
		Help:      "Messages skipped because the frame or headers were unusable.",
	}, []string{"topic"})

	lastMessageGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "insights_service",
		Subsystem: "consumer",
		Name:      "last_message_timestamp_seconds",
		Help:      "Broker timestamp of the newest committed message per topic.",
	}, []string{"topic"})
)

func init() {
	prometheus.MustRegister(processedCounter, handlerErrorCounter, decodeErrorCounter, lastMessageGauge)
}

func recordProcessed(env Envelope) {
	processedCounter.WithLabelValues(env.Topic, env.EventType).Inc()
	if !env.Timestamp.IsZero() {
		lastMessageGauge.WithLabelValues(env.Topic).Set(float64(env.Timestamp.Unix()))
	}
}

func recordHandlerError(env Envelope) {
	handlerErrorCounter.WithLabelValues(env.Topic, env.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}
