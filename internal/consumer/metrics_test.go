package consumer

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"example.com/insights/internal/events"
)

func counterValue(t *testing.T, topic, eventType string) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, processedCounter.WithLabelValues(topic, eventType).Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordProcessedIncrementsCounterAndGauge(t *testing.T) {
	ts := time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC)
	msg := Envelope{Topic: "meal_events", EventType: events.TypeMealLogged, Timestamp: ts}

	before := counterValue(t, msg.Topic, msg.EventType)
	recordProcessed(msg)
	require.Equal(t, before+1, counterValue(t, msg.Topic, msg.EventType))

	var g dto.Metric
	require.NoError(t, lastMessageGauge.WithLabelValues(msg.Topic).Write(&g))
	require.Equal(t, float64(ts.Unix()), g.GetGauge().GetValue())
}

func TestRecordDecodeError(t *testing.T) {
	var m dto.Metric
	require.NoError(t, decodeErrorCounter.WithLabelValues("workout_events").Write(&m))
	before := m.GetCounter().GetValue()

	recordDecodeError("workout_events")

	require.NoError(t, decodeErrorCounter.WithLabelValues("workout_events").Write(&m))
	require.Equal(t, before+1, m.GetCounter().GetValue())
}
