package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-release/internal/application/inventory"
)

func TestHeaderCarrier_SetReemplazaYAgrega(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "event_type", Value: []byte("restock.requested")}}}
	c := headerCarrier{msg: &msg}

	c.Set("event_type", "release.completed")
	c.Set("baggage", "release=R-1")

	assert.Equal(t, "release.completed", c.Get("event_type"))
	assert.Equal(t, "release=R-1", c.Get("baggage"))
	assert.Equal(t, "", c.Get("traceparent"))
	assert.Equal(t, []string{"event_type", "baggage"}, c.Keys())
	assert.Len(t, msg.Headers, 2)
}

func TestHeaderCarrier_PropagaElContextoDeTraza(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	var msg kafka.Message
	prop := propagation.TraceContext{}
	prop.Inject(ctx, headerCarrier{msg: &msg})

	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", headerCarrier{msg: &msg}.Get("traceparent"))

	extracted := trace.SpanContextFromContext(prop.Extract(context.Background(), headerCarrier{msg: &msg}))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.True(t, extracted.IsRemote())
}

func TestPublish_BrokerInalcanzableRespetaElTimeout(t *testing.T) {
	// puerto 1: conexión rechazada en cualquier máquina de CI
	p := NewPublisher([]string{"127.0.0.1:1"}, "stock-release-events", "stock-release-test", 200*time.Millisecond)
	defer p.Close()

	start := time.Now()
	err := p.Publish(context.Background(), "P-1", inventory.Event{Type: inventory.EventRestockRequested, OccurredAt: start})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
