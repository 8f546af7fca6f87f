package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic(t *testing.T) {
	assert.Equal(t, "identity.customer.registered", Topic("customer", "registered"))
	assert.Equal(t, "identity.customer.deleted", Topic("customer", "deleted"))
}

func TestNewEvent(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	event, err := NewEvent("customer.registered", "42", "customer", "customer-service", payload{Name: "alice"})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "customer.registered", event.EventType)
	assert.Equal(t, "42", event.AggregateID)
	assert.Equal(t, "customer", event.AggregateType)
	assert.Equal(t, "customer-service", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got payload
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, "alice", got.Name)
}

func TestNewEvent_UnserializableData(t *testing.T) {
	_, err := NewEvent("customer.registered", "42", "customer", "customer-service", make(chan int))
	require.Error(t, err)
}

func TestEvent_Chaining(t *testing.T) {
	event, err := NewEvent("customer.updated", "7", "customer", "customer-service", nil)
	require.NoError(t, err)

	got := event.WithCorrelationID("corr-1").WithMetadata("actor", "alice")
	assert.Same(t, event, got)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, "alice", event.Metadata["actor"])
}

func TestEvent_Marshal(t *testing.T) {
	event, err := NewEvent("customer.deleted", "9", "customer", "customer-service", map[string]string{"name": "bob"})
	require.NoError(t, err)
	event.WithCorrelationID("corr-9")

	raw, err := event.Marshal()
	require.NoError(t, err)

	var restored Event
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, event.EventID, restored.EventID)
	assert.Equal(t, event.EventType, restored.EventType)
	assert.Equal(t, "corr-9", restored.CorrelationID)
	assert.JSONEq(t, string(event.Data), string(restored.Data))
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"broker1:9092", "broker2:9092"})
	assert.Len(t, cfg.Brokers, 2)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
}

func TestProducer_CloseWithoutConnect(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestProducer_PingNoBrokers(t *testing.T) {
	p := &Producer{}
	err := p.Ping(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
