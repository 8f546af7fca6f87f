package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customer-platform/customer-service/internal/domain"
	"github.com/customer-platform/customer-service/pkg/logger"
)

func testCustomer() *domain.Customer {
	return &domain.Customer{
		ID:        42,
		Name:      "bob",
		BirthDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:    "male",
	}
}

func TestNewEvent_CarriesCorrelationIDFromContext(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-123")

	ev, err := newEvent(ctx, TopicCustomerRegistered, testCustomer(), customerData(testCustomer()))

	require.NoError(t, err)
	assert.Equal(t, "corr-123", ev.CorrelationID)
}

func TestNewEvent_NoCorrelationIDWithoutContextValue(t *testing.T) {
	ev, err := newEvent(context.Background(), TopicCustomerRegistered, testCustomer(), customerData(testCustomer()))

	require.NoError(t, err)
	assert.Empty(t, ev.CorrelationID)
}

func TestNewEvent_Envelope(t *testing.T) {
	ev, err := newEvent(context.Background(), TopicCustomerUpdated, testCustomer(), customerData(testCustomer()))

	require.NoError(t, err)
	assert.Equal(t, TopicCustomerUpdated, ev.EventType)
	assert.Equal(t, "42", ev.AggregateID)
	assert.Equal(t, AggregateTypeCustomer, ev.AggregateType)
	assert.Equal(t, SourceCustomerService, ev.Source)

	var data CustomerData
	require.NoError(t, ev.UnmarshalData(&data))
	assert.Equal(t, "bob", data.Name)
	assert.Equal(t, "2000-01-01", data.BirthDate)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "identity.customer.registered", TopicCustomerRegistered)
	assert.Equal(t, "identity.customer.updated", TopicCustomerUpdated)
	assert.Equal(t, "identity.customer.deleted", TopicCustomerDeleted)
}
