package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/customer-platform/customer-service/pkg/kafka"
	"github.com/customer-platform/customer-service/pkg/logger"

	"github.com/customer-platform/customer-service/internal/domain"
)

// Topics for customer domain events.
var (
	TopicCustomerRegistered = pkgkafka.Topic("customer", "registered")
	TopicCustomerUpdated    = pkgkafka.Topic("customer", "updated")
	TopicCustomerDeleted    = pkgkafka.Topic("customer", "deleted")
)

const (
	AggregateTypeCustomer = "customer"
	SourceCustomerService = "customer-service"
)

// CustomerData is the payload for registered and updated events. The password
// hash never leaves the service.
type CustomerData struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BirthDate string `json:"birth_date"`
	Gender    string `json:"gender"`
}

// CustomerDeletedData is the payload for a customer.deleted event.
type CustomerDeletedData struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Publisher sends customer domain events. Implemented by Producer; mocked in
// service tests.
type Publisher interface {
	CustomerRegistered(ctx context.Context, c *domain.Customer) error
	CustomerUpdated(ctx context.Context, c *domain.Customer) error
	CustomerDeleted(ctx context.Context, c *domain.Customer) error
}

// Producer publishes customer domain events to Kafka.
type Producer struct {
	kafka *pkgkafka.Producer
	log   *slog.Logger
}

// NewProducer creates an event producer for the customer service.
func NewProducer(kafka *pkgkafka.Producer, log *slog.Logger) *Producer {
	return &Producer{kafka: kafka, log: log}
}

// CustomerRegistered publishes a customer.registered event.
func (p *Producer) CustomerRegistered(ctx context.Context, c *domain.Customer) error {
	return p.publish(ctx, TopicCustomerRegistered, c, customerData(c))
}

// CustomerUpdated publishes a customer.updated event.
func (p *Producer) CustomerUpdated(ctx context.Context, c *domain.Customer) error {
	return p.publish(ctx, TopicCustomerUpdated, c, customerData(c))
}

// CustomerDeleted publishes a customer.deleted event.
func (p *Producer) CustomerDeleted(ctx context.Context, c *domain.Customer) error {
	return p.publish(ctx, TopicCustomerDeleted, c, CustomerDeletedData{ID: c.ID, Name: c.Name})
}

func customerData(c *domain.Customer) CustomerData {
	return CustomerData{
		ID:        c.ID,
		Name:      c.Name,
		BirthDate: c.BirthDate.Format(domain.DateFormat),
		Gender:    c.Gender,
	}
}

// newEvent builds the envelope for a customer event, carrying the request
// correlation ID from the context when one is present.
func newEvent(ctx context.Context, topic string, c *domain.Customer, data any) (*pkgkafka.Event, error) {
	ev, err := pkgkafka.NewEvent(topic, fmt.Sprintf("%d", c.ID), AggregateTypeCustomer, SourceCustomerService, data)
	if err != nil {
		return nil, fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		ev.WithCorrelationID(id)
	}
	return ev, nil
}

func (p *Producer) publish(ctx context.Context, topic string, c *domain.Customer, data any) error {
	ev, err := newEvent(ctx, topic, c, data)
	if err != nil {
		return err
	}

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.log.DebugContext(ctx, "published customer event",
		slog.String("topic", topic),
		slog.Int64("customer_id", c.ID),
	)

	return nil
}
