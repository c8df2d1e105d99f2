package crm

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-crm-graphql/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	EventCustomerCreated      = "CustomerCreated"
	EventCustomersBulkCreated = "CustomersBulkCreated"
	EventProductCreated       = "ProductCreated"
	EventOrderCreated         = "OrderCreated"

	eventVersion = 1
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // id of the created entity
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads ----

type CustomerCreatedPayload struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

type CustomersBulkCreatedPayload struct {
	CustomerIDs []string `json:"customer_ids"`
	Rejected    int      `json:"rejected"`
}

type ProductCreatedPayload struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Stock     int    `json:"stock"`
}

type OrderCreatedPayload struct {
	OrderID    string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	ProductIDs []string  `json:"product_ids"`
	OrderDate  time.Time `json:"order_date"`
}

type traceKey struct{}

// WithTraceID attaches the id that events emitted under ctx carry as trace_id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// Emitter publishes domain events after a successful write. Delivery is best effort.
type Emitter interface {
	Emit(ctx context.Context, eventType, key string, payload any)
}

type publisher interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header)
}

// KafkaEmitter wraps payloads in an Envelope and hands them to the async producer.
type KafkaEmitter struct {
	Producer publisher
	Service  string
}

func (e *KafkaEmitter) Emit(ctx context.Context, eventType, key string, payload any) {
	topic, ok := topicByEvent[eventType]
	if !ok {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  eventVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      e.Service,
		TraceID:       TraceID(ctx),
		CorrelationID: key,
		Payload:       kafkax.MustMarshal(payload),
	}
	e.Producer.Publish(topic, PartitionKey(key), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(eventVersion))},
	)
}
