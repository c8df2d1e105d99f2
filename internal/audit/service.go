// Package audit consumes crm domain events and writes them to the structured log.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-crm-graphql/internal/crm"
	kafkax "github.com/ariefcatur/go-crm-graphql/internal/kafka"
	"github.com/ariefcatur/go-crm-graphql/internal/redisx"
)

type Service struct {
	Redis       redis.Cmdable // nil disables dedup
	Log         *zap.Logger
	ServiceName string

	mu     sync.Mutex
	counts map[string]int
}

// HandleEvent is installed as the consumer handler. Malformed messages are logged and
// committed so they do not block the partition.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	var env crm.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Warn("skip malformed event", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}

	if s.Redis != nil {
		dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
		first, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
		if err != nil {
			log.Warn("dedup unavailable", zap.Error(err))
		} else if !first {
			log.Debug("duplicate event", zap.String("event_id", env.EventID))
			return nil
		}
	}

	fields, err := describe(env)
	if err != nil {
		log.Warn("skip event with bad payload", zap.String("event_type", env.EventType), zap.Error(err))
		return nil
	}
	fields = append([]zap.Field{
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.String("producer", env.Producer),
		zap.String("trace_id", env.TraceID),
		zap.Time("occurred_at", env.OccurredAt),
	}, fields...)
	log.Info("audit", fields...)

	s.mu.Lock()
	if s.counts == nil {
		s.counts = make(map[string]int)
	}
	s.counts[env.EventType]++
	s.mu.Unlock()
	return nil
}

// Counts returns how many events of each type were recorded.
func (s *Service) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

func describe(env crm.Envelope) ([]zap.Field, error) {
	switch env.EventType {
	case crm.EventCustomerCreated:
		p, err := kafkax.UnwrapPayload[crm.CustomerCreatedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		return []zap.Field{zap.String("customer_id", p.CustomerID), zap.String("email", p.Email)}, nil
	case crm.EventCustomersBulkCreated:
		p, err := kafkax.UnwrapPayload[crm.CustomersBulkCreatedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		return []zap.Field{zap.Int("created", len(p.CustomerIDs)), zap.Int("rejected", p.Rejected)}, nil
	case crm.EventProductCreated:
		p, err := kafkax.UnwrapPayload[crm.ProductCreatedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		return []zap.Field{zap.String("product_id", p.ProductID), zap.String("price", p.Price), zap.Int("stock", p.Stock)}, nil
	case crm.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[crm.OrderCreatedPayload](env.Payload)
		if err != nil {
			return nil, err
		}
		return []zap.Field{zap.String("order_id", p.OrderID), zap.String("customer_id", p.CustomerID), zap.Strings("product_ids", p.ProductIDs)}, nil
	default:
		return []zap.Field{zap.String("correlation_id", env.CorrelationID)}, nil
	}
}
