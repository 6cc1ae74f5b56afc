package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/customers/internal/domain"
	"github.com/vladislavdragonenkov/customers/internal/metrics"
)

// DefaultPublishTimeout ограничивает ожидание отправки события внутри запроса.
const DefaultPublishTimeout = 3 * time.Second

type eventSender interface {
	PublishEvent(topic, key, eventType string, event any) error
}

// CustomerPublisher отправляет domain.CustomerEvent в Kafka topic с ключом customer ID.
type CustomerPublisher struct {
	sender  eventSender
	topic   string
	metrics *metrics.EventMetrics
	timeout time.Duration
}

// NewCustomerPublisher создаёт паблишер; пустой topic заменяется TopicCustomerEvents.
func NewCustomerPublisher(producer *Producer, topic string, m *metrics.EventMetrics) *CustomerPublisher {
	return newCustomerPublisher(producer, topic, m)
}

func newCustomerPublisher(sender eventSender, topic string, m *metrics.EventMetrics) *CustomerPublisher {
	if topic == "" {
		topic = TopicCustomerEvents
	}
	return &CustomerPublisher{sender: sender, topic: topic, metrics: m, timeout: DefaultPublishTimeout}
}

// PublishCustomerEvent отправляет событие и ждёт не дольше timeout или отмены ctx.
// Отправка, не успевшая завершиться, продолжается в фоне в пределах таймаутов producer.
func (p *CustomerPublisher) PublishCustomerEvent(ctx context.Context, event domain.CustomerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- p.sender.PublishEvent(p.topic, event.Customer.ID, string(event.Type), NewCustomerEvent(event))
	}()

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
		err = fmt.Errorf("publish %s for customer %s: timed out after %s", event.Type, event.Customer.ID, p.timeout)
	}

	if p.metrics != nil {
		p.metrics.RecordPublished(string(event.Type), err)
	}
	return err
}

var _ domain.EventPublisher = (*CustomerPublisher)(nil)
