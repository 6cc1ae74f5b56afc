package kafka

import (
	"time"

	"github.com/vladislavdragonenkov/customers/internal/domain"
)

// TopicCustomerEvents - topic по умолчанию для событий изменений клиентов.
const TopicCustomerEvents = "customers.events"

// CustomerPayload - снимок клиента внутри события.
type CustomerPayload struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname,omitempty"`
	Lastname  string `json:"lastname,omitempty"`
	Age       *int   `json:"age,omitempty"`
}

// CustomerEvent - wire-формат события в Kafka.
type CustomerEvent struct {
	EventType  string           `json:"event_type"`
	CustomerID string           `json:"customer_id"`
	Customer   *CustomerPayload `json:"customer,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// NewCustomerEvent строит wire-событие. Для удаления снимок не передаётся.
func NewCustomerEvent(event domain.CustomerEvent) CustomerEvent {
	wire := CustomerEvent{
		EventType:  string(event.Type),
		CustomerID: event.Customer.ID,
		Timestamp:  event.OccurredAt.UTC(),
	}
	if event.Type != domain.CustomerEventDeleted {
		age := event.Customer.Age
		wire.Customer = &CustomerPayload{
			ID:        event.Customer.ID,
			Firstname: event.Customer.Firstname,
			Lastname:  event.Customer.Lastname,
			Age:       &age,
		}
	}
	return wire
}
