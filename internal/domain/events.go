package domain

import (
	"context"
	"time"
)

// CustomerEventType определяет тип события изменения клиента.
type CustomerEventType string

const (
	CustomerEventCreated CustomerEventType = "customer.created"
	CustomerEventUpdated CustomerEventType = "customer.updated"
	CustomerEventDeleted CustomerEventType = "customer.deleted"
)

// CustomerEvent описывает изменение, уже зафиксированное в хранилище.
// Для удаления Customer содержит только ID.
type CustomerEvent struct {
	Type       CustomerEventType
	Customer   Customer
	OccurredAt time.Time
}

// EventPublisher публикует события изменений наружу.
type EventPublisher interface {
	PublishCustomerEvent(ctx context.Context, event CustomerEvent) error
}
