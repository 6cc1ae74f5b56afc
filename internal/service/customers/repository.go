package customers

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/domain"
)

// Repository - единственный компонент, который обращается к хранилищу документов.
// Выдаёт идентификаторы, переводит "not found" хранилища в отсутствие результата
// и выполняет слияние частичных обновлений.
type Repository struct {
	store     domain.CustomerStore
	publisher domain.EventPublisher
	logger    *log.Entry
	newID     func() string
	now       func() time.Time
}

// Option настраивает Repository.
type Option func(*Repository)

// WithIDGenerator подменяет генератор идентификаторов (по умолчанию UUIDv4).
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithClock подменяет источник времени для событий.
func WithClock(fn func() time.Time) Option {
	return func(r *Repository) {
		if fn != nil {
			r.now = fn
		}
	}
}

// NewRepository создаёт репозиторий клиентов. publisher может быть nil - тогда события не публикуются.
func NewRepository(store domain.CustomerStore, publisher domain.EventPublisher, logger *log.Entry, opts ...Option) *Repository {
	if logger == nil {
		logger = log.New().WithField("component", "customers")
	}
	r := &Repository{
		store:     store,
		publisher: publisher,
		logger:    logger,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List возвращает всех клиентов одним сканирующим запросом.
func (r *Repository) List(ctx context.Context) ([]domain.Customer, error) {
	items, err := r.store.Query(ctx)
	if err != nil {
		return nil, &domain.StoreError{Op: "query customers", Err: err}
	}
	if items == nil {
		items = []domain.Customer{}
	}
	return items, nil
}

// Get возвращает клиента по ID; found=false, если документа нет.
func (r *Repository) Get(ctx context.Context, id string) (domain.Customer, bool, error) {
	customer, err := r.store.Read(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Customer{}, false, nil
		}
		return domain.Customer{}, false, &domain.StoreError{Op: "read customer", Err: err}
	}
	return customer, true, nil
}

// Create выдаёт новый ID и записывает документ. Проверка уникальности ID не выполняется.
func (r *Repository) Create(ctx context.Context, in domain.CustomerCreate) (domain.Customer, error) {
	customer := domain.NewCustomer(r.newID(), in)

	if err := r.store.Insert(ctx, customer); err != nil {
		return domain.Customer{}, &domain.StoreError{Op: "create customer", Err: err}
	}

	r.logger.WithField("customer_id", customer.ID).Info("customer created")
	r.publish(ctx, domain.CustomerEventCreated, customer)
	return customer, nil
}

// Update читает документ, накладывает переданные поля и перезаписывает документ целиком.
// found=false, если документа нет (в том числе если он исчез между чтением и записью).
func (r *Repository) Update(ctx context.Context, id string, update domain.CustomerUpdate) (domain.Customer, bool, error) {
	existing, err := r.store.Read(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Customer{}, false, nil
		}
		return domain.Customer{}, false, &domain.StoreError{Op: "read customer", Err: err}
	}

	merged := domain.Merge(existing, update)
	if err := r.store.Replace(ctx, merged); err != nil {
		if domain.IsNotFound(err) {
			r.logger.WithField("customer_id", id).Warn("customer disappeared before replace")
			return domain.Customer{}, false, nil
		}
		return domain.Customer{}, false, &domain.StoreError{Op: "replace customer", Err: err}
	}

	r.logger.WithField("customer_id", id).Info("customer updated")
	r.publish(ctx, domain.CustomerEventUpdated, merged)
	return merged, true, nil
}

// Delete удаляет клиента; false, если документа с таким ID не было.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.store.Delete(ctx, id); err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, &domain.StoreError{Op: "delete customer", Err: err}
	}

	r.logger.WithField("customer_id", id).Info("customer deleted")
	r.publish(ctx, domain.CustomerEventDeleted, domain.Customer{ID: id})
	return true, nil
}

// publish отправляет событие после успешной записи. Ошибка публикации не меняет результат операции.
func (r *Repository) publish(ctx context.Context, eventType domain.CustomerEventType, customer domain.Customer) {
	if r.publisher == nil {
		return
	}

	event := domain.CustomerEvent{
		Type:       eventType,
		Customer:   customer,
		OccurredAt: r.now(),
	}
	if err := r.publisher.PublishCustomerEvent(ctx, event); err != nil {
		r.logger.WithError(err).WithFields(log.Fields{
			"customer_id": customer.ID,
			"event_type":  eventType,
		}).Warn("failed to publish customer event")
	}
}

var _ domain.CustomerRepository = (*Repository)(nil)
