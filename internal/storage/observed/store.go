// Package observed оборачивает любое хранилище клиентов метриками и debug-логом запросов.
package observed

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/domain"
	"github.com/vladislavdragonenkov/customers/internal/metrics"
)

type store struct {
	next    domain.CustomerStore
	driver  string
	metrics *metrics.StoreMetrics
	logger  *log.Entry
}

// Wrap возвращает хранилище, фиксирующее длительность и результат каждой операции.
func Wrap(next domain.CustomerStore, driver string, m *metrics.StoreMetrics, logger *log.Entry) domain.CustomerStore {
	if logger == nil {
		logger = log.New().WithField("component", "store")
	}
	return &store{
		next:    next,
		driver:  driver,
		metrics: m,
		logger:  logger.WithField("driver", driver),
	}
}

func (s *store) Query(ctx context.Context) ([]domain.Customer, error) {
	start := time.Now()
	items, err := s.next.Query(ctx)
	s.observe("query", "", start, err)
	return items, err
}

func (s *store) Read(ctx context.Context, id string) (domain.Customer, error) {
	start := time.Now()
	customer, err := s.next.Read(ctx, id)
	s.observe("read", id, start, err)
	return customer, err
}

func (s *store) Insert(ctx context.Context, customer domain.Customer) error {
	start := time.Now()
	err := s.next.Insert(ctx, customer)
	s.observe("insert", customer.ID, start, err)
	return err
}

func (s *store) Replace(ctx context.Context, customer domain.Customer) error {
	start := time.Now()
	err := s.next.Replace(ctx, customer)
	s.observe("replace", customer.ID, start, err)
	return err
}

func (s *store) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	s.observe("delete", id, start, err)
	return err
}

func (s *store) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *store) observe(operation, id string, start time.Time, err error) {
	duration := time.Since(start)
	result := resultOf(err)

	if s.metrics != nil {
		s.metrics.ObserveOperation(s.driver, operation, result, duration)
	}

	entry := s.logger.WithFields(log.Fields{
		"operation":   operation,
		"result":      result,
		"duration_ms": duration.Milliseconds(),
	})
	if id != "" {
		entry = entry.WithField("customer_id", id)
	}
	if result == metrics.ResultError {
		entry.WithError(err).Warn("store operation failed")
		return
	}
	entry.Debug("store operation")
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, domain.ErrDocumentNotFound):
		return metrics.ResultNotFound
	case errors.Is(err, domain.ErrDocumentConflict):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}
