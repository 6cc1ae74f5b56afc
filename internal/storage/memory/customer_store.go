package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/customers/internal/domain"
)

// customerStoreInMemory - in-memory коллекция документов клиентов.
type customerStoreInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerStore возвращает in-memory хранилище для локальной разработки и тестов.
func NewCustomerStore() domain.CustomerStore {
	return &customerStoreInMemory{
		items: make(map[string]domain.Customer),
	}
}

// Query возвращает все документы. Порядок обхода map не определён, как и у настоящего хранилища.
func (s *customerStoreInMemory) Query(ctx context.Context) ([]domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Customer, 0, len(s.items))
	for _, customer := range s.items {
		result = append(result, customer)
	}
	return result, nil
}

// Read возвращает документ или ErrDocumentNotFound.
func (s *customerStoreInMemory) Read(ctx context.Context, id string) (domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return domain.Customer{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrDocumentNotFound
	}
	return customer, nil
}

// Insert сохраняет новый документ, если ID ещё не занят.
func (s *customerStoreInMemory) Insert(ctx context.Context, customer domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[customer.ID]; exists {
		return domain.ErrDocumentConflict
	}
	s.items[customer.ID] = customer
	return nil
}

// Replace перезаписывает существующий документ целиком.
func (s *customerStoreInMemory) Replace(ctx context.Context, customer domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[customer.ID]; !ok {
		return domain.ErrDocumentNotFound
	}
	s.items[customer.ID] = customer
	return nil
}

// Delete удаляет документ или возвращает ErrDocumentNotFound.
func (s *customerStoreInMemory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(s.items, id)
	return nil
}

// Ping всегда успешен: хранилище живёт в памяти процесса.
func (s *customerStoreInMemory) Ping(context.Context) error {
	return nil
}

var _ domain.CustomerStore = (*customerStoreInMemory)(nil)
