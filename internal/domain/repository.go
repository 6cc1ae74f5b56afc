package domain

import "context"

// CustomerStore описывает коллекцию документов клиентов во внешнем хранилище.
// Все операции, кроме Query, адресуются одним ключом (ID = ключ партиции).
type CustomerStore interface {
	// Query возвращает все документы коллекции; порядок не гарантируется.
	Query(ctx context.Context) ([]Customer, error)
	// Read возвращает документ по ID или ErrDocumentNotFound.
	Read(ctx context.Context, id string) (Customer, error)
	// Insert записывает новый документ; ErrDocumentConflict, если ID уже занят.
	Insert(ctx context.Context, customer Customer) error
	// Replace полностью перезаписывает документ; ErrDocumentNotFound, если его нет.
	Replace(ctx context.Context, customer Customer) error
	// Delete удаляет документ по ID; ErrDocumentNotFound, если его нет.
	Delete(ctx context.Context, id string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// CustomerRepository - доменные операции над клиентами.
// Отсутствие записи выражается флагом found, а не ошибкой.
type CustomerRepository interface {
	List(ctx context.Context) ([]Customer, error)
	Get(ctx context.Context, id string) (customer Customer, found bool, err error)
	Create(ctx context.Context, in CustomerCreate) (Customer, error)
	Update(ctx context.Context, id string, update CustomerUpdate) (customer Customer, found bool, err error)
	Delete(ctx context.Context, id string) (deleted bool, err error)
}
