package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/customers/internal/domain"
)

const uniqueViolationCode = "23505"

// documentBody - JSON-документ клиента в колонке body.
type documentBody struct {
	ID        string `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Age       int    `json:"age"`
}

type customerStore struct {
	store      *Store
	db         *sql.DB
	collection string
	opTimeout  time.Duration
}

// NewCustomerStore создаёт PostgreSQL-реализацию CustomerStore. Документы коллекции
// хранятся в общей таблице documents и адресуются парой (collection, id).
func NewCustomerStore(store *Store, collection string) domain.CustomerStore {
	return &customerStore{
		store:      store,
		db:         store.DB(),
		collection: collection,
		opTimeout:  store.opTimeout,
	}
}

func (s *customerStore) Query(ctx context.Context) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT body
		FROM documents
		WHERE collection = $1
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Customer, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		customer, err := decodeBody(raw)
		if err != nil {
			return nil, err
		}
		result = append(result, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return result, nil
}

func (s *customerStore) Read(ctx context.Context, id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var raw []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT body
		FROM documents
		WHERE collection = $1 AND id = $2
	`, s.collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrDocumentNotFound
		}
		return domain.Customer{}, fmt.Errorf("select document: %w", err)
	}
	return decodeBody(raw)
}

func (s *customerStore) Insert(ctx context.Context, customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	body, err := encodeBody(customer)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`, s.collection, customer.ID, body); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDocumentConflict
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *customerStore) Replace(ctx context.Context, customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	body, err := encodeBody(customer)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET body = $3, updated_at = NOW()
		WHERE collection = $1 AND id = $2
	`, s.collection, customer.ID, body)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireAffected(res)
}

func (s *customerStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`, s.collection, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireAffected(res)
}

func (s *customerStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func encodeBody(c domain.Customer) ([]byte, error) {
	body, err := json.Marshal(documentBody{
		ID:        c.ID,
		Firstname: c.Firstname,
		Lastname:  c.Lastname,
		Age:       c.Age,
	})
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return body, nil
}

func decodeBody(raw []byte) (domain.Customer, error) {
	var body documentBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return domain.Customer{}, fmt.Errorf("decode document: %w", err)
	}
	return domain.Customer{
		ID:        body.ID,
		Firstname: body.Firstname,
		Lastname:  body.Lastname,
		Age:       body.Age,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}

var _ domain.CustomerStore = (*customerStore)(nil)
