package cosmos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vladislavdragonenkov/customers/internal/domain"
)

// customerDocument - представление клиента в коллекции. _id и id совпадают:
// _id даёт уникальность, id служит ключом партиции.
type customerDocument struct {
	ID           string `bson:"_id"`
	PartitionKey string `bson:"id"`
	Firstname    string `bson:"firstname"`
	Lastname     string `bson:"lastname"`
	Age          int    `bson:"age"`
}

func toDocument(c domain.Customer) customerDocument {
	return customerDocument{
		ID:           c.ID,
		PartitionKey: c.ID,
		Firstname:    c.Firstname,
		Lastname:     c.Lastname,
		Age:          c.Age,
	}
}

func (d customerDocument) toDomain() domain.Customer {
	return domain.Customer{
		ID:        d.ID,
		Firstname: d.Firstname,
		Lastname:  d.Lastname,
		Age:       d.Age,
	}
}

// pointFilter адресует документ в пределах одной партиции.
func pointFilter(id string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: PartitionKeyField, Value: id},
	}
}

type customerStore struct {
	store      *Store
	collection *mongo.Collection
	opTimeout  time.Duration
}

// NewCustomerStore создаёт реализацию CustomerStore над коллекцией name.
func NewCustomerStore(store *Store, name string) domain.CustomerStore {
	return &customerStore{
		store:      store,
		collection: store.db.Collection(name),
		opTimeout:  store.opTimeout,
	}
}

func (s *customerStore) Query(ctx context.Context) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []customerDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}

	result := make([]domain.Customer, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain())
	}
	return result, nil
}

func (s *customerStore) Read(ctx context.Context, id string) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	var doc customerDocument
	if err := s.collection.FindOne(ctx, pointFilter(id)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Customer{}, domain.ErrDocumentNotFound
		}
		return domain.Customer{}, fmt.Errorf("find customer: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *customerStore) Insert(ctx context.Context, customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, toDocument(customer)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDocumentConflict
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (s *customerStore) Replace(ctx context.Context, customer domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	res, err := s.collection.ReplaceOne(ctx, pointFilter(customer.ID), toDocument(customer))
	if err != nil {
		return fmt.Errorf("replace customer: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (s *customerStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, pointFilter(id))
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (s *customerStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

var _ domain.CustomerStore = (*customerStore)(nil)
