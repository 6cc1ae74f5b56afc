// Package cosmos реализует хранилище документов клиентов поверх Azure Cosmos DB for MongoDB API.
package cosmos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultConnTimeout = 10 * time.Second
	// DefaultOpTimeout ограничивает одну точечную операцию или скан.
	DefaultOpTimeout = 5 * time.Second
	// PartitionKeyField - поле документа, по которому коллекция партиционирована.
	PartitionKeyField = "id"
)

// Коды ошибок MongoDB wire protocol, которые обрабатываются при провижининге.
const (
	codeNamespaceExists = 48
	codeCommandNotFound = 59
)

// Config описывает подключение к базе документов.
type Config struct {
	ConnectionString string
	Database         string
	Collection       string
	OpTimeout        time.Duration
}

// Store владеет клиентом MongoDB API и выбранной базой.
type Store struct {
	client    *mongo.Client
	db        *mongo.Database
	opTimeout time.Duration
}

// Open подключается к аккаунту и проверяет доступность primary.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.ConnectionString == "" {
		return nil, errors.New("cosmos connection string is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("cosmos database name is required")
	}

	// Cosmos DB for MongoDB не поддерживает retryable writes.
	clientOpts := options.Client().
		ApplyURI(cfg.ConnectionString).
		SetRetryWrites(false).
		SetConnectTimeout(defaultConnTimeout)

	connectCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect cosmos: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping cosmos: %w", err)
	}

	return newStore(client, client.Database(cfg.Database), cfg.OpTimeout), nil
}

func newStore(client *mongo.Client, db *mongo.Database, opTimeout time.Duration) *Store {
	if opTimeout <= 0 {
		opTimeout = DefaultOpTimeout
	}
	return &Store{client: client, db: db, opTimeout: opTimeout}
}

// Ping проверяет доступность аккаунта.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("cosmos store is not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()
	return s.db.Client().Ping(pingCtx, readpref.Primary())
}

// EnsureCollection создаёт коллекцию с ключом партиции id, если её ещё нет.
// Сначала используется расширение Cosmos (customAction), на обычном MongoDB -
// стандартная команда create.
func (s *Store) EnsureCollection(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("collection name is required")
	}

	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	err := s.db.RunCommand(opCtx, bson.D{
		{Key: "customAction", Value: "CreateCollection"},
		{Key: "collection", Value: name},
		{Key: "shardKey", Value: PartitionKeyField},
	}).Err()
	switch {
	case err == nil, isAlreadyExists(err):
		return nil
	case !hasErrorCode(err, codeCommandNotFound):
		return fmt.Errorf("create collection %s: %w", name, err)
	}

	if err := s.db.CreateCollection(opCtx, name); err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("create collection %s: %w", name, err)
	}
	return nil
}

// Close отключает клиента.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func hasErrorCode(err error, code int) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorCode(code)
	}
	return false
}

func isAlreadyExists(err error) bool {
	return hasErrorCode(err, codeNamespaceExists)
}
