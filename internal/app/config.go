package app

import (
	"fmt"
	"strings"
	"time"
)

// Драйверы хранилища документов.
const (
	StoreDriverCosmos   = "cosmos"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config описывает настройки запуска сервиса клиентов.
type Config struct {
	HTTPAddr       string
	MetricsAddr    string
	GRPCHealthAddr string

	StoreDriver         string
	StoreDSN            string
	StoreDatabase       string
	StoreCollection     string
	PostgresAutoMigrate bool
	StoreTimeout        time.Duration

	// KafkaBrokers - список брокеров через запятую; пустое значение отключает события.
	KafkaBrokers string
	EventsTopic  string

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает базовые настройки. Реквизиты хранилища не имеют значений по умолчанию.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8000",
		MetricsAddr:         ":9090",
		StoreDriver:         StoreDriverCosmos,
		PostgresAutoMigrate: true,
		StoreTimeout:        5 * time.Second,
		EventsTopic:         "customers.events",
		ShutdownTimeout:     5 * time.Second,
	}
}

// ConfigurationError перечисляет все отсутствующие или неверные настройки сразу.
type ConfigurationError struct {
	Missing []string
	Invalid []string
}

func (e *ConfigurationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing required settings: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid settings: "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// Validate проверяет, что выбранному драйверу хватает реквизитов.
func (c Config) Validate() error {
	cfgErr := &ConfigurationError{}

	switch c.StoreDriver {
	case StoreDriverMemory:
	case StoreDriverCosmos, StoreDriverPostgres:
		if strings.TrimSpace(c.StoreDSN) == "" {
			cfgErr.Missing = append(cfgErr.Missing, "CUSTOMERS_STORE_DSN")
		}
		if strings.TrimSpace(c.StoreDatabase) == "" {
			cfgErr.Missing = append(cfgErr.Missing, "CUSTOMERS_STORE_DATABASE")
		}
		if strings.TrimSpace(c.StoreCollection) == "" {
			cfgErr.Missing = append(cfgErr.Missing, "CUSTOMERS_STORE_COLLECTION")
		}
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, fmt.Sprintf("CUSTOMERS_STORE_DRIVER=%q (use cosmos|postgres|memory)", c.StoreDriver))
	}

	if c.HTTPAddr == "" {
		cfgErr.Missing = append(cfgErr.Missing, "CUSTOMERS_HTTP_ADDR")
	}
	if c.StoreTimeout <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "CUSTOMERS_STORE_TIMEOUT must be > 0")
	}
	if c.ShutdownTimeout <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "CUSTOMERS_SHUTDOWN_TIMEOUT must be > 0")
	}

	if len(cfgErr.Missing) == 0 && len(cfgErr.Invalid) == 0 {
		return nil
	}
	return cfgErr
}

// Brokers разбирает KafkaBrokers в список адресов.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
