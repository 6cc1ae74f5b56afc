package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/customers/internal/app"
)

const (
	envHTTPAddr            = "CUSTOMERS_HTTP_ADDR"
	envMetricsAddr         = "CUSTOMERS_METRICS_ADDR"
	envGRPCHealthAddr      = "CUSTOMERS_GRPC_HEALTH_ADDR"
	envStoreDriver         = "CUSTOMERS_STORE_DRIVER"
	envStoreDSN            = "CUSTOMERS_STORE_DSN"
	envStoreDatabase       = "CUSTOMERS_STORE_DATABASE"
	envStoreCollection     = "CUSTOMERS_STORE_COLLECTION"
	envPostgresAutoMigrate = "CUSTOMERS_POSTGRES_AUTO_MIGRATE"
	envStoreTimeout        = "CUSTOMERS_STORE_TIMEOUT"
	envKafkaBrokers        = "KAFKA_BROKERS"
	envEventsTopic         = "CUSTOMERS_EVENTS_TOPIC"
	envShutdownTimeout     = "CUSTOMERS_SHUTDOWN_TIMEOUT"

	// Имена переменных, которые использовались до появления драйверов хранилища.
	envLegacyConnectionString = "COSMOS_CONNECTION_STRING"
	envLegacyDatabase         = "COSMOS_DATABASE"
	envLegacyContainer        = "COSMOS_CONTAINER"
)

type envLookup func(key string) (string, bool)

// readConfigFromEnv собирает конфигурацию. Неверное значение не прерывает запуск:
// сохраняется значение по умолчанию, а причина возвращается в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key, value string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %v", key, value, err))
	}

	if v, ok := lookupTrimmed(lookup, envHTTPAddr); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envGRPCHealthAddr); ok {
		cfg.GRPCHealthAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envStoreDriver); ok {
		cfg.StoreDriver = strings.ToLower(v)
	}

	cfg.StoreDSN = firstSet(lookup, envStoreDSN, envLegacyConnectionString)
	cfg.StoreDatabase = firstSet(lookup, envStoreDatabase, envLegacyDatabase)
	cfg.StoreCollection = firstSet(lookup, envStoreCollection, envLegacyContainer)

	if v, ok := lookupTrimmed(lookup, envPostgresAutoMigrate); ok {
		parsed, err := parseBool(v)
		if err != nil {
			warn(envPostgresAutoMigrate, v, err)
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envStoreTimeout); ok {
		parsed, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warn(envStoreTimeout, v, err)
		} else {
			cfg.StoreTimeout = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envShutdownTimeout); ok {
		parsed, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warn(envShutdownTimeout, v, err)
		} else {
			cfg.ShutdownTimeout = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := lookupTrimmed(lookup, envEventsTopic); ok {
		cfg.EventsTopic = v
	}

	return cfg, warnings
}

func osLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// lookupTrimmed считает пустое (после trim) значение незаданным.
func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func firstSet(lookup envLookup, keys ...string) string {
	for _, key := range keys {
		if v, ok := lookupTrimmed(lookup, key); ok {
			return v
		}
	}
	return ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if valid != nil && !valid(v) {
		return 0, fmt.Errorf("%s: %s", v, rule)
	}
	return v, nil
}
