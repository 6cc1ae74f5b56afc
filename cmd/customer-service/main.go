package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/app"
	"github.com/vladislavdragonenkov/customers/internal/version"
)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) []string {
	var warnings []string

	if v, ok := lookupTrimmed(lookup, "LOG_FORMAT"); ok && strings.EqualFold(v, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.SetLevel(log.InfoLevel)
	if v, ok := lookupTrimmed(lookup, "LOG_LEVEL"); ok {
		level, err := log.ParseLevel(v)
		if err != nil {
			warnings = append(warnings, "LOG_LEVEL ignored: "+err.Error())
		} else {
			log.SetLevel(level)
		}
	}
	return warnings
}

// loadDotEnv подхватывает .env из рабочей директории; уже заданные переменные не переопределяются.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func main() {
	dotenvErr := loadDotEnv()
	warnings := setupLogger(osLookup)
	if dotenvErr != nil {
		log.WithError(dotenvErr).Warn("failed to load .env file")
	}

	cfg, cfgWarnings := readConfigFromEnv(osLookup)
	for _, w := range append(warnings, cfgWarnings...) {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":        cfg.HTTPAddr,
		"metrics_addr":     cfg.MetricsAddr,
		"grpc_health_addr": cfg.GRPCHealthAddr,
		"store_driver":     cfg.StoreDriver,
		"version":          version.String(),
	}).Info("запускаем CustomerService")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("CustomerService остановлен")
}
