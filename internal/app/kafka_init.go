package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/customers/internal/metrics"
	"github.com/vladislavdragonenkov/customers/internal/version"
)

// initEventPublisher создаёт Kafka-паблишер событий, если брокеры заданы.
// Недоступный брокер не мешает запуску: сервис продолжает работу без событий.
func initEventPublisher(cfg Config, m *metrics.EventMetrics, logger *log.Entry) (*kafka.CustomerPublisher, *kafka.Producer) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers, version.ServiceName)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, nil
	}

	logger.WithFields(log.Fields{
		"brokers": brokers,
		"topic":   cfg.EventsTopic,
	}).Info("kafka producer initialized")
	return kafka.NewCustomerPublisher(producer, cfg.EventsTopic, m), producer
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
