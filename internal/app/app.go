package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/customers/internal/health"
	"github.com/vladislavdragonenkov/customers/internal/service/rest"
	"github.com/vladislavdragonenkov/customers/internal/version"
)

const readHeaderTimeout = 10 * time.Second

// Run поднимает API, сервер метрик и (опционально) gRPC health, и блокируется до отмены ctx.
// Возвращает ctx.Err() при штатной остановке.
func Run(ctx context.Context, cfg Config) error {
	return run(ctx, cfg, prometheus.DefaultRegisterer, promhttp.Handler(), nil)
}

// run принимает ready для тестов: туда передаются фактические адреса слушателей.
func run(ctx context.Context, cfg Config, registerer prometheus.Registerer, metricsHandler http.Handler, ready func(listeners)) error {
	logger := log.WithField("component", "app")

	if err := cfg.Validate(); err != nil {
		return err
	}

	deps, err := NewDependencies(ctx, cfg, registerer, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		deps.Close(closeCtx)
	}()

	healthHandler := healthcheck.NewHandler(version.ServiceName, version.GetVersion())
	healthHandler.RegisterChecker("store", healthcheck.NewPingChecker("store", deps.Store))

	apiLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}
	apiSrv := &http.Server{
		Handler:           rest.NewRouter(deps.Repo, logger.WithField("layer", "http"), deps.HTTPMetrics),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	metricsLis, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		_ = apiLis.Close()
		return err
	}
	metricsSrv := &http.Server{
		Handler:           newMetricsMux(metricsHandler, healthHandler),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	var grpcSrv *grpcHealth
	if cfg.GRPCHealthAddr != "" {
		grpcSrv, err = newGRPCHealth(cfg.GRPCHealthAddr, registerer, logger)
		if err != nil {
			_ = apiLis.Close()
			_ = metricsLis.Close()
			return err
		}
	}

	errCh := make(chan error, 3)
	go func() {
		logger.Infof("HTTP API слушает %s", apiLis.Addr())
		errCh <- serveHTTP(apiSrv, apiLis)
	}()
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", metricsLis.Addr())
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", metricsLis.Addr(), metricsLis.Addr(), metricsLis.Addr())
		errCh <- serveHTTP(metricsSrv, metricsLis)
	}()

	followCtx, stopFollow := context.WithCancel(ctx)
	defer stopFollow()
	if grpcSrv != nil {
		go func() { errCh <- grpcSrv.Serve() }()
		go grpcSrv.Follow(followCtx, healthHandler)
	}

	if ready != nil {
		l := listeners{API: apiLis.Addr().String(), Metrics: metricsLis.Addr().String()}
		if grpcSrv != nil {
			l.GRPCHealth = grpcSrv.Addr()
		}
		ready(l)
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем серверы")
		runErr = ctx.Err()
	case err := <-errCh:
		logger.WithError(err).Error("server stopped unexpectedly")
		runErr = err
	}

	stopFollow()
	if grpcSrv != nil {
		grpcSrv.Stop(cfg.ShutdownTimeout)
	}
	shutdownHTTP(apiSrv, cfg.ShutdownTimeout, logger)
	shutdownHTTP(metricsSrv, cfg.ShutdownTimeout, logger)

	return runErr
}

// listeners - фактические адреса после bind (полезно при портах :0).
type listeners struct {
	API        string
	Metrics    string
	GRPCHealth string
}

func newMetricsMux(metricsHandler http.Handler, healthHandler *healthcheck.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler)
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	return mux
}

func serveHTTP(srv *http.Server, lis net.Listener) error {
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, timeout time.Duration, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
