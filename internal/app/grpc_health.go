package app

import (
	"context"
	"errors"
	"net"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "github.com/vladislavdragonenkov/customers/internal/health"
	"github.com/vladislavdragonenkov/customers/internal/version"
)

const grpcHealthRefreshInterval = 5 * time.Second

// grpcHealth - gRPC health-сервер для оркестраторов, которые проверяют сервис по gRPC.
// Статус повторяет агрегированный статус HTTP health handler.
type grpcHealth struct {
	server   *grpc.Server
	health   *grpchealth.Server
	listener net.Listener
	logger   *log.Entry
}

func newGRPCHealth(addr string, registerer prometheus.Registerer, logger *log.Entry) (*grpcHealth, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	grpcMetrics := promgrpc.NewServerMetrics()
	if err := registerer.Register(grpcMetrics); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*promgrpc.ServerMetrics); ok {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	healthServer := grpchealth.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	grpcMetrics.InitializeMetrics(server)

	// reflection для grpcurl
	reflection.Register(server)

	return &grpcHealth{
		server:   server,
		health:   healthServer,
		listener: lis,
		logger:   logger,
	}, nil
}

func (g *grpcHealth) Addr() string {
	return g.listener.Addr().String()
}

// Serve блокируется до остановки сервера.
func (g *grpcHealth) Serve() error {
	g.logger.Infof("gRPC health сервер слушает %s", g.Addr())
	err := g.server.Serve(g.listener)
	if errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return err
}

// Follow периодически переносит статус health handler в gRPC health до отмены ctx.
func (g *grpcHealth) Follow(ctx context.Context, handler *healthcheck.Handler) {
	g.refresh(ctx, handler)

	ticker := time.NewTicker(grpcHealthRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.refresh(ctx, handler)
		}
	}
}

func (g *grpcHealth) refresh(ctx context.Context, handler *healthcheck.Handler) {
	status := healthpb.HealthCheckResponse_SERVING
	if handler.Evaluate(ctx).Status == healthcheck.StatusUnhealthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(version.ServiceName, status)
}

// Stop переводит сервис в NOT_SERVING и останавливает сервер, не дольше timeout.
func (g *grpcHealth) Stop(timeout time.Duration) {
	g.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(timeout):
		g.logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
		g.server.Stop()
	}
}
