package grpc

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/example/fooddash/pkg/config"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	defaultCheckInterval = 10 * time.Second
	pingTimeout          = 2 * time.Second
)

// Pinger is a dependency whose reachability decides the serving status.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer exposes grpc.health.v1 for orchestrators and peers found
// through etcd. Every dependency is reported as its own service name; the
// empty name is SERVING only while all of them answer.
type HealthServer struct {
	config   *config.ServerConfig
	checks   map[string]Pinger
	health   *health.Server
	logger   *zap.Logger
	interval time.Duration

	mu     sync.Mutex
	server *grpc.Server
	stop   chan struct{}
	once   sync.Once
}

func NewHealthServer(cfg *config.ServerConfig, checks map[string]Pinger, logger *zap.Logger) *HealthServer {
	return &HealthServer{
		config:   cfg,
		checks:   checks,
		health:   health.NewServer(),
		logger:   logger.Named("health"),
		interval: defaultCheckInterval,
		stop:     make(chan struct{}),
	}
}

// Start listens on the configured address and blocks until Stop.
func (h *HealthServer) Start() error {
	addr := h.config.Addr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, h.health)
	reflection.Register(srv)

	h.mu.Lock()
	h.server = srv
	h.mu.Unlock()

	h.checkAll(context.Background())
	go h.watch()

	h.logger.Info("Health service started", zap.String("address", addr))
	return srv.Serve(lis)
}

func (h *HealthServer) watch() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.checkAll(context.Background())
		}
	}
}

// checkAll pings every dependency once and publishes the result.
func (h *HealthServer) checkAll(ctx context.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	overall := healthpb.HealthCheckResponse_SERVING
	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := h.checks[name].Ping(pingCtx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
			h.logger.Warn("Dependency check failed", zap.String("dependency", name), zap.Error(err))
		}
		h.health.SetServingStatus(name, status)
	}
	h.health.SetServingStatus("", overall)
}

func (h *HealthServer) Stop() {
	h.once.Do(func() {
		close(h.stop)
		h.health.Shutdown()

		h.mu.Lock()
		srv := h.server
		h.mu.Unlock()
		if srv != nil {
			srv.GracefulStop()
		}
	})
}
