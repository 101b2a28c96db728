package grpc

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/andrescamacho/portsim-go/internal/application/common"
)

// DaemonServer serves the simulation service on a unix socket
type DaemonServer struct {
	service         *SimulationService
	listener        net.Listener
	socketPath      string
	shutdownTimeout time.Duration
	logger          common.Logger
}

// NewDaemonServer creates the socket listener for a daemon
func NewDaemonServer(service *SimulationService, socketPath string, shutdownTimeout time.Duration, logger common.Logger) (*DaemonServer, error) {
	// Remove existing socket file if present
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket listener: %w", err)
	}

	// Owner only
	if err := os.Chmod(socketPath, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}

	if logger == nil {
		logger = common.LoggerFromContext(context.Background())
	}

	return &DaemonServer{
		service:         service,
		listener:        listener,
		socketPath:      socketPath,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}, nil
}

// NewGRPCServer builds a gRPC server with the simulation service registered.
// Spans go to the global tracer provider.
func NewGRPCServer(service *SimulationService) *grpc.Server {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(service.LoggingInterceptor()),
	)
	RegisterSimulationServiceServer(server, service)
	return server
}

// Start serves until ctx is cancelled, then drains in-flight calls
func (s *DaemonServer) Start(ctx context.Context) error {
	s.logger.Log(common.LevelInfo, "Daemon listening", map[string]interface{}{
		"socket": s.socketPath,
	})

	grpcServer := NewGRPCServer(s.service)

	errChan := make(chan error, 1)
	go func() {
		if err := grpcServer.Serve(s.listener); err != nil {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	s.logger.Log(common.LevelInfo, "Shutting down daemon", nil)

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(s.shutdownTimeout):
		s.logger.Log(common.LevelWarn, "Graceful shutdown timed out, forcing stop", nil)
		grpcServer.Stop()
	}

	os.Remove(s.socketPath)
	return nil
}
