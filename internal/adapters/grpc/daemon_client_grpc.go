package grpc

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
)

// DaemonClient talks to a running simulation daemon
type DaemonClient struct {
	conn *grpc.ClientConn
}

// NewDaemonClient connects to a daemon on a unix socket
func NewDaemonClient(socketPath string, opts ...grpc.DialOption) (*DaemonClient, error) {
	return NewDaemonClientForTarget("unix:"+socketPath, opts...)
}

// NewDaemonClientForTarget connects to any gRPC target
func NewDaemonClientForTarget(target string, opts ...grpc.DialOption) (*DaemonClient, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}, opts...)
	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon socket: %w", err)
	}
	return &DaemonClient{conn: conn}, nil
}

// Close closes the gRPC connection
func (c *DaemonClient) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *DaemonClient) invoke(ctx context.Context, method string, req, reply interface{}) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return err
	}
	return fromStruct(out, reply)
}

// Apply runs actions on the daemon's world
func (c *DaemonClient) Apply(ctx context.Context, actions []types.Action, parallel bool) (*ApplyReply, error) {
	var reply ApplyReply
	if err := c.invoke(ctx, methodApply, ApplyRequest{Actions: actions, Parallel: parallel}, &reply); err != nil {
		return nil, fmt.Errorf("failed to apply actions: %w", err)
	}
	return &reply, nil
}

// Snapshot fetches the daemon's current world state
func (c *DaemonClient) Snapshot(ctx context.Context) (*types.WorldState, error) {
	var state types.WorldState
	if err := c.invoke(ctx, methodSnapshot, struct{}{}, &state); err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &state, nil
}

// LoadWorld replaces the daemon's world
func (c *DaemonClient) LoadWorld(ctx context.Context, doc *types.WorldDocument) (*types.WorldState, error) {
	var state types.WorldState
	if err := c.invoke(ctx, methodLoadWorld, doc, &state); err != nil {
		return nil, fmt.Errorf("failed to load world: %w", err)
	}
	return &state, nil
}

// SaveSnapshot asks the daemon to persist its world
func (c *DaemonClient) SaveSnapshot(ctx context.Context, label string) (*SnapshotReply, error) {
	var reply SnapshotReply
	if err := c.invoke(ctx, methodSaveSnapshot, SnapshotRequest{Label: label}, &reply); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return &reply, nil
}

// RestoreSnapshot loads a stored snapshot; an empty id means the latest
func (c *DaemonClient) RestoreSnapshot(ctx context.Context, id string) (*types.WorldState, error) {
	var state types.WorldState
	if err := c.invoke(ctx, methodRestoreSnapshot, SnapshotRequest{ID: id}, &state); err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return &state, nil
}
