package grpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/portsim-go/internal/application/simulation"
	"github.com/andrescamacho/portsim-go/internal/application/simulation/types"
	"github.com/andrescamacho/portsim-go/internal/domain/shared"
)

// ApplyRequest asks the daemon to run a batch of actions
type ApplyRequest struct {
	Actions  []types.Action `json:"actions"`
	Parallel bool           `json:"parallel,omitempty"`
}

// ActionReply is the wire form of one action result
type ActionReply struct {
	Index     int      `json:"index"`
	Sequence  int      `json:"sequence"`
	Type      string   `json:"type"`
	ShipID    string   `json:"ship_id"`
	Outcome   string   `json:"outcome"`
	Reason    string   `json:"reason,omitempty"`
	Error     string   `json:"error,omitempty"`
	FuelAfter float64  `json:"fuel_after,omitempty"`
	FuelUsed  float64  `json:"fuel_used,omitempty"`
	Distance  float64  `json:"distance,omitempty"`
	Hops      []string `json:"hops,omitempty"`
}

// ApplyReply summarises a batch
type ApplyReply struct {
	RunID     string        `json:"run_id"`
	Succeeded int           `json:"succeeded"`
	Rejected  int           `json:"rejected"`
	Failed    int           `json:"failed"`
	Results   []ActionReply `json:"results"`
}

// SnapshotRequest names a stored snapshot or labels a new one
type SnapshotRequest struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label,omitempty"`
}

// SnapshotReply identifies a stored snapshot
type SnapshotReply struct {
	ID    string `json:"id"`
	RunID string `json:"run_id"`
}

// toStruct converts any JSON-encodable value into a protobuf Struct
func toStruct(v interface{}) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return structpb.NewStruct(m)
}

// fromStruct decodes a protobuf Struct into v
func fromStruct(s *structpb.Struct, v interface{}) error {
	if s == nil {
		return nil
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}

// toApplyReply converts a controller report for the wire
func toApplyReply(report simulation.Report) ApplyReply {
	reply := ApplyReply{
		RunID:     report.RunID,
		Succeeded: report.Succeeded,
		Rejected:  report.Rejected,
		Failed:    report.Failed,
		Results:   make([]ActionReply, len(report.Results)),
	}
	for i, r := range report.Results {
		ar := ActionReply{
			Index:    r.Index,
			Sequence: r.Sequence,
			Type:     string(r.Action.Type),
			ShipID:   r.Action.ShipID,
			Outcome:  r.Outcome(),
			Reason:   r.Reason,
		}
		if r.Err != nil {
			ar.Error = r.Err.Error()
		}
		if r.Response != nil {
			ar.FuelAfter = r.Response.FuelAfter
			ar.FuelUsed = r.Response.FuelUsed
			ar.Distance = r.Response.Distance
			ar.Hops = r.Response.Hops
		}
		reply.Results[i] = ar
	}
	return reply
}

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, shared.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
