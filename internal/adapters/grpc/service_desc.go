package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages travel as google.protobuf.Struct; see type_converters.go for
// the Go shapes they carry.

const simulationServiceName = "portsim.v1.SimulationService"

const (
	methodApply           = "/" + simulationServiceName + "/Apply"
	methodSnapshot        = "/" + simulationServiceName + "/Snapshot"
	methodLoadWorld       = "/" + simulationServiceName + "/LoadWorld"
	methodSaveSnapshot    = "/" + simulationServiceName + "/SaveSnapshot"
	methodRestoreSnapshot = "/" + simulationServiceName + "/RestoreSnapshot"
)

// SimulationServiceServer is the server API for the simulation daemon
type SimulationServiceServer interface {
	Apply(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Snapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadWorld(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RestoreSnapshot(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterSimulationServiceServer attaches srv to a gRPC server
func RegisterSimulationServiceServer(s grpc.ServiceRegistrar, srv SimulationServiceServer) {
	s.RegisterService(&SimulationServiceDesc, srv)
}

type unaryMethod func(SimulationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SimulationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(SimulationServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SimulationServiceDesc describes the simulation daemon service
var SimulationServiceDesc = grpc.ServiceDesc{
	ServiceName: simulationServiceName,
	HandlerType: (*SimulationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Apply", Handler: unaryHandler(methodApply, SimulationServiceServer.Apply)},
		{MethodName: "Snapshot", Handler: unaryHandler(methodSnapshot, SimulationServiceServer.Snapshot)},
		{MethodName: "LoadWorld", Handler: unaryHandler(methodLoadWorld, SimulationServiceServer.LoadWorld)},
		{MethodName: "SaveSnapshot", Handler: unaryHandler(methodSaveSnapshot, SimulationServiceServer.SaveSnapshot)},
		{MethodName: "RestoreSnapshot", Handler: unaryHandler(methodRestoreSnapshot, SimulationServiceServer.RestoreSnapshot)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "portsim/v1/simulation.proto",
}
