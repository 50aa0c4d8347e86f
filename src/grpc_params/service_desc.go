package grpc_params

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages are google.protobuf.Struct, so no generated code is needed:
//
//	service Parameters {
//	  rpc Get(google.protobuf.Struct) returns (google.protobuf.Struct);
//	  rpc ListSources(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
const (
	ServiceName       = "paramserver.Parameters"
	GetMethod         = "/paramserver.Parameters/Get"
	ListSourcesMethod = "/paramserver.Parameters/ListSources"
)

// ParametersServer is the server API for the Parameters service.
type ParametersServer interface {
	Get(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSources(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

func unaryHandler(method string, call func(ParametersServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ParametersServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ParametersServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc registers a ParametersServer on a *grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ParametersServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Get",
			Handler:    unaryHandler(GetMethod, ParametersServer.Get),
		},
		{
			MethodName: "ListSources",
			Handler:    unaryHandler(ListSourcesMethod, ParametersServer.ListSources),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "paramserver.proto",
}

// -----------------------------------------------------------------------------

// ParametersClient calls the service over an existing connection.
type ParametersClient struct {
	cc grpc.ClientConnInterface
}

func NewParametersClient(cc grpc.ClientConnInterface) *ParametersClient {
	return &ParametersClient{cc: cc}
}

func (c *ParametersClient) Get(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ParametersClient) ListSources(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ListSourcesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
