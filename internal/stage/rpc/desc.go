package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceDesc describes dramatica.v1.Stage. Every method takes and returns
// a google.protobuf.Struct, so no generated code is needed.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StageServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: unary("Analyze", StageServer.Analyze)},
		{MethodName: "Run", Handler: unary("Run", StageServer.Run)},
		{MethodName: "Begin", Handler: unary("Begin", StageServer.Begin)},
		{MethodName: "Resume", Handler: unary("Resume", StageServer.Resume)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dramatica/v1/stage.proto",
}

type method func(StageServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name string, call method) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StageServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(StageServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
