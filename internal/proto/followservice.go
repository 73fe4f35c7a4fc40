// Package proto declares FollowService: its method names, the server interface
// and service descriptor, and a client stub. Messages are
// google.protobuf.Struct values.
package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "followhub.FollowService"

// Full method names, as seen by interceptors.
const (
	MethodRegister   = "/" + ServiceName + "/Register"
	MethodGetProfile = "/" + ServiceName + "/GetProfile"
	MethodGetFeed    = "/" + ServiceName + "/GetFeed"
	MethodFollow     = "/" + ServiceName + "/Follow"
	MethodPing       = "/" + ServiceName + "/Ping"
)

// FollowServiceServer is the server API of FollowService. Requests and
// responses are google.protobuf.Struct messages; field names match the
// HTTP API's JSON keys.
type FollowServiceServer interface {
	Register(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFeed(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Follow(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(FollowServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(call unaryMethod, fullMethod string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		s := srv.(FollowServiceServer)
		if interceptor == nil {
			return call(s, ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FollowServiceDesc describes FollowService for grpc.Server.RegisterService.
var FollowServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FollowServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(FollowServiceServer.Register, MethodRegister)},
		{MethodName: "GetProfile", Handler: unaryHandler(FollowServiceServer.GetProfile, MethodGetProfile)},
		{MethodName: "GetFeed", Handler: unaryHandler(FollowServiceServer.GetFeed, MethodGetFeed)},
		{MethodName: "Follow", Handler: unaryHandler(FollowServiceServer.Follow, MethodFollow)},
		{MethodName: "Ping", Handler: unaryHandler(FollowServiceServer.Ping, MethodPing)},
	},
	Streams: []grpc.StreamDesc{},
}

// FollowServiceClient calls FollowService over any client connection.
type FollowServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewFollowServiceClient(cc grpc.ClientConnInterface) *FollowServiceClient {
	return &FollowServiceClient{cc: cc}
}

func (c *FollowServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FollowServiceClient) Register(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodRegister, in, opts...)
}

func (c *FollowServiceClient) GetProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetProfile, in, opts...)
}

func (c *FollowServiceClient) GetFeed(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetFeed, in, opts...)
}

func (c *FollowServiceClient) Follow(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodFollow, in, opts...)
}

func (c *FollowServiceClient) Ping(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodPing, in, opts...)
}
