package proto

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

type echoServer struct{}

func (echoServer) echo(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return in, nil
}

func (s echoServer) Register(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.echo(ctx, in)
}
func (s echoServer) GetProfile(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.echo(ctx, in)
}
func (s echoServer) GetFeed(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.echo(ctx, in)
}
func (s echoServer) Follow(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.echo(ctx, in)
}
func (s echoServer) Ping(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.echo(ctx, in)
}

func decoderFor(t *testing.T, m map[string]any) func(any) error {
	t.Helper()
	src, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return func(dst any) error {
		dst.(*structpb.Struct).Fields = src.Fields
		return nil
	}
}

func TestFollowServiceDesc_Methods(t *testing.T) {
	names := make([]string, 0, len(FollowServiceDesc.Methods))
	for _, m := range FollowServiceDesc.Methods {
		names = append(names, "/"+ServiceName+"/"+m.MethodName)
	}
	assert.ElementsMatch(t, []string{MethodRegister, MethodGetProfile, MethodGetFeed, MethodFollow, MethodPing}, names)
}

func TestUnaryHandler_WithoutInterceptor(t *testing.T) {
	h := unaryHandler(FollowServiceServer.Ping, MethodPing)

	out, err := h(echoServer{}, context.Background(), decoderFor(t, map[string]any{"k": "v"}), nil)
	require.NoError(t, err)
	assert.Equal(t, "v", out.(*structpb.Struct).GetFields()["k"].GetStringValue())
}

func TestUnaryHandler_PassesMethodToInterceptor(t *testing.T) {
	h := unaryHandler(FollowServiceServer.Follow, MethodFollow)

	var seen string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = info.FullMethod
		return handler(ctx, req)
	}

	_, err := h(echoServer{}, context.Background(), decoderFor(t, map[string]any{}), interceptor)
	require.NoError(t, err)
	assert.Equal(t, MethodFollow, seen)
}

func TestUnaryHandler_DecodeError(t *testing.T) {
	h := unaryHandler(FollowServiceServer.Register, MethodRegister)
	boom := errors.New("bad frame")

	_, err := h(echoServer{}, context.Background(), func(any) error { return boom }, nil)
	assert.ErrorIs(t, err, boom)
}
