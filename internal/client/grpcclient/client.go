// Package grpcclient is the followctl side of FollowService.
package grpcclient

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/followhub/internal/common"
	pb "github.com/dmitrijs2005/followhub/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Registration is returned by Register. AccessToken is the session credential.
type Registration struct {
	PrivateID   string
	PublicID    string
	AccessToken string
}

type Profile struct {
	Nickname      string
	Origin        string
	PublicID      string
	Following     []string
	FollowerCount int64
	CreatedAt     string
}

type FeedEntry struct {
	Nickname      string
	PublicID      string
	Origin        string
	IsFollowing   bool
	FollowerCount int64
}

type Feed struct {
	Users   []FeedEntry
	HasMore bool
	Page    int
}

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *pb.FollowServiceClient
	accessToken string
	timeout     time.Duration
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// New creates a client for endpointURL. Extra dial options are appended to
// the defaults (insecure transport, token interceptor).
func New(endpointURL string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewFollowServiceClient(conn)
	return c, nil
}

// SetAccessToken sets the token sent with every following call.
func (s *GRPCClient) SetAccessToken(token string) {
	s.accessToken = token
}

func (s *GRPCClient) Register(ctx context.Context, nickname, origin string) (*Registration, error) {
	req, err := structpb.NewStruct(map[string]any{pb.FieldNickname: nickname, pb.FieldOrigin: origin})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	r := &Registration{
		PrivateID:   str(resp, pb.FieldPrivateUserID),
		PublicID:    str(resp, pb.FieldPublicUserID),
		AccessToken: str(resp, pb.FieldAccessToken),
	}
	s.accessToken = r.AccessToken
	return r, nil
}

func (s *GRPCClient) Profile(ctx context.Context) (*Profile, error) {
	resp, err := s.client.GetProfile(ctx, &structpb.Struct{})
	if err != nil {
		return nil, s.mapError(err)
	}

	p := &Profile{
		Nickname:      str(resp, pb.FieldNickname),
		Origin:        str(resp, pb.FieldOrigin),
		PublicID:      str(resp, pb.FieldPublicUserID),
		FollowerCount: int64(resp.GetFields()[pb.FieldFollowerCount].GetNumberValue()),
		CreatedAt:     str(resp, pb.FieldCreatedAt),
		Following:     []string{},
	}
	for _, v := range resp.GetFields()[pb.FieldFollowing].GetListValue().GetValues() {
		p.Following = append(p.Following, v.GetStringValue())
	}
	return p, nil
}

func (s *GRPCClient) Feed(ctx context.Context, page int) (*Feed, error) {
	req, err := structpb.NewStruct(map[string]any{pb.FieldPage: page})
	if err != nil {
		return nil, err
	}

	resp, err := s.client.GetFeed(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	f := &Feed{
		HasMore: resp.GetFields()[pb.FieldHasMore].GetBoolValue(),
		Page:    int(resp.GetFields()[pb.FieldPage].GetNumberValue()),
	}
	for _, v := range resp.GetFields()[pb.FieldUsers].GetListValue().GetValues() {
		u := v.GetStructValue()
		f.Users = append(f.Users, FeedEntry{
			Nickname:      str(u, pb.FieldNickname),
			PublicID:      str(u, pb.FieldPublicUserID),
			Origin:        str(u, pb.FieldOrigin),
			IsFollowing:   u.GetFields()[pb.FieldIsFollowing].GetBoolValue(),
			FollowerCount: int64(u.GetFields()[pb.FieldFollowerCount].GetNumberValue()),
		})
	}
	return f, nil
}

func (s *GRPCClient) Follow(ctx context.Context, targetPublicID string) error {
	req, err := structpb.NewStruct(map[string]any{pb.FieldTargetPublicUserID: targetPublicID})
	if err != nil {
		return err
	}

	if _, err := s.client.Follow(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	if _, err := s.client.Ping(ctx, &structpb.Struct{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func str(m *structpb.Struct, key string) string {
	return m.GetFields()[key].GetStringValue()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyFollowing
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
