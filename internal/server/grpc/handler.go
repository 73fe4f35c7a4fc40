package grpc

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dmitrijs2005/followhub/internal/common"
	pb "github.com/dmitrijs2005/followhub/internal/proto"
	"github.com/dmitrijs2005/followhub/internal/server/auth"
	"github.com/dmitrijs2005/followhub/internal/server/models"
	"github.com/dmitrijs2005/followhub/internal/shared"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	s.logger.Info(ctx, "Registration request")

	nickname := shared.Sanitize(stringField(req, pb.FieldNickname), common.MaxNicknameLength)
	origin := shared.Sanitize(stringField(req, pb.FieldOrigin), common.MaxOriginLength)

	id, err := s.registry.Register(ctx, nickname, origin)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	token, err := auth.GenerateToken(id.PrivateID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	return structpb.NewStruct(map[string]any{
		pb.FieldPrivateUserID: id.PrivateID,
		pb.FieldPublicUserID:  id.PublicID,
		pb.FieldAccessToken:   token,
	})
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	privateID, ok := privateIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	user, err := s.registry.GetProfile(ctx, privateID)
	if err != nil {
		return nil, s.toStatus(ctx, "get_profile", err)
	}

	return structpb.NewStruct(profileFields(user))
}

func (s *GRPCServer) GetFeed(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	privateID, ok := privateIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	page := 1
	if v, present := req.GetFields()[pb.FieldPage]; present {
		n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
		if !isNumber || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue < 1 || n.NumberValue > math.MaxInt32 {
			return nil, status.Error(codes.InvalidArgument, "page must be a positive integer")
		}
		page = int(n.NumberValue)
	}

	feed, err := s.feed.GetFeed(ctx, privateID, page)
	if err != nil {
		return nil, s.toStatus(ctx, "get_feed", err)
	}

	users := make([]any, 0, len(feed.Users))
	for _, e := range feed.Users {
		users = append(users, map[string]any{
			pb.FieldNickname:      e.Nickname,
			pb.FieldPublicUserID:  e.PublicID,
			pb.FieldOrigin:        e.Origin,
			pb.FieldIsFollowing:   e.IsFollowing,
			pb.FieldFollowerCount: e.FollowerCount,
			pb.FieldCreatedAt:     e.CreatedAt.Format(time.RFC3339Nano),
		})
	}

	return structpb.NewStruct(map[string]any{
		pb.FieldUsers:   users,
		pb.FieldHasMore: feed.HasMore,
		pb.FieldPage:    feed.Page,
	})
}

func (s *GRPCServer) Follow(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	privateID, ok := privateIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	if err := s.ledger.Follow(ctx, privateID, stringField(req, pb.FieldTargetPublicUserID)); err != nil {
		return nil, s.toStatus(ctx, "follow", err)
	}

	return structpb.NewStruct(map[string]any{pb.FieldSuccess: true})
}

func (s *GRPCServer) Ping(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{pb.FieldStatus: "OK"})
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func profileFields(u *models.User) map[string]any {
	following := make([]any, 0, len(u.Following))
	for _, p := range u.Following {
		following = append(following, p)
	}
	return map[string]any{
		pb.FieldPrivateUserID: u.PrivateID,
		pb.FieldPublicUserID:  u.PublicID,
		pb.FieldNickname:      u.Nickname,
		pb.FieldOrigin:        u.Origin,
		pb.FieldFollowing:     following,
		pb.FieldFollowerCount: u.FollowerCount,
		pb.FieldCreatedAt:     u.CreatedAt.Format(time.RFC3339Nano),
	}
}

// toStatus maps service errors to gRPC status codes.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrSelfFollow):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrAlreadyFollowing):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrTransientStore):
		s.logger.Warn(ctx, "store busy", "op", op, "err", err)
		return status.Error(codes.Unavailable, "temporarily unavailable, retry")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "op", op, "err", err)
		return status.Error(codes.Internal, "internal error")
	}
}
