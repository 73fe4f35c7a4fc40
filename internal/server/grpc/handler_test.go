package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestHandlers_RequireIdentityInContext(t *testing.T) {
	s := newTestServer(t, "")
	ctx := context.Background()

	calls := map[string]func(context.Context, *structpb.Struct) (*structpb.Struct, error){
		"GetProfile": s.GetProfile,
		"GetFeed":    s.GetFeed,
		"Follow":     s.Follow,
	}
	for name, call := range calls {
		_, err := call(ctx, &structpb.Struct{})
		assert.Equal(t, codes.Unauthenticated, status.Code(err), name)
	}
}

func TestRegister_SanitizesInput(t *testing.T) {
	s := newTestServer(t, "")
	ctx := context.Background()

	resp, err := s.Register(ctx, mustStruct(t, map[string]any{
		"nickname": "<b>" + strings.Repeat("n", 40),
		"origin":   "Van'couver",
	}))
	require.NoError(t, err)

	privateID := resp.GetFields()["privateUserID"].GetStringValue()
	profile, err := s.GetProfile(context.WithValue(ctx, privateIDKey, privateID), &structpb.Struct{})
	require.NoError(t, err)

	nickname := profile.GetFields()["nickname"].GetStringValue()
	assert.Len(t, []rune(nickname), common.MaxNicknameLength)
	assert.False(t, strings.ContainsAny(nickname, "<>"))
	assert.Equal(t, "Vancouver", profile.GetFields()["origin"].GetStringValue())
}

func TestToStatus(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		err  error
		want codes.Code
	}{
		{err: fmt.Errorf("%w: x", common.ErrValidation), want: codes.InvalidArgument},
		{err: common.ErrSelfFollow, want: codes.InvalidArgument},
		{err: common.ErrAlreadyFollowing, want: codes.AlreadyExists},
		{err: common.ErrTargetNotFound, want: codes.NotFound},
		{err: common.ErrActorNotFound, want: codes.NotFound},
		{err: fmt.Errorf("%w: busy", common.ErrTransientStore), want: codes.Unavailable},
		{err: context.Canceled, want: codes.Canceled},
		{err: errors.New("boom"), want: codes.Internal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(s.toStatus(context.Background(), "op", tt.err)), tt.err.Error())
	}
}
