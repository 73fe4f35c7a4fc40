package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/logging"
	"github.com/dmitrijs2005/followhub/internal/server/auth"
	"github.com/dmitrijs2005/followhub/internal/server/config"
	"github.com/dmitrijs2005/followhub/internal/server/docstore"
	"github.com/dmitrijs2005/followhub/internal/server/docstore/memory"
	"github.com/dmitrijs2005/followhub/internal/server/models"
	"github.com/dmitrijs2005/followhub/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secret"

func newServerWithStore(t *testing.T, store docstore.Store) http.Handler {
	t.Helper()
	cfg := &config.Config{
		SecretKey:               testSecret,
		SessionValidityDuration: common.DefaultSessionValidity,
		FeedPageSize:            10,
		TxMaxAttempts:           2,
		TxBaseBackoff:           time.Millisecond,
	}
	log := logging.Nop{}
	s := NewHTTPServer(cfg, log,
		services.NewRegistry(store, cfg, log),
		services.NewLedger(store, cfg, log),
		services.NewFeedAssembler(store, cfg, log),
	)
	return s.Routes()
}

func newServer(t *testing.T) http.Handler {
	return newServerWithStore(t, memory.New())
}

type session struct {
	cookie    *http.Cookie
	privateID string
	publicID  string
}

func do(t *testing.T, h http.Handler, method, target, body string, c *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c != nil {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func register(t *testing.T, h http.Handler, nickname, origin string) session {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/create_user", `{"nickname":"`+nickname+`","origin":"`+origin+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[createUserResponse](t, rec)
	require.True(t, resp.Success)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == common.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "session cookie not set")
	return session{cookie: cookie, privateID: resp.PrivateUserID, publicID: resp.PublicUserID}
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateUser(t *testing.T) {
	h := newServer(t)
	s := register(t, h, "Sam", "Vancouver")

	assert.NotEmpty(t, s.privateID)
	assert.NotEmpty(t, s.publicID)
	assert.True(t, s.cookie.HttpOnly)
	assert.Equal(t, int(common.DefaultSessionValidity.Seconds()), s.cookie.MaxAge)

	id, err := auth.GetPrivateIDFromToken(s.cookie.Value, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, s.privateID, id)
}

func TestCreateUser_BadInput(t *testing.T) {
	h := newServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing nickname", body: `{"origin":"x"}`},
		{name: "missing origin", body: `{"nickname":"x"}`},
		{name: "empty strings", body: `{"nickname":"","origin":""}`},
		{name: "only markup", body: `{"nickname":"<>&","origin":"x"}`},
		{name: "not json", body: `nickname=x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/create_user", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[map[string]string](t, rec), "error")
		})
	}
}

func TestCreateUser_SanitizesInput(t *testing.T) {
	h := newServer(t)
	s := register(t, h, `<script>`+strings.Repeat("x", 40), "Van'couver")

	rec := do(t, h, http.MethodGet, "/api/user_info", "", s.cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[userInfoResponse](t, rec)

	assert.Len(t, []rune(info.Nickname), common.MaxNicknameLength)
	assert.False(t, strings.ContainsAny(info.Nickname, "<>"))
	assert.Equal(t, "Vancouver", info.Origin)
}

func TestCreateUser_PaddedInputIsAccepted(t *testing.T) {
	h := newServer(t)
	s := register(t, h, strings.Repeat(" ", 40)+"Sam", "  "+strings.Repeat("o", 64))

	rec := do(t, h, http.MethodGet, "/api/user_info", "", s.cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[userInfoResponse](t, rec)

	assert.Equal(t, "Sam", info.Nickname)
	assert.Equal(t, strings.Repeat("o", 64), info.Origin)
}

func TestUserInfo(t *testing.T) {
	h := newServer(t)
	s := register(t, h, "Sam", "Vancouver")

	rec := do(t, h, http.MethodGet, "/api/user_info", "", s.cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	info := decode[userInfoResponse](t, rec)
	assert.Equal(t, "Sam", info.Nickname)
	assert.Equal(t, "Vancouver", info.Origin)
	assert.Equal(t, s.privateID, info.PrivateUserID)
	assert.Equal(t, s.publicID, info.PublicUserID)
	assert.NotNil(t, info.Following)
	assert.Zero(t, info.FollowerCount)
	assert.False(t, info.CreatedAt.IsZero())
}

func TestUserInfo_Session(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/api/user_info", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/user_info", "", &http.Cookie{Name: common.SessionCookieName, Value: "forged"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid signature, unknown user
	tok, err := auth.GenerateToken("ghost", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/api/user_info", "", &http.Cookie{Name: common.SessionCookieName, Value: tok})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBearerTokenAccepted(t *testing.T) {
	h := newServer(t)
	s := register(t, h, "Sam", "Vancouver")

	req := httptest.NewRequest(http.MethodGet, "/api/user_info", nil)
	req.Header.Set("Authorization", "Bearer "+s.cookie.Value)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFollowAndFeed(t *testing.T) {
	h := newServer(t)
	sam := register(t, h, "Sam", "Vancouver")
	bea := register(t, h, "Bea", "Oslo")

	rec := do(t, h, http.MethodPost, "/api/follow_user", `{"targetPublicUserID":"`+bea.publicID+`"}`, sam.cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/follow_user", `{"targetPublicUserID":"`+bea.publicID+`"}`, sam.cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Already following user", decode[map[string]string](t, rec)["error"])

	rec = do(t, h, http.MethodGet, "/api/users_feed", "", sam.cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[feedResponse](t, rec)
	assert.Equal(t, 1, feed.Page)
	assert.False(t, feed.HasMore)
	require.Len(t, feed.Users, 1)
	assert.Equal(t, bea.publicID, feed.Users[0].PublicUserID)
	assert.True(t, feed.Users[0].IsFollowing)
	assert.EqualValues(t, 1, feed.Users[0].FollowerCount)
	assert.NotContains(t, rec.Body.String(), bea.privateID)

	rec = do(t, h, http.MethodGet, "/api/user_info", "", bea.cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[userInfoResponse](t, rec).FollowerCount)

	rec = do(t, h, http.MethodGet, "/api/user_info", "", sam.cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{bea.publicID}, decode[userInfoResponse](t, rec).Following)
}

func TestFollowUser_Errors(t *testing.T) {
	h := newServer(t)
	sam := register(t, h, "Sam", "Vancouver")

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "unknown target", body: `{"targetPublicUserID":"nonexistent-public-id"}`, want: http.StatusNotFound},
		{name: "self", body: `{"targetPublicUserID":"` + sam.publicID + `"}`, want: http.StatusBadRequest},
		{name: "missing target", body: `{}`, want: http.StatusBadRequest},
		{name: "bad json", body: `{`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/follow_user", tt.body, sam.cookie)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, h, http.MethodGet, "/api/user_info", "", sam.cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[userInfoResponse](t, rec).Following)
}

func TestUsersFeed_Pages(t *testing.T) {
	h := newServer(t)
	me := register(t, h, "me", "here")
	for range 25 {
		register(t, h, "other", "there")
	}

	tests := []struct {
		query   string
		wantLen int
		hasMore bool
		page    int
	}{
		{query: "", wantLen: 10, hasMore: true, page: 1},
		{query: "?page=2", wantLen: 10, hasMore: true, page: 2},
		{query: "?page=3", wantLen: 5, hasMore: false, page: 3},
		{query: "?page=4", wantLen: 0, hasMore: false, page: 4},
	}

	for _, tt := range tests {
		rec := do(t, h, http.MethodGet, "/api/users_feed"+tt.query, "", me.cookie)
		require.Equal(t, http.StatusOK, rec.Code)
		feed := decode[feedResponse](t, rec)
		assert.Len(t, feed.Users, tt.wantLen, tt.query)
		assert.NotNil(t, feed.Users, tt.query)
		assert.Equal(t, tt.hasMore, feed.HasMore, tt.query)
		assert.Equal(t, tt.page, feed.Page, tt.query)
	}

	for _, q := range []string{"?page=0", "?page=-1", "?page=abc"} {
		rec := do(t, h, http.MethodGet, "/api/users_feed"+q, "", me.cookie)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/api/create_user", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// busyStore reports a conflict on every transaction.
type busyStore struct {
	docstore.Store
}

func (busyStore) RunInTx(context.Context, docstore.TxFunc) error { return docstore.ErrConflict }

// downStore cannot reach its database.
type downStore struct {
	docstore.Store
}

func (downStore) RunInTx(context.Context, docstore.TxFunc) error {
	return fmt.Errorf("%w: dial tcp: connection refused", docstore.ErrUnavailable)
}

func (downStore) GetUser(context.Context, string) (*models.User, error) {
	return nil, fmt.Errorf("%w: dial tcp: connection refused", docstore.ErrUnavailable)
}

func TestStoreDown_IsServiceUnavailable(t *testing.T) {
	h := newServerWithStore(t, downStore{Store: memory.New()})

	rec := do(t, h, http.MethodPost, "/api/create_user", `{"nickname":"a","origin":"b"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	token, err := auth.GenerateToken("someone", []byte(testSecret), time.Hour)
	require.NoError(t, err)
	cookie := &http.Cookie{Name: common.SessionCookieName, Value: token}

	rec = do(t, h, http.MethodGet, "/api/user_info", "", cookie)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateUser_StoreBusy(t *testing.T) {
	h := newServerWithStore(t, busyStore{Store: memory.New()})

	rec := do(t, h, http.MethodPost, "/api/create_user", `{"nickname":"a","origin":"b"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}
