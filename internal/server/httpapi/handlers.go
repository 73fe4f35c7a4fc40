package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/followhub/internal/common"
	"github.com/dmitrijs2005/followhub/internal/server/auth"
	"github.com/dmitrijs2005/followhub/internal/shared"
)

type createUserRequest struct {
	Nickname string `json:"nickname"`
	Origin   string `json:"origin"`
}

type createUserResponse struct {
	Success       bool   `json:"success"`
	PrivateUserID string `json:"privateUserID"`
	PublicUserID  string `json:"publicUserID"`
}

type userInfoResponse struct {
	Nickname      string    `json:"nickname"`
	Origin        string    `json:"origin"`
	PrivateUserID string    `json:"privateUserID"`
	PublicUserID  string    `json:"publicUserID"`
	Following     []string  `json:"following"`
	FollowerCount int64     `json:"followerCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type feedEntryResponse struct {
	Nickname      string    `json:"nickname"`
	PublicUserID  string    `json:"publicUserID"`
	Origin        string    `json:"origin"`
	IsFollowing   bool      `json:"isFollowing"`
	FollowerCount int64     `json:"followerCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type feedResponse struct {
	Users   []feedEntryResponse `json:"users"`
	HasMore bool                `json:"hasMore"`
	Page    int                 `json:"page"`
}

type followUserRequest struct {
	TargetPublicUserID string `json:"targetPublicUserID"`
}

func (s *HTTPServer) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateUser registers a user and sets the session cookie.
func (s *HTTPServer) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input createUserRequest
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	nickname := shared.Sanitize(input.Nickname, common.MaxNicknameLength)
	origin := shared.Sanitize(input.Origin, common.MaxOriginLength)

	id, err := s.registry.Register(r.Context(), nickname, origin)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Nickname and origin are required.")
			return
		}
		s.writeServiceError(w, r, "create_user", err)
		return
	}

	token, err := auth.GenerateToken(id.PrivateID, s.jwtSecret, s.sessionValidity)
	if err != nil {
		s.writeServiceError(w, r, "create_user", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionValidity.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, createUserResponse{
		Success:       true,
		PrivateUserID: id.PrivateID,
		PublicUserID:  id.PublicID,
	})
}

// UserInfo returns the caller's own profile, owner-only fields included.
func (s *HTTPServer) UserInfo(w http.ResponseWriter, r *http.Request) {
	user, err := s.registry.GetProfile(r.Context(), privateIDFrom(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, "user_info", err)
		return
	}

	writeJSON(w, http.StatusOK, userInfoResponse{
		Nickname:      user.Nickname,
		Origin:        user.Origin,
		PrivateUserID: user.PrivateID,
		PublicUserID:  user.PublicID,
		Following:     user.Clone().Following,
		FollowerCount: user.FollowerCount,
		CreatedAt:     user.CreatedAt,
	})
}

// UsersFeed returns one page of other users. ?page defaults to 1.
func (s *HTTPServer) UsersFeed(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		page = n
	}

	feed, err := s.feed.GetFeed(r.Context(), privateIDFrom(r.Context()), page)
	if err != nil {
		s.writeServiceError(w, r, "users_feed", err)
		return
	}

	users := make([]feedEntryResponse, 0, len(feed.Users))
	for _, e := range feed.Users {
		users = append(users, feedEntryResponse{
			Nickname:      e.Nickname,
			PublicUserID:  e.PublicID,
			Origin:        e.Origin,
			IsFollowing:   e.IsFollowing,
			FollowerCount: e.FollowerCount,
			CreatedAt:     e.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, feedResponse{Users: users, HasMore: feed.HasMore, Page: feed.Page})
}

// FollowUser makes the caller follow targetPublicUserID.
func (s *HTTPServer) FollowUser(w http.ResponseWriter, r *http.Request) {
	var input followUserRequest
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.ledger.Follow(r.Context(), privateIDFrom(r.Context()), input.TargetPublicUserID); err != nil {
		s.writeServiceError(w, r, "follow_user", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
