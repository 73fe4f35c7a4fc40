package proto

// Field names of the google.protobuf.Struct messages exchanged by
// FollowService, shared by the server handlers and the client. They match
// the HTTP API's JSON keys. followservice.proto lists them per method.
const (
	FieldNickname           = "nickname"
	FieldOrigin             = "origin"
	FieldPrivateUserID      = "privateUserID"
	FieldPublicUserID       = "publicUserID"
	FieldAccessToken        = "accessToken"
	FieldFollowing          = "following"
	FieldFollowerCount      = "followerCount"
	FieldCreatedAt          = "createdAt"
	FieldIsFollowing        = "isFollowing"
	FieldUsers              = "users"
	FieldHasMore            = "hasMore"
	FieldPage               = "page"
	FieldTargetPublicUserID = "targetPublicUserID"
	FieldSuccess            = "success"
	FieldStatus             = "status"
)
