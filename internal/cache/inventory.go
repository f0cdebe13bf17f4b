package cache

import (
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	PostKeyPrefix     = "post:%d"
	WSTicketKeyPrefix = "ws_ticket:%s"
	RevokedKeyPrefix  = "blacklist:%s"
)

const (
	UserTTL     = 5 * time.Minute
	PostTTL     = 30 * time.Minute
	WSTicketTTL = 60 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketKeyPrefix, ticket)
}

// RevokedTokenKey marks a JWT id as logged out until it would have expired.
func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedKeyPrefix, jti)
}
