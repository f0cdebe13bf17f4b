package models

import "time"

// Follow is a directed edge: FollowerID follows FollowedID.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follow_pair,priority:1" json:"follower_id"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follow_pair,priority:2;index:idx_follows_followed" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// FollowUser is the projection returned by follower/following listings.
type FollowUser struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// ProfileSummary aggregates the header shown on a profile.
type ProfileSummary struct {
	Username         string `json:"username"`
	Avatar           string `json:"avatar"`
	PostCount        int64  `json:"post_count"`
	FollowerCount    int64  `json:"follower_count"`
	FollowingCount   int64  `json:"following_count"`
	IsFollowing      bool   `json:"is_following"`
	IsVisitorProfile bool   `json:"is_visitor_profile"`
}
