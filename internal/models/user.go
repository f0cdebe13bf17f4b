// Package models contains data structures for the application's domain models.
package models

import (
	"crypto/md5" // #nosec G501 -- gravatar addresses avatars by md5 of the email
	"encoding/hex"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a registered Writescape author.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:30;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	Avatar    string    `gorm:"-" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AfterFind derives the avatar, which is never stored.
func (u *User) AfterFind(_ *gorm.DB) error {
	u.Avatar = AvatarURL(u.Email)
	return nil
}

// AfterCreate mirrors AfterFind for freshly inserted rows.
func (u *User) AfterCreate(_ *gorm.DB) error {
	u.Avatar = AvatarURL(u.Email)
	return nil
}

// AvatarURL returns the gravatar image for an email address.
func AvatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) // #nosec G401
	return "https://gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=128"
}
