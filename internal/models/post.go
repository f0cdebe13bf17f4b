package models

import "time"

// Post is a plain-text article owned by its author.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	AuthorID  uint      `gorm:"not null;index:idx_posts_author_created,priority:1" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	CreatedAt time.Time `gorm:"index:idx_posts_author_created,priority:2,sort:desc" json:"created_at"`
	// IsOwner is computed per viewer and never persisted
	IsOwner bool `gorm:"-" json:"is_owner"`
}

// TableName specifies the table name for GORM
func (Post) TableName() string {
	return "posts"
}

// MarkOwner sets IsOwner relative to the viewing user. Viewer 0 is anonymous.
func (p *Post) MarkOwner(viewerID uint) {
	p.IsOwner = viewerID != 0 && p.AuthorID == viewerID
}
