package models

import "time"

// Blog is a published article with denormalized vote counters.
// The counters are maintained incrementally by the vote ledger and must
// equal the number of BlogVote rows of each type for this blog.
type Blog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:255;uniqueIndex;not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	AuthorID     uint      `gorm:"index;not null" json:"author_id"`
	LikeCount    int       `gorm:"column:likes;not null;default:0" json:"like"`
	DislikeCount int       `gorm:"column:dislikes;not null;default:0" json:"dislike"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Author       User      `gorm:"foreignKey:AuthorID" json:"author"`
	Tags         []Tag     `gorm:"many2many:blog_tags" json:"tags"`
}
