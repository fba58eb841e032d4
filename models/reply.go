package models

import "time"

// Reply answers a comment. ReplyTo, when set, names either the comment's
// author or a previous replier in the same thread; the handler validates
// this at write time.
type Reply struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"index;not null" json:"comment_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ReplyTo   *string   `gorm:"size:64" json:"replyto"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `json:"user"`
}
