package models

import "time"

// Vote types recorded in the ledger.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)

// BlogVote is one ledger entry per (blog, user) pair. At most one row may
// be active per pair; the invariant is enforced by the vote transaction,
// not by a schema constraint.
type BlogVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BlogID    uint      `gorm:"index;not null" json:"blog_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	VoteType  string    `gorm:"size:8;not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}
