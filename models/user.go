package models

import "time"

// Roles a user can hold. Moderators administer users and content,
// authors own and manage their own blogs, plain users read, vote and comment.
const (
	RoleModerator = "moderator"
	RoleAuthor    = "author"
	RoleUser      = "user"
)

// User represents a registered account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:'user'" json:"role"`
	Picture      string    `gorm:"size:512" json:"picture"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsWorker reports whether the user may create and manage content.
func (u *User) IsWorker() bool {
	return u.Role != RoleUser
}
