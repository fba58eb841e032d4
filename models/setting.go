package models

// Setting is a key/value row used for one-shot sentinels. The moderator
// bootstrap claims its sentinel key with a single insert so that exactly
// one concurrent registration can win it.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64" json:"key"`
	Value string `gorm:"size:255" json:"value"`
}

// BootstrapModeratorKey is claimed by the first successful registration.
const BootstrapModeratorKey = "bootstrap:moderator"
