package models

// Tag labels blogs through the blog_tags join table.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:64;uniqueIndex;not null" json:"name"`
	Blogs []Blog `gorm:"many2many:blog_tags" json:"-"`
}
