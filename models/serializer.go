package models

import (
	"time"

	"gorm.io/gorm"
)

// detailTimeLayout is the human-formatted publish date used on detail views,
// e.g. "October 28, 2023 09:41:07".
const detailTimeLayout = "January 02, 2006 15:04:05"

// Pagination is the envelope attached to every list response.
type Pagination struct {
	TotalCount  int64 `json:"totalCount"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
}

// NewPagination derives page counts from a total row count.
func NewPagination(totalCount int64, page, pageSize int) Pagination {
	return Pagination{
		TotalCount:  totalCount,
		CurrentPage: page,
		TotalPages:  int((totalCount + int64(pageSize) - 1) / int64(pageSize)),
	}
}

// BlogListItem is the flat list projection of a blog.
type BlogListItem struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	PublishDate time.Time `json:"publish_date"`
}

// BlogListResponse is the cached shape of GET /blog/list.
type BlogListResponse struct {
	Blog       []BlogListItem `json:"blog"`
	Pagination Pagination     `json:"pagination"`
}

// BlogDetail extends the list projection with content, vote counters,
// resolved tag names and the full comment tree.
type BlogDetail struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	Author      string        `json:"author"`
	Like        int           `json:"like"`
	Dislike     int           `json:"dislike"`
	PublishDate string        `json:"publish_date"`
	Tags        []string      `json:"tags"`
	Comment     []CommentTree `json:"comment"`
}

// CommentTree nests a comment's replies under it.
type CommentTree struct {
	ID      uint        `json:"id"`
	User    string      `json:"user"`
	Comment string      `json:"comment"`
	Replies []ReplyItem `json:"replies"`
}

// ReplyItem is the reply projection inside a comment tree.
type ReplyItem struct {
	ID      uint    `json:"id"`
	User    string  `json:"user"`
	Comment string  `json:"comment"`
	ReplyTo *string `json:"replyto"`
}

// SerializeBlog projects a blog for list views. The Author association
// must be loaded.
func SerializeBlog(blog Blog) BlogListItem {
	return BlogListItem{
		ID:          blog.ID,
		Title:       blog.Title,
		Author:      blog.Author.Username,
		PublishDate: blog.CreatedAt,
	}
}

// SerializeBlogDetail projects a blog for detail views. Comments are
// fetched with their authors, then replies are fetched per comment with
// their authors; the two-level fan-out is what produces valid nested
// reply lists. Ordering is whatever the store returns.
func SerializeBlogDetail(db *gorm.DB, blog Blog) (BlogDetail, error) {
	tags := make([]string, 0, len(blog.Tags))
	for _, tag := range blog.Tags {
		tags = append(tags, tag.Name)
	}

	var comments []Comment
	if err := db.Where("blog_id = ?", blog.ID).Preload("User").Find(&comments).Error; err != nil {
		return BlogDetail{}, err
	}

	tree := make([]CommentTree, 0, len(comments))
	for _, comment := range comments {
		var replies []Reply
		if err := db.Where("comment_id = ?", comment.ID).Preload("User").Find(&replies).Error; err != nil {
			return BlogDetail{}, err
		}
		tree = append(tree, serializeComment(comment, replies))
	}

	return BlogDetail{
		ID:          blog.ID,
		Title:       blog.Title,
		Content:     blog.Content,
		Author:      blog.Author.Username,
		Like:        blog.LikeCount,
		Dislike:     blog.DislikeCount,
		PublishDate: blog.CreatedAt.Format(detailTimeLayout),
		Tags:        tags,
		Comment:     tree,
	}, nil
}

func serializeComment(comment Comment, replies []Reply) CommentTree {
	items := make([]ReplyItem, 0, len(replies))
	for _, reply := range replies {
		items = append(items, ReplyItem{
			ID:      reply.ID,
			User:    reply.User.Username,
			Comment: reply.Content,
			ReplyTo: reply.ReplyTo,
		})
	}
	return CommentTree{
		ID:      comment.ID,
		User:    comment.User.Username,
		Comment: comment.Content,
		Replies: items,
	}
}
