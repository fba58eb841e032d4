package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogward/blogward/cache"
	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/utils"
)

// BlogController manages blogs, their comments and the vote ledger.
type BlogController struct {
	db        *gorm.DB
	listCache *cache.ListCache
}

// NewBlogController creates a BlogController.
func NewBlogController(db *gorm.DB, listCache *cache.ListCache) *BlogController {
	return &BlogController{db: db, listCache: listCache}
}

// List returns a paginated, optionally title-filtered blog listing. The
// response is cached under the exact request path+query for 30 minutes;
// within the TTL a second identical request is served verbatim from the
// cache. A cache backend failure is a server error, not a silent
// fallthrough to the store.
func (b *BlogController) List(ctx *gin.Context) {
	key := ctx.Request.URL.RequestURI()

	if payload, ok, err := b.listCache.Get(key); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	} else if ok {
		ctx.Data(http.StatusOK, "application/json", payload)
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("pageSize"))
	f := utils.Filter{}.WithBlogTitle(strings.TrimSpace(ctx.Query("title")))

	var blogs []models.Blog
	if err := b.db.Scopes(f.Scope()).Order("id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Preload("Author").Find(&blogs).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if len(blogs) == 0 {
		utils.Error(ctx, http.StatusNotFound, "No blog found with the specified criteria")
		return
	}

	var total int64
	if err := b.db.Model(&models.Blog{}).Scopes(f.Scope()).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	items := make([]models.BlogListItem, 0, len(blogs))
	for _, blog := range blogs {
		items = append(items, models.SerializeBlog(blog))
	}

	resp := models.BlogListResponse{
		Blog:       items,
		Pagination: models.NewPagination(total, page, pageSize),
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	b.listCache.Store(key, payload)
	ctx.Data(http.StatusOK, "application/json", payload)
}

// Detail returns the full blog projection including tags and the comment tree.
func (b *BlogController) Detail(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid blog id")
		return
	}

	var blog models.Blog
	if err := b.db.Preload("Author").Preload("Tags").First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Blog Not Found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	detail, err := models.SerializeBlogDetail(b.db, blog)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"detail": detail})
}

// Create publishes a new blog and appends it to the cached bare list
// entry. Tags are attached by name; only tags that already exist are linked.
func (b *BlogController) Create(ctx *gin.Context) {
	var req struct {
		Title   string   `json:"title" binding:"required"`
		Content string   `json:"content" binding:"required"`
		Tags    []string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	title := utils.Sanitize(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, "title cannot be empty")
		return
	}
	content := utils.Sanitize(req.Content)

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var author models.User
	if err := b.db.First(&author, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "Author not found")
		return
	}

	blog := models.Blog{
		Title:    title,
		Content:  content,
		AuthorID: author.ID,
	}
	if err := b.db.Create(&blog).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusBadRequest, "Title already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if len(req.Tags) > 0 {
		var tags []models.Tag
		if err := b.db.Where("name IN ?", req.Tags).Find(&tags).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if len(tags) > 0 {
			if err := b.db.Model(&blog).Association("Tags").Append(tags); err != nil {
				utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			blog.Tags = tags
		}
	}

	blog.Author = author
	b.listCache.AppendBlog(models.SerializeBlog(blog))

	ctx.JSON(http.StatusCreated, blog)
}

// Edit updates title, content and optionally the tag set of a blog. Only
// the owning author or a moderator may edit. The cached bare list entry
// is patched in place by id.
func (b *BlogController) Edit(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid blog id")
		return
	}

	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Tags    []string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var blog models.Blog
	if err := b.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	userID, _ := getUserID(ctx)
	if blog.AuthorID != userID && !isModerator(ctx) {
		utils.Error(ctx, http.StatusForbidden, "Only the author of this blog or a moderator can edit")
		return
	}

	updates := map[string]interface{}{}
	if v := utils.Sanitize(strings.TrimSpace(req.Title)); v != "" {
		updates["title"] = v
	}
	if req.Content != "" {
		updates["content"] = utils.Sanitize(req.Content)
	}
	if len(updates) > 0 {
		if err := b.db.Model(&blog).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				utils.Error(ctx, http.StatusBadRequest, "Title already exists")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
			return
		}
	}

	// Unlike Create, editing find-or-creates unknown tag names and
	// replaces the whole association set.
	if req.Tags != nil {
		tags := make([]models.Tag, 0, len(req.Tags))
		for _, name := range req.Tags {
			var tag models.Tag
			if err := b.db.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
				utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			tags = append(tags, tag)
		}
		if err := b.db.Model(&blog).Association("Tags").Replace(tags); err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		blog.Tags = tags
	}

	if err := b.db.Preload("Author").First(&blog, id).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	b.listCache.PatchBlog(models.SerializeBlog(blog))
	ctx.JSON(http.StatusOK, blog)
}

// Delete removes a blog together with its tag links, votes, comments and
// replies, then splices it out of the cached bare list entry.
func (b *BlogController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid blog id")
		return
	}

	var blog models.Blog
	if err := b.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Blog not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	userID, _ := getUserID(ctx)
	if blog.AuthorID != userID && !isModerator(ctx) {
		utils.Error(ctx, http.StatusForbidden, "Only the author of this blog or a moderator can delete")
		return
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("blog_id = ?", blog.ID)
		if err := tx.Where("comment_id IN (?)", commentIDs).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", blog.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("blog_id = ?", blog.ID).Delete(&models.BlogVote{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&blog).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&blog).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	b.listCache.RemoveBlog(blog.ID)
	utils.Message(ctx, http.StatusOK, "Blog and associated Tags deleted successfully")
}

// Comment adds a top-level comment to a blog.
func (b *BlogController) Comment(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid blog id")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var blog models.Blog
	if err := b.db.First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Blog Not Found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	userID, _ := getUserID(ctx)
	comment := models.Comment{
		BlogID:  blog.ID,
		UserID:  userID,
		Content: utils.Sanitize(req.Content),
	}
	if err := b.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.JSON(http.StatusCreated, comment)
}

// Reply answers a comment. The optional replyto username must belong to
// the comment's author or a previous replier in the same thread.
func (b *BlogController) Reply(ctx *gin.Context) {
	commentID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid comment id")
		return
	}

	var req struct {
		Content string  `json:"content" binding:"required"`
		ReplyTo *string `json:"replyto"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var comment models.Comment
	if err := b.db.Preload("User").First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Comment Not Found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if req.ReplyTo != nil && *req.ReplyTo != "" {
		var replies []models.Reply
		if err := b.db.Where("comment_id = ?", comment.ID).Preload("User").Find(&replies).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		participants := map[string]bool{comment.User.Username: true}
		for _, reply := range replies {
			participants[reply.User.Username] = true
		}
		if !participants[*req.ReplyTo] {
			utils.Error(ctx, http.StatusBadRequest, "username not found in the comment")
			return
		}
	}

	userID, _ := getUserID(ctx)
	reply := models.Reply{
		CommentID: comment.ID,
		UserID:    userID,
		Content:   utils.Sanitize(req.Content),
		ReplyTo:   req.ReplyTo,
	}
	if err := b.db.Create(&reply).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.JSON(http.StatusCreated, reply)
}
