package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/utils"
)

// TagController manages tag CRUD. Every route is gated to authors and
// moderators by the router.
type TagController struct {
	db *gorm.DB
}

// NewTagController creates a TagController.
func NewTagController(db *gorm.DB) *TagController {
	return &TagController{db: db}
}

// List returns a paginated, optionally name-filtered tag listing.
func (t *TagController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("pageSize"))
	f := utils.Filter{}.WithTagName(strings.TrimSpace(ctx.Query("name")))

	var tags []models.Tag
	if err := t.db.Scopes(f.Scope()).Order("id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&tags).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if len(tags) == 0 {
		utils.Error(ctx, http.StatusNotFound, "No tag found with the specified criteria")
		return
	}

	var total int64
	if err := t.db.Model(&models.Tag{}).Scopes(f.Scope()).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"tag":        tags,
		"pagination": models.NewPagination(total, page, pageSize),
	})
}

// Create adds a new tag.
func (t *TagController) Create(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	tag := models.Tag{Name: strings.TrimSpace(req.Name)}
	if err := t.db.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusBadRequest, "Tag already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	ctx.JSON(http.StatusCreated, tag)
}

// Edit renames a tag.
func (t *TagController) Edit(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid tag id")
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var tag models.Tag
	if err := t.db.First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "Tag not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := t.db.Model(&tag).Update("name", strings.TrimSpace(req.Name)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusBadRequest, "Tag already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	ctx.JSON(http.StatusOK, tag)
}

// Delete removes a tag.
func (t *TagController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid tag id")
		return
	}

	res := t.db.Delete(&models.Tag{}, id)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, "Tag Not Found")
		return
	}
	utils.Message(ctx, http.StatusOK, "Success Deleting Tag")
}
