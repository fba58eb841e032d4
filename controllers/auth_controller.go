package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/blogward/blogward/cache"
	"github.com/blogward/blogward/config"
	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController handles registration, login and user administration.
type AuthController struct {
	db        *gorm.DB
	listCache *cache.ListCache
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, listCache *cache.ListCache) *AuthController {
	return &AuthController{db: db, listCache: listCache}
}

// Register creates a local account. The first account ever created claims
// the moderator sentinel inside the same transaction and is promoted;
// everyone else starts as a plain user.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3,max=64"`
		Password string `json:"password" binding:"required,min=6"`
		Picture  string `json:"picture"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		utils.Error(ctx, http.StatusBadRequest, "username cannot be empty")
		return
	}

	var existing models.User
	if err := a.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusBadRequest, "Username already exists")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Picture:      req.Picture,
	}

	err = a.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		sentinel := models.Setting{Key: models.BootstrapModeratorKey, Value: user.Username}
		switch err := tx.Create(&sentinel).Error; {
		case err == nil:
			// Won the sentinel: this is the first account.
			user.Role = models.RoleModerator
			return tx.Model(&user).Update("role", models.RoleModerator).Error
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil
		default:
			return err
		}
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusBadRequest, "Username already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login verifies credentials and issues a bearer token.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	var user models.User
	if err := a.db.Where("username = ?", strings.TrimSpace(req.Username)).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

// Logout revokes the current token and drops the cached blog list entry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}

	a.listCache.Drop(cache.BlogListKey)
	utils.Message(ctx, http.StatusOK, "Logout successful")
}

// AssignToAuthor promotes a plain user to author. Moderator only.
func (a *AuthController) AssignToAuthor(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid user id")
		return
	}

	var user models.User
	if err := a.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "User Not Found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if user.IsWorker() {
		utils.Error(ctx, http.StatusBadRequest, "User already assigned to author")
		return
	}

	if err := a.db.Model(&user).Update("role", models.RoleAuthor).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	user.Role = models.RoleAuthor

	ctx.JSON(http.StatusOK, user)
}

// EditUser lets a user update their own username, password or picture.
func (a *AuthController) EditUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid user id")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if userID != id {
		utils.Error(ctx, http.StatusForbidden, "Unauthorized: You can only edit your own profile")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Picture  string `json:"picture"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	updates := map[string]interface{}{}
	if v := strings.TrimSpace(req.Username); v != "" {
		updates["username"] = v
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		updates["password_hash"] = hash
	}
	if req.Picture != "" {
		updates["picture"] = req.Picture
	}

	if len(updates) > 0 {
		if err := a.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				utils.Error(ctx, http.StatusBadRequest, "Username already exists")
				return
			}
			utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
			return
		}
	}

	var user models.User
	if err := a.db.First(&user, id).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, "User not found")
		return
	}
	ctx.JSON(http.StatusOK, user)
}

// DeleteUser removes an account. Moderator only.
func (a *AuthController) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid user id")
		return
	}

	res := a.db.Delete(&models.User{}, id)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, "User Not Found")
		return
	}
	utils.Message(ctx, http.StatusOK, "Success deleting data")
}

// AllUser returns a paginated, optionally filtered user listing.
// Moderator only.
func (a *AuthController) AllUser(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("pageSize"))
	f := utils.Filter{}.WithUsername(strings.TrimSpace(ctx.Query("username")))

	var users []models.User
	if err := a.db.Scopes(f.Scope()).Order("id ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if len(users) == 0 {
		utils.Error(ctx, http.StatusNotFound, "No user found with the specified criteria")
		return
	}

	var total int64
	if err := a.db.Model(&models.User{}).Scopes(f.Scope()).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":       users,
		"pagination": models.NewPagination(total, page, pageSize),
	})
}

// UploadPicture stores an avatar image and returns its public URL.
func (a *AuthController) UploadPicture(ctx *gin.Context) {
	file, header, err := ctx.Request.FormFile("picture")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		utils.Error(ctx, http.StatusBadRequest, "Only .png, .jpg and .jpeg format allowed!")
		return
	}

	dir := config.Get().UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	base := strings.ToLower(filepath.Base(header.Filename))
	name := fmt.Sprintf("%s-%s", uuid.NewString(), strings.ReplaceAll(base, " ", "-"))
	if err := ctx.SaveUploadedFile(header, filepath.Join(dir, name)); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"url": "/public/" + name})
}
