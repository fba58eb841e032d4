package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogward/blogward/models"
	"github.com/blogward/blogward/utils"
)

// Vote transition outcomes surfaced out of the ledger transaction.
var (
	errVoteBlogNotFound = errors.New("blog not found")
	errDuplicateVote    = errors.New("duplicate vote")
	errNoVote           = errors.New("no vote to reset")
)

// Like records a like for the current user.
func (b *BlogController) Like(ctx *gin.Context) {
	b.vote(ctx, models.VoteLike)
}

// Dislike records a dislike for the current user.
func (b *BlogController) Dislike(ctx *gin.Context) {
	b.vote(ctx, models.VoteDislike)
}

// vote runs one ledger transition for (blog, user): create the vote row
// and bump the matching counter; when an opposite vote exists, destroy it
// and decrement its counter first. Repeating the current vote is a
// conflict. The whole transition is a single transaction so the vote rows
// and the blog counters cannot drift apart on partial failure.
func (b *BlogController) vote(ctx *gin.Context, voteType string) {
	blogID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid blog id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		var blog models.Blog
		if err := tx.First(&blog, blogID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errVoteBlogNotFound
			}
			return err
		}

		var existing models.BlogVote
		err := tx.Where("blog_id = ? AND user_id = ?", blog.ID, userID).First(&existing).Error
		switch {
		case err == nil:
			if existing.VoteType == voteType {
				return errDuplicateVote
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := adjustCounter(tx, blog.ID, existing.VoteType, -1); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first vote for this pair
		default:
			return err
		}

		vote := models.BlogVote{BlogID: blog.ID, UserID: userID, VoteType: voteType}
		if err := tx.Create(&vote).Error; err != nil {
			return err
		}
		return adjustCounter(tx, blog.ID, voteType, 1)
	})

	switch {
	case err == nil:
		utils.Message(ctx, http.StatusOK, "Blog "+voteType+"d successfully.")
	case errors.Is(err, errVoteBlogNotFound):
		utils.Error(ctx, http.StatusNotFound, "Blog not found")
	case errors.Is(err, errDuplicateVote):
		utils.Error(ctx, http.StatusBadRequest, "You have already "+voteType+"d this blog.")
	default:
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
	}
}

// ResetVote removes the current user's vote and decrements the matching counter.
func (b *BlogController) ResetVote(ctx *gin.Context) {
	blogID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, "invalid blog id")
		return
	}
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "Unauthorized")
		return
	}

	err := b.db.Transaction(func(tx *gorm.DB) error {
		var existing models.BlogVote
		if err := tx.Where("blog_id = ? AND user_id = ?", blogID, userID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errNoVote
			}
			return err
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
		return adjustCounter(tx, blogID, existing.VoteType, -1)
	})

	switch {
	case err == nil:
		utils.Message(ctx, http.StatusOK, "Vote reset successfully.")
	case errors.Is(err, errNoVote):
		utils.Error(ctx, http.StatusNotFound, "You haven't voted for this blog.")
	default:
		utils.Error(ctx, http.StatusInternalServerError, "Internal Server Error")
	}
}

// adjustCounter applies a ±1 delta to the blog's like or dislike counter
// with a relative update, never a recompute.
func adjustCounter(tx *gorm.DB, blogID uint, voteType string, delta int) error {
	column := "likes"
	if voteType == models.VoteDislike {
		column = "dislikes"
	}
	return tx.Model(&models.Blog{}).Where("id = ?", blogID).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
