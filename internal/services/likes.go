package services

import (
	"errors"
	"fmt"

	"campusfeed/internal/db"
	"campusfeed/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeResult is the state of a post after a toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// ToggleLike 切换点赞状态
// The join row and the posts.likes mirror change together so the counter always equals COUNT(post_likes).
func ToggleLike(postID, userID uint) (*LikeResult, error) {
	result := &LikeResult{}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := lockPost(tx, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				return err
			}
			result.Liked = true
		default:
			return err
		}

		likes, err := recountLikes(tx, postID)
		if err != nil {
			return err
		}
		result.Likes = likes
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("toggle like on post %d: %w", postID, err)
	}

	GetRankingService().ScheduleUpdate(postID)
	return result, nil
}

// lockPost 锁住帖子行，同一帖子的并发切换依次执行
func lockPost(tx *gorm.DB, postID uint) *gorm.DB {
	var post models.Post
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&post, postID)
}

func recountLikes(tx *gorm.DB, postID uint) (int, error) {
	var count int64
	if err := tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, err
	}
	if err := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn("likes", count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// ReconcileLikes rewrites every post's like counter from the join table and reports how many drifted.
func ReconcileLikes() (int, error) {
	type row struct {
		ID     uint
		Likes  int
		Actual int
	}
	var rows []row
	err := db.DB.Model(&models.Post{}).
		Select("posts.id, posts.likes, (SELECT COUNT(*) FROM post_likes WHERE post_likes.post_id = posts.id) AS actual").
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("load like counters: %w", err)
	}

	fixed := 0
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		for _, r := range rows {
			if r.Likes == r.Actual {
				continue
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", r.ID).UpdateColumn("likes", r.Actual).Error; err != nil {
				return err
			}
			fixed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("reconcile likes: %w", err)
	}
	return fixed, nil
}

// LikedPostIDs returns which of the given posts the user has liked.
func LikedPostIDs(userID uint, postIDs []uint) map[uint]bool {
	liked := make(map[uint]bool)
	if userID == 0 || len(postIDs) == 0 {
		return liked
	}
	var ids []uint
	db.DB.Model(&models.PostLike{}).Where("user_id = ? AND post_id IN ?", userID, postIDs).Pluck("post_id", &ids)
	for _, id := range ids {
		liked[id] = true
	}
	return liked
}
