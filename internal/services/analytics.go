package services

import (
	"fmt"
	"sort"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/models"

	"gorm.io/gorm"
)

const (
	analyticsEventWindow = 1000
	analyticsDays        = 7
)

type CategoryStat struct {
	CategoryID uint   `json:"category_id"`
	Name       string `json:"name"`
	Count      int64  `json:"count"`
}

type PostStat struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Views int    `json:"views"`
	Likes int    `json:"likes"`
}

type SessionStat struct {
	SessionID string `json:"session_id"`
	Views     int    `json:"views"`
}

type DailyStat struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// AnalyticsSummary 管理后台仪表盘数据
type AnalyticsSummary struct {
	Users            int64          `json:"users"`
	Posts            int64          `json:"posts"`
	TotalViews       int64          `json:"total_views"`
	TotalLikes       int64          `json:"total_likes"`
	PostsPerCategory []CategoryStat `json:"posts_per_category"`
	TopViewed        []PostStat     `json:"top_viewed"`
	ViewsPerSession  []SessionStat  `json:"views_per_session"`
	DailyViews       []DailyStat    `json:"daily_views"`
	LikesPerCategory []CategoryStat `json:"likes_per_category"`
	MostLiked        *PostStat      `json:"most_liked"`
}

// Summary computes the dashboard figures as of now.
func Summary() (*AnalyticsSummary, error) {
	return summaryAt(time.Now())
}

func summaryAt(now time.Time) (*AnalyticsSummary, error) {
	s := &AnalyticsSummary{}
	gdb := db.DB

	if err := gdb.Model(&models.User{}).Count(&s.Users).Error; err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := gdb.Model(&models.Post{}).Count(&s.Posts).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	if err := gdb.Model(&models.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&s.TotalViews).Error; err != nil {
		return nil, fmt.Errorf("sum views: %w", err)
	}
	if err := gdb.Model(&models.PostLike{}).Count(&s.TotalLikes).Error; err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}

	s.PostsPerCategory = make([]CategoryStat, 0)
	err := gdb.Model(&models.Post{}).
		Select("categories.id AS category_id, categories.name AS name, COUNT(posts.id) AS count").
		Joins("JOIN categories ON categories.id = posts.category_id").
		Group("categories.id, categories.name").
		Having("COUNT(posts.id) > 0").
		Order("count DESC, name").
		Scan(&s.PostsPerCategory).Error
	if err != nil {
		return nil, fmt.Errorf("posts per category: %w", err)
	}

	s.LikesPerCategory = make([]CategoryStat, 0)
	err = gdb.Model(&models.Post{}).
		Select("categories.id AS category_id, categories.name AS name, SUM(posts.likes) AS count").
		Joins("JOIN categories ON categories.id = posts.category_id").
		Group("categories.id, categories.name").
		Having("SUM(posts.likes) > 0").
		Order("count DESC, name").
		Scan(&s.LikesPerCategory).Error
	if err != nil {
		return nil, fmt.Errorf("likes per category: %w", err)
	}

	s.TopViewed = make([]PostStat, 0)
	if err := gdb.Model(&models.Post{}).Select("id, title, views, likes").
		Order("views DESC, id").Limit(5).Scan(&s.TopViewed).Error; err != nil {
		return nil, fmt.Errorf("top viewed: %w", err)
	}

	var mostLiked []PostStat
	if err := gdb.Model(&models.Post{}).Select("id, title, views, likes").
		Where("likes > 0").Order("likes DESC, id").Limit(1).Scan(&mostLiked).Error; err != nil {
		return nil, fmt.Errorf("most liked: %w", err)
	}
	if len(mostLiked) == 1 {
		s.MostLiked = &mostLiked[0]
	}

	var events []models.PostViewEvent
	if err := gdb.Select("session_id, created_at").Order("created_at DESC").
		Limit(analyticsEventWindow).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("load view events: %w", err)
	}
	s.ViewsPerSession = viewsPerSession(events)

	var recent []models.PostViewEvent
	since := startOfDay(now).AddDate(0, 0, -(analyticsDays - 1))
	if err := gdb.Select("created_at").Where("created_at >= ?", since).Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("load recent views: %w", err)
	}
	s.DailyViews = dailyViews(now, recent)

	return s, nil
}

func viewsPerSession(events []models.PostViewEvent) []SessionStat {
	counts := make(map[string]int)
	for _, e := range events {
		counts[e.SessionID]++
	}
	stats := make([]SessionStat, 0, len(counts))
	for id, n := range counts {
		stats = append(stats, SessionStat{SessionID: id, Views: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Views != stats[j].Views {
			return stats[i].Views > stats[j].Views
		}
		return stats[i].SessionID < stats[j].SessionID
	})
	return stats
}

// dailyViews buckets events into the last seven calendar days, oldest first, zero-filled.
func dailyViews(now time.Time, events []models.PostViewEvent) []DailyStat {
	loc := now.Location()
	days := make([]DailyStat, analyticsDays)
	index := make(map[string]int, analyticsDays)
	first := startOfDay(now).AddDate(0, 0, -(analyticsDays - 1))
	for i := range days {
		key := first.AddDate(0, 0, i).Format("2006-01-02")
		days[i] = DailyStat{Date: key}
		index[key] = i
	}
	for _, e := range events {
		if i, ok := index[e.CreatedAt.In(loc).Format("2006-01-02")]; ok {
			days[i].Views++
		}
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ResetAnalytics 清空浏览记录与点赞，并把计数归零
func ResetAnalytics() error {
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.PostViewEvent{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("1 = 1").
			UpdateColumns(map[string]interface{}{"views": 0, "likes": 0, "score": 0}).Error
	})
	if err != nil {
		return fmt.Errorf("reset analytics: %w", err)
	}
	return nil
}

// RecordView increments the post's view counter and logs the view for the session.
func RecordView(postID uint, sessionID string) error {
	err := db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn("views", gorm.Expr("views + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(&models.PostViewEvent{PostID: postID, SessionID: sessionID}).Error
	})
	if err != nil {
		return fmt.Errorf("record view of post %d: %w", postID, err)
	}
	GetRankingService().ScheduleUpdate(postID)
	return nil
}
