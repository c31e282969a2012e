package services

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"campusfeed/internal/db"
	"campusfeed/internal/models"
	"campusfeed/internal/utils"
)

// RankingService 提供异步计算和更新帖子 Score 的服务
type RankingService struct {
	queue   chan uint // 待更新的帖子 ID 队列
	pending map[uint]bool
	mu      sync.Mutex
	running atomic.Bool
	stop    chan struct{}
}

var (
	rankingService *RankingService
	once           sync.Once
)

// GetRankingService 获取单例排名服务
func GetRankingService() *RankingService {
	once.Do(func() {
		rankingService = &RankingService{
			queue:   make(chan uint, 1000), // 缓冲队列，防止阻塞
			pending: make(map[uint]bool),
			stop:    make(chan struct{}),
		}
	})
	return rankingService
}

// Start launches the background worker. Updates scheduled before Start are dropped.
func (s *RankingService) Start() {
	if s.running.CompareAndSwap(false, true) {
		go s.worker()
	}
}

// Stop ends the worker after the current batch.
func (s *RankingService) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.stop <- struct{}{}
	}
}

// ScheduleUpdate 将帖子加入更新队列（异步）
// 使用去重机制避免短时间内重复计算同一帖子
func (s *RankingService) ScheduleUpdate(postID uint) {
	if !s.running.Load() {
		return
	}

	s.mu.Lock()
	if s.pending[postID] {
		s.mu.Unlock()
		return
	}
	s.pending[postID] = true
	s.mu.Unlock()

	// 非阻塞发送到队列
	select {
	case s.queue <- postID:
	default:
		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
		log.Printf("排名更新队列已满，跳过帖子 %d", postID)
	}
}

// worker 后台处理队列中的更新请求
func (s *RankingService) worker() {
	batch := make([]uint, 0, 50)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case postID := <-s.queue:
			batch = append(batch, postID)
			if len(batch) >= 50 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.processBatch(batch)
				batch = batch[:0]
			}
		case <-s.stop:
			return
		}
	}
}

func (s *RankingService) processBatch(postIDs []uint) {
	for _, postID := range postIDs {
		UpdatePostScore(postID)

		s.mu.Lock()
		delete(s.pending, postID)
		s.mu.Unlock()
	}
}

// UpdatePostScore 同步计算并写回单个帖子的 Score
func UpdatePostScore(postID uint) {
	var post models.Post
	if err := db.DB.Select("id, likes, views, created_at").First(&post, postID).Error; err != nil {
		log.Printf("更新 Score 失败：帖子 %d 不存在", postID)
		return
	}

	score := utils.CalculateScore(post.CreatedAt, post.Likes, post.Views)
	if err := db.DB.Model(&models.Post{}).Where("id = ?", postID).UpdateColumn("score", score).Error; err != nil {
		log.Printf("更新帖子 %d Score 失败: %v", postID, err)
	}
}

// StartScheduledScoreUpdate 启动定时分数更新任务（每天凌晨 3 点执行）
func (s *RankingService) StartScheduledScoreUpdate() {
	go func() {
		for {
			now := time.Now()
			next := time.Date(now.Year(), now.Month(), now.Day(), 3, 0, 0, 0, now.Location())
			if now.After(next) {
				next = next.Add(24 * time.Hour)
			}
			time.Sleep(time.Until(next))

			log.Println("开始定时更新文章分数...")
			n := RefreshHotScores()
			log.Printf("定时更新文章分数完成，本次更新 %d 篇", n)
		}
	}()
}

// RefreshHotScores 更新最近 7 天和分数最高的 30 篇文章的分数
func RefreshHotScores() int {
	processed := make(map[uint]bool)

	var ids []uint
	db.DB.Model(&models.Post{}).Where("created_at >= ?", time.Now().AddDate(0, 0, -7)).Pluck("id", &ids)

	var top []uint
	db.DB.Model(&models.Post{}).Order("score DESC").Limit(30).Pluck("id", &top)

	for _, id := range append(ids, top...) {
		if processed[id] {
			continue
		}
		UpdatePostScore(id)
		processed[id] = true
	}
	return len(processed)
}
