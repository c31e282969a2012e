package utils

import (
	"math"
	"time"
)

type RankConfig struct {
	Gravity     float64 // 时间重力
	WeightLike  float64
	WeightView  float64 // views are an order of magnitude noisier than likes
	ScaleFactor float64 // 放大系数
}

var DefaultConfig = RankConfig{
	Gravity:     1.5,
	WeightLike:  3.0,
	WeightView:  0.1,
	ScaleFactor: 100.0, // 让分数落在 0-100 区间，像"温度"
}

// CalculateScore returns the trending score of a post created at t.
func CalculateScore(t time.Time, likes, views int) float64 {
	return calculateScoreAt(time.Now(), t, likes, views)
}

func calculateScoreAt(now, t time.Time, likes, views int) float64 {
	hours := now.Sub(t).Hours()
	if hours < 0 {
		hours = 0
	}

	weightedSum := float64(likes)*DefaultConfig.WeightLike + float64(views)*DefaultConfig.WeightView
	if weightedSum < 0 {
		weightedSum = 0
	}

	// log10(sum + 1) -> sum=0 时结果为 0
	numerator := math.Log10(weightedSum+1) * DefaultConfig.ScaleFactor
	decay := math.Pow(hours+2, DefaultConfig.Gravity)

	return numerator / decay
}
