package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

const (
	GameTypeTrashSorting = "trash-sorting"
	DefaultCategory      = "Other"
)

// GameResult is one finished level attempt. Records are append-only.
type GameResult struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GameType  string    `gorm:"size:50;not null;index:idx_game_results_type_level" json:"gameType"`
	UserID    *uint     `gorm:"index" json:"userId"`
	User      *User     `json:"-"`
	Level     int       `gorm:"not null;index:idx_game_results_type_level" json:"level"`
	Score     int       `gorm:"not null" json:"score"`
	Correct   int       `gorm:"not null" json:"correct"`
	Incorrect int       `gorm:"not null" json:"incorrect"`
	Total     int       `gorm:"not null" json:"total"`
	Accuracy  int       `gorm:"not null" json:"accuracy"`
	PlayTime  int       `gorm:"not null" json:"playTime"` // seconds
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (r *GameResult) BeforeCreate(tx *gorm.DB) error {
	if r.GameType == "" {
		r.GameType = GameTypeTrashSorting
	}
	r.Accuracy = Accuracy(r.Correct, r.Total)
	return nil
}

// Accuracy is round(correct/total*100), or 0 when nothing was classified.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// ViewedArticle is unique per (user, article); repeat views bump the counter.
type ViewedArticle struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_viewed_user_article" json:"userId"`
	ArticleID     string    `gorm:"size:64;not null;uniqueIndex:idx_viewed_user_article" json:"articleId"`
	Title         string    `gorm:"not null" json:"title"`
	Category      string    `gorm:"not null" json:"category"`
	ViewCount     int       `gorm:"not null" json:"viewCount"`
	FirstViewedAt time.Time `gorm:"not null" json:"firstViewedAt"`
	LastViewedAt  time.Time `gorm:"not null;index" json:"lastViewedAt"`
}

type CompletedTest struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index:idx_completed_user_test" json:"userId"`
	TestID         string    `gorm:"size:64;not null;index:idx_completed_user_test" json:"testId"`
	Title          string    `gorm:"not null" json:"title"`
	Category       string    `gorm:"not null" json:"category"`
	Score          float64   `gorm:"not null" json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `gorm:"not null;index" json:"completedAt"`
	// CreatedAt is server time of receipt; CompletedAt may come from the client.
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
