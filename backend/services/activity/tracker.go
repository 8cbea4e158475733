// Package activity records what a user has read and which tests they finished.
package activity

import (
	"context"
	"strings"
	"time"

	"ecoaware/backend/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DuplicateWindow is how long an identical completion is treated as a resubmission.
	DuplicateWindow = 10 * time.Minute
	// maxClockSkew is how far in the future a client timestamp may be.
	maxClockSkew = time.Minute

	scoreTolerance = 0.005
)

var ErrInvalidInput = errors.New("invalid activity payload")

type Tracker struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{DB: db, Now: func() time.Time { return time.Now().UTC() }}
}

type ArticleView struct {
	ArticleID string `json:"articleId" validate:"required,max=64"`
	Title     string `json:"title" validate:"required"`
	Category  string `json:"category"`
}

// TrackArticleView inserts the first view or bumps viewCount on a repeat,
// in a single upsert on (user_id, article_id).
func (t *Tracker) TrackArticleView(ctx context.Context, userID uint, v ArticleView) (*models.ViewedArticle, error) {
	v.ArticleID = strings.TrimSpace(v.ArticleID)
	if userID == 0 || v.ArticleID == "" || strings.TrimSpace(v.Title) == "" {
		return nil, errors.Wrap(ErrInvalidInput, "articleId and title are required")
	}
	if strings.TrimSpace(v.Category) == "" {
		v.Category = models.DefaultCategory
	}

	now := t.Now()
	record := models.ViewedArticle{
		UserID:        userID,
		ArticleID:     v.ArticleID,
		Title:         v.Title,
		Category:      v.Category,
		ViewCount:     1,
		FirstViewedAt: now,
		LastViewedAt:  now,
	}
	err := t.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "article_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"view_count":     gorm.Expr("viewed_articles.view_count + 1"),
			"last_viewed_at": now,
		}),
	}).Create(&record).Error
	if err != nil {
		return nil, errors.Wrap(err, "upsert viewed article")
	}

	var stored models.ViewedArticle
	if err := t.DB.WithContext(ctx).
		Where("user_id = ? AND article_id = ?", userID, v.ArticleID).
		First(&stored).Error; err != nil {
		return nil, errors.Wrap(err, "reload viewed article")
	}
	return &stored, nil
}

type TestCompletion struct {
	TestID         string  `json:"testId" validate:"required,max=64"`
	Title          string  `json:"title" validate:"required"`
	Category       string  `json:"category"`
	Score          float64 `json:"score" validate:"gte=0,lte=100"`
	CorrectAnswers int     `json:"correctAnswers" validate:"gte=0"`
	TotalQuestions int     `json:"totalQuestions" validate:"gte=0"`
	Timestamp      string  `json:"timestamp"`
}

// TrackTestCompletion stores a finished attempt unless the same
// (user, test, score) was recorded within DuplicateWindow. The check and the
// insert are not atomic; two concurrent identical submissions may both land.
func (t *Tracker) TrackTestCompletion(ctx context.Context, userID uint, in TestCompletion) (*models.CompletedTest, bool, error) {
	in.TestID = strings.TrimSpace(in.TestID)
	if userID == 0 || in.TestID == "" || strings.TrimSpace(in.Title) == "" {
		return nil, false, errors.Wrap(ErrInvalidInput, "testId and title are required")
	}
	if in.Score < 0 || in.Score > 100 {
		return nil, false, errors.Wrapf(ErrInvalidInput, "score %.2f out of range", in.Score)
	}
	if strings.TrimSpace(in.Category) == "" {
		in.Category = models.DefaultCategory
	}

	now := t.Now()
	completedAt := completionTime(in.Timestamp, now)
	db := t.DB.WithContext(ctx)

	// A match is a record received within the window, or one whose completion
	// time lies within the window of this one. Client timestamps may be old.
	var existing models.CompletedTest
	err := db.Where("user_id = ? AND test_id = ? AND score BETWEEN ? AND ?",
		userID, in.TestID, in.Score-scoreTolerance, in.Score+scoreTolerance).
		Where(db.Where("created_at >= ?", now.Add(-DuplicateWindow)).
			Or("completed_at BETWEEN ? AND ?", completedAt.Add(-DuplicateWindow), completedAt.Add(DuplicateWindow))).
		Order("created_at DESC").
		First(&existing).Error
	switch {
	case err == nil:
		return &existing, true, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, errors.Wrap(err, "look up recent completion")
	}

	record := models.CompletedTest{
		UserID:         userID,
		TestID:         in.TestID,
		Title:          in.Title,
		Category:       in.Category,
		Score:          in.Score,
		CorrectAnswers: in.CorrectAnswers,
		TotalQuestions: in.TotalQuestions,
		CompletedAt:    completedAt,
		CreatedAt:      now,
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, false, errors.Wrap(err, "insert completed test")
	}
	return &record, false, nil
}

// completionTime prefers the client's RFC3339 timestamp unless it is
// unparseable or too far ahead of the server clock.
func completionTime(raw string, now time.Time) time.Time {
	if raw == "" {
		return now
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil || ts.After(now.Add(maxClockSkew)) {
		return now
	}
	return ts.UTC()
}

func (t *Tracker) ViewedArticles(ctx context.Context, userID uint) ([]models.ViewedArticle, error) {
	articles := []models.ViewedArticle{}
	err := t.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("last_viewed_at DESC").
		Find(&articles).Error
	return articles, errors.Wrap(err, "list viewed articles")
}

func (t *Tracker) CompletedTests(ctx context.Context, userID uint) ([]models.CompletedTest, error) {
	tests := []models.CompletedTest{}
	err := t.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&tests).Error
	return tests, errors.Wrap(err, "list completed tests")
}
