package controllers

import (
	"errors"
	"log"
	"time"

	"ecoaware/backend/config"
	"ecoaware/backend/middleware"
	"ecoaware/backend/models"
	"ecoaware/backend/services/stats"
	"ecoaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const progressMonths = 4

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
	// Now is overridable in tests.
	Now func() time.Time
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg, Now: time.Now}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the user together with an activity overview and game statistics
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)

	var user models.User
	if err := uc.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		log.Println("[ERROR] profile user:", err)
		return utils.InternalServerError(c, "Could not load profile")
	}

	overview, err := uc.overview(userID)
	if err != nil {
		log.Println("[ERROR] profile overview:", err)
		return utils.InternalServerError(c, "Could not load profile")
	}

	// game stats degrade to zeros like the stats endpoint
	var results []models.GameResult
	gameStats := stats.Empty()
	if err := uc.DB.Where("game_type = ? AND user_id = ?", models.GameTypeTrashSorting, userID).Find(&results).Error; err != nil {
		log.Println("[ERROR] profile game stats:", err)
	} else {
		gameStats = stats.Summarize(results)
	}

	recentTests := []models.CompletedTest{}
	if err := uc.DB.Where("user_id = ?", userID).Order("completed_at DESC").Limit(5).Find(&recentTests).Error; err != nil {
		log.Println("[ERROR] profile recent tests:", err)
		return utils.InternalServerError(c, "Could not load profile")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"user":        userJSON(user),
		"overview":    overview,
		"gameStats":   gameStats,
		"recentTests": recentTests,
	})
}

func (uc *UserController) overview(userID uint) (models.ProfileOverview, error) {
	var o models.ProfileOverview

	// each base is a session so it can be reused across queries
	articles := uc.DB.Model(&models.ViewedArticle{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := articles.Count(&o.ArticlesViewed).Error; err != nil {
		return o, err
	}
	if err := articles.Select("COALESCE(SUM(view_count), 0)").Scan(&o.TotalViews).Error; err != nil {
		return o, err
	}

	tests := uc.DB.Model(&models.CompletedTest{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := tests.Count(&o.TestsCompleted).Error; err != nil {
		return o, err
	}
	if err := tests.Select("COALESCE(AVG(score), 0)").Scan(&o.AverageTestScore).Error; err != nil {
		return o, err
	}

	games := uc.DB.Model(&models.GameResult{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := games.Count(&o.GamesPlayed).Error; err != nil {
		return o, err
	}
	if err := games.Select("COALESCE(MAX(score), 0)").Scan(&o.BestGameScore).Error; err != nil {
		return o, err
	}

	var last models.ViewedArticle
	if err := uc.DB.Where("user_id = ?", userID).Order("last_viewed_at DESC").Limit(1).Find(&last).Error; err != nil {
		return o, err
	}
	if last.ID != 0 {
		t := last.LastViewedAt
		o.LastActivity = &t
	}
	var lastTest models.CompletedTest
	if err := uc.DB.Where("user_id = ?", userID).Order("completed_at DESC").Limit(1).Find(&lastTest).Error; err != nil {
		return o, err
	}
	if lastTest.ID != 0 && (o.LastActivity == nil || lastTest.CompletedAt.After(*o.LastActivity)) {
		t := lastTest.CompletedAt
		o.LastActivity = &t
	}
	return o, nil
}

// GetProgress godoc
// @Summary Get monthly activity
// @Description Returns articles viewed, tests completed and games played for the last 4 months
// @Tags users
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /user/progress [get]
func (uc *UserController) GetProgress(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	now := uc.Now().UTC()

	months := make([]models.MonthlyActivity, 0, progressMonths)
	for i := 0; i < progressMonths; i++ {
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, 0)

		m, err := uc.monthlyActivity(userID, start, end)
		if err != nil {
			log.Println("[ERROR] monthly progress:", err)
			return utils.InternalServerError(c, "Could not load progress")
		}
		months = append(months, m)
	}

	return utils.Success(c, fiber.StatusOK, months)
}

func (uc *UserController) monthlyActivity(userID uint, start, end time.Time) (models.MonthlyActivity, error) {
	m := models.MonthlyActivity{Month: start.Format("2006-01")}

	if err := uc.DB.Model(&models.ViewedArticle{}).
		Where("user_id = ? AND first_viewed_at >= ? AND first_viewed_at < ?", userID, start, end).
		Count(&m.ArticlesViewed).Error; err != nil {
		return m, err
	}
	if err := uc.DB.Model(&models.CompletedTest{}).
		Where("user_id = ? AND completed_at >= ? AND completed_at < ?", userID, start, end).
		Count(&m.TestsCompleted).Error; err != nil {
		return m, err
	}

	games := uc.DB.Model(&models.GameResult{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, start, end).
		Session(&gorm.Session{})
	if err := games.Count(&m.GamesPlayed).Error; err != nil {
		return m, err
	}
	if err := games.Select("COALESCE(MAX(score), 0)").Scan(&m.BestGameScore).Error; err != nil {
		return m, err
	}
	return m, nil
}
