package controllers

import (
	"log"

	"ecoaware/backend/config"
	"ecoaware/backend/middleware"
	"ecoaware/backend/models"
	"ecoaware/backend/services/stats"
	"ecoaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GamesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGamesController(db *gorm.DB, cfg *config.Config) *GamesController {
	return &GamesController{DB: db, Cfg: cfg}
}

type GameResultInput struct {
	Level     int `json:"level" validate:"required,min=1,max=3"`
	Score     int `json:"score" validate:"min=0"`
	Correct   int `json:"correct" validate:"min=0"`
	Incorrect int `json:"incorrect" validate:"min=0"`
	Total     int `json:"total" validate:"min=0"`
	PlayTime  int `json:"playTime" validate:"min=0"`
}

// SaveResult godoc
// @Summary Save a trash-sorting result
// @Tags games
// @Accept json
// @Produce json
// @Param input body GameResultInput true "Finished level"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /games/trash-sorting/results [post]
func (gc *GamesController) SaveResult(c *fiber.Ctx) error {
	var input GameResultInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}
	if input.Total != input.Correct+input.Incorrect {
		return utils.ValidationError(c, map[string]string{"total": "eq_correct_plus_incorrect"})
	}

	userID := middleware.CurrentUserID(c)
	result := models.GameResult{
		GameType:  models.GameTypeTrashSorting,
		UserID:    &userID,
		Level:     input.Level,
		Score:     input.Score,
		Correct:   input.Correct,
		Incorrect: input.Incorrect,
		Total:     input.Total,
		PlayTime:  input.PlayTime,
	}
	if err := gc.DB.Create(&result).Error; err != nil {
		log.Println("[ERROR] save game result:", err)
		return utils.InternalServerError(c, "Could not save result")
	}

	return utils.Created(c, fiber.Map{
		"message": "Result saved",
		"result":  result,
	})
}

func (gc *GamesController) Leaderboard(c *fiber.Ctx) error {
	level, err := stats.ParseLevel(c.Query("level"))
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	query := gc.DB.Preload("User").Where("game_type = ?", models.GameTypeTrashSorting)
	if level > 0 {
		query = query.Where("level = ?", level)
	}

	var results []models.GameResult
	if err := query.Order("score DESC, created_at ASC, id ASC").
		Limit(stats.LeaderboardSize).
		Find(&results).Error; err != nil {
		log.Println("[ERROR] leaderboard:", err)
		return utils.InternalServerError(c, "Could not load leaderboard")
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"leaderboard": stats.Leaderboard(results, stats.LeaderboardSize),
	})
}

// Stats never fails: anonymous callers and store errors both get zeroed stats.
func (gc *GamesController) Stats(c *fiber.Ctx) error {
	userID := middleware.CurrentUserID(c)
	if userID == 0 {
		return c.JSON(fiber.Map{"success": true, "stats": stats.Empty()})
	}

	var results []models.GameResult
	if err := gc.DB.Where("game_type = ? AND user_id = ?", models.GameTypeTrashSorting, userID).
		Find(&results).Error; err != nil {
		log.Println("[ERROR] game stats:", err)
		return c.JSON(fiber.Map{"success": true, "stats": stats.Empty()})
	}

	return c.JSON(fiber.Map{"success": true, "stats": stats.Summarize(results)})
}

func (gc *GamesController) Recommendations(c *fiber.Ctx) error {
	var latest []models.GameResult
	if err := gc.DB.Where("game_type = ? AND user_id = ?", models.GameTypeTrashSorting, middleware.CurrentUserID(c)).
		Order("created_at DESC, id DESC").
		Limit(5).
		Find(&latest).Error; err != nil {
		log.Println("[ERROR] recommendations:", err)
		return utils.InternalServerError(c, "Could not load recommendations")
	}

	return c.JSON(fiber.Map{
		"success":         true,
		"recommendations": stats.Recommend(latest),
	})
}
