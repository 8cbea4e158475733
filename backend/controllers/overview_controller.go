package controllers

import (
	"log"
	"strings"

	"ecoaware/backend/config"
	"ecoaware/backend/models"
	"ecoaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OverviewController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewOverviewController(db *gorm.DB, cfg *config.Config) *OverviewController {
	return &OverviewController{DB: db, Cfg: cfg}
}

const (
	readersColumn     = "(SELECT COUNT(*) FROM viewed_articles WHERE viewed_articles.article_id = CAST(articles.id AS TEXT))"
	completionsColumn = "(SELECT COUNT(*) FROM completed_tests WHERE completed_tests.test_id = CAST(tests.id AS TEXT))"
	avgScoreColumn    = "(SELECT COALESCE(AVG(score), 0) FROM completed_tests WHERE completed_tests.test_id = CAST(tests.id AS TEXT))"
	questionsColumn   = "(SELECT COUNT(*) FROM test_questions WHERE test_questions.test_id = tests.id AND test_questions.deleted_at IS NULL)"
)

type articleRow struct {
	models.Article
	Readers int64
}

type testRow struct {
	models.Test
	QuestionCount int64
	Completions   int64
	AverageScore  float64
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// SearchArticles filters articles by ?search= and ?category=, sorted by
// ?sort=newest (default) or popular (distinct readers).
func (oc *OverviewController) SearchArticles(c *fiber.Ctx) error {
	query := oc.DB.Model(&models.Article{})
	if search := c.Query("search"); strings.TrimSpace(search) != "" {
		p := likePattern(search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", p, p)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	query = query.Select("articles.*, " + readersColumn + " AS readers")
	switch c.Query("sort", "newest") {
	case "popular":
		query = query.Order("readers DESC").Order("date DESC")
	default:
		query = query.Order("date DESC, id DESC")
	}

	var rows []articleRow
	if err := query.Scan(&rows).Error; err != nil {
		log.Println("[ERROR] overview articles:", err)
		return utils.InternalServerError(c, "Failed to fetch articles")
	}

	result := make([]fiber.Map, 0, len(rows))
	for _, a := range rows {
		result = append(result, fiber.Map{
			"id":          a.ID,
			"title":       a.Title,
			"description": a.Description,
			"category":    a.Category,
			"readTime":    a.ReadTime,
			"imageUrl":    a.ImageURL,
			"date":        a.Date,
			"readers":     a.Readers,
		})
	}
	return utils.Success(c, fiber.StatusOK, result)
}

// SearchTests filters tests by ?search=, ?category= and ?difficulty=, sorted
// by ?sort=newest (default) or popular (completions).
func (oc *OverviewController) SearchTests(c *fiber.Ctx) error {
	query := oc.DB.Model(&models.Test{})
	if search := c.Query("search"); strings.TrimSpace(search) != "" {
		p := likePattern(search)
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", p, p)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	query = query.Select("tests.*, " +
		questionsColumn + " AS question_count, " +
		completionsColumn + " AS completions, " +
		avgScoreColumn + " AS average_score")
	switch c.Query("sort", "newest") {
	case "popular":
		query = query.Order("completions DESC").Order("created_at DESC")
	default:
		query = query.Order("created_at DESC, id DESC")
	}

	var rows []testRow
	if err := query.Scan(&rows).Error; err != nil {
		log.Println("[ERROR] overview tests:", err)
		return utils.InternalServerError(c, "Failed to fetch tests")
	}

	result := make([]fiber.Map, 0, len(rows))
	for _, t := range rows {
		result = append(result, fiber.Map{
			"id":            t.ID,
			"title":         t.Title,
			"description":   t.Description,
			"category":      t.Category,
			"difficulty":    t.Difficulty,
			"estimatedTime": t.EstimatedTime,
			"questionCount": t.QuestionCount,
			"completions":   t.Completions,
			"averageScore":  t.AverageScore,
		})
	}
	return utils.Success(c, fiber.StatusOK, result)
}
