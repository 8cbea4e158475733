package controllers

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"ecoaware/backend/config"
	"ecoaware/backend/middleware"
	"ecoaware/backend/models"
	"ecoaware/backend/services/activity"
	"ecoaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ArticlesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *activity.Tracker
}

func NewArticlesController(db *gorm.DB, cfg *config.Config, tracker *activity.Tracker) *ArticlesController {
	return &ArticlesController{DB: db, Cfg: cfg, Tracker: tracker}
}

type ArticleInput struct {
	Category    string     `json:"category" validate:"required"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"required"`
	Content     string     `json:"content" validate:"required"`
	Date        *time.Time `json:"date"`
	ReadTime    string     `json:"readTime" validate:"required"`
	ImageURL    string     `json:"imageUrl"`
	Tags        []string   `json:"tags" validate:"omitempty,dive,required"`
}

func articleJSON(a models.Article) fiber.Map {
	tags := []string(a.Tags)
	if tags == nil {
		tags = []string{}
	}
	return fiber.Map{
		"id":          a.ID,
		"category":    a.Category,
		"title":       a.Title,
		"description": a.Description,
		"content":     a.Content,
		"date":        a.Date,
		"readTime":    a.ReadTime,
		"imageUrl":    a.ImageURL,
		"tags":        tags,
		"createdAt":   a.CreatedAt,
		"updatedAt":   a.UpdatedAt,
	}
}

// GetArticles lists articles newest first, optionally narrowed by ?category=.
func (ac *ArticlesController) GetArticles(c *fiber.Ctx) error {
	query := ac.DB.Model(&models.Article{})
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}

	var articles []models.Article
	if err := query.Order("date DESC, id DESC").Find(&articles).Error; err != nil {
		log.Println("[ERROR] list articles:", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(articles))
	for _, a := range articles {
		result = append(result, articleJSON(a))
	}
	return c.JSON(result)
}

func (ac *ArticlesController) findArticle(c *fiber.Ctx) (models.Article, error) {
	var article models.Article
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return article, fiber.NewError(fiber.StatusBadRequest, "Invalid article ID")
	}
	if err := ac.DB.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return article, fiber.NewError(fiber.StatusNotFound, "Article not found")
		}
		return article, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return article, nil
}

func (ac *ArticlesController) GetArticle(c *fiber.Ctx) error {
	article, err := ac.findArticle(c)
	if err != nil {
		return err
	}
	return c.JSON(articleJSON(article))
}

func (ac *ArticlesController) GetViewedArticles(c *fiber.Ctx) error {
	articles, err := ac.Tracker.ViewedArticles(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		log.Println("[ERROR] viewed articles:", err)
		return utils.InternalServerError(c, "Could not load viewed articles")
	}
	return c.JSON(fiber.Map{"success": true, "articles": articles})
}

// TrackView godoc
// @Summary Record that the current user opened an article
// @Tags articles
// @Accept json
// @Produce json
// @Param input body activity.ArticleView true "Viewed article"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /articles/track-view [post]
func (ac *ArticlesController) TrackView(c *fiber.Ctx) error {
	var input activity.ArticleView
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if err := utils.Validate(input); err != nil {
		return err
	}

	record, err := ac.Tracker.TrackArticleView(c.UserContext(), middleware.CurrentUserID(c), input)
	if err != nil {
		if errors.Is(err, activity.ErrInvalidInput) {
			return utils.BadRequest(c, "Article ID and title are required")
		}
		log.Println("[ERROR] track article view:", err)
		return utils.InternalServerError(c, "Could not track article view")
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Article view tracked",
		"viewCount": record.ViewCount,
	})
}

func parseArticleInput(c *fiber.Ctx) (ArticleInput, error) {
	var input ArticleInput
	if err := c.BodyParser(&input); err != nil {
		return input, fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	return input, utils.Validate(input)
}

func applyArticleInput(a *models.Article, input ArticleInput) {
	a.Category = strings.TrimSpace(input.Category)
	a.Title = strings.TrimSpace(input.Title)
	a.Description = input.Description
	a.Content = input.Content
	a.ReadTime = input.ReadTime
	a.ImageURL = input.ImageURL
	a.Tags = datatypes.JSONSlice[string](input.Tags)
	if input.Date != nil {
		a.Date = input.Date.UTC()
	}
}

func (ac *ArticlesController) CreateArticle(c *fiber.Ctx) error {
	input, err := parseArticleInput(c)
	if err != nil {
		return err
	}
	var article models.Article
	applyArticleInput(&article, input)
	if err := ac.DB.Create(&article).Error; err != nil {
		log.Println("[ERROR] create article:", err)
		return utils.InternalServerError(c, "Could not create article")
	}
	return c.Status(fiber.StatusCreated).JSON(articleJSON(article))
}

func (ac *ArticlesController) UpdateArticle(c *fiber.Ctx) error {
	article, err := ac.findArticle(c)
	if err != nil {
		return err
	}
	input, err := parseArticleInput(c)
	if err != nil {
		return err
	}
	applyArticleInput(&article, input)
	if err := ac.DB.Save(&article).Error; err != nil {
		return utils.InternalServerError(c, "Could not update article")
	}
	return c.JSON(articleJSON(article))
}

func (ac *ArticlesController) DeleteArticle(c *fiber.Ctx) error {
	article, err := ac.findArticle(c)
	if err != nil {
		return err
	}
	if err := ac.DB.Delete(&article).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete article")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Article deleted"})
}
