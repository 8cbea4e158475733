package controllers

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"ecoaware/backend/config"
	"ecoaware/backend/middleware"
	"ecoaware/backend/models"
	"ecoaware/backend/services/activity"
	"ecoaware/backend/services/grading"
	"ecoaware/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TestsController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *activity.Tracker
}

func NewTestsController(db *gorm.DB, cfg *config.Config, tracker *activity.Tracker) *TestsController {
	return &TestsController{DB: db, Cfg: cfg, Tracker: tracker}
}

type OptionInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionInput struct {
	Text        string        `json:"text" validate:"required"`
	Explanation string        `json:"explanation"`
	Options     []OptionInput `json:"options" validate:"required,min=2,dive"`
}

type TestInput struct {
	Category      string          `json:"category" validate:"required"`
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description" validate:"required"`
	EstimatedTime string          `json:"estimatedTime" validate:"required"`
	Difficulty    string          `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	ImageURL      string          `json:"imageUrl"`
	PassingScore  float64         `json:"passingScore" validate:"gte=0,lte=100"`
	Questions     []QuestionInput `json:"questions" validate:"dive"`
}

type CheckInput struct {
	Answers []grading.Answer `json:"answers" validate:"required,dive"`
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order("sequence_order ASC, id ASC")
}

// toGradingTest converts the stored test into the grading service's shape.
func toGradingTest(t models.Test) grading.Test {
	gt := grading.Test{
		ID:           idString(t.ID),
		Title:        t.Title,
		Category:     t.Category,
		PassingScore: t.PassingScore,
		Questions:    make([]grading.Question, 0, len(t.Questions)),
	}
	for _, q := range t.Questions {
		gq := grading.Question{
			ID:          idString(q.ID),
			Text:        q.Text,
			Explanation: q.Explanation,
		}
		for _, o := range q.Options {
			gq.Options = append(gq.Options, grading.Option{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect})
		}
		gt.Questions = append(gt.Questions, gq)
	}
	return gt
}

func testSummaryJSON(t models.Test) fiber.Map {
	return fiber.Map{
		"id":            t.ID,
		"category":      t.Category,
		"title":         t.Title,
		"description":   t.Description,
		"estimatedTime": t.EstimatedTime,
		"difficulty":    t.Difficulty,
		"imageUrl":      t.ImageURL,
		"passingScore":  t.PassingScore,
		"questionCount": len(t.Questions),
		"createdAt":     t.CreatedAt,
	}
}

// publicTestJSON is a test as sent to someone taking it: no answer key.
func publicTestJSON(t models.Test) fiber.Map {
	out := testSummaryJSON(t)
	out["questions"] = grading.Sanitize(toGradingTest(t))
	return out
}

func (tc *TestsController) listTests(c *fiber.Ctx, scope func(*gorm.DB) *gorm.DB) error {
	var tests []models.Test
	query := tc.DB.Preload("Questions", orderedQuestions)
	if scope != nil {
		query = scope(query)
	}
	if err := query.Order("created_at DESC, id DESC").Find(&tests).Error; err != nil {
		log.Println("[ERROR] list tests:", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(tests))
	for _, t := range tests {
		result = append(result, testSummaryJSON(t))
	}
	return c.JSON(result)
}

func (tc *TestsController) GetTests(c *fiber.Ctx) error {
	return tc.listTests(c, nil)
}

func (tc *TestsController) GetTestsByCategory(c *fiber.Ctx) error {
	category := strings.TrimSpace(c.Params("name"))
	return tc.listTests(c, func(db *gorm.DB) *gorm.DB {
		return db.Where("category = ?", category)
	})
}

func (tc *TestsController) SearchTests(c *fiber.Ctx) error {
	q := strings.ToLower(strings.TrimSpace(c.Params("query")))
	if q == "" {
		return utils.BadRequest(c, "Search query is required")
	}
	pattern := "%" + q + "%"
	return tc.listTests(c, func(db *gorm.DB) *gorm.DB {
		return db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern, pattern)
	})
}

func (tc *TestsController) findTest(c *fiber.Ctx) (models.Test, error) {
	var test models.Test
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return test, fiber.NewError(fiber.StatusBadRequest, "Invalid test ID")
	}
	if err := tc.DB.Preload("Questions", orderedQuestions).First(&test, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return test, fiber.NewError(fiber.StatusNotFound, "Test not found")
		}
		return test, fiber.NewError(fiber.StatusInternalServerError, "Could not query database")
	}
	return test, nil
}

func (tc *TestsController) GetTest(c *fiber.Ctx) error {
	test, err := tc.findTest(c)
	if err != nil {
		return err
	}
	return c.JSON(publicTestJSON(test))
}

// StartTest godoc
// @Summary Start a test
// @Description Returns the test without correctness flags or explanations
// @Tags tests
// @Produce json
// @Param id path int true "Test ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Router /tests/{id}/start [get]
func (tc *TestsController) StartTest(c *fiber.Ctx) error {
	return tc.GetTest(c)
}

// CheckTest godoc
// @Summary Grade a submission
// @Tags tests
// @Accept json
// @Produce json
// @Param id path int true "Test ID"
// @Param input body CheckInput true "Answers"
// @Success 200 {object} grading.Result
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /tests/{id}/check [post]
func (tc *TestsController) CheckTest(c *fiber.Ctx) error {
	test, err := tc.findTest(c)
	if err != nil {
		return err
	}

	var input CheckInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid answers format")
	}
	if input.Answers == nil {
		return utils.BadRequest(c, "Invalid answers format")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	return c.JSON(grading.Grade(toGradingTest(test), input.Answers))
}

func (tc *TestsController) TrackCompletion(c *fiber.Ctx) error {
	var input activity.TestCompletion
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if fields := utils.ValidateStruct(input); fields != nil {
		return utils.ValidationError(c, fields)
	}

	record, duplicate, err := tc.Tracker.TrackTestCompletion(c.UserContext(), middleware.CurrentUserID(c), input)
	if err != nil {
		if errors.Is(err, activity.ErrInvalidInput) {
			return utils.BadRequest(c, err.Error())
		}
		log.Println("[ERROR] track completion:", err)
		return utils.InternalServerError(c, "Could not track test completion")
	}

	if duplicate {
		return c.JSON(fiber.Map{
			"success":   true,
			"duplicate": true,
			"message":   "Result already recorded",
			"record":    record,
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Test completion tracked",
		"record":  record,
	})
}

func (tc *TestsController) GetCompletedTests(c *fiber.Ctx) error {
	tests, err := tc.Tracker.CompletedTests(c.UserContext(), middleware.CurrentUserID(c))
	if err != nil {
		log.Println("[ERROR] completed tests:", err)
		return utils.InternalServerError(c, "Could not load completed tests")
	}
	return c.JSON(fiber.Map{"success": true, "tests": tests})
}

func buildQuestions(inputs []QuestionInput) []models.TestQuestion {
	questions := make([]models.TestQuestion, 0, len(inputs))
	for i, qi := range inputs {
		options := make(datatypes.JSONSlice[models.QuestionOption], 0, len(qi.Options))
		for _, oi := range qi.Options {
			options = append(options, models.QuestionOption{Text: oi.Text, IsCorrect: oi.IsCorrect})
		}
		questions = append(questions, models.TestQuestion{
			Text:          qi.Text,
			Explanation:   qi.Explanation,
			SequenceOrder: i + 1,
			Options:       options,
		})
	}
	return questions
}

func parseTestInput(c *fiber.Ctx) (TestInput, error) {
	var input TestInput
	if err := c.BodyParser(&input); err != nil {
		return input, fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}
	return input, utils.Validate(input)
}

func (tc *TestsController) CreateTest(c *fiber.Ctx) error {
	input, err := parseTestInput(c)
	if err != nil {
		return err
	}

	test := models.Test{
		Category:      input.Category,
		Title:         input.Title,
		Description:   input.Description,
		EstimatedTime: input.EstimatedTime,
		Difficulty:    input.Difficulty,
		ImageURL:      input.ImageURL,
		PassingScore:  input.PassingScore,
		Questions:     buildQuestions(input.Questions),
	}
	if err := tc.DB.Create(&test).Error; err != nil {
		log.Println("[ERROR] create test:", err)
		return utils.InternalServerError(c, "Could not create test")
	}
	return c.Status(fiber.StatusCreated).JSON(publicTestJSON(test))
}

// UpdateTest replaces the test's fields and its whole question list.
func (tc *TestsController) UpdateTest(c *fiber.Ctx) error {
	test, err := tc.findTest(c)
	if err != nil {
		return err
	}
	input, err := parseTestInput(c)
	if err != nil {
		return err
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", test.ID).Delete(&models.TestQuestion{}).Error; err != nil {
			return err
		}
		test.Category = input.Category
		test.Title = input.Title
		test.Description = input.Description
		test.EstimatedTime = input.EstimatedTime
		if input.Difficulty != "" {
			test.Difficulty = input.Difficulty
		}
		test.ImageURL = input.ImageURL
		if input.PassingScore > 0 {
			test.PassingScore = input.PassingScore
		}
		test.Questions = nil
		if err := tx.Save(&test).Error; err != nil {
			return err
		}
		questions := buildQuestions(input.Questions)
		for i := range questions {
			questions[i].TestID = test.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		test.Questions = questions
		return nil
	})
	if err != nil {
		log.Println("[ERROR] update test:", err)
		return utils.InternalServerError(c, "Could not update test")
	}
	return c.JSON(publicTestJSON(test))
}

func (tc *TestsController) DeleteTest(c *fiber.Ctx) error {
	test, err := tc.findTest(c)
	if err != nil {
		return err
	}
	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", test.ID).Delete(&models.TestQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&test).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete test")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Test deleted"})
}
