// Package seed loads the test and article catalog from an Excel workbook.
//
// The workbook has up to three sheets:
//
//	Tests:     key | category | title | description | estimatedTime | difficulty | imageUrl | passingScore
//	Questions: test key | text | explanation | options
//	Articles:  category | title | description | content | date | readTime | imageUrl | tags
//
// Options are separated by "|" and a trailing "*" marks a correct option,
// e.g. "Bottle*|Newspaper|Bag*". Tags are comma separated. The first row of
// every sheet is a header. Tests and articles are matched by title, so
// re-importing a workbook updates rows instead of duplicating them.
package seed

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ecoaware/backend/models"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SheetTests     = "Tests"
	SheetQuestions = "Questions"
	SheetArticles  = "Articles"
)

type ImportConfig struct {
	FilePath string
	// StartRow is the first data row (1-based); rows above it are headers.
	StartRow int
	// DryRun parses and validates without writing.
	DryRun bool
}

func DefaultImportConfig() ImportConfig {
	return ImportConfig{StartRow: 2}
}

type ImportResult struct {
	TestsCreated     int
	TestsUpdated     int
	QuestionsCreated int
	ArticlesCreated  int
	ArticlesUpdated  int
	Skipped          int
	Errors           []string
}

// ImportFile opens cfg.FilePath and imports it.
func ImportFile(db *gorm.DB, cfg ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, errors.Wrap(err, "open workbook")
	}
	defer f.Close()
	return importWorkbook(db, f, cfg)
}

// Import reads a workbook from r.
func Import(db *gorm.DB, r io.Reader, cfg ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "read workbook")
	}
	defer f.Close()
	return importWorkbook(db, f, cfg)
}

func importWorkbook(db *gorm.DB, f *excelize.File, cfg ImportConfig) (*ImportResult, error) {
	if cfg.StartRow < 1 {
		cfg.StartRow = 2
	}
	result := &ImportResult{Errors: make([]string, 0)}

	tests, order, err := readTests(f, cfg, result)
	if err != nil {
		return nil, err
	}
	if err := readQuestions(f, cfg, tests, result); err != nil {
		return nil, err
	}
	articles, err := readArticles(f, cfg, result)
	if err != nil {
		return nil, err
	}
	if cfg.DryRun {
		return result, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, key := range order {
			if err := saveTest(tx, *tests[key], result); err != nil {
				return errors.Wrapf(err, "test %q", key)
			}
		}
		for _, a := range articles {
			if err := saveArticle(tx, a, result); err != nil {
				return errors.Wrapf(err, "article %q", a.Title)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// sheetRows returns nil rows when the sheet does not exist.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "read sheet %s", sheet)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func readTests(f *excelize.File, cfg ImportConfig, result *ImportResult) (map[string]*models.Test, []string, error) {
	rows, err := sheetRows(f, SheetTests)
	if err != nil {
		return nil, nil, err
	}
	tests := make(map[string]*models.Test)
	var order []string
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		key, title := cell(row, 0), cell(row, 2)
		if key == "" && title == "" {
			continue
		}
		if key == "" || title == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: key and title are required", SheetTests, rowNum))
			result.Skipped++
			continue
		}
		if _, dup := tests[key]; dup {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: duplicate key %q", SheetTests, rowNum, key))
			result.Skipped++
			continue
		}

		difficulty := strings.ToLower(cell(row, 5))
		switch difficulty {
		case "", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: unknown difficulty %q", SheetTests, rowNum, difficulty))
			difficulty = ""
		}

		var passing float64
		if raw := cell(row, 7); raw != "" {
			passing, err = strconv.ParseFloat(raw, 64)
			if err != nil || passing < 0 || passing > 100 {
				result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: invalid passing score %q", SheetTests, rowNum, raw))
				passing = 0
			}
		}

		category := cell(row, 1)
		if category == "" {
			category = models.DefaultCategory
		}
		tests[key] = &models.Test{
			Category:      category,
			Title:         title,
			Description:   cell(row, 3),
			EstimatedTime: cell(row, 4),
			Difficulty:    difficulty,
			ImageURL:      cell(row, 6),
			PassingScore:  passing,
		}
		order = append(order, key)
	}
	return tests, order, nil
}

// ParseOptions turns "A*|B|C*" into options, marking starred ones correct.
func ParseOptions(raw string) []models.QuestionOption {
	var options []models.QuestionOption
	for _, part := range strings.Split(raw, "|") {
		text := strings.TrimSpace(part)
		correct := strings.HasSuffix(text, "*")
		text = strings.TrimSpace(strings.TrimSuffix(text, "*"))
		if text == "" {
			continue
		}
		options = append(options, models.QuestionOption{Text: text, IsCorrect: correct})
	}
	return options
}

func readQuestions(f *excelize.File, cfg ImportConfig, tests map[string]*models.Test, result *ImportResult) error {
	rows, err := sheetRows(f, SheetQuestions)
	if err != nil {
		return err
	}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		key, text := cell(row, 0), cell(row, 1)
		if key == "" && text == "" {
			continue
		}
		pt, ok := tests[key]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: unknown test key %q", SheetQuestions, rowNum, key))
			result.Skipped++
			continue
		}
		options := ParseOptions(cell(row, 3))
		if text == "" || len(options) < 2 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: a question needs text and at least two options", SheetQuestions, rowNum))
			result.Skipped++
			continue
		}
		pt.Questions = append(pt.Questions, models.TestQuestion{
			Text:          text,
			Explanation:   cell(row, 2),
			SequenceOrder: len(pt.Questions) + 1,
			Options:       datatypes.JSONSlice[models.QuestionOption](options),
		})
	}
	return nil
}

func readArticles(f *excelize.File, cfg ImportConfig, result *ImportResult) ([]models.Article, error) {
	rows, err := sheetRows(f, SheetArticles)
	if err != nil {
		return nil, err
	}
	var articles []models.Article
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		title := cell(row, 1)
		if title == "" {
			if strings.Join(row, "") != "" {
				result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: title is required", SheetArticles, rowNum))
				result.Skipped++
			}
			continue
		}

		var date time.Time
		if raw := cell(row, 4); raw != "" {
			date, err = time.Parse("2006-01-02", raw)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: invalid date %q", SheetArticles, rowNum, raw))
				date = time.Time{}
			}
		}

		var tags []string
		for _, t := range strings.Split(cell(row, 7), ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}

		category := cell(row, 0)
		if category == "" {
			category = models.DefaultCategory
		}
		articles = append(articles, models.Article{
			Category:    category,
			Title:       title,
			Description: cell(row, 2),
			Content:     cell(row, 3),
			Date:        date,
			ReadTime:    cell(row, 5),
			ImageURL:    cell(row, 6),
			Tags:        datatypes.JSONSlice[string](tags),
		})
	}
	return articles, nil
}

func saveTest(tx *gorm.DB, t models.Test, result *ImportResult) error {
	var existing models.Test
	err := tx.Where("title = ?", t.Title).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		result.TestsCreated++
		result.QuestionsCreated += len(t.Questions)
		return nil
	case err != nil:
		return err
	}

	questions := t.Questions
	t.Questions = nil
	t.ID = existing.ID
	t.CreatedAt = existing.CreatedAt
	if t.Difficulty == "" {
		t.Difficulty = existing.Difficulty
	}
	if t.PassingScore <= 0 {
		t.PassingScore = existing.PassingScore
	}
	if err := tx.Save(&t).Error; err != nil {
		return err
	}
	if err := tx.Where("test_id = ?", t.ID).Delete(&models.TestQuestion{}).Error; err != nil {
		return err
	}
	for i := range questions {
		questions[i].TestID = t.ID
	}
	if len(questions) > 0 {
		if err := tx.Create(&questions).Error; err != nil {
			return err
		}
	}
	result.TestsUpdated++
	result.QuestionsCreated += len(questions)
	return nil
}

func saveArticle(tx *gorm.DB, a models.Article, result *ImportResult) error {
	var existing models.Article
	err := tx.Where("title = ?", a.Title).First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		result.ArticlesCreated++
		return nil
	case err != nil:
		return err
	}

	a.ID = existing.ID
	a.CreatedAt = existing.CreatedAt
	if a.Date.IsZero() {
		a.Date = existing.Date
	}
	if err := tx.Save(&a).Error; err != nil {
		return err
	}
	result.ArticlesUpdated++
	return nil
}
