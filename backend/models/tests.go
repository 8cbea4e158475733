package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultPassingScore = 70

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Test struct {
	gorm.Model
	Category      string `gorm:"not null;index"`
	Title         string `gorm:"not null"`
	Description   string `gorm:"not null"`
	EstimatedTime string `gorm:"not null"`
	Difficulty    string `gorm:"size:16;not null"`
	ImageURL      string
	PassingScore  float64        `gorm:"not null"`
	Questions     []TestQuestion `gorm:"constraint:OnDelete:CASCADE"`
}

func (t *Test) BeforeCreate(tx *gorm.DB) error {
	if t.Difficulty == "" {
		t.Difficulty = DifficultyMedium
	}
	if t.PassingScore <= 0 {
		t.PassingScore = DefaultPassingScore
	}
	return nil
}

type TestQuestion struct {
	gorm.Model
	TestID        uint   `gorm:"index;not null"`
	Text          string `gorm:"not null"`
	Explanation   string
	SequenceOrder int
	Options       datatypes.JSONSlice[QuestionOption]
}

// BeforeSave gives every option a stable id; grading refers to options by id.
func (q *TestQuestion) BeforeSave(tx *gorm.DB) error {
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = uuid.NewString()
		}
	}
	return nil
}

type QuestionOption struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}
