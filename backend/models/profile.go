package models

import "time"

// ProfileOverview is the activity summary shown on the profile page.
type ProfileOverview struct {
	ArticlesViewed   int64      `json:"articlesViewed"`
	TotalViews       int64      `json:"totalViews"`
	TestsCompleted   int64      `json:"testsCompleted"`
	AverageTestScore float64    `json:"averageTestScore"`
	GamesPlayed      int64      `json:"gamesPlayed"`
	BestGameScore    int        `json:"bestGameScore"`
	LastActivity     *time.Time `json:"lastActivity,omitempty"`
}

// MonthlyActivity counts one calendar month of activity.
type MonthlyActivity struct {
	Month          string `json:"month"` // YYYY-MM
	ArticlesViewed int64  `json:"articlesViewed"`
	TestsCompleted int64  `json:"testsCompleted"`
	GamesPlayed    int64  `json:"gamesPlayed"`
	BestGameScore  int    `json:"bestGameScore"`
}
