// Package stats reduces raw game results into the leaderboard, per-user
// statistics and practice recommendations.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"ecoaware/backend/models"

	"github.com/pkg/errors"
)

const (
	LeaderboardSize = 10
	MaxLevel        = 3

	recommendationWindow = 5
	lowAccuracyThreshold = 60.0
)

var ErrInvalidLevel = errors.New("level must be 1, 2, 3 or all")

// ParseLevel reads the leaderboard level filter. Zero means all levels.
func ParseLevel(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return 0, nil
	}
	level, err := strconv.Atoi(raw)
	if err != nil || level < 1 || level > MaxLevel {
		return 0, errors.Wrapf(ErrInvalidLevel, "got %q", raw)
	}
	return level, nil
}

type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	Username  string    `json:"username"`
	Anonymous bool      `json:"anonymous"`
	Level     int       `json:"level"`
	Score     int       `json:"score"`
	Correct   int       `json:"correct"`
	Incorrect int       `json:"incorrect"`
	Total     int       `json:"total"`
	Accuracy  int       `json:"accuracy"`
	PlayTime  int       `json:"playTime"`
	CreatedAt time.Time `json:"createdAt"`
}

// Leaderboard ranks results by score desc, then createdAt asc, then id.
// The input slice is not modified.
func Leaderboard(results []models.GameResult, limit int) []LeaderboardEntry {
	if limit <= 0 || limit > LeaderboardSize {
		limit = LeaderboardSize
	}
	sorted := make([]models.GameResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]LeaderboardEntry, 0, len(sorted))
	for i, r := range sorted {
		entry := LeaderboardEntry{
			Rank:      i + 1,
			Anonymous: r.UserID == nil,
			Level:     r.Level,
			Score:     r.Score,
			Correct:   r.Correct,
			Incorrect: r.Incorrect,
			Total:     r.Total,
			Accuracy:  models.Accuracy(r.Correct, r.Total),
			PlayTime:  r.PlayTime,
			CreatedAt: r.CreatedAt,
		}
		if r.User != nil {
			entry.Username = r.User.Username
		}
		entries = append(entries, entry)
	}
	return entries
}

type CorrectIncorrect struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Total     int `json:"total"`
	Accuracy  int `json:"accuracy"`
}

type LevelStats struct {
	Level         int     `json:"level"`
	GamesPlayed   int     `json:"gamesPlayed"`
	AvgScore      float64 `json:"avgScore"`
	MaxScore      int     `json:"maxScore"`
	TotalPlayTime int     `json:"totalPlayTime"`
	AvgPlayTime   int     `json:"avgPlayTime"`
}

type UserStats struct {
	TotalGames       int              `json:"totalGames"`
	TotalScore       int              `json:"totalScore"`
	CorrectIncorrect CorrectIncorrect `json:"correctIncorrect"`
	LevelStats       []LevelStats     `json:"levelStats"`
}

// Empty is the zeroed stats object served when there is nothing to reduce.
func Empty() UserStats {
	return UserStats{LevelStats: []LevelStats{}}
}

// Summarize reduces one user's results. Records without a level count as
// level 1.
func Summarize(results []models.GameResult) UserStats {
	out := Empty()
	if len(results) == 0 {
		return out
	}

	type acc struct {
		games, score, max, playTime int
	}
	byLevel := make(map[int]*acc)

	for _, r := range results {
		out.TotalGames++
		out.TotalScore += r.Score
		out.CorrectIncorrect.Correct += r.Correct
		out.CorrectIncorrect.Incorrect += r.Incorrect
		out.CorrectIncorrect.Total += r.Total

		level := r.Level
		if level == 0 {
			level = 1
		}
		a, ok := byLevel[level]
		if !ok {
			a = &acc{}
			byLevel[level] = a
		}
		a.games++
		a.score += r.Score
		a.playTime += r.PlayTime
		if r.Score > a.max {
			a.max = r.Score
		}
	}
	out.CorrectIncorrect.Accuracy = models.Accuracy(out.CorrectIncorrect.Correct, out.CorrectIncorrect.Total)

	for level, a := range byLevel {
		out.LevelStats = append(out.LevelStats, LevelStats{
			Level:         level,
			GamesPlayed:   a.games,
			AvgScore:      float64(a.score) / float64(a.games),
			MaxScore:      a.max,
			TotalPlayTime: a.playTime,
			AvgPlayTime:   int(math.Round(float64(a.playTime) / float64(a.games))),
		})
	}
	sort.Slice(out.LevelStats, func(i, j int) bool {
		return out.LevelStats[i].Level < out.LevelStats[j].Level
	})
	return out
}

type ImprovementArea struct {
	Area string `json:"area"`
	Tip  string `json:"tip"`
}

type Recommendations struct {
	ImprovementAreas []ImprovementArea `json:"improvementAreas"`
	GeneralTips      []string          `json:"generalTips"`
	AverageAccuracy  float64           `json:"averageAccuracy"`
}

var generalTips = []string{
	"Paper and cardboard can always be recycled unless they are soiled with food.",
	"Flatten plastic bottles before throwing them away to save space.",
	"Organic waste can be composted in dedicated containers.",
	"Sort glass bottles of different colours separately.",
}

// Recommend looks at the most recent results (newest first) and suggests what
// to practise. Only the first five are considered.
func Recommend(latest []models.GameResult) Recommendations {
	rec := Recommendations{
		ImprovementAreas: []ImprovementArea{},
		GeneralTips:      append([]string(nil), generalTips...),
	}
	if len(latest) > recommendationWindow {
		latest = latest[:recommendationWindow]
	}
	if len(latest) == 0 {
		return rec
	}

	var sum float64
	for _, r := range latest {
		if r.Total > 0 {
			sum += float64(r.Correct) / float64(r.Total) * 100
		}
	}
	rec.AverageAccuracy = sum / float64(len(latest))
	if rec.AverageAccuracy < lowAccuracyThreshold {
		rec.ImprovementAreas = append(rec.ImprovementAreas, ImprovementArea{
			Area: "General sorting knowledge",
			Tip:  "Review the basic waste sorting rules used in your city.",
		})
	}
	return rec
}
