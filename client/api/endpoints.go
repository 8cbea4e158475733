package api

import (
	"net/url"
	"strconv"
	"time"

	"ecoaware/client/game"
	"ecoaware/client/quiz"

	"github.com/gofiber/fiber/v2"
)

type User struct {
	ID               uint       `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	FullName         string     `json:"fullName"`
	Role             string     `json:"role"`
	RegistrationDate time.Time  `json:"registrationDate"`
	LastLogin        *time.Time `json:"lastLogin"`
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type Status struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	User            *struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	Username  string    `json:"username"`
	Anonymous bool      `json:"anonymous"`
	Level     int       `json:"level"`
	Score     int       `json:"score"`
	Accuracy  int       `json:"accuracy"`
	PlayTime  int       `json:"playTime"`
	CreatedAt time.Time `json:"createdAt"`
}

type LevelStats struct {
	Level         int     `json:"level"`
	GamesPlayed   int     `json:"gamesPlayed"`
	AvgScore      float64 `json:"avgScore"`
	MaxScore      int     `json:"maxScore"`
	TotalPlayTime int     `json:"totalPlayTime"`
	AvgPlayTime   int     `json:"avgPlayTime"`
}

type Stats struct {
	TotalGames       int `json:"totalGames"`
	TotalScore       int `json:"totalScore"`
	CorrectIncorrect struct {
		Correct   int `json:"correct"`
		Incorrect int `json:"incorrect"`
		Total     int `json:"total"`
		Accuracy  int `json:"accuracy"`
	} `json:"correctIncorrect"`
	LevelStats []LevelStats `json:"levelStats"`
}

type Recommendations struct {
	ImprovementAreas []struct {
		Area string `json:"area"`
		Tip  string `json:"tip"`
	} `json:"improvementAreas"`
	GeneralTips     []string `json:"generalTips"`
	AverageAccuracy float64  `json:"averageAccuracy"`
}

type TestSummary struct {
	ID            uint    `json:"id"`
	Category      string  `json:"category"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	EstimatedTime string  `json:"estimatedTime"`
	Difficulty    string  `json:"difficulty"`
	PassingScore  float64 `json:"passingScore"`
	QuestionCount int     `json:"questionCount"`
}

type CompletedTest struct {
	TestID         string    `json:"testId"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Score          float64   `json:"score"`
	CorrectAnswers int       `json:"correctAnswers"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}

type Article struct {
	ID          uint      `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Date        time.Time `json:"date"`
	ReadTime    string    `json:"readTime"`
	Tags        []string  `json:"tags"`
}

func (c *Client) Register(in RegisterRequest) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	err := c.do(fiber.MethodPost, "/api/auth/register", in, &out)
	return out.User, err
}

// Login accepts a username or an email.
func (c *Client) Login(username, password string) (User, error) {
	var out struct {
		User User `json:"user"`
	}
	body := map[string]string{"username": username, "password": password}
	err := c.do(fiber.MethodPost, "/api/auth/login", body, &out)
	return out.User, err
}

// Logout revokes the session on the server. The local token is dropped even
// when the request fails.
func (c *Client) Logout() error {
	err := c.do(fiber.MethodPost, "/api/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) Status() (Status, error) {
	var out Status
	err := c.do(fiber.MethodGet, "/api/auth/status", nil, &out)
	return out, err
}

// SaveResult stores a finished level. It satisfies game.ResultSink; results
// of anonymous players are not sent.
func (c *Client) SaveResult(r game.Result) error {
	if !c.LoggedIn() {
		return nil
	}
	body := map[string]int{
		"level":     r.Level,
		"score":     r.Score,
		"correct":   r.Correct,
		"incorrect": r.Incorrect,
		"total":     r.Total,
		"playTime":  r.PlayTime,
	}
	return c.do(fiber.MethodPost, "/api/games/trash-sorting/results", body, nil)
}

// Leaderboard returns the top results, for one level when level is 1..3.
func (c *Client) Leaderboard(level int) ([]LeaderboardEntry, error) {
	path := "/api/games/trash-sorting/leaderboard"
	if level > 0 {
		path += "?level=" + strconv.Itoa(level)
	}
	var out struct {
		Leaderboard []LeaderboardEntry `json:"leaderboard"`
	}
	err := c.do(fiber.MethodGet, path, nil, &out)
	return out.Leaderboard, err
}

func (c *Client) Stats() (Stats, error) {
	var out struct {
		Stats Stats `json:"stats"`
	}
	err := c.do(fiber.MethodGet, "/api/games/trash-sorting/stats", nil, &out)
	return out.Stats, err
}

func (c *Client) Recommendations() (Recommendations, error) {
	var out struct {
		Recommendations Recommendations `json:"recommendations"`
	}
	err := c.do(fiber.MethodGet, "/api/games/trash-sorting/recommendations", nil, &out)
	return out.Recommendations, err
}

func (c *Client) Tests() ([]TestSummary, error) {
	var out []TestSummary
	err := c.do(fiber.MethodGet, "/api/tests/", nil, &out)
	return out, err
}

func (c *Client) SearchTests(query string) ([]TestSummary, error) {
	var out []TestSummary
	err := c.do(fiber.MethodGet, "/api/tests/search/"+url.PathEscape(query), nil, &out)
	return out, err
}

// StartTest fetches a test without its answer key.
func (c *Client) StartTest(id uint) (quiz.Test, error) {
	var out quiz.Test
	err := c.do(fiber.MethodGet, "/api/tests/"+strconv.FormatUint(uint64(id), 10)+"/start", nil, &out)
	return out, err
}

func (c *Client) CheckTest(id uint, answers []quiz.Answer) (quiz.Result, error) {
	var out quiz.Result
	body := map[string][]quiz.Answer{"answers": answers}
	err := c.do(fiber.MethodPost, "/api/tests/"+strconv.FormatUint(uint64(id), 10)+"/check", body, &out)
	return out, err
}

// TrackCompletion records a graded attempt. duplicate reports that the server
// already had the same result.
func (c *Client) TrackCompletion(t quiz.Test, r quiz.Result) (duplicate bool, err error) {
	body := map[string]interface{}{
		"testId":         strconv.FormatUint(uint64(t.ID), 10),
		"title":          t.Title,
		"category":       t.Category,
		"score":          r.Score,
		"correctAnswers": r.CorrectAnswers,
		"totalQuestions": r.TotalQuestions,
		"timestamp":      time.Now().UTC().Format(time.RFC3339Nano),
	}
	var out struct {
		Duplicate bool `json:"duplicate"`
	}
	err = c.do(fiber.MethodPost, "/api/tests/track-completion", body, &out)
	return out.Duplicate, err
}

func (c *Client) CompletedTests() ([]CompletedTest, error) {
	var out struct {
		Tests []CompletedTest `json:"tests"`
	}
	err := c.do(fiber.MethodGet, "/api/tests/completed", nil, &out)
	return out.Tests, err
}

func (c *Client) Articles() ([]Article, error) {
	var out []Article
	err := c.do(fiber.MethodGet, "/api/articles/", nil, &out)
	return out, err
}

// TrackView records that the player opened a and returns the view count.
func (c *Client) TrackView(a Article) (int, error) {
	body := map[string]string{
		"articleId": strconv.FormatUint(uint64(a.ID), 10),
		"title":     a.Title,
		"category":  a.Category,
	}
	var out struct {
		ViewCount int `json:"viewCount"`
	}
	err := c.do(fiber.MethodPost, "/api/articles/track-view", body, &out)
	return out.ViewCount, err
}
