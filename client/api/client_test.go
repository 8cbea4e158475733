package api

import (
	"io"
	"log"
	"net"
	"testing"
	"time"

	"ecoaware/backend/config"
	"ecoaware/backend/models"
	"ecoaware/backend/routes"
	"ecoaware/backend/utils"
	"ecoaware/client/game"
	"ecoaware/client/quiz"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// startServer runs the real backend on a loopback port against an in-memory
// database.
func startServer(t *testing.T) (string, *gorm.DB) {
	t.Helper()
	db, err := utils.OpenMemory()
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:      "testsecret",
		JWTTTL:         time.Hour,
		CookieName:     "token",
		AllowedOrigins: "http://localhost:3000",
	}
	app := routes.NewApp(db, cfg, log.New(io.Discard, "", 0))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String(), db
}

func newPlayer(t *testing.T, baseURL, username string) *Client {
	t.Helper()
	c := New(baseURL, WithTimeout(5*time.Second))
	_, err := c.Register(RegisterRequest{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	require.True(t, c.LoggedIn())
	return c
}

func TestAuthSession(t *testing.T) {
	baseURL, _ := startServer(t)
	c := New(baseURL)

	st, err := c.Status()
	require.NoError(t, err)
	assert.False(t, st.IsAuthenticated)

	_, err = c.Register(RegisterRequest{Username: "al", Email: "bad", Password: "x", ConfirmPassword: "y"})
	require.Error(t, err)
	assert.Equal(t, fiber.StatusBadRequest, StatusOf(err))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Fields, "username")
	assert.Contains(t, apiErr.Fields, "email")

	newPlayer(t, baseURL, "alice")

	other := New(baseURL)
	_, err = other.Login("alice", "wrong")
	assert.Equal(t, fiber.StatusUnauthorized, StatusOf(err))
	assert.False(t, other.LoggedIn())

	user, err := other.Login("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	st, err = other.Status()
	require.NoError(t, err)
	require.True(t, st.IsAuthenticated)
	assert.Equal(t, "alice", st.User.Username)

	token := other.Token()
	require.NoError(t, other.Logout())
	assert.False(t, other.LoggedIn())

	// the old token was revoked server-side
	replay := New(baseURL)
	replay.SetToken(token)
	_, err = replay.Stats()
	require.NoError(t, err, "stats degrade instead of failing")
	_, err = replay.Recommendations()
	assert.Equal(t, fiber.StatusUnauthorized, StatusOf(err))
}

func TestGameResultsThroughSession(t *testing.T) {
	baseURL, _ := startServer(t)
	c := newPlayer(t, baseURL, "bob")

	errs := make(chan error, 4)
	s := game.NewSession(game.Config{
		Catalog:      game.Catalog()[:4],
		Sink:         c,
		TickInterval: time.Hour,
		OnError:      func(err error) { errs <- err },
	})
	s.Start(2)
	for s.State().Phase == game.Playing {
		it := s.State().Items[0]
		s.Classify(it.ID, it.Category)
	}
	s.Close()
	select {
	case err := <-errs:
		t.Fatalf("save failed: %v", err)
	default:
	}

	board, err := c.Leaderboard(2)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "bob", board[0].Username)
	assert.Equal(t, 40, board[0].Score)
	assert.Equal(t, 100, board[0].Accuracy)

	board, err = c.Leaderboard(1)
	require.NoError(t, err)
	assert.Empty(t, board)

	_, err = c.Leaderboard(9)
	assert.Equal(t, fiber.StatusBadRequest, StatusOf(err))

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalGames)
	assert.Equal(t, 4, stats.CorrectIncorrect.Correct)

	rec, err := c.Recommendations()
	require.NoError(t, err)
	assert.Equal(t, 100.0, rec.AverageAccuracy)
	assert.NotEmpty(t, rec.GeneralTips)
}

func TestAnonymousResultsAreNotSent(t *testing.T) {
	baseURL, _ := startServer(t)
	c := New(baseURL)

	require.NoError(t, c.SaveResult(game.Result{Level: 1, Score: 10, Correct: 1, Total: 1}))
	board, err := c.Leaderboard(0)
	require.NoError(t, err)
	assert.Empty(t, board)
}

func TestQuizRoundTrip(t *testing.T) {
	baseURL, db := startServer(t)
	seeded := models.Test{
		Category:      "Recycling",
		Title:         "Sorting basics",
		Description:   "Where things go",
		EstimatedTime: "3 min",
		Questions: []models.TestQuestion{
			{Text: "Newspaper", SequenceOrder: 1, Options: datatypes.JSONSlice[models.QuestionOption]{
				{ID: "A", Text: "Paper", IsCorrect: true},
				{ID: "B", Text: "Glass"},
			}},
			{Text: "Plastics", SequenceOrder: 2, Options: datatypes.JSONSlice[models.QuestionOption]{
				{ID: "A", Text: "Film"},
				{ID: "B", Text: "PET", IsCorrect: true},
				{ID: "C", Text: "HDPE", IsCorrect: true},
			}},
		},
	}
	require.NoError(t, db.Create(&seeded).Error)

	c := newPlayer(t, baseURL, "carol")

	list, err := c.Tests()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].QuestionCount)

	found, err := c.SearchTests("sorting")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	test, err := c.StartTest(list[0].ID)
	require.NoError(t, err)
	require.Len(t, test.Questions, 2)

	q := quiz.New().Start(test)
	q = q.SelectOption("A")
	q, _ = q.Next()
	q = q.SelectOption("B")
	q, answers := q.Next()
	require.Equal(t, quiz.Completed, q.Phase())

	result, err := c.CheckTest(test.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CorrectAnswers)
	assert.Equal(t, 2, result.TotalQuestions)
	assert.Equal(t, 50.0, result.Score)
	assert.False(t, result.Passed)
	require.Len(t, result.Details, 2)
	assert.ElementsMatch(t, []string{"B", "C"}, result.Details[1].CorrectOptions)
	_, reviewed := q.Complete(result).Result()
	assert.True(t, reviewed)

	dup, err := c.TrackCompletion(test, result)
	require.NoError(t, err)
	assert.False(t, dup)
	dup, err = c.TrackCompletion(test, result)
	require.NoError(t, err)
	assert.True(t, dup)

	done, err := c.CompletedTests()
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "Sorting basics", done[0].Title)

	_, err = c.StartTest(999)
	assert.Equal(t, fiber.StatusNotFound, StatusOf(err))
}

func TestArticleViews(t *testing.T) {
	baseURL, db := startServer(t)
	require.NoError(t, db.Create(&models.Article{
		Category:    "Plastic",
		Title:       "Why rinse yoghurt pots",
		Description: "Food residue spoils bales",
		Content:     "...",
		ReadTime:    "2 min",
		Tags:        datatypes.JSONSlice[string]{"plastic"},
	}).Error)

	c := newPlayer(t, baseURL, "dave")
	articles, err := c.Articles()
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, []string{"plastic"}, articles[0].Tags)

	n, err := c.TrackView(articles[0])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = c.TrackView(articles[0])
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestUnreachableServer(t *testing.T) {
	c := New("http://127.0.0.1:1", WithTimeout(time.Second))
	_, err := c.Status()
	require.Error(t, err)
	assert.Zero(t, StatusOf(err))
}
