package activity

import (
	"context"
	"testing"
	"time"

	"ecoaware/backend/models"
	"ecoaware/backend/utils"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTracker(t *testing.T) (*Tracker, *fakeClock) {
	t.Helper()
	db, err := utils.OpenMemory()
	require.NoError(t, err)
	clock := &fakeClock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	tr := NewTracker(db)
	tr.Now = clock.Now
	return tr, clock
}

func TestTrackArticleViewIsIdempotentPerUser(t *testing.T) {
	tr, clock := newTracker(t)
	ctx := context.Background()
	view := ArticleView{ArticleID: "a1", Title: "Composting at home"}

	first, err := tr.TrackArticleView(ctx, 7, view)
	require.NoError(t, err)
	assert.Equal(t, 1, first.ViewCount)
	assert.Equal(t, models.DefaultCategory, first.Category)

	clock.Advance(time.Hour)
	second, err := tr.TrackArticleView(ctx, 7, view)
	require.NoError(t, err)
	assert.Equal(t, 2, second.ViewCount)
	assert.True(t, second.LastViewedAt.Equal(clock.now))
	assert.True(t, second.FirstViewedAt.Equal(first.FirstViewedAt))

	var count int64
	require.NoError(t, tr.DB.Model(&models.ViewedArticle{}).Where("user_id = ?", 7).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// another user viewing the same article gets their own row
	other, err := tr.TrackArticleView(ctx, 8, view)
	require.NoError(t, err)
	assert.Equal(t, 1, other.ViewCount)
}

func TestTrackArticleViewRequiresFields(t *testing.T) {
	tr, _ := newTracker(t)
	_, err := tr.TrackArticleView(context.Background(), 1, ArticleView{Title: "no id"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = tr.TrackArticleView(context.Background(), 1, ArticleView{ArticleID: "a1"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestViewedArticlesNewestFirst(t *testing.T) {
	tr, clock := newTracker(t)
	ctx := context.Background()
	for _, id := range []string{"a1", "a2", "a3"} {
		_, err := tr.TrackArticleView(ctx, 1, ArticleView{ArticleID: id, Title: id, Category: "Recycling"})
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}
	_, err := tr.TrackArticleView(ctx, 1, ArticleView{ArticleID: "a1", Title: "a1"})
	require.NoError(t, err)

	list, err := tr.ViewedArticles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a1", "a3", "a2"}, []string{list[0].ArticleID, list[1].ArticleID, list[2].ArticleID})
}

func TestTrackTestCompletionDuplicateWindow(t *testing.T) {
	tr, clock := newTracker(t)
	ctx := context.Background()
	in := TestCompletion{TestID: "5", Title: "Sorting basics", Score: 66.66666666666667, CorrectAnswers: 2, TotalQuestions: 3}

	rec, dup, err := tr.TrackTestCompletion(ctx, 3, in)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.Equal(t, models.DefaultCategory, rec.Category)

	clock.Advance(5 * time.Minute)
	_, dup, err = tr.TrackTestCompletion(ctx, 3, in)
	require.NoError(t, err)
	assert.True(t, dup)

	list, err := tr.CompletedTests(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// a different score is a new attempt
	in2 := in
	in2.Score = 100
	_, dup, err = tr.TrackTestCompletion(ctx, 3, in2)
	require.NoError(t, err)
	assert.False(t, dup)

	// outside the window the same score is stored again
	clock.Advance(11 * time.Minute)
	_, dup, err = tr.TrackTestCompletion(ctx, 3, in)
	require.NoError(t, err)
	assert.False(t, dup)

	list, err = tr.CompletedTests(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestTrackTestCompletionTimestamp(t *testing.T) {
	tr, clock := newTracker(t)
	ctx := context.Background()

	past := clock.now.Add(-2 * time.Hour)
	rec, _, err := tr.TrackTestCompletion(ctx, 1, TestCompletion{TestID: "1", Title: "t", Score: 50, Timestamp: past.Format(time.RFC3339)})
	require.NoError(t, err)
	assert.True(t, rec.CompletedAt.Equal(past))

	future := clock.now.Add(time.Hour)
	rec, _, err = tr.TrackTestCompletion(ctx, 1, TestCompletion{TestID: "2", Title: "t", Score: 50, Timestamp: future.Format(time.RFC3339)})
	require.NoError(t, err)
	assert.True(t, rec.CompletedAt.Equal(clock.now))

	rec, _, err = tr.TrackTestCompletion(ctx, 1, TestCompletion{TestID: "3", Title: "t", Score: 50, Timestamp: "yesterday"})
	require.NoError(t, err)
	assert.True(t, rec.CompletedAt.Equal(clock.now))
}

func TestTrackTestCompletionStaleTimestampStillDeduplicated(t *testing.T) {
	tr, clock := newTracker(t)
	ctx := context.Background()
	in := TestCompletion{
		TestID:    "7",
		Title:     "Glass or not",
		Score:     80,
		Timestamp: clock.now.Add(-30 * time.Minute).Format(time.RFC3339),
	}

	rec, dup, err := tr.TrackTestCompletion(ctx, 4, in)
	require.NoError(t, err)
	assert.False(t, dup)
	assert.True(t, rec.CreatedAt.Equal(clock.now))

	clock.Advance(5 * time.Second)
	_, dup, err = tr.TrackTestCompletion(ctx, 4, in)
	require.NoError(t, err)
	assert.True(t, dup)

	// a fresh timestamp inside the receipt window is the same submission too
	in.Timestamp = clock.now.Format(time.RFC3339)
	_, dup, err = tr.TrackTestCompletion(ctx, 4, in)
	require.NoError(t, err)
	assert.True(t, dup)

	list, err := tr.CompletedTests(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTrackTestCompletionRejectsBadInput(t *testing.T) {
	tr, _ := newTracker(t)
	_, _, err := tr.TrackTestCompletion(context.Background(), 1, TestCompletion{Title: "t"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, _, err = tr.TrackTestCompletion(context.Background(), 1, TestCompletion{TestID: "1", Title: "t", Score: 140})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
