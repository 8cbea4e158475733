package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestCatalog(t *testing.T) {
	items := Catalog()
	require.Len(t, items, 15)

	ids := make(map[int]bool)
	perCategory := make(map[Category]int)
	for _, it := range items {
		assert.False(t, ids[it.ID], "duplicate id %d", it.ID)
		ids[it.ID] = true
		assert.True(t, it.Category.Valid(), it.Name)
		perCategory[it.Category]++
	}
	assert.Len(t, perCategory, len(Categories))

	items[0].Name = "changed"
	assert.NotEqual(t, "changed", Catalog()[0].Name)
}

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, LevelConfig{ItemCount: 4, TimeLimit: 60}, r.Level(1))
	assert.Equal(t, LevelConfig{ItemCount: 4, TimeLimit: 50}, r.Level(2))
	assert.Equal(t, LevelConfig{ItemCount: 4, TimeLimit: 40}, r.Level(3))
	assert.Equal(t, r.Level(3), r.Level(9))
	assert.Equal(t, r.Level(1), r.Level(0))
	assert.Zero(t, r.IncorrectPenalty)
}

func TestStartDealsUniqueItems(t *testing.T) {
	s := Start(DefaultRules(), Catalog(), 2, seeded())
	assert.Equal(t, Playing, s.Phase)
	assert.Equal(t, 2, s.Level)
	assert.Equal(t, 50, s.TimeLeft)
	require.Len(t, s.Items, 4)
	assert.Len(t, s.pool, 11)

	seen := make(map[int]bool)
	for _, it := range append(append([]Item(nil), s.Items...), s.pool...) {
		assert.False(t, seen[it.ID])
		seen[it.ID] = true
	}
}

func TestClassifyScoresAndReplaces(t *testing.T) {
	rules := DefaultRules()
	s := Start(rules, Catalog(), 1, seeded())
	first := s.Items[0]
	onScreen := itemIDs(s.Items)

	next, out := s.Classify(rules, first.ID, first.Category)
	assert.Equal(t, Outcome{Handled: true, Correct: true}, out)
	assert.Equal(t, 10, next.Score)
	assert.Equal(t, 1, next.Correct)
	assert.Equal(t, 1, next.Total)
	require.Len(t, next.Items, 4)
	assert.NotContains(t, itemIDs(next.Items), first.ID)
	assert.NotContains(t, onScreen, next.Items[3].ID, "replacement was never on screen")

	// the receiver is untouched
	assert.Zero(t, s.Score)
	assert.Equal(t, onScreen, itemIDs(s.Items))
}

func TestClassifyWrongBin(t *testing.T) {
	s := Start(DefaultRules(), Catalog(), 3, seeded())
	it := s.Items[0]

	next, out := s.Classify(DefaultRules(), it.ID, wrongBin(it))
	assert.True(t, out.Handled)
	assert.False(t, out.Correct)
	assert.Equal(t, 0, next.Score)
	assert.Equal(t, 1, next.Incorrect)

	penalised := DefaultRules()
	penalised.IncorrectPenalty = 5
	s.Score = 20
	next, _ = s.Classify(penalised, it.ID, wrongBin(it))
	assert.Equal(t, 5, next.Score)

	s.Score = 3
	next, _ = s.Classify(penalised, it.ID, wrongBin(it))
	assert.Equal(t, 0, next.Score, "score is floored at zero")
}

func TestClassifyIgnoresUnknownItemsAndEndedLevels(t *testing.T) {
	s := Start(DefaultRules(), Catalog(), 1, seeded())
	next, out := s.Classify(DefaultRules(), 999, Paper)
	assert.False(t, out.Handled)
	assert.Equal(t, s, next)

	ended := s.Expire()
	it := s.Items[0]
	next, out = ended.Classify(DefaultRules(), it.ID, it.Category)
	assert.False(t, out.Handled)
	assert.Equal(t, 0, next.Total)
}

// Example from the design: level 1, three right and two wrong.
func TestLevelOneExample(t *testing.T) {
	rules := DefaultRules()
	s := Start(rules, Catalog(), 1, seeded())
	for i := 0; i < 5; i++ {
		it := s.Items[0]
		target := it.Category
		if i >= 3 {
			target = wrongBin(it)
		}
		s, _ = s.Classify(rules, it.ID, target)
		assert.Equal(t, s.Correct+s.Incorrect, s.Total)
	}
	s = s.Tick(42).Expire()

	r := s.Result()
	assert.Equal(t, Result{Level: 1, Score: 30, Correct: 3, Incorrect: 2, Total: 5, Accuracy: 60, PlayTime: 60}, r)
}

func TestWorkingSetDrainsToEnd(t *testing.T) {
	rules := DefaultRules()
	s := Start(rules, Catalog(), 1, seeded())
	var out Outcome
	for i := 0; i < 15; i++ {
		require.Equal(t, Playing, s.Phase)
		it := s.Items[0]
		s, out = s.Classify(rules, it.ID, it.Category)
		if i < 11 {
			assert.Len(t, s.Items, 4)
		}
	}
	assert.True(t, out.Ended)
	assert.Equal(t, Ended, s.Phase)
	assert.Equal(t, 15, s.Correct)
	assert.Equal(t, 150, s.Score)
}

func TestTickAndResultPlayTime(t *testing.T) {
	s := Start(DefaultRules(), Catalog(), 2, seeded())
	s = s.Tick(35)
	assert.Equal(t, 35, s.TimeLeft)
	assert.Equal(t, 15, s.Result().PlayTime)

	s = s.Expire()
	assert.Equal(t, Ended, s.Phase)
	assert.Equal(t, 50, s.Result().PlayTime)
	assert.Equal(t, 0, s.Tick(10).TimeLeft, "ticks after the end are ignored")
}

func TestNextLevelAndRetry(t *testing.T) {
	rules := DefaultRules()
	s := Start(rules, Catalog(), 2, seeded())

	_, ok := s.NextLevel(rules, Catalog(), seeded())
	assert.False(t, ok, "only from an ended level")

	s = s.Expire()
	next, ok := s.NextLevel(rules, Catalog(), seeded())
	require.True(t, ok)
	assert.Equal(t, 3, next.Level)
	assert.Equal(t, 40, next.TimeLeft)
	assert.Zero(t, next.Score)

	capped, ok := next.Expire().NextLevel(rules, Catalog(), seeded())
	require.True(t, ok)
	assert.Equal(t, 3, capped.Level)

	again, ok := s.Retry(rules, Catalog(), seeded())
	require.True(t, ok)
	assert.Equal(t, 2, again.Level)
	assert.Equal(t, Playing, again.Phase)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0, Accuracy(0, 0))
	assert.Equal(t, 67, Accuracy(2, 3))
	assert.Equal(t, 100, Accuracy(4, 4))
}

func TestStartWithEmptyCatalog(t *testing.T) {
	s := Start(DefaultRules(), nil, 1, seeded())
	assert.Equal(t, Ended, s.Phase)
}

func itemIDs(items []Item) []int {
	ids := make([]int, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func wrongBin(it Item) Category {
	if it.Category == Mixed {
		return Paper
	}
	return Mixed
}
