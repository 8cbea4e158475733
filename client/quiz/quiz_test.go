package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Test {
	return Test{
		ID:           1,
		Title:        "Sorting basics",
		PassingScore: 70,
		Questions: []Question{
			{ID: "q1", Text: "Newspaper goes to", Options: []Option{{ID: "a", Text: "Paper"}, {ID: "b", Text: "Glass"}}},
			{ID: "q2", Text: "Recyclable plastics", Options: []Option{{ID: "a2", Text: "PET"}, {ID: "b2", Text: "HDPE"}, {ID: "c2", Text: "Film"}}},
			{ID: "q3", Text: "Eggshell goes to", Options: []Option{{ID: "a3", Text: "Organic"}, {ID: "b3", Text: "Mixed"}}},
		},
	}
}

func TestStartAllocatesSlots(t *testing.T) {
	q := New()
	assert.Equal(t, Intro, q.Phase())
	_, ok := q.Current()
	assert.False(t, ok)

	q = q.Start(sample())
	assert.Equal(t, InProgress, q.Phase())
	assert.Equal(t, 0, q.Index())

	answers := q.Answers()
	require.Len(t, answers, 3)
	for _, a := range answers {
		assert.NotNil(t, a.SelectedOptions)
		assert.Empty(t, a.SelectedOptions)
	}
}

func TestSelectOptionToggles(t *testing.T) {
	q := New().Start(sample())
	q = q.SelectOption("a")
	assert.True(t, q.IsSelected("a"))

	q = q.SelectOption("b").SelectOption("a")
	assert.Equal(t, []string{"b"}, q.Selected())

	before := q
	q = q.SelectOption("a2")
	assert.Equal(t, before.Selected(), q.Selected(), "option of another question is ignored")
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	start := New().Start(sample())
	picked := start.SelectOption("a")
	moved, _ := picked.Next()

	assert.Empty(t, start.Selected())
	assert.Equal(t, 0, picked.Index())
	assert.Equal(t, 1, moved.Index())
	assert.Empty(t, picked.Answers()[0].SelectedOptions)
	assert.Equal(t, []string{"a"}, moved.Answers()[0].SelectedOptions)
}

func TestNavigationRestoresSelections(t *testing.T) {
	q := New().Start(sample())
	q = q.SelectOption("a")
	q, sub := q.Next()
	assert.Nil(t, sub)

	assert.Empty(t, q.Selected(), "unvisited question starts empty")
	q = q.SelectOption("a2").SelectOption("b2")

	q = q.Prev()
	assert.Equal(t, 0, q.Index())
	assert.Equal(t, []string{"a"}, q.Selected())

	q = q.Prev()
	assert.Equal(t, 0, q.Index(), "prev on the first question is a no-op")

	q, _ = q.Next()
	assert.Equal(t, []string{"a2", "b2"}, q.Selected(), "prev committed the second question")
	assert.InDelta(t, 66.67, q.Progress(), 0.01)
}

func TestNextOnLastQuestionSubmits(t *testing.T) {
	q := New().Start(sample())
	q = q.SelectOption("a")
	q, _ = q.Next()
	q, _ = q.Next() // q2 left empty
	q = q.SelectOption("a3")

	q, sub := q.Next()
	assert.Equal(t, Completed, q.Phase())
	assert.Equal(t, []Answer{
		{QuestionID: "q1", SelectedOptions: []string{"a"}},
		{QuestionID: "q2", SelectedOptions: []string{}},
		{QuestionID: "q3", SelectedOptions: []string{"a3"}},
	}, sub)
	assert.Equal(t, 2, q.Answered())
	assert.Equal(t, 100.0, q.Progress())

	again, sub := q.Next()
	assert.Nil(t, sub)
	assert.Equal(t, q, again)
}

func TestCompleteAttachesResult(t *testing.T) {
	q := New().Start(sample())
	_, ok := q.Complete(Result{Score: 50}).Result()
	assert.False(t, ok, "ignored before completion")

	for q.Phase() == InProgress {
		q, _ = q.Next()
	}
	q = q.Complete(Result{CorrectAnswers: 1, TotalQuestions: 3, Score: 33.33})
	r, ok := q.Result()
	require.True(t, ok)
	assert.Equal(t, 1, r.CorrectAnswers)
}

func TestEmptyTestCompletesImmediately(t *testing.T) {
	q := New().Start(Test{Title: "empty"})
	assert.Equal(t, Completed, q.Phase())
	assert.Empty(t, q.Answers())
	assert.Zero(t, q.Progress())
}

func TestRestartDiscardsAttempt(t *testing.T) {
	q := New().Start(sample()).SelectOption("a")
	q, _ = q.Next()
	q = q.Start(sample())
	assert.Equal(t, 0, q.Index())
	assert.Empty(t, q.Answers()[0].SelectedOptions)
}
