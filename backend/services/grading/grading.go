// Package grading scores quiz submissions against an answer key.
//
// A question counts as correct only when the set of selected option ids equals
// the set of correct option ids. Order and duplicates in a selection are
// ignored.
package grading

type Option struct {
	ID        string
	Text      string
	IsCorrect bool
}

type Question struct {
	ID          string
	Text        string
	Explanation string
	Options     []Option
}

type Test struct {
	ID           string
	Title        string
	Category     string
	PassingScore float64
	Questions    []Question
}

type Answer struct {
	QuestionID      string   `json:"questionId" validate:"required"`
	SelectedOptions []string `json:"selectedOptions"`
}

type Detail struct {
	QuestionID          string   `json:"questionId"`
	QuestionText        string   `json:"questionText"`
	Correct             bool     `json:"correct"`
	UserSelectedOptions []string `json:"userSelectedOptions"`
	CorrectOptions      []string `json:"correctOptions"`
	Explanation         string   `json:"explanation,omitempty"`
}

type Result struct {
	CorrectAnswers int      `json:"correctAnswers"`
	WrongAnswers   int      `json:"wrongAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
	Score          float64  `json:"score"`
	Passed         bool     `json:"passed"`
	Details        []Detail `json:"details"`
}

// Grade grades every question of t. A question without an answer is graded
// as an empty selection; answers naming unknown questions are dropped. When a
// question is answered more than once the last answer wins.
func Grade(t Test, answers []Answer) Result {
	byQuestion := make(map[string][]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.SelectedOptions
	}

	res := Result{
		TotalQuestions: len(t.Questions),
		Details:        make([]Detail, 0, len(t.Questions)),
	}
	for _, q := range t.Questions {
		selected := dedupe(byQuestion[q.ID])
		correct := correctIDs(q)
		ok := sameSet(selected, correct)
		if ok {
			res.CorrectAnswers++
		} else {
			res.WrongAnswers++
		}
		res.Details = append(res.Details, Detail{
			QuestionID:          q.ID,
			QuestionText:        q.Text,
			Correct:             ok,
			UserSelectedOptions: selected,
			CorrectOptions:      correct,
			Explanation:         q.Explanation,
		})
	}

	res.Score = Score(res.CorrectAnswers, res.TotalQuestions)
	res.Passed = res.TotalQuestions > 0 && res.Score >= t.PassingScore
	return res
}

// Score is the percentage of correct answers, 0 for an empty test.
func Score(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

func correctIDs(q Question) []string {
	ids := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// sameSet expects both slices to be free of duplicates.
func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	for _, id := range a {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
