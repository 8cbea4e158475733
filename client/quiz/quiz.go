// Package quiz walks a user through a test one question at a time and
// collects the answers for grading.
//
// Quiz is a value: every transition returns a new Quiz and leaves the
// receiver unchanged.
package quiz

type Phase int

const (
	Intro Phase = iota
	InProgress
	Completed
)

func (p Phase) String() string {
	switch p {
	case Intro:
		return "intro"
	case InProgress:
		return "in progress"
	case Completed:
		return "completed"
	}
	return "unknown"
}

// Option, Question and Test are the sanitized shapes served by
// GET /api/tests/:id/start; they never carry correctness flags.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

type Test struct {
	ID            uint       `json:"id"`
	Title         string     `json:"title"`
	Category      string     `json:"category"`
	Description   string     `json:"description"`
	EstimatedTime string     `json:"estimatedTime"`
	Difficulty    string     `json:"difficulty"`
	PassingScore  float64    `json:"passingScore"`
	Questions     []Question `json:"questions"`
}

type Answer struct {
	QuestionID      string   `json:"questionId"`
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

// Result is the server's grading of a submission.
type Result struct {
	CorrectAnswers int      `json:"correctAnswers"`
	WrongAnswers   int      `json:"wrongAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
	Score          float64  `json:"score"`
	Passed         bool     `json:"passed"`
	Details        []Detail `json:"details"`
}

type Quiz struct {
	phase   Phase
	test    Test
	cursor  int
	answers [][]string
	// selection for the question under the cursor, not yet committed
	selection []string
	result    *Result
}

func New() Quiz {
	return Quiz{}
}

func (q Quiz) Phase() Phase { return q.phase }
func (q Quiz) Test() Test   { return q.test }
func (q Quiz) Index() int   { return q.cursor }
func (q Quiz) Len() int     { return len(q.test.Questions) }

// Start begins t with one empty answer slot per question. It may be called in
// any phase, which discards the previous attempt. A test without questions
// is completed immediately.
func (q Quiz) Start(t Test) Quiz {
	next := Quiz{
		phase:   InProgress,
		test:    t,
		answers: make([][]string, len(t.Questions)),
	}
	if len(t.Questions) == 0 {
		next.phase = Completed
	}
	return next
}

func (q Quiz) Current() (Question, bool) {
	if q.phase != InProgress {
		return Question{}, false
	}
	return q.test.Questions[q.cursor], true
}

// Selected is the in-progress selection for the current question.
func (q Quiz) Selected() []string {
	return append([]string(nil), q.selection...)
}

func (q Quiz) IsSelected(optionID string) bool {
	return indexOf(q.selection, optionID) >= 0
}

// SelectOption toggles optionID in the current selection. Ids that do not
// belong to the current question are ignored.
func (q Quiz) SelectOption(optionID string) Quiz {
	cur, ok := q.Current()
	if !ok || !hasOption(cur, optionID) {
		return q
	}
	sel := make([]string, 0, len(q.selection)+1)
	if i := indexOf(q.selection, optionID); i >= 0 {
		sel = append(sel, q.selection[:i]...)
		sel = append(sel, q.selection[i+1:]...)
	} else {
		sel = append(sel, q.selection...)
		sel = append(sel, optionID)
	}
	q.selection = sel
	return q
}

// Next commits the current selection. On the last question it completes the
// quiz and returns the submission; otherwise it moves forward and restores
// whatever was saved for that question.
func (q Quiz) Next() (Quiz, []Answer) {
	if q.phase != InProgress {
		return q, nil
	}
	q = q.commit()
	if q.cursor == len(q.test.Questions)-1 {
		q.phase = Completed
		q.selection = nil
		return q, q.Answers()
	}
	q.cursor++
	q.selection = append([]string(nil), q.answers[q.cursor]...)
	return q, nil
}

// Prev commits the current selection and moves back. It does nothing on the
// first question.
func (q Quiz) Prev() Quiz {
	if q.phase != InProgress || q.cursor == 0 {
		return q
	}
	q = q.commit()
	q.cursor--
	q.selection = append([]string(nil), q.answers[q.cursor]...)
	return q
}

func (q Quiz) commit() Quiz {
	answers := make([][]string, len(q.answers))
	copy(answers, q.answers)
	answers[q.cursor] = append([]string{}, q.selection...)
	q.answers = answers
	return q
}

// Answers returns one entry per question in test order. Unanswered
// questions carry an empty selection.
func (q Quiz) Answers() []Answer {
	out := make([]Answer, 0, len(q.test.Questions))
	for i, question := range q.test.Questions {
		sel := []string{}
		if i < len(q.answers) {
			sel = append(sel, q.answers[i]...)
		}
		out = append(out, Answer{QuestionID: question.ID, SelectedOptions: sel})
	}
	return out
}

// Answered counts questions with a non-empty committed selection.
func (q Quiz) Answered() int {
	n := 0
	for _, a := range q.answers {
		if len(a) > 0 {
			n++
		}
	}
	return n
}

// Progress is the cursor position as a percentage of the test.
func (q Quiz) Progress() float64 {
	total := len(q.test.Questions)
	switch {
	case total == 0 || q.phase == Intro:
		return 0
	case q.phase == Completed:
		return 100
	}
	return float64(q.cursor+1) / float64(total) * 100
}

// Complete attaches the grading for review. It only applies to a completed quiz.
func (q Quiz) Complete(r Result) Quiz {
	if q.phase != Completed {
		return q
	}
	q.result = &r
	return q
}

func (q Quiz) Result() (Result, bool) {
	if q.result == nil {
		return Result{}, false
	}
	return *q.result, true
}

func hasOption(question Question, id string) bool {
	for _, o := range question.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
