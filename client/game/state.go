// Package game implements the trash-sorting game: a pure level state with
// transition functions, and a Session that couples it to the countdown clock.
package game

import (
	"math"
	"math/rand"
)

const (
	MinLevel = 1
	MaxLevel = 3

	PointsPerCorrect = 10
)

type LevelConfig struct {
	ItemCount int
	TimeLimit int // seconds
}

type Rules struct {
	Levels [MaxLevel]LevelConfig
	// IncorrectPenalty is subtracted per level on a wrong bin, floored at 0.
	IncorrectPenalty int
}

// DefaultRules keeps four items on screen at every level and scales difficulty
// through time only. Wrong answers cost nothing.
func DefaultRules() Rules {
	return Rules{
		Levels: [MaxLevel]LevelConfig{
			{ItemCount: 4, TimeLimit: 60},
			{ItemCount: 4, TimeLimit: 50},
			{ItemCount: 4, TimeLimit: 40},
		},
	}
}

func ClampLevel(level int) int {
	switch {
	case level < MinLevel:
		return MinLevel
	case level > MaxLevel:
		return MaxLevel
	}
	return level
}

func (r Rules) Level(level int) LevelConfig {
	return r.Levels[ClampLevel(level)-1]
}

type Phase int

const (
	NotStarted Phase = iota
	Playing
	Ended
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not started"
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// State is one level of play. Transitions return a new State and never
// modify the slices of the receiver, so a State can be shared freely.
type State struct {
	Phase     Phase
	Level     int
	Score     int
	TimeLeft  int
	TimeLimit int
	Items     []Item // on screen
	Correct   int
	Incorrect int
	Total     int

	target int
	// unseen items in draw order; an item leaves it once and never returns
	pool []Item
}

type Result struct {
	Level     int `json:"level"`
	Score     int `json:"score"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Total     int `json:"total"`
	Accuracy  int `json:"accuracy"`
	PlayTime  int `json:"playTime"`
}

// Accuracy is round(correct/total*100), or 0 before anything was classified.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Start deals a fresh level: the catalog is shuffled with rng and the first
// ItemCount items go on screen.
func Start(rules Rules, items []Item, level int, rng *rand.Rand) State {
	level = ClampLevel(level)
	cfg := rules.Level(level)

	deck := append([]Item(nil), items...)
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	n := cfg.ItemCount
	if n > len(deck) {
		n = len(deck)
	}
	s := State{
		Phase:     Playing,
		Level:     level,
		TimeLeft:  cfg.TimeLimit,
		TimeLimit: cfg.TimeLimit,
		Items:     deck[:n:n],
		target:    cfg.ItemCount,
		pool:      deck[n:],
	}
	if len(s.Items) == 0 {
		s.Phase = Ended
	}
	return s
}

type Outcome struct {
	// Handled is false when the call was ignored (wrong phase, unknown item).
	Handled bool
	Correct bool
	Ended   bool
}

// Classify drops itemID into the target bin.
func (s State) Classify(rules Rules, itemID int, target Category) (State, Outcome) {
	if s.Phase != Playing {
		return s, Outcome{}
	}
	idx := -1
	for i, it := range s.Items {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, Outcome{}
	}

	next := s
	item := s.Items[idx]
	out := Outcome{Handled: true, Correct: item.Category == target}

	next.Total++
	if out.Correct {
		next.Correct++
		next.Score += PointsPerCorrect * s.Level
	} else {
		next.Incorrect++
		next.Score -= rules.IncorrectPenalty * s.Level
		if next.Score < 0 {
			next.Score = 0
		}
	}

	items := make([]Item, 0, len(s.Items))
	items = append(items, s.Items[:idx]...)
	items = append(items, s.Items[idx+1:]...)
	if len(items) < s.target && len(s.pool) > 0 {
		items = append(items, s.pool[0])
		next.pool = s.pool[1:]
	}
	next.Items = items

	if len(next.Items) == 0 {
		next.Phase = Ended
		out.Ended = true
	}
	return next, out
}

// Tick records the clock's remaining seconds.
func (s State) Tick(remaining int) State {
	if s.Phase != Playing {
		return s
	}
	if remaining < 0 {
		remaining = 0
	}
	s.TimeLeft = remaining
	return s
}

// Expire ends the level because time ran out.
func (s State) Expire() State {
	if s.Phase != Playing {
		return s
	}
	s.TimeLeft = 0
	s.Phase = Ended
	return s
}

func (s State) Result() Result {
	playTime := s.TimeLimit - s.TimeLeft
	if playTime < 0 {
		playTime = 0
	}
	return Result{
		Level:     s.Level,
		Score:     s.Score,
		Correct:   s.Correct,
		Incorrect: s.Incorrect,
		Total:     s.Total,
		Accuracy:  Accuracy(s.Correct, s.Total),
		PlayTime:  playTime,
	}
}

// NextLevel deals the following level (capped at MaxLevel). Only valid once
// the current level has ended.
func (s State) NextLevel(rules Rules, items []Item, rng *rand.Rand) (State, bool) {
	if s.Phase != Ended {
		return s, false
	}
	return Start(rules, items, s.Level+1, rng), true
}

// Retry deals the same level again.
func (s State) Retry(rules Rules, items []Item, rng *rand.Rand) (State, bool) {
	if s.Phase != Ended {
		return s, false
	}
	return Start(rules, items, s.Level, rng), true
}
