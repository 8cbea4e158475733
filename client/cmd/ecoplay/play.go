package main

import (
	"fmt"
	"strconv"
	"strings"

	"ecoaware/client/game"
)

func (a *app) play(level int) error {
	cfg := game.Config{
		OnEnd: func(r game.Result) {
			fmt.Fprintf(a.out, "\nLevel %d over: %d points, %d/%d correct (%d%%) in %ds\n",
				r.Level, r.Score, r.Correct, r.Total, r.Accuracy, r.PlayTime)
		},
		OnError: func(err error) { a.logger.Printf("result not saved: %v", err) },
	}
	if a.client.LoggedIn() {
		cfg.Sink = a.client
	}
	s := game.NewSession(cfg)
	defer s.Close()

	fmt.Fprintln(a.out, "Sort each item: enter '<item#> <bin>', bins:", binList())
	s.Start(level)
	for {
		st := s.State()
		if st.Phase == game.Ended {
			s.Wait()
			choice, ok := a.prompt("[n]ext level, [r]etry, [q]uit: ")
			if !ok {
				return nil
			}
			switch strings.ToLower(choice) {
			case "n":
				s.NextLevel()
			case "r":
				s.RetryLevel()
			case "q":
				return nil
			}
			continue
		}

		render(a, st)
		line, ok := a.prompt("> ")
		if !ok {
			return nil
		}
		if line == "q" {
			return nil
		}
		item, bin, err := parseMove(st, line)
		if err != nil {
			fmt.Fprintln(a.out, err)
			continue
		}
		out := s.Classify(item.ID, bin)
		switch {
		case !out.Handled:
			// the clock ran out while we were waiting for input
		case out.Correct:
			fmt.Fprintf(a.out, "Correct, %s goes to %s\n", item.Name, item.Category)
		default:
			fmt.Fprintf(a.out, "Wrong, %s goes to %s\n", item.Name, item.Category)
		}
	}
}

func render(a *app, st game.State) {
	fmt.Fprintf(a.out, "\nLevel %d  Score %d  Time %ds\n", st.Level, st.Score, st.TimeLeft)
	for i, it := range st.Items {
		fmt.Fprintf(a.out, "  %d) %s\n", i+1, it.Name)
	}
}

// parseMove reads "<position> <bin>"; bins may be given by name or number.
func parseMove(st game.State, line string) (game.Item, game.Category, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return game.Item{}, "", fmt.Errorf("expected '<item#> <bin>'")
	}
	pos, err := strconv.Atoi(fields[0])
	if err != nil || pos < 1 || pos > len(st.Items) {
		return game.Item{}, "", fmt.Errorf("no item %q on screen", fields[0])
	}
	bin := game.Category(strings.ToLower(fields[1]))
	if n, err := strconv.Atoi(fields[1]); err == nil && n >= 1 && n <= len(game.Categories) {
		bin = game.Categories[n-1]
	}
	if !bin.Valid() {
		return game.Item{}, "", fmt.Errorf("unknown bin %q, use one of %s", fields[1], binList())
	}
	return st.Items[pos-1], bin, nil
}

func binList() string {
	names := make([]string, 0, len(game.Categories))
	for i, c := range game.Categories {
		names = append(names, fmt.Sprintf("%d=%s", i+1, c))
	}
	return strings.Join(names, " ")
}
