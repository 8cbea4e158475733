package main

import (
	"fmt"
	"strconv"
	"strings"

	"ecoaware/client/quiz"
)

func (a *app) quiz(arg string) error {
	id, err := a.pickTest(arg)
	if err != nil || id == 0 {
		return err
	}
	test, err := a.client.StartTest(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\n%s (%d questions, pass at %.0f%%)\n", test.Title, len(test.Questions), test.PassingScore)
	fmt.Fprintln(a.out, "Toggle options by letter, 'n' next, 'p' previous, 'q' quit.")

	q := quiz.New().Start(test)
	var answers []quiz.Answer
	for q.Phase() == quiz.InProgress {
		cur, _ := q.Current()
		fmt.Fprintf(a.out, "\n[%d/%d] %s\n", q.Index()+1, q.Len(), cur.Text)
		for i, o := range cur.Options {
			mark := " "
			if q.IsSelected(o.ID) {
				mark = "x"
			}
			fmt.Fprintf(a.out, "  [%s] %c) %s\n", mark, 'a'+i, o.Text)
		}

		line, ok := a.prompt("> ")
		if !ok || line == "q" {
			return nil
		}
		switch line {
		case "n", "":
			q, answers = q.Next()
		case "p":
			q = q.Prev()
		default:
			for _, r := range strings.ToLower(line) {
				if i := int(r - 'a'); i >= 0 && i < len(cur.Options) {
					q = q.SelectOption(cur.Options[i].ID)
				}
			}
		}
	}

	result, err := a.client.CheckTest(test.ID, answers)
	if err != nil {
		return err
	}
	q = q.Complete(result)
	a.review(q)

	if a.client.LoggedIn() {
		if _, err := a.client.TrackCompletion(test, result); err != nil {
			a.logger.Printf("completion not recorded: %v", err)
		}
	}
	return nil
}

func (a *app) pickTest(arg string) (uint, error) {
	if id, err := strconv.ParseUint(arg, 10, 64); err == nil {
		return uint(id), nil
	}
	tests, err := a.client.Tests()
	if arg != "" {
		tests, err = a.client.SearchTests(arg)
	}
	if err != nil {
		return 0, err
	}
	if len(tests) == 0 {
		fmt.Fprintln(a.out, "No tests found.")
		return 0, nil
	}
	for _, t := range tests {
		fmt.Fprintf(a.out, "%4d  %-40s %-12s %2d questions\n", t.ID, t.Title, t.Category, t.QuestionCount)
	}
	line, ok := a.prompt("Test id: ")
	if !ok {
		return 0, nil
	}
	id, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid test id %q", line)
	}
	return uint(id), nil
}

func (a *app) review(q quiz.Quiz) {
	r, ok := q.Result()
	if !ok {
		return
	}
	verdict := "failed"
	if r.Passed {
		verdict = "passed"
	}
	fmt.Fprintf(a.out, "\nScore %.0f%% (%d/%d), %s\n", r.Score, r.CorrectAnswers, r.TotalQuestions, verdict)

	text := make(map[string]string)
	for _, question := range q.Test().Questions {
		for _, o := range question.Options {
			text[question.ID+"/"+o.ID] = o.Text
		}
	}
	for _, d := range r.Details {
		if d.Correct {
			continue
		}
		names := make([]string, 0, len(d.CorrectOptions))
		for _, id := range d.CorrectOptions {
			names = append(names, text[d.QuestionID+"/"+id])
		}
		fmt.Fprintf(a.out, "x %s: %s\n", d.QuestionText, strings.Join(names, ", "))
		if d.Explanation != "" {
			fmt.Fprintf(a.out, "  %s\n", d.Explanation)
		}
	}
}
