// Command ecoplay plays the EcoAware sorting game and quizzes from a terminal.
//
//	ecoplay [-server URL] [-user NAME] play [level]
//	ecoplay [-server URL] [-user NAME] quiz [test-id]
//	ecoplay [-server URL] leaderboard [level]
//	ecoplay [-server URL] -user NAME stats
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"ecoaware/client/api"

	"golang.org/x/term"
)

type app struct {
	client *api.Client
	in     *bufio.Scanner
	out    io.Writer
	logger *log.Logger
}

func main() {
	os.Exit(run())
}

// run returns the process exit code.
func run() int {
	server := flag.String("server", envOr("ECOAWARE_SERVER", "http://localhost:5000"), "backend base URL")
	user := flag.String("user", "", "log in as this user before playing")
	timeout := flag.Duration("timeout", api.DefaultTimeout, "request timeout")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] play|quiz|leaderboard|stats [arg]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	a := &app{
		client: api.New(*server, api.WithTimeout(*timeout)),
		in:     bufio.NewScanner(os.Stdin),
		out:    os.Stdout,
		logger: log.New(os.Stderr, "ecoplay: ", 0),
	}

	if *user != "" {
		if err := a.login(*user); err != nil {
			a.logger.Printf("login failed: %v", err)
			return 1
		}
		defer func() {
			if err := a.client.Logout(); err != nil {
				a.logger.Printf("logout: %v", err)
			}
		}()
	}

	cmd, arg := "play", ""
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}
	if flag.NArg() > 1 {
		arg = flag.Arg(1)
	}

	var err error
	switch cmd {
	case "play":
		err = a.play(atoiOr(arg, 1))
	case "quiz":
		err = a.quiz(arg)
	case "leaderboard":
		err = a.leaderboard(atoiOr(arg, 0))
	case "stats":
		err = a.stats()
	default:
		flag.Usage()
		return 2
	}
	if err != nil {
		a.logger.Printf("%s: %v", cmd, err)
		return 1
	}
	return 0
}

func (a *app) login(username string) error {
	password, err := a.readPassword()
	if err != nil {
		return err
	}
	u, err := a.client.Login(username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Username)
	return nil
}

// readPassword reads without echo from a terminal, or one line from a pipe.
func (a *app) readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(a.out, "Password: ")
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(a.out)
		return string(raw), err
	}
	line, ok := a.readLine()
	if !ok {
		return "", io.ErrUnexpectedEOF
	}
	return line, nil
}

func (a *app) readLine() (string, bool) {
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

func (a *app) prompt(msg string) (string, bool) {
	fmt.Fprint(a.out, msg)
	return a.readLine()
}

func (a *app) leaderboard(level int) error {
	entries, err := a.client.Leaderboard(level)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No results yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(a.out, "%2d. %-20s L%d %4d pts %3d%% %3ds  %s\n",
			e.Rank, e.Username, e.Level, e.Score, e.Accuracy, e.PlayTime, e.CreatedAt.Local().Format(time.DateOnly))
	}
	return nil
}

func (a *app) stats() error {
	st, err := a.client.Stats()
	if err != nil {
		return err
	}
	ci := st.CorrectIncorrect
	fmt.Fprintf(a.out, "Games: %d  Total score: %d  Accuracy: %d%% (%d/%d)\n",
		st.TotalGames, st.TotalScore, ci.Accuracy, ci.Correct, ci.Total)
	for _, ls := range st.LevelStats {
		fmt.Fprintf(a.out, "  Level %d: %d games, avg %.1f, best %d, avg time %ds\n",
			ls.Level, ls.GamesPlayed, ls.AvgScore, ls.MaxScore, ls.AvgPlayTime)
	}
	if !a.client.LoggedIn() {
		return nil
	}
	rec, err := a.client.Recommendations()
	if err != nil {
		return err
	}
	for _, area := range rec.ImprovementAreas {
		fmt.Fprintf(a.out, "! %s: %s\n", area.Area, area.Tip)
	}
	for _, tip := range rec.GeneralTips {
		fmt.Fprintf(a.out, "- %s\n", tip)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
