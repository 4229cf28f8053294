package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/nba-points/internal/features"
	"github.com/pable/nba-points/internal/model"
	"github.com/pable/nba-points/internal/report"
	"github.com/pable/nba-points/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
	cResult   = color.New(color.FgGreen, color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(cmd *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("nbapts shell")
	cMuted.Printf("live season %s · type 'help' or 'exit'\n", cfg.CurrentSeason)
	fmt.Println()

	in := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("nbapts")
		cMuted.Print("> ")
		if !in.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}

		word, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch word {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db)
		case "show":
			phase, player := splitPhasePrefix(rest)
			if player == "" {
				cError.Fprintln(os.Stderr, "usage: show [rs|po] <player name>")
				continue
			}
			shellShow(db, phase, player)
		case "predict":
			shellPredict(cmd, db, in)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", word)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list stored feature tables and models"},
		{"show <player name>", "a player's regular-season feature rows"},
		{"show po <player name>", "same, for the playoffs"},
		{"predict", "prompt for a matchup and predict points"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-24s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

// splitPhasePrefix reads an optional leading "rs" or "po" token.
func splitPhasePrefix(s string) (model.Phase, string) {
	word, rest, _ := strings.Cut(s, " ")
	switch strings.ToLower(word) {
	case "po", "playoffs":
		return model.Playoffs, strings.TrimSpace(rest)
	case "rs":
		return model.RegularSeason, strings.TrimSpace(rest)
	}
	return model.RegularSeason, s
}

func shellList(db *storage.DB) {
	tables, err := db.ListFeatureTables()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	models, err := db.ListModels()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(tables) == 0 && len(models) == 0 {
		cMuted.Println("Nothing built yet. Run 'nbapts fetch' then 'nbapts build'.")
		return
	}
	cHeader.Println("Feature tables")
	report.PrintTableSummaries(os.Stdout, tables)
	cHeader.Println("Models")
	report.PrintModelSummaries(os.Stdout, models)
}

func shellShow(db *storage.DB, phase model.Phase, player string) {
	t, err := db.GetPlayerFeatureRows(phase, player)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if t == nil || len(t.Rows) == 0 {
		cWarn.Fprintf(os.Stderr, "no %s rows for %q\n", phase, player)
		return
	}
	report.PrintPlayerTrend(os.Stdout, t)
}

func shellPredict(cmd *cobra.Command, db *storage.DB, in *bufio.Scanner) {
	ask := func(label string) (string, bool) {
		cMuted.Printf("  %s: ", label)
		if !in.Scan() {
			return "", false
		}
		return strings.TrimSpace(in.Text()), true
	}

	var q features.Query
	var ok bool
	if q.Player, ok = ask("player"); !ok {
		return
	}
	if q.Team, ok = ask("team"); !ok {
		return
	}
	if q.Opponent, ok = ask("opponent"); !ok {
		return
	}
	phase, ok := ask("phase [Regular Season]")
	if !ok {
		return
	}
	q.Phase = model.RegularSeason
	if phase != "" {
		p, err := model.ParsePhase(phase)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		q.Phase = p
	}
	home, ok := ask("home (y/n)")
	if !ok {
		return
	}
	q.Home = yes(home)
	if q.Phase.HasBackToBack() {
		b2b, ok := ask("second night of a back-to-back (y/N)")
		if !ok {
			return
		}
		v := yes(b2b)
		q.BackToBack = &v
	}

	points, _, err := predictPoints(cmd.Context(), db, cfg.CurrentSeason, q)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	cResult.Printf("%s: %.1f points\n", q.Player, points)
}

func yes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes", "1":
		return true
	}
	return false
}
