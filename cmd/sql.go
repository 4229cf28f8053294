package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the database",
	Long: `Run an arbitrary SQL query against the database and print results as a table.

Schema overview:
  player_games(season, phase, game_id, player_id, player_name, team_name,
    game_date, opponent, home, minutes, outcome, points)
  team_games(season, phase, game_id, team_id, team_name, game_date, opponent,
    off_rating, def_rating, pace, outcome)
  player_shooting(season, phase, player_name, team_id, b0..b8)
  team_opp_shooting(season, phase, team_name, team_id, b0..b8)
  feature_tables(phase, seasons, columns, built_at)
  feature_rows(phase, season, game_id, player_name, team_name, matchup, outcome,
    points, minutes, features)
  models(phase, features, train_rows, test_mae, trained_at, body)

Shot bucket columns b0..b8 run from "Less Than 5ft." to "40+ ft.".
phase is stored as "Regular Season" or "Playoffs".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}

