package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/nba-points/internal/features"
	"github.com/pable/nba-points/internal/model"
	"github.com/pable/nba-points/internal/predictor"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintSeasonCounts prints how many player and team lines are stored per season.
func PrintSeasonCounts(w io.Writer, phase model.Phase, counts map[string][2]int) {
	seasons := make([]string, 0, len(counts))
	for s := range counts {
		seasons = append(seasons, s)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(seasons)))

	fmt.Fprintf(w, "\n%s\n", phase)
	table := newTable(w)
	table.Header("SEASON", "PLAYER_GAMES", "TEAM_GAMES")
	for _, s := range seasons {
		c := counts[s]
		table.Append(s, strconv.Itoa(c[0]), strconv.Itoa(c[1]))
	}
	table.Render()
}

// PrintTableSummaries lists the stored feature tables.
func PrintTableSummaries(w io.Writer, tables []model.TableSummary) {
	table := newTable(w)
	table.Header("PHASE", "SEASONS", "COLUMNS", "WINDOW", "ROWS", "BUILT")
	for _, t := range tables {
		table.Append(
			string(t.Phase),
			seasonRange(t.Seasons),
			strconv.Itoa(t.Columns),
			fmt.Sprintf("%d/%d", t.LastNGames, t.MinutesWindow),
			strconv.Itoa(t.Rows),
			t.BuiltAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// PrintModelSummaries lists the stored models.
func PrintModelSummaries(w io.Writer, models []model.ModelSummary) {
	table := newTable(w)
	table.Header("PHASE", "FEATURES", "TRAIN_ROWS", "TEST_MAE", "TRAINED")
	for _, m := range models {
		table.Append(
			string(m.Phase),
			strconv.Itoa(m.Features),
			strconv.Itoa(m.TrainRows),
			fmt.Sprintf("%.2f", m.TestMAE),
			m.TrainedAt.Format("2006-01-02 15:04"),
		)
	}
	table.Render()
}

// trendColumns are the features shown next to each game in a player trend.
var trendColumns = []string{
	features.ColPtsPG, features.ColLastPtsPG, features.ColLastMinPG,
	features.ColLastWinPct, features.ColOppLastDefRating, features.ColOppLastPacePG,
}

// PrintPlayerTrend prints a player's feature rows in game order with the
// actual points next to the as-of scoring averages.
func PrintPlayerTrend(w io.Writer, t *model.FeatureTable) {
	idx := make([]int, len(trendColumns))
	for i, c := range trendColumns {
		idx[i] = t.ColumnIndex(c)
	}

	table := newTable(w)
	header := []any{"SEASON", "GAME_ID", "TEAM", "MATCHUP", "WL", "MIN", "PTS"}
	for _, c := range trendColumns {
		header = append(header, c)
	}
	table.Header(header...)

	for _, r := range t.Rows {
		row := []any{
			r.Season, r.GameID, r.Team, r.Matchup, r.Outcome.String(),
			fmt.Sprintf("%.0f", r.Minutes), fmt.Sprintf("%.0f", r.Points),
		}
		for _, i := range idx {
			if i < 0 {
				row = append(row, "—")
				continue
			}
			row = append(row, fmt.Sprintf("%.1f", r.Values[i]))
		}
		table.Append(row...)
	}
	table.Render()
}

// PrintMetrics prints held-out error for one phase.
// SAMPLE is OK for 50+ test rows, LOW for 20-49, VERY_LOW below.
func PrintMetrics(w io.Writer, phase model.Phase, m predictor.Metrics) {
	table := newTable(w)
	table.Header("PHASE", "N", "MAE", "RMSE", "MEAN_RESID", "STD_RESID", "MAX_ABS_ERR", "SAMPLE")
	table.Append(
		string(phase),
		strconv.Itoa(m.N),
		fmt.Sprintf("%.2f", m.MAE),
		fmt.Sprintf("%.2f", m.RMSE),
		fmt.Sprintf("%+.2f", m.MeanResidual),
		fmt.Sprintf("%.2f", m.StdResidual),
		fmt.Sprintf("%.1f", m.MaxAbsError),
		sampleFlag(m.N),
	)
	table.Render()
}

// PrintCoefficients prints the model's standardised coefficients, largest
// magnitude first, limited to top entries when top > 0.
func PrintCoefficients(w io.Writer, m *predictor.Model, top int) {
	type coef struct {
		name  string
		value float64
	}
	coefs := make([]coef, len(m.Used))
	for k, j := range m.Used {
		coefs[k] = coef{m.Columns[j], m.Coeffs[k]}
	}
	sort.SliceStable(coefs, func(a, b int) bool { return math.Abs(coefs[a].value) > math.Abs(coefs[b].value) })
	if top > 0 && len(coefs) > top {
		coefs = coefs[:top]
	}

	fmt.Fprintf(w, "intercept %.2f  |  R² %.3f  |  %d of %d features used\n",
		m.Intercept, m.R2, len(m.Used), len(m.Columns))
	table := newTable(w)
	table.Header("FEATURE", "COEF")
	for _, c := range coefs {
		table.Append(c.name, fmt.Sprintf("%+.3f", c.value))
	}
	table.Render()
}

// PrintFeatureVector prints an inference row one column per line.
func PrintFeatureVector(w io.Writer, vec model.FeatureVector) {
	table := newTable(w)
	table.Header("FEATURE", "VALUE")
	for i, c := range vec.Columns {
		table.Append(c, strconv.FormatFloat(vec.Values[i], 'f', 3, 64))
	}
	table.Render()
}

func seasonRange(seasons []string) string {
	switch len(seasons) {
	case 0:
		return "—"
	case 1:
		return seasons[0]
	}
	sorted := append([]string(nil), seasons...)
	sort.Strings(sorted)
	return strings.Join([]string{sorted[0], sorted[len(sorted)-1]}, " … ") + fmt.Sprintf(" (%d)", len(sorted))
}

func sampleFlag(n int) string {
	switch {
	case n >= 50:
		return "OK"
	case n >= 20:
		return "LOW"
	default:
		return "VERY_LOW"
	}
}
