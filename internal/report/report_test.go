package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pable/nba-points/internal/features"
	"github.com/pable/nba-points/internal/model"
	"github.com/pable/nba-points/internal/predictor"
)

func TestSeasonRange(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, "—"},
		{[]string{"2020-21"}, "2020-21"},
		{[]string{"2020-21", "2018-19", "2019-20"}, "2018-19 … 2020-21 (3)"},
	}
	for _, tt := range tests {
		if got := seasonRange(tt.in); got != tt.want {
			t.Errorf("seasonRange(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSampleFlag(t *testing.T) {
	for n, want := range map[int]string{0: "VERY_LOW", 19: "VERY_LOW", 20: "LOW", 49: "LOW", 50: "OK"} {
		if got := sampleFlag(n); got != want {
			t.Errorf("sampleFlag(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestPrintPlayerTrend(t *testing.T) {
	table := &model.FeatureTable{
		Columns: []string{features.ColPtsPG, features.ColLastPtsPG},
		Rows: []model.FeatureRow{{
			Identity: model.Identity{Season: "2020-21", Player: "LeBron James", Team: "Los Angeles Lakers",
				GameID: "0022000050", Matchup: "Memphis Grizzlies", Outcome: model.Win},
			Minutes: 31, Points: 26, Values: []float64{25.44, 27.2},
		}},
	}
	var buf bytes.Buffer
	PrintPlayerTrend(&buf, table)
	out := buf.String()
	for _, want := range []string{"0022000050", "Memphis Grizzlies", "25.4", "27.2", "—"} {
		if !strings.Contains(out, want) {
			t.Errorf("trend output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCoefficientsOrdersByMagnitude(t *testing.T) {
	m := &predictor.Model{
		Columns: []string{"A", "B", "C"},
		Used:    []int{0, 2},
		Coeffs:  []float64{0.5, -3.25},
	}
	var buf bytes.Buffer
	PrintCoefficients(&buf, m, 0)
	out := buf.String()
	if strings.Index(out, "-3.250") > strings.Index(out, "+0.500") {
		t.Errorf("expected C before A:\n%s", out)
	}
	if !strings.Contains(out, "2 of 3 features used") {
		t.Errorf("missing usage line:\n%s", out)
	}
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	built := time.Date(2021, 2, 1, 12, 0, 0, 0, time.UTC)
	PrintTableSummaries(&buf, []model.TableSummary{{Phase: model.Playoffs, Seasons: []string{"2020-21"}, Columns: 31, LastNGames: 10, MinutesWindow: 3, Rows: 812, BuiltAt: built}})
	PrintModelSummaries(&buf, []model.ModelSummary{{Phase: model.Playoffs, Features: 31, TrainRows: 600, TestMAE: 5.12, TrainedAt: built}})
	out := buf.String()
	for _, want := range []string{"Playoffs", "10/3", "812", "5.12", "2021-02-01 12:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}
