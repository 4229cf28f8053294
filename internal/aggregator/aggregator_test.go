package aggregator

import (
	"math"
	"testing"
	"time"
)

// obs is a minimal game row for aggregator tests.
type obs struct {
	key string
	opp string
	day int // days since 2021-01-01
	won bool
	pts float64
}

var epoch = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

func keyOf(o obs) string { return o.key }
func oppOf(o obs) string { return o.opp }
func dateOf(o obs) time.Time { return epoch.AddDate(0, 0, o.day) }
func ptsOf(o obs) float64 { return o.pts }
func wonOf(o obs) bool { return o.won }

const eps = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// The worked example: days 1(W,10), 3(W,20), 4(L,5).
func exampleLog() []obs {
	return []obs{
		{key: "A", day: 1, won: true, pts: 10},
		{key: "A", day: 3, won: true, pts: 20},
		{key: "A", day: 4, won: false, pts: 5},
	}
}

func TestWorkedExample(t *testing.T) {
	log := exampleLog()
	ix := NewIndex(log, keyOf, dateOf)

	mean := ix.Mean(keyOf, ptsOf, Unbounded)
	if !approx(mean[2], 15) {
		t.Errorf("day-4 unbounded mean: got %v, want 15", mean[2])
	}
	wp := ix.WinPct(keyOf, wonOf, Unbounded)
	if !approx(wp[2], 1.0) {
		t.Errorf("day-4 win pct: got %v, want 1.0", wp[2])
	}
	b2b := ix.BackToBack(keyOf)
	if b2b[2] != 1 {
		t.Errorf("day-4 back-to-back: got %d, want 1", b2b[2])
	}
	if b2b[1] != 0 {
		t.Errorf("day-3 back-to-back (gap of 2): got %d, want 0", b2b[1])
	}
}

func TestColdStart(t *testing.T) {
	log := exampleLog()
	ix := NewIndex(log, keyOf, dateOf)

	mean := ix.Mean(keyOf, ptsOf, Unbounded)
	if mean[0] != 10 {
		t.Errorf("first row mean should fall back to own value 10, got %v", mean[0])
	}
	last := ix.Mean(keyOf, ptsOf, LastN(5))
	if last[0] != 10 {
		t.Errorf("first row last-5 mean should fall back to own value 10, got %v", last[0])
	}
	wp := ix.WinPct(keyOf, wonOf, Unbounded)
	if wp[0] != NeutralWinPct {
		t.Errorf("first row win pct: got %v, want %v", wp[0], NeutralWinPct)
	}
	if b := ix.BackToBack(keyOf); b[0] != 0 {
		t.Errorf("first row back-to-back: got %d, want 0", b[0])
	}
}

func TestLastNUsesMostRecent(t *testing.T) {
	// Five prior rows, shuffled in log order; the target is on day 10.
	log := []obs{
		{key: "A", day: 5, pts: 50},
		{key: "A", day: 1, pts: 10},
		{key: "A", day: 4, pts: 40},
		{key: "A", day: 2, pts: 20},
		{key: "A", day: 3, pts: 30},
		{key: "A", day: 10, pts: 999},
	}
	got := Mean(log, keyOf, dateOf, ptsOf, LastN(3))
	if !approx(got[5], 40) { // mean(30, 40, 50)
		t.Errorf("last-3 mean: got %v, want 40", got[5])
	}
	all := Mean(log, keyOf, dateOf, ptsOf, Unbounded)
	if !approx(all[5], 30) {
		t.Errorf("unbounded mean: got %v, want 30", all[5])
	}
}

func TestSameDateRowsAreNotPrior(t *testing.T) {
	log := []obs{
		{key: "A", day: 1, pts: 10, won: true},
		{key: "A", day: 2, pts: 20, won: false},
		{key: "A", day: 2, pts: 30, won: false},
	}
	mean := Mean(log, keyOf, dateOf, ptsOf, Unbounded)
	if mean[1] != 10 || mean[2] != 10 {
		t.Errorf("same-date rows must only see day 1: got %v, %v", mean[1], mean[2])
	}
	b2b := BackToBack(log, keyOf, dateOf)
	if b2b[1] != 1 || b2b[2] != 1 {
		t.Errorf("both day-2 rows follow day 1: got %v", b2b)
	}
}

func TestBackToBackGaps(t *testing.T) {
	tests := []struct {
		name string
		gap  int
		want int
	}{
		{"consecutive days", 1, 1},
		{"same day", 0, 0},
		{"one rest day", 2, 0},
		{"long rest", 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := []obs{
				{key: "A", day: 0},
				{key: "A", day: 10},
				{key: "A", day: 10 + tt.gap},
			}
			got := BackToBack(log, keyOf, dateOf)
			if got[2] != tt.want {
				t.Errorf("gap %d: got %d, want %d", tt.gap, got[2], tt.want)
			}
		})
	}
}

func TestWinPctBoundsAndPerfectRecord(t *testing.T) {
	log := []obs{
		{key: "A", day: 1, won: true},
		{key: "A", day: 2, won: true},
		{key: "A", day: 3, won: true},
		{key: "A", day: 4, won: false},
		{key: "A", day: 5, won: false},
		{key: "A", day: 6, won: true},
	}
	ix := NewIndex(log, keyOf, dateOf)
	for _, w := range []Window{Unbounded, LastN(2), LastN(5)} {
		for i, v := range ix.WinPct(keyOf, wonOf, w) {
			if v < 0 || v > 1 {
				t.Errorf("window %+v row %d: win pct %v out of [0,1]", w, i, v)
			}
		}
	}
	wp := ix.WinPct(keyOf, wonOf, Unbounded)
	if wp[3] != 1.0 {
		t.Errorf("3 wins out of 3: got %v, want 1.0", wp[3])
	}
	last2 := ix.WinPct(keyOf, wonOf, LastN(2))
	if last2[5] != 0 {
		t.Errorf("last-2 before day 6 are both losses: got %v", last2[5])
	}
}

func TestOpponentLookup(t *testing.T) {
	// Team B's own history is what A faces on day 5.
	log := []obs{
		{key: "B", opp: "C", day: 1, won: true, pts: 100},
		{key: "B", opp: "C", day: 2, won: false, pts: 110},
		{key: "A", opp: "B", day: 5, won: false, pts: 90},
		{key: "B", opp: "A", day: 5, won: true, pts: 120},
		{key: "D", opp: "E", day: 5, won: true, pts: 95},
	}
	ix := NewIndex(log, keyOf, dateOf)

	mean := ix.Mean(oppOf, ptsOf, Unbounded)
	if !approx(mean[2], 105) {
		t.Errorf("opponent mean for A: got %v, want 105", mean[2])
	}
	wp := ix.WinPct(oppOf, wonOf, Unbounded)
	if !approx(wp[2], 0.5) {
		t.Errorf("opponent win pct for A: got %v, want 0.5", wp[2])
	}
	// E never appears as an entity: cold start.
	if mean[4] != 95 {
		t.Errorf("unknown opponent should fall back to own value, got %v", mean[4])
	}
	if wp[4] != NeutralWinPct {
		t.Errorf("unknown opponent win pct: got %v", wp[4])
	}
}

// Rows dated on or after r must never influence r's features.
func TestFutureRowsDoNotLeak(t *testing.T) {
	base := []obs{
		{key: "A", day: 1, won: true, pts: 12},
		{key: "A", day: 2, won: false, pts: 8},
		{key: "A", day: 4, won: true, pts: 30},
		{key: "A", day: 6, won: true, pts: 22},
	}
	target := 2 // day 4

	compute := func(log []obs) (float64, float64, float64, int) {
		ix := NewIndex(log, keyOf, dateOf)
		return ix.Mean(keyOf, ptsOf, Unbounded)[target],
			ix.Mean(keyOf, ptsOf, LastN(1))[target],
			ix.WinPct(keyOf, wonOf, Unbounded)[target],
			ix.BackToBack(keyOf)[target]
	}
	m0, l0, w0, b0 := compute(base)

	mutated := append([]obs(nil), base...)
	mutated[3].pts = 1000
	mutated[3].won = false
	mutated = append(mutated, obs{key: "A", day: 4, won: false, pts: 500})
	mutated = append(mutated, obs{key: "A", day: 9, won: false, pts: 700})

	m1, l1, w1, b1 := compute(mutated)
	if m0 != m1 || l0 != l1 || w0 != w1 || b0 != b1 {
		t.Errorf("future rows leaked: before=(%v %v %v %d) after=(%v %v %v %d)",
			m0, l0, w0, b0, m1, l1, w1, b1)
	}
}

func TestGroupsAreIndependent(t *testing.T) {
	log := []obs{
		{key: "A", day: 1, pts: 10},
		{key: "B", day: 2, pts: 99},
		{key: "A", day: 3, pts: 20},
	}
	got := Mean(log, keyOf, dateOf, ptsOf, Unbounded)
	if got[2] != 10 {
		t.Errorf("A's day-3 mean must ignore B: got %v", got[2])
	}
	if got[1] != 99 {
		t.Errorf("B's first row must fall back to own value: got %v", got[1])
	}
}
