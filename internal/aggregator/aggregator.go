// Package aggregator computes point-in-time ("as-of") aggregates over a
// chronological event log. Every value produced for a row is derived only from
// rows of the same group dated strictly before it.
package aggregator

import (
	"sort"
	"time"

	"github.com/pable/nba-points/internal/model"
)

// NeutralWinPct is the win percentage reported for an entity with no prior games.
const NeutralWinPct = 0.5

// Window selects which strictly-prior rows of a group feed an aggregate.
// The zero value is unbounded (season-to-date).
type Window struct {
	LastN int
}

// Unbounded aggregates over every strictly-prior row of the group.
var Unbounded = Window{}

// LastN aggregates over the n most recent strictly-prior rows of the group.
func LastN(n int) Window {
	return Window{LastN: n}
}

// Index groups a log by entity once so several aggregates can share the
// grouping and the per-group date ordering.
type Index[R any] struct {
	rows   []R
	date   func(R) time.Time
	groups map[string][]int // row positions per key, ordered by date then log order
}

// NewIndex groups rows by key. Rows sharing a date keep their log order.
func NewIndex[R any](rows []R, key func(R) string, date func(R) time.Time) *Index[R] {
	ix := &Index[R]{
		rows:   rows,
		date:   func(r R) time.Time { return model.Day(date(r)) },
		groups: make(map[string][]int),
	}
	for i, r := range rows {
		k := key(r)
		ix.groups[k] = append(ix.groups[k], i)
	}
	for k := range ix.groups {
		pos := ix.groups[k]
		sort.SliceStable(pos, func(a, b int) bool {
			return ix.date(rows[pos[a]]).Before(ix.date(rows[pos[b]]))
		})
	}
	return ix
}

// Len returns the number of rows in the indexed log.
func (ix *Index[R]) Len() int {
	return len(ix.rows)
}

// prior returns the ordered positions of group rows dated strictly before d.
// Same-date rows are excluded, so doubleheaders never see each other.
func (ix *Index[R]) prior(group string, d time.Time) []int {
	pos := ix.groups[group]
	k := sort.Search(len(pos), func(j int) bool {
		return !ix.date(ix.rows[pos[j]]).Before(d)
	})
	return pos[:k]
}

// prefixSums returns, per group, the running sum of value in group order.
// sums[g][k] is the sum of the first k rows of group g.
func (ix *Index[R]) prefixSums(value func(R) float64) map[string][]float64 {
	sums := make(map[string][]float64, len(ix.groups))
	for g, pos := range ix.groups {
		s := make([]float64, len(pos)+1)
		for i, p := range pos {
			s[i+1] = s[i] + value(ix.rows[p])
		}
		sums[g] = s
	}
	return sums
}

// aggregate is the shared as-of pass. lookup picks the group whose history a
// row is compared against; it is the row's own key for self features and the
// opponent's key for opponent features. When the selected history is empty,
// fallback supplies the value.
func (ix *Index[R]) aggregate(lookup func(R) string, value func(R) float64, w Window, fallback func(R) float64) []float64 {
	sums := ix.prefixSums(value)
	out := make([]float64, len(ix.rows))
	for i, r := range ix.rows {
		g := lookup(r)
		prior := ix.prior(g, ix.date(r))
		k := len(prior)
		if k == 0 {
			out[i] = fallback(r)
			continue
		}
		if w.LastN <= 0 || k <= w.LastN {
			out[i] = sums[g][k] / float64(k)
			continue
		}
		var sum float64
		for _, p := range prior[k-w.LastN:] {
			sum += value(ix.rows[p])
		}
		out[i] = sum / float64(w.LastN)
	}
	return out
}

// Mean returns, for every row, the mean of value over the row's as-of window
// in the lookup group. A row with no prior history gets its own value.
func (ix *Index[R]) Mean(lookup func(R) string, value func(R) float64, w Window) []float64 {
	return ix.aggregate(lookup, value, w, value)
}

// WinPct returns, for every row, wins divided by games over the row's as-of
// window in the lookup group. A row with no prior history gets NeutralWinPct.
func (ix *Index[R]) WinPct(lookup func(R) string, won func(R) bool, w Window) []float64 {
	indicator := func(r R) float64 {
		if won(r) {
			return 1
		}
		return 0
	}
	neutral := func(R) float64 { return NeutralWinPct }
	return ix.aggregate(lookup, indicator, w, neutral)
}

// BackToBack flags rows whose group's most recent prior game was exactly one
// calendar day earlier. First appearances and same-day or longer gaps are 0.
func (ix *Index[R]) BackToBack(lookup func(R) string) []int {
	out := make([]int, len(ix.rows))
	for i, r := range ix.rows {
		d := ix.date(r)
		prior := ix.prior(lookup(r), d)
		if len(prior) == 0 {
			continue
		}
		last := ix.date(ix.rows[prior[len(prior)-1]])
		if last.AddDate(0, 0, 1).Equal(d) {
			out[i] = 1
		}
	}
	return out
}

// Mean is a one-shot self-keyed as-of mean over rows.
func Mean[R any](rows []R, key func(R) string, date func(R) time.Time, value func(R) float64, w Window) []float64 {
	return NewIndex(rows, key, date).Mean(key, value, w)
}

// WinPct is a one-shot self-keyed as-of win percentage over rows.
func WinPct[R any](rows []R, key func(R) string, date func(R) time.Time, won func(R) bool, w Window) []float64 {
	return NewIndex(rows, key, date).WinPct(key, won, w)
}

// BackToBack is a one-shot self-keyed back-to-back detector over rows.
func BackToBack[R any](rows []R, key func(R) string, date func(R) time.Time) []int {
	return NewIndex(rows, key, date).BackToBack(key)
}
