package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pable/nba-points/internal/model"
)

// response is the envelope every endpoint returns. resultSets is an array for
// log and dashboard endpoints and a single object for shot-location endpoints.
type response struct {
	ResultSets json.RawMessage `json:"resultSets"`
}

type flatResultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

type groupedHeader struct {
	Name        string   `json:"name"`
	ColumnSpan  int      `json:"columnSpan"`
	ColumnNames []string `json:"columnNames"`
}

type groupedResultSet struct {
	Name    string          `json:"name"`
	Headers []groupedHeader `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// table is a decoded result set with named columns.
type table struct {
	cols map[string]int
	rows [][]interface{}
}

// firstTable decodes the first result set of an array-shaped response.
func (r *response) firstTable() (*table, error) {
	var sets []flatResultSet
	if err := json.Unmarshal(r.ResultSets, &sets); err != nil {
		return nil, fmt.Errorf("decode resultSets: %w", err)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("response has no result sets")
	}
	t := &table{cols: make(map[string]int, len(sets[0].Headers)), rows: sets[0].RowSet}
	for i, h := range sets[0].Headers {
		t.cols[h] = i
	}
	return t, nil
}

// shotTable is a shot-location result set: one group of repeated metric
// columns per distance bucket.
type shotTable struct {
	table
	bucketCols []int // column index of the metric for each model.ShotBuckets entry, -1 if absent
}

// shotLocations decodes an object-shaped shot-location response and locates
// the metric column for every distance bucket.
func (r *response) shotLocations(metric string) (*shotTable, error) {
	var set groupedResultSet
	if err := json.Unmarshal(r.ResultSets, &set); err != nil {
		return nil, fmt.Errorf("decode shot resultSets: %w", err)
	}
	if len(set.Headers) < 2 {
		return nil, fmt.Errorf("shot result set has %d header groups, want 2", len(set.Headers))
	}
	buckets, columns := set.Headers[0].ColumnNames, set.Headers[1].ColumnNames

	st := &shotTable{table: table{cols: make(map[string]int), rows: set.RowSet}}
	var metricCols []int
	for i, c := range columns {
		if c == metric {
			metricCols = append(metricCols, i)
		} else if _, seen := st.cols[c]; !seen {
			st.cols[c] = i
		}
	}
	if len(metricCols) != len(buckets) {
		return nil, fmt.Errorf("shot result set has %d %s columns for %d buckets", len(metricCols), metric, len(buckets))
	}

	st.bucketCols = make([]int, model.NumShotBuckets)
	for i := range st.bucketCols {
		st.bucketCols[i] = -1
	}
	for i, label := range buckets {
		b, ok := model.ShotBucketIndex(label)
		if !ok {
			return nil, fmt.Errorf("unknown shot distance bucket %q", label)
		}
		st.bucketCols[b] = metricCols[i]
	}
	return st, nil
}

// buckets reads the per-bucket metric of a row; absent buckets are NaN.
func (st *shotTable) buckets(row []interface{}) [model.NumShotBuckets]float64 {
	var out [model.NumShotBuckets]float64
	for b, idx := range st.bucketCols {
		if idx < 0 {
			out[b] = math.NaN()
			continue
		}
		out[b] = toFloat(cell(row, idx))
	}
	return out
}

// require checks that every named column is present.
func (t *table) require(names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := t.cols[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("result set is missing columns %s", strings.Join(missing, ", "))
	}
	return nil
}

func (t *table) str(row []interface{}, name string) string {
	return toString(cell(row, t.cols[name]))
}

func (t *table) float(row []interface{}, name string) float64 {
	return toFloat(cell(row, t.cols[name]))
}

func (t *table) int(row []interface{}, name string) int64 {
	f := t.float(row, name)
	if math.IsNaN(f) {
		return 0
	}
	return int64(f)
}

func cell(row []interface{}, i int) interface{} {
	if i < 0 || i >= len(row) {
		return nil
	}
	return row[i]
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// toFloat coerces a cell to a number. Cells that are null or not numeric
// become NaN so callers can drop or reject them.
func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

var gameDateLayouts = []string{"2006-01-02T15:04:05", model.DateLayout, "Jan 02, 2006"}

func parseGameDate(s string) (time.Time, error) {
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable game date %q", s)
}
