package predictor

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pable/nba-points/internal/features"
	"github.com/pable/nba-points/internal/model"
)

// Options controls dataset preparation and the train/test split.
type Options struct {
	// MinMinutes drops games where the player logged this many minutes or fewer.
	MinMinutes float64
	// OutlierFrac drops games whose points stray from the player's scoring
	// average by more than OutlierFrac of it. Zero disables the filter.
	OutlierFrac float64
	TrainFrac   float64
	Seed        int64
}

// DefaultOptions returns the training defaults.
func DefaultOptions() Options {
	return Options{MinMinutes: 23, OutlierFrac: 0.45, TrainFrac: 0.8, Seed: 0}
}

// Example is one labelled training row.
type Example struct {
	Features []float64
	Points   float64
}

// Prepare turns a feature table into labelled examples, dropping short-minute
// games, rows with a non-finite value and, when enabled, scoring outliers.
func Prepare(t *model.FeatureTable, opts Options) ([]Example, error) {
	ptsIdx, lastIdx := t.ColumnIndex(features.ColPtsPG), t.ColumnIndex(features.ColLastPtsPG)
	if opts.OutlierFrac > 0 && (ptsIdx < 0 || lastIdx < 0) {
		return nil, fmt.Errorf("table lacks %s/%s for outlier filtering", features.ColPtsPG, features.ColLastPtsPG)
	}

	out := make([]Example, 0, len(t.Rows))
	for _, r := range t.Rows {
		if !(r.Minutes > opts.MinMinutes) {
			continue
		}
		if !model.Finite(r.Points) || !model.Finite(r.Values...) {
			continue
		}
		if opts.OutlierFrac > 0 {
			sum := r.Values[ptsIdx] + r.Values[lastIdx]
			if !(math.Abs(r.Points-sum/2) < sum*0.5*opts.OutlierFrac) {
				continue
			}
		}
		out = append(out, Example{Features: r.Values, Points: r.Points})
	}
	return out, nil
}

// Split shuffles examples with a seeded source and cuts them into train and
// test sets. The same seed always yields the same split.
func Split(examples []Example, trainFrac float64, seed int64) (train, test []Example) {
	perm := rand.New(rand.NewSource(seed)).Perm(len(examples))
	n := int(math.Round(trainFrac * float64(len(examples))))
	train = make([]Example, 0, n)
	test = make([]Example, 0, len(examples)-n)
	for i, j := range perm {
		if i < n {
			train = append(train, examples[j])
		} else {
			test = append(test, examples[j])
		}
	}
	return train, test
}
