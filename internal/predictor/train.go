package predictor

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pable/nba-points/internal/model"
)

// Train prepares t, fits a model on the training split and scores it on the
// held-out split.
func Train(t *model.FeatureTable, opts Options, log *zap.SugaredLogger) (*Model, Metrics, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	examples, err := Prepare(t, opts)
	if err != nil {
		return nil, Metrics{}, err
	}
	train, test := Split(examples, opts.TrainFrac, opts.Seed)
	log.Infow("dataset prepared", "phase", string(t.Phase),
		"table_rows", len(t.Rows), "examples", len(examples), "train", len(train), "test", len(test))
	if len(test) == 0 {
		return nil, Metrics{}, fmt.Errorf("no rows left for the test split (%d examples)", len(examples))
	}

	m, err := Fit(t.Phase, t.Columns, train)
	if err != nil {
		return nil, Metrics{}, err
	}
	if dropped := len(t.Columns) - len(m.Used); dropped > 0 {
		log.Warnw("constant features left out of the fit", "columns", dropped)
	}
	metrics := m.Evaluate(test)
	m.LastNGames = t.LastNGames
	m.MinutesWindow = t.MinutesWindow
	m.TestMAE = metrics.MAE
	m.Options = opts
	m.TrainedAt = time.Now().UTC()
	log.Infow("model trained", "phase", string(t.Phase), "r2", m.R2, "test_mae", metrics.MAE)
	return m, metrics, nil
}

// Holdout rebuilds the test split a model was scored on. t must carry the
// columns and rolling windows the model was trained on.
func (m *Model) Holdout(t *model.FeatureTable) ([]Example, error) {
	if len(t.Columns) != len(m.Columns) {
		return nil, fmt.Errorf("%w: table has %d columns, model %d", ErrSchemaMismatch, len(t.Columns), len(m.Columns))
	}
	for i, c := range m.Columns {
		if t.Columns[i] != c {
			return nil, fmt.Errorf("%w: table column %d is %q, want %q", ErrSchemaMismatch, i, t.Columns[i], c)
		}
	}
	if err := m.checkWindows(t.LastNGames, t.MinutesWindow); err != nil {
		return nil, err
	}
	examples, err := Prepare(t, m.Options)
	if err != nil {
		return nil, err
	}
	_, test := Split(examples, m.Options.TrainFrac, m.Options.Seed)
	return test, nil
}
