// Package predictor fits and applies a linear points model over feature rows.
package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sajari/regression"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pable/nba-points/internal/features"
	"github.com/pable/nba-points/internal/model"
)

// ErrSchemaMismatch is returned when a feature vector's columns or rolling
// windows differ from those the model was trained on.
var ErrSchemaMismatch = errors.New("feature columns do not match model")

// Model is an ordinary least squares fit on standardised features.
// Columns with zero variance in the training set are left out.
// LastNGames and MinutesWindow are copied from the training table; zero
// means the model predates them and the defaults apply.
type Model struct {
	Phase         model.Phase `json:"phase"`
	Columns       []string    `json:"columns"`
	LastNGames    int         `json:"last_n_games,omitempty"`
	MinutesWindow int         `json:"minutes_window,omitempty"`
	Used          []int       `json:"used"`
	Means         []float64   `json:"means"`
	StdDevs       []float64   `json:"std_devs"`
	Intercept     float64     `json:"intercept"`
	Coeffs        []float64   `json:"coeffs"`
	R2            float64     `json:"r2"`
	TrainRows     int         `json:"train_rows"`
	TestMAE       float64     `json:"test_mae"`
	Options       Options     `json:"options"`
	TrainedAt     time.Time   `json:"trained_at"`
}

// FeatureConfig returns the feature configuration that reproduces the
// model's training windows at inference time.
func (m *Model) FeatureConfig(log *zap.SugaredLogger) features.Config {
	return features.Config{
		LastNGames:    m.LastNGames,
		MinutesWindow: m.MinutesWindow,
		Logger:        log,
	}
}

// checkWindows rejects rolling windows that differ from the model's.
// Zero on either side means unknown and is accepted.
func (m *Model) checkWindows(lastN, minutes int) error {
	if m.LastNGames > 0 && lastN > 0 && lastN != m.LastNGames {
		return fmt.Errorf("%w: last-N window is %d games, model was trained on %d", ErrSchemaMismatch, lastN, m.LastNGames)
	}
	if m.MinutesWindow > 0 && minutes > 0 && minutes != m.MinutesWindow {
		return fmt.Errorf("%w: minutes window is %d games, model was trained on %d", ErrSchemaMismatch, minutes, m.MinutesWindow)
	}
	return nil
}

// Fit trains a model on examples whose features follow columns.
func Fit(phase model.Phase, columns []string, train []Example) (*Model, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	m := &Model{Phase: phase, Columns: columns, TrainRows: len(train)}

	col := make([]float64, len(train))
	for j := range columns {
		for i, ex := range train {
			if len(ex.Features) != len(columns) {
				return nil, fmt.Errorf("training row %d has %d features, want %d", i, len(ex.Features), len(columns))
			}
			col[i] = ex.Features[j]
		}
		mean, std := stat.MeanStdDev(col, nil)
		if !(std > 0) {
			continue
		}
		m.Used = append(m.Used, j)
		m.Means = append(m.Means, mean)
		m.StdDevs = append(m.StdDevs, std)
	}
	if len(m.Used) == 0 {
		return nil, fmt.Errorf("every feature is constant over %d rows", len(train))
	}
	if len(train) <= len(m.Used) {
		return nil, fmt.Errorf("%d training rows cannot fit %d features", len(train), len(m.Used))
	}

	var r regression.Regression
	r.SetObserved("PTS")
	for k, j := range m.Used {
		r.SetVar(k, columns[j])
	}
	for _, ex := range train {
		r.Train(regression.DataPoint(ex.Points, m.standardise(ex.Features)))
	}
	if err := r.Run(); err != nil {
		return nil, fmt.Errorf("fit regression: %w", err)
	}

	coeffs := r.GetCoeffs()
	m.Intercept = coeffs[0]
	m.Coeffs = append([]float64(nil), coeffs[1:]...)
	m.R2 = r.R2
	if !model.Finite(m.Intercept) || !model.Finite(m.Coeffs...) {
		return nil, fmt.Errorf("fit regression: non-finite coefficients (collinear features?)")
	}
	return m, nil
}

func (m *Model) standardise(values []float64) []float64 {
	z := make([]float64, len(m.Used))
	for k, j := range m.Used {
		z[k] = (values[j] - m.Means[k]) / m.StdDevs[k]
	}
	return z
}

func (m *Model) predict(values []float64) float64 {
	return m.Intercept + floats.Dot(m.Coeffs, m.standardise(values))
}

// Predict returns the expected points for a feature vector built with the
// same columns the model was trained on.
func (m *Model) Predict(vec model.FeatureVector) (float64, error) {
	if len(vec.Columns) != len(m.Columns) {
		return 0, fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(vec.Columns), len(m.Columns))
	}
	for i, c := range m.Columns {
		if vec.Columns[i] != c {
			return 0, fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, vec.Columns[i], c)
		}
	}
	if err := m.checkWindows(vec.LastNGames, vec.MinutesWindow); err != nil {
		return 0, err
	}
	if !model.Finite(vec.Values...) {
		return 0, fmt.Errorf("feature vector has non-numeric values")
	}
	return m.predict(vec.Values), nil
}

// Metrics summarises prediction error over a labelled set.
type Metrics struct {
	N            int
	MAE          float64
	RMSE         float64
	MeanResidual float64
	StdResidual  float64
	MaxAbsError  float64
}

// Evaluate scores the model on examples. Residuals are actual minus predicted.
func (m *Model) Evaluate(examples []Example) Metrics {
	if len(examples) == 0 {
		return Metrics{}
	}
	residuals := make([]float64, len(examples))
	abs := make([]float64, len(examples))
	for i, ex := range examples {
		residuals[i] = ex.Points - m.predict(ex.Features)
		abs[i] = math.Abs(residuals[i])
	}
	mean, std := stat.MeanStdDev(residuals, nil)
	if len(examples) < 2 {
		std = 0
	}
	return Metrics{
		N:            len(examples),
		MAE:          stat.Mean(abs, nil),
		RMSE:         math.Sqrt(floats.Dot(residuals, residuals) / float64(len(residuals))),
		MeanResidual: mean,
		StdResidual:  std,
		MaxAbsError:  floats.Max(abs),
	}
}

// Summary describes the model for listings.
func (m *Model) Summary() model.ModelSummary {
	return model.ModelSummary{
		Phase:     m.Phase,
		Features:  len(m.Columns),
		TrainRows: m.TrainRows,
		TestMAE:   m.TestMAE,
		TrainedAt: m.TrainedAt,
	}
}

// Marshal encodes the model for storage.
func (m *Model) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Unmarshal decodes a stored model.
func Unmarshal(body []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(m.Used) != len(m.Coeffs) || len(m.Used) != len(m.Means) || len(m.Used) != len(m.StdDevs) {
		return nil, fmt.Errorf("decode model: inconsistent coefficient lengths")
	}
	return &m, nil
}
