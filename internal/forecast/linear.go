package forecast

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/lox/climatedss/internal/models"
)

var (
	ErrMissingFeature = errors.New("missing feature")
	ErrEmptyModel     = errors.New("model has no targets")
)

// Target is one fitted linear equation.
type Target struct {
	Intercept    float64                      `json:"intercept"`
	Coefficients map[models.Variable]float64 `json:"coefficients"`
}

// LinearModel predicts tomorrow's values from today's observation. Only the
// classifier inputs can be targets.
type LinearModel struct {
	Name    string                      `json:"name,omitempty"`
	Targets map[models.Variable]Target `json:"targets"`
}

var predictable = map[models.Variable]bool{
	models.VarRainfall:  true,
	models.VarSunshine:  true,
	models.VarWindSpeed: true,
}

func LoadModel(r io.Reader) (*LinearModel, error) {
	var m LinearModel
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func LoadModelFile(path string) (*LinearModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := LoadModel(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func (m *LinearModel) Validate() error {
	if len(m.Targets) == 0 {
		return ErrEmptyModel
	}
	for target, eq := range m.Targets {
		if !predictable[target] {
			return fmt.Errorf("target %q cannot be predicted", target)
		}
		for feature := range eq.Coefficients {
			if _, err := models.ParseVariable(string(feature)); err != nil {
				return fmt.Errorf("target %s: %w", target, err)
			}
		}
	}
	return nil
}

// Features lists every variable the model reads, sorted.
func (m *LinearModel) Features() []models.Variable {
	seen := make(map[models.Variable]bool)
	var out []models.Variable
	for _, eq := range m.Targets {
		for f := range eq.Coefficients {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Predict returns an observation dated the day after last. Variables the
// model does not target stay null. Predicted amounts never go below zero.
func (m *LinearModel) Predict(last models.DailyObservation) (models.DailyObservation, error) {
	next := models.DailyObservation{
		Location: last.Location,
		Date:     models.DateOnly(last.Date).AddDate(0, 0, 1),
	}

	var missing []models.Variable
	for _, f := range m.Features() {
		if !last.Value(f).Valid {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return next, fmt.Errorf("%w: %v", ErrMissingFeature, missing)
	}

	for target, eq := range m.Targets {
		y := eq.Intercept
		for f, w := range eq.Coefficients {
			y += w * last.Value(f).Float64
		}
		next.SetValue(target, sql.NullFloat64{Float64: clampNonNegative(y), Valid: true})
	}
	return next, nil
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
