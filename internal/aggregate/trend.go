package aggregate

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lox/climatedss/internal/models"
)

var ErrInvalidWindow = errors.New("invalid moving average window")

// MovingAverage returns the trailing mean of v over window periods ending at
// each index. Entries before window-1, or whose window contains a missing
// value, are invalid. A window longer than the series yields all invalid
// entries.
func MovingAverage(summaries []models.MonthlySummary, v models.Variable, window int) ([]sql.NullFloat64, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: %d (must be >= 1)", ErrInvalidWindow, window)
	}

	out := make([]sql.NullFloat64, len(summaries))
	for i := window - 1; i < len(summaries); i++ {
		var sum float64
		complete := true
		for _, s := range summaries[i-window+1 : i+1] {
			val := s.Value(v)
			if !val.Valid {
				complete = false
				break
			}
			sum += val.Float64
		}
		if complete {
			out[i] = sql.NullFloat64{Float64: sum / float64(window), Valid: true}
		}
	}
	return out, nil
}

// WithTrend returns a copy of summaries with Trend set to the moving
// average of v.
func WithTrend(summaries []models.MonthlySummary, v models.Variable, window int) ([]models.MonthlySummary, error) {
	trend, err := MovingAverage(summaries, v, window)
	if err != nil {
		return nil, err
	}
	out := make([]models.MonthlySummary, len(summaries))
	copy(out, summaries)
	for i := range out {
		out[i].Trend = trend[i]
	}
	return out, nil
}
