package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/lox/climatedss/internal/aggregate"
	"github.com/lox/climatedss/internal/classify"
	"github.com/lox/climatedss/internal/logging"
	"github.com/lox/climatedss/internal/metrics"
	"github.com/lox/climatedss/internal/models"
)

// MissingPolicy decides what happens to a day whose classifier inputs are
// incomplete.
type MissingPolicy string

const (
	MissingUnknown MissingPolicy = "unknown" // keep the day, affected labels read unknown
	MissingSkip    MissingPolicy = "skip"
	MissingAbort   MissingPolicy = "abort"
)

func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(s); p {
	case MissingUnknown, MissingSkip, MissingAbort:
		return p, nil
	case "":
		return MissingUnknown, nil
	}
	return "", fmt.Errorf("invalid missing policy %q (allowed: unknown, skip, abort)", s)
}

type Options struct {
	MissingPolicy MissingPolicy
	// Monthly enables aggregation. TrendWindow 0 leaves Trend unset.
	Monthly       bool
	TrendVariable models.Variable
	TrendWindow   int
}

type Result struct {
	Labeled []models.LabeledObservation
	Skipped []models.DailyObservation
	Monthly []models.MonthlySummary
	Stats   Summary
}

type Pipeline struct {
	classifier *classify.Classifier
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func New(t classify.Thresholds, opts ...Option) (*Pipeline, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}
	p := &Pipeline{classifier: classify.New(t)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Discard()
	}
	p.logger = p.logger.With("component", "pipeline")
	return p, nil
}

// Run labels every observation and optionally folds them into monthly
// summaries with a trend. Observations must belong to one location when
// Monthly is set.
func (p *Pipeline) Run(obs []models.DailyObservation, opts Options) (*Result, error) {
	policy := opts.MissingPolicy
	if policy == "" {
		policy = MissingUnknown
	}

	res := &Result{Labeled: make([]models.LabeledObservation, 0, len(obs))}
	for _, o := range obs {
		l := p.classifier.Label(o)
		if !l.Complete() {
			p.countMissing(l.Missing)
			switch policy {
			case MissingAbort:
				return nil, fmt.Errorf("classify %s %s: %w", o.Location, o.Date.Format("2006-01-02"),
					&classify.MissingInputError{Fields: l.Missing})
			case MissingSkip:
				p.logger.Debug("skipping incomplete day", "location", o.Location,
					"date", o.Date.Format("2006-01-02"), "missing", l.Missing)
				res.Skipped = append(res.Skipped, o)
				if p.metrics != nil {
					p.metrics.ObservationsRejected.WithLabelValues(o.Location, "missing_input").Inc()
				}
				continue
			}
		}
		p.countLabels(l)
		res.Labeled = append(res.Labeled, l)
	}
	res.Stats = Summarize(res.Labeled)

	p.logger.Info("classified observations",
		"labeled", len(res.Labeled), "skipped", len(res.Skipped), "incomplete", res.Stats.Incomplete)

	if !opts.Monthly {
		return res, nil
	}

	days := make([]models.DailyObservation, len(res.Labeled))
	for i, l := range res.Labeled {
		days[i] = l.DailyObservation
	}
	monthly, err := aggregate.Monthly(days)
	if err != nil {
		return nil, fmt.Errorf("aggregate monthly: %w", err)
	}
	if opts.TrendWindow != 0 {
		v := opts.TrendVariable
		if v == "" {
			v = models.VarRainfall
		}
		monthly, err = aggregate.WithTrend(monthly, v, opts.TrendWindow)
		if err != nil {
			return nil, fmt.Errorf("trend %s: %w", v, err)
		}
	}
	res.Monthly = monthly

	if p.metrics != nil && len(monthly) > 0 {
		p.metrics.MonthsAggregated.WithLabelValues(monthly[0].Location).Add(float64(len(monthly)))
	}
	p.logger.Info("aggregated months", "months", len(monthly), "trend_window", opts.TrendWindow)
	return res, nil
}

func (p *Pipeline) countMissing(fields []string) {
	if p.metrics == nil {
		return
	}
	for _, f := range fields {
		p.metrics.MissingInputs.WithLabelValues(f).Inc()
	}
}

func (p *Pipeline) countLabels(l models.LabeledObservation) {
	if p.metrics == nil {
		return
	}
	p.metrics.Labels.WithLabelValues("weather_condition", string(l.Result.WeatherCondition)).Inc()
	p.metrics.Labels.WithLabelValues("drought_risk", string(l.Result.DroughtRisk)).Inc()
	p.metrics.Labels.WithLabelValues("wind_status", string(l.Result.WindStatus)).Inc()
	p.metrics.Labels.WithLabelValues("extreme_rain", l.ExtremeRainLabel()).Inc()
}
