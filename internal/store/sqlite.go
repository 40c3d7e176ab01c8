package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/climatedss/internal/logging"
	"github.com/lox/climatedss/internal/models"
)

const dateFormat = "2006-01-02"

// Store is the working table for one analysis session. It lives in memory
// and is gone when the process exits.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{db: db, logger: logger.With("component", "store")}
}

// OpenMemory opens and migrates a private in-memory database. Every
// connection to ":memory:" is a separate database, so the pool is pinned
// to one connection.
func OpenMemory(logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s := New(db, logger)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	version, err := s.MigrationVersion()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migration version: %w", err)
	}
	s.logger.Debug("store ready", "schema_version", version)
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InsertLabeled(labeled []models.LabeledObservation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO observations (location, date, temp_min, temp_max, temp_avg, humidity, rainfall, sunshine, wind_speed, weather_condition, drought_risk, extreme_rain, wind_status, missing)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(location, date) DO UPDATE SET
			temp_min = excluded.temp_min,
			temp_max = excluded.temp_max,
			temp_avg = excluded.temp_avg,
			humidity = excluded.humidity,
			rainfall = excluded.rainfall,
			sunshine = excluded.sunshine,
			wind_speed = excluded.wind_speed,
			weather_condition = excluded.weather_condition,
			drought_risk = excluded.drought_risk,
			extreme_rain = excluded.extreme_rain,
			wind_status = excluded.wind_status,
			missing = excluded.missing
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range labeled {
		if _, err := stmt.Exec(
			l.Location, l.Date.Format(dateFormat),
			l.TempMin, l.TempMax, l.TempAvg, l.Humidity, l.Rainfall, l.Sunshine, l.WindSpeed,
			string(l.Result.WeatherCondition), string(l.Result.DroughtRisk), l.Result.ExtremeRain,
			string(l.Result.WindStatus), strings.Join(l.Missing, ","),
		); err != nil {
			return fmt.Errorf("insert %s %s: %w", l.Location, l.Date.Format(dateFormat), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("inserted observations", "count", len(labeled))
	return nil
}

const observationColumns = `location, date, temp_min, temp_max, temp_avg, humidity, rainfall, sunshine, wind_speed, weather_condition, drought_risk, extreme_rain, wind_status, missing`

type scanner interface {
	Scan(dest ...any) error
}

func scanLabeled(row scanner) (models.LabeledObservation, error) {
	var l models.LabeledObservation
	var date, cond, drought, wind string
	var missing sql.NullString
	err := row.Scan(&l.Location, &date, &l.TempMin, &l.TempMax, &l.TempAvg, &l.Humidity, &l.Rainfall, &l.Sunshine, &l.WindSpeed,
		&cond, &drought, &l.Result.ExtremeRain, &wind, &missing)
	if err != nil {
		return l, err
	}
	l.Date, err = time.Parse(dateFormat, date)
	if err != nil {
		return l, fmt.Errorf("parse date %q: %w", date, err)
	}
	l.Result.WeatherCondition = models.WeatherCondition(cond)
	l.Result.DroughtRisk = models.DroughtRisk(drought)
	l.Result.WindStatus = models.WindStatus(wind)
	if missing.Valid && missing.String != "" {
		l.Missing = strings.Split(missing.String, ",")
	}
	return l, nil
}

// GetDay returns nil when no observation exists for the date.
func (s *Store) GetDay(location string, date time.Time) (*models.LabeledObservation, error) {
	row := s.db.QueryRow(`SELECT `+observationColumns+` FROM observations WHERE location = ? AND date = ?`,
		location, models.DateOnly(date).Format(dateFormat))
	l, err := scanLabeled(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetRange returns observations with from <= date <= to, oldest first.
func (s *Store) GetRange(location string, from, to time.Time) ([]models.LabeledObservation, error) {
	rows, err := s.db.Query(`SELECT `+observationColumns+` FROM observations
		WHERE location = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		location, models.DateOnly(from).Format(dateFormat), models.DateOnly(to).Format(dateFormat))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LabeledObservation
	for rows.Next() {
		l, err := scanLabeled(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DateRange returns the first and last observed dates. ok is false when the
// location has no observations.
func (s *Store) DateRange(location string) (first, last time.Time, ok bool, err error) {
	var minDate, maxDate sql.NullString
	err = s.db.QueryRow(`SELECT MIN(date), MAX(date) FROM observations WHERE location = ?`, location).Scan(&minDate, &maxDate)
	if err != nil {
		return first, last, false, err
	}
	if !minDate.Valid || !maxDate.Valid {
		return first, last, false, nil
	}
	if first, err = time.Parse(dateFormat, minDate.String); err != nil {
		return first, last, false, err
	}
	if last, err = time.Parse(dateFormat, maxDate.String); err != nil {
		return first, last, false, err
	}
	return first, last, true, nil
}

func (s *Store) CountByCondition(location string) (map[models.WeatherCondition]int, error) {
	rows, err := s.db.Query(`SELECT weather_condition, COUNT(*) FROM observations WHERE location = ? GROUP BY weather_condition`, location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.WeatherCondition]int)
	for rows.Next() {
		var cond string
		var n int
		if err := rows.Scan(&cond, &n); err != nil {
			return nil, err
		}
		counts[models.WeatherCondition(cond)] = n
	}
	return counts, rows.Err()
}

func (s *Store) Locations() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT location FROM observations ORDER BY location`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

// ReplaceMonthly swaps the monthly summaries for a location.
func (s *Store) ReplaceMonthly(location string, summaries []models.MonthlySummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM monthly_summaries WHERE location = ?`, location); err != nil {
		return err
	}
	for _, m := range summaries {
		if _, err := tx.Exec(`
			INSERT INTO monthly_summaries (location, year, month, days, temp_min, temp_max, temp_avg, humidity, rainfall, sunshine, wind_speed, trend)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, location, m.Year, int(m.Month), m.Days, m.TempMin, m.TempMax, m.TempAvg, m.Humidity, m.Rainfall, m.Sunshine, m.WindSpeed, m.Trend); err != nil {
			return fmt.Errorf("insert summary %s: %w", m.Period(), err)
		}
	}
	return tx.Commit()
}

func (s *Store) GetMonthly(location string) ([]models.MonthlySummary, error) {
	rows, err := s.db.Query(`
		SELECT location, year, month, days, temp_min, temp_max, temp_avg, humidity, rainfall, sunshine, wind_speed, trend
		FROM monthly_summaries
		WHERE location = ?
		ORDER BY year ASC, month ASC
	`, location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.MonthlySummary
	for rows.Next() {
		var m models.MonthlySummary
		var month int
		if err := rows.Scan(&m.Location, &m.Year, &month, &m.Days, &m.TempMin, &m.TempMax, &m.TempAvg, &m.Humidity, &m.Rainfall, &m.Sunshine, &m.WindSpeed, &m.Trend); err != nil {
			return nil, err
		}
		m.Month = time.Month(month)
		out = append(out, m)
	}
	return out, rows.Err()
}
