package recorder

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"FundQuant/internal/logger"
	"FundQuant/internal/model"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists reports to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while a cycle writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: logger.Component(log, "recorder")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id            TEXT PRIMARY KEY,
			started_at    INTEGER NOT NULL,
			finished_at   INTEGER,
			provider      TEXT,
			symbols       TEXT,
			records_added INTEGER,
			status        TEXT,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS series_snapshots (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id               TEXT NOT NULL,
			timestamp            INTEGER NOT NULL,
			label                TEXT NOT NULL,
			mode                 TEXT,
			count                INTEGER,
			population_mean      REAL,
			sample_mean          REAL,
			geometric_mean       REAL,
			harmonic_mean        REAL,
			expected_probability REAL,
			min_value            REAL,
			max_value            REAL,
			range_value          REAL,
			population_variance  REAL,
			sample_variance      REAL,
			population_stddev    REAL,
			sample_stddev        REAL,
			downside_deviation   REAL,
			coefficient_of_var   REAL,
			sharpe_ratio         REAL,
			risk_free_rate       REAL,
			skewness             REAL,
			excess_kurtosis      REAL,
			probability_negative REAL,
			percentiles          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_series_label_ts ON series_snapshots(label, timestamp)`,

		`CREATE TABLE IF NOT EXISTS bond_snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL,
			timestamp         INTEGER NOT NULL,
			name              TEXT NOT NULL,
			frequency         TEXT,
			par_value         REAL,
			annual_rate       REAL,
			issuance_date     INTEGER,
			maturity_date     INTEGER,
			term_years        REAL,
			periods           REAL,
			periodic_rate     REAL,
			coupon_payment    REAL,
			present_value     REAL,
			future_value      REAL,
			yield_to_maturity REAL,
			current_yield     REAL,
			annual_cash_flow  REAL,
			market_price      REAL,
			duration          REAL,
			modified_duration REAL,
			npv               REAL,
			irr               REAL,
			irr_error         TEXT,
			cash_flows        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bond_name_ts ON bond_snapshots(name, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var finished any
	if !evt.FinishedAt.IsZero() {
		finished = evt.FinishedAt.Unix()
	}
	_, err := r.db.Exec(`INSERT INTO runs
		(id, started_at, finished_at, provider, symbols, records_added, status, error)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			finished_at = excluded.finished_at,
			records_added = excluded.records_added,
			status = excluded.status,
			error = excluded.error`,
		evt.ID, evt.StartedAt.Unix(), finished, evt.Provider, strings.Join(evt.Symbols, ","),
		evt.RecordsAdded, evt.Status, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordSeries(runID string, s *model.SeriesReport) error {
	percentiles, err := json.Marshal(finitePercentiles(s.Percentiles))
	if err != nil {
		return fmt.Errorf("encode percentiles: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO series_snapshots
		(run_id, timestamp, label, mode, count,
		 population_mean, sample_mean, geometric_mean, harmonic_mean, expected_probability,
		 min_value, max_value, range_value,
		 population_variance, sample_variance, population_stddev, sample_stddev, downside_deviation,
		 coefficient_of_var, sharpe_ratio, risk_free_rate, skewness, excess_kurtosis,
		 probability_negative, percentiles)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, timestamp(s.GeneratedAt), s.Label, s.Mode, s.Count,
		nullable(s.PopulationMean), nullable(s.SampleMean), nullable(s.GeometricMean), nullable(s.HarmonicMean), nullable(s.ExpectedProbability),
		nullable(s.Min), nullable(s.Max), nullable(s.Range),
		nullable(s.PopulationVariance), nullable(s.SampleVariance), nullable(s.PopulationStdDev), nullable(s.SampleStdDev), nullable(s.DownsideDeviation),
		nullable(s.CoefficientOfVariation), nullable(s.SharpeRatio), nullable(s.RiskFreeRate), nullable(s.Skewness), nullable(s.ExcessKurtosis),
		nullable(s.ProbabilityNegative), string(percentiles),
	)
	return err
}

func (r *SQLiteRecorder) RecordBond(runID string, b *model.BondReport) error {
	flows, err := json.Marshal(finiteValues(b.CashFlows))
	if err != nil {
		return fmt.Errorf("encode cash flows: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.Exec(`INSERT INTO bond_snapshots
		(run_id, timestamp, name, frequency, par_value, annual_rate, issuance_date, maturity_date,
		 term_years, periods, periodic_rate, coupon_payment, present_value, future_value,
		 yield_to_maturity, current_yield, annual_cash_flow, market_price, duration, modified_duration,
		 npv, irr, irr_error, cash_flows)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		runID, timestamp(b.GeneratedAt), b.Name, b.Frequency, b.ParValue, b.AnnualRate,
		b.IssuanceDate.Unix(), b.MaturityDate.Unix(),
		nullable(b.TermYears), nullable(b.Periods), nullable(b.PeriodicRate), nullable(b.CouponPayment), nullable(b.PresentValue), nullable(b.FutureValue),
		nullable(b.YieldToMaturity), nullable(b.CurrentYield), nullable(b.AnnualCashFlow), nullable(b.MarketPrice), nullable(b.Duration), nullable(b.ModifiedDuration),
		nullable(b.NetPresentValue), nullable(b.InternalRate), b.InternalRateErr, string(flows),
	)
	return err
}

// SeriesSnapshot is a stored series report row.
type SeriesSnapshot struct {
	RunID       string
	Timestamp   time.Time
	Label       string
	Mode        string
	Count       int
	SampleMean  sql.NullFloat64
	SharpeRatio sql.NullFloat64
	Percentiles []model.Percentile
}

// LatestSeries returns the most recent snapshot for label, or nil if none exists.
func (r *SQLiteRecorder) LatestSeries(label string) (*SeriesSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		s           SeriesSnapshot
		ts          int64
		percentiles string
	)
	err := r.db.QueryRow(`SELECT run_id, timestamp, label, mode, count, sample_mean, sharpe_ratio, percentiles
		FROM series_snapshots WHERE label = ? ORDER BY timestamp DESC, id DESC LIMIT 1`, label).
		Scan(&s.RunID, &ts, &s.Label, &s.Mode, &s.Count, &s.SampleMean, &s.SharpeRatio, &percentiles)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Timestamp = time.Unix(ts, 0).UTC()
	if err := json.Unmarshal([]byte(percentiles), &s.Percentiles); err != nil {
		return nil, fmt.Errorf("decode percentiles: %w", err)
	}
	return &s, nil
}

// CountRows returns the number of rows in one of the recorder's tables.
func (r *SQLiteRecorder) CountRows(table string) (int, error) {
	switch table {
	case "runs", "series_snapshots", "bond_snapshots":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func timestamp(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().Unix()
	}
	return t.Unix()
}

// nullable maps NaN and infinities to NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// finitePercentiles drops values encoding/json cannot represent.
func finitePercentiles(ps []model.Percentile) []model.Percentile {
	out := make([]model.Percentile, 0, len(ps))
	for _, p := range ps {
		if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			out = append(out, p)
		}
	}
	return out
}

func finiteValues(vs []float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		if !math.IsNaN(vs[i]) && !math.IsInf(vs[i], 0) {
			out[i] = &vs[i]
		}
	}
	return out
}
