package recorder

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"FundQuant/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestRecorder(t *testing.T) *SQLiteRecorder {
	t.Helper()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "fundquant.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestSQLiteRecorder_Run(t *testing.T) {
	r := openTestRecorder(t)
	id := NewRunID()
	start := time.Now()

	require.NoError(t, r.RecordRun(&RunEvent{ID: id, StartedAt: start, Provider: "mock", Symbols: []string{"AAA", "BBB"}}))
	require.NoError(t, r.RecordRun(&RunEvent{
		ID: id, StartedAt: start, FinishedAt: time.Now(), Provider: "mock",
		Symbols: []string{"AAA", "BBB"}, RecordsAdded: 40, Status: StatusOK,
	}))

	n, err := r.CountRows("runs")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "second write updates the same run")

	var status string
	var added int
	require.NoError(t, r.db.QueryRow(`SELECT status, records_added FROM runs WHERE id = ?`, id).Scan(&status, &added))
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, 40, added)
}

func TestSQLiteRecorder_Series(t *testing.T) {
	r := openTestRecorder(t)

	older := &model.SeriesReport{
		Label: "AAA", Mode: "literal", Count: 3, SampleMean: 0.01,
		GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	newer := &model.SeriesReport{
		Label: "AAA", Mode: "corrected", Count: 4, SampleMean: 0.02,
		SharpeRatio: math.Inf(1),
		Percentiles: []model.Percentile{{P: 50, Value: 0.015}, {P: 95, Value: math.NaN()}},
		GeneratedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, r.RecordSeries("run-1", older))
	require.NoError(t, r.RecordSeries("run-2", newer))

	snap, err := r.LatestSeries("AAA")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "run-2", snap.RunID)
	assert.Equal(t, "corrected", snap.Mode)
	assert.Equal(t, 4, snap.Count)
	assert.True(t, snap.SampleMean.Valid)
	assert.Equal(t, 0.02, snap.SampleMean.Float64)
	assert.False(t, snap.SharpeRatio.Valid, "infinity stored as NULL")
	assert.Equal(t, []model.Percentile{{P: 50, Value: 0.015}}, snap.Percentiles)
	assert.True(t, snap.Timestamp.Equal(newer.GeneratedAt))

	missing, err := r.LatestSeries("ZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteRecorder_Bond(t *testing.T) {
	r := openTestRecorder(t)

	require.NoError(t, r.RecordBond("run-1", &model.BondReport{
		Name:            "T-3Y",
		Frequency:       "semiannual",
		ParValue:        1000,
		IssuanceDate:    time.Now(),
		MaturityDate:    time.Now().AddDate(3, 0, 0),
		InternalRate:    math.NaN(),
		InternalRateErr: "did not converge",
		CashFlows:       []float64{30, math.Inf(1), 1030},
	}))

	n, err := r.CountRows("bond_snapshots")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var flows, irrErr string
	require.NoError(t, r.db.QueryRow(`SELECT cash_flows, irr_error FROM bond_snapshots WHERE name = 'T-3Y'`).Scan(&flows, &irrErr))
	assert.JSONEq(t, `[30, null, 1030]`, flows)
	assert.Equal(t, "did not converge", irrErr)
}

func TestSQLiteRecorder_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fundquant.db")
	r, err := NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.RecordSeries("run-1", &model.SeriesReport{Label: "AAA"}))
	require.NoError(t, r.Close())

	r, err = NewSQLiteRecorder(path, zerolog.Nop())
	require.NoError(t, err)
	defer r.Close()
	n, err := r.CountRows("series_snapshots")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = r.CountRows("sqlite_master; DROP TABLE runs")
	assert.Error(t, err)
}

func TestNoopRecorder(t *testing.T) {
	var rec Recorder = NewNoopRecorder()
	assert.NoError(t, rec.RecordRun(&RunEvent{}))
	assert.NoError(t, rec.RecordSeries("x", &model.SeriesReport{}))
	assert.NoError(t, rec.RecordBond("x", &model.BondReport{}))
	assert.NoError(t, rec.Close())
	assert.NotEqual(t, NewRunID(), NewRunID())
}
