package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"FundQuant/internal/analysis"
	"FundQuant/internal/collector"
	"FundQuant/internal/config"
	"FundQuant/internal/logger"
	"FundQuant/internal/model"
	"FundQuant/internal/portfolio"
	"FundQuant/internal/recorder"
	"FundQuant/internal/report"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// PortfolioLabel labels the weighted portfolio series in reports.
const PortfolioLabel = "PORTFOLIO"

// Notifier delivers rendered reports.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Settings selects what each cycle evaluates and where reports go.
type Settings struct {
	Analysis analysis.Options
	Weights  map[string]float64 // empty: derive from allocations
	Bonds    []config.BondConfig
	Out      io.Writer // rendered reports; nil discards them
	Notifier Notifier  // optional
}

// CycleResult is everything one cycle produced.
type CycleResult struct {
	RunID  string
	Added  int
	Series []*model.SeriesReport
	Bonds  []*model.BondReport
}

// Scheduler manages the refresh cron task.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Portfolio *portfolio.Manager
	Recorder  recorder.Recorder
	Settings  Settings
	Ctx       context.Context

	running sync.Mutex
	log     zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, pm *portfolio.Manager, rec recorder.Recorder, settings Settings, log zerolog.Logger) *Scheduler {
	l := logger.Component(log, "scheduler")
	cl := cronLogger{l}
	if settings.Out == nil {
		settings.Out = io.Discard
	}
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		Collector: col,
		Portfolio: pm,
		Recorder:  rec,
		Settings:  settings,
		Ctx:       ctx,
		log:       l,
	}
}

// RegisterAll registers the refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the refresh task immediately (for RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	if _, err := s.RunCycle(s.Ctx); err != nil {
		s.log.Error().Err(err).Msg("refresh cycle failed")
	}
}

// RunCycle collects fresh prices, evaluates every held ticker, the weighted
// portfolio and the configured bonds, then records and renders the reports.
// Concurrent calls are serialized.
func (s *Scheduler) RunCycle(ctx context.Context) (*CycleResult, error) {
	s.running.Lock()
	defer s.running.Unlock()

	run := &recorder.RunEvent{
		ID:        recorder.NewRunID(),
		StartedAt: time.Now().UTC(),
		Provider:  s.Collector.Fetcher.Name(),
		Symbols:   s.Collector.Symbols,
	}
	log := s.log.With().Str("run_id", run.ID).Logger()
	log.Info().Msg("running refresh cycle")
	res := &CycleResult{RunID: run.ID}

	added, err := s.Collector.Collect(ctx)
	run.RecordsAdded = added
	res.Added = added
	if err != nil {
		run.Status = recorder.StatusFailed
		run.Error = err.Error()
		run.FinishedAt = time.Now().UTC()
		s.recordRun(log, run)
		s.notify(ctx, log, fmt.Sprintf("FundQuant refresh failed (run %s): %v", run.ID, err))
		return res, fmt.Errorf("collect: %w", err)
	}

	for _, ticker := range s.Portfolio.Tickers() {
		series, err := s.Portfolio.Returns(ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("skipping ticker")
			continue
		}
		res.Series = append(res.Series, analysis.EvaluateSeries(ticker, series, s.Settings.Analysis))
	}

	if rep, err := s.evaluatePortfolio(); err != nil {
		log.Warn().Err(err).Msg("portfolio aggregation skipped")
	} else if rep != nil {
		res.Series = append(res.Series, rep)
	}

	for _, bc := range s.Settings.Bonds {
		b, err := bc.Issue()
		if err != nil {
			log.Warn().Err(err).Str("bond", bc.Name).Msg("skipping bond")
			continue
		}
		res.Bonds = append(res.Bonds, analysis.EvaluateBond(bc.Name, b, bc.MarketPrice))
	}

	for _, r := range res.Series {
		if err := s.Recorder.RecordSeries(run.ID, r); err != nil {
			log.Error().Err(err).Str("label", r.Label).Msg("record series")
		}
		s.render(ctx, log, report.FormatSeriesReport(r))
	}
	for _, r := range res.Bonds {
		if err := s.Recorder.RecordBond(run.ID, r); err != nil {
			log.Error().Err(err).Str("bond", r.Name).Msg("record bond")
		}
		s.render(ctx, log, report.FormatBondReport(r))
	}
	snap := s.Portfolio.Snapshot()
	s.render(ctx, log, report.FormatPortfolioStatus(&snap))

	run.Status = recorder.StatusOK
	run.FinishedAt = time.Now().UTC()
	s.recordRun(log, run)
	log.Info().
		Int("added", added).
		Int("series", len(res.Series)).
		Int("bonds", len(res.Bonds)).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("refresh cycle complete")
	return res, nil
}

// evaluatePortfolio returns nil when there are no weights to aggregate with.
func (s *Scheduler) evaluatePortfolio() (*model.SeriesReport, error) {
	weights := s.Settings.Weights
	if len(weights) == 0 {
		weights = s.Portfolio.Weights()
	}
	if len(weights) == 0 {
		return nil, nil
	}
	series, err := s.Portfolio.Aggregate(weights)
	if err != nil {
		return nil, err
	}
	return analysis.EvaluateSeries(PortfolioLabel, series, s.Settings.Analysis), nil
}

func (s *Scheduler) recordRun(log zerolog.Logger, run *recorder.RunEvent) {
	if err := s.Recorder.RecordRun(run); err != nil {
		log.Error().Err(err).Msg("record run")
	}
}

func (s *Scheduler) render(ctx context.Context, log zerolog.Logger, text string) {
	if _, err := io.WriteString(s.Settings.Out, text+"\n"); err != nil {
		log.Error().Err(err).Msg("write report")
	}
	s.notify(ctx, log, text)
}

func (s *Scheduler) notify(ctx context.Context, log zerolog.Logger, text string) {
	if s.Settings.Notifier == nil {
		return
	}
	if err := s.Settings.Notifier.Send(ctx, text); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	l zerolog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug().Fields(keysAndValues).Msg(msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
