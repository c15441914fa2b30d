// Package scheduler runs the recurring background jobs: due auto-invest
// schedules and the weekly report with its optional AI review.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/ndewijer/portfolio-dashboard/internal/config"
	"github.com/ndewijer/portfolio-dashboard/internal/model"
	"github.com/ndewijer/portfolio-dashboard/internal/service"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 10 * time.Minute

// AutoInvestRunner executes due schedules.
type AutoInvestRunner interface {
	RunDue(ctx context.Context, asOf time.Time) (model.AutoInvestRunResult, error)
}

// ReportGenerator builds weekly reports.
type ReportGenerator interface {
	Generate(ctx context.Context, weekStart time.Time) (model.WeeklyReport, error)
}

// InsightGenerator writes the weekly AI review when an API key is configured.
type InsightGenerator interface {
	Available(ctx context.Context) bool
	GenerateWeeklyInsight(ctx context.Context) (model.AIInsight, error)
}

// Scheduler wraps a cron instance bound to the household's timezone.
type Scheduler struct {
	cron       *cron.Cron
	loc        *time.Location
	now        func() time.Time
	autoInvest AutoInvestRunner
	reports    ReportGenerator
	advisor    InsightGenerator
}

// New registers the configured jobs. With the scheduler disabled no job is
// registered and Start is a no-op. advisor may be nil.
func New(cfg config.SchedulerConfig, autoInvest AutoInvestRunner, reports ReportGenerator, advisor InsightGenerator) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler timezone %q: %w", cfg.Timezone, err)
	}

	logger := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
			cron.WithLogger(logger),
		),
		loc:        loc,
		now:        time.Now,
		autoInvest: autoInvest,
		reports:    reports,
		advisor:    advisor,
	}

	if !cfg.Enabled {
		return s, nil
	}

	if cfg.AutoInvest != "" {
		if _, err := s.cron.AddFunc(cfg.AutoInvest, s.job(s.RunAutoInvest)); err != nil {
			return nil, fmt.Errorf("invalid auto-invest schedule %q: %w", cfg.AutoInvest, err)
		}
	}
	if cfg.Report != "" {
		if _, err := s.cron.AddFunc(cfg.Report, s.job(s.RunWeeklyReport)); err != nil {
			return nil, fmt.Errorf("invalid report schedule %q: %w", cfg.Report, err)
		}
	}
	return s, nil
}

// WithClock replaces the time source, for tests.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	return s
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	if s.Jobs() == 0 {
		return
	}
	s.cron.Start()
	log.Info().Int("jobs", s.Jobs()).Str("timezone", s.loc.String()).Msg("scheduler started")
}

// Stop halts the cron loop and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		log.Warn().Msg("scheduler stopped before running jobs finished")
	}
}

func (s *Scheduler) job(fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled job failed")
		}
	}
}

// RunAutoInvest executes every schedule due today in the scheduler timezone.
func (s *Scheduler) RunAutoInvest(ctx context.Context) error {
	result, err := s.autoInvest.RunDue(ctx, s.now().In(s.loc))
	if err != nil {
		return fmt.Errorf("auto-invest run: %w", err)
	}
	if result.Failed > 0 {
		log.Warn().Int("failed", result.Failed).Msg("some auto-invest schedules failed and stay due")
	}
	return nil
}

// RunWeeklyReport builds the report of the previous week and, when the
// advisor is configured, a weekly insight on top of it. A failing insight
// does not fail the job.
func (s *Scheduler) RunWeeklyReport(ctx context.Context) error {
	weekStart := service.PreviousWeekStart(s.now().In(s.loc))
	if _, err := s.reports.Generate(ctx, weekStart); err != nil {
		return fmt.Errorf("weekly report: %w", err)
	}

	if s.advisor == nil || !s.advisor.Available(ctx) {
		return nil
	}
	if _, err := s.advisor.GenerateWeeklyInsight(ctx); err != nil {
		log.Warn().Err(err).Msg("weekly insight failed")
	}
	return nil
}

// cronLogger routes cron's own messages to the global logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	withPairs(log.Debug(), keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	withPairs(log.Error().Err(err), keysAndValues).Msg(msg)
}

func withPairs(e *log.Entry, keysAndValues []any) *log.Entry {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		e = e.Any(key, keysAndValues[i+1])
	}
	return e
}
