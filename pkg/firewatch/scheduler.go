package firewatch

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/LeeinUITk17/fwserver/pkg/common"
)

// Scheduler fires the two scan pipelines on independent fixed intervals.
// Each entry is wrapped with SkipIfStillRunning so a pass can never overlap
// itself; the two pipelines remain free to run concurrently with each other.
type Scheduler struct {
	cron *cron.Cron
}

func (f *Firewatch) NewScheduler() *Scheduler {
	logger := common.GetLoggerWith(
		common.LoggerNameFirewatchCore,
		zap.String(common.LoggerFieldCategory, common.LoggerCategoryScheduler),
	)

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLogger{logger: logger}),
	))

	interval := cron.Every(f.Cfg.ScanInterval)

	c.Schedule(interval, cron.FuncJob(func() {
		f.Simulation.RunPass(context.Background())
	}))
	c.Schedule(interval, cron.FuncJob(func() {
		f.Detection.RunPass(context.Background())
	}))

	logger.Info("Scheduler configured",
		zap.Duration("scan_interval", f.Cfg.ScanInterval),
		zap.Int("entries", len(c.Entries())))

	return &Scheduler{cron: c}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts future firings; a pass already underway runs to completion.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	logger *zap.Logger
}

func (cl cronLogger) Info(msg string, keysAndValues ...any) {
	cl.logger.Sugar().Infow(msg, keysAndValues...)
}

func (cl cronLogger) Error(err error, msg string, keysAndValues ...any) {
	cl.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
