package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a unit of background maintenance work, such as the embedding
// backfill that repairs chunks ingested while the embedding provider
// was down.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type CronScheduler struct {
	cron *cron.Cron
	ctx  atomic.Pointer[context.Context]
}

func NewCronScheduler() *CronScheduler {
	return &CronScheduler{
		cron: cron.New(cron.WithParser(
			cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		)),
	}
}

func (c *CronScheduler) AddJob(job Job, cronExpr string) error {
	runner := &jobRunner{job: job, scheduler: c}
	if _, err := c.cron.AddFunc(cronExpr, runner.tick); err != nil {
		return fmt.Errorf("add cron job %s: %w", job.Name(), err)
	}
	logutil.GetLogger(context.Background()).Info("job scheduled",
		zap.String("job", job.Name()), zap.String("cron", cronExpr))
	return nil
}

// Start begins dispatching ticks. ctx is handed to every job run, so
// cancelling it stops in-flight work even before Stop is called.
func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx.Store(&ctx)
	c.cron.Start()
}

// Stop blocks until running jobs return.
func (c *CronScheduler) Stop() {
	<-c.cron.Stop().Done()
}

func (c *CronScheduler) runCtx() context.Context {
	if p := c.ctx.Load(); p != nil {
		return *p
	}
	return context.Background()
}

// jobRunner serializes runs of a single job. A tick that fires while
// the previous run is still active is dropped, not queued.
type jobRunner struct {
	job       Job
	scheduler *CronScheduler
	busy      atomic.Bool
}

func (r *jobRunner) tick() {
	ctx := r.scheduler.runCtx()
	logger := logutil.GetLogger(ctx).With(zap.String("job", r.job.Name()))
	if !r.busy.CompareAndSwap(false, true) {
		logger.Info("job tick skipped, previous run still active")
		return
	}
	defer r.busy.Store(false)

	start := time.Now()
	if err := r.job.Run(ctx); err != nil {
		logger.Error("job run failed", zap.Error(err), zap.Duration("cost", time.Since(start)))
		return
	}
	logger.Info("job run done", zap.Duration("cost", time.Since(start)))
}
