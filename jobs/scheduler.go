// Package jobs runs the periodic auto-review of flagged posts.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sentiment-health/api-go/review"
	"github.com/sirupsen/logrus"
)

type Processor interface {
	ProcessFlagged(ctx context.Context) (review.Summary, error)
}

type Scheduler struct {
	processor Processor
	interval  time.Duration
	log       *logrus.Logger
	cron      *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(p Processor, interval time.Duration, log *logrus.Logger) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(log))))
	return &Scheduler{
		processor: p,
		interval:  interval,
		log:       log,
		cron:      c,
	}
}

// Start runs one pass immediately and then one every interval.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	// the startup pass and the cron ticks share one skip guard
	job := cron.NewChain(cron.SkipIfStillRunning(cron.PrintfLogger(s.log))).Then(cron.FuncJob(s.run))
	if _, err := s.cron.AddJob(fmt.Sprintf("@every %s", s.interval), job); err != nil {
		s.cancel()
		return fmt.Errorf("schedule auto review: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		job.Run()
	}()

	s.cron.Start()
	s.log.WithField("interval", s.interval.String()).Info("auto review scheduler started")
	return nil
}

// Stop cancels the running pass and waits for it to finish.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.log.Info("auto review scheduler stopped")
}

// RunOnce performs a single pass synchronously.
func (s *Scheduler) RunOnce(ctx context.Context) (review.Summary, error) {
	start := time.Now()
	sum, err := s.processor.ProcessFlagged(ctx)
	entry := s.log.WithFields(logrus.Fields{
		"pending":      sum.Pending,
		"reviewed":     sum.Reviewed,
		"skipped":      sum.Skipped,
		"emailed":      sum.Emailed,
		"email_failed": sum.EmailFailed,
		"duration":     time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Error("auto review run failed")
		return sum, err
	}
	if sum.Pending > 0 {
		entry.Info("auto review run finished")
	} else {
		entry.Debug("auto review run finished")
	}
	return sum, nil
}

func (s *Scheduler) run() {
	_, _ = s.RunOnce(s.ctx)
}
