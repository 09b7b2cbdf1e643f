package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fortuna/services/scorebot/internal/logging"
	"github.com/fortuna/services/scorebot/pkg/contracts"
)

// Scheduler invokes tick handlers on a fixed period. A tick that is still
// running when the next one is due causes that one to be skipped.
type Scheduler struct {
	ctx  context.Context
	cron *cron.Cron

	// first runs fired by Start, which cron does not track
	initial sync.WaitGroup
}

// NewScheduler creates a scheduler whose handlers receive ctx
func NewScheduler(ctx context.Context) *Scheduler {
	logger := cron.PrintfLogger(logging.WithComponent("scheduler"))
	return &Scheduler{
		ctx: ctx,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Every registers h to run once per interval
func (s *Scheduler) Every(interval time.Duration, h contracts.TickHandler) error {
	if interval < time.Second {
		return fmt.Errorf("tick interval %s is below one second", interval)
	}
	_, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		h.Tick(s.ctx)
	})
	return err
}

// Start fires every registered handler once and then runs the schedule
func (s *Scheduler) Start() {
	for _, entry := range s.cron.Entries() {
		s.initial.Add(1)
		go func(job cron.Job) {
			defer s.initial.Done()
			job.Run()
		}(entry.WrappedJob)
	}
	s.cron.Start()
}

// Stop halts the schedule and waits for running ticks, including the
// first runs fired by Start, to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.initial.Wait()
}
