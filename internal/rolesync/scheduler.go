package rolesync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Scheduler runs a bulk resync on a cron schedule.
type Scheduler struct {
	syncer *Syncer
	cron   *cron.Cron
	spec   string
}

// NewScheduler creates a Scheduler for the given 5-field cron spec. An
// invalid spec is rejected at construction.
func NewScheduler(syncer *Syncer, spec string) (*Scheduler, error) {
	if syncer == nil {
		return nil, fmt.Errorf("rolesync: syncer is required")
	}
	if _, err := cronParser.Parse(spec); err != nil {
		return nil, fmt.Errorf("rolesync: parse cron spec %q: %w", spec, err)
	}
	return &Scheduler{
		syncer: syncer,
		cron:   cron.New(cron.WithParser(cronParser)),
		spec:   spec,
	}, nil
}

// Start begins the schedule. Run failures are logged and alerted by the
// syncer; the schedule keeps firing.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
		defer cancel()
		if runID, err := s.syncer.ResyncAll(runCtx); err != nil {
			log.Printf("rolesync: scheduled run %s: %v", runID, err)
		}
	})
	if err != nil {
		return fmt.Errorf("rolesync: schedule resync: %w", err)
	}
	s.cron.Start()
	log.Printf("rolesync: scheduled resync on %q", s.spec)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
