package maintenance

import (
	"context"
	"fmt"
	"time"

	"rentals/pkg/logger"

	"github.com/robfig/cron/v3"
)

// ExpiredOTPs deletes verification codes that expired before now.
type ExpiredOTPs interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Scheduler runs periodic housekeeping jobs on a cron schedule.
type Scheduler struct {
	otps    ExpiredOTPs
	spec    string
	timeout time.Duration
	cron    *cron.Cron
	log     *logger.Logger
	now     func() time.Time
}

func NewScheduler(otps ExpiredOTPs, spec string, timeout time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		otps:    otps,
		spec:    spec,
		timeout: timeout,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the jobs and starts the cron runner. An empty spec
// disables the sweep.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.spec == "" {
		s.log.Info("No cleanup schedule configured, OTP sweep disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.SweepOTPs(ctx); err != nil {
			s.log.Error("Scheduled OTP sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	s.log.Info("Starting maintenance scheduler", "cron", s.spec)
	s.cron.Start()
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Maintenance job still running at shutdown")
	}
}

func (s *Scheduler) SweepOTPs(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	deleted, err := s.otps.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("Expired OTPs removed", "count", deleted)
	}
	return deleted, nil
}
