// README: Cron-driven sweep that expires stale pending reservations.
package reservation

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically runs ExpireDue. It is best-effort background work:
// per-reservation races against user-driven transitions are handled inside
// the service, and a failed pass is retried on the next tick.
type Sweeper struct {
	cron     *cron.Cron
	svc      *Service
	schedule string
	log      *zap.SugaredLogger
}

func NewSweeper(svc *Service, schedule string, log *zap.SugaredLogger) *Sweeper {
	if schedule == "" {
		schedule = "@every 1m"
	}
	return &Sweeper{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		svc:      svc,
		schedule: schedule,
		log:      log,
	}
}

func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infow("expiry sweep started", "schedule", s.schedule)
	return nil
}

// Stop waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expired, err := s.svc.ExpireDue(ctx)
	if err != nil {
		s.log.Errorw("expiry sweep failed", "error", err)
		return
	}
	if expired > 0 {
		s.log.Infow("expiry sweep finished", "expired", expired)
	}
}
