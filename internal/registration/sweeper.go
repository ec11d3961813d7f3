package registration

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically removes index entries for slots redis has expired,
// so pending lists stay honest without a delete hook.
type Sweeper struct {
	cron   *cron.Cron
	slots  SlotStore
	logger *zap.Logger
}

func NewSweeper(slots SlotStore, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{cron: cron.New(), slots: slots, logger: logger}
}

// Start schedules the sweep every minute and runs one immediately.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("@every 1m", s.sweep); err != nil {
		return err
	}
	s.cron.Start()
	go s.sweep()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	removed, err := s.slots.Sweep(context.Background())
	if err != nil {
		s.logger.Error("Scan slot sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("Swept expired scan slots", zap.Int("removed", removed))
	}
}
