package scheduler

import (
	"context"
	"log"
	"time"
)

// Sweeper resolves overdue pending bookings. Implemented by the
// booking service.
type Sweeper interface {
	SweepExpiredBookings(ctx context.Context, now time.Time) (int, error)
}

// Scheduler drives the expiry sweep on a fixed interval. Deadlines
// live on the persisted bookings, so the scheduler carries no state:
// after a crash the next tick simply finds the same overdue bookings.
type Scheduler struct {
	sweeper  Sweeper
	interval time.Duration
	nowFn    func() time.Time
}

func New(sweeper Sweeper, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		sweeper:  sweeper,
		interval: interval,
		nowFn:    time.Now,
	}
}

// Run sweeps until ctx is cancelled. A failed cycle is logged and the
// next tick retries; a missed cycle is harmless since the following one
// catches the same overdue bookings.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("sweep: running every %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("sweep: stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	// Bound each cycle so a slow store cannot stack sweeps.
	cycleCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	n, err := s.sweeper.SweepExpiredBookings(cycleCtx, s.nowFn().UTC())
	if err != nil {
		log.Printf("sweep: cycle failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("sweep: auto-confirmed %d booking(s)", n)
	}
}
