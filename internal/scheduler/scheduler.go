package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/dinofightergenesis/dinofighterg/internal/notifier"
	"github.com/dinofightergenesis/dinofighterg/internal/session"
)

// Scheduler owns the periodic recomputations. Each tick recomputes from
// absolute time, so skipped or delayed ticks lose nothing.
type Scheduler struct {
	Cron     *cron.Cron
	Sessions *session.Manager
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, mgr *session.Manager) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		Sessions: mgr,
		Ctx:      ctx,
	}
}

// RegisterAll registers the accrual and sale-epoch ticks.
func (s *Scheduler) RegisterAll(accrualSpec, saleSpec string) error {
	if _, err := s.Cron.AddFunc(accrualSpec, s.accrualTick); err != nil {
		return fmt.Errorf("register accrual tick: %w", err)
	}
	if _, err := s.Cron.AddFunc(saleSpec, s.saleTick); err != nil {
		return fmt.Errorf("register sale tick: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info("scheduler started")
}

// Stop stops the scheduler and waits for running ticks to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info("scheduler stopped")
}

// RunNow executes both ticks immediately.
func (s *Scheduler) RunNow() {
	s.accrualTick()
	s.saleTick()
}

func (s *Scheduler) accrualTick() {
	if s.Ctx.Err() != nil {
		return
	}
	s.Sessions.TickAccrual(s.Ctx)
}

func (s *Scheduler) saleTick() {
	if s.Ctx.Err() != nil {
		return
	}
	s.Sessions.TickSale(s.Ctx)
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/sale":
		st := s.Sessions.Sale().Status(s.Sessions.Now())
		return notifier.FormatSaleStatus(&st)
	case "/burn":
		g, err := s.Sessions.GlobalBurn(s.Ctx)
		if err != nil {
			log.WithError(err).Error("load global burn")
			return "❌ burn stats unavailable"
		}
		return notifier.FormatBurnStats(&g)
	case "/sessions":
		return fmt.Sprintf("👥 active sessions: %d", len(s.Sessions.Sessions()))
	default:
		return "Commands:\n• /sale\n• /burn\n• /sessions"
	}
}
