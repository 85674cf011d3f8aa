package service

import (
	"time"

	"github.com/robfig/cron"
	"github.com/worklane/worklane/internal/server/repo"
	"github.com/worklane/worklane/pkg/log"
)

// Sweeper is the safety net behind lazy expiry: a periodic pass that flips
// every overdue pending request, so requests nobody reads still reach their
// terminal state.
type Sweeper struct {
	requestRepo repo.IAdminRequestRepository
	cron        *cron.Cron
}

func NewSweeper(requestRepo repo.IAdminRequestRepository) *Sweeper {
	return &Sweeper{requestRepo: requestRepo, cron: cron.New()}
}

func (s *Sweeper) Start() error {
	if err := s.cron.AddFunc("@every 1h", s.Sweep); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// Sweep expires every overdue pending request in one statement.
func (s *Sweeper) Sweep() {
	n, err := s.requestRepo.ExpireOverdue(time.Now())
	if err != nil {
		log.Errorw("expiry sweep failed", "err", err)
		return
	}
	if n > 0 {
		adminRequestsExpired.Add(float64(n))
		log.Infow("expiry sweep", "expired", n)
	}
}
