// Package scheduler corre los trabajos periódicos del server: por ahora
// el sweep de tareas médicas vencidas.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"shelter-ops/internal/domain/medical"
	"shelter-ops/internal/notify"
	"shelter-ops/internal/platform/logger"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron       *cron.Cron
	medicalSvc *medical.Service
	notifier   *notify.Notifier
	log        logger.Logger
}

func New(medicalSvc *medical.Service, notifier *notify.Notifier, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(),
		medicalSvc: medicalSvc,
		notifier:   notifier,
		log:        log,
	}
}

// Start registra el sweep con el intervalo dado y arranca el cron.
func (s *Scheduler) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}

	spec := fmt.Sprintf("@every %s", interval)
	if _, err := s.cron.AddFunc(spec, s.runSweep); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("scheduler started", logger.Fields{"sweep_interval": interval.String()})
	return nil
}

// Stop frena el cron y espera a que termine el job en curso.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	flipped, err := s.medicalSvc.SweepOverdue(ctx)
	if err != nil {
		s.log.Error("overdue sweep failed", logger.Fields{"error": err.Error()})
		return
	}
	if len(flipped) == 0 {
		return
	}

	s.log.Info("overdue sweep flipped tasks", logger.Fields{"count": len(flipped)})

	if err := s.notifier.OverdueTasks(ctx, flipped); err != nil {
		// El recordatorio es best-effort; el estado ya quedó en overdue
		s.log.Warn("overdue notification failed", logger.Fields{"error": err.Error()})
	}
}
