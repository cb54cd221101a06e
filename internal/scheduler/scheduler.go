// Package scheduler ejecuta el barrido diario de conciliación: madura los
// instrumentos vencidos, asienta los que cobran hoy y avisa por Telegram los
// vencimientos próximos.
package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/MiltonKlun/Pombot-PG-Original/internal/application/reconciler"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/config"
	"github.com/MiltonKlun/Pombot-PG-Original/pkg/logger"
)

// Notifier envía el resumen del barrido al canal de alertas.
type Notifier interface {
	Send(text string) error
}

// Scheduler administra el job diario sobre gocron.
type Scheduler struct {
	scheduler  gocron.Scheduler
	reconciler *reconciler.Service
	notifier   Notifier
	cfg        config.SchedulerConfig
	log        *logger.Logger
}

// New arma el scheduler en la zona horaria configurada. Una zona inválida
// cae a UTC en lugar de abortar el arranque.
func New(rec *reconciler.Service, notifier Notifier, cfg config.SchedulerConfig, log *logger.Logger) (*Scheduler, error) {
	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn().Str("timezone", cfg.Timezone).Msg("zona horaria inválida, se usa UTC")
		tz = time.UTC
	}

	s, err := gocron.NewScheduler(gocron.WithLocation(tz))
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		scheduler:  s,
		reconciler: rec,
		notifier:   notifier,
		cfg:        cfg,
		log:        log,
	}, nil
}

// Start registra el barrido diario y arranca el scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(
			gocron.NewAtTime(uint(s.cfg.Hour), uint(s.cfg.Minute), 0),
		)),
		gocron.NewTask(s.runSweep),
		gocron.WithName("barrido-conciliacion"),
	)
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.log.Info().Int("hora", s.cfg.Hour).Int("minuto", s.cfg.Minute).
		Msg("scheduler iniciado")
	return nil
}

// Stop detiene el scheduler y espera los jobs en curso.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// RunSweepNow dispara el barrido inmediatamente, fuera del horario programado.
func (s *Scheduler) RunSweepNow() error {
	return s.runSweep()
}

func (s *Scheduler) runSweep() error {
	s.log.Info().Msg("barrido de conciliación iniciado")
	report, err := s.reconciler.Sweep(s.cfg.LookAheadDays)
	if err != nil {
		s.log.Error().Err(err).Msg("barrido de conciliación falló")
		if sendErr := s.notifier.Send("⚠️ El barrido de conciliación falló: " + err.Error()); sendErr != nil {
			s.log.Error().Err(sendErr).Msg("no se pudo notificar el error del barrido")
		}
		return err
	}

	s.log.Info().Int("madurados", report.Matured).
		Int("conciliados", len(report.Conciliated)).
		Int("grupos_proximos", len(report.Upcoming)).
		Msg("barrido de conciliación completado")

	message := FormatSweepMessage(report)
	if message == "" {
		return nil
	}
	if err := s.notifier.Send(message); err != nil {
		s.log.Error().Err(err).Msg("no se pudo enviar el resumen del barrido")
		return err
	}
	return nil
}
