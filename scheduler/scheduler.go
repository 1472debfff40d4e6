package scheduler

import (
	"context"
	"errors"
	"time"

	"billybot/application"
	domainerrors "billybot/domain/errors"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler runs the periodic lottery draws. One cron entry fires on the
// configured schedule and draws for every configured server in turn.
type Scheduler struct {
	app      *application.App
	cron     *cron.Cron
	guildIDs []int64
}

// New creates a scheduler with the draw registered on the given cron spec.
func New(app *application.App, drawSpec string, guildIDs []int64) (*Scheduler, error) {
	s := &Scheduler{
		app:      app,
		cron:     cron.New(cron.WithLocation(time.UTC)),
		guildIDs: guildIDs,
	}
	if _, err := s.cron.AddFunc(drawSpec, s.drawAll); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithField("guilds", len(s.guildIDs)).Info("Scheduler started")
}

// Stop halts the scheduler and waits for any running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) drawAll() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, guildID := range s.guildIDs {
		result, err := s.app.DrawLottery(ctx, guildID)
		if errors.Is(err, domainerrors.ErrNotFound) {
			log.WithField("guild_id", guildID).Info("Lottery skipped, no ticket holders")
			continue
		}
		if err != nil {
			log.WithError(err).WithField("guild_id", guildID).Error("Lottery draw failed")
			continue
		}
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"winner":   result.WinnerID,
			"jackpot":  result.Jackpot,
		}).Info("Lottery drawn on schedule")
	}
}
