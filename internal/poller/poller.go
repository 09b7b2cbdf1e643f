package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/services/scorebot/internal/logging"
	"github.com/fortuna/services/scorebot/internal/providers/espn"
	"github.com/fortuna/services/scorebot/internal/tracker"
	"github.com/fortuna/services/scorebot/pkg/contracts"
	"github.com/fortuna/services/scorebot/pkg/models"
)

const defaultFetchTimeout = 30 * time.Second

// Announcer delivers announcements produced by a poll
type Announcer interface {
	Announce(ctx context.Context, anns []models.Announcement)
}

// Reporter sends operational notices
type Reporter interface {
	Report(ctx context.Context, msg string)
}

// SnapshotSink mirrors each published snapshot somewhere else
type SnapshotSink interface {
	WriteSnapshot(ctx context.Context, snap *models.Snapshot) error
}

// Options tunes a Poller. Zero values fall back to the module's settings.
type Options struct {
	Polling      contracts.PollingConfig
	FetchTimeout time.Duration
	Mirror       SnapshotSink
}

// Poller runs one poll cycle per tick for a league
type Poller struct {
	module    contracts.LeagueModule
	fetcher   espn.Fetcher
	tracker   *tracker.Tracker
	announcer Announcer
	ops       Reporter
	mirror    SnapshotSink

	polling      contracts.PollingConfig
	fetchTimeout time.Duration
	now          func() time.Time
	logger       *logrus.Entry
}

// NewPoller creates a poller for module
func NewPoller(
	module contracts.LeagueModule,
	fetcher espn.Fetcher,
	tr *tracker.Tracker,
	announcer Announcer,
	ops Reporter,
	opts Options,
) *Poller {
	polling := module.GetPollingConfig()
	if opts.Polling.Interval > 0 {
		polling.Interval = opts.Polling.Interval
	}
	if opts.Polling.InactiveInterval > 0 {
		polling.InactiveInterval = opts.Polling.InactiveInterval
	}

	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}

	return &Poller{
		module:       module,
		fetcher:      fetcher,
		tracker:      tr,
		announcer:    announcer,
		ops:          ops,
		mirror:       opts.Mirror,
		polling:      polling,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
		logger:       logging.WithComponent("poller").WithField("league", module.GetLeagueKey()),
	}
}

// Interval is the tick period
func (p *Poller) Interval() time.Duration {
	return p.polling.Interval
}

// Tick runs one poll cycle. While no game is live it fetches only once
// per inactive interval.
func (p *Poller) Tick(ctx context.Context) {
	now := p.now()
	if !p.tracker.ShouldPoll(now, p.polling.InactiveInterval) {
		p.logger.Debug("Inactive, skipping poll")
		return
	}
	p.tracker.MarkPolled(now)

	snap, err := p.fetch(ctx, now)
	if err != nil {
		p.logger.WithError(err).Error("Poll failed")
		p.ops.Report(ctx, fmt.Sprintf("Error retrieving scores: %v", err))
		return
	}

	result := p.tracker.Apply(snap, now)

	for _, r := range result.Regressions {
		p.logger.WithFields(logrus.Fields{
			"game_id": r.GameID,
			"from":    r.From,
			"to":      r.To,
		}).Warn("Game phase moved backwards")
	}

	if result.Transition != nil {
		p.ops.Report(ctx, result.Transition.Message())
	}

	p.logger.WithFields(logrus.Fields{
		"games":         snap.Len(),
		"announcements": len(result.Announcements),
		"mode":          p.tracker.Mode(),
	}).Debug("Poll complete")

	p.announcer.Announce(ctx, result.Announcements)

	if p.mirror != nil {
		if err := p.mirror.WriteSnapshot(ctx, snap); err != nil {
			p.logger.WithError(err).Warn("Failed to mirror snapshot")
		}
	}
}

// fetch retrieves and parses the whole scoreboard. Any bad event fails the poll.
func (p *Poller) fetch(ctx context.Context, now time.Time) (*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	defer cancel()

	scoreboard, err := p.fetcher.FetchScoreboard(ctx, p.module.GetScoreboardPath())
	if err != nil {
		return nil, err
	}

	events, err := espn.Events(scoreboard)
	if err != nil {
		return nil, err
	}

	games := make([]models.Game, 0, len(events))
	for _, event := range events {
		game, err := p.module.ParseGame(event)
		if err != nil {
			return nil, err
		}
		if err := p.module.ValidateGame(game); err != nil {
			return nil, err
		}
		games = append(games, *game)
	}

	return models.NewSnapshot(games, now), nil
}
