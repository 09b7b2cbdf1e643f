package tracker

import (
	"time"

	"github.com/fortuna/services/scorebot/pkg/models"
)

// Regression is a phase reported moving backwards (e.g. FINAL -> IN_PROGRESS)
type Regression struct {
	GameID string       `json:"game_id"`
	From   models.Phase `json:"from"`
	To     models.Phase `json:"to"`
}

// DiffResult holds everything detected between two snapshots
type DiffResult struct {
	Announcements []models.Announcement
	Regressions   []Regression
}

// Diff compares two consecutive snapshots and returns the announceable
// changes, in the order games appear in next. For each game the first
// matching rule wins:
//
//  1. game not in prev: nothing
//  2. phase changed: "Game Started" into IN_PROGRESS, "Game Ended" into FINAL
//  3. clock entered halftime
//  4. clock left halftime
//  5. score went up while IN_PROGRESS
//
// A backward phase change is reported as a regression and never announced.
func Diff(prev, next *models.Snapshot, now time.Time) DiffResult {
	var result DiffResult

	for _, game := range next.Games() {
		old, ok := prev.Get(game.GameID)
		if !ok {
			continue
		}

		announce := func(kind models.AnnouncementKind, prefix string, delta models.ScoreDelta) {
			result.Announcements = append(result.Announcements, models.Announcement{
				Kind:       kind,
				GameID:     game.GameID,
				Prefix:     prefix,
				Delta:      delta,
				Game:       game,
				DetectedAt: now,
			})
		}

		if game.Phase != old.Phase {
			if game.Phase.Rank() < old.Phase.Rank() {
				result.Regressions = append(result.Regressions, Regression{
					GameID: game.GameID,
					From:   old.Phase,
					To:     game.Phase,
				})
				continue
			}
			switch game.Phase {
			case models.PhaseInProgress:
				announce(models.KindGameStarted, models.PrefixGameStarted, models.ScoreDelta{})
			case models.PhaseFinal:
				announce(models.KindGameEnded, models.PrefixGameEnded, models.ScoreDelta{})
			}
			continue
		}

		if game.IsHalftime() && !old.IsHalftime() {
			announce(models.KindHalftime, "", models.ScoreDelta{})
			continue
		}

		if old.IsHalftime() && !game.IsHalftime() {
			announce(models.KindSecondHalf, "", models.ScoreDelta{})
			continue
		}

		if game.InProgress() {
			delta := models.ScoreDelta{
				Home: clampGain(game.Home.Score - old.Home.Score),
				Away: clampGain(game.Away.Score - old.Away.Score),
			}
			if !delta.IsZero() {
				announce(models.KindScore, "", delta)
			}
		}
	}

	return result
}

// clampGain drops score corrections that lower a total
func clampGain(d int) int {
	if d < 0 {
		return 0
	}
	return d
}
