package college_football

import (
	"fmt"
	"time"

	"github.com/fortuna/services/scorebot/pkg/contracts"
	"github.com/fortuna/services/scorebot/pkg/models"
)

// League keys
const (
	KeyFBS = "college_football_fbs"
	KeyFCS = "college_football_fcs"
)

// ESPN scoreboard group ids
const (
	groupFBS = "80"
	groupFCS = "81"
)

// Module implements LeagueModule for one college football division
type Module struct {
	key         string
	displayName string
	group       string
	enabled     bool
	now         func() time.Time
}

// NewFBS creates the FBS (Division I-A) module
func NewFBS() *Module {
	return &Module{key: KeyFBS, displayName: "FBS", group: groupFBS, enabled: true, now: time.Now}
}

// NewFCS creates the FCS (Division I-AA) module
func NewFCS() *Module {
	return &Module{key: KeyFCS, displayName: "FCS", group: groupFCS, enabled: true, now: time.Now}
}

func (m *Module) GetLeagueKey() string {
	return m.key
}

func (m *Module) GetDisplayName() string {
	return m.displayName
}

func (m *Module) GetScoreboardPath() string {
	return "/college-football/scoreboard/_/group/" + m.group
}

func (m *Module) GetPollingConfig() contracts.PollingConfig {
	return contracts.PollingConfig{
		Interval:         10 * time.Second,
		InactiveInterval: 5 * time.Minute,
	}
}

func (m *Module) IsEnabled() bool {
	return m.enabled
}

// ParseGame parses one scoreboard event into a Game
func (m *Module) ParseGame(rawEvent map[string]interface{}) (*models.Game, error) {
	return parseEvent(rawEvent, m.key, m.now())
}

// ValidateGame validates college football game data
func (m *Module) ValidateGame(game *models.Game) error {
	if game.GameID == "" {
		return fmt.Errorf("missing game id")
	}
	if game.Home.Abbreviation == "" || game.Away.Abbreviation == "" {
		return fmt.Errorf("game %s: missing team abbreviations", game.GameID)
	}
	if game.Home.Score < 0 || game.Away.Score < 0 {
		return fmt.Errorf("game %s: negative score %d-%d", game.GameID, game.Away.Score, game.Home.Score)
	}
	return nil
}

// NormalizeTeamName decodes HTML entities and applies known spelling corrections
func (m *Module) NormalizeTeamName(espnName string) string {
	return NormalizeTeamName(espnName)
}
