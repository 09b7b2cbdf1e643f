package contracts

import (
	"time"

	"github.com/fortuna/services/scorebot/pkg/models"
)

// LeagueModule is the pluggable interface for a scoreboard feed
type LeagueModule interface {
	// Identification
	GetLeagueKey() string      // "college_football_fbs"
	GetDisplayName() string    // "FBS"
	GetScoreboardPath() string // "/college-football/scoreboard/_/group/80"

	// Configuration
	GetPollingConfig() PollingConfig
	IsEnabled() bool

	// Data parsing
	ParseGame(rawEvent map[string]interface{}) (*models.Game, error)

	// Validation
	ValidateGame(game *models.Game) error

	// Team normalization
	NormalizeTeamName(espnName string) string
}

// PollingConfig defines league-specific polling behavior
type PollingConfig struct {
	Interval         time.Duration // tick period
	InactiveInterval time.Duration // minimum gap between polls while no game is live
}
