package models

import "time"

// Phase represents where a game is in its lifecycle
type Phase string

const (
	PhasePre        Phase = "pre"
	PhaseInProgress Phase = "in"
	PhaseFinal      Phase = "post"
)

// HalftimeText is the clock text ESPN reports during the half
const HalftimeText = "Halftime"

// Rank orders phases so backward transitions can be detected
func (p Phase) Rank() int {
	switch p {
	case PhasePre:
		return 0
	case PhaseInProgress:
		return 1
	case PhaseFinal:
		return 2
	default:
		return -1
	}
}

func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "PRE"
	case PhaseInProgress:
		return "IN_PROGRESS"
	case PhaseFinal:
		return "FINAL"
	default:
		return string(p)
	}
}

// Possession identifies which side has the ball
type Possession string

const (
	PossessionHome Possession = "home"
	PossessionAway Possession = "away"
)

// Team is one side of a game
type Team struct {
	ID           string `json:"id"`
	Name         string `json:"name"`         // "Ohio State"
	Abbreviation string `json:"abbreviation"` // "OSU"
	Score        int    `json:"score"`
}

// Venue is where the game is played
type Venue struct {
	City   string  `json:"city"`
	Region *string `json:"region,omitempty"`
}

// Game is one contest as of a single poll.
// Optional fields are nil when the feed omits them.
type Game struct {
	GameID       string      `json:"game_id"`
	LeagueKey    string      `json:"league_key"` // "college_football_fbs"
	Phase        Phase       `json:"phase"`
	Home         Team        `json:"home"`
	Away         Team        `json:"away"`
	TimeText     string      `json:"time_text"` // "3rd 10:21", "Halftime", "Final"
	StartTime    time.Time   `json:"start_time"`
	Venue        Venue       `json:"venue"`
	Network      *string     `json:"network,omitempty"`
	Line         *string     `json:"line,omitempty"`
	Possession   *Possession `json:"possession,omitempty"`
	DownDistance *string     `json:"down_distance,omitempty"`
	LastPlay     *string     `json:"last_play,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// IsHalftime reports whether the clock text says halftime
func (g Game) IsHalftime() bool {
	return g.TimeText == HalftimeText
}

// InProgress reports whether the game is live
func (g Game) InProgress() bool {
	return g.Phase == PhaseInProgress
}

// ScoreDiff returns the absolute score differential
func (g Game) ScoreDiff() int {
	diff := g.Home.Score - g.Away.Score
	if diff < 0 {
		return -diff
	}
	return diff
}

// HasTeam reports whether either side matches name, case-insensitively
func (g Game) HasTeam(name string) bool {
	return equalFold(g.Home.Name, name) || equalFold(g.Away.Name, name)
}

// ScoreDelta is the points each side gained since the previous poll
type ScoreDelta struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// IsZero reports whether neither side scored
func (d ScoreDelta) IsZero() bool {
	return d.Home == 0 && d.Away == 0
}

// StringPtr returns a pointer to s, for optional fields
func StringPtr(s string) *string {
	return &s
}
