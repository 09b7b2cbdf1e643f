package college_football

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/services/scorebot/pkg/models"
)

// ErrMissingField is returned when a required event attribute is absent or unusable
var ErrMissingField = errors.New("missing required field")

func missing(field string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, field)
}

// parseEvent maps one scoreboard event to a Game
func parseEvent(event map[string]interface{}, leagueKey string, now time.Time) (*models.Game, error) {
	id, ok := lookupString(event, "id")
	if !ok {
		return nil, missing("id")
	}

	state, ok := lookupString(event, "status", "type", "state")
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, missing("status.type.state"))
	}

	comp, ok := lookupMap(event, "competitions", 0)
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, missing("competitions[0]"))
	}

	home, away, err := parseCompetitors(comp)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", id, err)
	}

	game := &models.Game{
		GameID:    id,
		LeagueKey: leagueKey,
		Phase:     parsePhase(state),
		Home:      home,
		Away:      away,
		UpdatedAt: now,
	}

	game.TimeText, _ = lookupString(event, "status", "type", "shortDetail")

	if date, ok := lookupString(event, "date"); ok {
		if t, err := parseStartTime(date); err == nil {
			game.StartTime = t
		}
	}

	game.Venue.City, _ = lookupString(comp, "venue", "address", "city")
	if region, ok := lookupString(comp, "venue", "address", "state"); ok {
		game.Venue.Region = &region
	}

	if network, ok := lookupString(comp, "broadcasts", 0, "names", 0); ok {
		game.Network = &network
	}

	game.Line = parseLine(comp)

	if situation, ok := lookupMap(comp, "situation"); ok {
		if down, ok := lookupString(situation, "downDistanceText"); ok {
			game.DownDistance = &down
		}
		if play, ok := lookupString(situation, "lastPlay", "text"); ok {
			game.LastPlay = &play
		}
		if possessor, ok := lookupID(situation, "possession"); ok {
			p := models.PossessionHome
			if possessor == away.ID {
				p = models.PossessionAway
			}
			game.Possession = &p
		}
	}

	return game, nil
}

// parseCompetitors assigns home and away from each competitor's homeAway flag
func parseCompetitors(comp map[string]interface{}) (models.Team, models.Team, error) {
	var home, away models.Team
	var haveHome, haveAway bool

	competitors, ok := lookupArray(comp, "competitors")
	if !ok {
		return home, away, missing("competitors")
	}

	for i, raw := range competitors {
		c, ok := raw.(map[string]interface{})
		if !ok {
			return home, away, missing(fmt.Sprintf("competitors[%d]", i))
		}

		role, _ := lookupString(c, "homeAway")
		if role != "home" && role != "away" {
			continue
		}

		team, err := parseTeam(c)
		if err != nil {
			return home, away, fmt.Errorf("%s competitor: %w", role, err)
		}

		if role == "home" {
			home, haveHome = team, true
		} else {
			away, haveAway = team, true
		}
	}

	if !haveHome {
		return home, away, missing("home competitor")
	}
	if !haveAway {
		return home, away, missing("away competitor")
	}
	return home, away, nil
}

func parseTeam(c map[string]interface{}) (models.Team, error) {
	id, ok := lookupID(c, "id")
	if !ok {
		return models.Team{}, missing("id")
	}
	location, ok := lookupString(c, "team", "location")
	if !ok {
		return models.Team{}, missing("team.location")
	}
	abbr, ok := lookupString(c, "team", "abbreviation")
	if !ok {
		return models.Team{}, missing("team.abbreviation")
	}
	rawScore, ok := lookup(c, "score")
	if !ok {
		return models.Team{}, missing("score")
	}
	score, err := parseScore(rawScore)
	if err != nil {
		return models.Team{}, fmt.Errorf("%w: score: %v", ErrMissingField, err)
	}

	return models.Team{
		ID:           id,
		Name:         NormalizeTeamName(location),
		Abbreviation: abbr,
		Score:        score,
	}, nil
}

// parsePhase converts ESPN's status state; anything unrecognised counts as final
func parsePhase(state string) models.Phase {
	switch state {
	case "pre":
		return models.PhasePre
	case "in":
		return models.PhaseInProgress
	default:
		return models.PhaseFinal
	}
}

// parseStartTime parses ESPN date format to time.Time
func parseStartTime(dateStr string) (time.Time, error) {
	// ESPN format: "2025-11-11T23:30Z"
	t, err := time.Parse(time.RFC3339, dateStr)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z07:00", dateStr)
}

// parseLine builds "MICH -7.5, O/U 45.5" from whichever odds parts are present
func parseLine(comp map[string]interface{}) *string {
	var parts []string
	if details, ok := lookupString(comp, "odds", 0, "details"); ok {
		parts = append(parts, details)
	}
	if raw, ok := lookup(comp, "odds", 0, "overUnder"); ok {
		switch v := raw.(type) {
		case float64:
			parts = append(parts, "O/U "+strconv.FormatFloat(v, 'f', -1, 64))
		case string:
			if v = strings.TrimSpace(v); v != "" {
				parts = append(parts, "O/U "+v)
			}
		}
	}
	if len(parts) == 0 {
		return nil
	}
	line := strings.Join(parts, ", ")
	return &line
}

// parseScore accepts ESPN's string scores as well as numbers
func parseScore(v interface{}) (int, error) {
	var score int
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("not an integer: %q", val)
		}
		score = i
	case float64:
		if val != math.Trunc(val) {
			return 0, fmt.Errorf("not an integer: %v", val)
		}
		score = int(val)
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
	if score < 0 {
		return 0, fmt.Errorf("negative: %d", score)
	}
	return score, nil
}

// lookup walks a decoded JSON document. Each step is a map key (string)
// or a slice index (int). A missing step or a JSON null reports false.
func lookup(v interface{}, path ...interface{}) (interface{}, bool) {
	cur := v
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]interface{})
			if !ok {
				return nil, false
			}
			if cur, ok = m[key]; !ok {
				return nil, false
			}
		case int:
			arr, ok := cur.([]interface{})
			if !ok || key < 0 || key >= len(arr) {
				return nil, false
			}
			cur = arr[key]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// lookupString returns a non-empty trimmed string
func lookupString(v interface{}, path ...interface{}) (string, bool) {
	raw, ok := lookup(v, path...)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// lookupID accepts ids encoded as strings or numbers
func lookupID(v interface{}, path ...interface{}) (string, bool) {
	raw, ok := lookup(v, path...)
	if !ok {
		return "", false
	}
	switch id := raw.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), true
	default:
		return "", false
	}
}

func lookupMap(v interface{}, path ...interface{}) (map[string]interface{}, bool) {
	raw, ok := lookup(v, path...)
	if !ok {
		return nil, false
	}
	m, ok := raw.(map[string]interface{})
	return m, ok
}

func lookupArray(v interface{}, path ...interface{}) ([]interface{}, bool) {
	raw, ok := lookup(v, path...)
	if !ok {
		return nil, false
	}
	arr, ok := raw.([]interface{})
	return arr, ok
}
