package models

import (
	"strings"
	"time"
)

// Snapshot is the complete set of games from one successful poll.
// It is built once and never modified after it is published.
type Snapshot struct {
	games     map[string]Game
	order     []string
	FetchedAt time.Time
}

// NewSnapshot builds a snapshot keeping the provider's game order.
// A repeated game id keeps its first position and its last record.
func NewSnapshot(games []Game, fetchedAt time.Time) *Snapshot {
	s := &Snapshot{
		games:     make(map[string]Game, len(games)),
		order:     make([]string, 0, len(games)),
		FetchedAt: fetchedAt,
	}
	for _, g := range games {
		if _, seen := s.games[g.GameID]; !seen {
			s.order = append(s.order, g.GameID)
		}
		s.games[g.GameID] = g
	}
	return s
}

// EmptySnapshot returns a snapshot with no games
func EmptySnapshot() *Snapshot {
	return NewSnapshot(nil, time.Time{})
}

// Get returns the game with the given id
func (s *Snapshot) Get(gameID string) (Game, bool) {
	if s == nil {
		return Game{}, false
	}
	g, ok := s.games[gameID]
	return g, ok
}

// Games returns all games in provider order
func (s *Snapshot) Games() []Game {
	if s == nil {
		return nil
	}
	out := make([]Game, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.games[id])
	}
	return out
}

// IDs returns game ids in provider order
func (s *Snapshot) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of games
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// AnyInProgress reports whether at least one game is live
func (s *Snapshot) AnyInProgress() bool {
	if s == nil {
		return false
	}
	for _, g := range s.games {
		if g.InProgress() {
			return true
		}
	}
	return false
}

// FindTeam returns the first game, in provider order, involving the named team
func (s *Snapshot) FindTeam(name string) (Game, bool) {
	if s == nil {
		return Game{}, false
	}
	for _, id := range s.order {
		if g := s.games[id]; g.HasTeam(name) {
			return g, true
		}
	}
	return Game{}, false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}
