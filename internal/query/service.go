package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/fortuna/services/scorebot/internal/aliases"
	"github.com/fortuna/services/scorebot/internal/render"
	"github.com/fortuna/services/scorebot/pkg/contracts"
	"github.com/fortuna/services/scorebot/pkg/models"
)

// CloseGameMargin is the largest score differential listed as a close game
const CloseGameMargin = 10

const listSeparator = " | "

// SnapshotReader exposes the current snapshot
type SnapshotReader interface {
	Snapshot() *models.Snapshot
}

// Service answers lookups against the current snapshot
type Service struct {
	snapshots SnapshotReader
	aliases   *aliases.Table
	renderer  *render.Renderer
}

// New creates a query service
func New(snapshots SnapshotReader, table *aliases.Table, renderer *render.Renderer) *Service {
	return &Service{
		snapshots: snapshots,
		aliases:   table,
		renderer:  renderer,
	}
}

// FindTeam resolves a team query through the alias table and returns the
// first game that team plays in. The returned name is the resolved term.
func (s *Service) FindTeam(query string) (models.Game, string, bool) {
	name, _ := s.aliases.Resolve(query)
	game, ok := s.snapshots.Snapshot().FindTeam(name)
	return game, name, ok
}

// Score returns the long description of a team's game
func (s *Service) Score(query string) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "Usage: score <team>", false
	}
	game, name, ok := s.FindTeam(query)
	if !ok {
		return notFound(name), false
	}
	return s.renderer.Long(game, models.ScoreDelta{}), true
}

// Line returns the betting line for a team's game
func (s *Service) Line(query string) (string, bool) {
	if strings.TrimSpace(query) == "" {
		return "Usage: line <team>", false
	}
	game, name, ok := s.FindTeam(query)
	if !ok {
		return notFound(name), false
	}
	if game.Line == nil {
		return fmt.Sprintf("No line available for %s @ %s", game.Away.Abbreviation, game.Home.Abbreviation), true
	}
	return fmt.Sprintf("%s @ %s: %s", game.Away.Abbreviation, game.Home.Abbreviation, *game.Line), true
}

// WhatsOn lists live games with a known network
func (s *Service) WhatsOn() string {
	return s.listing("Games on TV: ", func(g models.Game) bool {
		return g.InProgress() && g.Network != nil
	})
}

// CloseGames lists live games within CloseGameMargin points
func (s *Service) CloseGames() string {
	return s.listing("Close Games: ", func(g models.Game) bool {
		return g.InProgress() && g.ScoreDiff() <= CloseGameMargin
	})
}

// Games returns the snapshot's games, optionally limited to one phase
func (s *Service) Games(phase models.Phase) []models.Game {
	games := s.snapshots.Snapshot().Games()
	if phase == "" {
		return games
	}
	out := make([]models.Game, 0, len(games))
	for _, g := range games {
		if g.Phase == phase {
			out = append(out, g)
		}
	}
	return out
}

// Game returns one game by id
func (s *Service) Game(gameID string) (models.Game, bool) {
	return s.snapshots.Snapshot().Get(gameID)
}

// RegisterCommands wires the chat commands. score and line answer where
// they were asked; whatson and closegames answer the user directly.
func (s *Service) RegisterCommands(r contracts.CommandRegistrar) {
	r.Register("score", func(_ context.Context, cmd contracts.Command) contracts.Reply {
		text, _ := s.Score(strings.Join(cmd.Args, " "))
		return contracts.Reply{Target: cmd.ReplyTo, Text: text}
	})
	r.Register("line", func(_ context.Context, cmd contracts.Command) contracts.Reply {
		text, _ := s.Line(strings.Join(cmd.Args, " "))
		return contracts.Reply{Target: cmd.ReplyTo, Text: text}
	})
	r.Register("whatson", func(_ context.Context, cmd contracts.Command) contracts.Reply {
		return contracts.Reply{Target: cmd.Sender, Text: s.WhatsOn()}
	})
	r.Register("closegames", func(_ context.Context, cmd contracts.Command) contracts.Reply {
		return contracts.Reply{Target: cmd.Sender, Text: s.CloseGames()}
	})
}

func (s *Service) listing(prefix string, include func(models.Game) bool) string {
	var items []string
	for _, g := range s.snapshots.Snapshot().Games() {
		if include(g) {
			items = append(items, s.renderer.Short(g))
		}
	}
	if len(items) == 0 {
		return prefix + "none"
	}
	return prefix + strings.Join(items, listSeparator)
}

func notFound(name string) string {
	return "No game found for " + name
}
