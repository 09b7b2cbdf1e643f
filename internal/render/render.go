package render

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Eastern time without a system zoneinfo

	"github.com/fortuna/services/scorebot/pkg/models"
)

const kickoffLayout = "Monday, January 02, 03:04 PM MST"

// Eastern is the display timezone for kickoff times
var Eastern = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

var scoringDescriptions = map[int]string{
	1: "extra point good",
	2: "2-point conversion good",
	3: "field goal good",
	6: "touchdown",
	7: "touchdown + extra point good",
	8: "touchdown + 2-point conversion good",
}

// ScoringDescription names the scoring play worth the given points
func ScoringDescription(points int) (string, bool) {
	desc, ok := scoringDescriptions[points]
	return desc, ok
}

// Renderer turns games into chat text
type Renderer struct {
	style Style
	loc   *time.Location
}

// New creates a renderer using Eastern time
func New(style Style) *Renderer {
	if style == nil {
		style = Plain
	}
	return &Renderer{style: style, loc: Eastern}
}

// Style returns the emphasis style in use
func (r *Renderer) Style() Style {
	return r.style
}

// Short renders the one-line listing form:
// "MICH 10 @ OSU 14 - 3rd 10:21 (FOX)"
func (r *Renderer) Short(g models.Game) string {
	var b strings.Builder
	if g.Phase == models.PhasePre {
		fmt.Fprintf(&b, "%s @ %s - %s", g.Away.Abbreviation, g.Home.Abbreviation, g.TimeText)
	} else {
		fmt.Fprintf(&b, "%s %d @ %s %d - %s",
			g.Away.Abbreviation, g.Away.Score, g.Home.Abbreviation, g.Home.Score, g.TimeText)
	}
	if g.Network != nil {
		fmt.Fprintf(&b, " (%s)", *g.Network)
	}
	return b.String()
}

// Long renders the detailed form used for queries and announcements.
// delta is the scoring since the previous poll; zero means none.
func (r *Renderer) Long(g models.Game, delta models.ScoreDelta) string {
	switch g.Phase {
	case models.PhasePre:
		return r.longPre(g)
	case models.PhaseInProgress:
		return r.longInProgress(g, delta)
	default:
		return fmt.Sprintf("%s %d @ %s %d - %s",
			r.style.Bold(g.Away.Name), g.Away.Score, r.style.Bold(g.Home.Name), g.Home.Score, g.TimeText)
	}
}

// Announcement renders an announcement with its prefix
func (r *Renderer) Announcement(a models.Announcement) string {
	return a.Prefix + r.Long(a.Game, a.Delta)
}

// Kickoff formats a start time in the display timezone
func (r *Renderer) Kickoff(t time.Time) string {
	if t.IsZero() {
		return "TBD"
	}
	return t.In(r.loc).Format(kickoffLayout)
}

func (r *Renderer) longPre(g models.Game) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s @ %s - %s", r.style.Bold(g.Away.Name), r.style.Bold(g.Home.Name), r.Kickoff(g.StartTime))
	if venue := venueText(g.Venue); venue != "" {
		b.WriteString(" - " + venue)
	}
	if g.Network != nil {
		fmt.Fprintf(&b, " [TV: %s]", *g.Network)
	}
	return b.String()
}

func (r *Renderer) longInProgress(g models.Game, delta models.ScoreDelta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", r.style.Bold(g.Away.Name), g.Away.Score)
	if g.Possession != nil && *g.Possession == models.PossessionAway {
		b.WriteString(" <-")
	}
	b.WriteString(" @")
	if g.Possession != nil && *g.Possession == models.PossessionHome {
		b.WriteString(" ->")
	}
	fmt.Fprintf(&b, " %s %d - %s", r.style.Bold(g.Home.Name), g.Home.Score, g.TimeText)

	switch {
	case delta.Home > 0 && delta.Away == 0:
		if desc, ok := ScoringDescription(delta.Home); ok {
			b.WriteString(" | " + r.style.Underline(g.Home.Name+" "+desc))
		}
	case delta.Away > 0 && delta.Home == 0:
		if desc, ok := ScoringDescription(delta.Away); ok {
			b.WriteString(" | " + r.style.Underline(g.Away.Name+" "+desc))
		}
	case delta.IsZero():
		if g.DownDistance != nil {
			b.WriteString(" | " + *g.DownDistance)
		}
		if g.LastPlay != nil && !g.IsHalftime() {
			fmt.Fprintf(&b, " (Last play: %s)", *g.LastPlay)
		}
	}

	if g.Network != nil {
		fmt.Fprintf(&b, " [TV: %s]", *g.Network)
	}
	return b.String()
}

func venueText(v models.Venue) string {
	parts := make([]string, 0, 2)
	if v.City != "" {
		parts = append(parts, v.City)
	}
	if v.Region != nil {
		parts = append(parts, *v.Region)
	}
	return strings.Join(parts, ", ")
}
