package models

import "time"

// AnnouncementKind names the transition that triggered an announcement
type AnnouncementKind string

const (
	KindGameStarted AnnouncementKind = "game_started"
	KindGameEnded   AnnouncementKind = "game_ended"
	KindHalftime    AnnouncementKind = "halftime"
	KindSecondHalf  AnnouncementKind = "second_half"
	KindScore       AnnouncementKind = "score"
)

// Announcement prefixes for phase changes
const (
	PrefixGameStarted = "Game Started: "
	PrefixGameEnded   = "Game Ended: "
)

// Announcement is an announceable change detected between two polls
type Announcement struct {
	Kind       AnnouncementKind `json:"kind"`
	GameID     string           `json:"game_id"`
	Prefix     string           `json:"prefix,omitempty"`
	Delta      ScoreDelta       `json:"delta"`
	Game       Game             `json:"game"`
	DetectedAt time.Time        `json:"detected_at"`
}
