package render

import "fmt"

// Style applies chat-network emphasis to text
type Style interface {
	Name() string
	Bold(s string) string
	Underline(s string) string
}

type plainStyle struct{}

func (plainStyle) Name() string              { return "plain" }
func (plainStyle) Bold(s string) string      { return s }
func (plainStyle) Underline(s string) string { return s }

// IRC control codes
type ircStyle struct{}

func (ircStyle) Name() string              { return "irc" }
func (ircStyle) Bold(s string) string      { return "\x02" + s + "\x02" }
func (ircStyle) Underline(s string) string { return "\x1f" + s + "\x1f" }

// Telegram legacy Markdown
type markdownStyle struct{}

func (markdownStyle) Name() string              { return "markdown" }
func (markdownStyle) Bold(s string) string      { return "*" + s + "*" }
func (markdownStyle) Underline(s string) string { return "_" + s + "_" }

var (
	Plain    Style = plainStyle{}
	IRC      Style = ircStyle{}
	Markdown Style = markdownStyle{}
)

// StyleByName returns the style configured as "plain", "irc" or "markdown"
func StyleByName(name string) (Style, error) {
	switch name {
	case "plain", "":
		return Plain, nil
	case "irc":
		return IRC, nil
	case "markdown":
		return Markdown, nil
	default:
		return nil, fmt.Errorf("unknown chat style: %s", name)
	}
}
