package contracts

import "context"

// ChatClient sends text to a channel or a user
type ChatClient interface {
	SendMessage(ctx context.Context, target string, text string) error
}

// Command is one user-issued chat command
type Command struct {
	Name       string   // "score"
	Args       []string // trailing words
	Sender     string   // direct-message target of the issuing user
	SenderName string   // display name of the issuing user
	ReplyTo    string   // channel (or user) the command arrived on
}

// Reply is the response to a command
type Reply struct {
	Target string
	Text   string
}

// CommandHandler answers a command. An empty reply text sends nothing.
type CommandHandler func(ctx context.Context, cmd Command) Reply

// CommandRegistrar accepts command handlers by name
type CommandRegistrar interface {
	Register(name string, handler CommandHandler)
}

// TickHandler is invoked on every scheduler tick
type TickHandler interface {
	Tick(ctx context.Context)
}
