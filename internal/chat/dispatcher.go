package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fortuna/services/scorebot/internal/logging"
	"github.com/fortuna/services/scorebot/pkg/contracts"
	"github.com/sirupsen/logrus"
)

// ErrUnknownCommand is returned for commands nobody registered
var ErrUnknownCommand = errors.New("unknown command")

// Dispatcher is the command registration table. Chat adapters parse
// incoming text with ParseCommand and hand the result to Dispatch.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]contracts.CommandHandler
	prefix   string
	logger   *logrus.Entry
}

// NewDispatcher creates a dispatcher for commands starting with prefix
func NewDispatcher(prefix string) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]contracts.CommandHandler),
		prefix:   prefix,
		logger:   logging.WithComponent("dispatcher"),
	}
}

// Register implements contracts.CommandRegistrar
func (d *Dispatcher) Register(name string, handler contracts.CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[strings.ToLower(name)] = handler
}

// Commands returns registered command names, sorted
func (d *Dispatcher) Commands() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseCommand splits "/score ohio state" into name and args. A trailing
// "@botname" on the command word is dropped.
func (d *Dispatcher) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)
	if d.prefix == "" || !strings.HasPrefix(text, d.prefix) {
		return "", nil, false
	}

	fields := strings.Fields(strings.TrimPrefix(text, d.prefix))
	if len(fields) == 0 {
		return "", nil, false
	}

	name := fields[0]
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), fields[1:], true
}

// Dispatch runs the handler for cmd and sends its reply through client
func (d *Dispatcher) Dispatch(ctx context.Context, client contracts.ChatClient, cmd contracts.Command) error {
	d.mu.RLock()
	handler, ok := d.handlers[strings.ToLower(cmd.Name)]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Name)
	}

	reply := handler(ctx, cmd)
	if reply.Text == "" || reply.Target == "" {
		return nil
	}

	d.logger.WithFields(logrus.Fields{
		"command": cmd.Name,
		"sender":  cmd.SenderName,
		"target":  reply.Target,
	}).Debug("Replying to command")

	if err := client.SendMessage(ctx, reply.Target, reply.Text); err != nil {
		return fmt.Errorf("replying to %s: %w", cmd.Name, err)
	}
	return nil
}
