package ops

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

// Op is a bot command such as /start. Its result is sent back as Markdown.
type Op interface {
	Name() string
	Description() string
	Execute(ctx context.Context, args string) (string, error)
}

// Command is a name/description pair for the client's command menu.
type Command struct {
	Name        string
	Description string
}

// Telegram accepts 1-32 lowercase letters, digits and underscores.
var validName = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// Registry maps command names to ops. Names are matched without the
// leading slash and case-insensitively.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Op
	order []string
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{byKey: make(map[string]Op)}
}

// Register adds op under its name. Invalid and duplicate names are errors.
func (r *Registry) Register(op Op) error {
	key := normalize(op.Name())
	if !validName.MatchString(key) {
		return fmt.Errorf("invalid command name: %q", op.Name())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byKey[key]; dup {
		return fmt.Errorf("command already registered: %s", key)
	}
	r.byKey[key] = op
	r.order = append(r.order, key)
	return nil
}

// Get looks up a command, or returns nil.
func (r *Registry) Get(name string) Op {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byKey[normalize(name)]
}

// List returns all registered commands sorted by name.
func (r *Registry) List() []Op {
	r.mu.RLock()
	keys := slices.Clone(r.order)
	r.mu.RUnlock()

	slices.Sort(keys)
	out := make([]Op, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.Get(k))
	}
	return out
}

// Menu returns the commands in registration order, the order a client
// shows them in its menu.
func (r *Registry) Menu() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	menu := make([]Command, len(r.order))
	for i, k := range r.order {
		menu[i] = Command{Name: k, Description: r.byKey[k].Description()}
	}
	return menu
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
}
