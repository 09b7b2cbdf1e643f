package registry

import (
	"fmt"
	"sort"

	"github.com/fortuna/services/scorebot/internal/sports/college_football"
	"github.com/fortuna/services/scorebot/pkg/contracts"
)

// Registry manages available league modules
type Registry struct {
	modules map[string]contracts.LeagueModule
}

// New creates a new registry with all available leagues
func New() *Registry {
	r := &Registry{
		modules: make(map[string]contracts.LeagueModule),
	}

	r.Register(college_football.NewFBS())
	r.Register(college_football.NewFCS())

	return r
}

// Register adds a league module to the registry
func (r *Registry) Register(module contracts.LeagueModule) {
	r.modules[module.GetLeagueKey()] = module
}

// GetModule retrieves a league module by key
func (r *Registry) GetModule(leagueKey string) (contracts.LeagueModule, error) {
	module, ok := r.modules[leagueKey]
	if !ok {
		return nil, fmt.Errorf("league module not found: %s", leagueKey)
	}
	if !module.IsEnabled() {
		return nil, fmt.Errorf("league module disabled: %s", leagueKey)
	}
	return module, nil
}

// ForDivision resolves a configured division ("fbs", "fcs") to its module
func (r *Registry) ForDivision(division string) (contracts.LeagueModule, error) {
	return r.GetModule("college_football_" + division)
}

// AllLeagueKeys returns all registered league keys, sorted
func (r *Registry) AllLeagueKeys() []string {
	keys := make([]string, 0, len(r.modules))
	for key := range r.modules {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
