package aliases

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table maps nicknames and abbreviations to canonical team names.
// It is built once and only read afterwards.
type Table struct {
	canonical map[string]string   // normalized alias or name -> canonical name
	aliases   map[string][]string // canonical name -> aliases as written
}

// New builds a table from canonical name -> aliases. An alias claimed by
// two different teams is an error.
func New(entries map[string][]string) (*Table, error) {
	t := &Table{
		canonical: make(map[string]string),
		aliases:   make(map[string][]string, len(entries)),
	}

	// sorted so duplicate errors are deterministic
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			return nil, fmt.Errorf("empty team name in alias table")
		}
		if err := t.add(Normalize(name), name); err != nil {
			return nil, err
		}
		t.aliases[name] = []string{}
		for _, alias := range entries[raw] {
			key := Normalize(alias)
			if key == "" {
				continue
			}
			if err := t.add(key, name); err != nil {
				return nil, err
			}
			t.aliases[name] = append(t.aliases[name], alias)
		}
	}
	return t, nil
}

func (t *Table) add(key, name string) error {
	if existing, ok := t.canonical[key]; ok && existing != name {
		return fmt.Errorf("alias %q maps to both %q and %q", key, existing, name)
	}
	t.canonical[key] = name
	return nil
}

// Load reads a YAML file of the form
//
//	Ohio State: [osu, buckeyes]
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alias file: %w", err)
	}

	var entries map[string][]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse alias file: %w", err)
	}
	return New(entries)
}

// Empty returns a table that resolves nothing
func Empty() *Table {
	t, _ := New(nil)
	return t
}

// Resolve returns the canonical team name for a query. When the query is
// not in the table it returns the normalized query and false.
func (t *Table) Resolve(query string) (string, bool) {
	key := Normalize(query)
	if t != nil {
		if name, ok := t.canonical[key]; ok {
			return name, true
		}
	}
	return key, false
}

// Aliases returns the aliases registered for a canonical name
func (t *Table) Aliases(name string) []string {
	if t == nil {
		return nil
	}
	return t.aliases[name]
}

// Len returns the number of teams in the table
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.aliases)
}

// Normalize lowercases and collapses whitespace
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
