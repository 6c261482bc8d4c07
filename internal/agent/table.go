package agent

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vovakirdan/neonsnake/internal/core"
)

// StateKey is the discrete encoding of an observation, one '0'/'1' per feature.
type StateKey string

// Valid reports whether the key has the expected length and alphabet.
func (k StateKey) Valid() bool {
	if len(k) != NumFeatures {
		return false
	}
	for i := 0; i < len(k); i++ {
		if k[i] != '0' && k[i] != '1' {
			return false
		}
	}
	return true
}

// Table is a sparse state-action value table. Reads of absent entries
// return 0; entries are created on first write.
type Table struct {
	values map[StateKey]map[core.Direction]float64
}

// Entry is a single stored value, used for export.
type Entry struct {
	State  StateKey
	Action core.Direction
	Value  float64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{values: make(map[StateKey]map[core.Direction]float64)}
}

// Get returns the value of (key, d), or 0 if never written.
func (t *Table) Get(key StateKey, d core.Direction) float64 {
	return t.values[key][d]
}

// Set stores the value of (key, d), creating the state row if needed.
func (t *Table) Set(key StateKey, d core.Direction, v float64) {
	row, ok := t.values[key]
	if !ok {
		row = make(map[core.Direction]float64, len(core.Directions))
		t.values[key] = row
	}
	row[d] = v
}

// MaxValue returns the largest stored value for key, or 0 if the state has
// no entries.
func (t *Table) MaxValue(key StateKey) float64 {
	row := t.values[key]
	if len(row) == 0 {
		return 0
	}
	first := true
	var best float64
	for _, v := range row {
		if first || v > best {
			best = v
			first = false
		}
	}
	return best
}

// Len returns the number of visited states.
func (t *Table) Len() int {
	return len(t.values)
}

// Entries returns every stored value ordered by state then direction.
func (t *Table) Entries() []Entry {
	keys := make([]StateKey, 0, len(t.values))
	for k := range t.values {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var entries []Entry
	for _, k := range keys {
		for _, d := range core.Directions {
			if v, ok := t.values[k][d]; ok {
				entries = append(entries, Entry{State: k, Action: d, Value: v})
			}
		}
	}
	return entries
}

// MarshalJSON encodes the table as {"state": {"UP": v, ...}}.
func (t *Table) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]float64, len(t.values))
	for k, row := range t.values {
		named := make(map[string]float64, len(row))
		for d, v := range row {
			named[d.String()] = v
		}
		out[string(k)] = named
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the MarshalJSON form. Unknown state keys or
// direction names are rejected so a damaged blob never loads partially.
func (t *Table) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("agent: decode table: %w", err)
	}

	values := make(map[StateKey]map[core.Direction]float64, len(raw))
	for k, named := range raw {
		key := StateKey(k)
		if !key.Valid() {
			return fmt.Errorf("agent: decode table: bad state key %q", k)
		}
		row := make(map[core.Direction]float64, len(named))
		for name, v := range named {
			d, err := core.ParseDirection(name)
			if err != nil {
				return fmt.Errorf("agent: decode table: state %q: %w", k, err)
			}
			row[d] = v
		}
		values[key] = row
	}

	t.values = values
	return nil
}
