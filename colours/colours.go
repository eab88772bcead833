// Package colours resolves user supplied colour names against the static
// table shipped in colours.json.
package colours

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

//go:embed colours.json
var tableJSON []byte

// Record is the display value of a named colour.
type Record struct {
	Name  string   `json:"-"`
	Value string   `json:"value"` // hex, e.g. "#F0F8FF"
	RGB   [3]uint8 `json:"rgb"`
}

// Table maps normalized colour names to their records. It is never mutated after loading.
type Table map[string]Record

var defaultTable = mustLoadDefault()

func mustLoadDefault() Table {
	t, err := Parse(tableJSON)
	if err != nil {
		panic("Failed to parse colour table: " + err.Error())
	}
	return t
}

// Parse decodes a JSON object of name -> record.
func Parse(data []byte) (Table, error) {
	raw := map[string]Record{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("[colours Parse] %w", err)
	}
	t := make(Table, len(raw))
	for name, rec := range raw {
		key := Normalize(name)
		rec.Name = key
		t[key] = rec
	}
	return t, nil
}

// Default returns the embedded table.
func Default() Table {
	return defaultTable
}

// Normalize lowercases s and strips every whitespace rune.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

// Lookup normalizes name and returns the exact match, if any.
func (t Table) Lookup(name string) (Record, bool) {
	rec, ok := t[Normalize(name)]
	return rec, ok
}

// Names returns the table keys in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves name against the embedded table.
func Lookup(name string) (Record, bool) {
	return defaultTable.Lookup(name)
}
