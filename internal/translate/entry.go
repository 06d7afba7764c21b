// Package translate converts Java block descriptors to sanitised Bedrock
// descriptors using a state-driven mapping table.
package translate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Pair is a single ordered key/value entry, used wherever emission order
// must be deterministic and a plain
// Go map (unordered iteration) cannot be used.
type Pair struct {
	Key   string
	Value string
}

// OrderedPairs preserves the declaration order of a JSON object's keys.
// encoding/json's map decoding does not preserve order, so this type
// walks the token stream directly.
type OrderedPairs []Pair

func (o *OrderedPairs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return fmt.Errorf("translate: expected JSON object for ordered pairs")
	}

	var out OrderedPairs
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("translate: ordered pair key is not a string")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out = append(out, Pair{Key: key, Value: rawJSONToString(raw)})
	}
	*o = out
	return nil
}

// Get returns the value for key, in first-match order.
func (o OrderedPairs) Get(key string) (string, bool) {
	for _, p := range o {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// rawJSONToString renders a scalar JSON value (string, number, bool) as
// the bare text it would contribute to a state pair: quoted strings keep
// their content unquoted here, numbers/bools pass through as literal text.
func rawJSONToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// Remap substitutes a state value either by position (numeric input,
// e.g. a Java "level" 0..15) or by string key.
type Remap struct {
	List []string          // indexed by numeric input
	Map  map[string]string // keyed by string input
}

func (r *Remap) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		r.List = list
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err == nil {
		r.Map = m
		return nil
	}
	return fmt.Errorf("translate: remap is neither a list nor a string map")
}

// MappingNode is one level of the nested dispatch tree of a translation
// entry: a leaf carries a Bedrock name and/or local
// additions/removals/renames/remaps, and/or further Children keyed by the
// next identifier key's state value ("def" is the fallback key).
type MappingNode struct {
	Name      string            `json:"name,omitempty"`
	Additions OrderedPairs      `json:"additions,omitempty"`
	Removals  []string          `json:"removals,omitempty"`
	Renames   map[string]string `json:"renames,omitempty"`
	Remaps    map[string]Remap  `json:"remaps,omitempty"`
	Children  map[string]*MappingNode
}

var leafKeys = map[string]bool{
	"name": true, "additions": true, "removals": true, "renames": true, "remaps": true,
}

func (m *MappingNode) UnmarshalJSON(data []byte) error {
	// A bare string is a leaf carrying only a Bedrock name.
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		m.Name = name
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	isLeafObject := false
	for k := range raw {
		if leafKeys[k] {
			isLeafObject = true
			break
		}
	}

	if isLeafObject {
		type leaf struct {
			Name      string            `json:"name,omitempty"`
			Additions OrderedPairs      `json:"additions,omitempty"`
			Removals  []string          `json:"removals,omitempty"`
			Renames   map[string]string `json:"renames,omitempty"`
			Remaps    map[string]Remap  `json:"remaps,omitempty"`
		}
		var l leaf
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		m.Name, m.Additions, m.Removals, m.Renames, m.Remaps = l.Name, l.Additions, l.Removals, l.Renames, l.Remaps
		return nil
	}

	children := make(map[string]*MappingNode, len(raw))
	for k, v := range raw {
		child := &MappingNode{}
		if err := json.Unmarshal(v, child); err != nil {
			return err
		}
		children[k] = child
	}
	m.Children = children
	return nil
}

// TranslationEntry is the per-Java-block-name entry of the java-to-bedrock
// table.
type TranslationEntry struct {
	Name       string              `json:"name,omitempty"`
	Identifier []string            `json:"identifier,omitempty"`
	Mapping    *MappingNode        `json:"mapping,omitempty"`
	Defaults   OrderedPairs        `json:"defaults,omitempty"`
	Removals   []string            `json:"removals,omitempty"`
	Renames    map[string]string   `json:"renames,omitempty"`
	Remaps     map[string]Remap    `json:"remaps,omitempty"`
	Additions  OrderedPairs        `json:"additions,omitempty"`
	TileExtra  map[string][]string `json:"tile_extra,omitempty"`
}

// Table is the java-to-bedrock translation table: Java block name to
// TranslationEntry. Loaded once and shared read-only across conversions.
type Table map[string]*TranslationEntry

// LoadTable parses a java-to-bedrock table from its JSON representation.
func LoadTable(data []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("translate: loading table: %w", err)
	}
	return t, nil
}

// LegacyTable maps "id:data" classic-format keys to a Java descriptor
// string.
type LegacyTable map[string]string

// LoadLegacyTable parses a legacy-map table from its JSON representation.
func LoadLegacyTable(data []byte) (LegacyTable, error) {
	var t LegacyTable
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("translate: loading legacy table: %w", err)
	}
	return t, nil
}
