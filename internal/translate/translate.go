package translate

import (
	"fmt"
	"strconv"
	"strings"
)

// AirSet is the set of Java block names treated as empty space.
var AirSet = map[string]bool{
	"minecraft:air":      true,
	"minecraft:cave_air": true,
	"minecraft:void_air": true,
}

// InvalidSet is the set of Java block names that never appear as
// placeable content (piston internals) and are dropped like air.
var InvalidSet = map[string]bool{
	"minecraft:piston_head":   true,
	"minecraft:moving_block":  true,
	"minecraft:moving_piston": true,
}

func isAirOrInvalid(name string) bool {
	return AirSet[name] || InvalidSet[name]
}

// cacheEntry is either a resolved, sanitised descriptor or the "emit
// nothing" null marker.
type cacheEntry struct {
	value string
	null  bool
}

// Translator applies the java-to-bedrock table to palette descriptors,
// memoising by palette index. It is owned by a single
// conversion and holds no state shared across conversions.
type Translator struct {
	table       Table
	legacy      LegacyTable
	cache       map[uint32]cacheEntry
	legacyCache map[string]cacheEntry
}

// New creates a Translator over the given read-only tables.
func New(table Table, legacy LegacyTable) *Translator {
	return &Translator{
		table:       table,
		legacy:      legacy,
		cache:       make(map[uint32]cacheEntry),
		legacyCache: make(map[string]cacheEntry),
	}
}

// TranslateIndex translates the palette entry at paletteIndex, described
// by descriptor, memoising the result by paletteIndex. The second return
// value is false when the cell should be omitted from output (air,
// invalid, or explicitly translated to nothing).
func (t *Translator) TranslateIndex(paletteIndex uint32, descriptor string) (string, bool) {
	if e, ok := t.cache[paletteIndex]; ok {
		return e.value, !e.null
	}
	value, isNull := t.translate(descriptor)
	t.cache[paletteIndex] = cacheEntry{value: value, null: isNull}
	return value, !isNull
}

// TranslateLegacy translates a classic-dialect "id:data" key by first
// resolving it through the legacy table to a Java descriptor, then
// applying the same algorithm as TranslateIndex.
func (t *Translator) TranslateLegacy(key string) (string, bool) {
	if e, ok := t.legacyCache[key]; ok {
		return e.value, !e.null
	}

	var value string
	var isNull bool
	if javaDescriptor, ok := t.legacy[key]; ok {
		value, isNull = t.translate(javaDescriptor)
	} else {
		// No legacy-table entry for this id:data pair: the block cannot be
		// identified at all, so it is dropped rather than guessed at.
		isNull = true
	}

	t.legacyCache[key] = cacheEntry{value: value, null: isNull}
	return value, !isNull
}

// translate runs the full mapping algorithm against a single Java
// descriptor string: state cleanup, identifier dispatch, rename/remap,
// addition, and final sanitisation.
func (t *Translator) translate(descriptor string) (result string, isNull bool) {
	name, states, order := parseDescriptor(descriptor)
	name = normalizeName(name)

	if isAirOrInvalid(name) {
		return "", true
	}

	entry := t.table[name]
	if entry == nil {
		entry = t.table[stripNamespace(name)]
	}

	if entry != nil {
		for _, p := range entry.Defaults {
			if _, exists := states[p.Key]; !exists {
				states[p.Key] = p.Value
				order = append(order, p.Key)
			}
		}
		for _, k := range entry.Removals {
			delete(states, k)
			order = removeFromOrder(order, k)
		}
		for _, keys := range entry.TileExtra {
			for _, k := range keys {
				delete(states, k)
				order = removeFromOrder(order, k)
			}
		}
	}

	var chosenName string
	var localAdditions OrderedPairs
	var localRemovals []string
	localRenames := map[string]string{}
	localRemaps := map[string]Remap{}

	if entry != nil && len(entry.Identifier) > 0 && entry.Mapping != nil {
		current := entry.Mapping
		for _, idKey := range entry.Identifier {
			if current == nil || current.Children == nil {
				break
			}
			var child *MappingNode
			if v, ok := states[idKey]; ok {
				child = current.Children[v]
			}
			if child == nil {
				child = current.Children["def"]
			}
			if child == nil {
				break
			}
			if child.Name != "" {
				chosenName = child.Name
			}
			localAdditions = append(localAdditions, child.Additions...)
			localRemovals = append(localRemovals, child.Removals...)
			for k, v := range child.Renames {
				localRenames[k] = v
			}
			for k, v := range child.Remaps {
				localRemaps[k] = v
			}
			current = child
		}

		for _, idKey := range entry.Identifier {
			delete(states, idKey)
			order = removeFromOrder(order, idKey)
		}
	}

	for _, k := range localRemovals {
		delete(states, k)
		order = removeFromOrder(order, k)
	}

	if chosenName == "" {
		if entry != nil && entry.Name != "" {
			chosenName = entry.Name
		} else {
			chosenName = name
		}
	}

	combinedRenames := map[string]string{}
	if entry != nil {
		for k, v := range entry.Renames {
			combinedRenames[k] = v
		}
	}
	for k, v := range localRenames {
		combinedRenames[k] = v
	}

	combinedRemaps := map[string]Remap{}
	if entry != nil {
		for k, v := range entry.Remaps {
			combinedRemaps[k] = v
		}
	}
	for k, v := range localRemaps {
		combinedRemaps[k] = v
	}

	var combinedAdditions OrderedPairs
	if entry != nil {
		combinedAdditions = append(combinedAdditions, entry.Additions...)
	}
	combinedAdditions = append(combinedAdditions, localAdditions...)

	var pairs []string
	for _, k := range order {
		v, exists := states[k]
		if !exists {
			continue
		}
		renamedKey := k
		if rv, ok := combinedRenames[k]; ok {
			renamedKey = rv
		}
		if remap, ok := combinedRemaps[renamedKey]; ok {
			v = applyRemap(remap, v)
		} else if remap, ok := combinedRemaps[k]; ok {
			v = applyRemap(remap, v)
		}
		pairs = append(pairs, formatPair(renamedKey, v))
	}
	for _, p := range combinedAdditions {
		pairs = append(pairs, formatPair(p.Key, p.Value))
	}

	if isAirOrInvalid(normalizeName(chosenName)) {
		return "", true
	}

	final := chosenName
	if len(pairs) > 0 {
		final = final + "[" + strings.Join(pairs, ",") + "]"
	}

	return strings.TrimPrefix(final, "minecraft:"), false
}

func parseDescriptor(descriptor string) (name string, states map[string]string, order []string) {
	states = make(map[string]string)
	idx := strings.IndexByte(descriptor, '[')
	if idx < 0 {
		return descriptor, states, nil
	}
	name = descriptor[:idx]
	rest := strings.TrimSuffix(descriptor[idx+1:], "]")
	if rest == "" {
		return name, states, nil
	}
	for _, part := range strings.Split(rest, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		states[kv[0]] = kv[1]
		order = append(order, kv[0])
	}
	return name, states, order
}

func normalizeName(name string) string {
	if !strings.Contains(name, ":") {
		name = "minecraft:" + name
	}
	return strings.ToLower(name)
}

func stripNamespace(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func removeFromOrder(order []string, key string) []string {
	out := order[:0]
	for _, k := range order {
		if k != key {
			out = append(out, k)
		}
	}
	return out
}

func applyRemap(remap Remap, v string) string {
	if remap.List != nil {
		if idx, err := strconv.Atoi(v); err == nil && idx >= 0 && idx < len(remap.List) {
			return remap.List[idx]
		}
		return v
	}
	if remap.Map != nil {
		if nv, ok := remap.Map[v]; ok {
			return nv
		}
	}
	return v
}

func formatPair(key, value string) string {
	if isNumericOrBool(value) {
		return fmt.Sprintf("%q=%s", key, value)
	}
	return fmt.Sprintf("%q=%q", key, value)
}

func isNumericOrBool(v string) bool {
	if v == "true" || v == "false" {
		return true
	}
	_, err := strconv.ParseFloat(v, 64)
	return err == nil
}
