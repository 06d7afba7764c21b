package schematic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blockforge/schem2bedrock/internal/tagtree"
)

// Load classifies root (the parsed tag tree of a decompressed schematic)
// as one of the four dialects and materialises a Volume. Classification is
// first-match-wins: states_wrapped, then modern, then classic, then a
// fallback search of root and Blocks for a (palette, block-array) pair.
func Load(root *tagtree.Tag) (*Volume, error) {
	if root == nil || root.Kind != tagtree.KindCompound {
		return nil, fmt.Errorf("%w: root is not a compound", ErrUnknownDialect)
	}
	rc, ok := root.Value.(*tagtree.Compound)
	if !ok {
		return nil, fmt.Errorf("%w: root is not a compound", ErrUnknownDialect)
	}

	if wrapped, ok := rc.GetCompound("Schematic"); ok {
		rc = wrapped
	}

	if blocks, ok := rc.GetCompound("Blocks"); ok && blocks.Has("Palette", "BlockStatePalette", "BlockStates", "BlockData", "Data") {
		return loadModernLike(rc, blocks, DialectStatesWrapped)
	}

	if rc.Has("Palette", "BlockStatePalette") && rc.Has("BlockStates", "BlockData", "Blocks", "Data") {
		return loadModernLike(rc, rc, DialectModern)
	}

	if rc.HasAll("Width", "Height", "Length") && rc.Has("Blocks", "Data", "BlockData") {
		return loadClassic(rc)
	}

	// Fallback: search root and, if present, its Blocks child for a
	// (palette, block-array) pair.
	candidates := []*tagtree.Compound{rc}
	if blocks, ok := rc.GetCompound("Blocks"); ok {
		candidates = append(candidates, blocks)
	}
	for _, cand := range candidates {
		if cand.Has("Palette", "BlockStatePalette") && cand.Has("BlockStates", "BlockData", "Blocks", "Data") {
			return loadModernLike(rc, cand, DialectFallback)
		}
	}
	return nil, ErrUnknownDialect
}

func anyToInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}

// maxVolumeCells bounds width*height*length to what a 50 MB input can
// plausibly describe. It also keeps the product well clear of overflow
// before it's ever used to size an allocation.
const maxVolumeCells = 30_000_000

func dimensions(rc *tagtree.Compound) (w, h, l int, err error) {
	if sizeList, ok := rc.GetList("Size"); ok && len(sizeList.Items) >= 3 {
		wi, ok1 := anyToInt64(sizeList.Items[0])
		hi, ok2 := anyToInt64(sizeList.Items[1])
		li, ok3 := anyToInt64(sizeList.Items[2])
		if ok1 && ok2 && ok3 {
			return validateDimensions(wi, hi, li)
		}
	}

	wi, ok1 := rc.GetInt("Width")
	hi, ok2 := rc.GetInt("Height")
	li, ok3 := rc.GetInt("Length")
	if !ok1 || !ok2 || !ok3 {
		return 0, 0, 0, fmt.Errorf("%w: missing dimensions", ErrDimensionMismatch)
	}
	return validateDimensions(wi, hi, li)
}

// validateDimensions rejects negative or implausibly large dimensions
// before they ever reach a `make([]T, count)` call. A malformed schematic
// with a negative or huge Width/Height/Length tag must fail with
// ErrDimensionMismatch, not panic the decoder. The running product is
// checked one factor at a time (rather than multiplied first) since three
// individually in-budget dimensions can still overflow int64 once
// multiplied together.
func validateDimensions(wi, hi, li int64) (w, h, l int, err error) {
	if wi < 0 || hi < 0 || li < 0 {
		return 0, 0, 0, fmt.Errorf("%w: negative dimension (%d,%d,%d)", ErrDimensionMismatch, wi, hi, li)
	}
	if wi > maxVolumeCells || hi > maxVolumeCells || li > maxVolumeCells {
		return 0, 0, 0, fmt.Errorf("%w: dimension too large (%d,%d,%d)", ErrDimensionMismatch, wi, hi, li)
	}
	product := int64(1)
	for _, d := range [3]int64{wi, hi, li} {
		if d != 0 && product > maxVolumeCells/d {
			return 0, 0, 0, fmt.Errorf("%w: volume %d*%d*%d exceeds budget", ErrDimensionMismatch, wi, hi, li)
		}
		product *= d
	}
	if product > maxVolumeCells {
		return 0, 0, 0, fmt.Errorf("%w: volume %d*%d*%d exceeds budget", ErrDimensionMismatch, wi, hi, li)
	}
	return int(wi), int(hi), int(li), nil
}

// buildDescriptor assembles the canonical "minecraft:<name>[k=v,...]" form
// from a block name and an optional Properties compound, with keys sorted
// ascending.
func buildDescriptor(name string, props *tagtree.Compound) string {
	if !strings.Contains(name, ":") {
		name = "minecraft:" + name
	}
	if props == nil || props.Len() == 0 {
		return name
	}
	keys := props.Names()
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := props.GetString(k)
		parts = append(parts, k+"="+v)
	}
	return name + "[" + strings.Join(parts, ",") + "]"
}

// loadPalette materialises a palette from either the list-of-compounds
// shape or the descriptor-string-to-index compound shape.
func loadPalette(scope *tagtree.Compound) ([]string, error) {
	t, ok := scope.Get("Palette")
	if !ok {
		t, ok = scope.Get("BlockStatePalette")
	}
	if !ok {
		return nil, fmt.Errorf("%w: no palette field present", ErrUnknownDialect)
	}

	switch t.Kind {
	case tagtree.KindList:
		list, ok := t.Value.(*tagtree.List)
		if !ok || list.ElemKind != tagtree.KindCompound {
			return nil, fmt.Errorf("%w: palette list elements are not compounds", ErrUnsupportedEncoding)
		}
		out := make([]string, len(list.Items))
		for i, item := range list.Items {
			entry, ok := item.(*tagtree.Compound)
			if !ok {
				return nil, fmt.Errorf("%w: palette list element %d is not a compound", ErrUnsupportedEncoding, i)
			}
			name, ok := entry.GetString("Name")
			if !ok {
				return nil, fmt.Errorf("%w: palette list element %d has no Name", ErrUnsupportedEncoding, i)
			}
			props, _ := entry.GetCompound("Properties")
			out[i] = buildDescriptor(name, props)
		}
		return out, nil

	case tagtree.KindCompound:
		mapping, ok := t.Value.(*tagtree.Compound)
		if !ok {
			return nil, fmt.Errorf("%w: palette is not a compound", ErrUnsupportedEncoding)
		}
		maxIdx := -1
		entries := make(map[int]string, mapping.Len())
		for _, name := range mapping.Names() {
			idx, ok := mapping.GetInt(name)
			if !ok {
				return nil, fmt.Errorf("%w: palette entry %q has no integer index", ErrUnsupportedEncoding, name)
			}
			entries[int(idx)] = name
			if int(idx) > maxIdx {
				maxIdx = int(idx)
			}
		}
		out := make([]string, maxIdx+1)
		for idx, name := range entries {
			out[idx] = name
		}
		return out, nil

	default:
		return nil, fmt.Errorf("%w: palette is neither a list nor a compound", ErrUnsupportedEncoding)
	}
}

// decodeRawOrLEB decodes a cell-index field that may be a raw int32 array
// (copy), a raw byte array of exactly `count` entries (widen), or
// otherwise a LEB128 varint stream.
func decodeRawOrLEB(t *tagtree.Tag, count int) ([]uint32, error) {
	switch t.Kind {
	case tagtree.KindIntArray:
		arr, _ := t.Value.([]int32)
		if len(arr) != count {
			return nil, fmt.Errorf("%w: int array has %d entries, want %d", ErrDimensionMismatch, len(arr), count)
		}
		out := make([]uint32, count)
		for i, v := range arr {
			out[i] = uint32(v)
		}
		return out, nil

	case tagtree.KindByteArray:
		b, _ := t.Value.([]byte)
		if len(b) == count {
			out := make([]uint32, count)
			for i, v := range b {
				out[i] = uint32(v)
			}
			return out, nil
		}
		return decodeLEB128(b, count)

	default:
		return nil, fmt.Errorf("%w: cell field is neither an int array nor a byte array", ErrUnsupportedEncoding)
	}
}

func loadModernLike(rc, scope *tagtree.Compound, dialect Dialect) (*Volume, error) {
	w, h, l, err := dimensions(rc)
	if err != nil {
		return nil, err
	}
	count := w * h * l

	// Some writers keep the palette at the root while the cell data sits
	// under Blocks; fall back to the root when the inner scope has none.
	paletteScope := scope
	if !scope.Has("Palette", "BlockStatePalette") && rc.Has("Palette", "BlockStatePalette") {
		paletteScope = rc
	}
	palette, err := loadPalette(paletteScope)
	if err != nil {
		return nil, err
	}

	var cells []uint32
	switch {
	case scope.Has("BlockStates"):
		t, _ := scope.Get("BlockStates")
		if t.Kind != tagtree.KindLongArray {
			return nil, fmt.Errorf("%w: BlockStates is not a long array", ErrUnsupportedEncoding)
		}
		longs, _ := t.Value.([]int64)
		bpe := bitsPerEntry(len(palette))
		cells, err = decodePacked(longs, count, bpe)

	case scope.Has("BlockData"):
		t, _ := scope.Get("BlockData")
		if t.Kind != tagtree.KindByteArray {
			return nil, fmt.Errorf("%w: BlockData is not a byte array", ErrUnsupportedEncoding)
		}
		b, _ := t.Value.([]byte)
		cells, err = decodeLEB128(b, count)

	case scope.Has("Blocks"):
		t, _ := scope.Get("Blocks")
		cells, err = decodeRawOrLEB(t, count)

	case scope.Has("Data"):
		t, _ := scope.Get("Data")
		cells, err = decodeRawOrLEB(t, count)

	default:
		return nil, fmt.Errorf("%w: no recognised block storage field", ErrUnknownDialect)
	}
	if err != nil {
		return nil, err
	}

	for _, idx := range cells {
		if int(idx) >= len(palette) {
			return nil, fmt.Errorf("%w: cell references palette index %d, palette has %d entries", ErrDimensionMismatch, idx, len(palette))
		}
	}

	return &Volume{
		Width: w, Height: h, Length: l,
		Dialect: dialect,
		Palette: palette,
		Cells:   cells,
	}, nil
}

func loadClassic(rc *tagtree.Compound) (*Volume, error) {
	w, h, l, err := dimensions(rc)
	if err != nil {
		return nil, err
	}
	count := w * h * l

	idBytes, ok := rc.GetByteArray("Blocks")
	if !ok {
		idBytes, ok = rc.GetByteArray("BlockData")
	}
	if !ok {
		return nil, fmt.Errorf("%w: classic schematic has no block id array", ErrUnknownDialect)
	}
	if len(idBytes) != count {
		return nil, fmt.Errorf("%w: Blocks has %d entries, want %d", ErrDimensionMismatch, len(idBytes), count)
	}

	addBytes, hasAdd := rc.GetByteArray("AddBlocks")
	if !hasAdd {
		addBytes, hasAdd = rc.GetByteArray("Add")
	}
	if hasAdd && len(addBytes) < (count+1)/2 {
		return nil, fmt.Errorf("%w: AddBlocks has %d bytes, need at least %d", ErrDimensionMismatch, len(addBytes), (count+1)/2)
	}

	dataBytes, hasData := rc.GetByteArray("Data")
	if hasData && len(dataBytes) != count {
		return nil, fmt.Errorf("%w: Data has %d entries, want %d", ErrDimensionMismatch, len(dataBytes), count)
	}

	legacyBlocks := make([]uint16, count)
	legacyData := make([]byte, count)
	for i := 0; i < count; i++ {
		base := uint16(idBytes[i])
		var addNibble uint16
		if hasAdd {
			b := addBytes[i/2]
			if i%2 == 0 {
				addNibble = uint16(b>>4) & 0xF
			} else {
				addNibble = uint16(b) & 0xF
			}
		}
		legacyBlocks[i] = (addNibble << 8) | base
		if hasData {
			legacyData[i] = dataBytes[i] & 0x0F
		}
	}

	return &Volume{
		Width: w, Height: h, Length: l,
		Dialect:      DialectClassic,
		LegacyBlocks: legacyBlocks,
		LegacyData:   legacyData,
	}, nil
}
