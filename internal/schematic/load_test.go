package schematic

import (
	"errors"
	"testing"

	"github.com/blockforge/schem2bedrock/internal/tagtree"
)

func compoundTag(name string, c *tagtree.Compound) *tagtree.Tag {
	return &tagtree.Tag{Kind: tagtree.KindCompound, Name: name, Value: c}
}

func intTag(name string, v int32) *tagtree.Tag {
	return &tagtree.Tag{Kind: tagtree.KindInt, Name: name, Value: v}
}

func byteArrayTag(name string, v []byte) *tagtree.Tag {
	return &tagtree.Tag{Kind: tagtree.KindByteArray, Name: name, Value: v}
}

func stringTag(name string, v string) *tagtree.Tag {
	return &tagtree.Tag{Kind: tagtree.KindString, Name: name, Value: v}
}

func listTag(name string, elemKind tagtree.Kind, items []any) *tagtree.Tag {
	return &tagtree.Tag{Kind: tagtree.KindList, Name: name, Value: &tagtree.List{ElemKind: elemKind, Items: items}}
}

func TestLoadClassicSingleStone(t *testing.T) {
	rc := tagtree.NewCompound()
	rc.Set("Width", intTag("Width", 1))
	rc.Set("Height", intTag("Height", 1))
	rc.Set("Length", intTag("Length", 1))
	rc.Set("Blocks", byteArrayTag("Blocks", []byte{0x01}))
	rc.Set("Data", byteArrayTag("Data", []byte{0x00}))
	root := compoundTag("", rc)

	v, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Dialect != DialectClassic {
		t.Fatalf("dialect = %v, want classic", v.Dialect)
	}
	if v.Count() != 1 || v.LegacyBlocks[0] != 1 || v.LegacyData[0] != 0 {
		t.Fatalf("volume = %+v", v)
	}
}

func TestLoadClassicWithAddBlocks(t *testing.T) {
	rc := tagtree.NewCompound()
	rc.Set("Width", intTag("Width", 2))
	rc.Set("Height", intTag("Height", 1))
	rc.Set("Length", intTag("Length", 1))
	// cell 0: base 0xFF, high nibble 0x1 -> 0x1FF; cell 1: base 0x01, high nibble 0x0
	rc.Set("Blocks", byteArrayTag("Blocks", []byte{0xFF, 0x01}))
	rc.Set("AddBlocks", byteArrayTag("AddBlocks", []byte{0x10}))
	root := compoundTag("", rc)

	v, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.LegacyBlocks[0] != 0x1FF {
		t.Fatalf("LegacyBlocks[0] = %#x, want 0x1ff", v.LegacyBlocks[0])
	}
	if v.LegacyBlocks[1] != 0x001 {
		t.Fatalf("LegacyBlocks[1] = %#x, want 0x001", v.LegacyBlocks[1])
	}
}

func TestLoadModernAirSandwich(t *testing.T) {
	rc := tagtree.NewCompound()
	rc.Set("Size", listTag("Size", tagtree.KindInt, []any{int32(3), int32(1), int32(1)}))

	paletteList := []any{
		paletteEntry("minecraft:air", nil),
		paletteEntry("minecraft:stone", nil),
	}
	rc.Set("Palette", listTag("Palette", tagtree.KindCompound, paletteList))
	rc.Set("BlockData", byteArrayTag("BlockData", encodeLEB128([]uint32{0, 1, 0})))
	root := compoundTag("", rc)

	v, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Dialect != DialectModern {
		t.Fatalf("dialect = %v, want modern", v.Dialect)
	}
	if len(v.Palette) != 2 || v.Palette[0] != "minecraft:air" || v.Palette[1] != "minecraft:stone" {
		t.Fatalf("palette = %v", v.Palette)
	}
	want := []uint32{0, 1, 0}
	for i, w := range want {
		if v.Cells[i] != w {
			t.Fatalf("cell %d = %d, want %d", i, v.Cells[i], w)
		}
	}
}

func TestLoadStatesWrapped(t *testing.T) {
	blocks := tagtree.NewCompound()
	blocks.Set("Palette", listTag("Palette", tagtree.KindCompound, []any{paletteEntry("minecraft:stone", nil)}))
	blocks.Set("Data", byteArrayTag("Data", []byte{0}))

	rc := tagtree.NewCompound()
	rc.Set("Width", intTag("Width", 1))
	rc.Set("Height", intTag("Height", 1))
	rc.Set("Length", intTag("Length", 1))
	rc.Set("Blocks", compoundTag("Blocks", blocks))
	root := compoundTag("", rc)

	v, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Dialect != DialectStatesWrapped {
		t.Fatalf("dialect = %v, want states_wrapped", v.Dialect)
	}
	if v.Cells[0] != 0 || v.Palette[0] != "minecraft:stone" {
		t.Fatalf("volume = %+v", v)
	}
}

func TestLoadStatesWrappedPaletteAtRoot(t *testing.T) {
	blocks := tagtree.NewCompound()
	blocks.Set("Data", byteArrayTag("Data", []byte{0}))

	rc := tagtree.NewCompound()
	rc.Set("Width", intTag("Width", 1))
	rc.Set("Height", intTag("Height", 1))
	rc.Set("Length", intTag("Length", 1))
	rc.Set("Palette", listTag("Palette", tagtree.KindCompound, []any{paletteEntry("minecraft:stone", nil)}))
	rc.Set("Blocks", compoundTag("Blocks", blocks))
	root := compoundTag("", rc)

	v, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Dialect != DialectStatesWrapped {
		t.Fatalf("dialect = %v, want states_wrapped", v.Dialect)
	}
	if v.Palette[0] != "minecraft:stone" {
		t.Fatalf("palette = %v, want the root palette to be used", v.Palette)
	}
}

func TestLoadUnknownDialect(t *testing.T) {
	rc := tagtree.NewCompound()
	rc.Set("Foo", intTag("Foo", 1))
	root := compoundTag("", rc)

	_, err := Load(root)
	if err == nil {
		t.Fatalf("expected error for unrecognised root shape")
	}
}

func TestLoadNegativeDimensionIsDimensionMismatch(t *testing.T) {
	rc := tagtree.NewCompound()
	rc.Set("Width", intTag("Width", -1))
	rc.Set("Height", intTag("Height", 1))
	rc.Set("Length", intTag("Length", 1))
	rc.Set("Blocks", byteArrayTag("Blocks", []byte{0x01}))
	root := compoundTag("", rc)

	_, err := Load(root)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestLoadOversizedDimensionIsDimensionMismatch(t *testing.T) {
	rc := tagtree.NewCompound()
	rc.Set("Width", intTag("Width", 1<<30))
	rc.Set("Height", intTag("Height", 1<<30))
	rc.Set("Length", intTag("Length", 1<<30))
	rc.Set("Blocks", byteArrayTag("Blocks", []byte{0x01}))
	root := compoundTag("", rc)

	_, err := Load(root)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestLoadPaletteCompoundForm(t *testing.T) {
	rc := tagtree.NewCompound()
	rc.Set("Size", listTag("Size", tagtree.KindInt, []any{int32(1), int32(1), int32(1)}))

	palette := tagtree.NewCompound()
	palette.Set("minecraft:stone", intTag("minecraft:stone", 0))
	rc.Set("Palette", compoundTag("Palette", palette))
	rc.Set("Data", byteArrayTag("Data", []byte{0}))
	root := compoundTag("", rc)

	v, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Palette[0] != "minecraft:stone" {
		t.Fatalf("palette = %v, want [minecraft:stone]", v.Palette)
	}
}

// paletteEntry builds an unnamed compound value as found inside a list of
// palette entries: {Name, Properties?}.
func paletteEntry(name string, props map[string]string) any {
	c := tagtree.NewCompound()
	c.Set("Name", stringTag("Name", name))
	if props != nil {
		p := tagtree.NewCompound()
		for k, v := range props {
			p.Set(k, stringTag(k, v))
		}
		c.Set("Properties", compoundTag("Properties", p))
	}
	return c
}
