package convert

import (
	"fmt"
	"io"

	"github.com/blockforge/schem2bedrock/internal/schematic"
	"github.com/blockforge/schem2bedrock/internal/tagtree"
	"github.com/blockforge/schem2bedrock/internal/translate"
)

// Convert runs the full pipeline over a raw schematic blob:
// decompress, parse the tag tree, classify and decode the volume,
// translate, find the origin, and emit the merged command stream to sink.
//
// The sink is only written to after decoding and translation have fully
// succeeded; a failure at any earlier stage leaves sink untouched.
func Convert(data []byte, table translate.Table, legacy translate.LegacyTable, sink io.Writer) error {
	raw := schematic.Decompress(data)

	root, err := tagtree.Parse(raw)
	if err != nil {
		return fmt.Errorf("convert: parsing tag tree: %w", err)
	}

	vol, err := schematic.Load(root)
	if err != nil {
		return fmt.Errorf("convert: loading schematic: %w", err)
	}

	tr := translate.New(table, legacy)
	grid := &Grid{Vol: vol, Tr: tr}

	origin := FindOrigin(grid)
	if err := Emit(grid, origin, sink); err != nil {
		return fmt.Errorf("convert: writing command stream: %w", err)
	}
	return nil
}
