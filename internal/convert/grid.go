// Package convert glues schematic decoding and translation into the final
// command stream: origin selection and the greedy box merger.
package convert

import (
	"fmt"

	"github.com/blockforge/schem2bedrock/internal/schematic"
	"github.com/blockforge/schem2bedrock/internal/translate"
)

// Grid adapts a decoded Volume plus a Translator into per-cell sanitised
// Bedrock keys, hiding the classic/modern dialect split behind one
// lookup.
type Grid struct {
	Vol *schematic.Volume
	Tr  *translate.Translator
}

// KeyAt returns the sanitised Bedrock descriptor for linear cell index i,
// or ok=false if the cell should be omitted from output.
func (g *Grid) KeyAt(i int) (key string, ok bool) {
	if g.Vol.Dialect == schematic.DialectClassic {
		id := g.Vol.LegacyBlocks[i]
		meta := g.Vol.LegacyData[i]
		return g.Tr.TranslateLegacy(fmt.Sprintf("%d:%d", id, meta))
	}
	idx := g.Vol.Cells[i]
	descriptor := g.Vol.Palette[idx]
	return g.Tr.TranslateIndex(idx, descriptor)
}
