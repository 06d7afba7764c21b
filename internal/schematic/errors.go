package schematic

import "errors"

// ErrUnknownDialect is returned when the root compound matches none of the
// classic/modern/states_wrapped rules and the fallback search finds
// neither a palette nor a block array.
var ErrUnknownDialect = errors.New("schematic: unknown dialect")

// ErrDimensionMismatch is returned when decoded cell data does not match
// width*height*length, or supporting arrays (AddBlocks, packed longs) are
// too short for the declared volume.
var ErrDimensionMismatch = errors.New("schematic: dimension mismatch")

// ErrUnsupportedEncoding is returned when a field has a name the loader
// recognises but a tag kind it does not support for that field.
var ErrUnsupportedEncoding = errors.New("schematic: unsupported encoding")
