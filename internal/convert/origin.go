package convert

// Origin is a world-relative coordinate. The cell at Origin maps to
// command-space (1,1,1).
type Origin struct {
	X, Y, Z int
}

// FindOrigin selects the minimum-corner non-omitted cell in (z, x, y)
// lexicographic order. Returns the zero Origin if every
// cell is omitted.
func FindOrigin(g *Grid) Origin {
	count := g.Vol.Count()
	var best Origin
	found := false

	for i := 0; i < count; i++ {
		if _, ok := g.KeyAt(i); !ok {
			continue
		}
		x, y, z := g.Vol.Coord(i)
		if !found || less(z, x, y, best.Z, best.X, best.Y) {
			best = Origin{X: x, Y: y, Z: z}
			found = true
		}
	}
	return best
}

func less(z, x, y, bz, bx, by int) bool {
	if z != bz {
		return z < bz
	}
	if x != bx {
		return x < bx
	}
	return y < by
}
