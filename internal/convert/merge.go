package convert

import (
	"fmt"
	"io"
)

// Emit partitions the volume into axis-aligned boxes of identically
// translated cells and writes one setblock/fill command per box.
// Expansion order (+X, then +Z, then +Y) is part of the contract:
// it determines output determinism and must not change.
func Emit(g *Grid, origin Origin, sink io.Writer) error {
	w, h, l := g.Vol.Width, g.Vol.Height, g.Vol.Length
	count := g.Vol.Count()
	visited := make([]bool, count)

	for i := 0; i < count; i++ {
		if visited[i] {
			continue
		}
		key, ok := g.KeyAt(i)
		if !ok {
			continue
		}

		x0, y0, z0 := g.Vol.Coord(i)

		x1 := x0
		for x1+1 < w {
			ni := g.Vol.Index(x1+1, y0, z0)
			if visited[ni] {
				break
			}
			k, ok := g.KeyAt(ni)
			if !ok || k != key {
				break
			}
			x1++
		}

		z1 := z0
	expandZ:
		for z1+1 < l {
			nz := z1 + 1
			for xx := x0; xx <= x1; xx++ {
				ni := g.Vol.Index(xx, y0, nz)
				if visited[ni] {
					break expandZ
				}
				k, ok := g.KeyAt(ni)
				if !ok || k != key {
					break expandZ
				}
			}
			z1++
		}

		y1 := y0
	expandY:
		for y1+1 < h {
			ny := y1 + 1
			for zz := z0; zz <= z1; zz++ {
				for xx := x0; xx <= x1; xx++ {
					ni := g.Vol.Index(xx, ny, zz)
					if visited[ni] {
						break expandY
					}
					k, ok := g.KeyAt(ni)
					if !ok || k != key {
						break expandY
					}
				}
			}
			y1++
		}

		for yy := y0; yy <= y1; yy++ {
			for zz := z0; zz <= z1; zz++ {
				for xx := x0; xx <= x1; xx++ {
					visited[g.Vol.Index(xx, yy, zz)] = true
				}
			}
		}

		if err := writeBox(sink, origin, x0, y0, z0, x1, y1, z1, key); err != nil {
			return err
		}
	}
	return nil
}

func writeBox(sink io.Writer, origin Origin, x0, y0, z0, x1, y1, z1 int, key string) error {
	rx1, ry1, rz1 := x0-origin.X+1, y0-origin.Y+1, z0-origin.Z+1
	if x0 == x1 && y0 == y1 && z0 == z1 {
		_, err := fmt.Fprintf(sink, "setblock ~%d ~%d ~%d %s\n", rx1, ry1, rz1, key)
		return err
	}
	rx2, ry2, rz2 := x1-origin.X+1, y1-origin.Y+1, z1-origin.Z+1
	_, err := fmt.Fprintf(sink, "fill ~%d ~%d ~%d ~%d ~%d ~%d %s\n", rx1, ry1, rz1, rx2, ry2, rz2, key)
	return err
}
