package engine

import "sort"

// Layout renders the track with alive carts drawn as their markers. Cells
// where a crash happened during the last tick are drawn as 'X'.
func (s *Simulation) Layout() []string {
	lines := make([][]rune, s.grid.Height())
	for y := range lines {
		row := make([]rune, s.grid.RowLen(y))
		for x := range row {
			tile, _ := s.grid.TileAt(x, y)
			row[x] = tile.Rune()
		}
		lines[y] = row
	}

	for _, c := range s.carts {
		if c.Alive {
			lines[c.Position.Y][c.Position.X] = c.Facing.Marker()
		}
	}
	for _, pos := range s.lastCrash {
		lines[pos.Y][pos.X] = 'X'
	}

	out := make([]string, len(lines))
	for y, row := range lines {
		out[y] = string(row)
	}
	return out
}

// CountCarts counts the cart markers in a layout
func CountCarts(layout []string) int {
	count := 0
	for _, row := range layout {
		for _, ch := range row {
			if _, ok := DirectionFromMarker(ch); ok {
				count++
			}
		}
	}
	return count
}

// CountTiles counts the cells of each tile kind in a layout, treating cart
// markers as the straight track beneath them. Unknown characters are skipped.
func CountTiles(layout []string) map[Tile]int {
	counts := make(map[Tile]int)
	for _, row := range layout {
		for _, ch := range row {
			if tile, ok := tileFromRune(ch); ok {
				counts[tile]++
			}
		}
	}
	return counts
}

// AliveCarts returns the carts still on the track, in reading order
func AliveCarts(carts []Cart) []Cart {
	alive := make([]Cart, 0, len(carts))
	for _, c := range carts {
		if c.Alive {
			alive = append(alive, c)
		}
	}
	sort.Slice(alive, func(i, j int) bool {
		return alive[i].Position.Less(alive[j].Position)
	})
	return alive
}
