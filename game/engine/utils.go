package engine

import "sort"

// ManhattanDistance calculates the Manhattan distance between two tiles
func ManhattanDistance(from, to *Tile) int {
	return abs(from.TileX-to.TileX) + abs(from.TileY-to.TileY)
}

// Adjacent reports whether two distinct tiles touch, diagonals included
func Adjacent(a, b *Tile) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	return abs(a.TileX-b.TileX) <= 1 && abs(a.TileY-b.TileY) <= 1
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sortedUnits(m map[int]*Unit) []*Unit {
	units := make([]*Unit, 0, len(m))
	for _, u := range m {
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units
}

func sortTiles(tiles []*Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].TileX != tiles[j].TileX {
			return tiles[i].TileX < tiles[j].TileX
		}
		return tiles[i].TileY < tiles[j].TileY
	})
}
