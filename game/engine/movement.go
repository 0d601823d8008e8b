package engine

var steps = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// MoveTargets returns the empty tiles u can reach this turn. Movement may pass
// through friendly units but not through enemies.
func (gs *GameState) MoveTargets(u *Unit) []*Tile {
	if u == nil || u.tile == nil || u.moved || u.attacked {
		return nil
	}

	dist := map[*Tile]int{u.tile: 0}
	queue := []*Tile{u.tile}
	var targets []*Tile

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] == gs.config.MoveRange {
			continue
		}
		for _, s := range steps {
			next, ok := gs.Tile(cur.TileX+s[0], cur.TileY+s[1])
			if !ok {
				continue
			}
			if _, seen := dist[next]; seen {
				continue
			}
			if next.unit != nil && next.unit.Owner != u.Owner {
				continue
			}
			dist[next] = dist[cur] + 1
			queue = append(queue, next)
			if next.unit == nil {
				targets = append(targets, next)
			}
		}
	}

	sortTiles(targets)
	return targets
}

// AttackTargets returns the tiles holding enemies u can attack this turn,
// either directly or after moving next to them.
func (gs *GameState) AttackTargets(u *Unit) []*Tile {
	if u == nil || u.tile == nil || u.attacked {
		return nil
	}

	found := make(map[*Tile]bool)
	collect := func(from *Tile) {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				t, ok := gs.Tile(from.TileX+dx, from.TileY+dy)
				if ok && t.unit != nil && t.unit.Owner != u.Owner {
					found[t] = true
				}
			}
		}
	}

	collect(u.tile)
	for _, t := range gs.MoveTargets(u) {
		collect(t)
	}

	targets := make([]*Tile, 0, len(found))
	for t := range found {
		targets = append(targets, t)
	}
	sortTiles(targets)
	return targets
}

// ApproachTile picks the reachable tile closest to u from which target can be
// attacked. It returns nil when no such tile exists.
func (gs *GameState) ApproachTile(u *Unit, target *Tile) *Tile {
	var best *Tile
	bestDist := 0
	for _, t := range gs.MoveTargets(u) {
		if !Adjacent(t, target) {
			continue
		}
		d := ManhattanDistance(u.tile, t)
		if best == nil || d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

// SummonTargets returns the empty tiles next to any unit the player owns
func (gs *GameState) SummonTargets(slot PlayerSlot) []*Tile {
	p := gs.Player(slot)
	if p == nil {
		return nil
	}
	found := make(map[*Tile]bool)
	for _, u := range p.units {
		if u.tile == nil {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				t, ok := gs.Tile(u.tile.TileX+dx, u.tile.TileY+dy)
				if ok && t.unit == nil {
					found[t] = true
				}
			}
		}
	}
	targets := make([]*Tile, 0, len(found))
	for t := range found {
		targets = append(targets, t)
	}
	sortTiles(targets)
	return targets
}

// PreferYFirst reports whether a move from one tile to another should travel
// vertically first, i.e. when the horizontal-first corner is occupied.
func (gs *GameState) PreferYFirst(from, to *Tile) bool {
	if from.TileX == to.TileX || from.TileY == to.TileY {
		return false
	}
	corner, ok := gs.Tile(to.TileX, from.TileY)
	return ok && corner.unit != nil
}
