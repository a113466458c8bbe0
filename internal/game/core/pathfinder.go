package core

// FindPath returns the shortest path of tile indices from start to target,
// both ends included, using at most maxDist hops. Blocked tiles, Unused
// cells and tiles held by a player other than mover cannot be entered,
// except that the target itself may end a path. Among paths of equal length the first one
// found in DirectionVectors order wins.
//
// The result is empty when start == target, either endpoint is missing, or
// the target is not reachable within maxDist.
func FindPath(b *Board, start, target Coordinate, mover, maxDist int) []int {
	if start == target || maxDist <= 0 {
		return nil
	}
	startIdx, ok := b.IndexAt(start)
	if !ok {
		return nil
	}
	targetIdx, ok := b.IndexAt(target)
	if !ok {
		return nil
	}

	parent := map[int]int{startIdx: -1}
	depth := map[int]int{startIdx: 0}
	queue := []int{startIdx}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth[cur] >= maxDist {
			continue
		}
		for _, n := range b.tiles[cur].Coord.Neighbors() {
			nIdx, ok := b.lookup[n]
			if !ok {
				continue
			}
			if _, seen := parent[nIdx]; seen {
				continue
			}
			if nIdx != targetIdx && b.tiles[nIdx].Owner.IsHostileTo(mover) {
				continue
			}
			parent[nIdx] = cur
			depth[nIdx] = depth[cur] + 1
			if nIdx == targetIdx {
				return tracePath(parent, targetIdx)
			}
			queue = append(queue, nIdx)
		}
	}
	return nil
}

func tracePath(parent map[int]int, end int) []int {
	var rev []int
	for idx := end; idx != -1; idx = parent[idx] {
		rev = append(rev, idx)
	}
	path := make([]int, len(rev))
	for i, idx := range rev {
		path[len(rev)-1-i] = idx
	}
	return path
}

// ReachableSet returns the tile indices mover can reach from startIndex in
// 1..maxDist hops without crossing Blocked, Unused or enemy tiles, in BFS
// discovery order. The start tile is not included.
func ReachableSet(b *Board, startIndex, mover, maxDist int) []int {
	if !b.InBounds(startIndex) || maxDist <= 0 {
		return nil
	}
	depth := map[int]int{startIndex: 0}
	queue := []int{startIndex}
	var out []int

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth[cur] >= maxDist {
			continue
		}
		for _, n := range b.tiles[cur].Coord.Neighbors() {
			nIdx, ok := b.lookup[n]
			if !ok {
				continue
			}
			if _, seen := depth[nIdx]; seen {
				continue
			}
			if b.tiles[nIdx].Owner.IsHostileTo(mover) {
				continue
			}
			depth[nIdx] = depth[cur] + 1
			out = append(out, nIdx)
			queue = append(queue, nIdx)
		}
	}
	return out
}
