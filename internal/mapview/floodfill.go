package mapview

// maxVisibleTiles caps the flood fill. A 4K window at the smallest
// effective tile size needs about 150 tiles, so the cap only trips on
// degenerate input.
const maxVisibleTiles = 512

// visibleTiles flood-fills outward from the center tile, collecting
// every in-range tile whose rectangle overlaps the viewport.
func visibleTiles(view Rect, center TileID, centerRect Rect) map[TileID]Rect {
	out := make(map[TileID]Rect)
	if !center.InRange() || !view.Overlaps(centerRect) {
		return out
	}

	size := centerRect.Width()

	type entry struct {
		id   TileID
		rect Rect
	}
	queue := []entry{{center, centerRect}}
	visited := map[TileID]bool{center: true}

	for len(queue) > 0 && len(out) < maxVisibleTiles {
		cur := queue[0]
		queue = queue[1:]
		out[cur.id] = cur.rect

		neighbors := [4]struct {
			next func() (TileID, bool)
			d    Point
		}{
			{cur.id.North, Point{0, -size}},
			{cur.id.South, Point{0, size}},
			{cur.id.West, Point{-size, 0}},
			{cur.id.East, Point{size, 0}},
		}
		for _, n := range neighbors {
			id, ok := n.next()
			if !ok || visited[id] {
				continue
			}
			visited[id] = true
			rect := cur.rect.Translate(n.d)
			if view.Overlaps(rect) {
				queue = append(queue, entry{id, rect})
			}
		}
	}
	return out
}
