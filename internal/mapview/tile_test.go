package mapview

import "testing"

func TestTileIDInRange(t *testing.T) {
	tests := []struct {
		name string
		tile TileID
		want bool
	}{
		{"world tile", TileID{0, 0, 0}, true},
		{"zoom 2 corner", TileID{3, 3, 2}, true},
		{"zoom 2 x out", TileID{4, 0, 2}, false},
		{"zoom 2 y out", TileID{0, 4, 2}, false},
		{"zoom 19 max", TileID{1<<19 - 1, 1<<19 - 1, 19}, true},
		{"zoom 19 out", TileID{1 << 19, 0, 19}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tile.InRange(); got != tt.want {
				t.Errorf("InRange() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTilesPerAxis(t *testing.T) {
	tests := []struct {
		zoom uint8
		want uint32
	}{
		{0, 1},
		{1, 2},
		{2, 4},
		{10, 1024},
	}

	for _, tt := range tests {
		if got := TilesPerAxis(tt.zoom); got != tt.want {
			t.Errorf("TilesPerAxis(%d) = %d, want %d", tt.zoom, got, tt.want)
		}
	}
}

func TestTileIDNeighbors(t *testing.T) {
	center := TileID{X: 1, Y: 1, Zoom: 2}

	if n, ok := center.North(); !ok || n != (TileID{1, 0, 2}) {
		t.Errorf("North() = %v, %v", n, ok)
	}
	if s, ok := center.South(); !ok || s != (TileID{1, 2, 2}) {
		t.Errorf("South() = %v, %v", s, ok)
	}
	if w, ok := center.West(); !ok || w != (TileID{0, 1, 2}) {
		t.Errorf("West() = %v, %v", w, ok)
	}
	if e, ok := center.East(); !ok || e != (TileID{2, 1, 2}) {
		t.Errorf("East() = %v, %v", e, ok)
	}
}

func TestTileIDNeighborsAtEdges(t *testing.T) {
	if _, ok := (TileID{0, 0, 2}).North(); ok {
		t.Error("North() at top edge should not exist")
	}
	if _, ok := (TileID{0, 0, 2}).West(); ok {
		t.Error("West() at west edge should not exist")
	}
	if _, ok := (TileID{3, 3, 2}).South(); ok {
		t.Error("South() at bottom edge should not exist")
	}
	if _, ok := (TileID{3, 3, 2}).East(); ok {
		t.Error("East() at east edge should not exist")
	}

	// the single zoom 0 tile has no neighbors at all
	world := TileID{0, 0, 0}
	if _, ok := world.North(); ok {
		t.Error("world tile should have no north neighbor")
	}
	if _, ok := world.South(); ok {
		t.Error("world tile should have no south neighbor")
	}
	if _, ok := world.East(); ok {
		t.Error("world tile should have no east neighbor")
	}
	if _, ok := world.West(); ok {
		t.Error("world tile should have no west neighbor")
	}
}
