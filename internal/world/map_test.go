package world

import (
	"context"
	"math/rand"
	"testing"

	"github.com/samdwyer/cardclash/internal/gamedata"
)

func generate(seed int64) *Map {
	m := NewMap(DefaultWidth, DefaultHeight, rand.New(rand.NewSource(seed)))
	m.Generate(context.Background())
	return m
}

func TestMapReproducibility(t *testing.T) {
	m1, m2 := generate(12345), generate(12345)

	if len(m1.Regions) != len(m2.Regions) {
		t.Fatalf("Region count mismatch: %d != %d", len(m1.Regions), len(m2.Regions))
	}
	for i := range m1.Regions {
		if m1.Regions[i] != m2.Regions[i] {
			t.Errorf("Region %d mismatch: %+v != %+v", i, m1.Regions[i], m2.Regions[i])
		}
	}
	for y := 0; y < m1.Height; y++ {
		for x := 0; x < m1.Width; x++ {
			if m1.Tiles[y][x] != m2.Tiles[y][x] {
				t.Fatalf("Tile mismatch at (%d,%d): %q != %q", x, y, m1.Tiles[y][x], m2.Tiles[y][x])
			}
		}
	}
}

func TestMapDifferentSeeds(t *testing.T) {
	m1, m2 := generate(12345), generate(54321)

	identical := len(m1.Regions) == len(m2.Regions)
	for i := 0; identical && i < len(m1.Regions); i++ {
		if m1.Regions[i] != m2.Regions[i] {
			identical = false
		}
	}
	if identical {
		t.Error("Maps with different seeds should not be identical")
	}
}

func TestMapLayout(t *testing.T) {
	m := generate(7)

	if len(m.Regions) < 2 {
		t.Fatalf("Expected several regions, got %d", len(m.Regions))
	}
	for x := 0; x < m.Width; x++ {
		if m.IsPassable(x, 0) || m.IsPassable(x, m.Height-1) {
			t.Fatalf("Border at column %d is passable", x)
		}
	}
	for i, r := range m.Regions {
		for j := i + 1; j < len(m.Regions); j++ {
			if r.Intersects(m.Regions[j]) {
				t.Errorf("Regions %d and %d overlap", i, j)
			}
		}
		cx, cy := r.Center()
		if !m.IsPassable(cx, cy) {
			t.Errorf("Center of region %d is not passable", i)
		}
		if got := m.RegionAt(cx, cy); got != i {
			t.Errorf("RegionAt(center of %d) = %d", i, got)
		}
	}

	if !reachableFromStart(m) {
		t.Error("Some region cannot be reached from the start")
	}
	if m.TileAt(-1, 3) != TileRock {
		t.Error("Outside the map should read as rock")
	}
}

// reachableFromStart flood-fills from the start point and checks every
// region center is reached.
func reachableFromStart(m *Map) bool {
	sx, sy := m.Start()
	seen := map[[2]int]bool{{sx, sy}: true}
	queue := [][2]int{{sx, sy}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			n := [2]int{p[0] + d[0], p[1] + d[1]}
			if !seen[n] && m.IsPassable(n[0], n[1]) {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	for _, r := range m.Regions {
		cx, cy := r.Center()
		if !seen[[2]int{cx, cy}] {
			return false
		}
	}
	return true
}

func TestEncounterLevel(t *testing.T) {
	tests := []struct{ region, want int }{{0, 1}, {1, 1}, {2, 2}, {3, 2}, {6, 4}}
	for _, tt := range tests {
		if got := EncounterLevel(tt.region); got != tt.want {
			t.Errorf("EncounterLevel(%d) = %d, want %d", tt.region, got, tt.want)
		}
	}
}

func TestSpawnEncounters(t *testing.T) {
	creatures, err := gamedata.LoadCreatureRegistry()
	if err != nil {
		t.Fatalf("LoadCreatureRegistry: %v", err)
	}
	m := generate(99)
	encounters := m.SpawnEncounters(creatures, 2)
	if len(encounters) == 0 {
		t.Fatal("No encounters spawned")
	}

	sx, sy := m.Start()
	seen := map[[2]int]bool{}
	for _, e := range encounters {
		if e.Region == 0 {
			t.Errorf("Encounter %s spawned in the start region", e.Name())
		}
		if e.Level != EncounterLevel(e.Region) {
			t.Errorf("Encounter in region %d has level %d", e.Region, e.Level)
		}
		if !m.IsPassable(e.X, e.Y) {
			t.Errorf("Encounter at (%d,%d) is on rock", e.X, e.Y)
		}
		if e.X == sx && e.Y == sy {
			t.Error("Encounter on the start point")
		}
		key := [2]int{e.X, e.Y}
		if seen[key] {
			t.Errorf("Two encounters at (%d,%d)", e.X, e.Y)
		}
		seen[key] = true
		if e.Creature == nil {
			t.Error("Encounter without a creature")
		}
	}

	if got := m.SpawnEncounters(nil, 2); got != nil {
		t.Errorf("SpawnEncounters(nil) = %v, want nil", got)
	}
}
