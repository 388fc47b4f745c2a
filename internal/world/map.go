package world

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/cardclash/internal/telemetry"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 22

	minRegionSize = 6
	maxRegionSize = 14
	minLeafSize   = 9
)

// Map is the overworld: rock with grass regions joined by paths.
type Map struct {
	Width   int
	Height  int
	Tiles   [][]Tile
	Regions []Region
	rng     *rand.Rand
}

// NewMap creates a map filled with rock. A nil rng is seeded from the clock.
func NewMap(width, height int, rng *rand.Rand) *Map {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = TileRock
		}
	}
	return &Map{Width: width, Height: height, Tiles: tiles, rng: rng}
}

// Generate lays out regions by binary space partitioning and joins
// sibling subtrees with paths.
func (m *Map) Generate(ctx context.Context) {
	_, span := telemetry.Tracer("world").Start(ctx, "world.generate")
	defer span.End()
	start := time.Now()

	root := &leaf{x: 1, y: 1, width: m.Width - 2, height: m.Height - 2}
	m.split(root)
	m.placeRegions(root)
	m.join(root)

	span.SetAttributes(
		attribute.Int("world.width", m.Width),
		attribute.Int("world.height", m.Height),
		attribute.Int("world.region_count", len(m.Regions)),
		attribute.Int64("world.generation_ms", time.Since(start).Milliseconds()),
	)
}

// IsPassable returns true if the position can be walked on.
func (m *Map) IsPassable(x, y int) bool {
	return m.TileAt(x, y).IsPassable()
}

// TileAt returns the tile at the position; outside the map is rock.
func (m *Map) TileAt(x, y int) Tile {
	if !m.inBounds(x, y) {
		return TileRock
	}
	return m.Tiles[y][x]
}

// RegionAt returns the index of the region containing the position, or -1.
func (m *Map) RegionAt(x, y int) int {
	for i, r := range m.Regions {
		if r.Contains(x, y) {
			return i
		}
	}
	return -1
}

// Start returns the explorer's starting point: the centre of region 0, or
// the map centre when no region was placed.
func (m *Map) Start() (int, int) {
	if len(m.Regions) == 0 {
		return m.Width / 2, m.Height / 2
	}
	return m.Regions[0].Center()
}

// RandomPoint returns a random passable point inside region i.
func (m *Map) RandomPoint(i int) (int, int) {
	if i < 0 || i >= len(m.Regions) {
		return -1, -1
	}
	r := m.Regions[i]
	for attempt := 0; attempt < 100; attempt++ {
		x := r.X + m.rng.Intn(r.Width)
		y := r.Y + m.rng.Intn(r.Height)
		if m.IsPassable(x, y) {
			return x, y
		}
	}
	return r.Center()
}

func (m *Map) inBounds(x, y int) bool {
	return x >= 0 && x < m.Width && y >= 0 && y < m.Height
}

// interior excludes the one-tile rock border.
func (m *Map) interior(x, y int) bool {
	return x > 0 && x < m.Width-1 && y > 0 && y < m.Height-1
}

type leaf struct {
	x, y          int
	width, height int
	left, right   *leaf
	region        *Region
}

func (l *leaf) isLeaf() bool {
	return l.left == nil && l.right == nil
}

func (m *Map) split(l *leaf) {
	canCutX := l.width >= minLeafSize*2
	canCutY := l.height >= minLeafSize*2

	var horizontal bool
	switch {
	case canCutX && l.width > l.height:
		horizontal = false
	case canCutY:
		horizontal = true
	case canCutX:
		horizontal = false
	default:
		return
	}

	span := l.width
	if horizontal {
		span = l.height
	}
	hi := span - minLeafSize
	if hi <= minLeafSize {
		return
	}
	cut := minLeafSize + m.rng.Intn(hi-minLeafSize+1)

	if horizontal {
		l.left = &leaf{x: l.x, y: l.y, width: l.width, height: cut}
		l.right = &leaf{x: l.x, y: l.y + cut, width: l.width, height: l.height - cut}
	} else {
		l.left = &leaf{x: l.x, y: l.y, width: cut, height: l.height}
		l.right = &leaf{x: l.x + cut, y: l.y, width: l.width - cut, height: l.height}
	}
	m.split(l.left)
	m.split(l.right)
}

func (m *Map) placeRegions(l *leaf) {
	if l == nil {
		return
	}
	if !l.isLeaf() {
		m.placeRegions(l.left)
		m.placeRegions(l.right)
		return
	}

	w := minRegionSize + m.rng.Intn(min(maxRegionSize-minRegionSize+1, l.width-minRegionSize+1))
	h := minRegionSize + m.rng.Intn(min(maxRegionSize-minRegionSize+1, l.height-minRegionSize+1))
	w = min(w, l.width-2)
	h = min(h, l.height-2)
	if w < minRegionSize || h < minRegionSize {
		return
	}

	r := Region{
		X:      l.x + 1 + m.rng.Intn(l.width-w-1),
		Y:      l.y + 1 + m.rng.Intn(l.height-h-1),
		Width:  w,
		Height: h,
	}
	l.region = &r
	m.Regions = append(m.Regions, r)
	m.fill(r)
}

func (m *Map) fill(r Region) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if m.interior(x, y) {
				m.Tiles[y][x] = TileGrass
			}
		}
	}
}

// join connects one region from each side of every split.
func (m *Map) join(l *leaf) {
	if l == nil || l.isLeaf() {
		return
	}
	m.join(l.left)
	m.join(l.right)

	a, b := anyRegion(l.left), anyRegion(l.right)
	if a == nil || b == nil {
		return
	}
	x1, y1 := a.Center()
	x2, y2 := b.Center()
	if m.rng.Intn(2) == 0 {
		m.trail(x1, y1, x2, y1)
		m.trail(x2, y1, x2, y2)
	} else {
		m.trail(x1, y1, x1, y2)
		m.trail(x1, y2, x2, y2)
	}
}

func anyRegion(l *leaf) *Region {
	if l == nil {
		return nil
	}
	if l.region != nil {
		return l.region
	}
	if r := anyRegion(l.left); r != nil {
		return r
	}
	return anyRegion(l.right)
}

// trail carves a straight path; one of the axes must not change. Grass is
// left as it is.
func (m *Map) trail(x1, y1, x2, y2 int) {
	dx, dy := sign(x2-x1), sign(y2-y1)
	for x, y := x1, y1; ; x, y = x+dx, y+dy {
		if m.interior(x, y) && m.Tiles[y][x] == TileRock {
			m.Tiles[y][x] = TilePath
		}
		if x == x2 && y == y2 {
			return
		}
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
