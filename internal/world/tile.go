// Package world generates the overworld map and places creature encounters
// on it.
package world

// Tile represents a single map tile.
type Tile rune

const (
	// TileRock is impassable terrain between regions.
	TileRock Tile = '#'
	// TileGrass is open ground inside a region.
	TileGrass Tile = '.'
	// TilePath is a trail carved between two regions.
	TilePath Tile = ':'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	return t == TileGrass || t == TilePath
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
