package world

// Region is a rectangular clearing of the overworld.
type Region struct {
	X, Y          int
	Width, Height int
}

// Center returns the center coordinates of the region.
func (r Region) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Contains returns true if the given point is inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersects returns true if this region overlaps another.
func (r Region) Intersects(other Region) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}
