package mapengine

// Projection maps between world-space meters and the normalized
// [0,1)x[0,1) tile grid space used by TileKey at a given level. The engine
// treats the actual map projection (Web Mercator, equirectangular, or a
// custom globe projection) as an external collaborator; mapengine only
// needs enough of it to cull tiles and place labels.
type Projection interface {
	// WorldToGrid converts a world-space point to normalized grid
	// coordinates in [0,1)x[0,1).
	WorldToGrid(wx, wy float64) (gx, gy float64)

	// GridToWorld is the inverse of WorldToGrid.
	GridToWorld(gx, gy float64) (wx, wy float64)

	// TileWorldBounds returns the world-space axis-aligned bounds covered
	// by the given tile key, used by the frustum cull.
	TileWorldBounds(key TileKey) Rect
}

// WebMercator is a flat, axis-aligned projection where the world spans
// [0, worldSize)x[0, worldSize) and each tile at level L covers
// worldSize/2^L world units per side. It is the default Projection and is
// sufficient for the frustum-cull and tile-bounds contracts the engine
// needs; it does not implement the actual spherical Mercator math, which
// is the coordinate-projection library's job per the module's scope.
type WebMercator struct {
	WorldSize float64
}

// NewWebMercator returns a WebMercator with the given world size in world
// units (e.g. meters, or arbitrary engine units).
func NewWebMercator(worldSize float64) WebMercator {
	return WebMercator{WorldSize: worldSize}
}

// WorldToGrid implements Projection.
func (p WebMercator) WorldToGrid(wx, wy float64) (gx, gy float64) {
	if p.WorldSize == 0 {
		return 0, 0
	}
	return wx / p.WorldSize, wy / p.WorldSize
}

// GridToWorld implements Projection.
func (p WebMercator) GridToWorld(gx, gy float64) (wx, wy float64) {
	return gx * p.WorldSize, gy * p.WorldSize
}

// TileWorldBounds implements Projection.
func (p WebMercator) TileWorldBounds(key TileKey) Rect {
	level, col, row := key.LevelColRow()
	span := float64(int(1) << uint(level))
	tileSize := p.WorldSize / span
	return Rect{
		X:      float64(col) * tileSize,
		Y:      float64(row) * tileSize,
		Width:  tileSize,
		Height: tileSize,
	}
}
