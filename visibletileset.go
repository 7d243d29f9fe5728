package mapengine

import "github.com/zyedidia/generic/mapset"

// VisibleTileSetStats is the per-frame, per-DataSource breakdown a MapView
// exposes for each of its registered sources: how many tiles are currently
// visible, how many of those (including ready fallback substitutes) are
// actually being rendered, and how many are still loading or only
// partially built.
type VisibleTileSetStats struct {
	VisibleTiles                int
	RenderedTiles               int
	NumTilesLoading             int
	NumTilesWithPartialGeometry int
}

// VisibleTileSet performs the per-frame frustum cull, fallback ancestor or
// descendant substitution, and dirty marking against a bounded TileCache,
// re-deriving the visible tile range from the camera's view bounds every
// frame and walking ancestors/descendants at a chosen quad-tree storage
// level when an exact tile is not yet resident. One VisibleTileSet exists
// per registered DataSource, since visibility and cache residency are
// computed independently per source.
type VisibleTileSet struct {
	source     string
	cache      *TileCache
	projection Projection
	level      int

	current mapset.Set[TileKey]
	dirty   mapset.Set[TileKey]

	stats VisibleTileSetStats
}

// NewVisibleTileSet returns a VisibleTileSet that culls against proj at the
// given storage level for source, evicting through cache.
func NewVisibleTileSet(source string, cache *TileCache, proj Projection, level int) *VisibleTileSet {
	return &VisibleTileSet{
		source:     source,
		cache:      cache,
		projection: proj,
		level:      level,
		current:    mapset.New[TileKey](),
		dirty:      mapset.New[TileKey](),
	}
}

// Recompute re-derives the visible set from the camera's world-space view
// rect, culling tiles whose world bounds do not intersect it (frustum
// cull), pins every visible tile in the cache, and falls back to an
// ancestor or descendant key when the exact-level tile is not yet resident.
//
// It returns the list of keys that should be requested from the Scheduler
// this frame (visible keys with no resident, ready tile), records newly
// visible / newly hidden keys in the dirty set ConsumeDirty drains, and
// refreshes Stats() for this source.
func (v *VisibleTileSet) Recompute(viewRect Rect) (needed []TileKey) {
	next := mapset.New[TileKey]()
	stats := VisibleTileSetStats{}

	span := 1 << uint(v.level)
	bounds := v.projection.TileWorldBounds(NewTileKey(0, 0, 0))
	tileW := bounds.Width / float64(span)
	tileH := bounds.Height / float64(span)
	if tileW <= 0 || tileH <= 0 {
		v.cache.UnpinAll()
		v.current = next
		v.stats = stats
		return nil
	}

	minCol := int(viewRect.X / tileW)
	maxCol := int((viewRect.X + viewRect.Width) / tileW)
	minRow := int(viewRect.Y / tileH)
	maxRow := int((viewRect.Y + viewRect.Height) / tileH)

	v.cache.UnpinAll()

	for col := minCol; col <= maxCol; col++ {
		for row := minRow; row <= maxRow; row++ {
			if col < 0 || row < 0 || col >= span || row >= span {
				continue
			}
			key := NewTileKey(v.level, col, row)
			tileBounds := v.projection.TileWorldBounds(key)
			if !tileBounds.Intersects(viewRect) {
				continue
			}
			next.Put(key)
			v.cache.Pin(v.source, key)
			stats.VisibleTiles++

			tile, ok := v.cache.Get(v.source, key)
			if ok && tile.State == TileReady {
				stats.RenderedTiles++
				if tile.Partial {
					stats.NumTilesWithPartialGeometry++
				}
				continue
			}
			if ok && tile.State == TileLoading {
				stats.NumTilesLoading++
			}
			if sub, ok := v.fallback(key); ok {
				v.cache.Pin(v.source, sub)
				stats.RenderedTiles++
			}
			needed = append(needed, key)
		}
	}

	v.current.Each(func(k TileKey) {
		if !next.Has(k) {
			v.dirty.Put(k)
		}
	})
	next.Each(func(k TileKey) {
		if !v.current.Has(k) {
			v.dirty.Put(k)
		}
	})
	v.current = next
	v.stats = stats
	return needed
}

// fallback searches ancestors (coarser, already-loaded parent tiles) first
// and then children (finer, already-loaded descendant tiles) for a
// substitute to draw while key's own fetch is in flight, matching the
// spec's fallback substitution rule.
func (v *VisibleTileSet) fallback(key TileKey) (TileKey, bool) {
	cur := key
	for i := 0; i < key.Level(); i++ {
		parent, ok := cur.Parent()
		if !ok {
			break
		}
		if tile, ok := v.cache.Get(v.source, parent); ok && tile.State == TileReady {
			return parent, true
		}
		cur = parent
	}
	if children, ok := key.Children(); ok {
		for _, c := range children {
			if tile, ok := v.cache.Get(v.source, c); ok && tile.State == TileReady {
				return c, true
			}
		}
	}
	return TileKey{}, false
}

// Visible reports whether key is in the current visible set.
func (v *VisibleTileSet) Visible(key TileKey) bool {
	return v.current.Has(key)
}

// Stats returns the breakdown computed by the most recent Recompute call.
func (v *VisibleTileSet) Stats() VisibleTileSetStats {
	return v.stats
}

// ConsumeDirty drains and returns the keys that changed visibility status
// since the last call, clearing the dirty set.
func (v *VisibleTileSet) ConsumeDirty() []TileKey {
	var keys []TileKey
	v.dirty.Each(func(k TileKey) {
		keys = append(keys, k)
	})
	v.dirty = mapset.New[TileKey]()
	return keys
}
