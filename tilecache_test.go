package mapengine

import "testing"

func TestTileCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewTileCache(3, nil)
	if err != nil {
		t.Fatal(err)
	}
	k0, k1, k2, k3 := NewTileKey(1, 0, 0), NewTileKey(1, 1, 0), NewTileKey(1, 0, 1), NewTileKey(1, 1, 1)
	c.Put(newTile("src", k0, Rect{}))
	c.Put(newTile("src", k1, Rect{}))
	c.Put(newTile("src", k2, Rect{}))
	// Touch k0 so it is more recent than k1.
	c.Get("src", k0)
	// Inserting a 4th tile should evict k1 (oldest untouched), not k0.
	c.Put(newTile("src", k3, Rect{}))

	if _, ok := c.Get("src", k1); ok {
		t.Error("expected k1 to be evicted as least-recently-used")
	}
	if _, ok := c.Get("src", k0); !ok {
		t.Error("expected k0 to remain resident after being touched")
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
}

func TestTileCachePinnedNeverEvicted(t *testing.T) {
	c, err := NewTileCache(2, nil)
	if err != nil {
		t.Fatal(err)
	}
	k0, k1, k2 := NewTileKey(1, 0, 0), NewTileKey(1, 1, 0), NewTileKey(1, 0, 1)
	c.Put(newTile("src", k0, Rect{}))
	c.Pin("src", k0)
	c.Put(newTile("src", k1, Rect{}))
	c.Put(newTile("src", k2, Rect{}))

	if _, ok := c.Get("src", k0); !ok {
		t.Error("pinned tile k0 should never be evicted")
	}
	if c.Used() > c.budget && !c.OverBudget() {
		t.Error("OverBudget should report true when pins force over-budget residency")
	}
}

func TestTileCacheReleasesOnEvict(t *testing.T) {
	c, err := NewTileCache(1, nil)
	if err != nil {
		t.Fatal(err)
	}
	released := false
	tile := newTile("src", NewTileKey(1, 0, 0), Rect{})
	tile.Content = &fakeResource{onRelease: func() { released = true }}
	c.Put(tile)
	c.Put(newTile("src", NewTileKey(1, 1, 0), Rect{}))

	if !released {
		t.Error("evicted tile's GPUResource should be released")
	}
}

func TestTileCacheScopesKeyByDataSource(t *testing.T) {
	c, err := NewTileCache(10, nil)
	if err != nil {
		t.Fatal(err)
	}
	k := NewTileKey(1, 0, 0)
	raster := newTile("raster", k, Rect{})
	raster.Content = &fakeResource{}
	vector := newTile("vector", k, Rect{})
	vector.Content = &fakeResource{}
	c.Put(raster)
	c.Put(vector)

	got, ok := c.Get("raster", k)
	if !ok || got != raster {
		t.Error("expected raster's tile to remain resident under its own DataSource key")
	}
	got, ok = c.Get("vector", k)
	if !ok || got != vector {
		t.Error("expected vector's tile to remain resident under its own DataSource key, not overwritten by raster")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2 (same TileKey from two DataSources must not collide)", c.Len())
	}
}

func TestTileCacheClearBySource(t *testing.T) {
	c, err := NewTileCache(10, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Put(newTile("raster", NewTileKey(1, 0, 0), Rect{}))
	c.Put(newTile("raster", NewTileKey(1, 1, 0), Rect{}))
	c.Put(newTile("vector", NewTileKey(1, 0, 0), Rect{}))

	c.Clear("raster")

	if c.Len() != 1 {
		t.Errorf("Len() after Clear(raster) = %d, want 1", c.Len())
	}
	if _, ok := c.Get("vector", NewTileKey(1, 0, 0)); !ok {
		t.Error("Clear(raster) should not touch vector's tiles")
	}
}

func TestTileCacheClearAll(t *testing.T) {
	c, err := NewTileCache(10, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.Put(newTile("raster", NewTileKey(1, 0, 0), Rect{}))
	c.Put(newTile("vector", NewTileKey(1, 0, 0), Rect{}))

	c.ClearAll()

	if c.Len() != 0 {
		t.Errorf("Len() after ClearAll() = %d, want 0", c.Len())
	}
}

type fakeResource struct {
	onRelease func()
}

func (f *fakeResource) Release() {
	if f.onRelease != nil {
		f.onRelease()
	}
}

func TestNewTileCacheRejectsNonPositiveBudget(t *testing.T) {
	if _, err := NewTileCache(0, nil); err == nil {
		t.Error("expected error for zero budget")
	}
}
