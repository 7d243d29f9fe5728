package mapengine

// Poi is a single point-of-interest: a labeled, optionally iconed feature
// anchored to a world-space point on a specific tile.
type Poi struct {
	ID       string
	Tile     TileKey
	X, Y     float64 // world-space anchor
	Name     string
	IconName string
	IconSize Vec2 // screen-space icon size; zero means use the engine default
	Priority int  // lower draws/wins contested screen space first

	// MinZoom/MaxZoom bound the zoom levels at which the icon is eligible
	// to be shown; MaxZoom <= 0 means unbounded above. LabelPlacement
	// requires zoom to fall within both this range and any paired
	// TextElement's own range before it places either the icon or the text.
	MinZoom, MaxZoom float64

	// TextIsOptional allows the icon to place without its paired text
	// label when the label alone would lose the collision check.
	TextIsOptional bool
	// IconIsOptional allows the paired text label to place without its
	// icon when the icon alone would lose the collision check.
	IconIsOptional bool

	// ShieldGroupIndex groups POIs that share a single line-marker shield
	// (e.g. repeated route-number markers along one road). Among POIs
	// sharing a non-zero index, only the first in candidate order gets a
	// placement attempt each frame; the rest are hidden. Zero means the POI
	// does not participate in a shield group.
	ShieldGroupIndex int

	// FeatureID identifies the source feature, independent of Name.
	FeatureID string
	// UserData carries an opaque embedder-defined payload through
	// placement untouched.
	UserData interface{}
}

// InZoomRange reports whether zoom falls within the icon's [MinZoom,
// MaxZoom]; a MaxZoom <= 0 is treated as unbounded above.
func (p *Poi) InZoomRange(zoom float64) bool {
	if zoom < p.MinZoom {
		return false
	}
	if p.MaxZoom > 0 && zoom > p.MaxZoom {
		return false
	}
	return true
}

// PoiManager owns the POIs contributed by resident tiles and indexes them
// by tile so the label placement engine can gather exactly the candidates
// belonging to currently-visible tiles each frame.
type PoiManager struct {
	byTile map[TileKey][]*Poi
	byID   map[string]*Poi
}

// NewPoiManager returns an empty PoiManager.
func NewPoiManager() *PoiManager {
	return &PoiManager{
		byTile: make(map[TileKey][]*Poi),
		byID:   make(map[string]*Poi),
	}
}

// AddTilePois registers the POIs decoded for a tile, replacing any set
// previously registered for that key.
func (m *PoiManager) AddTilePois(key TileKey, pois []*Poi) {
	m.RemoveTilePois(key)
	m.byTile[key] = pois
	for _, p := range pois {
		m.byID[p.ID] = p
	}
}

// RemoveTilePois drops the POIs associated with key, e.g. when the tile is
// evicted from the cache.
func (m *PoiManager) RemoveTilePois(key TileKey) {
	for _, p := range m.byTile[key] {
		delete(m.byID, p.ID)
	}
	delete(m.byTile, key)
}

// ForVisible returns the POIs belonging to any of the given visible tile
// keys, in no particular order; callers sort by Priority before running
// label placement.
func (m *PoiManager) ForVisible(keys []TileKey) []*Poi {
	var out []*Poi
	for _, k := range keys {
		out = append(out, m.byTile[k]...)
	}
	return out
}

// Get returns the POI with the given ID, or ok=false if unknown.
func (m *PoiManager) Get(id string) (*Poi, bool) {
	p, ok := m.byID[id]
	return p, ok
}
