package mapengine

import (
	"encoding/json"
	"fmt"

	"github.com/zyedidia/generic/mapset"
)

// StackMode controls how a POI table entry behaves when multiple entries
// would otherwise stack at the same screen position.
type StackMode string

const (
	StackYes    StackMode = "yes"
	StackNo     StackMode = "no"
	StackParent StackMode = "parent"
)

// PoiTableEntry is one row of an external POI table: a canonical name, a
// set of alternate names/aliases a search box should also match, and the
// placement attributes the theme file assigns per entry.
type PoiTableEntry struct {
	Name     string
	AltNames mapset.Set[string]
	Visible  bool
	IconName string
	Stack    StackMode
	Priority int

	IconMinZoom, IconMaxZoom float64
	TextMinZoom, TextMaxZoom float64
}

// NewPoiTableEntry returns an entry with an initialized alt-name set.
func NewPoiTableEntry(name string) *PoiTableEntry {
	return &PoiTableEntry{Name: name, AltNames: mapset.New[string](), Visible: true, Stack: StackYes}
}

// poiTableFile is the on-disk JSON shape: {"poiList": [...]}.
type poiTableFile struct {
	PoiList []poiTableFileEntry `json:"poiList"`
}

type poiTableFileEntry struct {
	Name         string   `json:"name"`
	AltNames     []string `json:"altNames"`
	Visible      *bool    `json:"visible"`
	IconName     string   `json:"iconName"`
	StackMode    string   `json:"stackMode"`
	Priority     int      `json:"priority"`
	IconMinZoom  float64  `json:"iconMinZoom"`
	IconMaxZoom  float64  `json:"iconMaxZoom"`
	TextMinZoom  float64  `json:"textMinZoom"`
	TextMaxZoom  float64  `json:"textMaxZoom"`
}

// PoiTableManager holds zero or more independently named POI tables (e.g.
// one per theme's poiTables entry), each indexing its entries by canonical
// name and by every alt name so a free-text lookup finds an entry
// regardless of which name variant the caller has. useAltNamesForKey
// controls whether a loaded table's alt names participate in that index at
// all, or only its canonical name does.
type PoiTableManager struct {
	tables map[string]map[string]*PoiTableEntry
}

// NewPoiTableManager returns an empty PoiTableManager.
func NewPoiTableManager() *PoiTableManager {
	return &PoiTableManager{tables: make(map[string]map[string]*PoiTableEntry)}
}

// LoadTable parses data as a {"poiList": [...]} POI-table file (spec §6)
// and registers it under table, replacing any table previously loaded
// under that name. When useAltNamesForKey is false, only each entry's
// canonical name is indexed; alt names are still retained on the entry but
// do not resolve via Lookup.
func (m *PoiTableManager) LoadTable(table string, data []byte, useAltNamesForKey bool) error {
	var file poiTableFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("mapengine: parsing poi table %q: %w", table, err)
	}

	index := make(map[string]*PoiTableEntry, len(file.PoiList))
	for _, fe := range file.PoiList {
		if fe.Name == "" {
			log.WithField("poi_table", table).Warn("poi table entry has no name, skipped")
			continue // malformed entry: logged and skipped, never aborts loading (spec §7)
		}
		entry := &PoiTableEntry{
			Name:        fe.Name,
			AltNames:    mapset.New[string](),
			Visible:     true,
			IconName:    fe.IconName,
			Stack:       StackMode(fe.StackMode),
			Priority:    fe.Priority,
			IconMinZoom: fe.IconMinZoom,
			IconMaxZoom: fe.IconMaxZoom,
			TextMinZoom: fe.TextMinZoom,
			TextMaxZoom: fe.TextMaxZoom,
		}
		if fe.Visible != nil {
			entry.Visible = *fe.Visible
		}
		if entry.Stack == "" {
			entry.Stack = StackYes
		}
		for _, alt := range fe.AltNames {
			entry.AltNames.Put(alt)
		}

		index[entry.Name] = entry
		if useAltNamesForKey {
			entry.AltNames.Each(func(alt string) {
				index[alt] = entry
			})
		}
	}

	m.tables[table] = index
	return nil
}

// Add indexes entry directly under table's canonical name and every alt
// name, for callers building a table programmatically instead of loading
// one from a file.
func (m *PoiTableManager) Add(table string, entry *PoiTableEntry) {
	index, ok := m.tables[table]
	if !ok {
		index = make(map[string]*PoiTableEntry)
		m.tables[table] = index
	}
	index[entry.Name] = entry
	entry.AltNames.Each(func(alt string) {
		index[alt] = entry
	})
}

// Lookup returns the entry matching name (canonical or alt) within table,
// or ok=false if table is not loaded or name is not found in it.
func (m *PoiTableManager) Lookup(table, name string) (*PoiTableEntry, bool) {
	index, ok := m.tables[table]
	if !ok {
		return nil, false
	}
	e, ok := index[name]
	return e, ok
}

// Tables returns the names of every currently loaded or registered table.
func (m *PoiTableManager) Tables() []string {
	names := make([]string, 0, len(m.tables))
	for name := range m.tables {
		names = append(names, name)
	}
	return names
}

// RemoveTable drops table entirely, e.g. when its owning theme is replaced.
func (m *PoiTableManager) RemoveTable(table string) {
	delete(m.tables, table)
}
