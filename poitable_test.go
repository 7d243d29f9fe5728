package mapengine

import "testing"

func TestPoiTableManagerLoadTableParsesPoiList(t *testing.T) {
	m := NewPoiTableManager()
	data := []byte(`{
		"poiList": [
			{"name": "Central Station", "altNames": ["Central", "Grand Central"], "iconName": "rail", "stackMode": "no", "priority": 5, "textMinZoom": 10, "textMaxZoom": 18},
			{"name": "City Park", "visible": false, "priority": 1}
		]
	}`)

	if err := m.LoadTable("transit", data, true); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	entry, ok := m.Lookup("transit", "Central Station")
	if !ok {
		t.Fatal("expected canonical name lookup to succeed")
	}
	if entry.Priority != 5 || entry.Stack != StackNo || entry.IconName != "rail" {
		t.Errorf("entry fields = %+v, want priority 5, stack no, icon rail", entry)
	}
	if entry.TextMinZoom != 10 || entry.TextMaxZoom != 18 {
		t.Errorf("entry zoom range = [%v, %v], want [10, 18]", entry.TextMinZoom, entry.TextMaxZoom)
	}
	if !entry.Visible {
		t.Error("entry should default Visible to true when omitted")
	}

	alt, ok := m.Lookup("transit", "Grand Central")
	if !ok || alt != entry {
		t.Error("expected alt name lookup to resolve to the same entry")
	}

	park, ok := m.Lookup("transit", "City Park")
	if !ok {
		t.Fatal("expected City Park entry to load")
	}
	if park.Visible {
		t.Error("City Park should have Visible=false from the file")
	}
	if park.Stack != StackYes {
		t.Errorf("City Park stack mode = %q, want default %q", park.Stack, StackYes)
	}
}

func TestPoiTableManagerUseAltNamesForKeyFalseOnlyIndexesCanonical(t *testing.T) {
	m := NewPoiTableManager()
	data := []byte(`{"poiList": [{"name": "Main St", "altNames": ["Main Street"]}]}`)

	if err := m.LoadTable("streets", data, false); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	if _, ok := m.Lookup("streets", "Main St"); !ok {
		t.Error("expected canonical name to resolve")
	}
	if _, ok := m.Lookup("streets", "Main Street"); ok {
		t.Error("alt name should not resolve when useAltNamesForKey is false")
	}
}

func TestPoiTableManagerSkipsEntriesMissingName(t *testing.T) {
	m := NewPoiTableManager()
	data := []byte(`{"poiList": [{"name": ""}, {"name": "Valid"}]}`)

	if err := m.LoadTable("t", data, true); err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if _, ok := m.Lookup("t", "Valid"); !ok {
		t.Error("expected the valid entry to still load")
	}
}

func TestPoiTableManagerLoadTableRejectsMalformedJSON(t *testing.T) {
	m := NewPoiTableManager()
	if err := m.LoadTable("bad", []byte("not json"), true); err == nil {
		t.Error("expected an error parsing malformed JSON")
	}
}

func TestPoiTableManagerTablesAreIndependent(t *testing.T) {
	m := NewPoiTableManager()
	m.LoadTable("a", []byte(`{"poiList": [{"name": "X"}]}`), true)
	m.LoadTable("b", []byte(`{"poiList": [{"name": "Y"}]}`), true)

	if _, ok := m.Lookup("a", "Y"); ok {
		t.Error("table a should not see table b's entries")
	}
	if _, ok := m.Lookup("b", "X"); ok {
		t.Error("table b should not see table a's entries")
	}

	tables := m.Tables()
	if len(tables) != 2 {
		t.Errorf("Tables() returned %d names, want 2", len(tables))
	}
}

func TestPoiTableManagerAddProgrammaticEntry(t *testing.T) {
	m := NewPoiTableManager()
	entry := NewPoiTableEntry("Harbor")
	entry.AltNames.Put("Port")
	m.Add("manual", entry)

	if got, ok := m.Lookup("manual", "Harbor"); !ok || got != entry {
		t.Error("expected canonical lookup to find the added entry")
	}
	if got, ok := m.Lookup("manual", "Port"); !ok || got != entry {
		t.Error("expected alt name lookup to find the added entry")
	}
}

func TestPoiTableManagerRemoveTable(t *testing.T) {
	m := NewPoiTableManager()
	m.LoadTable("temp", []byte(`{"poiList": [{"name": "X"}]}`), true)
	m.RemoveTable("temp")

	if _, ok := m.Lookup("temp", "X"); ok {
		t.Error("expected lookup to fail after RemoveTable")
	}
}

func TestPoiTableManagerLoadTableReplacesExistingTable(t *testing.T) {
	m := NewPoiTableManager()
	m.LoadTable("t", []byte(`{"poiList": [{"name": "Old"}]}`), true)
	m.LoadTable("t", []byte(`{"poiList": [{"name": "New"}]}`), true)

	if _, ok := m.Lookup("t", "Old"); ok {
		t.Error("expected the old entry to be gone after reloading the table")
	}
	if _, ok := m.Lookup("t", "New"); !ok {
		t.Error("expected the new entry to be present after reloading the table")
	}
}
