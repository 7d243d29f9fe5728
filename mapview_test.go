package mapengine

import (
	"context"
	"testing"
	"time"
)

func TestMapViewRequestsAndLoadsVisibleTiles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageLevel = 2
	cfg.CacheBudgetBytes = 100
	cfg.MaxFPS = 0

	ctx := context.Background()
	mv, err := NewMapView(ctx, cfg, NewWebMercator(1024))
	if err != nil {
		t.Fatal(err)
	}
	defer mv.Close()

	loaded := make(chan TileKey, 16)
	mv.SetEventSink(EventSinkFunc(func(e Event) {
		if e.Type == EventTileLoaded {
			loaded <- e.Tile
		}
	}))

	source := NewDataSourceFunc("test", func(ctx context.Context, key TileKey) (GPUResource, error) {
		return noopResource{}, nil
	})
	if err := mv.AddDataSource(source); err != nil {
		t.Fatal(err)
	}

	now := time.Unix(0, 0)
	pose := CameraPose{X: 0, Y: 0, Zoom: 1}
	viewRect := Rect{X: 0, Y: 0, Width: 300, Height: 300}

	deadline := now.Add(time.Second)
	gotOne := false
	for n := now; n.Before(deadline) && !gotOne; n = n.Add(10 * time.Millisecond) {
		if err := mv.Update(ctx, pose, viewRect, n, 0.01); err != nil {
			t.Fatal(err)
		}
		select {
		case <-loaded:
			gotOne = true
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if !gotOne {
		t.Fatal("expected at least one tile to finish loading")
	}

	if stats, ok := mv.VisibleTileStats("test"); !ok || stats.VisibleTiles == 0 {
		t.Error("expected non-zero VisibleTileStats for the registered source")
	}
}

func TestMapViewSkipsDisabledDataSource(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageLevel = 2
	cfg.MaxFPS = 0

	ctx := context.Background()
	mv, err := NewMapView(ctx, cfg, NewWebMercator(1024))
	if err != nil {
		t.Fatal(err)
	}
	defer mv.Close()

	requested := make(chan struct{}, 1)
	source := DataSourceFunc{
		NameValue:  "disabled",
		ReadyValue: true,
		// EnabledValue left false (zero value).
		Fetch: func(ctx context.Context, key TileKey) (GPUResource, error) {
			select {
			case requested <- struct{}{}:
			default:
			}
			return noopResource{}, nil
		},
	}
	if err := mv.AddDataSource(source); err != nil {
		t.Fatal(err)
	}

	now := time.Unix(0, 0)
	if err := mv.Update(ctx, CameraPose{}, Rect{X: 0, Y: 0, Width: 300, Height: 300}, now, 0.01); err != nil {
		t.Fatal(err)
	}

	select {
	case <-requested:
		t.Error("disabled data source should never have its fetch invoked")
	default:
	}
}

func TestMapViewRejectsDuplicateDataSource(t *testing.T) {
	cfg := DefaultConfig()
	ctx := context.Background()
	mv, err := NewMapView(ctx, cfg, NewWebMercator(1024))
	if err != nil {
		t.Fatal(err)
	}
	defer mv.Close()

	source := DataSourceFunc{NameValue: "dup"}
	if err := mv.AddDataSource(source); err != nil {
		t.Fatal(err)
	}
	if err := mv.AddDataSource(source); err == nil {
		t.Error("expected an error registering a duplicate data source name")
	}
}

func TestMapViewSkipsUpdateAfterContextLost(t *testing.T) {
	cfg := DefaultConfig()
	ctx := context.Background()
	mv, err := NewMapView(ctx, cfg, NewWebMercator(1024))
	if err != nil {
		t.Fatal(err)
	}
	defer mv.Close()

	mv.NotifyContextLost()
	err = mv.Update(ctx, CameraPose{}, Rect{Width: 10, Height: 10}, time.Unix(0, 0), 0.01)
	if err != nil {
		t.Errorf("Update should no-op silently while context is lost, got %v", err)
	}
}
