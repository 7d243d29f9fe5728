package mapengine

import (
	"context"
	"fmt"
	"time"
)

// MapView ties the Camera Movement Detector, Frame Driver, Visible Tile
// Set, Scheduler, POI managers, and Label Placement engine together into
// one per-frame update, driving an ordered set of registered DataSources.
type MapView struct {
	Config Config

	projection Projection
	movement   *CameraMovementDetector
	frame      *FrameDriver
	cache      *TileCache
	scheduler  *Scheduler
	pois       *PoiManager
	poiTable   *PoiTableManager
	labels     *LabelPlacement
	dynattrs   *DynamicAttributeEvaluator

	sources     map[string]DataSource
	sourceOrder []string
	visible     map[string]*VisibleTileSet

	sink EventSink

	contextLost bool
}

// NewMapView constructs a MapView from cfg, proj, and ctx (used for the
// lifetime of the Scheduler's worker pool).
func NewMapView(ctx context.Context, cfg Config, proj Projection) (*MapView, error) {
	cache, err := NewTileCache(cfg.CacheBudgetBytes, nil)
	if err != nil {
		return nil, err
	}
	mv := &MapView{
		Config:     cfg,
		projection: proj,
		movement:   NewCameraMovementDetector(cfg.MovementSettleDelay()),
		frame:      NewFrameDriver(cfg.MaxFPS),
		cache:      cache,
		scheduler:  NewScheduler(ctx, cfg.WorkerCount, cfg.MaxFPS),
		pois:       NewPoiManager(),
		poiTable:   NewPoiTableManager(),
		labels:     NewLabelPlacement(cfg.FadeDuration(), cfg.LabelPlacement()),
		dynattrs:   NewDynamicAttributeEvaluator(),
		sources:    make(map[string]DataSource),
		visible:    make(map[string]*VisibleTileSet),
		sink:       nullSink{},
	}
	return mv, nil
}

// SetEventSink routes engine events (movement transitions, tile load/fail,
// context lost/restored) to sink. The default is a sink that discards
// everything.
func (mv *MapView) SetEventSink(sink EventSink) {
	if sink == nil {
		sink = nullSink{}
	}
	mv.sink = sink
}

// AddDataSource registers source, appending it to the ordered list Update
// walks each frame. It returns ErrDuplicateDataSource if a source with the
// same name is already registered.
func (mv *MapView) AddDataSource(source DataSource) error {
	if _, ok := mv.sources[source.Name()]; ok {
		return fmt.Errorf("mapengine: %q: %w", source.Name(), ErrDuplicateDataSource)
	}
	mv.sources[source.Name()] = source
	mv.sourceOrder = append(mv.sourceOrder, source.Name())
	mv.visible[source.Name()] = NewVisibleTileSet(source.Name(), mv.cache, mv.projection, mv.Config.StorageLevel)
	mv.frame.MarkDirty()
	return nil
}

// RemoveDataSource unregisters a previously added source by name, purging
// its resident tiles from the shared cache.
func (mv *MapView) RemoveDataSource(name string) error {
	if _, ok := mv.sources[name]; !ok {
		return fmt.Errorf("mapengine: %q: %w", name, ErrUnknownDataSource)
	}
	delete(mv.sources, name)
	delete(mv.visible, name)
	for i, n := range mv.sourceOrder {
		if n == name {
			mv.sourceOrder = append(mv.sourceOrder[:i], mv.sourceOrder[i+1:]...)
			break
		}
	}
	mv.cache.Clear(name)
	return nil
}

// VisibleTileStats returns the most recently computed per-DataSource
// breakdown for name, or ok=false if name is not registered.
func (mv *MapView) VisibleTileStats(name string) (VisibleTileSetStats, bool) {
	vts, ok := mv.visible[name]
	if !ok {
		return VisibleTileSetStats{}, false
	}
	return vts.Stats(), true
}

// NotifyContextLost marks the render context lost; Update short-circuits
// until NotifyContextRestored is called, per the fatal-error handling rule.
func (mv *MapView) NotifyContextLost() {
	mv.contextLost = true
	mv.sink.Notify(Event{Type: EventContextLost})
}

// NotifyContextRestored clears the lost-context flag.
func (mv *MapView) NotifyContextRestored() {
	mv.contextLost = false
	mv.sink.Notify(Event{Type: EventContextRestored})
}

// Update runs one frame: advances the movement detector, then for each
// registered, enabled, and Ready DataSource (in registration order)
// recomputes its visible tile set and requests missing tiles from the
// scheduler. viewRect is the camera's current world-space view rectangle.
func (mv *MapView) Update(ctx context.Context, pose CameraPose, viewRect Rect, now time.Time, dt float32) error {
	if mv.contextLost {
		return nil
	}

	for _, ev := range mv.movement.Update(pose, now) {
		mv.sink.Notify(Event{Type: ev})
		mv.frame.MarkDirty()
	}

	if !mv.frame.ShouldTick(now) {
		return nil
	}
	mv.frame.Tick(now)

	for _, name := range mv.sourceOrder {
		source := mv.sources[name]
		if !source.Enabled() || !source.Ready() {
			continue
		}
		mv.updateSource(ctx, source, viewRect, now)
	}

	mv.scheduler.Update()
	pending := mv.scheduler.ProcessPending(now, func(e Event) { mv.sink.Notify(e) })
	if pending || len(mv.scheduler.inFlight) > 0 {
		mv.frame.MarkDirty()
	}

	if mv.cache.OverBudget() {
		log.Warn("tile cache over budget: every resident tile is pinned")
	}

	mv.dynattrs.BeginFrame()
	return nil
}

// updateSource runs the visibility recompute and fetch-request step for one
// DataSource.
func (mv *MapView) updateSource(ctx context.Context, source DataSource, viewRect Rect, now time.Time) {
	name := source.Name()
	vts := mv.visible[name]

	needed := vts.Recompute(viewRect)
	for _, key := range needed {
		tile, ok := mv.cache.Get(name, key)
		if !ok {
			tile = newTile(name, key, mv.projection.TileWorldBounds(key))
			mv.cache.Put(tile)
		}
		if tile.ReadyToRequest(now) {
			mv.scheduler.Request(ctx, tile, source, key.Level())
		}
	}

	for _, key := range vts.ConsumeDirty() {
		if !vts.Visible(key) {
			mv.scheduler.Cancel(key)
		}
	}
}

// PlaceLabels runs the label placement pass for candidates, projecting
// world anchors to screen space with project. zoom selects each
// candidate's zoom-range eligibility.
func (mv *MapView) PlaceLabels(candidates []*LabelCandidate, zoom float64, project ScreenProjector, dt float32) {
	mv.labels.Place(candidates, zoom, project, dt)
}

// Close releases the scheduler's worker pool.
func (mv *MapView) Close() error {
	return mv.scheduler.Close()
}
