package mapengine

import "testing"

func newCandidate(id string, priority int, w, h float64) *LabelCandidate {
	f := &fixedSizeFont{w: w, h: h}
	return &LabelCandidate{
		Poi:   &Poi{ID: id, Priority: priority},
		Text:  NewTextElement(id, f),
		State: NewRenderState(),
	}
}

type fixedSizeFont struct{ w, h float64 }

func (f *fixedSizeFont) MeasureString(string) (float64, float64) { return f.w, f.h }
func (f *fixedSizeFont) LineHeight() float64                     { return f.h }

// projectAt returns a ScreenProjector that always reports onScreen at the
// given screen point and distance.
func projectAt(sx, sy, distance float64) ScreenProjector {
	return func(wx, wy float64) (float64, float64, float64, bool) {
		return sx, sy, distance, true
	}
}

func TestLabelPlacementHigherPriorityWinsOverlap(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{})
	a := newCandidate("a", 0, 40, 10) // higher priority (lower number)
	b := newCandidate("b", 1, 40, 10)

	project := projectAt(100, 100, 10) // both candidates project to the same point

	lp.Place([]*LabelCandidate{a, b}, 10, project, 1.0)

	if !a.Placed {
		t.Error("higher-priority candidate a should have been placed")
	}
	if b.Placed {
		t.Error("lower-priority candidate b should have lost the collision")
	}
}

func TestLabelPlacementOffscreenCandidateHides(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{})
	a := newCandidate("a", 0, 10, 10)
	project := func(wx, wy float64) (float64, float64, float64, bool) { return 0, 0, 0, false }

	lp.Place([]*LabelCandidate{a}, 10, project, 1.0)
	if a.Placed {
		t.Error("offscreen candidate should never be placed")
	}
}

func TestLabelPlacementNonOverlappingBothPlaced(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{})
	a := newCandidate("a", 0, 10, 10)
	b := newCandidate("b", 1, 10, 10)

	project := func(wx, wy float64) (float64, float64, float64, bool) {
		if wx == 0 {
			return 0, 0, 10, true
		}
		return 500, 500, 10, true
	}
	a.Poi.X, b.Poi.X = 0, 500

	lp.Place([]*LabelCandidate{a, b}, 10, project, 1.0)
	if !a.Placed || !b.Placed {
		t.Error("non-overlapping candidates should both be placed")
	}
}

func TestLabelPlacementZoomRangeExcludesCandidate(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{})
	a := newCandidate("a", 0, 10, 10)
	a.Text.MinZoom, a.Text.MaxZoom = 12, 18

	lp.Place([]*LabelCandidate{a}, 8, projectAt(0, 0, 10), 1.0)
	if a.Placed {
		t.Error("candidate below its MinZoom should not be placed")
	}
}

func TestLabelPlacementRequiresOwningTileReady(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{})
	a := newCandidate("a", 0, 10, 10)
	a.OwningTile = &Tile{State: TileLoading}

	lp.Place([]*LabelCandidate{a}, 10, projectAt(0, 0, 10), 1.0)
	if a.Placed {
		t.Error("candidate whose owning tile is not Ready should not be placed")
	}
}

func TestLabelPlacementDistanceCullBeyondMaxRatio(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{FarPlane: 100, MaxDistanceRatioForLabels: 0.5})
	a := newCandidate("a", 0, 10, 10)

	lp.Place([]*LabelCandidate{a}, 10, projectAt(0, 0, 90), 1.0)
	if a.Placed {
		t.Error("candidate beyond MaxDistanceRatioForLabels*FarPlane should be culled")
	}
}

func TestLabelPlacementOpacityRampsWithDistance(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{FarPlane: 100, LabelStartScaleDistance: 50})
	a := newCandidate("a", 0, 10, 10)

	lp.Place([]*LabelCandidate{a}, 10, projectAt(0, 0, 75), 1.0)
	if !a.Placed {
		t.Fatal("expected candidate to be placed")
	}
	if a.State.Opacity >= 1 {
		t.Errorf("opacity = %v, expected it scaled down partway between start distance and far plane", a.State.Opacity)
	}
}

func TestLabelPlacementMaxVisibleLabelsCap(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{MaxNumVisibleLabels: 1})
	a := newCandidate("a", 0, 10, 10)
	b := newCandidate("b", 1, 10, 10)
	project := func(wx, wy float64) (float64, float64, float64, bool) {
		if wx == 0 {
			return 0, 0, 10, true
		}
		return 500, 500, 10, true
	}
	a.Poi.X, b.Poi.X = 0, 500 // non-overlapping, so only the cap limits b

	lp.Place([]*LabelCandidate{a, b}, 10, project, 1.0)
	if !a.Placed {
		t.Error("expected a to be placed under the cap")
	}
	if b.Placed {
		t.Error("expected b to be rejected once MaxNumVisibleLabels is reached")
	}
}

func TestLabelPlacementSecondChanceForRecentlyCulledFadedInLabel(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{})
	a := newCandidate("a", 0, 10, 10)

	// Frame 1: onscreen, fades in to FadedIn.
	lp.Place([]*LabelCandidate{a}, 10, projectAt(0, 0, 10), 10.0)
	if a.State.State != FadeFadedIn {
		t.Fatalf("expected a to be FadedIn after frame 1, got %v", a.State.State)
	}

	// Frame 2: culled by the frustum. Because it was faded-in and onscreen
	// last frame, it is hidden in the main pass and also queued for a
	// second-chance placement in the same frame.
	offscreen := func(wx, wy float64) (float64, float64, float64, bool) {
		return 0, 0, 0, false
	}
	lp.Place([]*LabelCandidate{a}, 10, offscreen, 0.001)
	// The second-chance pass re-runs the same projector, which still
	// reports offscreen, so it stays hidden. Exercise the state machine
	// transition instead of relying on internal bookkeeping.
	if a.State.State == FadeFadedIn {
		t.Error("expected a to begin fading out once genuinely offscreen")
	}
}

func TestLabelPlacementShieldGroupOnlyFirstMemberConsidered(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{})
	a := newCandidate("a", 0, 10, 10)
	b := newCandidate("b", 1, 10, 10)
	a.Poi.ShieldGroupIndex = 7
	b.Poi.ShieldGroupIndex = 7
	// Different screen points so only the shield-group rule (not collision)
	// would prevent b from placing.
	project := func(wx, wy float64) (float64, float64, float64, bool) {
		if wx == 0 {
			return 0, 0, 10, true
		}
		return 500, 500, 10, true
	}
	a.Poi.X, b.Poi.X = 0, 500

	lp.Place([]*LabelCandidate{a, b}, 10, project, 1.0)
	if !a.Placed {
		t.Error("expected the first shield-group member to be placed")
	}
	if b.Placed {
		t.Error("expected the second shield-group member to be suppressed as a duplicate marker")
	}
}

func TestLabelPlacementIconIsOptionalAllowsTextAloneOnIconCollision(t *testing.T) {
	lp := NewLabelPlacement(0.01, LabelPlacementConfig{})
	blocker := newCandidate("blocker", 0, 10, 10)
	a := newCandidate("a", 1, 10, 10)
	a.Poi.IconName = "pin"
	a.Poi.IconIsOptional = true

	// blocker's text sits at x in [-5, 5]. a is anchored at x=15: its
	// 10-wide text rect [10, 20] is clear of blocker, but its 24-wide
	// default icon rect [3, 27] overlaps it.
	a.Poi.X = 15
	project := func(wx, wy float64) (float64, float64, float64, bool) {
		return wx, 0, 10, true
	}
	lp.Place([]*LabelCandidate{blocker, a}, 10, project, 1.0)

	if !blocker.Placed {
		t.Fatal("expected blocker to be placed first")
	}
	if a.IconPlaced {
		t.Error("expected a's icon to lose the collision")
	}
	if !a.Placed {
		t.Error("expected a's text to place alone since its icon is optional")
	}
}
