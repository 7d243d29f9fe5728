package mapengine

// defaultIconSize is the screen-space side length used for a Poi's icon
// collision rect when the Poi does not specify one.
const defaultIconSize = 24

// LabelCandidate is one label/icon pair competing for screen-space
// placement this frame: the POI it annotates, its measured text box, and
// independent text/icon fade state machines.
type LabelCandidate struct {
	Poi       *Poi
	Text      *TextElement
	State     *RenderState // text fade/visibility state
	IconState *RenderState // icon fade/visibility state; nil if the candidate has no separately-faded icon

	// OwningTile gates placement on the tile being fully decoded: a
	// candidate whose tile is not Ready is never placed, regardless of
	// screen position.
	OwningTile *Tile

	// set by Place; exported so callers can read the resolved boxes to draw.
	ScreenRect     Rect
	IconScreenRect Rect
	Placed         bool
	IconPlaced     bool

	onScreenLastFrame bool
}

// ScreenProjector maps a world-space point to a screen-space point and
// camera distance, and reports whether the point is on screen at all. It is
// the render pipeline's responsibility (camera + perspective projection);
// the label placement engine only calls it, never implements it.
type ScreenProjector func(wx, wy float64) (sx, sy, distance float64, onScreen bool)

// LabelPlacementConfig bounds how many labels may be visible at once and
// how camera distance affects culling and opacity.
type LabelPlacementConfig struct {
	// FarPlane is the camera's far clip distance.
	FarPlane float64
	// MaxDistanceRatioForLabels caps label visibility distance as a
	// fraction of FarPlane; labels beyond FarPlane*MaxDistanceRatioForLabels
	// are culled even if still within the frustum. <= 0 disables the cull.
	MaxDistanceRatioForLabels float64
	// LabelStartScaleDistance is the distance beyond which opacity begins
	// ramping down toward FarPlane; <= 0 disables the ramp.
	LabelStartScaleDistance float64
	// MaxNumVisibleLabels caps the main pass; <= 0 means unbounded.
	MaxNumVisibleLabels int
	// NumSecondChanceLabels caps the second-chance pass; <= 0 means
	// unbounded.
	NumSecondChanceLabels int
}

// LabelPlacement resolves screen-space collisions between text and icon
// candidates each frame, fading candidates in once they win placement and
// fading out ones that lose it, running a second-chance pass after the main
// pass for labels that were visible and faded-in last frame but were culled
// by the frustum this frame — this smooths the common case of a label
// passing briefly behind the view edge while panning, instead of popping it
// immediately.
type LabelPlacement struct {
	collisions   *ScreenCollisions
	fadeDuration float32
	cfg          LabelPlacementConfig
}

// NewLabelPlacement returns a LabelPlacement fading candidates over
// fadeDuration seconds, governed by cfg.
func NewLabelPlacement(fadeDuration float32, cfg LabelPlacementConfig) *LabelPlacement {
	return &LabelPlacement{
		collisions:   NewScreenCollisions(64),
		fadeDuration: fadeDuration,
		cfg:          cfg,
	}
}

// Place runs one frame of placement over candidates, which callers should
// have pre-sorted by ascending Poi.Priority (lower priority value wins
// contested space first). zoom is the camera's current zoom level, used to
// filter candidates outside their TextElement/Poi zoom range. project
// converts each candidate's world anchor to screen space plus camera
// distance. dt is the frame's elapsed seconds, used to advance each
// surviving candidate's fade tween.
func (lp *LabelPlacement) Place(candidates []*LabelCandidate, zoom float64, project ScreenProjector, dt float32) {
	lp.collisions.Reset()

	var secondChance []*LabelCandidate
	mainPlaced := 0
	seenShieldGroup := make(map[int]bool)

	for _, c := range candidates {
		c.Placed, c.IconPlaced = false, false

		if !lp.eligible(c, zoom) {
			lp.hide(c, dt)
			c.onScreenLastFrame = false
			continue
		}

		// Only the first candidate in a shield group gets a placement
		// attempt each frame; the rest are treated as duplicate markers
		// along the same line and hidden outright.
		if c.Poi != nil && c.Poi.ShieldGroupIndex != 0 {
			if seenShieldGroup[c.Poi.ShieldGroupIndex] {
				lp.hide(c, dt)
				c.onScreenLastFrame = false
				continue
			}
			seenShieldGroup[c.Poi.ShieldGroupIndex] = true
		}

		wasFadedIn := c.State.State == FadeFadedIn
		wasOnScreen := c.onScreenLastFrame

		sx, sy, distance, onScreen := lp.project(c, project)
		if !onScreen {
			if wasOnScreen && wasFadedIn {
				secondChance = append(secondChance, c)
			}
			lp.hide(c, dt)
			c.onScreenLastFrame = false
			continue
		}
		c.onScreenLastFrame = true

		if lp.cfg.MaxNumVisibleLabels > 0 && mainPlaced >= lp.cfg.MaxNumVisibleLabels {
			lp.hide(c, dt)
			continue
		}
		if lp.place(c, sx, sy, distance, dt) {
			mainPlaced++
		}
	}

	chancePlaced := 0
	for _, c := range secondChance {
		if lp.cfg.NumSecondChanceLabels > 0 && chancePlaced >= lp.cfg.NumSecondChanceLabels {
			break
		}
		sx, sy, distance, onScreen := lp.project(c, project)
		if !onScreen {
			lp.hide(c, dt)
			continue
		}
		if lp.place(c, sx, sy, distance, dt) {
			chancePlaced++
		}
	}
}

// eligible reports whether c can be considered for placement at all this
// frame: its owning tile (if any) must be Ready, and zoom must fall within
// whichever of Text/Poi carries a zoom range.
func (lp *LabelPlacement) eligible(c *LabelCandidate, zoom float64) bool {
	if c.OwningTile != nil && c.OwningTile.State != TileReady {
		return false
	}
	if c.Text != nil && !c.Text.InZoomRange(zoom) {
		return false
	}
	if c.Poi != nil && !c.Poi.InZoomRange(zoom) {
		return false
	}
	return true
}

// project resolves c's world anchor (preferring the TextElement's path
// anchor, falling back to the Poi's point) to screen space, applying the
// max-distance-ratio cull on top of the projector's own frustum test.
func (lp *LabelPlacement) project(c *LabelCandidate, project ScreenProjector) (sx, sy, distance float64, onScreen bool) {
	var wx, wy float64
	if c.Text != nil {
		if a, ok := c.Text.Anchor(); ok {
			wx, wy = a.X, a.Y
		} else if c.Poi != nil {
			wx, wy = c.Poi.X, c.Poi.Y
		}
	} else if c.Poi != nil {
		wx, wy = c.Poi.X, c.Poi.Y
	}
	sx, sy, distance, onScreen = project(wx, wy)
	if onScreen && lp.cfg.FarPlane > 0 && lp.cfg.MaxDistanceRatioForLabels > 0 &&
		distance > lp.cfg.MaxDistanceRatioForLabels*lp.cfg.FarPlane {
		onScreen = false
	}
	return sx, sy, distance, onScreen
}

// place attempts to claim screen space for c's text and/or icon rects at
// (sx, sy), honoring may_overlap and the text/icon-optional pairing rules,
// and applies the distance-based opacity scale ramp on a successful text
// placement. Returns whether anything (text or icon) was placed.
func (lp *LabelPlacement) place(c *LabelCandidate, sx, sy, distance float64, dt float32) bool {
	textRect, hasText := lp.textRect(c, sx, sy)
	iconRect, hasIcon := lp.iconRect(c, sx, sy)

	textOK := !hasText || (c.Text.MayOverlap || !lp.collisions.Overlaps(textRect))
	iconOK := !hasIcon || !lp.collisions.Overlaps(iconRect)

	var placeText, placeIcon bool
	switch {
	case textOK && iconOK:
		placeText, placeIcon = hasText, hasIcon
	case textOK && hasText && (!hasIcon || (c.Poi != nil && c.Poi.IconIsOptional)):
		placeText = true
	case iconOK && hasIcon && (!hasText || (c.Poi != nil && c.Poi.TextIsOptional)):
		placeIcon = true
	default:
		lp.hide(c, dt)
		return false
	}

	if placeText {
		lp.collisions.Claim(textRect)
		c.ScreenRect = textRect
		c.Placed = true
		c.State.Show(lp.fadeDuration)
		c.State.Update(dt)
		if c.State.State == FadeFadedIn {
			c.State.Opacity = 1
		}
		c.State.Opacity *= float32(lp.scaleForDistance(distance))
	} else if hasText {
		c.State.Hide(lp.fadeDuration)
		c.State.Update(dt)
	}

	if placeIcon {
		lp.collisions.Claim(iconRect)
		c.IconScreenRect = iconRect
		c.IconPlaced = true
		if c.IconState != nil {
			c.IconState.Show(lp.fadeDuration)
			c.IconState.Update(dt)
		}
	} else if c.IconState != nil {
		c.IconState.Hide(lp.fadeDuration)
		c.IconState.Update(dt)
	}

	return placeText || placeIcon
}

// hide fades both the text and icon (if any) of c out/away and advances
// their tweens by dt, used whenever c is ineligible or loses placement
// outright this frame.
func (lp *LabelPlacement) hide(c *LabelCandidate, dt float32) {
	c.State.Hide(lp.fadeDuration)
	c.State.Update(dt)
	if c.IconState != nil {
		c.IconState.Hide(lp.fadeDuration)
		c.IconState.Update(dt)
	}
}

// textRect computes c's text collision rect centered on (sx, sy), or
// ok=false if c has no TextElement.
func (lp *LabelPlacement) textRect(c *LabelCandidate, sx, sy float64) (Rect, bool) {
	if c.Text == nil {
		return Rect{}, false
	}
	w, h := c.Text.Bounds()
	return Rect{X: sx - w/2, Y: sy - h/2, Width: w, Height: h}, true
}

// iconRect computes c's icon collision rect centered on (sx, sy), or
// ok=false if c has no Poi or the Poi names no icon.
func (lp *LabelPlacement) iconRect(c *LabelCandidate, sx, sy float64) (Rect, bool) {
	if c.Poi == nil || c.Poi.IconName == "" {
		return Rect{}, false
	}
	w, h := c.Poi.IconSize.X, c.Poi.IconSize.Y
	if w <= 0 {
		w = defaultIconSize
	}
	if h <= 0 {
		h = defaultIconSize
	}
	return Rect{X: sx - w/2, Y: sy - h/2, Width: w, Height: h}, true
}

// scaleForDistance returns the opacity multiplier applied to a placed
// label's text, ramping linearly from 1 at LabelStartScaleDistance down to
// 0 at FarPlane. Returns 1 when the ramp is unconfigured.
func (lp *LabelPlacement) scaleForDistance(distance float64) float64 {
	start, far := lp.cfg.LabelStartScaleDistance, lp.cfg.FarPlane
	if start <= 0 || far <= start {
		return 1
	}
	if distance <= start {
		return 1
	}
	if distance >= far {
		return 0
	}
	return 1 - (distance-start)/(far-start)
}
