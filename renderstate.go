package mapengine

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FadeState is a node in the label/icon fade state machine.
type FadeState uint8

const (
	// FadeUndefined is the initial state before a placement decision has
	// ever been made for this element.
	FadeUndefined FadeState = iota
	FadeFadingIn
	FadeFadedIn
	FadeFadingOut
	FadeFadedOut
)

func (s FadeState) String() string {
	switch s {
	case FadeFadingIn:
		return "fading_in"
	case FadeFadedIn:
		return "faded_in"
	case FadeFadingOut:
		return "fading_out"
	case FadeFadedOut:
		return "faded_out"
	default:
		return "undefined"
	}
}

// RenderState tracks a label or icon candidate's fade state machine and its
// current opacity, interpolated with a gween.Tween driving a single
// opacity scalar linearly from 0 to 1 (or back).
type RenderState struct {
	State   FadeState
	Opacity float32

	tween *gween.Tween
}

// NewRenderState returns a RenderState starting fully transparent and
// undefined.
func NewRenderState() *RenderState {
	return &RenderState{State: FadeUndefined, Opacity: 0}
}

// Show begins (or continues) a fade-in over duration seconds. Calling Show
// while already fading in or faded in is a no-op.
func (r *RenderState) Show(duration float32) {
	if r.State == FadeFadingIn || r.State == FadeFadedIn {
		return
	}
	r.State = FadeFadingIn
	r.tween = gween.New(r.Opacity, 1, duration, ease.Linear)
}

// Hide begins (or continues) a fade-out over duration seconds. Calling Hide
// while already fading out or faded out is a no-op.
func (r *RenderState) Hide(duration float32) {
	if r.State == FadeFadingOut || r.State == FadeFadedOut {
		return
	}
	r.State = FadeFadingOut
	r.tween = gween.New(r.Opacity, 0, duration, ease.Linear)
}

// Update advances the active tween by dt seconds and transitions State to
// FadedIn/FadedOut once the tween completes.
func (r *RenderState) Update(dt float32) {
	if r.tween == nil {
		return
	}
	value, done := r.tween.Update(dt)
	r.Opacity = value
	if done {
		r.tween = nil
		switch r.State {
		case FadeFadingIn:
			r.State = FadeFadedIn
			r.Opacity = 1
		case FadeFadingOut:
			r.State = FadeFadedOut
			r.Opacity = 0
		}
	}
}

// Visible reports whether the element should be drawn at all (opacity > 0
// or still fading in from zero).
func (r *RenderState) Visible() bool {
	return r.State != FadeUndefined && r.State != FadeFadedOut
}
