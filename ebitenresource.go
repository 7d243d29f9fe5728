package mapengine

import "github.com/hajimehoshi/ebiten/v2"

// EbitenGPUResource wraps an *ebiten.Image decoded for a tile or POI icon,
// the concrete GPUResource the bundled render backend produces.
type EbitenGPUResource struct {
	Image *ebiten.Image
}

// NewEbitenGPUResource wraps img as a GPUResource.
func NewEbitenGPUResource(img *ebiten.Image) *EbitenGPUResource {
	return &EbitenGPUResource{Image: img}
}

// Release implements GPUResource.
func (r *EbitenGPUResource) Release() {
	if r.Image != nil {
		r.Image.Deallocate()
		r.Image = nil
	}
}
