package mapengine

// GPUResource is whatever the render backend produced from a tile's decoded
// payload: a texture, a vertex buffer, or some backend-specific handle. The
// engine only needs to know how to release it; it never draws with it
// directly. The default EbitenGPUResource wraps an *ebiten.Image.
type GPUResource interface {
	// Release frees any backend resources associated with this value. It
	// must be safe to call more than once.
	Release()
}

// noopResource is used for tiles whose DataSource has no GPU-side payload
// (e.g. a pure-data overlay), and as the zero value of Tile.Content.
type noopResource struct{}

// Release implements GPUResource.
func (noopResource) Release() {}
