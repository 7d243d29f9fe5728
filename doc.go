// Package mapengine implements the tile-residency, visibility, and label
// placement pipeline of a 3D interactive map renderer.
//
// Every animation frame the pipeline decides which map tiles to keep
// resident, which to render, which to evict, and which labels and icons on
// those tiles to draw without visual collisions, while the camera moves
// continuously. The pipeline is built from a small number of coupled
// subsystems:
//
//   - [CameraMovementDetector] debounces continuous camera motion into
//     discrete movement-started/movement-finished transitions.
//   - [FrameDriver] paces redraws and coalesces update requests.
//   - [VisibleTileSet] performs the per-frame frustum cull, fallback tile
//     substitution, and dirty marking, backed by a bounded [TileCache].
//   - [Scheduler] runs the per-frame time-budgeted task queue that fetches
//     and decodes tiles off the main thread.
//   - [LabelPlacement] resolves screen-space collisions between text and
//     icon candidates subject to fade-in/out timing.
//
// The GPU rendering backend, tile geometry decoder workers, theme/styling
// language, and coordinate projection are treated as external collaborators
// with minimal contracts — see [DataSource], [Projection], and
// [GPUResource].
package mapengine
