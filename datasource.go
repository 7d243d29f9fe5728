package mapengine

import "context"

// TilingScheme describes the quad-tree addressing convention a DataSource's
// tiles follow: the level range it can serve and the name of the
// server-side origin convention (e.g. "xyz", "tms") a fetch implementation
// needs to translate TileKey into a request URL or file path.
type TilingScheme struct {
	Name     string
	MinLevel int
	MaxLevel int
}

// Covers reports whether level falls within the scheme's servable range.
func (s TilingScheme) Covers(level int) bool {
	return level >= s.MinLevel && level <= s.MaxLevel
}

// DataSource fetches and decodes tile content. The engine calls
// FetchAndDecode on the worker pool, never on the main thread; DataSource
// implementations must be safe for concurrent use from multiple goroutines.
type DataSource interface {
	// Name uniquely identifies this data source within a MapView.
	Name() string

	// FetchAndDecode retrieves and decodes the content for key, returning
	// a GPUResource ready to hand to the render backend. ctx is
	// cancelled if the tile falls out of the visible set before the
	// fetch completes.
	FetchAndDecode(ctx context.Context, key TileKey) (GPUResource, error)

	// TilingScheme reports the level range and addressing convention this
	// source's tiles follow.
	TilingScheme() TilingScheme

	// Ready reports whether the source itself has finished whatever setup
	// it needs (e.g. loading a remote style manifest) before it can serve
	// any tile. A MapView skips a not-yet-ready source entirely for the
	// frame rather than enqueuing doomed fetches.
	Ready() bool

	// StyleSetName names the theme/style-set a rendering layer should use
	// to style this source's decoded content.
	StyleSetName() string

	// Enabled reports whether this source currently participates in the
	// per-frame visibility pass; a MapView honors the enabled_data_sources
	// input by skipping disabled sources without unregistering them.
	Enabled() bool
}

// DataSourceFunc adapts a function to a DataSource for sources with no
// other state beyond a fetch callback.
type DataSourceFunc struct {
	NameValue         string
	Fetch             func(ctx context.Context, key TileKey) (GPUResource, error)
	TilingSchemeValue TilingScheme
	ReadyValue        bool
	StyleSetNameValue string
	// EnabledValue defaults to false (the zero value); callers that want
	// an enabled-by-default source should set it explicitly, or use
	// NewDataSourceFunc which defaults it to true.
	EnabledValue bool
}

// NewDataSourceFunc returns a DataSourceFunc that is Ready and Enabled by
// default, convenient for tests and simple embedders that don't need the
// zero-value opt-out behavior of constructing DataSourceFunc directly.
func NewDataSourceFunc(name string, fetch func(ctx context.Context, key TileKey) (GPUResource, error)) DataSourceFunc {
	return DataSourceFunc{NameValue: name, Fetch: fetch, ReadyValue: true, EnabledValue: true}
}

// Name implements DataSource.
func (f DataSourceFunc) Name() string { return f.NameValue }

// FetchAndDecode implements DataSource.
func (f DataSourceFunc) FetchAndDecode(ctx context.Context, key TileKey) (GPUResource, error) {
	return f.Fetch(ctx, key)
}

// TilingScheme implements DataSource.
func (f DataSourceFunc) TilingScheme() TilingScheme { return f.TilingSchemeValue }

// Ready implements DataSource.
func (f DataSourceFunc) Ready() bool { return f.ReadyValue }

// StyleSetName implements DataSource.
func (f DataSourceFunc) StyleSetName() string { return f.StyleSetNameValue }

// Enabled implements DataSource.
func (f DataSourceFunc) Enabled() bool { return f.EnabledValue }
