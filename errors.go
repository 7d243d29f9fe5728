package mapengine

import "errors"

// Sentinel errors for precondition violations. Callers compare with
// errors.Is; the library never logs these itself (the caller decides).
var (
	ErrDuplicateDataSource = errors.New("mapengine: data source already registered")
	ErrUnknownDataSource   = errors.New("mapengine: unknown data source")
	ErrPixelOutOfBounds    = errors.New("mapengine: pixel coordinate out of bounds")
	ErrTileKeyOutOfRange   = errors.New("mapengine: tile key level/col/row out of range")
	ErrCacheBudgetTooSmall = errors.New("mapengine: cache budget cannot hold a single visible tile")
	ErrContextLost         = errors.New("mapengine: GPU context lost")
)
