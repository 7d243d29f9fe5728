package mapengine

import (
	"sync/atomic"
	"time"
)

// TileState is a node in the tile lifecycle state machine.
type TileState uint8

const (
	// TileCreated is the initial state immediately after a Tile is
	// allocated for a newly visible key, before any fetch has started.
	TileCreated TileState = iota
	// TileLoading means a FetchAndDecode job has been submitted and is
	// in flight on the worker pool.
	TileLoading
	// TileReady means decoded geometry/imagery is available and the tile
	// can be drawn.
	TileReady
	// TileFailed means the retry budget was exhausted; the tile will not
	// be retried again this session unless explicitly reset.
	TileFailed
	// TileEvicted is a terminal state entered when the cache reclaims the
	// tile's slot; any in-flight request result for it must be discarded.
	TileEvicted
)

func (s TileState) String() string {
	switch s {
	case TileCreated:
		return "created"
	case TileLoading:
		return "loading"
	case TileReady:
		return "ready"
	case TileFailed:
		return "failed"
	case TileEvicted:
		return "evicted"
	default:
		return "unknown"
	}
}

// maxRetries bounds the transient-fetch-error retry budget per tile before
// it moves to TileFailed (spec §7).
const maxRetries = 3

// Tile is the engine's resident record for one TileKey: its lifecycle
// state, decoded content (opaque to the engine — GPUResource is whatever
// the render backend produced), and bookkeeping for stale-result discard
// and retry.
type Tile struct {
	// Source is the name of the owning DataSource (a weak back-reference:
	// Tile never holds a *DataSource directly, only its stable name).
	Source string
	Key    TileKey
	State  TileState

	Content GPUResource

	// WorldBounds is the tile's bounding box in world coordinates, set once
	// the tile's TileKey is known (before any fetch completes).
	WorldBounds Rect

	// TextElements holds the label/icon candidates this tile's decoded
	// content contributed, populated once the tile reaches TileReady.
	TextElements []*TextElement

	// Partial marks a tile whose geometry is only partially ready (some
	// declared geometry kinds are still building) — it may still be
	// rendered, flagged so consumers can treat it as incomplete.
	Partial bool

	// LastVisibleFrame is the most recent frame number on which this tile
	// appeared in its DataSource's visible set.
	LastVisibleFrame uint64

	// Copyrights holds attribution strings attached to this tile's content.
	Copyrights []string

	retryCount int

	// requestSeq is the sequence number of the tile's latest fetch. Each
	// time a fetch is (re)submitted it takes a fresh value from a
	// package-wide counter (so it is monotonic per tile and unique across
	// tiles) that the worker-pool job captures; a result carrying a stale
	// sequence number is discarded by Scheduler.Update.
	requestSeq uint64

	// pinned marks a tile that is currently visible (or is a fallback
	// substitute for a visible tile); a pinned tile is never evicted by
	// the cache's budget check even if it is the least-recently-used
	// entry.
	pinned bool

	// lastTouch is a logical tick counter bumped every time the tile is
	// accessed, used by the LRU backing store as the recency signal.
	lastTouch uint64

	// nextRetryAt holds back a re-request after a transient fetch error
	// until the bounded-backoff deadline passes; zero for a tile that has
	// never failed, so a brand-new TileCreated tile is always immediately
	// requestable.
	nextRetryAt time.Time
}

// newTile allocates a Tile in the Created state for key, owned by source.
func newTile(source string, key TileKey, worldBounds Rect) *Tile {
	return &Tile{Source: source, Key: key, State: TileCreated, WorldBounds: worldBounds}
}

// baseRetryBackoff and maxRetryBackoff bound the exponential backoff applied
// between retries of a failed fetch (spec §4.3/§7: "retried with bounded
// backoff").
const (
	baseRetryBackoff = 100 * time.Millisecond
	maxRetryBackoff  = 5 * time.Second
)

// retryBackoff returns the delay before the attempt'th retry (attempt >= 1).
func retryBackoff(attempt int) time.Duration {
	d := baseRetryBackoff << uint(attempt-1)
	if d > maxRetryBackoff || d <= 0 {
		return maxRetryBackoff
	}
	return d
}

// ReadyToRequest reports whether the tile may be (re-)requested at now: it
// must be in the Created state (never requested, or reset after a transient
// failure within retry budget) and past its backoff deadline.
func (t *Tile) ReadyToRequest(now time.Time) bool {
	return t.State == TileCreated && !now.Before(t.nextRetryAt)
}

// requestSeqCounter issues request sequence numbers for all tiles, so no two
// outstanding fetches share one.
var requestSeqCounter uint64

// nextSeq atomically draws a new request sequence number, records it as the
// tile's current one, and returns it; the worker pool captures the returned
// value and stamps it on the Result it eventually produces.
func (t *Tile) nextSeq() uint64 {
	s := atomic.AddUint64(&requestSeqCounter, 1)
	atomic.StoreUint64(&t.requestSeq, s)
	return s
}

// currentSeq reads the tile's request sequence number without advancing it.
func (t *Tile) currentSeq() uint64 {
	return atomic.LoadUint64(&t.requestSeq)
}

// RetryCount reports how many transient fetch/decode failures this tile
// has accumulated since its last successful load.
func (t *Tile) RetryCount() int {
	return t.retryCount
}

// CanRetry reports whether the tile has retry budget remaining.
func (t *Tile) CanRetry() bool {
	return t.retryCount < maxRetries
}
