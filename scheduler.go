package mapengine

import (
	"container/heap"
	"context"
	"time"

	"github.com/kosmograph/mapengine/internal/decodepool"
)

// TaskGroup names one of the Scheduler's priority queues. Every Scheduler
// carries at least Create and FetchAndDecode.
type TaskGroup string

const (
	// GroupCreate holds tasks that finish already-fetched-and-decoded work
	// (building GPU resources from a decoded payload and flipping a tile
	// to Ready). Processed first each frame: finishing paid-for work
	// yields visible progress before starting new fetches.
	GroupCreate TaskGroup = "Create"
	// GroupFetchAndDecode holds tasks that kick off a tile's asynchronous
	// fetch+decode on the worker pool.
	GroupFetchAndDecode TaskGroup = "FetchAndDecode"
)

// defaultEstimatedProcessTime is the per-task cost charged against the
// per-frame budget when a task does not report a more specific estimate.
const defaultEstimatedProcessTime = 2 * time.Millisecond

// decodeResult is the payload the worker pool produces for one FetchAndDecode
// job: the resolved GPUResource or an error.
type decodeResult struct {
	resource GPUResource
	err      error
}

// Task is an opaque queued unit of work, inspectable by ProcessNext's
// predicate.
type Task struct {
	Key                  TileKey
	Group                TaskGroup
	Priority             int
	EstimatedProcessTime time.Duration

	seq     int
	expired func() bool
	run     func(onEvent func(Event))
}

// schedHeap is a small binary heap ordered by priority (lower value first)
// then insertion order — enough for the O(log n) enqueue/dequeue the task
// scheduler's per-frame budget requires without a generic priority-queue
// dependency.
type schedHeap []*Task

func (h schedHeap) Len() int { return len(h) }
func (h schedHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority < h[j].Priority
	}
	return h[i].seq < h[j].seq
}
func (h schedHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *schedHeap) Push(x interface{}) { *h = append(*h, x.(*Task)) }
func (h *schedHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// inFlightReq tracks a single outstanding fetch: the tile it belongs to, and
// the cancel func for its fetch context.
type inFlightReq struct {
	tile   *Tile
	cancel context.CancelFunc
}

// Scheduler is the per-frame, time-budgeted task queue that fetches,
// decodes, and finalizes tiles off the main thread. The main-thread side
// (this type) only ever enqueues and drains; the actual goroutines live in
// internal/decodepool, reached through a channel-based contract so the
// core's single-threaded cooperative model (spec §5) holds.
type Scheduler struct {
	pool   *decodepool.Pool[decodeResult]
	groups map[TaskGroup]*schedHeap

	inFlight  map[TileKey]*inFlightReq
	bySeq     map[uint64]TileKey
	insertSeq int

	maxFPS float64
}

// NewScheduler starts a Scheduler backed by workerCount background workers.
// maxFPS feeds process_pending's per-frame time budget (1000/maxFPS); 0 or
// negative means throttling is disabled and each frame drains both groups
// fully.
func NewScheduler(ctx context.Context, workerCount int, maxFPS float64) *Scheduler {
	return &Scheduler{
		pool: decodepool.New[decodeResult](ctx, workerCount, 256),
		groups: map[TaskGroup]*schedHeap{
			GroupCreate:         {},
			GroupFetchAndDecode: {},
		},
		inFlight: make(map[TileKey]*inFlightReq),
		bySeq:    make(map[uint64]TileKey),
		maxFPS:   maxFPS,
	}
}

// Request enqueues a FetchAndDecode task for tile against source, at the
// given priority (lower runs first). If the tile already has a fetch in
// flight, the call is a no-op — callers are expected to have already
// checked tile state (Tile.ReadyToRequest) before requesting.
func (s *Scheduler) Request(ctx context.Context, tile *Tile, source DataSource, priority int) {
	if _, ok := s.inFlight[tile.Key]; ok {
		return
	}
	jobCtx, cancel := context.WithCancel(ctx)
	tile.State = TileLoading
	seq := tile.nextSeq()
	s.inFlight[tile.Key] = &inFlightReq{tile: tile, cancel: cancel}

	key := tile.Key
	s.add(&Task{
		Key:                  key,
		Group:                GroupFetchAndDecode,
		Priority:             priority,
		EstimatedProcessTime: defaultEstimatedProcessTime,
		expired: func() bool {
			_, stillInFlight := s.inFlight[key]
			return !stillInFlight
		},
		run: func(onEvent func(Event)) {
			s.pool.Submit(decodepool.Job[decodeResult]{
				Seq: seq,
				Run: func(c context.Context) (decodeResult, error) {
					res, err := source.FetchAndDecode(jobCtx, key)
					return decodeResult{resource: res, err: err}, nil
				},
			})
			s.bySeq[seq] = key
		},
	})
}

// add pushes t onto its group's heap.
func (s *Scheduler) add(t *Task) {
	s.insertSeq++
	t.seq = s.insertSeq
	heap.Push(s.groups[t.Group], t)
}

// Cancel drops an in-flight or queued request for key, cancelling its
// context so a DataSource honoring ctx can stop early. MapView calls it for
// a tile that falls out of the visible set before its fetch completes.
func (s *Scheduler) Cancel(key TileKey) {
	if req, ok := s.inFlight[key]; ok {
		req.cancel()
		delete(s.inFlight, key)
	}
}

// Update drops expired queued tasks and absorbs any decode-pool results that
// have completed since the last call, turning each into a Create task (the
// "finish already-paid-for work" step that flips a tile to Ready or Failed).
// Call once per frame before ProcessPending.
func (s *Scheduler) Update() {
	for _, h := range s.groups {
		kept := (*h)[:0]
		for _, t := range *h {
			if t.expired != nil && t.expired() {
				continue
			}
			kept = append(kept, t)
		}
		*h = kept
		heap.Init(h)
	}

	for _, r := range s.pool.Drain() {
		r := r
		key, ok := s.bySeq[r.Seq]
		if !ok {
			continue
		}
		delete(s.bySeq, r.Seq)
		req, ok := s.inFlight[key]
		if !ok {
			continue // cancelled since submission
		}
		if req.tile.State == TileEvicted {
			delete(s.inFlight, key)
			if r.Value.resource != nil {
				r.Value.resource.Release()
			}
			continue // evicted since submission
		}
		s.add(&Task{
			Key:                  key,
			Group:                GroupCreate,
			Priority:             0,
			EstimatedProcessTime: defaultEstimatedProcessTime,
			expired: func() bool {
				return req.tile.currentSeq() != r.Seq // superseded by a newer request
			},
			run: func(onEvent func(Event)) {
				delete(s.inFlight, key)
				s.applyDecodeResult(key, req.tile, r.Value, onEvent)
			},
		})
	}
}

// applyDecodeResult finalizes a completed fetch+decode onto its tile.
func (s *Scheduler) applyDecodeResult(key TileKey, tile *Tile, r decodeResult, onEvent func(Event)) {
	if r.err != nil {
		tile.retryCount++
		if tile.CanRetry() {
			tile.State = TileCreated
			tile.nextRetryAt = time.Now().Add(retryBackoff(tile.retryCount))
			logTile(key).WithError(r.err).Debug("transient fetch error, will retry")
		} else {
			tile.State = TileFailed
			logTile(key).WithError(r.err).Warn("tile fetch failed, retry budget exhausted")
			if onEvent != nil {
				onEvent(Event{Type: EventTileFailed, Tile: key})
			}
		}
		return
	}
	tile.Content = r.resource
	tile.State = TileReady
	tile.retryCount = 0
	if onEvent != nil {
		onEvent(Event{Type: EventTileLoaded, Tile: key})
	}
}

// ProcessNext consumes up to limit tasks from group whose predicate (if
// non-nil) returns true, running each and returning how many ran.
func (s *Scheduler) ProcessNext(group TaskGroup, predicate func(Task) bool, limit int, onEvent func(Event)) int {
	h := s.groups[group]
	processed := 0
	var skipped []*Task
	for h.Len() > 0 && processed < limit {
		t := heap.Pop(h).(*Task)
		if predicate != nil && !predicate(*t) {
			skipped = append(skipped, t)
			continue
		}
		t.run(onEvent)
		processed++
	}
	for _, t := range skipped {
		heap.Push(h, t)
	}
	return processed
}

// ProcessPending runs the per-frame processing policy (spec §4.6): compute
// available = 1000/max_fps - (now-frame_start) - 2ms; while available > 0
// and tasks remain, process the Create group first (finishing already-paid-
// for work), then FetchAndDecode, subtracting each task's
// EstimatedProcessTime from available; always process at least one task if
// any are queued, even over budget, to guarantee forward progress. Returns
// whether tasks remain queued, so the caller can request another frame.
func (s *Scheduler) ProcessPending(frameStart time.Time, onEvent func(Event)) bool {
	var available time.Duration
	throttled := s.maxFPS > 0
	if throttled {
		frameInterval := time.Duration(1000.0 / s.maxFPS * float64(time.Millisecond))
		available = frameInterval - time.Since(frameStart) - 2*time.Millisecond
	}

	processedAny := false
	for _, group := range [...]TaskGroup{GroupCreate, GroupFetchAndDecode} {
		h := s.groups[group]
		for h.Len() > 0 {
			if throttled && available <= 0 && processedAny {
				break
			}
			t := heap.Pop(h).(*Task)
			if t.expired != nil && t.expired() {
				continue // dropped; does not count as progress or against budget
			}
			t.run(onEvent)
			available -= t.EstimatedProcessTime
			processedAny = true
		}
	}

	return s.groups[GroupCreate].Len() > 0 || s.groups[GroupFetchAndDecode].Len() > 0
}

// ClearQueuedTasks drops all pending (not yet running) tasks in every group;
// in-flight worker-pool jobs are not aborted, but their tiles are dropped
// from s.inFlight, so Update discards their results when they arrive.
func (s *Scheduler) ClearQueuedTasks() {
	for _, h := range s.groups {
		*h = (*h)[:0]
	}
	for k := range s.inFlight {
		delete(s.inFlight, k)
	}
}

// Close shuts down the scheduler's worker pool.
func (s *Scheduler) Close() error {
	return s.pool.Close()
}
