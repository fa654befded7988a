// Package feed implements the batched, single-flight loader behind the
// infinite-scroll feed.
package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/artscroll/internal/otel"
	"github.com/abelbrown/artscroll/internal/pool"
)

const comp = "feed"

// Config tunes a Loader. Zero fields take DefaultConfig values.
type Config struct {
	BatchSize         int           // accepted items per session
	AttemptMultiplier int           // draws allowed per session = BatchSize * AttemptMultiplier
	MaxLoadTime       time.Duration // wall-clock ceiling on drawing
	LowWaterMark      int           // refill when fewer ids remain
	PauseEvery        int           // attempts between pauses
	PauseDuration     time.Duration
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		BatchSize:         6,
		AttemptMultiplier: 5,
		MaxLoadTime:       10 * time.Second,
		LowWaterMark:      100,
		PauseEvery:        3,
		PauseDuration:     50 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.AttemptMultiplier <= 0 {
		c.AttemptMultiplier = d.AttemptMultiplier
	}
	if c.MaxLoadTime <= 0 {
		c.MaxLoadTime = d.MaxLoadTime
	}
	if c.LowWaterMark < 0 {
		c.LowWaterMark = 0
	}
	if c.PauseEvery <= 0 {
		c.PauseEvery = d.PauseEvery
	}
	if c.PauseDuration < 0 {
		c.PauseDuration = 0
	}
	return c
}

// Option customizes a Loader at construction.
type Option func(*Loader)

// WithRecorder persists every accepted item.
func WithRecorder(r Recorder) Option { return func(l *Loader) { l.recorder = r } }

// WithPauser replaces the default sleep between attempts.
func WithPauser(p Pauser) Option { return func(l *Loader) { l.pauser = p } }

// WithLogger attaches an event logger.
func WithLogger(log *otel.Logger) Option { return func(l *Loader) { l.log = log } }

// WithSeen seeds the loader with a pre-populated seen set.
func WithSeen(s *pool.SeenSet) Option { return func(l *Loader) { l.seen = s } }

// WithPool supplies the candidate pool (e.g. one with a fixed rng).
func WithPool(p *pool.Pool) Option { return func(l *Loader) { l.pool = p } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(l *Loader) { l.now = now } }

// Loader draws candidates, fetches and filters them, and hands accepted
// items to the sink in batches. One session runs at a time; extra LoadMore
// calls while a session is active are no-ops.
type Loader struct {
	cfg      Config
	catalog  Catalog
	sink     Sink
	recorder Recorder     // optional
	pauser   Pauser
	log      *otel.Logger // nil-safe
	now      func() time.Time

	pool *pool.Pool
	seen *pool.SeenSet

	loading   atomic.Bool
	refilling atomic.Bool
	wg        sync.WaitGroup // background refills
}

// NewLoader creates a Loader with an empty pool. Call Init to fill it.
func NewLoader(cfg Config, cat Catalog, sink Sink, opts ...Option) *Loader {
	cfg = cfg.withDefaults()
	l := &Loader{
		cfg:     cfg,
		catalog: cat,
		sink:    sink,
		pauser:  SleepPauser{D: cfg.PauseDuration},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.pool == nil {
		l.pool = pool.New()
	}
	if l.seen == nil {
		l.seen = pool.NewSeenSet()
	}
	return l
}

// Init loads the identifier pool. On failure the pool stays empty, the sink
// gets a single notice, and the error is returned for logging.
func (l *Loader) Init(ctx context.Context) error {
	start := l.now()
	ids, err := l.catalog.FetchIDPool(ctx)
	if err != nil {
		l.pool.Clear()
		l.log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindPoolError, Comp: comp, Err: err.Error(), Msg: "init"})
		l.sink.Notify(MsgPoolUnavailable, SeverityError)
		return fmt.Errorf("load id pool: %w", err)
	}
	l.pool.Refill(ids)
	l.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPoolInit, Comp: comp, Count: l.pool.Size(), Dur: l.now().Sub(start)})
	return nil
}

// LoadMore runs one load session. It returns false without touching the
// catalog when a session is already active or the pool is empty.
func (l *Loader) LoadMore(ctx context.Context) (Result, bool) {
	if l.pool.Size() == 0 {
		l.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindLoadSkip, Comp: comp, Msg: "pool empty"})
		return Result{}, false
	}
	if !l.loading.CompareAndSwap(false, true) {
		l.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindLoadSkip, Comp: comp, Msg: "in flight"})
		return Result{}, false
	}

	res := l.run(ctx)

	if res.Accepted == 0 && res.Exit != ExitCanceled {
		l.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindLoadEmpty, Comp: comp, LoadID: res.ID, Attempts: res.Attempts})
		l.sink.Notify(MsgNoArtworks, SeverityError)
	}

	if ctx.Err() == nil && l.pool.IsLow(l.cfg.LowWaterMark) {
		res.RefillScheduled = l.refill(ctx)
	}
	return res, true
}

// run holds the loading flag for the duration of the draw loop.
func (l *Loader) run(ctx context.Context) (res Result) {
	defer l.loading.Store(false)
	l.sink.SetLoadingIndicator(true)
	defer l.sink.SetLoadingIndicator(false)

	start := l.now()
	s := Session{
		ID:       uuid.NewString(),
		Target:   l.cfg.BatchSize,
		Budget:   l.cfg.BatchSize * l.cfg.AttemptMultiplier,
		Start:    start,
		Deadline: start.Add(l.cfg.MaxLoadTime),
	}
	l.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindLoadStart, Comp: comp, LoadID: s.ID, Count: s.Target, Extra: map[string]any{"pool": l.pool.Size()}})

	var exit ExitReason
	for {
		if exit = l.stopReason(ctx, &s); exit != "" {
			break
		}
		s.Attempts++
		l.attempt(ctx, &s)
		if s.Attempts%l.cfg.PauseEvery == 0 {
			l.pauser.Pause(ctx)
		}
	}

	res = Result{Session: s, Exit: exit, Elapsed: l.now().Sub(start)}
	l.log.Emit(otel.Event{
		Level:    otel.LevelInfo,
		Kind:     otel.KindLoadComplete,
		Comp:     comp,
		LoadID:   s.ID,
		Count:    s.Accepted,
		Attempts: s.Attempts,
		Dur:      res.Elapsed,
		Extra:    map[string]any{"exit": string(exit)},
	})
	return res
}

// stopReason returns "" while the session may keep drawing.
func (l *Loader) stopReason(ctx context.Context, s *Session) ExitReason {
	switch {
	case s.Accepted >= s.Target:
		return ExitTarget
	case ctx.Err() != nil:
		return ExitCanceled
	case l.pool.Size() == 0:
		return ExitPoolEmpty
	case s.Attempts >= s.Budget:
		return ExitBudget
	case !l.now().Before(s.Deadline):
		return ExitDeadline
	}
	return ""
}

// attempt draws one candidate and fetches it. Rejected ids are not returned
// to the pool.
func (l *Loader) attempt(ctx context.Context, s *Session) {
	id, ok := l.pool.Draw()
	if !ok {
		return
	}
	if l.seen.Has(id) {
		l.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindItemReject, Comp: comp, LoadID: s.ID, ItemID: int64(id), Msg: "seen"})
		return
	}

	item := l.catalog.FetchItem(ctx, id)
	if item == nil {
		l.log.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindItemReject, Comp: comp, LoadID: s.ID, ItemID: int64(id)})
		return
	}

	l.seen.Add(id)
	if l.recorder != nil {
		if err := l.recorder.MarkShown(ctx, *item); err != nil {
			l.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindStoreError, Comp: comp, LoadID: s.ID, ItemID: int64(id), Err: err.Error()})
		}
	}
	l.sink.Append(*item)
	s.Accepted++
	l.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindItemAccept, Comp: comp, LoadID: s.ID, ItemID: int64(id)})
}

// refill reloads the pool in the background. Returns false if a refill is
// already running.
func (l *Loader) refill(ctx context.Context) bool {
	if !l.refilling.CompareAndSwap(false, true) {
		return false
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.refilling.Store(false)

		start := l.now()
		ids, err := l.catalog.FetchIDPool(ctx)
		if err != nil {
			l.pool.Clear()
			l.log.Emit(otel.Event{Level: otel.LevelError, Kind: otel.KindPoolError, Comp: comp, Err: err.Error(), Msg: "refill"})
			// Sent even when the batch that scheduled this refill accepted items:
			// the cleared pool blocks every later session.
			l.sink.Notify(MsgPoolUnavailable, SeverityError)
			return
		}
		l.pool.Refill(ids)
		l.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindPoolRefill, Comp: comp, Count: len(ids), Dur: l.now().Sub(start)})
	}()
	return true
}

// Wait blocks until any background refill finishes.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Loading reports whether a session is active.
func (l *Loader) Loading() bool {
	return l.loading.Load()
}

// PoolSize returns the number of undrawn candidate ids.
func (l *Loader) PoolSize() int {
	return l.pool.Size()
}

// SeenCount returns the number of ids accepted so far (including history).
func (l *Loader) SeenCount() int {
	return l.seen.Len()
}
