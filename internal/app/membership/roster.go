// internal/app/membership/roster.go
package membership

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultResyncInterval bounds staleness when the change stream drops:
// the watcher re-reads the roster at this interval regardless of
// events.
const DefaultResyncInterval = 30 * time.Second

// Watcher maintains a live roster for one company. It tails a change
// stream on the memberships collection and, on every relevant event,
// re-resolves the full member list and replaces the snapshot
// atomically. Subscribers receive each new snapshot; slow subscribers
// miss intermediate snapshots rather than blocking the watcher.
type Watcher struct {
	coordinator *Coordinator
	memberships *mongo.Collection
	companyID   primitive.ObjectID
	resync      time.Duration
	log         *zap.Logger

	mu       sync.RWMutex
	snapshot []models.RosterEntry
	loaded   bool
	subs     map[chan []models.RosterEntry]struct{}

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher creates a roster watcher for a company. Call Start to
// begin tailing and Stop to tear the stream down; leaving a watcher
// running after its consumers are gone leaks a server-side cursor.
func NewWatcher(db *mongo.Database, coordinator *Coordinator, companyID primitive.ObjectID, logger *zap.Logger) *Watcher {
	return &Watcher{
		coordinator: coordinator,
		memberships: db.Collection("memberships"),
		companyID:   companyID,
		resync:      DefaultResyncInterval,
		log:         logger,
		snapshot:    []models.RosterEntry{},
		subs:        make(map[chan []models.RosterEntry]struct{}),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the watch loop and performs an initial load.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
	w.log.Info("roster watcher started",
		zap.String("company_id", w.companyID.Hex()))
}

// Stop tears down the change stream and waits for the loop to finish.
// Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("roster watcher stopped",
		zap.String("company_id", w.companyID.Hex()))
}

// Subscribe registers a channel that receives every new snapshot. When
// the initial load has already happened, the channel is seeded with
// the current roster so subscribers never wait for the next change.
// The returned cancel function unregisters it; after cancel returns no
// more sends happen on the channel.
func (w *Watcher) Subscribe() (<-chan []models.RosterEntry, func()) {
	ch := make(chan []models.RosterEntry, 1)
	w.mu.Lock()
	w.subs[ch] = struct{}{}
	if w.loaded {
		ch <- w.snapshot
	}
	w.mu.Unlock()

	cancel := func() {
		w.mu.Lock()
		delete(w.subs, ch)
		w.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount reports the number of registered subscribers.
func (w *Watcher) SubscriberCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subs)
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-w.stopCh
		cancel()
	}()

	w.reload(ctx)

	ticker := time.NewTicker(w.resync)
	defer ticker.Stop()

	for {
		stream, err := w.memberships.Watch(ctx, changePipeline(w.companyID))
		if err != nil {
			w.log.Warn("roster change stream unavailable, polling instead",
				zap.String("company_id", w.companyID.Hex()),
				zap.Error(err))
			if !w.waitResync(ctx, ticker) {
				return
			}
			continue
		}

		for stream.Next(ctx) {
			// The event payload is only a trigger; the roster is always
			// re-read in full so snapshots never need patching.
			w.reload(ctx)
			w.drainResync(ticker)
		}
		_ = stream.Close(context.Background())

		if ctx.Err() != nil {
			return
		}
		w.log.Warn("roster change stream ended, reopening",
			zap.String("company_id", w.companyID.Hex()),
			zap.Error(stream.Err()))
		if !w.waitResync(ctx, ticker) {
			return
		}
	}
}

// waitResync sleeps until the next resync tick (reloading then) or
// until shutdown. Returns false on shutdown.
func (w *Watcher) waitResync(ctx context.Context, ticker *time.Ticker) bool {
	select {
	case <-ctx.Done():
		return false
	case <-ticker.C:
		w.reload(ctx)
		return true
	}
}

func (w *Watcher) drainResync(ticker *time.Ticker) {
	select {
	case <-ticker.C:
	default:
	}
}

func (w *Watcher) reload(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	entries, err := w.coordinator.Roster(ctx, w.companyID)
	if err != nil {
		// Read-path failure: keep the previous snapshot, log, move on.
		w.log.Warn("roster reload failed",
			zap.String("company_id", w.companyID.Hex()),
			zap.Error(err))
		return
	}

	w.mu.Lock()
	w.snapshot = entries
	w.loaded = true
	for ch := range w.subs {
		select {
		case ch <- entries:
		default:
			// Subscriber is behind; drop the stale snapshot and replace
			// it with the current one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- entries:
			default:
			}
		}
	}
	w.mu.Unlock()
}

// changePipeline matches membership events for one company. Delete
// events carry no full document, so they are matched unconditionally;
// the reload is scoped by company either way.
func changePipeline(companyID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.company_id": companyID},
			bson.M{"operationType": "delete"},
		}}}},
	}
}
