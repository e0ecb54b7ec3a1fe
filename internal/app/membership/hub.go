// internal/app/membership/hub.go
package membership

import (
	"context"
	"sync"

	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Hub hands out one roster Watcher per company and tears each down
// when its last subscriber leaves, so idle companies hold no open
// change streams. Watcher lifetimes are bound to the Hub, not to any
// single subscriber's request.
type Hub struct {
	db          *mongo.Database
	coordinator *Coordinator
	log         *zap.Logger

	baseCtx   context.Context
	cancelAll context.CancelFunc

	mu       sync.Mutex
	watchers map[primitive.ObjectID]*Watcher
}

// NewHub creates a Hub. Call Shutdown to stop all watchers.
func NewHub(db *mongo.Database, coordinator *Coordinator, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		db:          db,
		coordinator: coordinator,
		log:         logger,
		baseCtx:     ctx,
		cancelAll:   cancel,
		watchers:    make(map[primitive.ObjectID]*Watcher),
	}
}

// Subscribe attaches to the company's live roster, starting a watcher
// if none is running. The returned cancel function detaches and stops
// the watcher once nobody else is listening.
func (h *Hub) Subscribe(companyID primitive.ObjectID) (<-chan []models.RosterEntry, func()) {
	h.mu.Lock()
	w, ok := h.watchers[companyID]
	if !ok {
		w = NewWatcher(h.db, h.coordinator, companyID, h.log)
		h.watchers[companyID] = w
		w.Start(h.baseCtx)
	}
	ch, cancelSub := w.Subscribe()
	h.mu.Unlock()

	cancel := func() {
		cancelSub()
		h.mu.Lock()
		if w.SubscriberCount() == 0 {
			delete(h.watchers, companyID)
			h.mu.Unlock()
			w.Stop()
			return
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Shutdown stops every running watcher.
func (h *Hub) Shutdown() {
	h.cancelAll()

	h.mu.Lock()
	watchers := make([]*Watcher, 0, len(h.watchers))
	for id, w := range h.watchers {
		watchers = append(watchers, w)
		delete(h.watchers, id)
	}
	h.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
}
