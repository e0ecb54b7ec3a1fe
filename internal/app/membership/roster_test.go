package membership

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/creatorhub/internal/app/system/indexes"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/creatorhub/internal/testutil"
	"go.uber.org/zap"
)

// The watcher is exercised through its resync path here: standalone
// test MongoDB instances have no change streams, so the watcher falls
// back to interval polling, which is the same reload code.

func TestWatcher_DeliversSnapshotsOnChange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateManager(ctx, "Max", "max@test.com")
	co := fx.CreateCompany(ctx, "Studio Nord", owner.ID, "EEEEEE", models.TierPro)

	c := New(db, &captureNotifier{}, zap.NewNop())
	w := NewWatcher(db, c, co.ID, zap.NewNop())
	w.resync = 50 * time.Millisecond
	w.Start(context.Background())
	defer w.Stop()

	ch, cancelSub := w.Subscribe()
	defer cancelSub()

	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	fx.CreateMembership(ctx, co.ID, creator.ID, models.MembershipApproved)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case entries := <-ch:
			if len(entries) == 1 && entries[0].Profile.ID == creator.ID {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for roster snapshot")
		}
	}
}

func TestWatcher_SubscribeSeedsCurrentRoster(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateManager(ctx, "Max", "max@test.com")
	co := fx.CreateCompany(ctx, "Studio Nord", owner.ID, "HHHHHH", models.TierPro)
	creator := fx.CreateCreator(ctx, "Carla", "carla@test.com")
	fx.CreateMembership(ctx, co.ID, creator.ID, models.MembershipApproved)

	c := New(db, &captureNotifier{}, zap.NewNop())
	w := NewWatcher(db, c, co.ID, zap.NewNop())
	w.resync = 50 * time.Millisecond
	w.Start(context.Background())
	defer w.Stop()

	// Wait for the initial load through a first subscriber.
	first, cancelFirst := w.Subscribe()
	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for initial roster load")
	}
	cancelFirst()

	// A late subscriber gets the current roster without any change
	// happening.
	late, cancelLate := w.Subscribe()
	defer cancelLate()
	select {
	case entries := <-late:
		if len(entries) != 1 || entries[0].Profile.ID != creator.ID {
			t.Errorf("unexpected seeded roster: %+v", entries)
		}
	case <-time.After(time.Second):
		t.Fatal("late subscriber did not receive the current roster")
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c := New(db, &captureNotifier{}, zap.NewNop())
	fx := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateManager(ctx, "Max", "max@test.com")
	co := fx.CreateCompany(ctx, "Studio Nord", owner.ID, "FFFFFF", models.TierFree)

	w := NewWatcher(db, c, co.ID, zap.NewNop())
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

func TestHub_SharedWatcherAndTeardown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	c := New(db, &captureNotifier{}, zap.NewNop())
	fx := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateManager(ctx, "Max", "max@test.com")
	co := fx.CreateCompany(ctx, "Studio Nord", owner.ID, "GGGGGG", models.TierFree)

	hub := NewHub(db, c, zap.NewNop())
	defer hub.Shutdown()

	_, cancel1 := hub.Subscribe(co.ID)
	_, cancel2 := hub.Subscribe(co.ID)

	hub.mu.Lock()
	w := hub.watchers[co.ID]
	hub.mu.Unlock()
	if w == nil {
		t.Fatal("expected a running watcher")
	}
	if n := w.SubscriberCount(); n != 2 {
		t.Fatalf("subscriber count: got %d, want 2", n)
	}

	cancel1()
	if n := w.SubscriberCount(); n != 1 {
		t.Fatalf("subscriber count after first cancel: got %d, want 1", n)
	}

	cancel2()
	hub.mu.Lock()
	_, still := hub.watchers[co.ID]
	hub.mu.Unlock()
	if still {
		t.Error("watcher must be torn down when the last subscriber leaves")
	}
}
