package notify

import (
	"errors"
	"sync"
	"testing"

	"github.com/dalemusser/creatorhub/internal/domain/models"
	"github.com/dalemusser/creatorhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// failingMailer always errors, simulating an unreachable SMTP host.
type failingMailer struct {
	mu    sync.Mutex
	calls int
}

func (m *failingMailer) Send(Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return errors.New("smtp unreachable")
}

func (m *failingMailer) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestNotifyEmail_MailerFailureStillPersists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	mailer := &failingMailer{}
	s := New(db, mailer, zap.NewNop())

	recipient := primitive.NewObjectID()
	s.NotifyEmail(ctx, models.Notification{
		RecipientID: recipient,
		Kind:        models.NotifyJoinRequest,
		Title:       "Neue Beitrittsanfrage",
		Message:     "Carla möchte Studio Nord beitreten.",
	}, "max@test.com")

	if got := mailer.sendCount(); got != 1 {
		t.Errorf("mailer calls: got %d, want 1", got)
	}
	count, err := db.Collection("notifications").CountDocuments(ctx, bson.M{"recipient_id": recipient})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 1 {
		t.Errorf("persisted notifications: got %d, want 1", count)
	}
}

func TestNotifyEmail_NoMailerSkipsEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := New(db, nil, zap.NewNop())

	recipient := primitive.NewObjectID()
	s.NotifyEmail(ctx, models.Notification{
		RecipientID: recipient,
		Kind:        models.NotifyMemberApproved,
		Title:       "Beitritt bestätigt",
		Message:     "Du bist jetzt Mitglied von Studio Nord.",
	}, "carla@test.com")

	count, err := db.Collection("notifications").CountDocuments(ctx, bson.M{"recipient_id": recipient})
	if err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if count != 1 {
		t.Errorf("persisted notifications: got %d, want 1", count)
	}
}
