// internal/app/notify/notify.go
//
// Package notify is the best-effort notification dispatcher. Its
// contract is part of the interface, not an accident of error
// handling: Notify never fails the calling operation. A join that
// succeeded stays succeeded even when the owner's notification cannot
// be written; the failure is logged and dropped.
package notify

import (
	"context"

	notificationstore "github.com/dalemusser/creatorhub/internal/app/store/notifications"
	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Service writes notifications to the notifications collection and,
// when a mailer is configured, mirrors them to email.
type Service struct {
	store  *notificationstore.Store
	mailer Mailer
	log    *zap.Logger
}

// Mailer sends a single email. Optional; nil disables email delivery.
type Mailer interface {
	Send(m Email) error
}

// Email is one outbound message.
type Email struct {
	To       string
	Subject  string
	TextBody string
}

// New constructs the notification service. mailer may be nil.
func New(db *mongo.Database, mailer Mailer, logger *zap.Logger) *Service {
	return &Service{
		store:  notificationstore.New(db),
		mailer: mailer,
		log:    logger,
	}
}

// Notify dispatches a notification. Never returns an error; failures
// are logged at Warn and swallowed.
func (s *Service) Notify(ctx context.Context, n models.Notification) {
	if _, err := s.store.Create(ctx, n); err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("recipient_id", n.RecipientID.Hex()),
			zap.String("kind", n.Kind),
			zap.Error(err))
		return
	}
	s.log.Debug("notification dispatched",
		zap.String("recipient_id", n.RecipientID.Hex()),
		zap.String("kind", n.Kind))
}

// NotifyEmail dispatches a notification and additionally emails the
// recipient address. Both deliveries are best-effort.
func (s *Service) NotifyEmail(ctx context.Context, n models.Notification, email string) {
	s.Notify(ctx, n)
	if s.mailer == nil || email == "" {
		return
	}
	if err := s.mailer.Send(Email{To: email, Subject: n.Title, TextBody: n.Message}); err != nil {
		s.log.Warn("notification email failed",
			zap.String("to", email),
			zap.String("kind", n.Kind),
			zap.Error(err))
	}
}
