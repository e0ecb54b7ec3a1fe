// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/creatorhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

var (
	errEmptyTitle = errors.New("event title is required")
	errBadRange   = errors.New("event end must not be before start")
)

// Create inserts a calendar event.
func (s *Store) Create(ctx context.Context, ev models.Event) (models.Event, error) {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return models.Event{}, errEmptyTitle
	}
	if ev.EndsAt.Before(ev.StartsAt) {
		return models.Event{}, errBadRange
	}
	now := time.Now().UTC()
	ev.ID = primitive.NewObjectID()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return models.Event{}, err
	}
	return ev, nil
}

// ListByCompany returns a company's events overlapping [from, to),
// sorted by start time. Zero times skip the corresponding bound.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID, from, to time.Time) ([]models.Event, error) {
	filter := bson.M{"company_id": companyID}
	if !from.IsZero() {
		filter["ends_at"] = bson.M{"$gte": from}
	}
	if !to.IsZero() {
		filter["starts_at"] = bson.M{"$lt": to}
	}
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []models.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Update modifies an event's mutable fields, scoped to the company so
// one team cannot edit another's calendar.
func (s *Store) Update(ctx context.Context, id, companyID primitive.ObjectID, ev models.Event) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if t := strings.TrimSpace(ev.Title); t != "" {
		set["title"] = t
	}
	if ev.Description != "" {
		set["description"] = ev.Description
	}
	if !ev.StartsAt.IsZero() {
		set["starts_at"] = ev.StartsAt
	}
	if !ev.EndsAt.IsZero() {
		set["ends_at"] = ev.EndsAt
	}
	set["all_day"] = ev.AllDay

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "company_id": companyID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an event, scoped to the company.
func (s *Store) Delete(ctx context.Context, id, companyID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
