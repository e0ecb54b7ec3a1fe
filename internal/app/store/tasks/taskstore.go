// internal/app/store/tasks/taskstore.go
package taskstore

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
	return &Store{c: db.Collection("tasks")}
}

var (
	errEmptyTitle = errors.New("task title is required")
	errBadStage   = errors.New("unknown pipeline stage")
)

// Create inserts a pipeline task. Stage defaults to idea.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return models.Task{}, errEmptyTitle
	}
	if t.Stage == "" {
		t.Stage = models.StageIdea
	}
	if !models.ValidStage(t.Stage) {
		return models.Task{}, errBadStage
	}
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task, scoped to the company.
func (s *Store) GetByID(ctx context.Context, id, companyID primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByCompany returns a company's tasks, optionally filtered by
// stage, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID, stage string) ([]models.Task, error) {
	filter := bson.M{"company_id": companyID}
	if stage != "" {
		filter["stage"] = stage
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// SetStage moves a task to a pipeline stage, scoped to the company.
func (s *Store) SetStage(ctx context.Context, id, companyID primitive.ObjectID, stage string) error {
	if !models.ValidStage(stage) {
		return errBadStage
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID},
		bson.M{"$set": bson.M{"stage": stage, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Assign sets (or clears, with nil) a task's assignee.
func (s *Store) Assign(ctx context.Context, id, companyID primitive.ObjectID, assigneeID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if assigneeID != nil {
		update["$set"].(bson.M)["assignee_id"] = *assigneeID
	} else {
		update["$unset"] = bson.M{"assignee_id": ""}
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "company_id": companyID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a task, scoped to the company.
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
