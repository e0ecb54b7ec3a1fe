// internal/app/store/finance/financestore.go
package financestore

import (
	"context"
	"errors"
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
	return &Store{c: db.Collection("finance_entries")}
}

var (
	errBadKind   = errors.New(`kind must be "income" or "expense"`)
	errBadAmount = errors.New("amount must be positive")
)

// Create inserts a ledger entry.
func (s *Store) Create(ctx context.Context, e models.FinanceEntry) (models.FinanceEntry, error) {
	if e.Kind != models.FinanceIncome && e.Kind != models.FinanceExpense {
		return models.FinanceEntry{}, errBadKind
	}
	if e.AmountCents <= 0 {
		return models.FinanceEntry{}, errBadAmount
	}
	if e.Currency == "" {
		e.Currency = "EUR"
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.FinanceEntry{}, err
	}
	return e, nil
}

// ListByCompany returns a company's entries, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID, limit int64) ([]models.FinanceEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.FinanceEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Delete removes an entry, scoped to the company.
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

// MonthSummary aggregates one month's totals for a company.
type MonthSummary struct {
	Month        string `bson:"_id" json:"month"` // "2026-08"
	IncomeCents  int64  `bson:"income_cents" json:"income_cents"`
	ExpenseCents int64  `bson:"expense_cents" json:"expense_cents"`
}

// SummaryByMonth aggregates income/expense totals per month for a
// company, oldest month first.
func (s *Store) SummaryByMonth(ctx context.Context, companyID primitive.ObjectID) ([]MonthSummary, error) {
	cur, err := s.c.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"company_id": companyID}},
		{"$group": bson.M{
			"_id": bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$occurred_at"}},
			"income_cents": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$kind", models.FinanceIncome}}, "$amount_cents", 0}}},
			"expense_cents": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$kind", models.FinanceExpense}}, "$amount_cents", 0}}},
		}},
		{"$sort": bson.M{"_id": 1}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []MonthSummary
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
