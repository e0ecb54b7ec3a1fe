// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Errors are aggregated so every problem is visible and startup can fail
fast.

The unique indexes on companies (owner_id, invite_code) and on
memberships (company_id, user_id) are the authoritative enforcement of
the one-company-per-owner, code-uniqueness, and one-membership-per-pair
invariants. The coordinator's pre-checks only exist to produce friendly
messages; under concurrent writers these indexes are what actually
holds the line.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureCompanies(ctx, db); err != nil {
		problems = append(problems, "companies: "+err.Error())
	}
	if err := ensureMemberships(ctx, db); err != nil {
		problems = append(problems, "memberships: "+err.Error())
	}
	if err := ensureNotifications(ctx, db); err != nil {
		problems = append(problems, "notifications: "+err.Error())
	}
	if err := ensureEvents(ctx, db); err != nil {
		problems = append(problems, "events: "+err.Error())
	}
	if err := ensureFinanceEntries(ctx, db); err != nil {
		problems = append(problems, "finance_entries: "+err.Error())
	}
	if err := ensureAssets(ctx, db); err != nil {
		problems = append(problems, "assets: "+err.Error())
	}
	if err := ensureTasks(ctx, db); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureContracts(ctx, db); err != nil {
		problems = append(problems, "contracts: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func create(ctx context.Context, db *mongo.Database, coll string, models []mongo.IndexModel) error {
	_, err := db.Collection(coll).Indexes().CreateMany(ctx, models)
	return err
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "users", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetName("idx_users_email_ci").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}},
			Options: options.Index().SetName("idx_users_company"),
		},
	})
}

func ensureCompanies(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "companies", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}},
			Options: options.Index().SetName("idx_companies_owner").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "invite_code", Value: 1}},
			Options: options.Index().SetName("idx_companies_invite_code").SetUnique(true),
		},
	})
}

func ensureMemberships(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "memberships", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_memberships_company_user").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_memberships_user"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "notifications", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_recipient"),
		},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "events", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "starts_at", Value: 1}},
			Options: options.Index().SetName("idx_events_company_start"),
		},
	})
}

func ensureFinanceEntries(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "finance_entries", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("idx_finance_company_occurred"),
		},
	})
}

func ensureAssets(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "assets", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_assets_company_created"),
		},
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "tasks", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "stage", Value: 1}},
			Options: options.Index().SetName("idx_tasks_company_stage"),
		},
		{
			Keys:    bson.D{{Key: "assignee_id", Value: 1}},
			Options: options.Index().SetName("idx_tasks_assignee"),
		},
	})
}

func ensureContracts(ctx context.Context, db *mongo.Database) error {
	return create(ctx, db, "contracts", []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_contracts_company_user"),
		},
	})
}
