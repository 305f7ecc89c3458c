package database

import (
	"context"

	"github.com/gocql/gocql"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Audit rows are partitioned per UTC day so the admin screen can page
// through one day at a time, newest first.
const auditTableCQL = `CREATE TABLE IF NOT EXISTS audit_logs (
	day text,
	ts timestamp,
	id timeuuid,
	user_id text,
	action text,
	resource text,
	resource_id text,
	new_value text,
	ip_address text,
	user_agent text,
	success boolean,
	status int,
	PRIMARY KEY ((day), ts, id)
) WITH CLUSTERING ORDER BY (ts DESC, id DESC)`

// EnsureAuditSchema creates the audit table when missing.
func EnsureAuditSchema(session *gocql.Session) error {
	return session.Query(auditTableCQL).Exec()
}

// EnsureIndexes creates the MongoDB indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	sparseUnique := options.Index().SetUnique(true).SetSparse(true)

	plan := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: sparseUnique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: sparseUnique},
		},
		"categories": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		"products": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "categoryId", Value: 1}}},
		},
		"orders": {
			{Keys: bson.D{{Key: "number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "paymentIntentId", Value: 1}}, Options: options.Index().SetSparse(true)},
		},
		"returns": {
			{Keys: bson.D{{Key: "orderId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "requestDate", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		"reviews": {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "userId", Value: 1}}, Options: unique},
		},
		"blogs": {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		},
		"notifications": {
			{Keys: bson.D{{Key: "read", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for coll, models := range plan {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
