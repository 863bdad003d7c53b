package clients

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/festivo-org/concierge/models"
)

const auditCollection = "audit_events"

// AuditRecorder appends lifecycle traces. Recording is best effort: failures
// are logged by the implementation and never surface to the caller, so a
// committed transition can not be rolled back by a broken audit sink.
type AuditRecorder interface {
	Record(ctx context.Context, record *models.AuditRecord)
}

type MongoAuditRecorder struct {
	events *mongo.Collection
	logger *zap.SugaredLogger
}

func NewMongoAuditRecorder(store *MongoStoreClient, logger *zap.SugaredLogger) *MongoAuditRecorder {
	return &MongoAuditRecorder{
		events: store.invites.Database().Collection(auditCollection),
		logger: logger,
	}
}

func (r *MongoAuditRecorder) Record(ctx context.Context, record *models.AuditRecord) {
	if _, err := r.events.InsertOne(ctx, record); err != nil {
		r.logger.With(zap.Error(err), "action", record.Action, "targetId", record.TargetID).
			Warn("recording audit event")
	}
}

func mongoAuditRecorderProvider(store *MongoStoreClient, logger *zap.SugaredLogger) AuditRecorder {
	return NewMongoAuditRecorder(store, logger)
}
