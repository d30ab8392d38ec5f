package audit

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/pkg/common"
)

// Topic is the bus topic mutating handlers publish to.
const Topic = "lapmart:audit"

// Entry is the event payload published by handlers.
type Entry struct {
	Actor   string
	ActorIP string
	Action  string
	Detail  string
}

// Recorder subscribes to the audit topic and persists entries. Writes happen
// off the request path; an audit failure never fails the request.
type Recorder struct {
	bus EventBus.Bus
	db  *mongo.Database
}

func NewRecorder(bus EventBus.Bus, db *mongo.Database) (*Recorder, error) {
	r := &Recorder{bus: bus, db: db}
	if err := bus.SubscribeAsync(Topic, r.record, false); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recorder) record(entry Entry) {
	log := domain.AuditLog{
		ID:      common.UUID(),
		Actor:   entry.Actor,
		ActorIP: entry.ActorIP,
		Action:  entry.Action,
		Detail:  entry.Detail,
		At:      time.Now(),
	}
	_, err := r.db.Collection(domain.AuditLog{}.CollectionName()).
		InsertOne(context.Background(), log)
	if err != nil {
		zap.L().Warn("audit log write failed",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

// DeleteOlderThan removes audit logs past the retention window.
func (r *Recorder) DeleteOlderThan(ctx context.Context, age time.Duration) error {
	_, err := r.db.Collection(domain.AuditLog{}.CollectionName()).
		DeleteMany(ctx, bson.M{"at": bson.M{"$lt": time.Now().Add(-age)}})
	return err
}

// Stop drains pending async deliveries.
func (r *Recorder) Stop() {
	r.bus.WaitAsync()
}

// Publish emits an audit entry on the bus. Safe to call from any handler.
func Publish(bus EventBus.Bus, entry Entry) {
	bus.Publish(Topic, entry)
}
