package domain

import "time"

// AuditLog records a mutating action performed through the API.
type AuditLog struct {
	ID      string    `bson:"_id" json:"id"`
	Actor   string    `bson:"actor" json:"actor"`
	ActorIP string    `bson:"actor_ip" json:"actor_ip"`
	Action  string    `bson:"action" json:"action"`
	Detail  string    `bson:"detail" json:"detail"`
	At      time.Time `bson:"at" json:"at"`
}

func (AuditLog) CollectionName() string {
	return "audit_logs"
}
