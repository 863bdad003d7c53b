package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type (
	// AuditRecord is an append-only trace of a team lifecycle action.
	AuditRecord struct {
		ID         string          `json:"id" bson:"_id"`
		ActorID    string          `json:"actorId" bson:"actorId"`
		ActorEmail string          `json:"actorEmail,omitempty" bson:"actorEmail,omitempty"`
		Action     AuditAction     `json:"action" bson:"action"`
		TargetType string          `json:"targetType" bson:"targetType"`
		TargetID   string          `json:"targetId" bson:"targetId"`
		Details    json.RawMessage `json:"details,omitempty" bson:"details,omitempty"`
		Recorded   time.Time       `json:"recordedAt" bson:"recorded"`
	}

	AuditAction string
)

const (
	AuditInviteSent      AuditAction = "team.invite_sent"
	AuditInviteAccepted  AuditAction = "team.invite_accepted"
	AuditInviteDeclined  AuditAction = "team.invite_declined"
	AuditInviteCancelled AuditAction = "team.invite_cancelled"

	AuditTargetInvite = "invite"
)

func NewAuditRecord(actorID, actorEmail string, action AuditAction, targetType, targetID string, details interface{}) *AuditRecord {
	record := &AuditRecord{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		ActorEmail: actorEmail,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Recorded:   time.Now().UTC(),
	}
	record.AddDetails(details)
	return record
}

//Add details data
func (r *AuditRecord) AddDetails(data interface{}) {
	if data == nil {
		return
	}
	jsonData, _ := json.Marshal(data)
	r.Details = jsonData
}
