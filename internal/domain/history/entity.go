package history

import (
	"time"

	"github.com/google/uuid"
)

// EntityType says which kind of record a history entry belongs to
type EntityType string

const (
	EntityOrder         EntityType = "order"
	EntityCustomRequest EntityType = "custom_request"
)

// ActorKind says who triggered the transition
type ActorKind string

const (
	ActorStaff    ActorKind = "staff"
	ActorCustomer ActorKind = "customer"
	ActorSystem   ActorKind = "system"
)

// Entry is one append-only audit fact: a status moved from OldStatus to
// NewStatus. Entries are never updated or deleted. OldStatus is empty for
// the initial entry written when the entity is created.
type Entry struct {
	ID            string     `json:"id"`
	EntityID      string     `json:"entity_id"`
	EntityType    EntityType `json:"entity_type"`
	OldStatus     string     `json:"old_status"`
	NewStatus     string     `json:"new_status"`
	ChangedBy     string     `json:"changed_by"`
	ChangedByKind ActorKind  `json:"changed_by_kind"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// NewEntry builds a history entry with a generated id. CreatedAt is stamped
// by the store inside the same transaction as the status write.
func NewEntry(entityID string, entityType EntityType, oldStatus, newStatus, changedBy string, kind ActorKind, notes string) Entry {
	return Entry{
		ID:            uuid.New().String(),
		EntityID:      entityID,
		EntityType:    entityType,
		OldStatus:     oldStatus,
		NewStatus:     newStatus,
		ChangedBy:     changedBy,
		ChangedByKind: kind,
		Notes:         notes,
	}
}
