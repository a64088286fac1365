package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that occurred in the domain
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	// ResourceID identifies the host platform entity the event refers to,
	// using the host's string identifier scheme.
	ResourceID() string
	ResourceType() string
}

// BaseDomainEvent provides common fields for all domain events
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ResID     string    `json:"resource_id"`
	ResType   string    `json:"resource_type"`
}

// EventID returns the unique event identifier
func (e *BaseDomainEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type of the event
func (e *BaseDomainEvent) EventType() string {
	return e.Type
}

// OccurredAt returns when the event occurred
func (e *BaseDomainEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// ResourceID returns the host entity id the event refers to
func (e *BaseDomainEvent) ResourceID() string {
	return e.ResID
}

// ResourceType returns the kind of host entity the event refers to
func (e *BaseDomainEvent) ResourceType() string {
	return e.ResType
}

// NewBaseDomainEvent creates a new base domain event
func NewBaseDomainEvent(eventType, resourceType, resourceID string) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now(),
		ResID:     resourceID,
		ResType:   resourceType,
	}
}
