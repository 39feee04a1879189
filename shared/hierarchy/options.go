package hierarchy

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/logger"
)

// DefaultMaxDepth is the deepest hierarchy level allowed when none is configured.
const DefaultMaxDepth = 10

const (
	EventOrganizationCreated = "organization.created"
	EventOrganizationDeleted = "organization.deleted"
	EventOrganizationUpdated = "organization.updated"
)

// Event describes a committed hierarchy change.
type Event struct {
	Type           string               `json:"type"`
	OrganizationID uuid.UUID            `json:"organizationId"`
	ParentOrgID    *uuid.UUID           `json:"parentOrgId,omitempty"`
	ActorID        uuid.UUID            `json:"actorId"`
	Organization   *models.Organization `json:"organization,omitempty"`
	OccurredAt     time.Time            `json:"occurredAt"`
}

// EventPublisher receives events after commit. Publish must not block.
type EventPublisher interface {
	Publish(ev Event)
}

// Actor is the authenticated caller of a hierarchy operation.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  string
}

type options struct {
	events EventPublisher
	log    *logrus.Logger
	now    func() time.Time
}

type Option func(*options)

func WithEventPublisher(p EventPublisher) Option {
	return func(o *options) { o.events = p }
}

func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		log: logger.Get(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) publish(ev Event) {
	if o.events != nil {
		o.events.Publish(ev)
	}
}
