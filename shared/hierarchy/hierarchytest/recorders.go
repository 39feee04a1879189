package hierarchytest

import (
	"context"
	"sync"

	"orghierarchy-backend/shared/hierarchy"
)

// AuditRecorder is a hierarchy.AuditSink that keeps records in memory.
type AuditRecorder struct {
	mu      sync.Mutex
	records []hierarchy.AuditRecord
	// Err, when set, is returned by Record and nothing is kept.
	Err error
}

func (a *AuditRecorder) Record(_ context.Context, rec hierarchy.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.records = append(a.records, rec)
	return nil
}

func (a *AuditRecorder) Records() []hierarchy.AuditRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]hierarchy.AuditRecord, len(a.records))
	copy(out, a.records)
	return out
}

// EventRecorder is a hierarchy.EventPublisher that keeps events in memory.
type EventRecorder struct {
	mu     sync.Mutex
	events []hierarchy.Event
}

func (e *EventRecorder) Publish(ev hierarchy.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *EventRecorder) Events() []hierarchy.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]hierarchy.Event, len(e.events))
	copy(out, e.events)
	return out
}
