package journal

import (
	"context"
	"errors"
	"slices"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

type memoryRecord struct {
	sequenceNumber MaxSequenceNumberUint
	event          StorableEvent
	payload        map[string]any
}

// MemoryJournal is a Journal kept in process memory, with the same filter and concurrency
// semantics as PostgresJournal. It is safe for concurrent use.
type MemoryJournal struct {
	mu      sync.RWMutex
	records []memoryRecord
}

// NewMemoryJournal creates an empty MemoryJournal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{records: make([]memoryRecord, 0)}
}

// Query returns the events matching filter in sequence order and the highest matching sequence number.
func (mj *MemoryJournal) Query(ctx context.Context, filter Filter) (StorableEvents, MaxSequenceNumberUint, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, errors.Join(ErrQueryingEventsFailed, err)
	}

	mj.mu.RLock()
	defer mj.mu.RUnlock()

	events := make(StorableEvents, 0)
	maxSequenceNumber := MaxSequenceNumberUint(0)

	for _, record := range mj.records {
		if !record.matches(filter) {
			continue
		}

		events = append(events, record.event)
		maxSequenceNumber = record.sequenceNumber
	}

	return events, maxSequenceNumber, nil
}

// Append stores the events if the highest sequence number matching filter still equals
// expectedMaxSequenceNumber, otherwise it fails with ErrConcurrencyConflict.
func (mj *MemoryJournal) Append(
	ctx context.Context,
	filter Filter,
	expectedMaxSequenceNumber MaxSequenceNumberUint,
	event StorableEvent,
	additionalEvents ...StorableEvent,
) error {

	if err := ctx.Err(); err != nil {
		return errors.Join(ErrAppendingEventFailed, err)
	}

	allEvents := append(StorableEvents{event}, additionalEvents...)

	newRecords := make([]memoryRecord, 0, len(allEvents))
	for _, e := range allEvents {
		payload := make(map[string]any)
		if err := jsoniter.ConfigFastest.Unmarshal(e.PayloadJSON, &payload); err != nil {
			return errors.Join(ErrAppendingEventFailed, ErrInvalidPayloadJSON, err)
		}

		newRecords = append(newRecords, memoryRecord{event: e, payload: payload})
	}

	mj.mu.Lock()
	defer mj.mu.Unlock()

	currentMax := MaxSequenceNumberUint(0)
	for _, record := range mj.records {
		if record.matches(filter) {
			currentMax = record.sequenceNumber
		}
	}

	if currentMax != expectedMaxSequenceNumber {
		return ErrConcurrencyConflict
	}

	next := MaxSequenceNumberUint(len(mj.records))
	for i := range newRecords {
		next++
		newRecords[i].sequenceNumber = next
	}
	mj.records = append(mj.records, newRecords...)

	return nil
}

// Len returns the number of journaled events.
func (mj *MemoryJournal) Len() int {
	mj.mu.RLock()
	defer mj.mu.RUnlock()

	return len(mj.records)
}

func (r memoryRecord) matches(filter Filter) bool {
	if len(filter.Items()) == 0 {
		return true
	}

	return slices.ContainsFunc(filter.Items(), r.matchesItem)
}

func (r memoryRecord) matchesItem(item FilterItem) bool {
	if len(item.EventTypes()) > 0 && !slices.Contains(item.EventTypes(), r.event.EventType) {
		return false
	}

	if len(item.Predicates()) == 0 {
		return true
	}

	if item.AllPredicatesMustMatch() {
		for _, predicate := range item.Predicates() {
			if !r.satisfies(predicate) {
				return false
			}
		}

		return true
	}

	return slices.ContainsFunc(item.Predicates(), r.satisfies)
}

// satisfies mirrors jsonb containment of {"key": "val"}: only string values match.
func (r memoryRecord) satisfies(predicate FilterPredicate) bool {
	val, ok := r.payload[predicate.Key()].(string)

	return ok && val == predicate.Val()
}

var _ Journal = (*MemoryJournal)(nil)
