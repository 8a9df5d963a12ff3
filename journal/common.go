package journal

import (
	"context"
	"errors"
)

var (
	ErrEmptyTableNameSupplied      = errors.New("empty table name supplied")
	ErrNilDatabaseConnection       = errors.New("database connection must not be nil")
	ErrBuildingQueryFailed         = errors.New("building the query failed")
	ErrQueryingEventsFailed        = errors.New("querying events failed")
	ErrScanningDBRowFailed         = errors.New("scanning a database row failed")
	ErrBuildingStorableEventFailed = errors.New("building a storable event from a database row failed")
	ErrAppendingEventFailed        = errors.New("appending events failed")
	ErrGettingRowsAffectedFailed   = errors.New("getting the rows affected count failed")
	ErrConcurrencyConflict         = errors.New("concurrency error, no rows were affected")
	ErrMigrationFailed             = errors.New("migrating the journal schema failed")
)

// MaxSequenceNumberUint is the highest sequence number of the events matched by a Filter.
type MaxSequenceNumberUint = uint

// Journal records library events and reads them back.
//
// Append must fail with ErrConcurrencyConflict when events matching filter were appended
// after expectedMaxSequenceNumber was read.
type Journal interface {
	Query(ctx context.Context, filter Filter) (StorableEvents, MaxSequenceNumberUint, error)
	Append(
		ctx context.Context,
		filter Filter,
		expectedMaxSequenceNumber MaxSequenceNumberUint,
		event StorableEvent,
		additionalEvents ...StorableEvent,
	) error
}
