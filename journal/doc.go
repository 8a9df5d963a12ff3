// Package journal keeps an append-only record of what happened in a library.
//
// The library package collects domain events in memory; Flush turns them into StorableEvents
// and appends them to a Journal. Two implementations exist:
//
//   - PostgresJournal stores events in a table with a JSONB payload, on pgx, database/sql or sqlx
//   - MemoryJournal keeps them in process memory, mostly for tests and one-off CLI runs
//
// Appends are conditional: the caller passes the Filter it read with and the highest sequence
// number it saw, and the append fails with ErrConcurrencyConflict if matching events were added
// in between. RetryWithExponentialBackoff retries exactly that error.
//
// Reading back works with Filters:
//
//	filter := journal.BuildFilter().
//		Matching().
//		AnyEventTypeOf(library.BookCopyLentToReaderEventType).
//		AndAllPredicatesOf(journal.P("Library", "Central"), journal.P("CardNumber", "7")).
//		Finalize()
//
// Predicates compare top level payload fields with string values, which is why the library's
// event payloads carry card numbers as strings.
package journal
