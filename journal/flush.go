package journal

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/lending-library-go/library"
)

const payloadKeyLibrary = "Library"
const payloadKeyCardNumber = "CardNumber"

// LibraryFilter matches every event of the named library.
func LibraryFilter(libraryName string) Filter {
	return BuildFilter().
		Matching().
		AnyPredicateOf(P(payloadKeyLibrary, libraryName)).
		Finalize()
}

// ReaderHistoryFilter matches the lending events of one reader of the named library.
func ReaderHistoryFilter(libraryName string, cardNumber int) Filter {
	return BuildFilter().
		Matching().
		AnyEventTypeOf(
			library.BookCopyLentToReaderEventType,
			library.LendingBookToReaderFailedEventType,
			library.BookCopyReturnedByReaderEventType,
			library.ReaderRegisteredEventType,
			library.ReaderRemovedEventType,
		).
		AndAllPredicatesOf(
			P(payloadKeyLibrary, libraryName),
			P(payloadKeyCardNumber, strconv.Itoa(cardNumber)),
		).
		Finalize()
}

// Flush appends events to the library's stream in j, all in one append sharing one correlation id.
//
// The append is conditional on the library's stream being unchanged since it was read, and
// is retried with RetryWithExponentialBackoff on ErrConcurrencyConflict.
func Flush(ctx context.Context, j Journal, libraryName string, events library.DomainEvents, options ...RetryOption) error {
	if len(events) == 0 {
		return nil
	}

	correlationID := uuid.New()

	storableEvents := make(StorableEvents, 0, len(events))
	for _, event := range events {
		storableEvent, err := StorableEventFrom(event, BuildMetadata(uuid.New(), correlationID))
		if err != nil {
			return err
		}

		storableEvents = append(storableEvents, storableEvent)
	}

	filter := LibraryFilter(libraryName)

	return RetryWithExponentialBackoff(
		ctx,
		func(ctx context.Context) error {
			_, maxSequenceNumber, err := j.Query(ctx, filter)
			if err != nil {
				return err
			}

			return j.Append(ctx, filter, maxSequenceNumber, storableEvents[0], storableEvents[1:]...)
		},
		options...,
	)
}

// ReaderHistory returns the journaled lending history of one reader, oldest first.
func ReaderHistory(ctx context.Context, j Journal, libraryName string, cardNumber int) (library.DomainEvents, error) {
	storableEvents, _, err := j.Query(ctx, ReaderHistoryFilter(libraryName, cardNumber))
	if err != nil {
		return nil, err
	}

	return DomainEventsFrom(storableEvents)
}
