package journal_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-library-go/journal"
	"github.com/AntonStoeckl/lending-library-go/library"
)

const (
	centralLibrary = "Central"
	branchLibrary  = "Branch"
)

var fakeClock = time.Date(2025, time.March, 4, 10, 30, 0, 0, time.UTC)

func fixtureBook(isbn string) *library.Book {
	return library.NewBook(isbn, "Title "+isbn, "sci-fi", 200, "Author "+isbn, time.Time{})
}

func fixtureReader(cardNumber int) *library.Reader {
	return library.NewReader(cardNumber, "Reader", "555-0000")
}

func fixtureLent(libraryName string, isbn string, cardNumber int, at time.Time) library.BookCopyLentToReader {
	return library.BuildBookCopyLentToReader(libraryName, fixtureBook(isbn), fixtureReader(cardNumber), at)
}

func fixtureReturned(libraryName string, isbn string, cardNumber int, at time.Time) library.BookCopyReturnedByReader {
	return library.BuildBookCopyReturnedByReader(libraryName, fixtureBook(isbn), fixtureReader(cardNumber), at)
}

func fixtureRegistered(libraryName string, cardNumber int, at time.Time) library.ReaderRegistered {
	return library.BuildReaderRegistered(libraryName, fixtureReader(cardNumber), at)
}

func fixtureAddedToCatalog(libraryName string, isbn string, at time.Time) library.BookAddedToCatalog {
	return library.BuildBookAddedToCatalog(libraryName, fixtureBook(isbn), 1, at)
}

func toStorable(t *testing.T, event library.DomainEvent) journal.StorableEvent {
	t.Helper()

	storableEvent, err := journal.StorableEventFrom(event, journal.BuildMetadata(uuid.New(), uuid.New()))
	require.NoError(t, err, "mapping the domain event to a storable event failed")

	return storableEvent
}

func givenEventsWereAppended(t *testing.T, j journal.Journal, events ...library.DomainEvent) {
	t.Helper()

	for _, event := range events {
		filter := journal.BuildFilter().MatchingAnyEvent()
		_, maxSequenceNumber, err := j.Query(t.Context(), filter)
		require.NoError(t, err)
		require.NoError(t, j.Append(t.Context(), filter, maxSequenceNumber, toStorable(t, event)))
	}
}
