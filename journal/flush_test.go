package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/lending-library-go/journal"
	"github.com/AntonStoeckl/lending-library-go/library"
)

// conflictingJournal lets a competing writer append to the same library before the first few appends.
type conflictingJournal struct {
	*journal.MemoryJournal
	t         *testing.T
	conflicts int
}

func (cj *conflictingJournal) Append(
	ctx context.Context,
	filter journal.Filter,
	expectedMaxSequenceNumber journal.MaxSequenceNumberUint,
	event journal.StorableEvent,
	additionalEvents ...journal.StorableEvent,
) error {

	if cj.conflicts > 0 {
		cj.conflicts--
		givenEventsWereAppended(cj.t, cj.MemoryJournal, fixtureRegistered(centralLibrary, 99, fakeClock))
	}

	return cj.MemoryJournal.Append(ctx, filter, expectedMaxSequenceNumber, event, additionalEvents...)
}

func Test_Flush_AppendsAllPendingEvents_WithOneCorrelationID(t *testing.T) {
	// arrange
	lib := library.NewLibrary(centralLibrary, library.WithClock(func() time.Time { return fakeClock }))
	book := fixtureBook("123")
	require.ErrorIs(t, lib.AddBook(book), library.ShelfExistsError, "no shelf yet")
	require.NoError(t, lib.AddShelf("sci-fi"))
	reader := fixtureReader(7)
	require.NoError(t, lib.AddReader(reader))
	require.NoError(t, lib.CheckOutBook(reader, book))
	pending := lib.DrainEvents()
	j := journal.NewMemoryJournal()

	// act
	err := journal.Flush(t.Context(), j, centralLibrary, pending)

	// assert
	require.NoError(t, err)
	storableEvents, _, err := j.Query(t.Context(), journal.LibraryFilter(centralLibrary))
	require.NoError(t, err)
	assert.Len(t, storableEvents, len(pending))

	correlationIDs := make(map[string]struct{})
	messageIDs := make(map[string]struct{})
	for _, storableEvent := range storableEvents {
		metadata, metadataErr := journal.MetadataFrom(storableEvent)
		require.NoError(t, metadataErr)
		correlationIDs[metadata.CorrelationID] = struct{}{}
		messageIDs[metadata.MessageID] = struct{}{}
	}
	assert.Len(t, correlationIDs, 1)
	assert.Len(t, messageIDs, len(pending))

	domainEvents, err := journal.DomainEventsFrom(storableEvents)
	require.NoError(t, err)
	assert.Equal(t, pending, domainEvents)
}

func Test_Flush_DoesNothing_When_ThereAreNoEvents(t *testing.T) {
	// arrange
	j := journal.NewMemoryJournal()

	// act
	err := journal.Flush(t.Context(), j, centralLibrary, nil)

	// assert
	assert.NoError(t, err)
	assert.Zero(t, j.Len())
}

func Test_Flush_Retries_When_A_ConcurrencyConflict_Happens(t *testing.T) {
	// arrange
	j := &conflictingJournal{MemoryJournal: journal.NewMemoryJournal(), t: t, conflicts: 2}

	// act
	err := journal.Flush(
		t.Context(),
		j,
		centralLibrary,
		library.DomainEvents{fixtureRegistered(centralLibrary, 1, fakeClock)},
		journal.WithBaseDelay(time.Millisecond),
	)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, j.Len(), "two competing events and the flushed one")
}

func Test_Flush_Fails_When_RetriesAreExhausted(t *testing.T) {
	// arrange
	j := &conflictingJournal{MemoryJournal: journal.NewMemoryJournal(), t: t, conflicts: 10}

	// act
	err := journal.Flush(
		t.Context(),
		j,
		centralLibrary,
		library.DomainEvents{fixtureRegistered(centralLibrary, 1, fakeClock)},
		journal.WithMaxAttempts(2),
		journal.WithBaseDelay(time.Millisecond),
	)

	// assert
	assert.True(t, errors.Is(err, journal.ErrConcurrencyConflict))
}

func Test_ReaderHistory_ReturnsTheReadersLendingEvents_OldestFirst(t *testing.T) {
	// arrange
	j := journal.NewMemoryJournal()
	givenEventsWereAppended(
		t,
		j,
		fixtureAddedToCatalog(centralLibrary, "123", fakeClock),
		fixtureRegistered(centralLibrary, 7, fakeClock),
		fixtureLent(centralLibrary, "123", 7, fakeClock.Add(time.Minute)),
		fixtureLent(centralLibrary, "456", 8, fakeClock.Add(2*time.Minute)),
		fixtureLent(branchLibrary, "123", 7, fakeClock.Add(3*time.Minute)),
		fixtureReturned(centralLibrary, "123", 7, fakeClock.Add(4*time.Minute)),
	)

	// act
	history, err := journal.ReaderHistory(t.Context(), j, centralLibrary, 7)

	// assert
	require.NoError(t, err)
	assert.Equal(
		t,
		library.DomainEvents{
			fixtureRegistered(centralLibrary, 7, fakeClock),
			fixtureLent(centralLibrary, "123", 7, fakeClock.Add(time.Minute)),
			fixtureReturned(centralLibrary, "123", 7, fakeClock.Add(4*time.Minute)),
		},
		history,
	)
}
