package journal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-library-go/journal"
)

//nolint:funlen
func Test_FilterBuilder_ValidCombinations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() journal.Filter
		validate func(t *testing.T, filter journal.Filter)
	}{
		{
			name: "matching_any_event_creates_empty_filter",
			build: func() journal.Filter {
				return journal.BuildFilter().MatchingAnyEvent()
			},
			validate: func(t *testing.T, f journal.Filter) {
				assert.Empty(t, f.Items())
			},
		},
		{
			name: "event_types_only",
			build: func() journal.Filter {
				return journal.BuildFilter().
					Matching().
					AnyEventTypeOf("ReaderRemoved", "ReaderRegistered").
					Finalize()
			},
			validate: func(t *testing.T, f journal.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"ReaderRegistered", "ReaderRemoved"}, f.Items()[0].EventTypes())
				assert.Empty(t, f.Items()[0].Predicates())
			},
		},
		{
			name: "any_predicate_only",
			build: func() journal.Filter {
				return journal.BuildFilter().
					Matching().
					AnyPredicateOf(journal.P("Library", "Central"), journal.P("Library", "Branch")).
					Finalize()
			},
			validate: func(t *testing.T, f journal.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Empty(t, f.Items()[0].EventTypes())
				assert.Equal(
					t,
					[]journal.FilterPredicate{journal.P("Library", "Branch"), journal.P("Library", "Central")},
					f.Items()[0].Predicates(),
				)
				assert.False(t, f.Items()[0].AllPredicatesMustMatch())
			},
		},
		{
			name: "all_predicates_only",
			build: func() journal.Filter {
				return journal.BuildFilter().
					Matching().
					AllPredicatesOf(journal.P("Library", "Central"), journal.P("CardNumber", "7")).
					Finalize()
			},
			validate: func(t *testing.T, f journal.Filter) {
				assert.Len(t, f.Items()[0].Predicates(), 2)
				assert.True(t, f.Items()[0].AllPredicatesMustMatch())
			},
		},
		{
			name: "event_types_and_predicates",
			build: func() journal.Filter {
				return journal.BuildFilter().
					Matching().
					AnyEventTypeOf("BookCopyLentToReader").
					AndAllPredicatesOf(journal.P("Library", "Central"), journal.P("CardNumber", "7")).
					Finalize()
			},
			validate: func(t *testing.T, f journal.Filter) {
				assert.Len(t, f.Items(), 1)
				assert.Equal(t, []string{"BookCopyLentToReader"}, f.Items()[0].EventTypes())
				assert.Len(t, f.Items()[0].Predicates(), 2)
				assert.True(t, f.Items()[0].AllPredicatesMustMatch())
			},
		},
		{
			name: "predicates_and_event_types",
			build: func() journal.Filter {
				return journal.BuildFilter().
					Matching().
					AnyPredicateOf(journal.P("ISBN", "123")).
					AndAnyEventTypeOf("BookCopyLentToReader", "BookCopyReturnedByReader").
					Finalize()
			},
			validate: func(t *testing.T, f journal.Filter) {
				assert.Len(t, f.Items()[0].EventTypes(), 2)
				assert.Len(t, f.Items()[0].Predicates(), 1)
			},
		},
		{
			name: "multiple_items_joined_with_or",
			build: func() journal.Filter {
				return journal.BuildFilter().
					Matching().
					AnyEventTypeOf("ShelfAdded").
					OrMatching().
					AnyPredicateOf(journal.P("ISBN", "123")).
					OrMatching().
					AnyEventTypeOf("ReaderRemoved").
					AndAnyPredicateOf(journal.P("CardNumber", "7")).
					Finalize()
			},
			validate: func(t *testing.T, f journal.Filter) {
				assert.Len(t, f.Items(), 3)
				assert.Equal(t, []string{"ShelfAdded"}, f.Items()[0].EventTypes())
				assert.Equal(t, []journal.FilterPredicate{journal.P("ISBN", "123")}, f.Items()[1].Predicates())
				assert.Equal(t, []string{"ReaderRemoved"}, f.Items()[2].EventTypes())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.validate(t, tc.build())
		})
	}
}

func Test_FilterBuilder_Drops_EmptyAndDuplicateInput(t *testing.T) {
	// act
	filter := journal.BuildFilter().
		Matching().
		AnyEventTypeOf("ShelfAdded", "", "ShelfAdded", "BookAddedToCatalog").
		AndAnyPredicateOf(
			journal.P("Library", "Central"),
			journal.P("", "Central"),
			journal.P("Library", ""),
			journal.P("Library", "Central"),
		).
		Finalize()

	// assert
	assert.Equal(t, []string{"BookAddedToCatalog", "ShelfAdded"}, filter.Items()[0].EventTypes())
	assert.Equal(t, []journal.FilterPredicate{journal.P("Library", "Central")}, filter.Items()[0].Predicates())
}

func Test_FilterBuilder_Steps_DoNotShareState(t *testing.T) {
	// arrange
	base := journal.BuildFilter().
		Matching().
		AnyEventTypeOf("ShelfAdded").
		OrMatching()

	// act
	first := base.AnyEventTypeOf("ReaderRegistered").Finalize()
	second := base.AnyEventTypeOf("ReaderRemoved").Finalize()

	// assert
	assert.Equal(t, []string{"ReaderRegistered"}, first.Items()[1].EventTypes())
	assert.Equal(t, []string{"ReaderRemoved"}, second.Items()[1].EventTypes())
}

func Test_LibraryFilter_And_ReaderHistoryFilter(t *testing.T) {
	// act
	libraryFilter := journal.LibraryFilter(centralLibrary)
	historyFilter := journal.ReaderHistoryFilter(centralLibrary, 7)

	// assert
	assert.Equal(t, []journal.FilterPredicate{journal.P("Library", centralLibrary)}, libraryFilter.Items()[0].Predicates())
	assert.Empty(t, libraryFilter.Items()[0].EventTypes())

	assert.Contains(t, historyFilter.Items()[0].EventTypes(), "BookCopyLentToReader")
	assert.True(t, historyFilter.Items()[0].AllPredicatesMustMatch())
	assert.Equal(
		t,
		[]journal.FilterPredicate{journal.P("CardNumber", "7"), journal.P("Library", centralLibrary)},
		historyFilter.Items()[0].Predicates(),
	)
}
