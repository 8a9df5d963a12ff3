package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BuildSelectQuery(t *testing.T) {
	pj, err := newPostgresJournal(nil, WithTableName("lending_events"))
	require.NoError(t, err)

	tests := []struct {
		name        string
		filter      Filter
		contains    []string
		notContains []string
	}{
		{
			name:        "empty filter selects the whole table",
			filter:      BuildFilter().MatchingAnyEvent(),
			contains:    []string{`FROM "lending_events"`, `ORDER BY "sequence_number" ASC`},
			notContains: []string{"WHERE"},
		},
		{
			name: "event types and predicates",
			filter: BuildFilter().
				Matching().
				AnyEventTypeOf("BookCopyLentToReader").
				AndAllPredicatesOf(P("Library", "Central"), P("CardNumber", "7")).
				Finalize(),
			contains: []string{
				`"event_type" = 'BookCopyLentToReader'`,
				`"payload" @> '{"CardNumber":"7"}'::jsonb`,
				`"payload" @> '{"Library":"Central"}'::jsonb`,
				" AND ",
			},
		},
		{
			name: "predicate values are quoted",
			filter: BuildFilter().
				Matching().
				AnyPredicateOf(P("Library", "O'Reilly's")).
				Finalize(),
			contains: []string{`'{"Library":"O''Reilly''s"}'::jsonb`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			sqlQuery, buildErr := pj.buildSelectQuery(tc.filter)

			// assert
			require.NoError(t, buildErr)
			for _, fragment := range tc.contains {
				assert.Contains(t, sqlQuery, fragment)
			}
			for _, fragment := range tc.notContains {
				assert.NotContains(t, sqlQuery, fragment)
			}
		})
	}
}

func Test_BuildInsertQuery(t *testing.T) {
	// arrange
	pj, err := newPostgresJournal(nil)
	require.NoError(t, err)
	occurredAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	first, err := BuildStorableEventWithEmptyMetadata("ReaderRegistered", occurredAt, []byte(`{"Library":"Central"}`))
	require.NoError(t, err)
	second, err := BuildStorableEventWithEmptyMetadata("ReaderRemoved", occurredAt, []byte(`{"Library":"Central"}`))
	require.NoError(t, err)

	// act
	sqlQuery, buildErr := pj.buildInsertQuery(StorableEvents{first, second}, BuildFilter().Matching().AnyPredicateOf(P("Library", "Central")).Finalize(), 42)

	// assert
	require.NoError(t, buildErr)
	assert.Contains(t, sqlQuery, `INSERT INTO "events"`)
	assert.Contains(t, sqlQuery, "context AS")
	assert.Contains(t, sqlQuery, `MAX("sequence_number") AS "max_seq"`)
	assert.Contains(t, sqlQuery, "UNION ALL")
	assert.Contains(t, sqlQuery, `COALESCE("max_seq", 0) = 42`)
	assert.Contains(t, sqlQuery, `'ReaderRemoved'::text`)
}

func Test_NewPostgresJournal_Fails_When_TableNameIsEmpty(t *testing.T) {
	// act
	_, err := newPostgresJournal(nil, WithTableName(""))

	// assert
	assert.ErrorIs(t, err, ErrEmptyTableNameSupplied)
}

func Test_NewFromConstructors_Fail_When_ConnectionIsNil(t *testing.T) {
	_, pgxErr := NewFromPGXPool(nil)
	_, sqlErr := NewFromSQLDB(nil)
	_, sqlxErr := NewFromSQLX(nil)

	assert.ErrorIs(t, pgxErr, ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlErr, ErrNilDatabaseConnection)
	assert.ErrorIs(t, sqlxErr, ErrNilDatabaseConnection)
}

func Test_DurationToMilliseconds(t *testing.T) {
	assert.InDelta(t, 1.5, durationToMilliseconds(1500*time.Microsecond), 0.0001)
	assert.InDelta(t, 0.001, durationToMilliseconds(1234*time.Nanosecond), 0.0001)
}
