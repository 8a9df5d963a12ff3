package journal

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/lending-library-go/journal/internal/adapters"
)

const (
	defaultTableName = "events"

	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgQueryCompleted           = "query completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "journal operation: "

	logAttrError            = "error"
	logAttrQuery            = "query"
	logAttrEventType        = "event_type"
	logAttrEventCount       = "event_count"
	logAttrDurationMS       = "duration_ms"
	logAttrExpectedEvents   = "expected_events"
	logAttrRowsAffected     = "rows_affected"
	logAttrExpectedSequence = "expected_sequence"
	logActionQuery          = "query"
	logActionAppend         = "append"

	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colSequenceNumber = "sequence_number"
	cteContext        = "context"
	cteVals           = "vals"
	dialectPostgres   = "postgres"
	aliasMaxSeq       = "max_seq"
	castText          = "?::text"
	castTimestamp     = "?::timestamp with time zone"
	castJsonb         = "?::jsonb"
	containsJsonb     = "? @> ?::jsonb"
)

type sqlQueryString = string

// Logger is satisfied by *slog.Logger.
//
// Debug level: SQL statements with execution timing
// Info level: event counts, durations, concurrency conflicts
// Warn level: cleanup failures
// Error level: failures that make the operation fail.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// PostgresJournal keeps library events in a Postgres table with the layout created by Migrate.
type PostgresJournal struct {
	db        adapters.DBAdapter
	tableName string
	logger    Logger
}

// Option defines a functional option for configuring PostgresJournal.
type Option func(*PostgresJournal) error

// WithTableName sets the events table name.
func WithTableName(tableName string) Option {
	return func(pj *PostgresJournal) error {
		if tableName == "" {
			return ErrEmptyTableNameSupplied
		}

		pj.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the PostgresJournal.
func WithLogger(logger Logger) Option {
	return func(pj *PostgresJournal) error {
		pj.logger = logger
		return nil
	}
}

type queryResultRow struct {
	eventType      string
	occurredAt     time.Time
	payload        []byte
	metadata       []byte
	sequenceNumber MaxSequenceNumberUint
}

// NewFromPGXPool creates a PostgresJournal on a pgx pool.
func NewFromPGXPool(db *pgxpool.Pool, options ...Option) (PostgresJournal, error) {
	if db == nil {
		return PostgresJournal{}, ErrNilDatabaseConnection
	}

	return newPostgresJournal(adapters.NewPGXAdapter(db), options...)
}

// NewFromSQLDB creates a PostgresJournal on a sql.DB.
func NewFromSQLDB(db *sql.DB, options ...Option) (PostgresJournal, error) {
	if db == nil {
		return PostgresJournal{}, ErrNilDatabaseConnection
	}

	return newPostgresJournal(adapters.NewSQLAdapter(db), options...)
}

// NewFromSQLX creates a PostgresJournal on a sqlx.DB.
func NewFromSQLX(db *sqlx.DB, options ...Option) (PostgresJournal, error) {
	if db == nil {
		return PostgresJournal{}, ErrNilDatabaseConnection
	}

	return newPostgresJournal(adapters.NewSQLXAdapter(db), options...)
}

func newPostgresJournal(db adapters.DBAdapter, options ...Option) (PostgresJournal, error) {
	pj := PostgresJournal{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(&pj); err != nil {
			return PostgresJournal{}, err
		}
	}

	return pj, nil
}

// Query returns the events matching filter in sequence order, together with the highest
// sequence number among them (0 if there are none).
func (pj PostgresJournal) Query(ctx context.Context, filter Filter) (StorableEvents, MaxSequenceNumberUint, error) {
	var empty StorableEvents

	sqlQuery, buildQueryErr := pj.buildSelectQuery(filter)
	if buildQueryErr != nil {
		pj.logError(logMsgBuildSelectQueryFailed, logAttrError, buildQueryErr.Error())
		return empty, 0, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := pj.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	pj.logQueryWithDuration(sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		pj.logError(logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return empty, 0, errors.Join(ErrQueryingEventsFailed, queryErr)
	}
	defer pj.closeRows(rows)

	events, maxSequenceNumber, scanErr := pj.processQueryResults(rows)
	if scanErr != nil {
		return empty, 0, scanErr
	}

	pj.logOperation(
		logMsgQueryCompleted,
		logAttrEventCount, len(events),
		logAttrDurationMS, durationToMilliseconds(duration),
	)

	return events, maxSequenceNumber, nil
}

func (pj PostgresJournal) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil && pj.logger != nil {
		pj.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (pj PostgresJournal) processQueryResults(rows adapters.DBRows) (StorableEvents, MaxSequenceNumberUint, error) {
	var empty StorableEvents
	result := queryResultRow{}
	events := make(StorableEvents, 0)
	maxSequenceNumber := MaxSequenceNumberUint(0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.eventType, &result.occurredAt, &result.payload, &result.metadata, &result.sequenceNumber)
		if rowScanErr != nil {
			pj.logError(logMsgScanRowFailed, logAttrError, rowScanErr.Error())
			return empty, 0, errors.Join(ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildErr := BuildStorableEvent(result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildErr != nil {
			pj.logError(logMsgBuildStorableEventFailed, logAttrError, buildErr.Error(), logAttrEventType, result.eventType)
			return empty, 0, errors.Join(ErrBuildingStorableEventFailed, buildErr)
		}

		events = append(events, event)
		maxSequenceNumber = result.sequenceNumber
	}

	if err := rows.Err(); err != nil {
		pj.logError(logMsgScanRowFailed, logAttrError, err.Error())
		return empty, 0, errors.Join(ErrScanningDBRowFailed, err)
	}

	return events, maxSequenceNumber, nil
}

// Append inserts the events in one statement, but only if the highest sequence number among
// the events matching filter still equals expectedMaxSequenceNumber. Otherwise nothing is
// inserted and ErrConcurrencyConflict is returned.
func (pj PostgresJournal) Append(
	ctx context.Context,
	filter Filter,
	expectedMaxSequenceNumber MaxSequenceNumberUint,
	event StorableEvent,
	additionalEvents ...StorableEvent,
) error {

	allEvents := append(StorableEvents{event}, additionalEvents...)

	sqlQuery, buildQueryErr := pj.buildInsertQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		pj.logError(logMsgBuildInsertQueryFailed, logAttrError, buildQueryErr.Error(), logAttrEventCount, len(allEvents))
		return buildQueryErr
	}

	start := time.Now()
	result, execErr := pj.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	pj.logQueryWithDuration(sqlQuery, logActionAppend, duration)

	if execErr != nil {
		pj.logError(logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return errors.Join(ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		pj.logError(logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())
		return errors.Join(ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected < int64(len(allEvents)) {
		pj.logOperation(
			logMsgConcurrencyConflict,
			logAttrExpectedEvents, len(allEvents),
			logAttrRowsAffected, rowsAffected,
			logAttrExpectedSequence, expectedMaxSequenceNumber,
		)

		return ErrConcurrencyConflict
	}

	pj.logOperation(
		logMsgEventsAppended,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, durationToMilliseconds(duration),
	)

	return nil
}

func (pj PostgresJournal) buildSelectQuery(filter Filter) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(pj.tableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	whereExpression, err := whereClauseFor(filter)
	if err != nil {
		return "", err
	}
	selectStmt = selectStmt.Where(whereExpression)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildInsertQuery builds a conditional insert. The "context" CTE computes the current max
// sequence number of the filtered stream, the "vals" CTE holds the new rows, and the rows are
// only selected for insertion when the max sequence number is still the expected one.
func (pj PostgresJournal) buildInsertQuery(
	events StorableEvents,
	filter Filter,
	expectedMaxSequenceNumber MaxSequenceNumberUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	whereExpression, err := whereClauseFor(filter)
	if err != nil {
		return "", err
	}

	cteStmt := builder.
		From(pj.tableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq)).
		Where(whereExpression)

	valuesStmt := builder.Select(eventColumns(events[0])...)
	for _, event := range events[1:] {
		valuesStmt = valuesStmt.UnionAll(builder.Select(eventColumns(event)...))
	}

	insertStmt := builder.
		Insert(pj.tableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.I(cteVals+"."+colEventType),
					goqu.I(cteVals+"."+colOccurredAt),
					goqu.I(cteVals+"."+colPayload),
					goqu.I(cteVals+"."+colMetadata),
				).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func eventColumns(event StorableEvent) []any {
	return []any{
		goqu.L(castText, event.EventType).As(colEventType),
		goqu.L(castTimestamp, event.OccurredAt.UTC()).As(colOccurredAt),
		goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
		goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
	}
}

// whereClauseFor renders filter: items are joined with OR, the event types of an item with OR,
// its predicates with AND or OR, and both parts of an item with AND. Predicates become jsonb
// containment checks on the payload.
func whereClauseFor(filter Filter) (exp.Expression, error) {
	itemsExpressions := make([]exp.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		eventTypeExpressions := make([]exp.Expression, 0, len(item.EventTypes()))
		for _, eventType := range item.EventTypes() {
			eventTypeExpressions = append(eventTypeExpressions, goqu.Ex{colEventType: eventType})
		}

		predicateExpressions := make([]exp.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			containment, err := jsoniter.ConfigFastest.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})
			if err != nil {
				return nil, errors.Join(ErrBuildingQueryFailed, err)
			}

			predicateExpressions = append(predicateExpressions, goqu.L(containsJsonb, goqu.I(colPayload), containment))
		}

		var predicatesExpressionList exp.ExpressionList
		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		itemsExpressions = append(itemsExpressions, goqu.And(goqu.Or(eventTypeExpressions...), predicatesExpressionList))
	}

	return goqu.Or(itemsExpressions...), nil
}

func (pj PostgresJournal) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if pj.logger != nil {
		pj.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

func (pj PostgresJournal) logOperation(action string, args ...any) {
	if pj.logger != nil {
		pj.logger.Info(logMsgOperation+action, args...)
	}
}

func (pj PostgresJournal) logError(msg string, args ...any) {
	if pj.logger != nil {
		pj.logger.Error(msg, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

var _ Journal = PostgresJournal{}
