// Package adapters lets the Postgres journal run on pgxpool.Pool, sql.DB or sqlx.DB
// through the single DBAdapter interface.
package adapters
