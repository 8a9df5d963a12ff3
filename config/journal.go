package config

import (
	"context"

	"github.com/AntonStoeckl/lending-library-go/journal"
)

// OpenJournal opens the journal c describes: a MemoryJournal without a DSN, otherwise a
// PostgresJournal on the configured adapter. The returned func releases the connection.
func OpenJournal(ctx context.Context, c Config, logger journal.Logger) (journal.Journal, func(), error) {
	if c.JournalDSN == "" {
		return journal.NewMemoryJournal(), func() {}, nil
	}

	options := []journal.Option{journal.WithTableName(c.JournalTable), journal.WithLogger(logger)}

	switch c.DBAdapter {
	case SQLAdapter:
		db, err := NewSQLDB(ctx, c.JournalDSN)
		if err != nil {
			return nil, nil, err
		}

		j, err := journal.NewFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return j, func() { _ = db.Close() }, nil

	case SQLXAdapter:
		db, err := NewSQLXDB(ctx, c.JournalDSN)
		if err != nil {
			return nil, nil, err
		}

		j, err := journal.NewFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return j, func() { _ = db.Close() }, nil

	default:
		pool, err := NewPGXPool(ctx, c.JournalDSN)
		if err != nil {
			return nil, nil, err
		}

		j, err := journal.NewFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}

		return j, pool.Close, nil
	}
}

// MigrateJournal runs the journal schema migrations against c's database.
func MigrateJournal(ctx context.Context, c Config) error {
	db, err := NewSQLDB(ctx, c.JournalDSN)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return journal.Migrate(ctx, db)
}
