// Package main provides the librarian CLI. It loads a library file, prints the catalog, shelf and
// reader reports, and optionally journals what happened or shows a reader's lending history.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AntonStoeckl/lending-library-go/config"
	"github.com/AntonStoeckl/lending-library-go/journal"
	"github.com/AntonStoeckl/lending-library-go/library"
)

// Options holds the command-line switches on top of the environment configuration.
type Options struct {
	Config  config.Config
	Journal bool
	Migrate bool
	History int
}

func main() {
	config.LoadEnvFiles()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	opts, err := parseFlags(cfg, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: opts.Config.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runErr := run(ctx, opts, os.Stdout, logger); runErr != nil {
		logger.Error("librarian failed", "error", runErr.Error(), "code", library.CodeOf(runErr).Number())
		stop()
		os.Exit(1)
	}
}

// parseFlags lets flags override the environment configuration.
func parseFlags(cfg config.Config, args []string) (Options, error) {
	opts := Options{Config: cfg}
	var logLevel string

	fs := flag.NewFlagSet("librarian", flag.ContinueOnError)
	fs.StringVar(&opts.Config.LibraryFile, "file", cfg.LibraryFile, "library file to load")
	fs.StringVar(&opts.Config.LibraryName, "name", cfg.LibraryName, "name of the library")
	fs.StringVar(&logLevel, "log-level", cfg.LogLevel.String(), "log level: debug, info, warn, error")
	fs.BoolVar(&opts.Journal, "journal", false, "append the events of this run to the journal")
	fs.BoolVar(&opts.Migrate, "migrate", false, "migrate the journal schema before running")
	fs.IntVar(&opts.History, "history", 0, "print the journaled lending history of this card number")

	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	level, err := config.ParseLogLevel(logLevel)
	if err != nil {
		return Options{}, err
	}
	opts.Config.LogLevel = level

	if err := opts.Config.Validate(); err != nil {
		return Options{}, err
	}

	return opts, nil
}

func run(ctx context.Context, opts Options, stdout io.Writer, logger *slog.Logger) error {
	cfg := opts.Config

	if opts.Migrate {
		if err := config.MigrateJournal(ctx, cfg); err != nil {
			return err
		}
		logger.Info("journal migrated")
	}

	lib := library.NewLibrary(cfg.LibraryName, library.WithLogger(logger), library.WithReportWriter(stdout))
	if err := lib.Init(cfg.LibraryFile); err != nil {
		return err
	}

	lib.ListReadersWithBooks(true)

	if !opts.Journal && opts.History == 0 {
		return nil
	}

	j, closeJournal, err := config.OpenJournal(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeJournal()

	if opts.Journal {
		events := lib.DrainEvents()
		if err := journal.Flush(ctx, j, cfg.LibraryName, events); err != nil {
			return err
		}
		logger.Info("events journaled", "library", cfg.LibraryName, "event_count", len(events))
	}

	if opts.History > 0 {
		history, err := journal.ReaderHistory(ctx, j, cfg.LibraryName, opts.History)
		if err != nil {
			return err
		}
		printHistory(stdout, opts.History, history)
	}

	return nil
}

func printHistory(w io.Writer, cardNumber int, history library.DomainEvents) {
	_, _ = fmt.Fprintf(w, "history of card #%d:\n", cardNumber)

	if len(history) == 0 {
		_, _ = fmt.Fprintln(w, "  no journaled events")
		return
	}

	for _, event := range history {
		_, _ = fmt.Fprintf(w, "  %s %s\n", event.HasOccurredAt().Format(time.DateTime), describe(event))
	}
}

func describe(event library.DomainEvent) string {
	switch e := event.(type) {
	case library.ReaderRegistered:
		return "registered as " + e.Name
	case library.ReaderRemoved:
		return "card closed"
	case library.BookCopyLentToReader:
		return "borrowed " + e.Title + " (ISBN " + e.ISBN + ")"
	case library.BookCopyReturnedByReader:
		return "returned " + e.Title + " (ISBN " + e.ISBN + ")"
	case library.LendingBookToReaderFailed:
		return "was refused ISBN " + e.ISBN + ": " + e.FailureReason
	default:
		return event.IsEventType()
	}
}
