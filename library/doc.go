// Package library provides the in-memory inventory of a small lending library.
//
// A Library registers books in a catalog, shelves them by subject and lends them to
// registered readers, up to LendingLimit books per reader. Operations return nil on success
// and a Code otherwise; Code implements error, so callers use errors.Is or CodeOf.
//
// Key types:
//   - Book: a title, identified by BookKey (the due date is not part of it)
//   - Reader: a patron and the books they hold
//   - Shelf: per-title copy counts for one subject
//   - Library: the catalog, the shelves and the readers
//
// Every state change is also recorded as a DomainEvent in the library's outbox, which the
// journal package can persist.
//
// Common usage pattern:
//
//	lib := library.NewLibrary("Main Street", library.WithLogger(slog.Default()))
//	if err := lib.Init("library.txt"); err != nil {
//		// handle error, e.g. library.CodeOf(err) == library.FileNotFoundError
//	}
//
//	reader := lib.ReaderByCard(1)
//	book := lib.BookByISBN("1234")
//	if err := lib.CheckOutBook(reader, book); errors.Is(err, library.BookLimitReachedError) {
//		// ...
//	}
//
// A Library is not safe for concurrent use.
package library
