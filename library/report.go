package library

import (
	"fmt"
)

// ListBooks writes one line per catalog title with its registered copies and returns the total
// number of registered copies.
func (l *Library) ListBooks() int {
	total := 0

	for _, key := range l.catalogOrder {
		entry := l.catalog[key]
		total += entry.copies
		l.reportf("%d copies of %s\n", entry.copies, entry.book)
	}

	return total
}

// ListShelves writes every shelf, with its book report when showBooks is set.
// It always returns nil.
func (l *Library) ListShelves(showBooks bool) error {
	for _, shelf := range l.Shelves() {
		if showBooks {
			l.reportf("%s\n\n", shelf.ListBooks())
			continue
		}

		l.reportf("%s\n", shelf)
	}

	return nil
}

// ListReaders writes every registered reader and returns how many there are.
func (l *Library) ListReaders() int {
	return l.ListReadersWithBooks(false)
}

// ListReadersWithBooks writes every registered reader; with showBooks each reader is followed by
// the books they hold and when those are due.
func (l *Library) ListReadersWithBooks(showBooks bool) int {
	for _, reader := range l.readers {
		if !showBooks {
			l.reportf("%s\n", reader)
			continue
		}

		l.reportf("%s(#%d) has the following books:\n", reader.Name(), reader.CardNumber())
		for _, book := range reader.Books() {
			l.reportf("  %s due %s\n", book, FormatDate(book.DueDate))
		}
	}

	return len(l.readers)
}

func (l *Library) reportf(format string, args ...any) {
	if _, err := fmt.Fprintf(l.report, format, args...); err != nil {
		l.logError(logMsgReportFailed, logAttrError, err.Error())
	}
}
