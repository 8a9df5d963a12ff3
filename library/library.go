package library

import (
	"io"
	"slices"
	"time"
)

// LendingLimit is the maximum number of books a reader may hold at once.
const LendingLimit = 5

const (
	logMsgBookRegistered      = "book added to the stacks"
	logMsgBookCopyRegistered  = "another copy added to the stacks"
	logMsgNoShelfForSubject   = "no shelf for subject"
	logMsgReaderNotRegistered = "reader doesn't have an account here"
	logMsgLendingLimitReached = "reader has reached the lending limit"
	logMsgBookNotInCatalog    = "could not find book in the catalog"
	logMsgNoCopiesRemain      = "no copies of book remain on the shelf"
	logMsgAlreadyCheckedOut   = "reader already has this book"
	logMsgBookCheckedOut      = "book checked out"
	logMsgReaderLacksBook     = "reader doesn't have the book checked out"
	logMsgBookReturned        = "reader is returning book"
	logMsgShelfExists         = "shelf already exists"
	logMsgShelfAdded          = "shelf added"
	logMsgBookNotFoundByISBN  = "could not find a book with isbn"
	logMsgShelfNotFound       = "shelf not found"
	logMsgReaderNotFound      = "could not find a reader with card number"
	logMsgReaderExists        = "reader already has an account"
	logMsgCardNumberInUse     = "card number is already in use"
	logMsgReaderAdded         = "reader added to the library"
	logMsgReaderStillHasBooks = "reader must return all books"
	logMsgReaderRemoved       = "reader removed from the library"
	logMsgConversionFailed    = "could not convert number"
	logMsgReportFailed        = "could not write report"
	logMsgDateDefaulted       = "could not convert date, using default date"

	logAttrLibrary     = "library"
	logAttrISBN        = "isbn"
	logAttrBook        = "book"
	logAttrSubject     = "subject"
	logAttrShelfNumber = "shelf_number"
	logAttrCardNumber  = "card_number"
	logAttrReader      = "reader"
	logAttrOtherReader = "other_reader"
	logAttrCopies      = "copies"
	logAttrLimit       = "limit"
	logAttrInput       = "input"
	logAttrError       = "error"
	logAttrCode        = "code"
)

// Logger is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type catalogEntry struct {
	book   *Book
	copies int
}

// Library owns the catalog, the subject shelves and the registered readers.
//
// The catalog counts every registered copy of a title independently of where the copies are
// shelved; AddBook does not put the new copy on a shelf and AddShelfWith back-fills a new shelf
// with the full catalog count. Both counts are therefore allowed to diverge.
//
// A Library is not safe for concurrent use.
type Library struct {
	name         string
	catalog      map[BookKey]*catalogEntry
	catalogOrder []BookKey
	shelves      map[string]*Shelf
	shelfOrder   []string
	readers      []*Reader
	libraryCard  int
	logger       Logger
	report       io.Writer
	now          func() time.Time
	outbox       DomainEvents
}

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger that receives the library's operational messages.
func WithLogger(logger Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// WithReportWriter sets where the List* reports are written. Reports are discarded by default.
func WithReportWriter(w io.Writer) Option {
	return func(l *Library) {
		l.report = w
	}
}

// WithClock sets the time source used to stamp domain events.
func WithClock(now func() time.Time) Option {
	return func(l *Library) {
		l.now = now
	}
}

// NewLibrary creates an empty Library.
func NewLibrary(name string, options ...Option) *Library {
	l := &Library{
		name:         name,
		catalog:      make(map[BookKey]*catalogEntry),
		catalogOrder: make([]BookKey, 0),
		shelves:      make(map[string]*Shelf),
		shelfOrder:   make([]string, 0),
		readers:      make([]*Reader, 0),
		report:       io.Discard,
		now:          time.Now,
		outbox:       make(DomainEvents, 0),
	}

	for _, option := range options {
		option(l)
	}

	return l
}

func (l *Library) Name() string {
	return l.name
}

// AddBook registers one more copy of book in the catalog.
//
// The copy is not placed on any shelf. ShelfExistsError is returned when no shelf exists for
// the book's subject yet, but the book is registered either way.
func (l *Library) AddBook(book *Book) error {
	key := book.Key()

	entry, ok := l.catalog[key]
	if ok {
		entry.copies++
		l.logInfo(logMsgBookCopyRegistered, logAttrBook, book.String(), logAttrCopies, entry.copies)
	} else {
		entry = &catalogEntry{book: book, copies: 1}
		l.catalog[key] = entry
		l.catalogOrder = append(l.catalogOrder, key)
		l.logInfo(logMsgBookRegistered, logAttrBook, book.String())
	}

	l.record(BuildBookAddedToCatalog(l.name, entry.book, entry.copies, l.now()))

	if _, ok := l.shelves[book.Subject]; !ok {
		l.logInfo(logMsgNoShelfForSubject, logAttrSubject, book.Subject)
		return ShelfExistsError
	}

	return nil
}

// CheckOutBook lends one copy of book to reader.
//
// The checks run in this order: the reader is registered, the reader is below LendingLimit,
// the book is in the catalog, a shelf exists for its subject, the shelf has a copy left and
// the reader does not already hold the book. Nothing is mutated when a check fails.
func (l *Library) CheckOutBook(reader *Reader, book *Book) error {
	code := l.checkOutPreconditions(reader, book)
	if code != Success {
		l.record(BuildLendingBookToReaderFailed(l.name, book, reader, code, l.now()))
		return code
	}

	shelf := l.shelves[book.Subject]

	if err := reader.AddBook(book); err != nil {
		return err
	}

	if err := shelf.RemoveBook(book); err != nil {
		return err
	}

	l.logInfo(logMsgBookCheckedOut, logAttrBook, book.String(), logAttrCardNumber, reader.CardNumber())
	l.record(BuildBookCopyLentToReader(l.name, book, reader, l.now()))

	return nil
}

func (l *Library) checkOutPreconditions(reader *Reader, book *Book) Code {
	if !l.hasReader(reader) {
		l.logInfo(logMsgReaderNotRegistered, logAttrReader, reader.Name())
		return ReaderNotInLibraryError
	}

	if reader.BookCount() >= LendingLimit {
		l.logInfo(logMsgLendingLimitReached, logAttrReader, reader.Name(), logAttrLimit, LendingLimit)
		return BookLimitReachedError
	}

	if _, ok := l.catalog[book.Key()]; !ok {
		l.logWarn(logMsgBookNotInCatalog, logAttrBook, book.String())
		return BookNotInInventoryError
	}

	shelf, ok := l.shelves[book.Subject]
	if !ok {
		l.logInfo(logMsgNoShelfForSubject, logAttrSubject, book.Subject)
		return ShelfExistsError
	}

	if shelf.BookCount(book) < 1 {
		l.logInfo(logMsgNoCopiesRemain, logAttrBook, book.String(), logAttrSubject, book.Subject)
		return BookNotInInventoryError
	}

	if reader.HasBook(book) {
		l.logInfo(logMsgAlreadyCheckedOut, logAttrReader, reader.Name(), logAttrBook, book.String())
		return BookAlreadyCheckedOutError
	}

	return Success
}

// ReturnBook takes book back from reader and puts the copy on its subject shelf.
func (l *Library) ReturnBook(reader *Reader, book *Book) error {
	if !reader.HasBook(book) {
		l.logInfo(logMsgReaderLacksBook, logAttrReader, reader.Name(), logAttrBook, book.String())
		return ReaderDoesNotHaveBookError
	}

	l.logInfo(logMsgBookReturned, logAttrReader, reader.Name(), logAttrBook, book.String())

	if err := reader.RemoveBook(book); err != nil {
		return ReaderCouldNotRemoveBookError
	}

	l.record(BuildBookCopyReturnedByReader(l.name, book, reader, l.now()))

	return l.ReturnBookToShelf(book)
}

// ReturnBookToShelf puts one copy of book on the shelf for its subject.
func (l *Library) ReturnBookToShelf(book *Book) error {
	shelf, ok := l.shelves[book.Subject]
	if !ok {
		l.logInfo(logMsgNoShelfForSubject, logAttrSubject, book.Subject)
		return ShelfExistsError
	}

	if err := shelf.AddBook(book); err != nil {
		return err
	}

	l.record(BuildBookCopyReturnedToShelf(l.name, book, shelf, l.now()))

	return nil
}

// AddShelf creates a shelf for subject, numbered after the shelves already registered.
func (l *Library) AddShelf(subject string) error {
	return l.AddShelfWith(NewShelf(len(l.shelves)+1, subject))
}

// AddShelfWith registers shelf under its subject and back-fills it with every catalog title of
// that subject, one copy per registered catalog copy.
//
// ShelfExistsError is returned if an equal shelf (same number and subject) is registered already.
// A shelf with the same subject but another number replaces the registered one.
func (l *Library) AddShelfWith(shelf *Shelf) error {
	for _, registered := range l.shelves {
		if registered.Equal(shelf) {
			l.logInfo(logMsgShelfExists, logAttrShelfNumber, shelf.Number(), logAttrSubject, shelf.Subject())
			return ShelfExistsError
		}
	}

	if _, ok := l.shelves[shelf.Subject()]; !ok {
		l.shelfOrder = append(l.shelfOrder, shelf.Subject())
	}
	l.shelves[shelf.Subject()] = shelf

	for _, key := range l.catalogOrder {
		entry := l.catalog[key]
		if entry.book.Subject != shelf.Subject() {
			continue
		}

		for i := 0; i < entry.copies; i++ {
			_ = shelf.AddBook(entry.book) // subjects match, cannot fail
		}
	}

	l.logInfo(logMsgShelfAdded, logAttrShelfNumber, shelf.Number(), logAttrSubject, shelf.Subject())
	l.record(BuildShelfAdded(l.name, shelf, l.now()))

	return nil
}

// BookByISBN returns the first catalog book with isbn, nil if there is none.
func (l *Library) BookByISBN(isbn string) *Book {
	for _, key := range l.catalogOrder {
		if key.ISBN == isbn {
			return l.catalog[key].book
		}
	}

	l.logDebug(logMsgBookNotFoundByISBN, logAttrISBN, isbn)

	return nil
}

// CatalogCount returns the registered copies of book, 0 if it is not in the catalog.
func (l *Library) CatalogCount(book *Book) int {
	entry, ok := l.catalog[book.Key()]
	if !ok {
		return 0
	}

	return entry.copies
}

// ShelfByNumber returns the shelf numbered number, nil if there is none.
func (l *Library) ShelfByNumber(number int) *Shelf {
	for _, subject := range l.shelfOrder {
		if shelf := l.shelves[subject]; shelf.Number() == number {
			return shelf
		}
	}

	l.logDebug(logMsgShelfNotFound, logAttrShelfNumber, number)

	return nil
}

// ShelfBySubject returns the shelf for subject, nil if there is none.
func (l *Library) ShelfBySubject(subject string) *Shelf {
	if shelf, ok := l.shelves[subject]; ok {
		return shelf
	}

	l.logDebug(logMsgShelfNotFound, logAttrSubject, subject)

	return nil
}

// ReaderByCard returns the registered reader with cardNumber, nil if there is none.
func (l *Library) ReaderByCard(cardNumber int) *Reader {
	for _, reader := range l.readers {
		if reader.CardNumber() == cardNumber {
			return reader
		}
	}

	l.logDebug(logMsgReaderNotFound, logAttrCardNumber, cardNumber)

	return nil
}

// AddReader registers reader.
//
// An equal reader yields ReaderAlreadyExistsError; another reader holding the same card number
// yields ReaderCardNumberError. On success the card number high-water mark moves up if needed.
func (l *Library) AddReader(reader *Reader) error {
	if l.hasReader(reader) {
		l.logInfo(logMsgReaderExists, logAttrReader, reader.Name())
		return ReaderAlreadyExistsError
	}

	for _, registered := range l.readers {
		if registered.CardNumber() == reader.CardNumber() {
			l.logInfo(
				logMsgCardNumberInUse,
				logAttrReader, reader.Name(),
				logAttrOtherReader, registered.Name(),
				logAttrCardNumber, reader.CardNumber(),
			)
			return ReaderCardNumberError
		}
	}

	l.readers = append(l.readers, reader)
	if reader.CardNumber() > l.libraryCard {
		l.libraryCard = reader.CardNumber()
	}

	l.logInfo(logMsgReaderAdded, logAttrReader, reader.Name(), logAttrCardNumber, reader.CardNumber())
	l.record(BuildReaderRegistered(l.name, reader, l.now()))

	return nil
}

// RemoveReader unregisters reader, which must not hold any books.
func (l *Library) RemoveReader(reader *Reader) error {
	idx := l.readerIndex(reader)

	if idx >= 0 && reader.BookCount() > 0 {
		l.logInfo(logMsgReaderStillHasBooks, logAttrReader, reader.Name())
		return ReaderStillHasBooksError
	}

	if idx < 0 {
		l.logInfo(logMsgReaderNotRegistered, logAttrReader, reader.Name())
		return ReaderNotInLibraryError
	}

	l.readers = slices.Delete(l.readers, idx, idx+1)

	l.logInfo(logMsgReaderRemoved, logAttrReader, reader.Name(), logAttrCardNumber, reader.CardNumber())
	l.record(BuildReaderRemoved(l.name, reader, l.now()))

	return nil
}

// NextCardNumber returns the card number following the highest one ever registered.
func (l *Library) NextCardNumber() int {
	return l.libraryCard + 1
}

// Readers returns the registered readers in registration order.
func (l *Library) Readers() []*Reader {
	return slices.Clone(l.readers)
}

// Shelves returns the registered shelves in registration order.
func (l *Library) Shelves() []*Shelf {
	shelves := make([]*Shelf, 0, len(l.shelfOrder))
	for _, subject := range l.shelfOrder {
		shelves = append(shelves, l.shelves[subject])
	}

	return shelves
}

func (l *Library) hasReader(reader *Reader) bool {
	return l.readerIndex(reader) >= 0
}

func (l *Library) readerIndex(reader *Reader) int {
	return slices.IndexFunc(l.readers, func(registered *Reader) bool {
		return registered.Equal(reader)
	})
}

// PendingEvents returns the domain events recorded since the last DrainEvents.
func (l *Library) PendingEvents() DomainEvents {
	return slices.Clone(l.outbox)
}

// DrainEvents returns the recorded domain events and empties the outbox.
func (l *Library) DrainEvents() DomainEvents {
	events := l.outbox
	l.outbox = make(DomainEvents, 0)

	return events
}

func (l *Library) record(event DomainEvent) {
	l.outbox = append(l.outbox, event)
}

func (l *Library) logDebug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, append(args, logAttrLibrary, l.name)...)
	}
}

func (l *Library) logInfo(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Info(msg, append(args, logAttrLibrary, l.name)...)
	}
}

func (l *Library) logWarn(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, append(args, logAttrLibrary, l.name)...)
	}
}

func (l *Library) logError(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Error(msg, append(args, logAttrLibrary, l.name)...)
	}
}
