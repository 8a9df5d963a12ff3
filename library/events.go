package library

import (
	"strconv"
	"time"
)

const (
	BookAddedToCatalogEventType        = "BookAddedToCatalog"
	ShelfAddedEventType                = "ShelfAdded"
	BookCopyLentToReaderEventType      = "BookCopyLentToReader"
	LendingBookToReaderFailedEventType = "LendingBookToReaderFailed"
	BookCopyReturnedByReaderEventType  = "BookCopyReturnedByReader"
	BookCopyReturnedToShelfEventType   = "BookCopyReturnedToShelf"
	ReaderRegisteredEventType          = "ReaderRegistered"
	ReaderRemovedEventType             = "ReaderRemoved"
)

// Alias types keep the event payloads plain scalars that serialize the same way they filter.
type (
	EventTypeString   = string
	LibraryNameString = string
	ISBNString        = string
	CardNumberString  = string
	OccurredAtTS      = time.Time
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent is something that happened to the library's inventory or readers.
type DomainEvent interface {
	IsEventType() string
	HasOccurredAt() time.Time
	IsErrorEvent() bool
}

// ToOccurredAt normalizes t to UTC with microsecond precision, which is what Postgres keeps.
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

func toCardNumberString(cardNumber int) CardNumberString {
	return strconv.Itoa(cardNumber)
}

// BookAddedToCatalog records one more copy of a title registered in the catalog.
type BookAddedToCatalog struct {
	EventType   EventTypeString
	Library     LibraryNameString
	ISBN        ISBNString
	Title       string
	Subject     string
	PageCount   int
	Author      string
	CopiesTotal int
	OccurredAt  OccurredAtTS
}

// BuildBookAddedToCatalog creates a BookAddedToCatalog event.
func BuildBookAddedToCatalog(library string, book *Book, copiesTotal int, occurredAt time.Time) BookAddedToCatalog {
	return BookAddedToCatalog{
		EventType:   BookAddedToCatalogEventType,
		Library:     library,
		ISBN:        book.ISBN,
		Title:       book.Title,
		Subject:     book.Subject,
		PageCount:   book.PageCount,
		Author:      book.Author,
		CopiesTotal: copiesTotal,
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e BookAddedToCatalog) IsEventType() string      { return BookAddedToCatalogEventType }
func (e BookAddedToCatalog) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookAddedToCatalog) IsErrorEvent() bool       { return false }

// ShelfAdded records a new subject shelf and how many copies it was back-filled with.
type ShelfAdded struct {
	EventType     EventTypeString
	Library       LibraryNameString
	ShelfNumber   int
	Subject       string
	CopiesShelved int
	OccurredAt    OccurredAtTS
}

// BuildShelfAdded creates a ShelfAdded event.
func BuildShelfAdded(library string, shelf *Shelf, occurredAt time.Time) ShelfAdded {
	return ShelfAdded{
		EventType:     ShelfAddedEventType,
		Library:       library,
		ShelfNumber:   shelf.Number(),
		Subject:       shelf.Subject(),
		CopiesShelved: shelf.TotalCount(),
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e ShelfAdded) IsEventType() string      { return ShelfAddedEventType }
func (e ShelfAdded) HasOccurredAt() time.Time { return e.OccurredAt }
func (e ShelfAdded) IsErrorEvent() bool       { return false }

// BookCopyLentToReader records a successful checkout.
type BookCopyLentToReader struct {
	EventType  EventTypeString
	Library    LibraryNameString
	ISBN       ISBNString
	Title      string
	CardNumber CardNumberString
	OccurredAt OccurredAtTS
}

// BuildBookCopyLentToReader creates a BookCopyLentToReader event.
func BuildBookCopyLentToReader(library string, book *Book, reader *Reader, occurredAt time.Time) BookCopyLentToReader {
	return BookCopyLentToReader{
		EventType:  BookCopyLentToReaderEventType,
		Library:    library,
		ISBN:       book.ISBN,
		Title:      book.Title,
		CardNumber: toCardNumberString(reader.CardNumber()),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e BookCopyLentToReader) IsEventType() string      { return BookCopyLentToReaderEventType }
func (e BookCopyLentToReader) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookCopyLentToReader) IsErrorEvent() bool       { return false }

// LendingBookToReaderFailed records a checkout rejected by a business rule.
type LendingBookToReaderFailed struct {
	EventType     EventTypeString
	Library       LibraryNameString
	ISBN          ISBNString
	CardNumber    CardNumberString
	FailureCode   int
	FailureReason string
	OccurredAt    OccurredAtTS
}

// BuildLendingBookToReaderFailed creates a LendingBookToReaderFailed event.
func BuildLendingBookToReaderFailed(
	library string,
	book *Book,
	reader *Reader,
	code Code,
	occurredAt time.Time,
) LendingBookToReaderFailed {

	return LendingBookToReaderFailed{
		EventType:     LendingBookToReaderFailedEventType,
		Library:       library,
		ISBN:          book.ISBN,
		CardNumber:    toCardNumberString(reader.CardNumber()),
		FailureCode:   code.Number(),
		FailureReason: code.Message(),
		OccurredAt:    ToOccurredAt(occurredAt),
	}
}

func (e LendingBookToReaderFailed) IsEventType() string      { return LendingBookToReaderFailedEventType }
func (e LendingBookToReaderFailed) HasOccurredAt() time.Time { return e.OccurredAt }
func (e LendingBookToReaderFailed) IsErrorEvent() bool       { return true }

// BookCopyReturnedByReader records a reader handing a book back.
type BookCopyReturnedByReader struct {
	EventType  EventTypeString
	Library    LibraryNameString
	ISBN       ISBNString
	Title      string
	CardNumber CardNumberString
	OccurredAt OccurredAtTS
}

// BuildBookCopyReturnedByReader creates a BookCopyReturnedByReader event.
func BuildBookCopyReturnedByReader(library string, book *Book, reader *Reader, occurredAt time.Time) BookCopyReturnedByReader {
	return BookCopyReturnedByReader{
		EventType:  BookCopyReturnedByReaderEventType,
		Library:    library,
		ISBN:       book.ISBN,
		Title:      book.Title,
		CardNumber: toCardNumberString(reader.CardNumber()),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e BookCopyReturnedByReader) IsEventType() string      { return BookCopyReturnedByReaderEventType }
func (e BookCopyReturnedByReader) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookCopyReturnedByReader) IsErrorEvent() bool       { return false }

// BookCopyReturnedToShelf records a copy put back on its subject shelf.
type BookCopyReturnedToShelf struct {
	EventType   EventTypeString
	Library     LibraryNameString
	ISBN        ISBNString
	ShelfNumber int
	Subject     string
	OccurredAt  OccurredAtTS
}

// BuildBookCopyReturnedToShelf creates a BookCopyReturnedToShelf event.
func BuildBookCopyReturnedToShelf(library string, book *Book, shelf *Shelf, occurredAt time.Time) BookCopyReturnedToShelf {
	return BookCopyReturnedToShelf{
		EventType:   BookCopyReturnedToShelfEventType,
		Library:     library,
		ISBN:        book.ISBN,
		ShelfNumber: shelf.Number(),
		Subject:     shelf.Subject(),
		OccurredAt:  ToOccurredAt(occurredAt),
	}
}

func (e BookCopyReturnedToShelf) IsEventType() string      { return BookCopyReturnedToShelfEventType }
func (e BookCopyReturnedToShelf) HasOccurredAt() time.Time { return e.OccurredAt }
func (e BookCopyReturnedToShelf) IsErrorEvent() bool       { return false }

// ReaderRegistered records a new library card.
type ReaderRegistered struct {
	EventType  EventTypeString
	Library    LibraryNameString
	CardNumber CardNumberString
	Name       string
	OccurredAt OccurredAtTS
}

// BuildReaderRegistered creates a ReaderRegistered event.
func BuildReaderRegistered(library string, reader *Reader, occurredAt time.Time) ReaderRegistered {
	return ReaderRegistered{
		EventType:  ReaderRegisteredEventType,
		Library:    library,
		CardNumber: toCardNumberString(reader.CardNumber()),
		Name:       reader.Name(),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e ReaderRegistered) IsEventType() string      { return ReaderRegisteredEventType }
func (e ReaderRegistered) HasOccurredAt() time.Time { return e.OccurredAt }
func (e ReaderRegistered) IsErrorEvent() bool       { return false }

// ReaderRemoved records a closed library card.
type ReaderRemoved struct {
	EventType  EventTypeString
	Library    LibraryNameString
	CardNumber CardNumberString
	OccurredAt OccurredAtTS
}

// BuildReaderRemoved creates a ReaderRemoved event.
func BuildReaderRemoved(library string, reader *Reader, occurredAt time.Time) ReaderRemoved {
	return ReaderRemoved{
		EventType:  ReaderRemovedEventType,
		Library:    library,
		CardNumber: toCardNumberString(reader.CardNumber()),
		OccurredAt: ToOccurredAt(occurredAt),
	}
}

func (e ReaderRemoved) IsEventType() string      { return ReaderRemovedEventType }
func (e ReaderRemoved) HasOccurredAt() time.Time { return e.OccurredAt }
func (e ReaderRemoved) IsErrorEvent() bool       { return false }
