package library

import (
	"slices"
	"strconv"
	"strings"
)

// Reader is a library patron and the ordered list of books they currently hold.
type Reader struct {
	cardNumber int
	name       string
	phone      string
	books      []*Book
}

// NewReader creates a Reader holding no books.
func NewReader(cardNumber int, name string, phone string) *Reader {
	return &Reader{
		cardNumber: cardNumber,
		name:       name,
		phone:      phone,
		books:      make([]*Book, 0),
	}
}

// AddBook appends book to the held list.
// It fails with UnknownError for a nil book and with BookAlreadyCheckedOutError if an equal
// book is already held. The lending limit is not checked here, that is the Library's job.
func (r *Reader) AddBook(book *Book) error {
	if book == nil {
		return UnknownError
	}

	if r.HasBook(book) {
		return BookAlreadyCheckedOutError
	}

	r.books = append(r.books, book)

	return nil
}

// RemoveBook drops book from the held list or fails with ReaderDoesNotHaveBookError.
func (r *Reader) RemoveBook(book *Book) error {
	idx := r.indexOf(book)
	if idx < 0 {
		return ReaderDoesNotHaveBookError
	}

	r.books = slices.Delete(r.books, idx, idx+1)

	return nil
}

// HasBook reports whether an equal book is held.
func (r *Reader) HasBook(book *Book) bool {
	return r.indexOf(book) >= 0
}

func (r *Reader) indexOf(book *Book) int {
	if book == nil {
		return -1
	}

	return slices.IndexFunc(r.books, func(held *Book) bool {
		return held.Equal(book)
	})
}

// BookCount returns the number of held books.
func (r *Reader) BookCount() int {
	return len(r.books)
}

// Books returns a copy of the held list in checkout order.
func (r *Reader) Books() []*Book {
	return slices.Clone(r.books)
}

// CardNumber returns the library card number.
func (r *Reader) CardNumber() int {
	return r.cardNumber
}

// Name returns the reader's name.
func (r *Reader) Name() string {
	return r.name
}

// Phone returns the reader's phone number.
func (r *Reader) Phone() string {
	return r.phone
}

// Equal compares card number, name and phone. Held books are ignored.
func (r *Reader) Equal(other *Reader) bool {
	if r == nil || other == nil {
		return r == other
	}

	return r.cardNumber == other.cardNumber && r.name == other.name && r.phone == other.phone
}

// String renders the reader with the books they hold.
func (r *Reader) String() string {
	return r.name + "(#" + strconv.Itoa(r.cardNumber) + ") has checked out {" + joinBooks(r.books) + "}"
}

func joinBooks(books []*Book) string {
	titles := make([]string, 0, len(books))
	for _, book := range books {
		titles = append(titles, book.String())
	}

	return strings.Join(titles, ", ")
}
