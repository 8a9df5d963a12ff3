package library

import (
	"strconv"
	"strings"
)

// Shelf holds the copies of one subject's books, counted per title.
type Shelf struct {
	number  int
	subject string
	counts  map[BookKey]int
	books   []*Book // insertion order, one entry per title
}

// NewShelf creates an empty Shelf.
func NewShelf(number int, subject string) *Shelf {
	return &Shelf{
		number:  number,
		subject: subject,
		counts:  make(map[BookKey]int),
		books:   make([]*Book, 0),
	}
}

// Number returns the shelf number.
func (s *Shelf) Number() int {
	return s.number
}

// Subject returns the subject the shelf holds books of.
func (s *Shelf) Subject() string {
	return s.subject
}

// AddBook puts one copy of book on the shelf.
//
// A title already on the shelf just gets its count incremented. A new title is only accepted
// when its subject matches the shelf's, otherwise ShelfSubjectMismatchError is returned and
// the shelf stays untouched. A nil book yields UnknownError.
func (s *Shelf) AddBook(book *Book) error {
	if book == nil {
		return UnknownError
	}

	key := book.Key()

	if count, ok := s.counts[key]; ok {
		s.counts[key] = count + 1
		return nil
	}

	if book.Subject != s.subject {
		return ShelfSubjectMismatchError
	}

	s.counts[key] = 1
	s.books = append(s.books, book)

	return nil
}

// RemoveBook takes one copy of book off the shelf.
// The title stays registered when its count drops to zero.
func (s *Shelf) RemoveBook(book *Book) error {
	if book == nil {
		return UnknownError
	}

	count, ok := s.counts[book.Key()]
	if !ok || count == 0 {
		return BookNotInInventoryError
	}

	s.counts[book.Key()] = count - 1

	return nil
}

// BookCount returns the copies of book on the shelf, or -1 if the title was never shelved here.
func (s *Shelf) BookCount(book *Book) int {
	if book == nil {
		return -1
	}

	count, ok := s.counts[book.Key()]
	if !ok {
		return -1
	}

	return count
}

// Books returns a copy of the per-title counts.
func (s *Shelf) Books() map[BookKey]int {
	books := make(map[BookKey]int, len(s.counts))
	for key, count := range s.counts {
		books[key] = count
	}

	return books
}

// TotalCount returns the number of copies across all titles.
func (s *Shelf) TotalCount() int {
	total := 0
	for _, count := range s.counts {
		total += count
	}

	return total
}

// ListBooks renders the shelf report: a header with the total copy count followed by one
// line per title with its count.
func (s *Shelf) ListBooks() string {
	total := s.TotalCount()

	noun := " books on shelf: "
	if total == 1 {
		noun = " book on shelf: "
	}

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(total) + noun + s.String())

	for _, book := range s.books {
		sb.WriteString("\n" + book.String() + " " + strconv.Itoa(s.counts[book.Key()]))
	}

	return sb.String()
}

// Equal compares shelf number and subject.
func (s *Shelf) Equal(other *Shelf) bool {
	if s == nil || other == nil {
		return s == other
	}

	return s.number == other.number && s.subject == other.subject
}

func (s *Shelf) String() string {
	return strconv.Itoa(s.number) + " : " + s.subject
}
