package library

import (
	"time"
)

// BookKey is the identity of a Book. Two books with equal keys are the same title in every
// catalog, shelf and reader list, whatever their due dates.
type BookKey struct {
	ISBN      string
	Title     string
	Subject   string
	PageCount int
	Author    string
}

// Book describes a title held by the library.
//
// The due date is reassigned whenever a copy is checked out and is not part of the identity.
type Book struct {
	ISBN      string
	Title     string
	Subject   string
	PageCount int
	Author    string
	DueDate   time.Time
}

// NewBook creates a Book. No validation happens here, the import path checks page counts and dates.
func NewBook(isbn, title, subject string, pageCount int, author string, dueDate time.Time) *Book {
	return &Book{
		ISBN:      isbn,
		Title:     title,
		Subject:   subject,
		PageCount: pageCount,
		Author:    author,
		DueDate:   dueDate,
	}
}

// Key returns the identity of the Book.
func (b *Book) Key() BookKey {
	return BookKey{
		ISBN:      b.ISBN,
		Title:     b.Title,
		Subject:   b.Subject,
		PageCount: b.PageCount,
		Author:    b.Author,
	}
}

// Equal reports whether both books have the same identity.
func (b *Book) Equal(other *Book) bool {
	if b == nil || other == nil {
		return b == other
	}

	return b.Key() == other.Key()
}

// SetDueDate reassigns the due date.
func (b *Book) SetDueDate(dueDate time.Time) {
	b.DueDate = dueDate
}

func (b *Book) String() string {
	return b.Title + " by " + b.Author + " ISBN: " + b.ISBN
}
