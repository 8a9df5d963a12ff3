package library

import (
	"errors"
	"strconv"
)

// Code is the outcome of a library operation.
//
// Every Code except Success is an error, so operations return it as a plain error value
// and callers compare with errors.Is or recover the Code with CodeOf.
type Code int

const (
	Success                       Code = 0
	FileNotFoundError             Code = -1
	BookCountError                Code = -2
	IOError                       Code = -3
	ReaderCountError              Code = -4
	LibraryError                  Code = -5
	PageCountError                Code = -8
	BookAlreadyCheckedOutError    Code = -21
	BookLimitReachedError         Code = -22
	BookNotInInventoryError       Code = -23
	ReaderAlreadyExistsError      Code = -31
	ReaderCardNumberError         Code = -32
	ReaderDoesNotHaveBookError    Code = -33
	ReaderCouldNotRemoveBookError Code = -34
	ReaderNotInLibraryError       Code = -35
	ReaderStillHasBooksError      Code = -36
	ShelfExistsError              Code = -41
	ShelfCountError               Code = -42
	ShelfNumberParseError         Code = -43
	ShelfSubjectMismatchError     Code = -44
	DateConversionError           Code = -101
	UnknownError                  Code = -999
)

var codeMessages = map[Code]string{
	Success:                       "transaction was a success",
	FileNotFoundError:             "could not find the file",
	BookCountError:                "could not read the number of books",
	IOError:                       "there was an error with the input file",
	ReaderCountError:              "could not read the number of readers",
	LibraryError:                  "library error",
	PageCountError:                "page count error",
	BookAlreadyCheckedOutError:    "book already checked out",
	BookLimitReachedError:         "book limit reached",
	BookNotInInventoryError:       "book not in stacks or library",
	ReaderAlreadyExistsError:      "reader already exists",
	ReaderCardNumberError:         "reader card number is already in use",
	ReaderDoesNotHaveBookError:    "reader doesn't have the book",
	ReaderCouldNotRemoveBookError: "could not remove book from reader",
	ReaderNotInLibraryError:       "reader is not in the library",
	ReaderStillHasBooksError:      "reader still has books checked out",
	ShelfExistsError:              "shelf error: shelf already exists or does not exist for the subject",
	ShelfCountError:               "could not read the number of shelves",
	ShelfNumberParseError:         "could not parse the shelf number",
	ShelfSubjectMismatchError:     "the subject of the book does not match the shelf",
	DateConversionError:           "date conversion error",
	UnknownError:                  "unknown error",
}

// Number returns the integer discriminant of the Code.
func (c Code) Number() int {
	return int(c)
}

// Message returns the human-readable description of the Code.
func (c Code) Message() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}

	return codeMessages[UnknownError] + " (" + strconv.Itoa(int(c)) + ")"
}

func (c Code) Error() string {
	return c.Message()
}

func (c Code) String() string {
	return c.Message()
}

// Err returns nil for Success and the Code itself otherwise.
func (c Code) Err() error {
	if c == Success {
		return nil
	}

	return c
}

// CodeFromNumber maps an integer discriminant back to its Code, UnknownError if there is none.
func CodeFromNumber(number int) Code {
	c := Code(number)
	if _, ok := codeMessages[c]; ok {
		return c
	}

	return UnknownError
}

// CodeOf extracts the Code carried by err: Success for nil, UnknownError for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}

	var c Code
	if errors.As(err, &c) {
		return c
	}

	return UnknownError
}
