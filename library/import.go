package library

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	logMsgFileNotFound         = "could not find file"
	logMsgOpenFailed           = "could not open file"
	logMsgReadFailed           = "could not read line"
	logMsgUnexpectedEnd        = "input ended before all records were read"
	logMsgParsingBooks         = "parsing books"
	logMsgParsingShelves       = "parsing shelves"
	logMsgParsingReaders       = "parsing readers"
	logMsgMalformedRecord      = "record has too few fields"
	logMsgInvalidRecord        = "record failed validation"
	logMsgBookSkipped          = "book record skipped"
	logMsgShelfSkipped         = "shelf record skipped"
	logMsgShelvesMissing       = "fewer shelves registered than announced"
	logMsgReaderSkipped        = "reader record skipped"
	logMsgUnknownInlineISBN    = "reader holds a book that is not in the catalog"
	logMsgInlineCheckoutFailed = "could not check out book held by reader"
	logMsgImportFinished       = "import finished"

	logAttrPath    = "path"
	logAttrLine    = "line"
	logAttrRecord  = "record"
	logAttrCount   = "count"
	logAttrField   = "field"
	logAttrRule    = "rule"
	logAttrShelves = "shelves"
)

// Column positions of the comma separated records.
const (
	bookFields      = 6
	shelfFields     = 2
	readerFields    = 4
	readerBookStart = 4
)

var recordValidator = validator.New()

type bookRecord struct {
	ISBN      string `validate:"required"`
	Title     string
	Subject   string `validate:"required"`
	PageCount int    `validate:"gt=0"`
	Author    string
}

// An unreadable shelf number arrives as UnknownError's number and the shelf is still registered.
type shelfRecord struct {
	Number  int
	Subject string `validate:"required"`
}

// BookCount has no upper bound here, CheckOutBook enforces LendingLimit.
type readerRecord struct {
	CardNumber int    `validate:"gte=0"`
	Name       string `validate:"required"`
	Phone      string
	BookCount  int `validate:"gte=0"`
}

// Init imports the library file at path.
//
// A missing file yields FileNotFoundError. Everything else behaves like Import.
func (l *Library) Init(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			l.logError(logMsgFileNotFound, logAttrPath, path)
			return FileNotFoundError
		}

		l.logError(logMsgOpenFailed, logAttrPath, path, logAttrError, err.Error())
		return IOError
	}
	defer func() { _ = f.Close() }()

	return l.Import(f)
}

// Import reads the three record blocks (books, shelves, readers), each preceded by its count,
// and registers what it reads.
//
// Only an unusable block count or line structure (missing lines, too few fields) stops the
// import and its Code is returned; whatever was registered before stays registered. A record
// with an unusable value is logged and skipped: books with a bad page count, readers rejected
// by the AddReader checks, duplicate shelves. A shelf with an unreadable number is registered
// under UnknownError's number. Each reader's inline isbn/due date pairs are checked out to the
// reader; unknown isbns and checkouts beyond LendingLimit are skipped. Unreadable dates fall
// back to DefaultDate.
func (l *Library) Import(r io.Reader) error {
	lines := &lineReader{scanner: bufio.NewScanner(r), library: l}

	if err := l.importBooks(lines); err != nil {
		return err
	}
	l.ListBooks()

	if err := l.importShelves(lines); err != nil {
		return err
	}
	_ = l.ListShelves(true)

	if err := l.importReaders(lines); err != nil {
		return err
	}

	l.logInfo(logMsgImportFinished, logAttrLine, lines.number)

	return nil
}

func (l *Library) importBooks(lines *lineReader) error {
	count, err := l.readCount(lines, BookCountError)
	if err != nil {
		return err
	}

	if count < 1 {
		return LibraryError
	}

	l.logInfo(logMsgParsingBooks, logAttrCount, count)

	for range count {
		fields, err := lines.nextRecord(bookFields)
		if err != nil {
			return err
		}

		record := bookRecord{
			ISBN:      fields[0],
			Title:     fields[1],
			Subject:   fields[2],
			PageCount: l.ConvertInt(fields[3], PageCountError),
			Author:    fields[4],
		}

		if !l.validateRecord(lines, record) {
			l.logWarn(logMsgBookSkipped, logAttrLine, lines.number, logAttrISBN, record.ISBN)
			continue
		}

		dueDate := l.ConvertDate(fields[5], DateConversionError)

		// No shelves exist while the books block is read, so ShelfExistsError is expected.
		_ = l.AddBook(NewBook(record.ISBN, record.Title, record.Subject, record.PageCount, record.Author, dueDate))
	}

	return nil
}

func (l *Library) importShelves(lines *lineReader) error {
	count, err := l.readCount(lines, ShelfCountError)
	if err != nil {
		return err
	}

	if count < 1 {
		return ShelfCountError
	}

	l.logInfo(logMsgParsingShelves, logAttrCount, count)

	for range count {
		fields, err := lines.nextRecord(shelfFields)
		if err != nil {
			return err
		}

		record := shelfRecord{
			Number:  l.ConvertInt(fields[0], ShelfNumberParseError),
			Subject: fields[1],
		}

		if !l.validateRecord(lines, record) {
			continue
		}

		if err := l.AddShelfWith(NewShelf(record.Number, record.Subject)); err != nil {
			l.logWarn(logMsgShelfSkipped, logAttrLine, lines.number, logAttrCode, CodeOf(err).Message())
		}
	}

	if len(l.shelves) != count {
		l.logWarn(logMsgShelvesMissing, logAttrCount, count, logAttrShelves, len(l.shelves))
	}

	return nil
}

func (l *Library) importReaders(lines *lineReader) error {
	count, err := l.readCount(lines, ReaderCountError)
	if err != nil {
		return err
	}

	if count < 1 {
		return ReaderCountError
	}

	l.logInfo(logMsgParsingReaders, logAttrCount, count)

	for range count {
		fields, err := lines.nextRecord(readerFields)
		if err != nil {
			return err
		}

		record := readerRecord{
			CardNumber: l.ConvertInt(fields[0], ReaderCardNumberError),
			Name:       fields[1],
			Phone:      fields[2],
			BookCount:  l.ConvertInt(fields[3], BookCountError),
		}

		if !l.validateRecord(lines, record) {
			continue
		}

		reader := NewReader(record.CardNumber, record.Name, record.Phone)
		if err := l.AddReader(reader); err != nil {
			l.logWarn(logMsgReaderSkipped, logAttrLine, lines.number, logAttrCode, CodeOf(err).Message())
			continue
		}

		l.checkOutHeldBooks(reader, fields[readerBookStart:], record.BookCount)
	}

	return nil
}

// checkOutHeldBooks walks the isbn/due date pairs of a reader record.
func (l *Library) checkOutHeldBooks(reader *Reader, pairs []string, bookCount int) {
	for i := 0; i < bookCount && 2*i+1 < len(pairs); i++ {
		isbn := pairs[2*i]
		dueDate := l.ConvertDate(pairs[2*i+1], DateConversionError)

		book := l.BookByISBN(isbn)
		if book == nil {
			l.logWarn(logMsgUnknownInlineISBN, logAttrISBN, isbn, logAttrCardNumber, reader.CardNumber())
			continue
		}

		if err := l.CheckOutBook(reader, book); err != nil {
			l.logWarn(
				logMsgInlineCheckoutFailed,
				logAttrISBN, isbn,
				logAttrCardNumber, reader.CardNumber(),
				logAttrCode, CodeOf(err).Message(),
			)
			continue
		}

		book.SetDueDate(dueDate)
	}
}

func (l *Library) readCount(lines *lineReader, code Code) (int, error) {
	line, err := lines.next()
	if err != nil {
		return 0, err
	}

	return l.ConvertInt(line, code), nil
}

// validateRecord logs the first field that failed validation.
func (l *Library) validateRecord(lines *lineReader, record any) bool {
	err := recordValidator.Struct(record)
	if err == nil {
		return true
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		l.logWarn(logMsgInvalidRecord, logAttrLine, lines.number, logAttrError, err.Error())
		return false
	}

	first := validationErrors[0]
	l.logWarn(
		logMsgInvalidRecord,
		logAttrLine, lines.number,
		logAttrField, first.Field(),
		logAttrRule, first.Tag(),
	)

	return false
}

type lineReader struct {
	scanner *bufio.Scanner
	library *Library
	number  int
}

func (r *lineReader) next() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			r.library.logError(logMsgReadFailed, logAttrLine, r.number+1, logAttrError, err.Error())
			return "", IOError
		}

		r.library.logError(logMsgUnexpectedEnd, logAttrLine, r.number)
		return "", IOError
	}

	r.number++

	return strings.TrimSpace(r.scanner.Text()), nil
}

// nextRecord reads the next line and splits it into at least minFields trimmed fields.
func (r *lineReader) nextRecord(minFields int) ([]string, error) {
	line, err := r.next()
	if err != nil {
		return nil, err
	}

	fields := strings.Split(line, ",")
	if len(fields) < minFields {
		r.library.logWarn(logMsgMalformedRecord, logAttrLine, r.number, logAttrRecord, line)
		return nil, IOError
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields, nil
}
