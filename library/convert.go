package library

import (
	"strconv"
	"strings"
	"time"
)

const (
	noDateMarker = "0000"
	dateLayout   = "2006-01-02"
)

// DefaultDate stands in for due dates that are absent ("0000") or unreadable.
var DefaultDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// ConvertInt parses s as a decimal integer.
//
// On failure it returns the negative number of the Code matching the conversion that was
// attempted: PageCountError, BookCountError or DateConversionError; UnknownError for
// anything else. Callers must check for a negative result.
func (l *Library) ConvertInt(s string, code Code) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err == nil {
		return n
	}

	switch code {
	case PageCountError, BookCountError, DateConversionError:
		l.logWarn(logMsgConversionFailed, logAttrInput, s, logAttrCode, code.Message())
		return code.Number()

	default:
		l.logWarn(logMsgConversionFailed, logAttrInput, s, logAttrCode, UnknownError.Message())
		return UnknownError.Number()
	}
}

// ConvertDate turns a hyphen separated year-month-day field into a date.
//
// "0000" always yields DefaultDate. Any part that does not convert, or a combination that is
// not a real calendar day, also yields DefaultDate; the failure is logged, never returned.
func (l *Library) ConvertDate(s string, code Code) time.Time {
	s = strings.TrimSpace(s)
	if s == noDateMarker {
		return DefaultDate
	}

	parts := strings.Split(s, "-")
	if len(parts) < 3 {
		l.logWarn(logMsgDateDefaulted, logAttrInput, s)
		return DefaultDate
	}

	year := l.ConvertInt(parts[0], code)
	month := l.ConvertInt(parts[1], code)
	day := l.ConvertInt(parts[2], code)

	if year < 0 || month < 0 || day < 0 {
		l.logWarn(logMsgDateDefaulted, logAttrInput, s)
		return DefaultDate
	}

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		l.logWarn(logMsgDateDefaulted, logAttrInput, s)
		return DefaultDate
	}

	return date
}

// FormatDate renders a due date the way the import file writes it.
func FormatDate(date time.Time) string {
	if date.Equal(DefaultDate) {
		return noDateMarker
	}

	return date.Format(dateLayout)
}
