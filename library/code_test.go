package library_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-library-go/library"
)

func Test_Code_Numbers(t *testing.T) {
	tests := []struct {
		code   library.Code
		number int
	}{
		{library.Success, 0},
		{library.FileNotFoundError, -1},
		{library.BookCountError, -2},
		{library.PageCountError, -8},
		{library.BookLimitReachedError, -22},
		{library.ReaderCardNumberError, -32},
		{library.ShelfSubjectMismatchError, -44},
		{library.DateConversionError, -101},
		{library.UnknownError, -999},
	}

	for _, tc := range tests {
		t.Run(tc.code.Message(), func(t *testing.T) {
			assert.Equal(t, tc.number, tc.code.Number())
			assert.Equal(t, tc.code, library.CodeFromNumber(tc.number))
		})
	}
}

func Test_CodeFromNumber_FallsBackToUnknownError(t *testing.T) {
	assert.Equal(t, library.UnknownError, library.CodeFromNumber(-7))
	assert.Equal(t, library.UnknownError, library.CodeFromNumber(42))
}

func Test_Code_Err(t *testing.T) {
	assert.NoError(t, library.Success.Err())
	assert.ErrorIs(t, library.ShelfExistsError.Err(), library.ShelfExistsError)
}

func Test_CodeOf(t *testing.T) {
	wrapped := fmt.Errorf("checking out: %w", library.BookLimitReachedError)

	assert.Equal(t, library.Success, library.CodeOf(nil))
	assert.Equal(t, library.BookLimitReachedError, library.CodeOf(wrapped))
	assert.Equal(t, library.UnknownError, library.CodeOf(errors.New("boom")))
}

func Test_Code_Error_IsTheMessage(t *testing.T) {
	assert.Equal(t, "book limit reached", library.BookLimitReachedError.Error())
	assert.Equal(t, "unknown error (-7)", library.Code(-7).Message())
}
