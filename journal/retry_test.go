package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-library-go/journal"
)

func Test_RetryWithExponentialBackoff_Succeeds_AfterConcurrencyConflicts(t *testing.T) {
	// arrange
	attempts := 0
	fn := func(context.Context) error {
		attempts++
		if attempts < 3 {
			return journal.ErrConcurrencyConflict
		}

		return nil
	}

	// act
	err := journal.RetryWithExponentialBackoff(t.Context(), fn, journal.WithBaseDelay(time.Millisecond))

	// assert
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func Test_RetryWithExponentialBackoff_Fails_When_AttemptsAreExhausted(t *testing.T) {
	// arrange
	attempts := 0
	fn := func(context.Context) error {
		attempts++
		return errors.Join(journal.ErrConcurrencyConflict, errors.New("still conflicting"))
	}

	// act
	err := journal.RetryWithExponentialBackoff(
		t.Context(),
		fn,
		journal.WithMaxAttempts(4),
		journal.WithBaseDelay(time.Millisecond),
		journal.WithJitterFactor(0),
	)

	// assert
	assert.ErrorIs(t, err, journal.ErrConcurrencyConflict)
	assert.Equal(t, 4, attempts)
}

func Test_RetryWithExponentialBackoff_DoesNotRetry_OtherErrors(t *testing.T) {
	// arrange
	attempts := 0
	otherErr := errors.New("connection refused")
	fn := func(context.Context) error {
		attempts++
		return otherErr
	}

	// act
	err := journal.RetryWithExponentialBackoff(t.Context(), fn)

	// assert
	assert.ErrorIs(t, err, otherErr)
	assert.Equal(t, 1, attempts)
}

func Test_RetryWithExponentialBackoff_Stops_When_ContextIsCancelled(t *testing.T) {
	// arrange
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	fn := func(context.Context) error {
		attempts++
		cancel()
		return journal.ErrConcurrencyConflict
	}

	// act
	err := journal.RetryWithExponentialBackoff(ctx, fn, journal.WithBaseDelay(time.Hour))

	// assert
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func Test_RetryWithExponentialBackoff_Fails_When_OptionsAreInvalid(t *testing.T) {
	tests := []struct {
		name        string
		option      journal.RetryOption
		expectedErr error
	}{
		{name: "zero max attempts", option: journal.WithMaxAttempts(0), expectedErr: journal.ErrInvalidMaxAttempts},
		{name: "negative base delay", option: journal.WithBaseDelay(-time.Second), expectedErr: journal.ErrNegativeBaseDelay},
		{name: "jitter factor above one", option: journal.WithJitterFactor(1.5), expectedErr: journal.ErrInvalidJitterFactor},
		{name: "negative jitter factor", option: journal.WithJitterFactor(-0.1), expectedErr: journal.ErrInvalidJitterFactor},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			called := false

			// act
			err := journal.RetryWithExponentialBackoff(
				t.Context(),
				func(context.Context) error { called = true; return nil },
				tc.option,
			)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.False(t, called)
		})
	}
}
