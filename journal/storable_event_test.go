package journal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/lending-library-go/journal"
)

func Test_BuildStorableEvent_ErrorCases(t *testing.T) {
	validTime := time.Now()
	validPayloadJSON := []byte(`{"key": "value"}`)
	validMetadataJSON := []byte(`{"meta": "data"}`)

	tests := []struct {
		name         string
		payloadJSON  []byte
		metadataJSON []byte
		expectedErr  error
	}{
		{
			name:         "invalid payload JSON",
			payloadJSON:  []byte(`{"invalid": json}`),
			metadataJSON: validMetadataJSON,
			expectedErr:  journal.ErrInvalidPayloadJSON,
		},
		{
			name:         "invalid metadata JSON",
			payloadJSON:  validPayloadJSON,
			metadataJSON: []byte(`{"invalid": json}`),
			expectedErr:  journal.ErrInvalidMetadataJSON,
		},
		{
			name:         "truncated payload JSON",
			payloadJSON:  []byte(`{"key": "val`),
			metadataJSON: validMetadataJSON,
			expectedErr:  journal.ErrInvalidPayloadJSON,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := journal.BuildStorableEvent("TestEvent", validTime, tc.payloadJSON, tc.metadataJSON)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_BuildStorableEvent_Success(t *testing.T) {
	// arrange
	occurredAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	payloadJSON := []byte(`{"ISBN": "123"}`)

	// act
	event, err := journal.BuildStorableEventWithEmptyMetadata("TestEvent", occurredAt, payloadJSON)

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "TestEvent", event.EventType)
	assert.Equal(t, occurredAt, event.OccurredAt)
	assert.Equal(t, payloadJSON, event.PayloadJSON)
	assert.JSONEq(t, `{}`, string(event.MetadataJSON))
}
