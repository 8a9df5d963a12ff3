package journal

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/lending-library-go/library"
)

var (
	ErrMappingToStorableEventFailedForDomainEvent = errors.New("mapping to storable event failed for domain event")
	ErrMappingToStorableEventFailedForMetadata    = errors.New("mapping to storable event failed for metadata")
	ErrMappingToDomainEventFailed                 = errors.New("mapping to domain event failed")
	ErrMappingToDomainEventUnknownEventType       = errors.New("unknown event type")
	ErrMappingToMetadataFailed                    = errors.New("mapping to event metadata failed")
)

type MessageID = string
type CorrelationID = string

// Metadata identifies a journaled event and the flush it was written in.
type Metadata struct {
	MessageID     MessageID
	CorrelationID CorrelationID
}

// BuildMetadata creates Metadata from UUID values.
func BuildMetadata(messageID uuid.UUID, correlationID uuid.UUID) Metadata {
	return Metadata{
		MessageID:     messageID.String(),
		CorrelationID: correlationID.String(),
	}
}

// MetadataFrom extracts the Metadata of a StorableEvent.
func MetadataFrom(storableEvent StorableEvent) (Metadata, error) {
	metadata := new(Metadata)
	if err := jsoniter.ConfigFastest.Unmarshal(storableEvent.MetadataJSON, metadata); err != nil {
		return Metadata{}, errors.Join(ErrMappingToMetadataFailed, err)
	}

	return *metadata, nil
}

// StorableEventFrom serializes a library domain event and its metadata.
func StorableEventFrom(event library.DomainEvent, metadata Metadata) (StorableEvent, error) {
	payloadJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(event)
	if err != nil {
		return StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	metadataJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(metadata)
	if err != nil {
		return StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForMetadata, err)
	}

	storableEvent, err := BuildStorableEvent(event.IsEventType(), event.HasOccurredAt(), payloadJSON, metadataJSON)
	if err != nil {
		return StorableEvent{}, errors.Join(ErrMappingToStorableEventFailedForDomainEvent, err)
	}

	return storableEvent, nil
}

// DomainEventsFrom converts multiple StorableEvents to library domain events.
func DomainEventsFrom(storableEvents StorableEvents) (library.DomainEvents, error) {
	domainEvents := make(library.DomainEvents, 0, len(storableEvents))

	for _, storableEvent := range storableEvents {
		domainEvent, err := DomainEventFrom(storableEvent)
		if err != nil {
			return nil, err
		}

		domainEvents = append(domainEvents, domainEvent)
	}

	return domainEvents, nil
}

// DomainEventFrom converts a StorableEvent back to its library domain event.
func DomainEventFrom(storableEvent StorableEvent) (library.DomainEvent, error) {
	switch storableEvent.EventType {
	case library.BookAddedToCatalogEventType:
		return unmarshalPayload[library.BookAddedToCatalog](storableEvent.PayloadJSON)

	case library.ShelfAddedEventType:
		return unmarshalPayload[library.ShelfAdded](storableEvent.PayloadJSON)

	case library.BookCopyLentToReaderEventType:
		return unmarshalPayload[library.BookCopyLentToReader](storableEvent.PayloadJSON)

	case library.LendingBookToReaderFailedEventType:
		return unmarshalPayload[library.LendingBookToReaderFailed](storableEvent.PayloadJSON)

	case library.BookCopyReturnedByReaderEventType:
		return unmarshalPayload[library.BookCopyReturnedByReader](storableEvent.PayloadJSON)

	case library.BookCopyReturnedToShelfEventType:
		return unmarshalPayload[library.BookCopyReturnedToShelf](storableEvent.PayloadJSON)

	case library.ReaderRegisteredEventType:
		return unmarshalPayload[library.ReaderRegistered](storableEvent.PayloadJSON)

	case library.ReaderRemovedEventType:
		return unmarshalPayload[library.ReaderRemoved](storableEvent.PayloadJSON)
	}

	return nil, errors.Join(ErrMappingToDomainEventFailed, ErrMappingToDomainEventUnknownEventType)
}

func unmarshalPayload[E library.DomainEvent](payloadJSON []byte) (library.DomainEvent, error) {
	var event E
	if err := jsoniter.ConfigFastest.Unmarshal(payloadJSON, &event); err != nil {
		return nil, errors.Join(ErrMappingToDomainEventFailed, err)
	}

	return event, nil
}
