package amqp

import (
	"encoding/json"
	"time"
)

// Sync message kinds. Upserts carry the record version so stale deliveries
// can be skipped; deletes only need the ID.
type SyncKind string

const (
	SyncUpsert SyncKind = "upsert"
	SyncDelete SyncKind = "delete"
)

// TransactionSyncMessage is the lightweight queue payload for backup sync.
// It carries only the ID and version; the worker fetches the full record
// from the database.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Version   int64     `json:"version"`
	Kind      SyncKind  `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

// NewUpsertMessage creates a sync message for a created or updated record.
func NewUpsertMessage(id string, version int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Version:   version,
		Kind:      SyncUpsert,
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage creates a sync message for a deleted record.
func NewDeleteMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Kind:      SyncDelete,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionSyncMessageFromJSON creates a message from JSON bytes
func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		msg.Kind = SyncUpsert
	}
	return &msg, nil
}
