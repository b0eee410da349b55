package outbox

import (
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// MaxRetries bounds how many times a failed event is picked up again.
const MaxRetries = 5

type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Headers       map[string]string
	Traceparent   string
	CreatedAt     time.Time
	Status        Status
	RelayID       string
	RetryCount    int
	LastError     *string
}

// Record is an event about to be written in the same transaction as the
// state change it describes.
type Record struct {
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Headers       map[string]string
	Traceparent   string
}

func NewRecord(aggregateType, aggregateID, eventType string, payload any, traceparent string) (Record, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Record{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Type:          eventType,
		Payload:       b,
		Headers:       map[string]string{},
		Traceparent:   traceparent,
	}, nil
}
