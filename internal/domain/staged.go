package domain

import (
	"encoding/json"
	"time"
)

// StagedRecord is an incoming submission from one of the intake sources.
// Immutable once ingested; a correction arrives as a new record. The payload
// is opaque to the engine beyond the identifiers.
type StagedRecord struct {
	SourceSystem string
	Name         string
	Email        string
	Phone        string
	ReceivedAt   time.Time
	Payload      json.RawMessage
}
