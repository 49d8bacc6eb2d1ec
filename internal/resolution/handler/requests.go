package handler

import (
	"encoding/json"
	"strings"
	"time"

	"unify/internal/domain"
	dErrors "unify/pkg/domain-errors"
)

// IngestRequest is the HTTP request body for POST /ingest.
type IngestRequest struct {
	SourceSystem string          `json:"source_system"`
	Name         string          `json:"name"`
	Email        string          `json:"email,omitempty"`
	Phone        string          `json:"phone,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *IngestRequest) Validate() error {
	r.SourceSystem = strings.TrimSpace(r.SourceSystem)
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)

	if r.SourceSystem == "" {
		return dErrors.New(dErrors.CodeValidation, "source_system is required")
	}
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if len(r.Name) > 256 {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 256 characters")
	}
	if len(r.Email) > 320 {
		return dErrors.New(dErrors.CodeValidation, "email must be at most 320 characters")
	}
	return nil
}

// ToStagedRecord builds the domain record for the resolution service.
func (r *IngestRequest) ToStagedRecord(now time.Time) domain.StagedRecord {
	return domain.StagedRecord{
		SourceSystem: r.SourceSystem,
		Name:         r.Name,
		Email:        r.Email,
		Phone:        r.Phone,
		ReceivedAt:   now,
		Payload:      r.Payload,
	}
}
