package handler

import (
	"time"

	"unify/internal/domain"
	"unify/internal/resolution"
)

// IngestResponse is the decision report returned for POST /ingest.
type IngestResponse struct {
	DecisionID  string               `json:"decision_id"`
	Outcome     string               `json:"outcome"`
	PersonID    *string              `json:"person_id,omitempty"`
	Similarity  float64              `json:"similarity"`
	Confidence  float64              `json:"confidence"`
	DataQuality string               `json:"data_quality"`
	Evidence    domain.MatchEvidence `json:"evidence"`
}

func FromResult(res *resolution.Result) IngestResponse {
	out := IngestResponse{
		DecisionID:  res.DecisionID.String(),
		Outcome:     string(res.Outcome),
		Similarity:  res.Similarity,
		Confidence:  res.Confidence,
		DataQuality: string(res.DataQuality),
		Evidence:    res.Evidence,
	}
	if res.PersonID != nil {
		id := res.PersonID.String()
		out.PersonID = &id
	}
	return out
}

// PersonResponse is the representation returned for GET /persons/{personID}.
type PersonResponse struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"display_name"`
	Identifiers []IdentifierResponse `json:"identifiers"`
	DataQuality string               `json:"data_quality"`
	IsCanonical bool                 `json:"is_canonical"`
	Provenance  string               `json:"provenance"`
	CreatedAt   time.Time            `json:"created_at"`
}

type IdentifierResponse struct {
	Kind   string `json:"kind"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func FromPerson(p domain.CanonicalPerson) PersonResponse {
	idents := make([]IdentifierResponse, 0, len(p.Identifiers))
	for _, ident := range p.Identifiers {
		idents = append(idents, IdentifierResponse{
			Kind:   string(ident.Kind),
			Value:  ident.Value,
			Source: ident.Source,
		})
	}
	return PersonResponse{
		ID:          p.ID.String(),
		DisplayName: p.DisplayName,
		Identifiers: idents,
		DataQuality: string(p.DataQuality),
		IsCanonical: p.IsCanonical,
		Provenance:  p.Provenance,
		CreatedAt:   p.CreatedAt,
	}
}
