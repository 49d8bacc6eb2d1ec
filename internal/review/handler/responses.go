package handler

import (
	"time"

	"unify/internal/domain"
)

// QueueResponse is the page returned for GET /review/queue.
type QueueResponse struct {
	Items  []QueueItemResponse `json:"items"`
	Total  int                 `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type QueueItemResponse struct {
	Decision      DecisionResponse   `json:"decision"`
	BestCandidate *CandidateResponse `json:"best_candidate,omitempty"`
}

type DecisionResponse struct {
	ID           string               `json:"id"`
	SourceSystem string               `json:"source_system"`
	StagedName   string               `json:"staged_name"`
	StagedEmail  string               `json:"staged_email,omitempty"`
	StagedPhone  string               `json:"staged_phone,omitempty"`
	Similarity   float64              `json:"similarity"`
	Confidence   float64              `json:"confidence"`
	Evidence     domain.MatchEvidence `json:"evidence"`
	DataQuality  string               `json:"data_quality"`
	CreatedAt    time.Time            `json:"created_at"`
}

type CandidateResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	DataQuality string `json:"data_quality"`
	Provenance  string `json:"provenance"`
}

func FromQueue(items []domain.ReviewQueueItem, total, limit, offset int) QueueResponse {
	out := QueueResponse{
		Items:  make([]QueueItemResponse, 0, len(items)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, item := range items {
		entry := QueueItemResponse{Decision: DecisionResponse{
			ID:           item.Decision.ID.String(),
			SourceSystem: item.Decision.SourceSystem,
			StagedName:   item.Decision.StagedName,
			StagedEmail:  item.Decision.StagedEmail,
			StagedPhone:  item.Decision.StagedPhone,
			Similarity:   item.Decision.Similarity,
			Confidence:   item.Decision.Confidence,
			Evidence:     item.Decision.Evidence,
			DataQuality:  string(item.Decision.DataQuality),
			CreatedAt:    item.Decision.CreatedAt,
		}}
		if item.BestCandidate != nil {
			entry.BestCandidate = &CandidateResponse{
				ID:          item.BestCandidate.ID.String(),
				DisplayName: item.BestCandidate.DisplayName,
				DataQuality: string(item.BestCandidate.DataQuality),
				Provenance:  item.BestCandidate.Provenance,
			}
		}
		out.Items = append(out.Items, entry)
	}
	return out
}

// ResolutionResponse is returned after a review action is applied.
type ResolutionResponse struct {
	DecisionID     string    `json:"decision_id"`
	Action         string    `json:"action"`
	TargetPersonID *string   `json:"target_person_id,omitempty"`
	PerformedBy    string    `json:"performed_by"`
	CreatedAt      time.Time `json:"created_at"`
}

func FromResolution(res *domain.ReviewResolution) ResolutionResponse {
	out := ResolutionResponse{
		DecisionID:  res.DecisionID.String(),
		Action:      string(res.Action),
		PerformedBy: res.PerformedBy,
		CreatedAt:   res.CreatedAt,
	}
	if res.TargetPersonID != nil {
		id := res.TargetPersonID.String()
		out.TargetPersonID = &id
	}
	return out
}
