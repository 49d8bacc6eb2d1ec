package handler

import (
	"strings"

	"github.com/google/uuid"

	"unify/internal/domain"
	dErrors "unify/pkg/domain-errors"
)

// ActionRequest is the HTTP request body for POST /review/{decisionID}/action.
type ActionRequest struct {
	Action         string `json:"action"`
	TargetPersonID string `json:"target_person_id,omitempty"`
	PerformedBy    string `json:"performed_by"`

	parsedAction domain.ReviewAction
	parsedTarget *uuid.UUID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *ActionRequest) Validate() error {
	r.Action = strings.TrimSpace(strings.ToLower(r.Action))
	r.PerformedBy = strings.TrimSpace(r.PerformedBy)

	switch domain.ReviewAction(r.Action) {
	case domain.ActionPromote, domain.ActionGarbage, domain.ActionMerge:
		r.parsedAction = domain.ReviewAction(r.Action)
	default:
		return dErrors.Newf(dErrors.CodeValidation, "action must be one of promote, garbage, merge")
	}

	if r.PerformedBy == "" {
		return dErrors.New(dErrors.CodeValidation, "performed_by is required")
	}

	if r.TargetPersonID != "" {
		target, err := uuid.Parse(r.TargetPersonID)
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "invalid target_person_id")
		}
		r.parsedTarget = &target
	}
	return nil
}

// ParsedAction returns the validated action.
func (r *ActionRequest) ParsedAction() domain.ReviewAction {
	return r.parsedAction
}

// ParsedTarget returns the validated merge target, or nil.
func (r *ActionRequest) ParsedTarget() *uuid.UUID {
	return r.parsedTarget
}
