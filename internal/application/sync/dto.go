package sync

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/commerce"
	"github.com/google/uuid"
)

// SyncRequest is the body of POST /api/sync
type SyncRequest struct {
	Resource commerce.Resource `json:"resource" binding:"omitempty,oneof=orders products"`
	// Since overrides the incremental starting point
	Since *time.Time `json:"since"`
	// Full ignores the last successful run and pulls everything
	Full    bool             `json:"full"`
	Trigger commerce.Trigger `json:"-"`
}

// RunListFilter selects recent sync runs
type RunListFilter struct {
	Resource commerce.Resource `form:"resource" binding:"omitempty,oneof=orders products"`
	Limit    int               `form:"limit" binding:"omitempty,min=1,max=100"`
}

// SyncRunResponse represents a persisted sync run in API responses
type SyncRunResponse struct {
	ID      uuid.UUID            `json:"id"`
	Trigger commerce.Trigger     `json:"trigger"`
	Summary commerce.SyncSummary `json:"summary"`
}

// ToSyncRunResponse converts a domain sync run to a response
func ToSyncRunResponse(r *commerce.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:      r.ID,
		Trigger: r.Trigger,
		Summary: r.Summary,
	}
}
