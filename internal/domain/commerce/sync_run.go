package commerce

import (
	"context"
	"fmt"
	"time"

	"github.com/exportdesk/backend/internal/domain/shared"
)

// MaxErrorMessages caps the messages kept on a summary
const MaxErrorMessages = 50

// Trigger says what started a sync
type Trigger string

const (
	TriggerAPI       Trigger = "api"
	TriggerScheduled Trigger = "scheduled"
	TriggerCLI       Trigger = "cli"
)

// Resource is what a sync pulls
type Resource string

const (
	ResourceOrders   Resource = "orders"
	ResourceProducts Resource = "products"
)

// IsValid checks if the resource is known
func (r Resource) IsValid() bool {
	return r == ResourceOrders || r == ResourceProducts
}

// RunStatus is the overall outcome of a sync
type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

// SyncSummary counts what one sync did
type SyncSummary struct {
	Resource      Resource  `json:"resource"`
	Fetched       int       `json:"fetched"`
	Created       int       `json:"created"`
	Updated       int       `json:"updated"`
	Skipped       int       `json:"skipped"`
	Errors        int       `json:"errors"`
	Pages         int       `json:"pages"`
	Status        RunStatus `json:"status"`
	ErrorMessages []string  `json:"error_messages"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	DurationMs    int64     `json:"duration_ms"`
}

// NewSyncSummary starts a summary
func NewSyncSummary(resource Resource) *SyncSummary {
	return &SyncSummary{
		Resource:      resource,
		Status:        RunStatusRunning,
		ErrorMessages: []string{},
		StartedAt:     time.Now(),
	}
}

// RecordError counts a per-row failure
func (s *SyncSummary) RecordError(ref string, err error) {
	s.Errors++
	s.addMessage(fmt.Sprintf("%s: %v", ref, err))
}

func (s *SyncSummary) addMessage(msg string) {
	if len(s.ErrorMessages) < MaxErrorMessages {
		s.ErrorMessages = append(s.ErrorMessages, msg)
	}
}

// Finish stamps the end time and derives the status.
// fetchErr is the error that stopped paging, if any.
func (s *SyncSummary) Finish(fetchErr error) {
	s.FinishedAt = time.Now()
	s.DurationMs = s.FinishedAt.Sub(s.StartedAt).Milliseconds()
	switch {
	case fetchErr != nil && s.Fetched == 0:
		s.Status = RunStatusFailed
		s.addMessage(fetchErr.Error())
	case fetchErr != nil || s.Errors > 0:
		if fetchErr != nil {
			s.addMessage(fetchErr.Error())
		}
		s.Status = RunStatusPartial
	default:
		s.Status = RunStatusSuccess
	}
}

// SyncRun is a persisted sync summary
type SyncRun struct {
	shared.BaseEntity
	Trigger Trigger
	Summary SyncSummary
}

// NewSyncRun wraps a finished summary
func NewSyncRun(trigger Trigger, summary SyncSummary) *SyncRun {
	return &SyncRun{
		BaseEntity: shared.NewBaseEntity(),
		Trigger:    trigger,
		Summary:    summary,
	}
}

// SyncRunRepository persists sync runs
type SyncRunRepository interface {
	Save(ctx context.Context, run *SyncRun) error
	FindRecent(ctx context.Context, resource Resource, limit int) ([]SyncRun, error)
	// LastSuccessful returns the latest successful run for resource, or shared.ErrNotFound
	LastSuccessful(ctx context.Context, resource Resource) (*SyncRun, error)
}
