package models

import (
	"time"

	"github.com/exportdesk/backend/internal/domain/commerce"
)

// SyncRunModel is the persistence model for sync run summaries
type SyncRunModel struct {
	BaseModel
	Trigger       string    `gorm:"type:varchar(16);not null"`
	Resource      string    `gorm:"type:varchar(16);not null;index:idx_sync_runs_resource_started,priority:1"`
	Status        string    `gorm:"type:varchar(16);not null"`
	Fetched       int       `gorm:"not null;default:0"`
	Created       int       `gorm:"not null;default:0"`
	Updated       int       `gorm:"not null;default:0"`
	Skipped       int       `gorm:"not null;default:0"`
	Errors        int       `gorm:"not null;default:0"`
	Pages         int       `gorm:"not null;default:0"`
	ErrorMessages []string  `gorm:"type:jsonb;serializer:json"`
	StartedAt     time.Time `gorm:"not null;index:idx_sync_runs_resource_started,priority:2"`
	FinishedAt    time.Time
	DurationMs    int64
}

// TableName returns the table name for GORM
func (SyncRunModel) TableName() string {
	return "sync_runs"
}

// ToDomain converts the persistence model to a domain SyncRun
func (m *SyncRunModel) ToDomain() *commerce.SyncRun {
	msgs := m.ErrorMessages
	if msgs == nil {
		msgs = []string{}
	}
	return &commerce.SyncRun{
		BaseEntity: m.BaseModel.ToDomain(),
		Trigger:    commerce.Trigger(m.Trigger),
		Summary: commerce.SyncSummary{
			Resource:      commerce.Resource(m.Resource),
			Fetched:       m.Fetched,
			Created:       m.Created,
			Updated:       m.Updated,
			Skipped:       m.Skipped,
			Errors:        m.Errors,
			Pages:         m.Pages,
			Status:        commerce.RunStatus(m.Status),
			ErrorMessages: msgs,
			StartedAt:     m.StartedAt,
			FinishedAt:    m.FinishedAt,
			DurationMs:    m.DurationMs,
		},
	}
}

// SyncRunModelFromDomain converts a domain SyncRun to a persistence model
func SyncRunModelFromDomain(r *commerce.SyncRun) *SyncRunModel {
	s := r.Summary
	m := &SyncRunModel{
		Trigger:       string(r.Trigger),
		Resource:      string(s.Resource),
		Status:        string(s.Status),
		Fetched:       s.Fetched,
		Created:       s.Created,
		Updated:       s.Updated,
		Skipped:       s.Skipped,
		Errors:        s.Errors,
		Pages:         s.Pages,
		ErrorMessages: s.ErrorMessages,
		StartedAt:     s.StartedAt,
		FinishedAt:    s.FinishedAt,
		DurationMs:    s.DurationMs,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
