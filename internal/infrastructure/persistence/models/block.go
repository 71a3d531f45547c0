package models

import (
	"github.com/exportdesk/backend/internal/domain/block"
)

// BlockModel is the persistence model for the Block aggregate
type BlockModel struct {
	AggregateModel
	Name            string `gorm:"type:varchar(100);not null;uniqueIndex:idx_blocks_name"`
	TargetShipMonth string `gorm:"type:varchar(7);not null"`
	Status          string `gorm:"type:varchar(20);not null;default:'planning'"`
	Notes           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BlockModel) TableName() string {
	return "blocks"
}

// ToDomain converts the persistence model to a domain Block
func (m *BlockModel) ToDomain() *block.Block {
	return &block.Block{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		TargetShipMonth:   m.TargetShipMonth,
		Status:            block.Status(m.Status),
		Notes:             m.Notes,
	}
}

// BlockModelFromDomain converts a domain Block to a persistence model
func BlockModelFromDomain(b *block.Block) *BlockModel {
	m := &BlockModel{
		Name:            b.Name,
		TargetShipMonth: b.TargetShipMonth,
		Status:          string(b.Status),
		Notes:           b.Notes,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}
