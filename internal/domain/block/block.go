package block

import (
	"fmt"
	"strings"
	"time"

	"github.com/exportdesk/backend/internal/domain/shared"
)

// Status is the lifecycle of a shipping block
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusClosed    Status = "closed"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanning, StatusConfirmed, StatusShipped, StatusClosed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPlanning:
		return target == StatusConfirmed
	case StatusConfirmed:
		return target == StatusShipped || target == StatusPlanning
	case StatusShipped:
		return target == StatusClosed
	case StatusClosed:
		return false
	}
	return false
}

// monthLayout is the target ship month format, e.g. 2024-07
const monthLayout = "2006-01"

// Block is a named batch of orders shipped together
type Block struct {
	shared.BaseAggregateRoot
	Name            string
	TargetShipMonth string
	Status          Status
	Notes           string
}

// NewBlock creates a block in planning
func NewBlock(name, targetShipMonth, notes string) (*Block, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	month, err := ParseShipMonth(targetShipMonth)
	if err != nil {
		return nil, err
	}
	return &Block{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		TargetShipMonth:   month,
		Status:            StatusPlanning,
		Notes:             notes,
	}, nil
}

// ParseShipMonth validates and normalizes a YYYY-MM month
func ParseShipMonth(s string) (string, error) {
	t, err := time.Parse(monthLayout, strings.TrimSpace(s))
	if err != nil {
		return "", shared.NewDomainError("INVALID_SHIP_MONTH", fmt.Sprintf("Target ship month %q must be formatted YYYY-MM", s))
	}
	return t.Format(monthLayout), nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Block name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Block name cannot exceed 100 characters")
	}
	return nil
}

// Rename changes the block name
func (b *Block) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	b.Name = name
	b.touch()
	return nil
}

// Reschedule moves the target ship month. Shipped and closed blocks are fixed.
func (b *Block) Reschedule(month string) error {
	if b.Status == StatusShipped || b.Status == StatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Cannot reschedule a block that has shipped")
	}
	m, err := ParseShipMonth(month)
	if err != nil {
		return err
	}
	b.TargetShipMonth = m
	b.touch()
	return nil
}

// ChangeStatus moves the block along its lifecycle
func (b *Block) ChangeStatus(target Status) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown block status %q", target))
	}
	if b.Status == target {
		return nil
	}
	if !b.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot move block from %s to %s", b.Status, target))
	}
	b.Status = target
	b.touch()
	return nil
}

// SetNotes replaces the notes
func (b *Block) SetNotes(notes string) {
	b.Notes = notes
	b.touch()
}

// ShipMonthTime returns the first day of the target month
func (b *Block) ShipMonthTime() time.Time {
	t, _ := time.Parse(monthLayout, b.TargetShipMonth)
	return t
}

// AcceptsOrders reports whether orders may still be added
func (b *Block) AcceptsOrders() bool {
	return b.Status == StatusPlanning || b.Status == StatusConfirmed
}

func (b *Block) touch() {
	b.MarkChanged()
}
