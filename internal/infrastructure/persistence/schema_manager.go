package persistence

import (
	"context"
	"fmt"

	"github.com/exportdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// StepKind is the kind of object a schema step ensures
type StepKind string

const (
	StepKindTable      StepKind = "table"
	StepKindColumn     StepKind = "column"
	StepKindIndex      StepKind = "index"
	StepKindConstraint StepKind = "constraint"
)

// StepStatus is the outcome of a schema step
type StepStatus string

const (
	StepApplied StepStatus = "applied"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// StepResult reports one schema step
type StepResult struct {
	Name   string     `json:"name"`
	Kind   StepKind   `json:"kind"`
	Status StepStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// SchemaStep is one idempotent "create if missing" action
type SchemaStep struct {
	Name  string
	Kind  StepKind
	Model any
	// Field is the struct field for column steps, the index name for index
	// steps and the constraint name for constraint steps
	Field string
}

// SchemaManager applies schema steps through the GORM migrator
type SchemaManager struct {
	db *gorm.DB
}

// NewSchemaManager creates a new SchemaManager
func NewSchemaManager(db *gorm.DB) *SchemaManager {
	return &SchemaManager{db: db}
}

// EnsureTable creates the model's table when it does not exist
func (m *SchemaManager) EnsureTable(ctx context.Context, model any) (bool, error) {
	migrator := m.db.WithContext(ctx).Migrator()
	if migrator.HasTable(model) {
		return false, nil
	}
	if err := migrator.CreateTable(model); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureColumn adds the column for field when the table lacks it
func (m *SchemaManager) EnsureColumn(ctx context.Context, model any, field string) (bool, error) {
	migrator := m.db.WithContext(ctx).Migrator()
	if migrator.HasColumn(model, field) {
		return false, nil
	}
	if err := migrator.AddColumn(model, field); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureIndex creates the named index declared on the model when it is missing
func (m *SchemaManager) EnsureIndex(ctx context.Context, model any, name string) (bool, error) {
	migrator := m.db.WithContext(ctx).Migrator()
	if migrator.HasIndex(model, name) {
		return false, nil
	}
	if err := migrator.CreateIndex(model, name); err != nil {
		return false, err
	}
	return true, nil
}

// EnsureConstraint creates the named foreign key declared on the model when it is missing
func (m *SchemaManager) EnsureConstraint(ctx context.Context, model any, name string) (bool, error) {
	migrator := m.db.WithContext(ctx).Migrator()
	if migrator.HasConstraint(model, name) {
		return false, nil
	}
	if err := migrator.CreateConstraint(model, name); err != nil {
		return false, err
	}
	return true, nil
}

// Apply runs every step in order. A failed step is recorded and the
// remaining steps still run.
func (m *SchemaManager) Apply(ctx context.Context, steps []SchemaStep) []StepResult {
	results := make([]StepResult, 0, len(steps))
	for _, step := range steps {
		result := StepResult{Name: step.Name, Kind: step.Kind}
		applied, err := m.apply(ctx, step)
		switch {
		case err != nil:
			result.Status = StepFailed
			result.Error = err.Error()
		case applied:
			result.Status = StepApplied
		default:
			result.Status = StepSkipped
		}
		results = append(results, result)
		if ctx.Err() != nil {
			break
		}
	}
	return results
}

func (m *SchemaManager) apply(ctx context.Context, step SchemaStep) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	switch step.Kind {
	case StepKindTable:
		return m.EnsureTable(ctx, step.Model)
	case StepKindColumn:
		return m.EnsureColumn(ctx, step.Model, step.Field)
	case StepKindIndex:
		return m.EnsureIndex(ctx, step.Model, step.Field)
	case StepKindConstraint:
		return m.EnsureConstraint(ctx, step.Model, step.Field)
	default:
		return false, fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

// DefaultSchemaSteps lists the tables, the columns added after the first
// release, the lookup indexes and the order link foreign keys, in the order
// they must be applied.
func DefaultSchemaSteps() []SchemaStep {
	steps := make([]SchemaStep, 0, 32)
	for _, model := range models.All() {
		steps = append(steps, SchemaStep{
			Name:  "create table " + tableName(model),
			Kind:  StepKindTable,
			Model: model,
		})
	}

	orderModel := &models.OrderModel{}
	for _, field := range []string{
		"Source",
		"ExternalID",
		"Payment4Amount",
		"Payment4Date",
		"ExternalUpdatedAt",
		"SyncedAt",
		"ShipStatus",
		"TrackingNumber",
		"ShippingMethod",
		"BuyerID",
	} {
		steps = append(steps, SchemaStep{
			Name:  "add column orders." + field,
			Kind:  StepKindColumn,
			Model: orderModel,
			Field: field,
		})
	}
	steps = append(steps, SchemaStep{
		Name:  "add column products.ExternalID",
		Kind:  StepKindColumn,
		Model: &models.ProductModel{},
		Field: "ExternalID",
	})

	for _, index := range []string{
		"idx_orders_external_id",
		"idx_orders_order_ref",
		"idx_orders_block_id",
		"idx_orders_buyer_id",
		"idx_orders_payment_status",
	} {
		steps = append(steps, SchemaStep{
			Name:  "create index " + index,
			Kind:  StepKindIndex,
			Model: orderModel,
			Field: index,
		})
	}
	for _, constraint := range []string{"fk_orders_block", "fk_orders_buyer"} {
		steps = append(steps, SchemaStep{
			Name:  "create constraint " + constraint,
			Kind:  StepKindConstraint,
			Model: orderModel,
			Field: constraint,
		})
	}
	steps = append(steps, SchemaStep{
		Name:  "create index idx_buyers_email",
		Kind:  StepKindIndex,
		Model: &models.BuyerModel{},
		Field: "idx_buyers_email",
	})
	return steps
}

func tableName(model any) string {
	if t, ok := model.(interface{ TableName() string }); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", model)
}
