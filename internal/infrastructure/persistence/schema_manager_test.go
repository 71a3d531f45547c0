package persistence

import (
	"context"
	"testing"

	"github.com/exportdesk/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newEmptySQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func countByStatus(results []StepResult) map[StepStatus]int {
	out := make(map[StepStatus]int)
	for _, r := range results {
		out[r.Status]++
	}
	return out
}

func TestSchemaManager_ApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	manager := NewSchemaManager(newEmptySQLiteDB(t))
	steps := DefaultSchemaSteps()

	first := manager.Apply(ctx, steps)
	require.Len(t, first, len(steps))
	assert.Zero(t, countByStatus(first)[StepFailed], "%+v", first)
	assert.Equal(t, len(models.All()), countByStatus(first)[StepApplied])

	second := manager.Apply(ctx, steps)
	assert.Equal(t, map[StepStatus]int{StepSkipped: len(steps)}, countByStatus(second))
}

func TestSchemaManager_CreatesOrderLinkConstraints(t *testing.T) {
	ctx := context.Background()
	db := newEmptySQLiteDB(t)
	manager := NewSchemaManager(db)

	results := manager.Apply(ctx, DefaultSchemaSteps())
	assert.Zero(t, countByStatus(results)[StepFailed], "%+v", results)

	for _, name := range []string{"fk_orders_block", "fk_orders_buyer"} {
		assert.True(t, db.Migrator().HasConstraint(&models.OrderModel{}, name), name)
	}
}

func TestSchemaManager_AddsMissingColumnsAndIndexes(t *testing.T) {
	ctx := context.Background()
	db := newEmptySQLiteDB(t)
	require.NoError(t, db.Exec(`CREATE TABLE orders (id TEXT PRIMARY KEY, order_ref TEXT NOT NULL)`).Error)
	manager := NewSchemaManager(db)

	applied, err := manager.EnsureColumn(ctx, &models.OrderModel{}, "ExternalID")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, db.Migrator().HasColumn(&models.OrderModel{}, "external_id"))

	applied, err = manager.EnsureIndex(ctx, &models.OrderModel{}, "idx_orders_external_id")
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = manager.EnsureIndex(ctx, &models.OrderModel{}, "idx_orders_external_id")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestSchemaManager_FailedStepDoesNotStopLaterSteps(t *testing.T) {
	ctx := context.Background()
	manager := NewSchemaManager(newEmptySQLiteDB(t))

	results := manager.Apply(ctx, []SchemaStep{
		{Name: "bogus", Kind: StepKind("trigger"), Model: &models.BlockModel{}},
		{Name: "create table blocks", Kind: StepKindTable, Model: &models.BlockModel{}},
	})
	require.Len(t, results, 2)
	assert.Equal(t, StepFailed, results[0].Status)
	assert.NotEmpty(t, results[0].Error)
	assert.Equal(t, StepApplied, results[1].Status)
}
