package setup

import (
	"context"
	"strings"

	"github.com/exportdesk/backend/internal/domain/notification"
	"github.com/exportdesk/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// StepKindSeed marks the template seeding step appended after the schema steps
const StepKindSeed persistence.StepKind = "seed"

// SchemaApplier applies idempotent schema steps
type SchemaApplier interface {
	Apply(ctx context.Context, steps []persistence.SchemaStep) []persistence.StepResult
}

// TemplateSeeder inserts missing email templates
type TemplateSeeder interface {
	SeedTemplates(ctx context.Context, seeds []notification.EmailTemplate) ([]string, error)
}

// Report is the outcome of a setup run
type Report struct {
	Steps   []persistence.StepResult `json:"steps"`
	Applied int                      `json:"applied"`
	Skipped int                      `json:"skipped"`
	Failed  int                      `json:"failed"`
}

// OK reports whether every step succeeded
func (r *Report) OK() bool {
	return r.Failed == 0
}

func (r *Report) add(result persistence.StepResult) {
	r.Steps = append(r.Steps, result)
	switch result.Status {
	case persistence.StepApplied:
		r.Applied++
	case persistence.StepSkipped:
		r.Skipped++
	case persistence.StepFailed:
		r.Failed++
	}
}

// Service brings an existing database up to the current schema
type Service struct {
	schema SchemaApplier
	steps  []persistence.SchemaStep
	seeder TemplateSeeder
	seeds  []notification.EmailTemplate
	logger *zap.Logger
}

// NewService creates a setup service running steps against schema
func NewService(schema SchemaApplier, steps []persistence.SchemaStep) *Service {
	return &Service{
		schema: schema,
		steps:  steps,
		logger: zap.NewNop(),
	}
}

// SetTemplateSeeds makes Run finish by inserting any missing seed templates
func (s *Service) SetTemplateSeeds(seeder TemplateSeeder, seeds []notification.EmailTemplate) {
	s.seeder = seeder
	s.seeds = seeds
}

// SetLogger sets the logger
func (s *Service) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Run applies every step in order. Failed steps are reported and do not
// stop later ones; a second run over an up to date schema skips everything.
func (s *Service) Run(ctx context.Context) *Report {
	report := &Report{Steps: make([]persistence.StepResult, 0, len(s.steps)+1)}
	for _, result := range s.schema.Apply(ctx, s.steps) {
		report.add(result)
		if result.Status == persistence.StepFailed {
			s.logger.Error("Schema step failed", zap.String("step", result.Name), zap.String("error", result.Error))
		}
	}

	if s.seeder != nil {
		report.add(s.seed(ctx))
	}

	s.logger.Info("Database setup finished",
		zap.Int("applied", report.Applied),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report
}

func (s *Service) seed(ctx context.Context) persistence.StepResult {
	result := persistence.StepResult{Name: "seed email templates", Kind: StepKindSeed}
	inserted, err := s.seeder.SeedTemplates(ctx, s.seeds)
	switch {
	case err != nil:
		result.Status = persistence.StepFailed
		result.Error = err.Error()
	case len(inserted) > 0:
		result.Status = persistence.StepApplied
		result.Name += ": " + strings.Join(inserted, ", ")
	default:
		result.Status = persistence.StepSkipped
	}
	return result
}
