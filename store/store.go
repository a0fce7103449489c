// Package store records planning runs in a SQL database through gorm.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	customerrors "workforce-planner/errors"
	"workforce-planner/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Repository persists runs.
type Repository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to a sqlite or postgres database and migrates the schema.
func Open(driver, dsn string, logger *zap.Logger) (*Repository, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return NewRepository(db, logger)
}

// NewRepository wraps an open connection and migrates the schema.
func NewRepository(db *gorm.DB, logger *zap.Logger) (*Repository, error) {
	if err := db.AutoMigrate(&Run{}, &RunRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{db: db, logger: logger}, nil
}

// Outcome names the result of a run from the error it ended with.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "optimal"
	case errors.Is(err, customerrors.ErrInvalidScenario):
		return "invalid"
	case errors.Is(err, customerrors.ErrInfeasible):
		return "infeasible"
	case errors.Is(err, customerrors.ErrUnbounded):
		return "unbounded"
	default:
		return "error"
	}
}

// ScenarioHash fingerprints scenario parameters so runs of the same scenario can be grouped.
func ScenarioHash(p models.ScenarioParameters) string {
	b, _ := json.Marshal(p)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// SaveRun records a run. plan is nil when runErr is set.
func (r *Repository) SaveRun(ctx context.Context, p models.ScenarioParameters, plan *models.Plan, runErr error) (*Run, error) {
	run := &Run{
		ID:           uuid.New(),
		ScenarioHash: ScenarioHash(p),
		Status:       Outcome(runErr),
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if plan != nil {
		run.ID = plan.RunID
		run.Objective = plan.Objective
		run.TotalHires = plan.Summary.TotalHires
		run.TotalUnderemployed = plan.Summary.TotalUnderemployed
		run.Nodes = plan.Nodes
		run.SolveTimeMillis = plan.SolveTime.Milliseconds()
		for _, dep := range plan.Departments {
			for _, m := range dep.Months {
				run.Rows = append(run.Rows, RunRow{
					RunID:          run.ID,
					Department:     dep.Department,
					Month:          m.Month,
					Hires:          m.Hires,
					Underemployed:  m.Underemployed,
					AvailableHours: m.AvailableHours,
					RequiredHours:  m.RequiredHours,
				})
			}
		}
	}

	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	r.logger.Debug("run recorded", zap.String("run_id", run.ID.String()), zap.String("status", run.Status))
	return run, nil
}

// GetRun loads a run with its rows ordered by department and month.
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var run Run
	result := r.db.WithContext(ctx).
		Preload("Rows", func(db *gorm.DB) *gorm.DB {
			return db.Order("department, month")
		}).
		First(&run, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrRunNotFound
		}
		return nil, result.Error
	}
	return &run, nil
}

// ListRuns returns the most recent runs without their rows.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	q := r.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Close releases the underlying connection pool.
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
