// Package repositories provides PostgreSQL data access for the engine.
package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/duahurufo/exeloka-engine/pkg/apperrors"
	"github.com/duahurufo/exeloka-engine/pkg/database"
	"github.com/duahurufo/exeloka-engine/pkg/models"
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Project, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// projectRepository implements ProjectRepository using PostgreSQL.
type projectRepository struct {
	db *database.DB
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db *database.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `id, owner_id, title, COALESCE(company_name, ''), description,
	COALESCE(project_type, ''), location_details, stakeholders, objectives,
	priority_areas, success_metrics, risk_factors, risk_level,
	COALESCE(budget_range, ''), timeline_start, timeline_end, status,
	created_at, updated_at`

// Create inserts a new project.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = models.ProjectStatusPlanning
	}
	if project.RiskLevel == "" {
		project.RiskLevel = models.RiskLevelMedium
	}

	query := `
		INSERT INTO engine_projects (id, owner_id, title, company_name, description,
			project_type, location_details, stakeholders, objectives, priority_areas,
			success_metrics, risk_factors, risk_level, budget_range,
			timeline_start, timeline_end, status, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), $7, $8, $9, $10,
			$11, $12, $13, NULLIF($14, ''), $15, $16, $17, $18, $19)`

	_, err := r.db.Exec(ctx, query,
		project.ID,
		project.OwnerID,
		project.Title,
		project.CompanyName,
		project.Description,
		project.ProjectType,
		project.LocationDetails,
		project.Stakeholders,
		project.Objectives,
		project.PriorityAreas,
		project.SuccessMetrics,
		project.RiskFactors,
		project.RiskLevel,
		project.BudgetRange,
		project.TimelineStart,
		project.TimelineEnd,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByIDForOwner retrieves a project by ID and verifies ownership. A missing
// row maps to ErrNotFound, a foreign-owned row to ErrPermissionDenied.
func (r *projectRepository) GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM engine_projects WHERE id = $1`, projectColumns)

	project, err := scanProject(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if project.OwnerID != ownerID {
		return nil, apperrors.ErrPermissionDenied
	}

	return project, nil
}

// UpdateStatus sets the project status.
func (r *projectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE engine_projects SET status = $1, updated_at = now() WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.OwnerID,
		&project.Title,
		&project.CompanyName,
		&project.Description,
		&project.ProjectType,
		&project.LocationDetails,
		&project.Stakeholders,
		&project.Objectives,
		&project.PriorityAreas,
		&project.SuccessMetrics,
		&project.RiskFactors,
		&project.RiskLevel,
		&project.BudgetRange,
		&project.TimelineStart,
		&project.TimelineEnd,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}
