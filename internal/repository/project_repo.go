package repository

import (
	"context"

	"bouw-backoffice/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	FindAll(ctx context.Context, activeOnly bool) ([]model.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Create(ctx context.Context, project *model.Project) error
}

type projectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db}
}

func (r *projectRepo) FindAll(ctx context.Context, activeOnly bool) ([]model.Project, error) {
	var projects []model.Project
	db := conn(ctx, r.db)
	if activeOnly {
		db = db.Where("active = ?", true)
	}
	err := db.Order("number ASC").Find(&projects).Error
	return projects, err
}

func (r *projectRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := conn(ctx, r.db).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) Create(ctx context.Context, project *model.Project) error {
	return conn(ctx, r.db).Create(project).Error
}

// ProjectWorkCodeRepository stores the per-project work-code restriction.
type ProjectWorkCodeRepository interface {
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]model.ProjectWorkCode, error)
	// ReplaceForProject deletes the project's rows and inserts rows in their place.
	ReplaceForProject(ctx context.Context, projectID uuid.UUID, rows []model.ProjectWorkCode) error
}

type projectWorkCodeRepo struct {
	db *gorm.DB
}

func NewProjectWorkCodeRepo(db *gorm.DB) ProjectWorkCodeRepository {
	return &projectWorkCodeRepo{db}
}

func (r *projectWorkCodeRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]model.ProjectWorkCode, error) {
	var rows []model.ProjectWorkCode
	err := conn(ctx, r.db).Where("project_id = ?", projectID).Order("created_at ASC").Find(&rows).Error
	return rows, err
}

func (r *projectWorkCodeRepo) ReplaceForProject(ctx context.Context, projectID uuid.UUID, rows []model.ProjectWorkCode) error {
	db := conn(ctx, r.db)
	if err := db.Where("project_id = ?", projectID).Delete(&model.ProjectWorkCode{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].ProjectID = projectID
	}
	return db.Create(&rows).Error
}
