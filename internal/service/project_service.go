package service

import (
	"context"

	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type ProjectService struct {
	tx db.Transactor

	projects repository.ProjectRepository
}

func NewProjectService(tx db.Transactor) *ProjectService {
	return &ProjectService{tx: tx}
}

func (s *ProjectService) CreateProject(ctx context.Context, project *model.Project) (*model.Project, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating project", zap.String("project_name", project.Name))

	repoProject := &repository.Project{
		ID:          uuid.NewString(),
		Name:        project.Name,
		Description: project.Description,
	}

	err := s.projects.Create(ctx, repoProject)
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, NewError(ErrorCodeAlreadyExists, "project already exists")
	}
	if err != nil {
		l.Error("failed to create project", zap.String("project_name", project.Name), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create project")
	}

	project.ID = repoProject.ID
	project.CreatedAt = repoProject.CreatedAt

	return project, nil
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]*model.Project, *Error) {
	l := logger.FromContext(ctx)

	projectsRepo, err := s.projects.List(ctx)
	if err != nil {
		l.Error("failed to list projects", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list projects")
	}

	projects := make([]*model.Project, 0, len(projectsRepo))
	for _, repoProject := range projectsRepo {
		projects = append(projects, &model.Project{
			ID:          repoProject.ID,
			Name:        repoProject.Name,
			Description: repoProject.Description,
			CreatedAt:   repoProject.CreatedAt,
		})
	}

	return projects, nil
}

func (s *ProjectService) WithProjectRepo(r repository.ProjectRepository) *ProjectService {
	s.projects = r
	return s
}
