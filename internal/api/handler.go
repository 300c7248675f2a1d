package api

import (
	"net/http"
	"time"

	"github.com/aidevchallenge/backend/internal/auth"
	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/service"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Handler struct {
	profiles    *service.ProfileService
	assignment  *service.AssignmentService
	teams       *service.TeamService
	projects    *service.ProjectService
	evaluations *service.EvaluationService
	leaderboard *service.LeaderboardService
	schedule    *service.ScheduleService

	healthChecker HealthChecker

	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewHandler(logger *zap.Logger, tokenTTL time.Duration) *Handler {
	return &Handler{
		logger:   logger,
		tokenTTL: tokenTTL,
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithProfileService(profiles *service.ProfileService) *Handler {
	h.profiles = profiles
	return h
}

func (h *Handler) WithAssignmentService(assignment *service.AssignmentService) *Handler {
	h.assignment = assignment
	return h
}

func (h *Handler) WithTeamService(teams *service.TeamService) *Handler {
	h.teams = teams
	return h
}

func (h *Handler) WithProjectService(projects *service.ProjectService) *Handler {
	h.projects = projects
	return h
}

func (h *Handler) WithEvaluationService(evaluations *service.EvaluationService) *Handler {
	h.evaluations = evaluations
	return h
}

func (h *Handler) WithLeaderboardService(leaderboard *service.LeaderboardService) *Handler {
	h.leaderboard = leaderboard
	return h
}

func (h *Handler) WithScheduleService(schedule *service.ScheduleService) *Handler {
	h.schedule = schedule
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.GET("/health", h.healthChecker.HealthCheck())
	e.POST("/auth/login", h.Login)

	anyRole := e.Group("", AuthMiddleware(model.RoleStudent, model.RoleTeacher, model.RoleAdmin, model.RoleManager))

	anyRole.GET("/teams", h.ListTeams)
	anyRole.GET("/teams/:id", h.GetTeam)
	anyRole.GET("/projects", h.ListProjects)
	anyRole.GET("/activities", h.ListActivities)
	anyRole.GET("/leaderboard", h.GetLeaderboard)
	anyRole.GET("/leaderboard/export", h.ExportLeaderboard)

	evaluators := e.Group("", AuthMiddleware(model.RoleTeacher, model.RoleAdmin, model.RoleManager))

	evaluators.POST("/evaluations", h.SubmitEvaluation)

	organizers := e.Group("", AuthMiddleware(model.RoleAdmin, model.RoleManager))

	organizers.POST("/projects", h.CreateProject)
	organizers.POST("/teams/assignProject", h.AssignProject)
	organizers.POST("/teams/assign", h.AssignStudent)
	organizers.POST("/activities", h.AddActivity)
}

// Login exchanges an authenticated email for a role-scoped token. For
// students it also runs the team assignment resolver; a resolver
// failure is logged but never blocks the login.
func (h *Handler) Login(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Email       string `json:"email" validate:"required,email"`
		DisplayName string `json:"display_name" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("logging in", zap.String("email", req.Email))

	profile, err := h.profiles.Login(e.Request().Context(), req.Email, req.DisplayName)
	if err != nil {
		l.Error("failed to log in", zap.String("email", req.Email), zap.Any("error", err))
		return h.transportError(e, err)
	}

	var assignment *model.AssignmentResult
	if profile.Role == model.RoleStudent {
		assignment, err = h.assignment.AssignStudent(e.Request().Context(), profile.ID)
		if err != nil {
			l.Error("team assignment failed on login",
				zap.String("profile_id", profile.ID),
				zap.Any("error", err))
		} else if assignment.Status == model.AssignmentStatusAssigned {
			profile.TeamID = assignment.TeamID
		}
	}

	token, tokenErr := auth.GenerateToken(profile.Role, profile.ID, h.tokenTTL)
	if tokenErr != nil {
		l.Error("failed to generate token", zap.String("profile_id", profile.ID), zap.Error(tokenErr))
		return h.transportError(e, service.NewError(service.ErrorCodeUnspecified, "failed to generate token"))
	}

	return e.JSON(http.StatusOK, struct {
		Token      string                  `json:"token"`
		Profile    *model.StudentProfile   `json:"profile"`
		Assignment *model.AssignmentResult `json:"assignment,omitempty"`
	}{Token: token, Profile: profile, Assignment: assignment})
}

// AssignStudent lets organizers re-trigger the resolver for a profile
// whose login-time assignment failed.
func (h *Handler) AssignStudent(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		ProfileID string `json:"profile_id" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("running team assignment", zap.String("profile_id", req.ProfileID))

	result, err := h.assignment.AssignStudent(e.Request().Context(), req.ProfileID)
	if err != nil {
		l.Error("failed to assign student", zap.String("profile_id", req.ProfileID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, result)
}

func (h *Handler) GetTeam(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	teamID := e.Param("id")

	l.Info("getting team", zap.String("team_id", teamID))

	team, err := h.teams.GetTeam(e.Request().Context(), teamID)
	if err != nil {
		l.Error("failed to get team", zap.String("team_id", teamID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, team)
}

func (h *Handler) ListTeams(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	teams, err := h.teams.ListTeams(e.Request().Context())
	if err != nil {
		l.Error("failed to list teams", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, teams)
}

func (h *Handler) AssignProject(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		TeamID    string `json:"team_id" validate:"required"`
		ProjectID string `json:"project_id" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("assigning project",
		zap.String("team_id", req.TeamID),
		zap.String("project_id", req.ProjectID))

	if err := h.teams.AssignProject(e.Request().Context(), req.TeamID, req.ProjectID); err != nil {
		l.Error("failed to assign project",
			zap.String("team_id", req.TeamID),
			zap.String("project_id", req.ProjectID),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateProject(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	project := &model.Project{}

	if err := h.decodeRequest(e, project); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating project", zap.String("project_name", project.Name))

	created, err := h.projects.CreateProject(e.Request().Context(), project)
	if err != nil {
		l.Error("failed to create project", zap.String("project_name", project.Name), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) ListProjects(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	projects, err := h.projects.ListProjects(e.Request().Context())
	if err != nil {
		l.Error("failed to list projects", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, projects)
}

// SubmitEvaluation records the caller's rubric scores for one
// team/project pairing. The evaluator identity always comes from the
// token, not the body.
func (h *Handler) SubmitEvaluation(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	record := &model.EvaluationRecord{}

	if err := h.decodeRequest(e, record); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	claims := ClaimsFromContext(e)
	if claims == nil {
		return e.NoContent(http.StatusUnauthorized)
	}
	record.EvaluatorID = claims.Subject

	l.Info("submitting evaluation",
		zap.String("team_id", record.TeamID),
		zap.String("project_id", record.ProjectID),
		zap.String("evaluator_id", record.EvaluatorID))

	saved, err := h.evaluations.SubmitEvaluation(e.Request().Context(), record)
	if err != nil {
		l.Error("failed to submit evaluation",
			zap.String("team_id", record.TeamID),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, saved)
}

func (h *Handler) GetLeaderboard(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	leaderboard, err := h.leaderboard.GetLeaderboard(e.Request().Context())
	if err != nil {
		l.Error("failed to compute leaderboard", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, leaderboard)
}

func (h *Handler) AddActivity(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	activity := &model.Activity{}

	if err := h.decodeRequest(e, activity); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("adding activity", zap.String("title", activity.Title))

	created, err := h.schedule.AddActivity(e.Request().Context(), activity)
	if err != nil {
		l.Error("failed to add activity", zap.String("title", activity.Title), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) ListActivities(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	activities, err := h.schedule.ListActivities(e.Request().Context())
	if err != nil {
		l.Error("failed to list activities", zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, activities)
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	switch err.Code {
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeAlreadyExists:
		return e.JSON(http.StatusConflict, response)
	case service.ErrorCodeInvalidBody:
		return e.JSON(http.StatusBadRequest, response)
	case service.ErrorCodeRetryable:
		return e.JSON(http.StatusServiceUnavailable, response)
	default:
		return e.JSON(http.StatusInternalServerError, response)
	}
}
