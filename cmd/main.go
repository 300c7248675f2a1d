package main

import (
	"context"
	"time"

	"github.com/aidevchallenge/backend/internal/api"
	"github.com/aidevchallenge/backend/internal/auth"
	"github.com/aidevchallenge/backend/internal/config"
	"github.com/aidevchallenge/backend/internal/db"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/aidevchallenge/backend/internal/service"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/hellofresh/health-go/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	logger, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("starting application")

	if err = godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded", zap.Error(err))
	}

	cfg := config.Load()
	auth.TokenSecretKey = cfg.TokenSecret

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err = pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	logger.Info("database connection established")

	transactor := db.NewPgxTransactor(pool)

	profileRepo := repository.NewPgxProfileRepository(pool)
	teamRepo := repository.NewPgxTeamRepository(pool)
	projectRepo := repository.NewPgxProjectRepository(pool)
	evaluationRepo := repository.NewPgxEvaluationRepository(pool)
	activityRepo := repository.NewPgxActivityRepository(pool)

	profiles := service.NewProfileService(transactor).WithProfileRepo(profileRepo)
	assignment := service.NewAssignmentService(transactor, cfg.MaxTeamMembers).
		WithProfileRepo(profileRepo).
		WithTeamRepo(teamRepo)
	teams := service.NewTeamService(transactor).WithTeamRepo(teamRepo).WithProjectRepo(projectRepo)
	projects := service.NewProjectService(transactor).WithProjectRepo(projectRepo)
	evaluations := service.NewEvaluationService(transactor).
		WithEvaluationRepo(evaluationRepo).
		WithTeamRepo(teamRepo).
		WithProjectRepo(projectRepo)
	leaderboard := service.NewLeaderboardService(transactor).
		WithEvaluationRepo(evaluationRepo).
		WithTeamRepo(teamRepo).
		WithProjectRepo(projectRepo)
	schedule := service.NewScheduleService(transactor).WithActivityRepo(activityRepo)

	healthChecker := api.MustNewHealthChecker(health.Config{
		Name:      "postgres",
		Timeout:   5 * time.Second,
		SkipOnErr: false,
		Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		},
	})

	e := echo.New()

	handler := api.NewHandler(logger, cfg.TokenTTL).
		WithHealthChecker(healthChecker).
		WithProfileService(profiles).
		WithAssignmentService(assignment).
		WithTeamService(teams).
		WithProjectService(projects).
		WithEvaluationService(evaluations).
		WithLeaderboardService(leaderboard).
		WithScheduleService(schedule)

	handler.RegisterRoutes(e)

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err = e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
