package service

import (
	"context"
	"testing"

	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestEvaluationService_SubmitEvaluation(t *testing.T) {
	validRecord := func() *model.EvaluationRecord {
		return &model.EvaluationRecord{
			TeamID:      "t1",
			ProjectID:   "p1",
			RubricID:    "r1",
			EvaluatorID: "judge1",
			Comments:    "solid demo",
			Scores: []*model.CriterionScore{
				{CriterionID: "c1", Score: 4},
				{CriterionID: "c2", Score: 5},
			},
		}
	}

	tests := []struct {
		name          string
		setupMocks    func(*MockEvaluationRepository, *MockTeamRepository, *MockProjectRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name: "success",
			setupMocks: func(er *MockEvaluationRepository, tr *MockTeamRepository, pr *MockProjectRepository) {
				tr.On("Get", mock.Anything, "t1").Return(&repository.Team{ID: "t1"}, nil)
				pr.On("Get", mock.Anything, "p1").Return(&repository.Project{ID: "p1"}, nil)
				er.On("Upsert", mock.Anything, mock.MatchedBy(func(evaluation *repository.Evaluation) bool {
					return evaluation.TeamID == "t1" &&
						evaluation.ProjectID == "p1" &&
						evaluation.EvaluatorID == "judge1" &&
						evaluation.ID != ""
				})).Return(nil)
				er.On("ReplaceScores", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(scores []*repository.EvaluationScore) bool {
					return len(scores) == 2 && scores[0].Score == 4 && scores[1].Score == 5
				})).Return(nil)
			},
		},
		{
			name: "team not found",
			setupMocks: func(er *MockEvaluationRepository, tr *MockTeamRepository, pr *MockProjectRepository) {
				tr.On("Get", mock.Anything, "t1").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name: "project not found",
			setupMocks: func(er *MockEvaluationRepository, tr *MockTeamRepository, pr *MockProjectRepository) {
				tr.On("Get", mock.Anything, "t1").Return(&repository.Team{ID: "t1"}, nil)
				pr.On("Get", mock.Anything, "p1").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockEvalRepo := new(MockEvaluationRepository)
			mockTeamRepo := new(MockTeamRepository)
			mockProjectRepo := new(MockProjectRepository)

			tt.setupMocks(mockEvalRepo, mockTeamRepo, mockProjectRepo)

			service := NewEvaluationService(mockTx).
				WithEvaluationRepo(mockEvalRepo).
				WithTeamRepo(mockTeamRepo).
				WithProjectRepo(mockProjectRepo)

			got, err := service.SubmitEvaluation(context.Background(), validRecord())

			if tt.expectedError {
				assert.NotNil(t, err)
				assert.Equal(t, tt.errorCode, err.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, err)
				assert.NotNil(t, got)
				assert.NotEmpty(t, got.ID)
			}

			mockEvalRepo.AssertExpectations(t)
			mockTeamRepo.AssertExpectations(t)
			mockProjectRepo.AssertExpectations(t)
		})
	}
}
