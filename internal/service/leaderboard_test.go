package service

import (
	"testing"

	"github.com/aidevchallenge/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(teamID string, scores ...int) *model.EvaluationRecord {
	criterionScores := make([]*model.CriterionScore, 0, len(scores))
	for i, score := range scores {
		criterionScores = append(criterionScores, &model.CriterionScore{
			CriterionID: "c" + string(rune('1'+i)),
			Score:       score,
		})
	}
	return &model.EvaluationRecord{TeamID: teamID, ProjectID: "p1", Scores: criterionScores}
}

func TestComputeTeamResults(t *testing.T) {
	teamNames := map[string]string{"A": "Alpha", "B": "Beta", "C": "Gamma"}
	projectNames := map[string]string{"p1": "Chatbot"}

	tests := []struct {
		name          string
		evaluations   []*model.EvaluationRecord
		expectedOrder []string
		expectedMeans []float64
	}{
		{
			name: "mean is the average of unweighted record totals",
			evaluations: []*model.EvaluationRecord{
				record("A", 3, 4, 5),
				record("A", 2, 2, 2),
			},
			expectedOrder: []string{"A"},
			expectedMeans: []float64{9.0},
		},
		{
			name: "teams sort descending by mean",
			evaluations: []*model.EvaluationRecord{
				record("B", 5, 5),
				record("A", 9, 9),
				record("C", 1, 1),
			},
			expectedOrder: []string{"A", "B", "C"},
			expectedMeans: []float64{18, 10, 2},
		},
		{
			name:          "no evaluations yields no results",
			evaluations:   nil,
			expectedOrder: []string{},
			expectedMeans: []float64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := ComputeTeamResults(tt.evaluations, teamNames, projectNames)

			require.Len(t, results, len(tt.expectedOrder))
			for i, result := range results {
				assert.Equal(t, tt.expectedOrder[i], result.TeamID)
				assert.Equal(t, teamNames[tt.expectedOrder[i]], result.TeamName)
				assert.Equal(t, "Chatbot", result.ProjectName)
				assert.InDelta(t, tt.expectedMeans[i], result.Mean, 1e-9)
			}
		})
	}
}

func TestComputeTeamResults_ExcludesUnevaluatedTeams(t *testing.T) {
	// team B exists but has no evaluations; it must never materialize
	teamNames := map[string]string{"A": "Alpha", "B": "Beta"}

	results := ComputeTeamResults([]*model.EvaluationRecord{record("A", 4)}, teamNames, nil)

	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].TeamID)
}

func TestComputeTeamResults_Deterministic(t *testing.T) {
	evaluations := []*model.EvaluationRecord{
		record("A", 5, 5),
		record("B", 5, 5),
		record("C", 3),
		record("B", 5, 5),
		record("A", 5, 5),
	}

	first := ComputeTeamResults(evaluations, nil, nil)
	second := ComputeTeamResults(evaluations, nil, nil)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].TeamID, second[i].TeamID)
		assert.Equal(t, first[i].Mean, second[i].Mean)
	}
}

func TestDetectTies(t *testing.T) {
	tests := []struct {
		name          string
		means         map[string][]int
		expectedTies  int
		expectedTeams []string
	}{
		{
			name: "two teams tied, third apart",
			means: map[string][]int{
				"A": {8, 9},  // 8.50 mean over two records of one score
				"B": {9, 8},  // 8.50
				"C": {7, 7},  // 7.00
			},
			expectedTies:  1,
			expectedTeams: []string{"A", "B"},
		},
		{
			name: "no ties",
			means: map[string][]int{
				"A": {9},
				"B": {5},
			},
			expectedTies: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluations := make([]*model.EvaluationRecord, 0)
			for _, teamID := range []string{"A", "B", "C"} {
				for _, score := range tt.means[teamID] {
					evaluations = append(evaluations, record(teamID, score))
				}
			}

			results := ComputeTeamResults(evaluations, nil, nil)
			ties := DetectTies(results)

			require.Len(t, ties, tt.expectedTies)
			if tt.expectedTies > 0 {
				assert.ElementsMatch(t, tt.expectedTeams, ties[0].Teams)
			}
		})
	}
}

func TestDetectTies_RoundingCollision(t *testing.T) {
	// 25/3 = 8.333... and 8.33 both round to the 833 key
	evaluations := []*model.EvaluationRecord{
		record("A", 8), record("A", 8), record("A", 9),
		record("B", 8), record("B", 9), record("B", 8),
	}

	results := ComputeTeamResults(evaluations, nil, nil)
	ties := DetectTies(results)

	require.Len(t, ties, 1)
	assert.InDelta(t, 8.33, ties[0].Mean, 1e-9)
	assert.ElementsMatch(t, []string{"A", "B"}, ties[0].Teams)
}

func TestTopThree(t *testing.T) {
	evaluations := []*model.EvaluationRecord{
		record("A", 9),
		record("B", 8),
		record("C", 7),
		record("D", 7),
	}

	results := ComputeTeamResults(evaluations, nil, nil)
	top := TopThree(results)

	// C and D tie for third place but only three entries surface here;
	// the full tie group still shows up in the tie list
	require.Len(t, top, 3)
	ties := DetectTies(results)
	require.Len(t, ties, 1)
	assert.ElementsMatch(t, []string{"C", "D"}, ties[0].Teams)

	short := TopThree(results[:2])
	assert.Len(t, short, 2)
}
