package service

import (
	"math"
	"slices"

	"github.com/aidevchallenge/backend/internal/model"
)

// ComputeTeamResults aggregates evaluation records into per-team
// results: each record's total is the unweighted sum of its criterion
// scores, a team's mean is the average of its record totals. Teams with
// zero evaluations are never materialized. Pure function, safe to
// recompute on every read.
func ComputeTeamResults(evaluations []*model.EvaluationRecord, teamNames, projectNames map[string]string) []*model.TeamResult {
	byTeam := make(map[string]*model.TeamResult)
	order := make([]*model.TeamResult, 0)

	for _, record := range evaluations {
		result, ok := byTeam[record.TeamID]
		if !ok {
			result = &model.TeamResult{
				TeamID:      record.TeamID,
				TeamName:    teamNames[record.TeamID],
				ProjectName: projectNames[record.ProjectID],
			}
			byTeam[record.TeamID] = result
			order = append(order, result)
		}
		result.Records = append(result.Records, record)
		result.Totals = append(result.Totals, record.Total())
	}

	for _, result := range order {
		sum := 0
		for _, total := range result.Totals {
			sum += total
		}
		result.Mean = float64(sum) / float64(len(result.Totals))
	}

	// Stable sort keeps the grouping order for exact ties, so the same
	// snapshot always yields the same sequence.
	slices.SortStableFunc(order, func(a, b *model.TeamResult) int {
		switch {
		case a.Mean > b.Mean:
			return -1
		case a.Mean < b.Mean:
			return 1
		default:
			return 0
		}
	})

	return order
}

// tieKey rounds a mean to two decimal places as an integer, avoiding
// float comparison artifacts when grouping.
func tieKey(mean float64) int {
	return int(math.Round(mean * 100))
}

// DetectTies groups teams whose means collide after rounding to two
// decimal places and reports every group with more than one team, in
// leaderboard order.
func DetectTies(results []*model.TeamResult) []*model.TieGroup {
	byKey := make(map[int]*model.TieGroup)
	order := make([]*model.TieGroup, 0)

	for _, result := range results {
		key := tieKey(result.Mean)
		group, ok := byKey[key]
		if !ok {
			group = &model.TieGroup{Mean: float64(key) / 100}
			byKey[key] = group
			order = append(order, group)
		}
		group.Teams = append(group.Teams, result.TeamID)
	}

	ties := make([]*model.TieGroup, 0)
	for _, group := range order {
		if len(group.Teams) > 1 {
			ties = append(ties, group)
		}
	}

	return ties
}

// TopThree is the first three entries of the descending sort. It is
// computed independently of tie detection: a wide tie at the third
// place still shows only three entries here while the full tie group
// appears in the tie list. Longstanding display behavior, kept as-is.
func TopThree(results []*model.TeamResult) []*model.TeamResult {
	if len(results) > 3 {
		return results[:3]
	}
	return results
}
