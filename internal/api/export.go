package api

import (
	"encoding/csv"
	"io"
	"net/http"
	"strconv"

	"github.com/aidevchallenge/backend/internal/model"
	"github.com/aidevchallenge/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ExportLeaderboard streams the current standings as CSV, one row per
// ranked team.
func (h *Handler) ExportLeaderboard(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	leaderboard, err := h.leaderboard.GetLeaderboard(e.Request().Context())
	if err != nil {
		l.Error("failed to compute leaderboard", zap.Any("error", err))
		return h.transportError(e, err)
	}

	e.Response().Header().Set(echo.HeaderContentType, "text/csv")
	e.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="leaderboard.csv"`)
	e.Response().WriteHeader(http.StatusOK)

	return writeLeaderboardCSV(e.Response(), leaderboard.Results)
}

func writeLeaderboardCSV(w io.Writer, results []*model.TeamResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"rank", "team", "project", "evaluations", "mean_score"}); err != nil {
		return err
	}

	for i, result := range results {
		row := []string{
			strconv.Itoa(i + 1),
			result.TeamName,
			result.ProjectName,
			strconv.Itoa(len(result.Records)),
			strconv.FormatFloat(result.Mean, 'f', 2, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
