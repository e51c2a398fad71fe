package ports

import (
	"context"

	"glidercal/domain/calibration"
	"glidercal/domain/core"
)

// CalibrationRepository persists calibration runs and their per-pair
// estimates for later distributional diagnostics.
type CalibrationRepository interface {
	SaveRun(ctx context.Context, run *calibration.Run) error
	GetRun(ctx context.Context, id core.RunID) (*calibration.Run, error)
	ListRuns(ctx context.Context) ([]calibration.RunSummary, error)
}
