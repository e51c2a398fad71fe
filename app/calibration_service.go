// Package app wires the segmentation, pair selection, estimation and
// aggregation stages into a deployment-level calibration run.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"glidercal/domain/calibration"
	"glidercal/domain/core"
	"glidercal/domain/profile"
	"glidercal/domain/series"
	"glidercal/domain/thermal"
	"glidercal/ports"
)

// CalibrationRequest describes one deployment calibration.
type CalibrationRequest struct {
	Deployment string
	Bundle     series.Bundle
	// Inflections are precomputed turnaround sample indices. When nil they
	// are detected from the depth series.
	Inflections []int
	Segment     profile.SegmentOptions
	Mode        calibration.Mode
	Estimator   thermal.EstimatorOptions
	// Workers bounds the parallel per-pair fits; zero means GOMAXPROCS.
	Workers int
	// Persist stores the run through the configured repository.
	Persist bool
}

// CalibrationResult is the complete output of a run.
type CalibrationResult struct {
	RunID       core.RunID                `json:"run_id"`
	Labels      []int                     `json:"profile_index"`
	Diagnostics calibration.Diagnostics   `json:"diagnostics"`
	Outcomes    []calibration.PairOutcome `json:"pair_outcomes"`
	BestGuess   []float64                 `json:"best_guess_correction_params"`
	RuntimeMs   int64                     `json:"runtime_ms"`
}

// MarshalJSON renders the NaN sentinel components of the best guess as
// null, which plain encoding/json refuses to emit.
func (r *CalibrationResult) MarshalJSON() ([]byte, error) {
	type alias CalibrationResult
	best := make([]*float64, len(r.BestGuess))
	for i := range r.BestGuess {
		if !math.IsNaN(r.BestGuess[i]) {
			best[i] = &r.BestGuess[i]
		}
	}
	return json.Marshal(&struct {
		*alias
		BestGuess []*float64 `json:"best_guess_correction_params"`
	}{alias: (*alias)(r), BestGuess: best})
}

// CalibrationService runs lag calibrations over in-memory deployments.
type CalibrationService struct {
	minimizer ports.MinimizerPort
	repo      ports.CalibrationRepository // optional
	log       *zap.SugaredLogger
}

// NewCalibrationService creates the service. repo may be nil when persistence
// is not wanted.
func NewCalibrationService(minimizer ports.MinimizerPort, repo ports.CalibrationRepository, log *zap.SugaredLogger) *CalibrationService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CalibrationService{minimizer: minimizer, repo: repo, log: log}
}

// Run executes clean -> segment -> pair -> estimate -> aggregate. Only
// malformed input errors abort; every data-quality condition is recorded in
// the result's diagnostics and outcome reasons. With zero usable pairs the
// best guess is the NaN sentinel vector, not an error.
func (s *CalibrationService) Run(ctx context.Context, req CalibrationRequest) (*CalibrationResult, error) {
	start := time.Now()

	if req.Mode == "" {
		req.Mode = calibration.ModeThermalLag
	}
	if req.Segment == (profile.SegmentOptions{}) {
		req.Segment = profile.DefaultSegmentOptions()
	}

	if err := req.Bundle.Validate(); err != nil {
		return nil, fmt.Errorf("calibration input: %w", err)
	}
	required := requiredVars(req.Mode)
	if err := req.Bundle.Require(required...); err != nil {
		return nil, fmt.Errorf("calibration input: %w", err)
	}

	inflections := req.Inflections
	if inflections == nil {
		inflections = profile.FindInflections(req.Bundle.Depth)
		s.log.Debugw("detected inflection points", "deployment", req.Deployment, "count", len(inflections))
	}

	seg, err := profile.Segment(req.Bundle.Depth, inflections, req.Segment)
	if err != nil {
		return nil, fmt.Errorf("segmenting deployment: %w", err)
	}
	s.log.Infow("segmented deployment",
		"deployment", req.Deployment,
		"profiles_found", seg.Found,
		"profiles_rejected", seg.Rejected)

	candidates, pairStats := profile.SelectPairs(req.Bundle, seg.Labels, required...)

	outcomes := make([]calibration.PairOutcome, len(candidates))
	estimator := thermal.NewEstimator(s.minimizer, req.Estimator)

	workers := req.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cand := range candidates {
		i, cand := i, cand
		if cand.Pair == nil {
			outcomes[i] = calibration.PairOutcome{
				PairIndex: cand.Label,
				Reason:    dismissalReason(cand.Reason),
			}
			continue
		}
		g.Go(func() error {
			outcomes[i] = s.estimatePair(gctx, estimator, req.Mode, cand)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	diag := calibration.Diagnostics{
		ProfilesFound:             seg.Found,
		ProfilesRejected:          seg.Rejected,
		PairsConsidered:           pairStats.Considered,
		DismissedSameDirection:    pairStats.SameDirection,
		DismissedInsufficientData: pairStats.InsufficientData,
	}
	for _, o := range outcomes {
		switch o.Reason {
		case calibration.ReasonAccepted:
			diag.PairsAccepted++
		case calibration.ReasonInsufficientDepth, calibration.ReasonNoConvergence:
			diag.DismissedEstimation++
		}
	}

	best := calibration.Aggregate(outcomes, req.Mode.ParamDim())
	if math.IsNaN(best[0]) {
		s.log.Warnw("could not find any suitable correction params",
			"deployment", req.Deployment, "mode", req.Mode)
	} else {
		s.log.Infow("estimated best-guess correction params",
			"deployment", req.Deployment,
			"mode", req.Mode,
			"pairs_accepted", diag.PairsAccepted,
			"params", best)
	}

	result := &CalibrationResult{
		RunID:       core.RunID(core.NewID()),
		Labels:      seg.Labels,
		Diagnostics: diag,
		Outcomes:    outcomes,
		BestGuess:   best,
		RuntimeMs:   time.Since(start).Milliseconds(),
	}

	if req.Persist && s.repo != nil {
		run := &calibration.Run{
			ID:          result.RunID,
			Deployment:  req.Deployment,
			Mode:        req.Mode,
			CreatedAt:   time.Now().UTC(),
			Diagnostics: diag,
			BestGuess:   best,
			Outcomes:    outcomes,
		}
		if err := s.repo.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("persisting calibration run: %w", err)
		}
	}
	return result, nil
}

func (s *CalibrationService) estimatePair(ctx context.Context, est *thermal.Estimator, mode calibration.Mode, cand profile.Candidate) calibration.PairOutcome {
	var (
		res thermal.Estimate
		err error
	)
	switch mode {
	case calibration.ModeSensorLag:
		res, err = est.EstimateSensorLag(ctx, cand.Pair.First, cand.Pair.Second)
	default:
		res, err = est.EstimateThermalLag(ctx, cand.Pair.First, cand.Pair.Second)
	}
	if err != nil {
		reason := calibration.ReasonNoConvergence
		switch {
		case errors.Is(err, core.ErrInsufficientDepthLevels),
			errors.Is(err, core.ErrNoDepthOverlap),
			errors.Is(err, core.ErrInsufficientData):
			reason = calibration.ReasonInsufficientDepth
		case errors.Is(err, core.ErrNoConvergence):
			// expected per-pair outcome, nothing to warn about
		default:
			s.log.Warnw("pair estimation failed", "pair", cand.Label, "error", err)
		}
		s.log.Debugw("dismissed pair", "pair", cand.Label, "reason", reason, "error", err)
		return calibration.PairOutcome{PairIndex: cand.Label, Reason: reason}
	}
	return calibration.PairOutcome{
		PairIndex: cand.Label,
		Params:    res.Params,
		Cost:      res.Cost,
		Reason:    calibration.ReasonAccepted,
	}
}

func dismissalReason(r profile.DismissReason) calibration.Reason {
	if r == profile.DismissSameDirection {
		return calibration.ReasonSameDirection
	}
	return calibration.ReasonInsufficientData
}

func requiredVars(mode calibration.Mode) []series.Var {
	if mode == calibration.ModeSensorLag {
		return []series.Var{series.VarTemperature}
	}
	return []series.Var{series.VarTemperature, series.VarConductivity}
}
