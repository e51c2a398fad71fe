package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"glidercal/adapters/csvdata"
	gopt "glidercal/adapters/optimize"
	"glidercal/adapters/sqlite"
	"glidercal/app"
	"glidercal/domain/calibration"
	"glidercal/domain/profile"
	"glidercal/internal/config"
	"glidercal/internal/log"
	"glidercal/ports"
)

func main() {
	// Optional .env for local setups; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := log.Init(cfg.Debug); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	rootCmd := &cobra.Command{
		Use:   "glidercal",
		Short: "Profile segmentation and lag-correction calibration for glider CTD data",
	}
	rootCmd.AddCommand(
		newSegmentCmd(cfg),
		newCalibrateCmd(cfg),
		newRunsCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func segmentOptions(cfg *config.Config) profile.SegmentOptions {
	opts := profile.DefaultSegmentOptions()
	if cfg.MinDepthRange > 0 {
		opts.MinDepthRange = cfg.MinDepthRange
	}
	if cfg.MaxGapRatio > 0 {
		opts.MaxGapRatio = cfg.MaxGapRatio
	}
	return opts
}

func newSegmentCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segment [deployment.csv]",
		Short: "Split a deployment depth series into dive/climb profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := csvdata.ReadDeploymentFile(args[0])
			if err != nil {
				return err
			}
			inflections := profile.FindInflections(bundle.Depth)
			res, err := profile.Segment(bundle.Depth, inflections, segmentOptions(cfg))
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"profile_index":     res.Labels,
				"profiles_found":    res.Found,
				"profiles_rejected": res.Rejected,
			})
		},
	}
	return cmd
}

func newCalibrateCmd(cfg *config.Config) *cobra.Command {
	var (
		mode       string
		deployment string
		store      bool
	)

	cmd := &cobra.Command{
		Use:   "calibrate [deployment.csv]",
		Short: "Estimate best-guess lag-correction parameters for a deployment",
		Long: `Segment the deployment into profiles, pair adjacent opposite-direction
profiles, fit the lag model per pair and aggregate the estimates into a
single best-guess parameter vector (coordinate-wise median).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := csvdata.ReadDeploymentFile(args[0])
			if err != nil {
				return err
			}

			var repo ports.CalibrationRepository
			if store {
				if cfg.DatabasePath == "" {
					return fmt.Errorf("--store requires GLIDERCAL_DB_PATH")
				}
				db, err := sqlite.Open(cfg.DatabasePath)
				if err != nil {
					return err
				}
				defer db.Close()
				repo = sqlite.NewCalibrationRepository(db)
			}

			svc := app.NewCalibrationService(
				gopt.NewNelderMeadMinimizer(),
				repo,
				log.GetSugaredLogger(),
			)
			name := deployment
			if name == "" {
				name = args[0]
			}
			res, err := svc.Run(context.Background(), app.CalibrationRequest{
				Deployment: name,
				Bundle:     bundle,
				Segment:    segmentOptions(cfg),
				Mode:       calibration.Mode(mode),
				Workers:    cfg.Workers,
				Persist:    store,
			})
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(calibration.ModeThermalLag), "lag model to fit: thermal or sensor")
	cmd.Flags().StringVar(&deployment, "deployment", "", "deployment name recorded with the run (defaults to the file path)")
	cmd.Flags().BoolVar(&store, "store", false, "persist the run to the SQLite calibration store")
	return cmd
}

func newRunsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List stored calibration runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DatabasePath == "" {
				return fmt.Errorf("runs requires GLIDERCAL_DB_PATH")
			}
			db, err := sqlite.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			defer db.Close()
			summaries, err := sqlite.NewCalibrationRepository(db).ListRuns(context.Background())
			if err != nil {
				return err
			}
			return printJSON(summaries)
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
