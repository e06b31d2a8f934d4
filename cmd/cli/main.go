package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopower/adapters/excel"
	"gopower/adapters/simulate"
	"gopower/app"
	"gopower/domain/power"
	"gopower/internal/config"
	"gopower/internal/testkit"
	"gopower/ports"
	"gopower/ui"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "power-cli",
		Short: "Monte Carlo power analysis for A/B tests on click-through rates",
	}

	rootCmd.AddCommand(
		newSweepCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSweepCmd() *cobra.Command {
	var (
		pControl   float64
		pTreatment float64
		alpha      float64
		targetPow  float64
		reps       int
		seed       int64
		sizesSpec  string
		workers    int
		xlsxPath   string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Estimate power across a sample size grid",
		Long: `Estimate statistical power for a two-proportion z-test at each sample
size in the grid, by Monte Carlo simulation.

Example: power-cli sweep --p-control 0.05 --p-treatment 0.06 --seed 12345 --xlsx power.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sizes, err := parseSizesSpec(sizesSpec)
			if err != nil {
				return err
			}
			cfg := power.ExperimentConfig{
				Alpha:       alpha,
				TargetPower: targetPow,
				Repetitions: reps,
				SampleSizes: sizes,
			}
			rates := power.GroupRates{Control: pControl, Treatment: pTreatment}
			return runSweep(cmd.Context(), cfg, rates, seed, workers, xlsxPath, asJSON)
		},
	}

	cmd.Flags().Float64Var(&pControl, "p-control", 0.05, "Assumed true CTR for the control group")
	cmd.Flags().Float64Var(&pTreatment, "p-treatment", 0.06, "Assumed true CTR for the treatment group")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance level")
	cmd.Flags().Float64Var(&targetPow, "target-power", 0.8, "Desired power reference line")
	cmd.Flags().IntVar(&reps, "reps", 10000, "Monte Carlo repetitions per sample size")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic sweeps")
	cmd.Flags().StringVar(&sizesSpec, "sizes", "500:15000:1000", "Sample size grid as start:stop:step (stop exclusive)")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent sample sizes")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Optional .xlsx chart output path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full sweep result as JSON")

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive power analysis web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "No .env file found, using system environment variables")
			}
			appConfig, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			sweeps := app.NewSweepService(simulate.NewZTestEstimator(), testkit.NewRNGAdapter(), appConfig.Simulation.Workers)
			server, err := ui.NewServer(sweeps, appConfig.Simulation, appConfig.Server.GinMode)
			if err != nil {
				return err
			}
			fmt.Printf("Starting power analysis UI on port %s\n", appConfig.Server.Port)
			return server.Start(":" + appConfig.Server.Port)
		},
	}
	return cmd
}

func runSweep(ctx context.Context, cfg power.ExperimentConfig, rates power.GroupRates, seed int64, workers int, xlsxPath string, asJSON bool) error {
	sweeps := app.NewSweepService(simulate.NewZTestEstimator(), testkit.NewRNGAdapter(), workers)

	result, err := sweeps.RunSweep(ctx, app.SweepRequest{
		Config: cfg,
		Rates:  rates,
		Seed:   seed,
	})
	if err != nil {
		return err
	}

	if asJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		printCurve(result)
	}

	if xlsxPath != "" {
		var renderer ports.CurveRendererPort = excel.NewChartWriter(xlsxPath)
		if err := renderer.Render(ctx, result.Curve, cfg, rates); err != nil {
			return fmt.Errorf("chart export failed: %w", err)
		}
		fmt.Printf("Chart written to %s\n", xlsxPath)
	}
	return nil
}

func printCurve(result *app.SweepResult) {
	fmt.Printf("Sweep %s (seed %d, %d reps, alpha %g)\n",
		result.SweepID, result.Seed, result.Config.Repetitions, result.Config.Alpha)
	for _, point := range result.Curve {
		if point.OK() {
			fmt.Printf("Sample size: %d, Power: %.4f", point.SampleSize, point.Estimate.Power)
			if point.Estimate.Degenerate > 0 {
				fmt.Printf(" (%d degenerate reps)", point.Estimate.Degenerate)
			}
			fmt.Println()
		} else {
			fmt.Printf("Error calculating power for sample size %d: %s\n", point.SampleSize, point.Err)
		}
	}
	if n, ok := result.Curve.MinDetectableSize(result.Config.TargetPower); ok {
		fmt.Printf("Smallest size reaching target power %.2f: %d\n", result.Config.TargetPower, n)
	} else {
		fmt.Printf("Target power %.2f not reached on this grid\n", result.Config.TargetPower)
	}
	fmt.Printf("Completed in %d ms (%d ok, %d failed)\n", result.RuntimeMs, result.Succeeded, result.Failed)
}

// parseSizesSpec parses "start:stop:step" into the ascending grid, or a
// comma-separated explicit list like "500,1500,2500".
func parseSizesSpec(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if strings.Contains(spec, ",") {
		parts := strings.Split(spec, ",")
		sizes := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("invalid size %q: %w", p, err)
			}
			sizes = append(sizes, n)
		}
		return sizes, nil
	}

	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("sizes must be start:stop:step or a comma list, got %q", spec)
	}
	vals := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid sizes component %q: %w", p, err)
		}
		vals[i] = n
	}
	return power.SizeGrid(vals[0], vals[1], vals[2])
}
