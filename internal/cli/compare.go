package cli

import (
	"fmt"

	"github.com/piwi3910/ductcalc/internal/engine"
	"github.com/piwi3910/ductcalc/internal/project"
	"github.com/spf13/cobra"
)

func newCompareCmd() *cobra.Command {
	var (
		presetName  string
		presetsPath string
		allPresets  bool
		dxfScale    float64
	)

	cmd := &cobra.Command{
		Use:   "compare <input>",
		Short: "Compare sizing policies on one network",
		Long: `Repair and size copies of a network under several sizing policies and
print their totals side by side. By default the project's policy is compared
with the other sizing mode, a lower and a higher friction rate and square
and flat ducts. --all-presets compares every known preset instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := stateFromContext(ctx).config

			p, err := loadInput(args[0], cfg, inputOptions{dxfScale: dxfScale}, logger)
			if err != nil {
				return err
			}

			var scenarios []engine.PolicyScenario
			if allPresets {
				store, err := project.LoadPresets(presetsPath)
				if err != nil {
					return err
				}
				for _, sp := range store.Presets {
					scenarios = append(scenarios, engine.PolicyScenario{Name: sp.Name, Policy: sp.Policy()})
				}
			} else {
				base, err := resolvePolicy(presetsPath, presetName, p)
				if err != nil {
					return err
				}
				scenarios = engine.BuildDefaultScenarios(base)
			}

			prog := newProgress(logger)
			results := engine.ComparePolicies(p, scenarios, engine.WithConfig(cfg), engine.WithLogger(logger))
			prog.done(fmt.Sprintf("Compared %d policies", len(results)))

			rows := make([][]string, 0, len(results))
			for _, r := range results {
				if r.Err != nil {
					rows = append(rows, []string{r.Scenario.Name, styleError.Render(r.Err.Error()), "", "", "", "", ""})
					continue
				}
				largest := r.LargestDuct
				if largest == "" {
					largest = "-"
				}
				rows = append(rows, []string{
					r.Scenario.Name,
					r.Scenario.Policy.String(),
					fmt.Sprintf("%.2f", r.TotalSurface),
					fmt.Sprintf("%.2f", r.TotalLength),
					largest,
					fmt.Sprintf("%.2f", r.MaxVelocity),
					fmt.Sprintf("%d", r.Unsized+r.Unreachable),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Scenario", "Policy", "Surface m²", "Length m", "Largest", "Max m/s", "Issues"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&presetName, "preset", "", "base the scenarios on a named preset")
	cmd.Flags().StringVar(&presetsPath, "presets", project.DefaultPresetsPath(), "presets file")
	cmd.Flags().BoolVar(&allPresets, "all-presets", false, "compare every sizing preset")
	cmd.Flags().Float64Var(&dxfScale, "scale", 1, "DXF drawing units to meters")
	return cmd
}
