package cli

import (
	"fmt"
	"strings"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/project"
	"github.com/piwi3910/ductcalc/internal/sizing"
	"github.com/spf13/cobra"
)

func newSizeCmd() *cobra.Command {
	var (
		flow        float64
		friction    float64
		ratio       float64
		fixed       float64
		step        float64
		presetName  string
		presetsPath string
	)

	cmd := &cobra.Command{
		Use:   "size",
		Short: "Size a single duct for an airflow",
		Long: `Size a single rectangular duct by the equal-friction method.

The policy comes from the preferences file, optionally replaced by a named
preset, and individual flags override either. --ratio keeps a width to
height ratio, --fixed pins the smaller side.`,
		Example: `  ductcalc size --flow 1000
  ductcalc size --flow 2400 --friction 0.08 --fixed 250`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := stateFromContext(cmd.Context()).config

			p := cfg.Policy()
			if presetName != "" {
				var err error
				p, err = resolvePolicy(presetsPath, presetName, model.Project{})
				if err != nil {
					return err
				}
			}
			flags := cmd.Flags()
			if flags.Changed("friction") {
				p.FrictionRate = friction
			}
			if flags.Changed("ratio") {
				p.UseFixedSide = false
				p.AspectRatio = ratio
			}
			if flags.Changed("fixed") {
				p.UseFixedSide = true
				p.FixedSideMM = fixed
			}
			if flags.Changed("step") {
				p.StepMM = step
			}

			rep, err := sizing.SizeReport(flow, p)
			if err != nil {
				return fmt.Errorf("size %g m³/h: %w", flow, err)
			}
			title := fmt.Sprintf("%dx%d", rep.Rect.BigMM, rep.Rect.SmallMM)
			fmt.Fprintln(cmd.OutOrStdout(), renderBox(title, strings.Join(rep.Lines(), "\n")))
			return nil
		},
	}

	cmd.Flags().Float64Var(&flow, "flow", 0, "airflow in m³/h")
	cmd.Flags().Float64Var(&friction, "friction", 0, "friction rate in mmAq/m")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "width to height ratio")
	cmd.Flags().Float64Var(&fixed, "fixed", 0, "fixed smaller side in mm")
	cmd.Flags().Float64Var(&step, "step", 0, "size increment in mm")
	cmd.Flags().StringVar(&presetName, "preset", "", "start from a named sizing preset")
	cmd.Flags().StringVar(&presetsPath, "presets", project.DefaultPresetsPath(), "presets file")
	cmd.MarkFlagsMutuallyExclusive("ratio", "fixed")
	_ = cmd.MarkFlagRequired("flow")

	return cmd
}
