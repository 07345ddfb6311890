package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/piwi3910/ductcalc/internal/engine"
	"github.com/piwi3910/ductcalc/internal/export"
	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/project"
	"github.com/spf13/cobra"
)

type networkOpts struct {
	layout      bool
	optimize    bool
	distribute  bool
	merge       bool
	inletFlow   float64
	presetName  string
	presetsPath string
	name        string
	dxfScale    float64

	output    string
	pdfPath   string
	labelPath string
	xlsxPath  string
	dxfPath   string
}

func newNetworkCmd() *cobra.Command {
	var opts networkOpts

	cmd := &cobra.Command{
		Use:   "network <input>",
		Short: "Repair, route and size a duct network",
		Long: `Load a saved project or import a terminal schedule (.csv, .xlsx) or a DXF
sketch, repair its topology, propagate outlet flows back to the inlet and
size every run.

With --layout the drawn runs are replaced by a generated trunk and branch
tree. With --optimize long branches are rerouted where that shortens the
network. Unreachable outlets are reported as warnings.`,
		Example: `  ductcalc network office.duct.json --optimize
  ductcalc network schedule.csv --layout -o office.duct.json --pdf office.pdf
  ductcalc network sketch.dxf --scale 0.001 --xlsx schedule.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNetwork(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.layout, "layout", false, "replace drawn runs with an automatic layout")
	f.BoolVar(&opts.optimize, "optimize", false, "shorten branch connections")
	f.BoolVar(&opts.distribute, "distribute", false, "split the inlet flow equally over the outlets")
	f.BoolVar(&opts.merge, "merge", false, "join straight pass-through runs into single ducts")
	f.Float64Var(&opts.inletFlow, "inlet-flow", 0, "set the total supply flow in m³/h")
	f.StringVar(&opts.presetName, "preset", "", "size with a named preset")
	f.StringVar(&opts.presetsPath, "presets", project.DefaultPresetsPath(), "presets file")
	f.StringVar(&opts.name, "name", "", "project name")
	f.Float64Var(&opts.dxfScale, "scale", 1, "DXF drawing units to meters")
	f.StringVarP(&opts.output, "output", "o", "", "save the sized project")
	f.StringVar(&opts.pdfPath, "pdf", "", "write a PDF report")
	f.StringVar(&opts.labelPath, "labels", "", "write a PDF of duct labels")
	f.StringVar(&opts.xlsxPath, "xlsx", "", "write an Excel schedule")
	f.StringVar(&opts.dxfPath, "dxf", "", "write a DXF drawing")

	return cmd
}

func runNetwork(ctx context.Context, out io.Writer, input string, opts networkOpts) error {
	logger := loggerFromContext(ctx)
	state := stateFromContext(ctx)
	cfg := state.config

	p, err := loadInput(input, cfg, inputOptions{dxfScale: opts.dxfScale}, logger)
	if err != nil {
		return err
	}
	policy, err := resolvePolicy(opts.presetsPath, opts.presetName, p)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	n, unreachable, err := sizeNetwork(p, cfg, policy, opts, logger)
	if err != nil {
		return err
	}
	if opts.name != "" {
		n.SetName(opts.name)
	}
	sized := n.Project()
	prog.done(fmt.Sprintf("Sized %d duct runs", len(sized.Segments)))

	for _, id := range unreachable {
		t, _ := n.Terminal(id)
		logger.Warn("outlet not connected to the inlet", "id", id, "name", t.Name, "at", t.Position.String())
	}

	fmt.Fprintln(out, styleHeader.Render(sized.Name)+styleDim.Render("  "+policy.String()))
	if len(sized.Segments) > 0 {
		fmt.Fprintln(out, scheduleTable(export.BuildSchedule(sized)))
	}
	fmt.Fprintln(out, renderBox("summary", summaryLines(export.Summarize(sized), n.RemainingFlow())))
	if len(unreachable) == 0 && len(sized.Segments) > 0 {
		fmt.Fprintln(out, styleOK.Render("All outlets reach the inlet."))
	}

	return writeOutputs(sized, cfg, opts, state, logger)
}

// sizeNetwork runs the engine pipeline: repair or layout, flow recompute,
// optional optimization. It returns the network and the unreachable outlets.
func sizeNetwork(p model.Project, cfg model.AppConfig, policy model.SizingPolicy, opts networkOpts, logger *log.Logger) (*engine.Network, []string, error) {
	n := engine.FromProject(p,
		engine.WithConfig(cfg),
		engine.WithLogger(logger),
		engine.WithPolicy(policy),
	)

	if opts.inletFlow != 0 {
		if err := n.SetInletFlow(opts.inletFlow); err != nil {
			return nil, nil, err
		}
	}
	if opts.distribute {
		if err := n.DistributeEqualFlow(); err != nil {
			return nil, nil, err
		}
	}

	if opts.layout {
		if err := n.AutoLayout(policy); err != nil {
			return nil, nil, fmt.Errorf("auto layout: %w", err)
		}
	} else {
		rep := n.RunTopologyRepair()
		if rep.Changed() {
			logger.Info("topology repaired",
				"merged", rep.Merged, "split", rep.Split, "connected", rep.Connected,
				"pruned", rep.Pruned, "risers", rep.Risers)
		}
	}

	unreachable, err := n.RecomputeFlowsAndSizes(policy)
	if err != nil {
		return nil, nil, fmt.Errorf("size network: %w", err)
	}

	if opts.optimize {
		moved, err := n.OptimizeConnections(policy)
		if err != nil {
			return nil, nil, fmt.Errorf("optimize: %w", err)
		}
		logger.Info("optimizer finished", "rerouted", moved)
		unreachable = n.UnreachableOutlets()
	}

	if opts.merge {
		if merged := n.MergeCollinear(); merged > 0 {
			logger.Info("merged straight runs", "count", merged)
		}
	}
	return n, unreachable, nil
}

func writeOutputs(p model.Project, cfg model.AppConfig, opts networkOpts, state *appState, logger *log.Logger) error {
	est := model.CalculateSheetEstimate(p.Segments, cfg.SheetWidthMM, cfg.SheetHeightMM, cfg.SheetWastePercent, cfg.SheetPrice)

	if opts.output != "" {
		if err := project.SaveProject(opts.output, p); err != nil {
			return err
		}
		logger.Info("project saved", "path", opts.output)
		cfg.AddRecentProject(opts.output)
		if err := project.SaveAppConfig(state.configPath, cfg); err != nil {
			logger.Warn("could not update recent projects", "err", err)
		}
	}

	exports := []struct {
		path  string
		kind  string
		write func(string) error
	}{
		{opts.pdfPath, "PDF report", func(path string) error { return export.ExportPDF(path, p, est) }},
		{opts.labelPath, "labels", func(path string) error { return export.ExportLabels(path, p) }},
		{opts.xlsxPath, "Excel schedule", func(path string) error { return export.ExportExcel(path, p, est) }},
		{opts.dxfPath, "DXF drawing", func(path string) error { return export.ExportDXF(path, p) }},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.write(e.path); err != nil {
			return fmt.Errorf("export %s: %w", e.kind, err)
		}
		logger.Info("exported "+e.kind, "path", e.path)
	}
	return nil
}
