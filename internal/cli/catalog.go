package cli

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/piwi3910/ductcalc/internal/engine"
	"github.com/piwi3910/ductcalc/internal/export"
	"github.com/piwi3910/ductcalc/internal/project"
	"github.com/piwi3910/ductcalc/internal/store"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Keep sized designs in a local revision catalog",
		Long:  `The catalog is a SQLite database of named designs. Every save adds a numbered revision holding the sized project and its totals.`,
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", store.DefaultCatalogPath(), "catalog database")

	open := func() (*sql.DB, *store.Catalog, error) {
		db, err := store.OpenDB(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return db, store.NewCatalog(db), nil
	}

	cmd.AddCommand(newCatalogSaveCmd(open))
	cmd.AddCommand(newCatalogListCmd(open))
	cmd.AddCommand(newCatalogShowCmd(open))
	cmd.AddCommand(newCatalogDeleteCmd(open))
	return cmd
}

type openCatalog func() (*sql.DB, *store.Catalog, error)

func newCatalogSaveCmd(open openCatalog) *cobra.Command {
	var (
		note     string
		opts     networkOpts
		dxfScale float64
	)
	cmd := &cobra.Command{
		Use:   "save <input>",
		Short: "Size a network and store it as a new revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := stateFromContext(ctx).config

			p, err := loadInput(args[0], cfg, inputOptions{dxfScale: dxfScale}, logger)
			if err != nil {
				return err
			}
			policy, err := resolvePolicy(opts.presetsPath, opts.presetName, p)
			if err != nil {
				return err
			}
			n, unreachable, err := sizeNetwork(p, cfg, policy, opts, logger)
			if err != nil {
				return err
			}
			if opts.name != "" {
				n.SetName(opts.name)
			}
			if len(unreachable) > 0 {
				logger.Warn("saving with unreachable outlets", "count", len(unreachable))
			}

			db, catalog, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			rev, err := catalog.SaveRevision(ctx, n.Project(), note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s revision %d (%d runs, %.2f m²)\n",
				rev.DesignName, rev.Seq, rev.Segments, rev.TotalSurface)
			return nil
		},
	}
	cmd.Flags().StringVarP(&note, "note", "m", "", "revision note")
	cmd.Flags().StringVar(&opts.name, "name", "", "design name")
	cmd.Flags().StringVar(&opts.presetName, "preset", "", "size with a named preset")
	cmd.Flags().StringVar(&opts.presetsPath, "presets", project.DefaultPresetsPath(), "presets file")
	cmd.Flags().BoolVar(&opts.layout, "layout", false, "replace drawn runs with an automatic layout")
	cmd.Flags().BoolVar(&opts.optimize, "optimize", false, "shorten branch connections")
	cmd.Flags().Float64Var(&dxfScale, "scale", 1, "DXF drawing units to meters")
	return cmd
}

func newCatalogListCmd(open openCatalog) *cobra.Command {
	return &cobra.Command{
		Use:   "list [design]",
		Short: "List designs, or the revisions of one design",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, catalog, err := open()
			if err != nil {
				return err
			}
			defer db.Close()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				designs, err := catalog.ListDesigns(ctx)
				if err != nil {
					return err
				}
				if len(designs) == 0 {
					fmt.Fprintln(out, styleDim.Render("Catalog is empty."))
					return nil
				}
				rows := make([][]string, 0, len(designs))
				for _, d := range designs {
					rows = append(rows, []string{
						d.Name,
						fmt.Sprintf("%d", d.Revisions),
						fmt.Sprintf("%d", d.LatestSeq),
						d.UpdatedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Design", "Revisions", "Latest", "Updated"}, rows))
				return nil
			}

			revs, err := catalog.ListRevisions(ctx, args[0])
			if err != nil {
				return fmt.Errorf("design %q: %w", args[0], err)
			}
			rows := make([][]string, 0, len(revs))
			for _, r := range revs {
				rows = append(rows, []string{
					fmt.Sprintf("%d", r.Seq),
					r.CreatedAt.Local().Format(time.DateTime),
					fmt.Sprintf("%d", r.Outlets),
					fmt.Sprintf("%.0f", r.InletFlow),
					fmt.Sprintf("%.2f", r.TotalLength),
					fmt.Sprintf("%.2f", r.TotalSurface),
					r.Note,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Rev", "Saved", "Outlets", "Flow m³/h", "Length m", "Surface m²", "Note"}, rows))
			return nil
		},
	}
}

func newCatalogShowCmd(open openCatalog) *cobra.Command {
	var (
		seq    int
		output string
	)
	cmd := &cobra.Command{
		Use:   "show <design>",
		Short: "Print a stored revision",
		Long:  `Print the schedule of a stored revision, the latest unless --rev is given. With -o the revision is written back out as a project file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, catalog, err := open()
			if err != nil {
				return err
			}
			defer db.Close()

			rev, err := catalog.GetRevision(ctx, args[0], seq)
			if err != nil {
				return fmt.Errorf("design %q: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			title := fmt.Sprintf("%s rev %d", rev.DesignName, rev.Seq)
			if rev.Note != "" {
				title += styleDim.Render("  " + rev.Note)
			}
			fmt.Fprintln(out, styleHeader.Render(title))
			if len(rev.Project.Segments) > 0 {
				fmt.Fprintln(out, scheduleTable(export.BuildSchedule(rev.Project)))
			}
			fmt.Fprintln(out, renderBox("summary", summaryLines(export.Summarize(rev.Project), engine.FromProject(rev.Project).RemainingFlow())))

			if output != "" {
				if err := project.SaveProject(output, rev.Project); err != nil {
					return err
				}
				loggerFromContext(ctx).Info("project saved", "path", output)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&seq, "rev", 0, "revision number (0 for latest)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the revision as a project file")
	return cmd
}

func newCatalogDeleteCmd(open openCatalog) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <design>",
		Short: "Delete a design and all its revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, catalog, err := open()
			if err != nil {
				return err
			}
			defer db.Close()
			if err := catalog.DeleteDesign(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("design %q: %w", args[0], err)
			}
			loggerFromContext(cmd.Context()).Info("design deleted", "name", args[0])
			return nil
		},
	}
}
