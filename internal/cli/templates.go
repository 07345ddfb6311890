package cli

import (
	"fmt"

	"github.com/piwi3910/ductcalc/internal/model"
	"github.com/piwi3910/ductcalc/internal/project"
	"github.com/spf13/cobra"
)

func newTemplatesCmd() *cobra.Command {
	var templatesPath string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage reusable floor layouts",
		Long:  `A layout template keeps terminal placement, drawn runs and the sizing policy of a design so it can start a new project.`,
	}
	cmd.PersistentFlags().StringVar(&templatesPath, "templates", project.DefaultTemplatePath(), "templates file")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadTemplates(templatesPath)
			if err != nil {
				return err
			}
			if len(store.Templates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), styleDim.Render("No templates saved."))
				return nil
			}
			rows := make([][]string, 0, len(store.Templates))
			for _, t := range store.Templates {
				rows = append(rows, []string{
					t.Name,
					fmt.Sprintf("%d", len(t.Terminals)),
					fmt.Sprintf("%d", len(t.Segments)),
					t.Policy.String(),
					t.Description,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Name", "Terminals", "Runs", "Policy", "Description"}, rows))
			return nil
		},
	})

	var (
		name        string
		description string
		dxfScale    float64
	)
	save := &cobra.Command{
		Use:   "save <input>",
		Short: "Save a project or import as a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := stateFromContext(ctx).config
			p, err := loadInput(args[0], cfg, inputOptions{dxfScale: dxfScale}, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			if name == "" {
				name = p.Name
			}

			store, err := project.LoadTemplates(templatesPath)
			if err != nil {
				return err
			}
			if existing := store.FindByName(name); existing != nil {
				store.Remove(existing.ID)
			}
			store.Add(model.NewLayoutTemplate(name, description, p))
			if err := project.SaveTemplates(templatesPath, store); err != nil {
				return err
			}
			loggerFromContext(ctx).Info("template saved", "name", name)
			return nil
		},
	}
	save.Flags().StringVar(&name, "name", "", "template name (defaults to the project name)")
	save.Flags().StringVar(&description, "description", "", "template description")
	save.Flags().Float64Var(&dxfScale, "scale", 1, "DXF drawing units to meters")
	cmd.AddCommand(save)

	var output, projName string
	use := &cobra.Command{
		Use:   "use <template>",
		Short: "Start a new project from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadTemplates(templatesPath)
			if err != nil {
				return err
			}
			t := store.FindByName(args[0])
			if t == nil {
				return fmt.Errorf("unknown template %q", args[0])
			}
			if projName == "" {
				projName = projectName(output)
			}
			if err := project.SaveProject(output, t.ToProject(projName)); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("project created", "path", output, "template", t.Name)
			return nil
		},
	}
	use.Flags().StringVarP(&output, "output", "o", "", "project file to create")
	use.Flags().StringVar(&projName, "name", "", "project name")
	_ = use.MarkFlagRequired("output")
	cmd.AddCommand(use)

	return cmd
}

func newBackupCmd() *cobra.Command {
	var presetsPath, templatesPath string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore preferences, presets and templates",
	}
	cmd.PersistentFlags().StringVar(&presetsPath, "presets", project.DefaultPresetsPath(), "presets file")
	cmd.PersistentFlags().StringVar(&templatesPath, "templates", project.DefaultTemplatePath(), "templates file")

	cmd.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write all settings to one JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := stateFromContext(cmd.Context()).config
			presets, err := project.LoadPresets(presetsPath)
			if err != nil {
				return err
			}
			templates, err := project.LoadTemplates(templatesPath)
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], cfg, presets, templates); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("backup written", "path", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Restore settings from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state := stateFromContext(cmd.Context())
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(state.configPath, backup.Config); err != nil {
				return err
			}
			if err := project.SavePresets(presetsPath, model.PresetStore{Presets: backup.Presets}); err != nil {
				return err
			}
			if err := project.SaveTemplates(templatesPath, backup.Templates); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Info("backup restored",
				"presets", len(backup.Presets), "templates", len(backup.Templates.Templates))
			return nil
		},
	})

	return cmd
}
